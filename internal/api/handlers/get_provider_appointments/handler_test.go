package get_provider_appointments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

func get(r *mux.Router, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set(middleware.TenantHeader, "1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandle(t *testing.T) {
	store := memory.NewStore()
	for _, start := range []int{660, 540} {
		_, err := store.Create(context.Background(), &domain.Appointment{
			TenantID:   1,
			ProviderID: 1,
			ServiceID:  10,
			ClientID:   100,
			Date:       types.NewDate(2026, time.October, 14),
			StartTime:  start,
			EndTime:    start + 60,
			Status:     domain.StatusScheduled,
		})
		require.NoError(t, err)
	}

	r := mux.NewRouter()
	r.Use(middleware.Tenant)
	service := appointments.NewService(store, memory.TxManager{}, nil, nil, logger.Nop())
	r.HandleFunc("/api/v1/providers/{providerId}/appointments", NewHandler(service, logger.Nop()).Handle).Methods(http.MethodGet)

	w := get(r, "/api/v1/providers/1/appointments?date=2026-10-14")
	require.Equal(t, http.StatusOK, w.Code)
	var body models.AppointmentListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Appointments, 2)
	assert.Equal(t, "09:00", body.Appointments[0].StartTime)

	w = get(r, "/api/v1/providers/2/appointments?date=2026-10-14")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"appointments":[]`)

	assert.Equal(t, http.StatusBadRequest, get(r, "/api/v1/providers/1/appointments").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/api/v1/providers/0/appointments?date=2026-10-14").Code)

	store.FailOn("ListByProviderAndDate", errors.New("down"))
	assert.Equal(t, http.StatusServiceUnavailable, get(r, "/api/v1/providers/1/appointments?date=2026-10-14").Code)
}
