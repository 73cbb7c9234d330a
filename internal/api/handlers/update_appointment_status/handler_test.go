package update_appointment_status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
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

func setup(t *testing.T) (*mux.Router, int64) {
	t.Helper()

	store := memory.NewStore()
	booked, err := store.Create(context.Background(), &domain.Appointment{
		TenantID:   1,
		ProviderID: 1,
		ServiceID:  10,
		ClientID:   100,
		Date:       types.NewDate(2026, time.October, 14),
		StartTime:  600,
		EndTime:    660,
		Status:     domain.StatusScheduled,
	})
	require.NoError(t, err)

	service := appointments.NewService(store, memory.TxManager{}, nil, nil, logger.Nop())
	r := mux.NewRouter()
	r.Use(middleware.Tenant)
	r.HandleFunc("/api/v1/appointments/{appointmentId}/status", NewHandler(service, logger.Nop()).Handle).Methods(http.MethodPatch)
	return r, booked.ID
}

func patch(r *mux.Router, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, target, strings.NewReader(body))
	req.Header.Set(middleware.TenantHeader, "1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandle_Transitions(t *testing.T) {
	r, id := setup(t)
	target := "/api/v1/appointments/" + strconv.FormatInt(id, 10) + "/status"

	w := patch(r, target, `{"status":"confirmed"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var body models.AppointmentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "confirmed", body.Status)

	w = patch(r, target, `{"status":"scheduled"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "InvalidStatusTransition")

	w = patch(r, target, `{"status":"cancelled"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	// cancelled терминальный
	w = patch(r, target, `{"status":"confirmed"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandle_Errors(t *testing.T) {
	r, id := setup(t)

	assert.Equal(t, http.StatusNotFound, patch(r, "/api/v1/appointments/999/status", `{"status":"confirmed"}`).Code)
	assert.Equal(t, http.StatusBadRequest, patch(r, "/api/v1/appointments/abc/status", `{"status":"confirmed"}`).Code)
	assert.Equal(t, http.StatusBadRequest, patch(r, "/api/v1/appointments/"+strconv.FormatInt(id, 10)+"/status", `{"status":"done"}`).Code)
	assert.Equal(t, http.StatusBadRequest, patch(r, "/api/v1/appointments/"+strconv.FormatInt(id, 10)+"/status", `not json`).Code)
}
