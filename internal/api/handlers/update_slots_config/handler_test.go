package update_slots_config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/internal/service/config"
	"github.com/m04kA/SMC-SchedulingService/internal/service/config/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

func put(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, "/api/v1/config", strings.NewReader(body))
	req.Header.Set(middleware.TenantHeader, "1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandle(t *testing.T) {
	store := memory.NewStore()
	store.AddService(domain.Service{ID: 10, TenantID: 1, Name: "Haircut", DurationMinutes: 60, IsActive: true})
	h := middleware.Tenant(http.HandlerFunc(NewHandler(config.NewService(store, store, logger.Nop()), logger.Nop()).Handle))

	w := put(h, `{"granularityMinutes":15,"advanceBookingDays":30,"minBookingNoticeMinutes":60}`)
	require.Equal(t, http.StatusOK, w.Code)
	var body models.ConfigResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.TenantID)
	assert.Equal(t, models.LevelTenant, body.Level)
	assert.Equal(t, 15, body.GranularityMinutes)

	w = put(h, `{"serviceId":10,"granularityMinutes":45}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, models.LevelService, body.Level)

	assert.Equal(t, http.StatusBadRequest, put(h, `{"granularityMinutes":0}`).Code)
	assert.Equal(t, http.StatusNotFound, put(h, `{"serviceId":99,"granularityMinutes":30}`).Code)
	assert.Equal(t, http.StatusBadRequest, put(h, `{"tenantId":2,"granularityMinutes":30}`).Code)
}
