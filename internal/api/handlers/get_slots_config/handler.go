package get_slots_config

import (
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/config/models"
)

const (
	msgMissingTenant    = "отсутствует ID тенанта"
	msgInvalidServiceID = "некорректный ID услуги"
)

type Handler struct {
	service ConfigService
	logger  Logger
}

func NewHandler(service ConfigService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/config
// Query params: service (опционально)
// Если конфигурации нет, возвращаются значения по умолчанию
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("GET /config - Missing tenant ID")
		handlers.RespondBadRequest(w, msgMissingTenant)
		return
	}

	serviceID, err := handlers.QueryInt64(r, "service")
	if err != nil {
		h.logger.Warn("GET /config - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	result, err := h.service.GetWithHierarchy(r.Context(), &models.GetConfigRequest{TenantID: tenantID, ServiceID: serviceID})
	if err != nil {
		if domain.KindOf(err) == domain.KindRepositoryUnavailable {
			h.logger.Error("GET /config - Failed to get config: tenant_id=%d, error=%v", tenantID, err)
		} else {
			h.logger.Warn("GET /config - Request rejected: tenant_id=%d, error=%v", tenantID, err)
		}
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("GET /config - Config retrieved successfully: tenant_id=%d, level=%s", tenantID, result.Level)
	handlers.RespondJSON(w, http.StatusOK, result)
}
