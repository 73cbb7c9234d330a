package update_slots_config

import (
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/config/models"
)

const (
	msgMissingTenant      = "отсутствует ID тенанта"
	msgInvalidRequestBody = "некорректное тело запроса"
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

// Handle PUT /api/v1/config
// serviceId в теле задаёт конфигурацию услуги, без него - конфигурацию тенанта
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("PUT /config - Missing tenant ID")
		handlers.RespondBadRequest(w, msgMissingTenant)
		return
	}

	var req models.UpdateConfigRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /config - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.TenantID = tenantID

	result, err := h.service.Upsert(r.Context(), &req)
	if err != nil {
		if domain.KindOf(err) == domain.KindRepositoryUnavailable {
			h.logger.Error("PUT /config - Failed to save config: tenant_id=%d, error=%v", tenantID, err)
		} else {
			h.logger.Warn("PUT /config - Invalid data: tenant_id=%d, error=%v", tenantID, err)
		}
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("PUT /config - Config saved successfully: tenant_id=%d, config_id=%d", tenantID, result.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
