package get_available_slots

import (
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const (
	msgMissingTenant     = "отсутствует ID тенанта"
	msgInvalidServiceID  = "некорректный ID услуги"
	msgMissingServiceID  = "ID услуги обязателен"
	msgInvalidProviderID = "некорректный ID мастера"
	msgMissingDate       = "дата обязательна"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/availability
// Query params: service (required), date (required, YYYY-MM-DD), provider (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("GET /availability - Missing tenant ID")
		handlers.RespondBadRequest(w, msgMissingTenant)
		return
	}

	query := r.URL.Query()

	// Извлекаем service из query параметров
	if query.Get("service") == "" {
		h.logger.Warn("GET /availability - Missing service ID")
		handlers.RespondBadRequest(w, msgMissingServiceID)
		return
	}
	serviceID, err := handlers.QueryInt64(r, "service")
	if err != nil {
		h.logger.Warn("GET /availability - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	// provider опционален: без него ищем у любого мастера
	providerID, err := handlers.QueryInt64(r, "provider")
	if err != nil {
		h.logger.Warn("GET /availability - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	dateStr := query.Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /availability - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(tenantID, *serviceID, providerID, dateStr)
	if err != nil {
		h.logger.Warn("GET /availability - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		if domain.KindOf(err) == domain.KindRepositoryUnavailable {
			h.logger.Error("GET /availability - Failed to get slots: tenant_id=%d, service_id=%d, error=%v",
				tenantID, *serviceID, err)
		} else {
			h.logger.Warn("GET /availability - Request rejected: tenant_id=%d, service_id=%d, error=%v",
				tenantID, *serviceID, err)
		}
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("GET /availability - Slots retrieved successfully: tenant_id=%d, service_id=%d, slots_count=%d",
		tenantID, *serviceID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
