package create_booking

import (
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const (
	msgMissingTenant      = "отсутствует ID тенанта"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing tenant ID")
		handlers.RespondBadRequest(w, msgMissingTenant)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(tenantID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindSlotNoLongerAvailable:
			h.logger.Warn("POST /bookings - Slot not available: tenant_id=%d, provider_id=%d, date=%s, time=%s",
				tenantID, req.ProviderID, req.Date, req.StartTime)
		case domain.KindBookingTimeout:
			h.logger.Warn("POST /bookings - Booking timed out: tenant_id=%d, provider_id=%d, error=%v",
				tenantID, req.ProviderID, err)
		case domain.KindRepositoryUnavailable:
			h.logger.Error("POST /bookings - Failed to create booking: tenant_id=%d, provider_id=%d, error=%v",
				tenantID, req.ProviderID, err)
		default:
			h.logger.Warn("POST /bookings - Request rejected: tenant_id=%d, provider_id=%d, error=%v",
				tenantID, req.ProviderID, err)
		}
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: appointment_id=%d, tenant_id=%d, provider_id=%d",
		result.ID, tenantID, req.ProviderID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
