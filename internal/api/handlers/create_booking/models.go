package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/scheduling/timegrid"
	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ProviderID int64   `json:"providerId"`
	ServiceID  int64   `json:"serviceId"`
	ClientID   int64   `json:"clientId"`
	Date       string  `json:"date"`      // "2026-10-14"
	StartTime  string  `json:"startTime"` // "10:00"
	Notes      *string `json:"notes,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID              int64   `json:"id"`
	TenantID        int64   `json:"tenantId"`
	ProviderID      int64   `json:"providerId"`
	ServiceID       int64   `json:"serviceId"`
	ClientID        int64   `json:"clientId"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// Время начала разбирает use case, чтобы ошибка имела kind InvalidTimeFormat
func (r *CreateBookingRequest) ToUseCaseRequest(tenantID int64) (*createBooking.Request, error) {
	date, err := types.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		TenantID:   tenantID,
		ProviderID: r.ProviderID,
		ServiceID:  r.ServiceID,
		ClientID:   r.ClientID,
		Date:       date,
		StartTime:  r.StartTime,
		Notes:      r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:              resp.ID,
		TenantID:        resp.TenantID,
		ProviderID:      resp.ProviderID,
		ServiceID:       resp.ServiceID,
		ClientID:        resp.ClientID,
		Date:            resp.Date.String(),
		StartTime:       timegrid.FormatMinutes(resp.StartTime),
		EndTime:         timegrid.FormatMinutes(resp.EndTime),
		DurationMinutes: resp.EndTime - resp.StartTime,
		Status:          resp.Status,
		Notes:           resp.Notes,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
