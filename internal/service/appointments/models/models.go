package models

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling/timegrid"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Request модели

// UpdateStatusRequest запрос на смену статуса записи
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ListProviderAppointmentsRequest запрос на получение записей мастера за день
type ListProviderAppointmentsRequest struct {
	TenantID   int64      `json:"tenantId"`
	ProviderID int64      `json:"providerId"`
	Date       types.Date `json:"-"`
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID              int64     `json:"id"`
	TenantID        int64     `json:"tenantId"`
	ProviderID      int64     `json:"providerId"`
	ServiceID       int64     `json:"serviceId"`
	ClientID        int64     `json:"clientId"`
	Date            string    `json:"date"`      // "2026-10-14"
	StartTime       string    `json:"startTime"` // "10:00"
	EndTime         string    `json:"endTime"`   // "11:00"
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	return &AppointmentResponse{
		ID:              a.ID,
		TenantID:        a.TenantID,
		ProviderID:      a.ProviderID,
		ServiceID:       a.ServiceID,
		ClientID:        a.ClientID,
		Date:            a.Date.String(),
		StartTime:       timegrid.FormatMinutes(a.StartTime),
		EndTime:         timegrid.FormatMinutes(a.EndTime),
		DurationMinutes: a.DurationMinutes(),
		Status:          string(a.Status),
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}

	for _, appointment := range appointments {
		if item := FromDomainAppointment(appointment); item != nil {
			resp.Appointments = append(resp.Appointments, *item)
		}
	}

	return resp
}

// ToDomainStatus конвертирует строку в статус записи
func ToDomainStatus(status string) (domain.AppointmentStatus, bool) {
	s := domain.AppointmentStatus(status)
	return s, s.IsValid()
}
