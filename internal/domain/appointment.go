package domain

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// allowedTransitions граф переходов статусов
// completed и cancelled терминальные
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled: {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// Appointment represents a booked appointment of a client with a provider
type Appointment struct {
	ID         int64
	TenantID   int64
	ProviderID int64
	ServiceID  int64
	ClientID   int64
	Date       types.Date
	StartTime  int // минуты от полуночи
	EndTime    int // минуты от полуночи, фиксируется при бронировании
	Status     AppointmentStatus
	Notes      *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the appointment participates in overlap checks
func (a *Appointment) IsActive() bool {
	return a.Status.IsActive()
}

// DurationMinutes returns the length of the appointment
func (a *Appointment) DurationMinutes() int {
	return a.EndTime - a.StartTime
}

// CanTransitionTo returns true if the status change is allowed by the state machine
func (a *Appointment) CanTransitionTo(next AppointmentStatus) bool {
	return a.Status.CanTransitionTo(next)
}

// IsActive returns true for scheduled and confirmed
func (s AppointmentStatus) IsActive() bool {
	return s == StatusScheduled || s == StatusConfirmed
}

// IsTerminal returns true for completed and cancelled
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsValid returns true if the status is known
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo returns true if s -> next is an allowed transition
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
