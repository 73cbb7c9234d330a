// Package events публикует доменные события записей в RabbitMQ
package events

import "time"

// Routing keys событий
const (
	RoutingAppointmentBooked        = "appointment.booked"
	RoutingAppointmentStatusChanged = "appointment.status_changed"
)

// AppointmentBooked публикуется после коммита новой записи
type AppointmentBooked struct {
	AppointmentID int64     `json:"appointmentId"`
	TenantID      int64     `json:"tenantId"`
	ProviderID    int64     `json:"providerId"`
	ServiceID     int64     `json:"serviceId"`
	ClientID      int64     `json:"clientId"`
	Date          string    `json:"date"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	BookedAt      time.Time `json:"bookedAt"`
}

// AppointmentStatusChanged публикуется после смены статуса записи
type AppointmentStatusChanged struct {
	AppointmentID int64     `json:"appointmentId"`
	TenantID      int64     `json:"tenantId"`
	ProviderID    int64     `json:"providerId"`
	Date          string    `json:"date"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	ChangedAt     time.Time `json:"changedAt"`
}
