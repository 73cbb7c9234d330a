package events

import "context"

// Noop публикатор для запуска без брокера
type Noop struct{}

func (Noop) AppointmentBooked(context.Context, AppointmentBooked) error { return nil }

func (Noop) AppointmentStatusChanged(context.Context, AppointmentStatusChanged) error { return nil }
