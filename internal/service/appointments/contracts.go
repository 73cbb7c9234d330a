package appointments

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/events"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, tenantID, id int64) (*domain.Appointment, error)
	ListByProviderAndDate(ctx context.Context, tenantID, providerID int64, date types.Date) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, tenantID, id int64, from, to domain.AppointmentStatus) (*domain.Appointment, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// CacheInvalidator сбрасывает кэш доступности дня
type CacheInvalidator interface {
	Invalidate(ctx context.Context, tenantID int64, date types.Date) error
}

// EventPublisher публикует события смены статуса
type EventPublisher interface {
	AppointmentStatusChanged(ctx context.Context, event events.AppointmentStatusChanged) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
