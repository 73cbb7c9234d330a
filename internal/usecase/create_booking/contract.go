package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/events"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	GetService(ctx context.Context, tenantID, serviceID int64) (*domain.Service, error)
	LoadActiveProviderServices(ctx context.Context, tenantID, serviceID int64, providerID *int64) ([]*domain.ProviderService, error)
}

// ScheduleRepository интерфейс репозитория расписания
type ScheduleRepository interface {
	LoadOpeningHours(ctx context.Context, tenantID int64, weekday time.Weekday) (*domain.OpeningHours, error)
	LoadBlocks(ctx context.Context, tenantID int64, providerIDs []int64, date types.Date) ([]*domain.ScheduleBlock, error)
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	LoadAppointments(ctx context.Context, tenantID int64, providerIDs []int64, date types.Date) ([]*domain.Appointment, error)
	Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
	LockSlot(ctx context.Context, key string) error
}

// ConfigRepository интерфейс репозитория конфигурации слотов
type ConfigRepository interface {
	GetConfigWithHierarchy(ctx context.Context, tenantID int64, serviceID *int64) (*domain.SlotsConfig, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker блокировка по ключу внутри процесса
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// CacheInvalidator сбрасывает кэш доступности
type CacheInvalidator interface {
	Invalidate(ctx context.Context, tenantID int64, date types.Date) error
}

// EventPublisher публикует события после коммита
type EventPublisher interface {
	AppointmentBooked(ctx context.Context, event events.AppointmentBooked) error
}

// Metrics счётчик исходов бронирования
type Metrics interface {
	IncBookingOutcome(outcome string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider текущее время в часовом поясе тенанта
type RealTimeProvider struct {
	Location *time.Location
}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	if p.Location == nil {
		return time.Now()
	}
	return time.Now().In(p.Location)
}
