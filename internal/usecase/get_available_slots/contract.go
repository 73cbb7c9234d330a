package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/cache"
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
}

// ConfigRepository интерфейс репозитория конфигурации слотов
type ConfigRepository interface {
	GetConfigWithHierarchy(ctx context.Context, tenantID int64, serviceID *int64) (*domain.SlotsConfig, error)
}

// SlotsCache кэш рассчитанных слотов
type SlotsCache interface {
	Get(ctx context.Context, key cache.Key) (cache.Entry, bool, error)
	Set(ctx context.Context, key cache.Key, version int64, value []byte) error
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
