package config

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// ConfigRepository интерфейс репозитория конфигурации слотов
type ConfigRepository interface {
	GetConfigWithHierarchy(ctx context.Context, tenantID int64, serviceID *int64) (*domain.SlotsConfig, error)
	Upsert(ctx context.Context, config *domain.SlotsConfig) (*domain.SlotsConfig, error)
}

// CatalogRepository интерфейс репозитория каталога услуг
type CatalogRepository interface {
	GetService(ctx context.Context, tenantID, serviceID int64) (*domain.Service, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
