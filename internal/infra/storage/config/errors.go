package config

import "errors"

var (
	// ErrConfigNotFound нет строки tenant_slots_config ни для услуги, ни для тенанта
	ErrConfigNotFound = errors.New("slots_config.repository: config not found")

	// ErrBuildQuery ошибка сборки запроса в squirrel
	ErrBuildQuery = errors.New("slots_config.repository: failed to build query")

	// ErrExecQuery ошибка выполнения запроса или upsert
	ErrExecQuery = errors.New("slots_config.repository: failed to execute query")

	// ErrScanRow ошибка чтения строки конфигурации
	ErrScanRow = errors.New("slots_config.repository: failed to scan row")
)
