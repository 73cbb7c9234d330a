package models

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Уровни конфигурации
const (
	LevelService = "service"
	LevelTenant  = "tenant"
	LevelDefault = "default"
)

// Request модели

// GetConfigRequest запрос на получение конфигурации с учетом иерархии
type GetConfigRequest struct {
	TenantID  int64  `json:"tenantId"`
	ServiceID *int64 `json:"serviceId,omitempty"` // nil означает конфигурацию тенанта
}

// UpdateConfigRequest запрос на создание или обновление конфигурации
type UpdateConfigRequest struct {
	TenantID                int64  `json:"-"`
	ServiceID               *int64 `json:"serviceId,omitempty"` // NULL = для всех услуг
	GranularityMinutes      int    `json:"granularityMinutes"`
	AdvanceBookingDays      int    `json:"advanceBookingDays"` // 0 = без ограничений
	MinBookingNoticeMinutes int    `json:"minBookingNoticeMinutes"`
}

// Response модели

// ConfigResponse ответ с данными конфигурации слотов
type ConfigResponse struct {
	ID                      int64      `json:"id,omitempty"`
	TenantID                int64      `json:"tenantId"`
	ServiceID               *int64     `json:"serviceId,omitempty"`
	Level                   string     `json:"level"`
	GranularityMinutes      int        `json:"granularityMinutes"`
	AdvanceBookingDays      int        `json:"advanceBookingDays"`
	MinBookingNoticeMinutes int        `json:"minBookingNoticeMinutes"`
	CreatedAt               *time.Time `json:"createdAt,omitempty"`
	UpdatedAt               *time.Time `json:"updatedAt,omitempty"`
}

// Методы конвертации

// FromDomainConfig конвертирует domain модель в DTO
func FromDomainConfig(c *domain.SlotsConfig, level string) *ConfigResponse {
	if c == nil {
		return nil
	}

	resp := &ConfigResponse{
		ID:                      c.ID,
		TenantID:                c.TenantID,
		ServiceID:               c.ServiceID,
		Level:                   level,
		GranularityMinutes:      c.GranularityMinutes,
		AdvanceBookingDays:      c.AdvanceBookingDays,
		MinBookingNoticeMinutes: c.MinBookingNoticeMinutes,
	}
	if !c.CreatedAt.IsZero() {
		resp.CreatedAt = &c.CreatedAt
		resp.UpdatedAt = &c.UpdatedAt
	}
	return resp
}

// ToDomainConfig конвертирует UpdateConfigRequest в domain модель
func (r *UpdateConfigRequest) ToDomainConfig() *domain.SlotsConfig {
	return &domain.SlotsConfig{
		TenantID:                r.TenantID,
		ServiceID:               r.ServiceID,
		GranularityMinutes:      r.GranularityMinutes,
		AdvanceBookingDays:      r.AdvanceBookingDays,
		MinBookingNoticeMinutes: r.MinBookingNoticeMinutes,
	}
}

// LevelOf возвращает уровень хранимой конфигурации
func LevelOf(c *domain.SlotsConfig) string {
	if c.IsGlobalConfig() {
		return LevelTenant
	}
	return LevelService
}
