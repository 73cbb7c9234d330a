package domain

import "time"

// SlotsConfig represents the slot configuration of a tenant
// Supports hierarchical configuration:
// 1. Service-specific (tenant_id, service_id)
// 2. Tenant-wide (tenant_id, NULL)
type SlotsConfig struct {
	ID                      int64
	TenantID                int64
	ServiceID               *int64 // NULL = config for all services
	GranularityMinutes      int
	AdvanceBookingDays      int // 0 = unlimited
	MinBookingNoticeMinutes int
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// DefaultSlotsConfig returns the configuration used when nothing is stored
func DefaultSlotsConfig(tenantID int64) *SlotsConfig {
	return &SlotsConfig{
		TenantID:                tenantID,
		GranularityMinutes:      DefaultGranularityMinutes,
		AdvanceBookingDays:      DefaultAdvanceBookingDays,
		MinBookingNoticeMinutes: DefaultMinBookingNoticeMinutes,
	}
}

// IsGlobalConfig returns true if this is a tenant-wide configuration
func (c *SlotsConfig) IsGlobalConfig() bool {
	return c.ServiceID == nil
}

// HasAdvanceBookingLimit returns true if there's a limit on how far in advance bookings can be made
func (c *SlotsConfig) HasAdvanceBookingLimit() bool {
	return c.AdvanceBookingDays > 0
}
