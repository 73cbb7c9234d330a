package domain

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// BlockKind форма блокировки расписания
type BlockKind string

const (
	BlockKindOneOff BlockKind = "one_off"
	BlockKindWeekly BlockKind = "weekly"
)

// BlockStatus статус блокировки (soft-delete)
type BlockStatus string

const (
	BlockStatusActive   BlockStatus = "active"
	BlockStatusInactive BlockStatus = "inactive"
)

// ScheduleBlock интервал, в который мастер (или вся точка) недоступен
type ScheduleBlock struct {
	ID         int64
	TenantID   int64
	ProviderID *int64 // nil = блок на всю точку
	Kind       BlockKind

	// Разовый блок
	Date *types.Date

	// Еженедельный блок
	DaysOfWeek []time.Weekday
	StartDate  *types.Date // nil = без ограничения
	EndDate    *types.Date // nil = без ограничения

	FullDay   bool
	StartTime int // минуты от полуночи, игнорируется при FullDay
	EndTime   int
	Status    BlockStatus
	Reason    *string
}

// IsActive returns true if the block is not soft-deleted
func (b *ScheduleBlock) IsActive() bool {
	return b.Status == BlockStatusActive
}

// AppliesToProvider returns true for shop-wide blocks and blocks of this provider
// providerID == nil означает запрос «любой мастер»: подходят только блоки на всю точку
func (b *ScheduleBlock) AppliesToProvider(providerID *int64) bool {
	if b.ProviderID == nil {
		return true
	}
	return providerID != nil && *b.ProviderID == *providerID
}

// OpeningHours часы работы тенанта в день недели
// Отсутствие записи означает выходной
type OpeningHours struct {
	TenantID  int64
	Weekday   time.Weekday
	OpenTime  int // минуты от полуночи
	CloseTime int
}

// IsOpen returns true if the configured interval is non-empty
func (h *OpeningHours) IsOpen() bool {
	return h != nil && h.OpenTime < h.CloseTime
}

// Contains returns true if [start, end) lies within opening hours
func (h *OpeningHours) Contains(start, end int) bool {
	return h.IsOpen() && start >= h.OpenTime && end <= h.CloseTime && start < end
}
