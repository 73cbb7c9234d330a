package get_available_slots

import "github.com/m04kA/SMC-SchedulingService/pkg/types"

// Request модель запроса на получение доступных слотов
type Request struct {
	TenantID   int64      // ID тенанта (точки)
	ServiceID  int64      // ID услуги
	ProviderID *int64     // ID мастера (nil - любой мастер)
	Date       types.Date // Дата в настенном времени тенанта
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date       types.Date
	ServiceID  int64
	ProviderID *int64
	Slots      []Slot // По возрастанию времени, затем ID мастера
}

// Slot свободное время начала у конкретного мастера
type Slot struct {
	StartTime  int   `json:"t"` // минуты от полуночи
	ProviderID int64 `json:"p"`
}
