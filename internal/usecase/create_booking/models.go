package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Request модель запроса на создание записи
type Request struct {
	TenantID   int64      // ID тенанта (точки)
	ProviderID int64      // ID мастера
	ServiceID  int64      // ID услуги
	ClientID   int64      // ID клиента
	Date       types.Date // Дата в настенном времени тенанта
	StartTime  string     // Время начала "HH:MM"
	Notes      *string    // Заметки (опционально)
}

// Response модель ответа с созданной записью
type Response struct {
	ID         int64
	TenantID   int64
	ProviderID int64
	ServiceID  int64
	ClientID   int64
	Date       types.Date
	StartTime  int // минуты от полуночи
	EndTime    int
	Status     string
	Notes      *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
