// Package window правила окна бронирования: дата не в прошлом,
// не дальше advanceBookingDays и не раньше минимального уведомления
package window

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Moment текущий момент в настенном времени тенанта
type Moment struct {
	Date   types.Date
	Minute int
}

// MomentOf переводит t в настенное время его локации
func MomentOf(t time.Time) Moment {
	return Moment{
		Date:   types.DateOf(t),
		Minute: t.Hour()*60 + t.Minute(),
	}
}

// CheckDate проверяет дату запроса относительно now
func CheckDate(date types.Date, now Moment, config *domain.SlotsConfig) error {
	if date.Before(now.Date) {
		return fmt.Errorf("%w: %s is in the past", domain.ErrInvalidDate, date)
	}

	if config.HasAdvanceBookingLimit() {
		maxDate := now.Date.AddDays(config.AdvanceBookingDays)
		if date.After(maxDate) {
			return fmt.Errorf("%w: can only book %d days in advance", domain.ErrDateTooFarInFuture, config.AdvanceBookingDays)
		}
	}

	return nil
}

// EarliestStart первая минута date, с которой разрешено начинать запись
// Учитывает minBookingNoticeMinutes, в том числе уведомление длиннее суток.
// Может вернуть значение >= DayLengthMinutes, тогда на дату записаться нельзя
func EarliestStart(date types.Date, now Moment, config *domain.SlotsConfig) int {
	earliest := now.Minute + config.MinBookingNoticeMinutes - now.Date.DaysUntil(date)*domain.DayLengthMinutes
	if earliest < domain.DayStartMinutes {
		return domain.DayStartMinutes
	}
	return earliest
}
