// Package slots генерирует кандидатов на время начала записи
package slots

import (
	"iter"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling/timegrid"
)

// Generator параметры генерации слотов на день
type Generator struct {
	DayOpen         int // минуты от полуночи
	DayClose        int
	ServiceDuration int
	Granularity     int // <= 0 - используется domain.DefaultGranularityMinutes
}

// ForDay создает генератор по часам работы
// Для выходного дня (hours == nil) генератор ничего не выдаёт
func ForDay(hours *domain.OpeningHours, serviceDuration, granularity int) Generator {
	if !hours.IsOpen() {
		return Generator{ServiceDuration: serviceDuration, Granularity: granularity}
	}
	return Generator{
		DayOpen:         hours.OpenTime,
		DayClose:        hours.CloseTime,
		ServiceDuration: serviceDuration,
		Granularity:     granularity,
	}
}

// Candidates возвращает последовательность t = open, open+g, open+2g, ...
// такую, что t + duration <= close
// Последовательность ленивая, конечная и может проходиться повторно
func (g Generator) Candidates() iter.Seq[int] {
	granularity := g.granularity()

	return func(yield func(int) bool) {
		if g.ServiceDuration <= 0 || g.DayOpen >= g.DayClose {
			return
		}
		for idx := 0; ; idx++ {
			t := timegrid.SlotOffset(idx, g.DayOpen, granularity)
			if t+g.ServiceDuration > g.DayClose {
				return
			}
			if !yield(t) {
				return
			}
		}
	}
}

func (g Generator) granularity() int {
	if g.Granularity <= 0 {
		return domain.DefaultGranularityMinutes
	}
	return g.Granularity
}
