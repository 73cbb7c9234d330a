// Package timegrid арифметика настенного времени тенанта
// Все значения - минуты от полуночи, часовые пояса здесь не участвуют
package timegrid

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// ToMinutes парсит "HH:MM" (24h, с ведущим нулём) в минуты от полуночи
// Допускается "24:00" как конец дня
func ToMinutes(hhmm string) (int, error) {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidTimeFormat, hhmm)
	}

	h, ok := twoDigits(hhmm[0], hhmm[1])
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidTimeFormat, hhmm)
	}
	m, ok := twoDigits(hhmm[3], hhmm[4])
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidTimeFormat, hhmm)
	}

	if m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidTimeFormat, hhmm)
	}

	return h*60 + m, nil
}

// FormatMinutes форматирует минуты от полуночи в "HH:MM"
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Overlaps проверяет пересечение полуинтервалов [aStart, aEnd) и [bStart, bEnd)
// Соприкасающиеся границы пересечением не считаются
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// SlotIndex номер слота, в который попадает offset, при шаге granularity от origin
func SlotIndex(offset, origin, granularity int) int {
	return (offset - origin) / granularity
}

// SlotOffset время начала слота с номером index
func SlotOffset(index, origin, granularity int) int {
	return origin + index*granularity
}

// Interval полуинтервал [Start, End) в минутах
type Interval struct {
	Start int
	End   int
}

// FullDay интервал на все сутки
func FullDay() Interval {
	return Interval{Start: domain.DayStartMinutes, End: domain.DayLengthMinutes}
}

// Overlaps проверяет пересечение с другим интервалом
func (i Interval) Overlaps(other Interval) bool {
	return Overlaps(i.Start, i.End, other.Start, other.End)
}

// OverlapsAny проверяет пересечение хотя бы с одним интервалом из списка
func (i Interval) OverlapsAny(intervals []Interval) bool {
	for _, other := range intervals {
		if i.Overlaps(other) {
			return true
		}
	}
	return false
}

func (i Interval) String() string {
	return FormatMinutes(i.Start) + "-" + FormatMinutes(i.End)
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}
