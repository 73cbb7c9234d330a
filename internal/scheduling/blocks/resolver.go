// Package blocks вычисляет заблокированные интервалы на дату
package blocks

import (
	"sort"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling/timegrid"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Resolve возвращает заблокированные интервалы мастера на дату
// providerID == nil - запрос «любой мастер», учитываются только блоки на всю точку
//
// Порядок фильтрации:
// 1. блок на всю точку или на этого мастера
// 2. разовый блок - совпадение даты
// 3. еженедельный блок - день недели из списка и дата внутри [StartDate, EndDate]
// 4. только активные
//
// Дубликаты не схлопываются, результат отсортирован по началу интервала
func Resolve(providerID *int64, date types.Date, blocks []*domain.ScheduleBlock) []timegrid.Interval {
	result := make([]timegrid.Interval, 0)

	for _, block := range blocks {
		if block == nil || !block.AppliesToProvider(providerID) {
			continue
		}
		if !appliesToDate(block, date) {
			continue
		}
		if !block.IsActive() {
			continue
		}
		result = append(result, intervalOf(block))
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Start != result[j].Start {
			return result[i].Start < result[j].Start
		}
		return result[i].End < result[j].End
	})

	return result
}

// ResolveForProviders раскладывает блоки тенанта по мастерам за один проход
func ResolveForProviders(providerIDs []int64, date types.Date, blocks []*domain.ScheduleBlock) map[int64][]timegrid.Interval {
	result := make(map[int64][]timegrid.Interval, len(providerIDs))
	for _, id := range providerIDs {
		providerID := id
		result[id] = Resolve(&providerID, date, blocks)
	}
	return result
}

func appliesToDate(block *domain.ScheduleBlock, date types.Date) bool {
	switch block.Kind {
	case domain.BlockKindOneOff:
		return block.Date != nil && block.Date.Equal(date)
	case domain.BlockKindWeekly:
		if !containsWeekday(block, date) {
			return false
		}
		if block.StartDate != nil && block.StartDate.After(date) {
			return false
		}
		if block.EndDate != nil && block.EndDate.Before(date) {
			return false
		}
		return true
	default:
		return false
	}
}

func containsWeekday(block *domain.ScheduleBlock, date types.Date) bool {
	weekday := date.Weekday()
	for _, d := range block.DaysOfWeek {
		if d == weekday {
			return true
		}
	}
	return false
}

func intervalOf(block *domain.ScheduleBlock) timegrid.Interval {
	if block.FullDay {
		return timegrid.FullDay()
	}
	return timegrid.Interval{Start: block.StartTime, End: block.EndTime}
}
