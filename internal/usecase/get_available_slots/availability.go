package get_available_slots

import (
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling/blocks"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling/slots"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling/timegrid"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// busyIntervals собирает занятые интервалы каждого мастера: блокировки и активные записи
func busyIntervals(
	providerIDs []int64,
	date types.Date,
	scheduleBlocks []*domain.ScheduleBlock,
	appointments []*domain.Appointment,
) map[int64][]timegrid.Interval {
	busy := blocks.ResolveForProviders(providerIDs, date, scheduleBlocks)

	for _, appointment := range appointments {
		if !appointment.IsActive() || !appointment.Date.Equal(date) {
			continue
		}
		intervals, ok := busy[appointment.ProviderID]
		if !ok {
			continue
		}
		busy[appointment.ProviderID] = append(intervals, timegrid.Interval{
			Start: appointment.StartTime,
			End:   appointment.EndTime,
		})
	}

	return busy
}

// calculateSlots проходит по кандидатам генератора и по мастерам в порядке providerIDs
// Слот выдаётся для каждого мастера, у которого он не пересекается с занятыми интервалами
func calculateSlots(gen slots.Generator, providerIDs []int64, busy map[int64][]timegrid.Interval) []Slot {
	result := make([]Slot, 0)

	for start := range gen.Candidates() {
		candidate := timegrid.Interval{Start: start, End: start + gen.ServiceDuration}
		for _, providerID := range providerIDs {
			if candidate.OverlapsAny(busy[providerID]) {
				continue
			}
			result = append(result, Slot{StartTime: start, ProviderID: providerID})
		}
	}

	return result
}

// filterNotice убирает слоты, начинающиеся раньше earliest
func filterNotice(all []Slot, earliest int) []Slot {
	if earliest <= domain.DayStartMinutes {
		return all
	}
	result := make([]Slot, 0, len(all))
	for _, slot := range all {
		if slot.StartTime >= earliest {
			result = append(result, slot)
		}
	}
	return result
}
