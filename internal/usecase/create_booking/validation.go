package create_booking

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling/blocks"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling/timegrid"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.TenantID <= 0 {
		return fmt.Errorf("%w: tenantID must be positive", domain.ErrInvalidInput)
	}

	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", domain.ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", domain.ErrInvalidInput)
	}

	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", domain.ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", domain.ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// parseStartTime парсит время начала; 24:00 нельзя использовать как начало
func parseStartTime(startTime string) (int, error) {
	start, err := timegrid.ToMinutes(startTime)
	if err != nil {
		return 0, err
	}
	if start >= domain.DayLengthMinutes {
		return 0, fmt.Errorf("%w: %q cannot start an appointment", domain.ErrInvalidTimeFormat, startTime)
	}
	return start, nil
}

// checkSlotFree повторяет проверку доступности для одного кандидата:
// рабочие часы, блокировки расписания и активные записи мастера
func checkSlotFree(
	candidate timegrid.Interval,
	providerID int64,
	req *Request,
	hours *domain.OpeningHours,
	scheduleBlocks []*domain.ScheduleBlock,
	appointments []*domain.Appointment,
) error {
	if !hours.Contains(candidate.Start, candidate.End) {
		return fmt.Errorf("%w: %s is outside opening hours", domain.ErrSlotNoLongerAvailable, candidate)
	}

	if candidate.OverlapsAny(blocks.Resolve(&providerID, req.Date, scheduleBlocks)) {
		return fmt.Errorf("%w: %s is blocked", domain.ErrSlotNoLongerAvailable, candidate)
	}

	for _, appointment := range appointments {
		if appointment.ProviderID != providerID || !appointment.IsActive() || !appointment.Date.Equal(req.Date) {
			continue
		}
		if candidate.Overlaps(timegrid.Interval{Start: appointment.StartTime, End: appointment.EndTime}) {
			return fmt.Errorf("%w: %s overlaps appointment id=%d", domain.ErrSlotNoLongerAvailable, candidate, appointment.ID)
		}
	}

	return nil
}
