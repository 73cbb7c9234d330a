package get_available_slots

import (
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling/timegrid"
	getAvailableSlots "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date       string          `json:"date"`
	ServiceID  int64           `json:"serviceId"`
	ProviderID *int64          `json:"providerId,omitempty"`
	Slots      []AvailableSlot `json:"slots"`
}

// AvailableSlot свободное время у мастера
type AvailableSlot struct {
	Time       string `json:"time"` // "10:00"
	ProviderID int64  `json:"providerId"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			Time:       timegrid.FormatMinutes(slot.StartTime),
			ProviderID: slot.ProviderID,
		}
	}

	return &AvailableSlotsResponse{
		Date:       resp.Date.String(),
		ServiceID:  resp.ServiceID,
		ProviderID: resp.ProviderID,
		Slots:      slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(tenantID, serviceID int64, providerID *int64, dateStr string) (*getAvailableSlots.Request, error) {
	date, err := types.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		TenantID:   tenantID,
		ServiceID:  serviceID,
		ProviderID: providerID,
		Date:       date,
	}, nil
}
