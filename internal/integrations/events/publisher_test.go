package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentBooked_JSON(t *testing.T) {
	event := AppointmentBooked{
		AppointmentID: 5,
		TenantID:      1,
		ProviderID:    2,
		ServiceID:     3,
		ClientID:      4,
		Date:          "2026-10-14",
		StartTime:     "10:00",
		EndTime:       "11:00",
		BookedAt:      time.Date(2026, time.October, 14, 8, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"appointmentId": 5, "tenantId": 1, "providerId": 2, "serviceId": 3, "clientId": 4,
		"date": "2026-10-14", "startTime": "10:00", "endTime": "11:00",
		"bookedAt": "2026-10-14T08:00:00Z"
	}`, string(data))
}

func TestPublisher_Closed(t *testing.T) {
	p := &Publisher{exchange: DefaultExchange}

	err := p.AppointmentBooked(context.Background(), AppointmentBooked{})
	assert.ErrorIs(t, err, ErrPublisherClosed)
	assert.NoError(t, p.Close())
}
