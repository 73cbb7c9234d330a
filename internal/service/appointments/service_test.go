package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/events"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

const tenantID = int64(1)

var wednesday = types.NewDate(2026, time.October, 14)

type recordingCache struct {
	invalidated int
}

func (c *recordingCache) Invalidate(context.Context, int64, types.Date) error {
	c.invalidated++
	return nil
}

type recordingPublisher struct {
	changed []events.AppointmentStatusChanged
}

func (p *recordingPublisher) AppointmentStatusChanged(_ context.Context, event events.AppointmentStatusChanged) error {
	p.changed = append(p.changed, event)
	return nil
}

type fixture struct {
	store     *memory.Store
	cache     *recordingCache
	publisher *recordingPublisher
	service   *Service
}

func newFixture() *fixture {
	f := &fixture{
		store:     memory.NewStore(),
		cache:     &recordingCache{},
		publisher: &recordingPublisher{},
	}
	f.service = NewService(f.store, memory.TxManager{}, f.cache, f.publisher, logger.Nop())
	return f
}

func (f *fixture) book(t *testing.T, providerID int64, start int) *domain.Appointment {
	t.Helper()
	appointment, err := f.store.Create(context.Background(), &domain.Appointment{
		TenantID:   tenantID,
		ProviderID: providerID,
		ServiceID:  10,
		ClientID:   100,
		Date:       wednesday,
		StartTime:  start,
		EndTime:    start + 60,
		Status:     domain.StatusScheduled,
	})
	require.NoError(t, err)
	return appointment
}

func TestService_GetByID(t *testing.T) {
	f := newFixture()
	booked := f.book(t, 1, 600)

	resp, err := f.service.GetByID(context.Background(), tenantID, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-14", resp.Date)
	assert.Equal(t, "10:00", resp.StartTime)
	assert.Equal(t, "11:00", resp.EndTime)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Equal(t, "scheduled", resp.Status)

	// Чужой тенант не видит запись
	_, err = f.service.GetByID(context.Background(), 2, booked.ID)
	assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)

	_, err = f.service.GetByID(context.Background(), tenantID, 999)
	assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)

	_, err = f.service.GetByID(context.Background(), tenantID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_ListByProvider(t *testing.T) {
	f := newFixture()
	f.book(t, 1, 660)
	f.book(t, 1, 540)
	f.book(t, 2, 540)

	resp, err := f.service.ListByProvider(context.Background(), &models.ListProviderAppointmentsRequest{
		TenantID: tenantID, ProviderID: 1, Date: wednesday,
	})
	require.NoError(t, err)
	require.Len(t, resp.Appointments, 2)
	assert.Equal(t, "09:00", resp.Appointments[0].StartTime)
	assert.Equal(t, "11:00", resp.Appointments[1].StartTime)

	empty, err := f.service.ListByProvider(context.Background(), &models.ListProviderAppointmentsRequest{
		TenantID: tenantID, ProviderID: 1, Date: wednesday.AddDays(1),
	})
	require.NoError(t, err)
	assert.NotNil(t, empty.Appointments)
	assert.Empty(t, empty.Appointments)

	_, err = f.service.ListByProvider(context.Background(), &models.ListProviderAppointmentsRequest{TenantID: tenantID, ProviderID: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// readOnlyTxManager считает транзакции только для чтения
type readOnlyTxManager struct {
	memory.TxManager
	readOnly int
}

func (m *readOnlyTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	m.readOnly++
	return m.TxManager.DoReadOnly(ctx, fn)
}

func TestService_ListByProviderReadOnly(t *testing.T) {
	f := newFixture()
	f.book(t, 1, 540)
	tx := &readOnlyTxManager{}
	service := NewService(f.store, tx, nil, nil, logger.Nop())

	resp, err := service.ListByProvider(context.Background(), &models.ListProviderAppointmentsRequest{
		TenantID: tenantID, ProviderID: 1, Date: wednesday,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 1)
	assert.Equal(t, 1, tx.readOnly)

	f.store.FailOn("ListByProviderAndDate", errors.New("connection reset"))
	_, err = service.ListByProvider(context.Background(), &models.ListProviderAppointmentsRequest{
		TenantID: tenantID, ProviderID: 1, Date: wednesday,
	})
	assert.ErrorIs(t, err, domain.ErrRepositoryUnavailable)
}

func TestService_UpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name  string
		path  []domain.AppointmentStatus
		next  domain.AppointmentStatus
		allow bool
	}{
		{name: "scheduled to confirmed", next: domain.StatusConfirmed, allow: true},
		{name: "scheduled to cancelled", next: domain.StatusCancelled, allow: true},
		{name: "scheduled to completed", next: domain.StatusCompleted, allow: false},
		{name: "confirmed to completed", path: []domain.AppointmentStatus{domain.StatusConfirmed}, next: domain.StatusCompleted, allow: true},
		{name: "confirmed to scheduled", path: []domain.AppointmentStatus{domain.StatusConfirmed}, next: domain.StatusScheduled, allow: false},
		{name: "cancelled is terminal", path: []domain.AppointmentStatus{domain.StatusCancelled}, next: domain.StatusScheduled, allow: false},
		{name: "completed is terminal", path: []domain.AppointmentStatus{domain.StatusConfirmed, domain.StatusCompleted}, next: domain.StatusCancelled, allow: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			booked := f.book(t, 1, 600)
			for _, status := range tt.path {
				_, err := f.service.UpdateStatus(context.Background(), tenantID, booked.ID, &models.UpdateStatusRequest{Status: string(status)})
				require.NoError(t, err)
			}

			resp, err := f.service.UpdateStatus(context.Background(), tenantID, booked.ID, &models.UpdateStatusRequest{Status: string(tt.next)})
			if tt.allow {
				require.NoError(t, err)
				assert.Equal(t, string(tt.next), resp.Status)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
		})
	}
}

func TestService_UpdateStatusTerminal(t *testing.T) {
	f := newFixture()
	booked := f.book(t, 1, 600)

	_, err := f.service.UpdateStatus(context.Background(), tenantID, booked.ID, &models.UpdateStatusRequest{Status: "cancelled"})
	require.NoError(t, err)

	// Повторная отмена тоже запрещена
	for _, next := range []string{"cancelled", "confirmed", "scheduled"} {
		_, err = f.service.UpdateStatus(context.Background(), tenantID, booked.ID, &models.UpdateStatusRequest{Status: next})
		assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
		assert.Contains(t, err.Error(), "already cancelled")
	}
	assert.Len(t, f.publisher.changed, 1)
}

func TestService_UpdateStatusSideEffects(t *testing.T) {
	f := newFixture()
	booked := f.book(t, 1, 600)

	_, err := f.service.UpdateStatus(context.Background(), tenantID, booked.ID, &models.UpdateStatusRequest{Status: "confirmed"})
	require.NoError(t, err)
	// Подтверждение не освобождает интервал
	assert.Equal(t, 0, f.cache.invalidated)

	_, err = f.service.UpdateStatus(context.Background(), tenantID, booked.ID, &models.UpdateStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.invalidated)

	require.Len(t, f.publisher.changed, 2)
	assert.Equal(t, "scheduled", f.publisher.changed[0].From)
	assert.Equal(t, "confirmed", f.publisher.changed[0].To)
	assert.Equal(t, "cancelled", f.publisher.changed[1].To)

	// Отменённая запись не мешает новой на том же интервале
	f.book(t, 1, 600)
}

func TestService_UpdateStatusErrors(t *testing.T) {
	f := newFixture()
	booked := f.book(t, 1, 600)

	_, err := f.service.UpdateStatus(context.Background(), tenantID, booked.ID, &models.UpdateStatusRequest{Status: "done"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.service.UpdateStatus(context.Background(), tenantID, 999, &models.UpdateStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)

	f.store.FailOn("UpdateStatus", errors.New("connection reset"))
	_, err = f.service.UpdateStatus(context.Background(), tenantID, booked.ID, &models.UpdateStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, domain.ErrRepositoryUnavailable)
	assert.Empty(t, f.publisher.changed)
}

// racingRepository меняет статус записи между чтением и обновлением
type racingRepository struct {
	*memory.Store
}

func (r racingRepository) GetByID(ctx context.Context, tenantID, id int64) (*domain.Appointment, error) {
	appointment, err := r.Store.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.Store.UpdateStatus(ctx, tenantID, id, appointment.Status, domain.StatusCancelled); err != nil {
		return nil, err
	}
	return appointment, nil
}

func TestService_UpdateStatusLostUpdate(t *testing.T) {
	f := newFixture()
	booked := f.book(t, 1, 600)
	service := NewService(racingRepository{f.store}, memory.TxManager{}, nil, nil, logger.Nop())

	_, err := service.UpdateStatus(context.Background(), tenantID, booked.ID, &models.UpdateStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	stored, err := f.store.GetByID(context.Background(), tenantID, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
}
