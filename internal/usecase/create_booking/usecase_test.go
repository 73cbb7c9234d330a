package create_booking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/lock"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/events"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling/timegrid"
	"github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

const (
	tenantID  = int64(1)
	serviceID = int64(10)
	anna      = int64(1)
	boris     = int64(2)
	viktor    = int64(3) // не оказывает услугу
)

// wednesday - рабочий день 09:00-12:00
var wednesday = types.NewDate(2026, time.October, 14)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

var dayBefore = fixedTime{time.Date(2026, time.October, 13, 12, 0, 0, 0, time.UTC)}

type recordingCache struct {
	mu    sync.Mutex
	dates []types.Date
}

func (c *recordingCache) Invalidate(_ context.Context, _ int64, date types.Date) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dates = append(c.dates, date)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	booked []events.AppointmentBooked
	err    error
}

func (p *recordingPublisher) AppointmentBooked(_ context.Context, event events.AppointmentBooked) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.booked = append(p.booked, event)
	return nil
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (m *recordingMetrics) IncBookingOutcome(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

type fixture struct {
	store     *memory.Store
	locker    *lock.KeyedLocker
	cache     *recordingCache
	publisher *recordingPublisher
	metrics   *recordingMetrics
	uc        *UseCase
}

func newStore() *memory.Store {
	store := memory.NewStore()
	store.AddService(domain.Service{ID: serviceID, TenantID: tenantID, Name: "Haircut", DurationMinutes: 60, IsActive: true})
	store.AddProvider(domain.Provider{ID: anna, TenantID: tenantID, Name: "Anna", IsActive: true})
	store.AddProvider(domain.Provider{ID: boris, TenantID: tenantID, Name: "Boris", IsActive: true})
	store.AddProvider(domain.Provider{ID: viktor, TenantID: tenantID, Name: "Viktor", IsActive: true})
	store.AddProviderService(domain.ProviderService{TenantID: tenantID, ProviderID: anna, ServiceID: serviceID, IsActive: true})
	store.AddProviderService(domain.ProviderService{TenantID: tenantID, ProviderID: boris, ServiceID: serviceID, IsActive: true})
	store.SetOpeningHours(domain.OpeningHours{TenantID: tenantID, Weekday: time.Wednesday, OpenTime: 540, CloseTime: 720})
	return store
}

func newFixture(t *testing.T, store *memory.Store, timeout time.Duration) *fixture {
	t.Helper()

	f := &fixture{
		store:     store,
		locker:    lock.NewKeyedLocker(),
		cache:     &recordingCache{},
		publisher: &recordingPublisher{},
		metrics:   &recordingMetrics{outcomes: make(map[string]int)},
	}
	f.uc = NewUseCase(store, store, store, store, memory.TxManager{}, f.locker,
		f.cache, f.publisher, f.metrics, dayBefore, timeout, logger.Nop())
	return f
}

func request(providerID int64, startTime string) *Request {
	return &Request{
		TenantID:   tenantID,
		ProviderID: providerID,
		ServiceID:  serviceID,
		ClientID:   100,
		Date:       wednesday,
		StartTime:  startTime,
	}
}

// assertNoOverlap проверяет, что активные записи мастера не пересекаются
func assertNoOverlap(t *testing.T, appointments []*domain.Appointment) {
	t.Helper()
	for i, a := range appointments {
		for _, b := range appointments[i+1:] {
			if !a.IsActive() || !b.IsActive() || a.ProviderID != b.ProviderID || !a.Date.Equal(b.Date) {
				continue
			}
			assert.False(t, timegrid.Overlaps(a.StartTime, a.EndTime, b.StartTime, b.EndTime),
				"appointments %d and %d overlap", a.ID, b.ID)
		}
	}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t, newStore(), 0)
	req := request(anna, "10:00")
	req.Notes = ptr.Ptr("first visit")

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.Equal(t, 600, resp.StartTime)
	assert.Equal(t, 660, resp.EndTime)
	assert.Equal(t, string(domain.StatusScheduled), resp.Status)
	assert.Equal(t, "first visit", *resp.Notes)

	stored := f.store.Appointments()
	require.Len(t, stored, 1)
	assert.Equal(t, resp.ID, stored[0].ID)

	assert.Equal(t, []types.Date{wednesday}, f.cache.dates)
	require.Len(t, f.publisher.booked, 1)
	assert.Equal(t, "10:00", f.publisher.booked[0].StartTime)
	assert.Equal(t, "11:00", f.publisher.booked[0].EndTime)
	assert.Equal(t, 1, f.metrics.outcomes[metrics.BookingCreated])
}

func TestExecute_SlotTaken(t *testing.T) {
	f := newFixture(t, newStore(), 0)

	_, err := f.uc.Execute(context.Background(), request(anna, "10:00"))
	require.NoError(t, err)

	// 10:30-11:30 частично пересекается с 10:00-11:00
	_, err = f.uc.Execute(context.Background(), request(anna, "10:30"))
	assert.ErrorIs(t, err, domain.ErrSlotNoLongerAvailable)

	// Другой мастер в то же время свободен
	_, err = f.uc.Execute(context.Background(), request(boris, "10:30"))
	assert.NoError(t, err)

	// Соседний слот: конец одной записи равен началу другой
	_, err = f.uc.Execute(context.Background(), request(anna, "11:00"))
	assert.NoError(t, err)

	assert.Len(t, f.store.Appointments(), 3)
	assert.Equal(t, 1, f.metrics.outcomes[metrics.BookingConflict])
	assert.Equal(t, 3, f.metrics.outcomes[metrics.BookingCreated])
}

func TestExecute_ConcurrentSameSlot(t *testing.T) {
	f := newFixture(t, newStore(), 0)

	const clients = 20
	var (
		wg        sync.WaitGroup
		succeeded int32
		conflicts int32
	)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(clientID int64) {
			defer wg.Done()
			req := request(anna, "10:00")
			req.ClientID = clientID
			_, err := f.uc.Execute(context.Background(), req)
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case errors.Is(err, domain.ErrSlotNoLongerAvailable):
				atomic.AddInt32(&conflicts, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(int64(100 + i))
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded)
	assert.Equal(t, int32(clients-1), conflicts)
	assert.Len(t, f.store.Appointments(), 1)
}

func TestExecute_ConcurrentPartialOverlap(t *testing.T) {
	f := newFixture(t, newStore(), 0)

	starts := []string{"09:00", "09:30", "10:00", "10:30", "11:00"}
	var wg sync.WaitGroup
	for round := 0; round < 4; round++ {
		for _, start := range starts {
			wg.Add(1)
			go func(start string) {
				defer wg.Done()
				_, err := f.uc.Execute(context.Background(), request(anna, start))
				if err != nil {
					assert.ErrorIs(t, err, domain.ErrSlotNoLongerAvailable)
				}
			}(start)
		}
	}
	wg.Wait()

	stored := f.store.Appointments()
	assert.NotEmpty(t, stored)
	assert.LessOrEqual(t, len(stored), 3)
	assertNoOverlap(t, stored)
}

// Два экземпляра сервиса с собственными блокировками и общим хранилищем:
// последней линией защиты остаётся проверка пересечений при вставке
func TestExecute_ConcurrentInstances(t *testing.T) {
	store := newStore()
	first := newFixture(t, store, 0)
	second := newFixture(t, store, 0)

	var (
		wg        sync.WaitGroup
		succeeded int32
	)
	for i := 0; i < 10; i++ {
		for _, f := range []*fixture{first, second} {
			wg.Add(1)
			go func(uc *UseCase) {
				defer wg.Done()
				_, err := uc.Execute(context.Background(), request(anna, "10:00"))
				if err == nil {
					atomic.AddInt32(&succeeded, 1)
					return
				}
				assert.ErrorIs(t, err, domain.ErrSlotNoLongerAvailable)
			}(f.uc)
		}
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded)
	assert.Len(t, store.Appointments(), 1)
}

func TestExecute_Timeout(t *testing.T) {
	f := newFixture(t, newStore(), 50*time.Millisecond)
	req := request(anna, "10:00")

	// Другой запрос держит блокировку дольше таймаута
	release, err := f.locker.Lock(context.Background(), slotKey(req))
	require.NoError(t, err)
	defer release()

	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrBookingTimeout)
	assert.Equal(t, domain.KindBookingTimeout, domain.KindOf(err))
	assert.Empty(t, f.store.Appointments())
	assert.Empty(t, f.publisher.booked)
	assert.Equal(t, 1, f.metrics.outcomes[metrics.BookingTimeout])
}

func TestExecute_CallerCancelled(t *testing.T) {
	f := newFixture(t, newStore(), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uc.Execute(ctx, request(anna, "10:00"))
	assert.ErrorIs(t, err, domain.ErrBookingTimeout)
	assert.Empty(t, f.store.Appointments())

	// Блокировка освобождена: следующий запрос проходит
	_, err = f.uc.Execute(context.Background(), request(anna, "10:00"))
	assert.NoError(t, err)
}

func TestExecute_ProviderNotOffering(t *testing.T) {
	f := newFixture(t, newStore(), 0)

	_, err := f.uc.Execute(context.Background(), request(viktor, "10:00"))
	assert.ErrorIs(t, err, domain.ErrServiceNotOfferedByProvider)
	assert.Empty(t, f.store.Appointments())
	assert.Equal(t, 1, f.metrics.outcomes[metrics.BookingRejected])
}

func TestExecute_InvalidTimeFormat(t *testing.T) {
	f := newFixture(t, newStore(), 0)

	for _, value := range []string{"", "9:00", "10:60", "25:00", "24:00", "ab:cd"} {
		t.Run(value, func(t *testing.T) {
			_, err := f.uc.Execute(context.Background(), request(anna, value))
			assert.ErrorIs(t, err, domain.ErrInvalidTimeFormat)
		})
	}
	assert.Empty(t, f.store.Appointments())
}

func TestExecute_InvalidInput(t *testing.T) {
	f := newFixture(t, newStore(), 0)

	tests := map[string]func(r *Request){
		"no tenant":   func(r *Request) { r.TenantID = 0 },
		"no provider": func(r *Request) { r.ProviderID = 0 },
		"no service":  func(r *Request) { r.ServiceID = 0 },
		"no client":   func(r *Request) { r.ClientID = -1 },
		"no date":     func(r *Request) { r.Date = types.Date{} },
		"long notes": func(r *Request) {
			notes := make([]byte, domain.MaxNotesLength+1)
			for i := range notes {
				notes[i] = 'a'
			}
			r.Notes = ptr.Ptr(string(notes))
		},
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			req := request(anna, "10:00")
			mutate(req)
			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestExecute_OutsideOpeningHours(t *testing.T) {
	f := newFixture(t, newStore(), 0)

	// 11:30 + 60 минут выходит за 12:00
	_, err := f.uc.Execute(context.Background(), request(anna, "11:30"))
	assert.ErrorIs(t, err, domain.ErrSlotNoLongerAvailable)

	_, err = f.uc.Execute(context.Background(), request(anna, "08:00"))
	assert.ErrorIs(t, err, domain.ErrSlotNoLongerAvailable)

	// Четверг - выходной
	req := request(anna, "10:00")
	req.Date = wednesday.AddDays(1)
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrSlotNoLongerAvailable)

	assert.Empty(t, f.store.Appointments())
}

func TestExecute_Blocked(t *testing.T) {
	store := newStore()
	store.AddBlock(domain.ScheduleBlock{
		TenantID:   tenantID,
		ProviderID: ptr.Ptr(anna),
		Kind:       domain.BlockKindOneOff,
		Date:       ptr.Ptr(wednesday),
		StartTime:  630,
		EndTime:    660,
	})
	f := newFixture(t, store, 0)

	_, err := f.uc.Execute(context.Background(), request(anna, "10:00"))
	assert.ErrorIs(t, err, domain.ErrSlotNoLongerAvailable)

	_, err = f.uc.Execute(context.Background(), request(boris, "10:00"))
	assert.NoError(t, err)
}

func TestExecute_DateRules(t *testing.T) {
	store := newStore()
	f := newFixture(t, store, 0)

	req := request(anna, "10:00")
	req.Date = wednesday.AddDays(-7)
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	_, err = store.Upsert(context.Background(), &domain.SlotsConfig{TenantID: tenantID, GranularityMinutes: 30, AdvanceBookingDays: 5})
	require.NoError(t, err)

	req.Date = wednesday.AddDays(7)
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrDateTooFarInFuture)
}

func TestExecute_MinimumNotice(t *testing.T) {
	store := newStore()
	_, err := store.Upsert(context.Background(), &domain.SlotsConfig{TenantID: tenantID, GranularityMinutes: 30, MinBookingNoticeMinutes: 30})
	require.NoError(t, err)

	f := newFixture(t, store, 0)
	f.uc.timeProvider = fixedTime{time.Date(2026, time.October, 14, 9, 40, 0, 0, time.UTC)}

	_, err = f.uc.Execute(context.Background(), request(anna, "10:00"))
	assert.ErrorIs(t, err, domain.ErrSlotNoLongerAvailable)

	_, err = f.uc.Execute(context.Background(), request(anna, "10:30"))
	assert.NoError(t, err)
}

func TestExecute_RepositoryUnavailable(t *testing.T) {
	store := newStore()
	store.FailOn("Create", errors.New("connection reset"))
	f := newFixture(t, store, 0)

	_, err := f.uc.Execute(context.Background(), request(anna, "10:00"))
	assert.ErrorIs(t, err, domain.ErrRepositoryUnavailable)
	assert.NotContains(t, domain.AsError(err).Message, "connection reset")
	assert.Empty(t, f.cache.dates)
	assert.Equal(t, 1, f.metrics.outcomes[metrics.BookingError])
}

// Перепроверка по устаревшему снимку пропускает чужую запись,
// вставку отклоняет БД: exclusion constraint или сериализация
func TestExecute_StoreRejectsInsertAfterStaleRecheck(t *testing.T) {
	tests := []struct {
		name string
		code pq.ErrorCode
	}{
		{name: "exclusion violation", code: "23P01"},
		{name: "serialization failure", code: "40001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore()
			store.FailOn("Create", &pq.Error{Code: tt.code, Constraint: "appointments_no_overlap"})
			f := newFixture(t, store, 0)

			_, err := f.uc.Execute(context.Background(), request(anna, "10:00"))
			assert.ErrorIs(t, err, domain.ErrSlotNoLongerAvailable)
			assert.Empty(t, f.store.Appointments())
			assert.Empty(t, f.cache.dates)
			assert.Equal(t, 1, f.metrics.outcomes[metrics.BookingConflict])
		})
	}
}

func TestExecute_PublishFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture(t, newStore(), 0)
	f.publisher.err = errors.New("broker down")

	_, err := f.uc.Execute(context.Background(), request(anna, "10:00"))
	assert.NoError(t, err)
	assert.Len(t, f.store.Appointments(), 1)
}

// Каждый предложенный слот бронируется, после чего он пропадает из выдачи
func TestExecute_ConsistentWithAvailability(t *testing.T) {
	store := newStore()
	f := newFixture(t, store, 0)
	availability := get_available_slots.NewUseCase(store, store, store, store, nil, dayBefore, logger.Nop())

	slotsReq := &get_available_slots.Request{TenantID: tenantID, ServiceID: serviceID, ProviderID: ptr.Ptr(anna), Date: wednesday}

	for {
		resp, err := availability.Execute(context.Background(), slotsReq)
		require.NoError(t, err)
		if len(resp.Slots) == 0 {
			break
		}

		slot := resp.Slots[0]
		booked, err := f.uc.Execute(context.Background(), request(slot.ProviderID, timegrid.FormatMinutes(slot.StartTime)))
		require.NoError(t, err)

		after, err := availability.Execute(context.Background(), slotsReq)
		require.NoError(t, err)
		for _, s := range after.Slots {
			assert.False(t, timegrid.Overlaps(s.StartTime, s.StartTime+60, booked.StartTime, booked.EndTime))
		}
	}

	stored := store.Appointments()
	assert.Len(t, stored, 3)
	assertNoOverlap(t, stored)
}
