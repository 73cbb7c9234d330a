package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/catalog"
	configRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/config"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/events"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling/timegrid"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling/window"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

// DefaultTimeout таймаут транзакции бронирования
const DefaultTimeout = 5 * time.Second

// UseCase use case для создания записи
//
// Доступность рассчитывается оптимистично (get_available_slots), а здесь
// перепроверяется пессимистично на момент коммита:
// 1. блокировка по ключу (tenant, provider, date) внутри процесса
// 2. pg_advisory_xact_lock по тому же ключу внутри сериализуемой транзакции
// 3. exclusion constraint appointments_no_overlap в БД
//
// Внутри одного инстанса (1) упорядочивает попытки полностью: следующая
// транзакция начинается после коммита предыдущей и видит её запись.
// Между инстансами (2) только выстраивает конкурентов в очередь: снимок
// сериализуемой транзакции берётся на первом запросе, то есть до получения
// lock, и перепроверка ожидавшего может не увидеть чужую запись. Такую
// вставку отклоняет (3) с 23P01 либо SSI с 40001, оба кода дают
// ErrSlotNoLongerAvailable. Гарантию непересечения даёт именно (3).
type UseCase struct {
	catalogRepo     CatalogRepository
	scheduleRepo    ScheduleRepository
	appointmentRepo AppointmentRepository
	configRepo      ConfigRepository
	txManager       TransactionManager
	locker          Locker
	cache           CacheInvalidator
	publisher       EventPublisher
	metrics         Metrics
	timeProvider    TimeProvider
	timeout         time.Duration
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
// cache, publisher и metrics могут быть nil
func NewUseCase(
	catalogRepo CatalogRepository,
	scheduleRepo ScheduleRepository,
	appointmentRepo AppointmentRepository,
	configRepo ConfigRepository,
	txManager TransactionManager,
	locker Locker,
	cache CacheInvalidator,
	publisher EventPublisher,
	metrics Metrics,
	timeProvider TimeProvider,
	timeout time.Duration,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &UseCase{
		catalogRepo:     catalogRepo,
		scheduleRepo:    scheduleRepo,
		appointmentRepo: appointmentRepo,
		configRepo:      configRepo,
		txManager:       txManager,
		locker:          locker,
		cache:           cache,
		publisher:       publisher,
		metrics:         metrics,
		timeProvider:    timeProvider,
		timeout:         timeout,
		logger:          logger,
	}
}

// Execute выполняет use case создания записи
// Повтор запроса создаёт вторую запись, вызывающая сторона не должна повторять его вслепую
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: tenant=%d, provider=%d, service=%d, client=%d, date=%s, time=%s",
		req.TenantID, req.ProviderID, req.ServiceID, req.ClientID, req.Date, req.StartTime)

	result, err := uc.execute(ctx, req)
	uc.observe(err)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created appointment id=%d", result.ID)
	uc.afterCommit(ctx, result)

	return &Response{
		ID:         result.ID,
		TenantID:   result.TenantID,
		ProviderID: result.ProviderID,
		ServiceID:  result.ServiceID,
		ClientID:   result.ClientID,
		Date:       result.Date,
		StartTime:  result.StartTime,
		EndTime:    result.EndTime,
		Status:     string(result.Status),
		Notes:      result.Notes,
		CreatedAt:  result.CreatedAt,
		UpdatedAt:  result.UpdatedAt,
	}, nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*domain.Appointment, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}
	start, err := parseStartTime(req.StartTime)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Текущий момент в настенном времени тенанта
	now := window.MomentOf(uc.timeProvider.Now())

	// 3. Получаем услугу, endTime фиксируется по её длительности
	service, err := uc.catalogRepo.GetService(ctx, req.TenantID, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, domain.ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", domain.ErrRepositoryUnavailable, err)
	}
	if !service.IsActive || service.DurationMinutes <= 0 {
		uc.logger.Warn("CreateBooking: service id=%d is inactive", req.ServiceID)
		return nil, domain.ErrServiceNotFound
	}
	candidate := timegrid.Interval{Start: start, End: start + service.DurationMinutes}

	// 4. Правила окна бронирования
	config, err := uc.configRepo.GetConfigWithHierarchy(ctx, req.TenantID, ptr.Ptr(req.ServiceID))
	if err != nil && !errors.Is(err, configRepo.ErrConfigNotFound) {
		uc.logger.Error("CreateBooking: failed to get config: %v", err)
		return nil, fmt.Errorf("%w: failed to get config: %v", domain.ErrRepositoryUnavailable, err)
	}
	if config == nil {
		config = domain.DefaultSlotsConfig(req.TenantID)
	}

	if err := window.CheckDate(req.Date, now, config); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}
	if earliest := window.EarliestStart(req.Date, now, config); start < earliest {
		uc.logger.Warn("CreateBooking: start %s is earlier than allowed %s",
			timegrid.FormatMinutes(start), timegrid.FormatMinutes(earliest))
		return nil, fmt.Errorf("%w: minimum booking notice is %d minutes",
			domain.ErrSlotNoLongerAvailable, config.MinBookingNoticeMinutes)
	}

	// 5. Сериализация по (tenant, provider, date) с общим таймаутом
	bookCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	key := slotKey(req)
	release, err := uc.locker.Lock(bookCtx, key)
	if err != nil {
		uc.logger.Warn("CreateBooking: lock %s not acquired: %v", key, err)
		return nil, fmt.Errorf("%w: waiting for %s: %v", domain.ErrBookingTimeout, key, err)
	}
	defer release()

	var result *domain.Appointment

	// 6. Перепроверка и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(bookCtx, func(txCtx context.Context) error {
		// 6.1. Очередь между инстансами до конца транзакции
		// Снимок уже взят этим запросом, поэтому окончательно пересечение ловит constraint
		if err := uc.appointmentRepo.LockSlot(txCtx, key); err != nil {
			return fmt.Errorf("failed to lock slot: %w", err)
		}

		// 6.2. Мастер оказывает услугу
		links, err := uc.catalogRepo.LoadActiveProviderServices(txCtx, req.TenantID, req.ServiceID, ptr.Ptr(req.ProviderID))
		if err != nil {
			return fmt.Errorf("failed to load provider services: %w", err)
		}
		if len(links) == 0 {
			uc.logger.Warn("CreateBooking: provider id=%d does not offer service id=%d", req.ProviderID, req.ServiceID)
			return domain.ErrServiceNotOfferedByProvider
		}

		// 6.3. Текущее состояние дня мастера
		hours, err := uc.scheduleRepo.LoadOpeningHours(txCtx, req.TenantID, req.Date.Weekday())
		if err != nil {
			return fmt.Errorf("failed to load opening hours: %w", err)
		}

		providerIDs := []int64{req.ProviderID}
		scheduleBlocks, err := uc.scheduleRepo.LoadBlocks(txCtx, req.TenantID, providerIDs, req.Date)
		if err != nil {
			return fmt.Errorf("failed to load blocks: %w", err)
		}

		// FOR UPDATE внутри транзакции
		appointments, err := uc.appointmentRepo.LoadAppointments(txCtx, req.TenantID, providerIDs, req.Date)
		if err != nil {
			return fmt.Errorf("failed to load appointments: %w", err)
		}

		// 6.4. Слот всё ещё свободен
		if err := checkSlotFree(candidate, req.ProviderID, req, hours, scheduleBlocks, appointments); err != nil {
			uc.logger.Warn("CreateBooking: %v", err)
			return err
		}

		// 6.5. Сохраняем запись
		created, err := uc.appointmentRepo.Create(txCtx, &domain.Appointment{
			TenantID:   req.TenantID,
			ProviderID: req.ProviderID,
			ServiceID:  req.ServiceID,
			ClientID:   req.ClientID,
			Date:       req.Date,
			StartTime:  candidate.Start,
			EndTime:    candidate.End,
			Status:     domain.StatusScheduled,
			Notes:      req.Notes,
		})
		if err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, uc.classify(bookCtx, err)
	}

	return result, nil
}

// classify переводит ошибку транзакции в доменную
// Конфликт проверяется раньше таймаута: проигравший гонку должен получить SlotNoLongerAvailable
func (uc *UseCase) classify(bookCtx context.Context, err error) error {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		return err
	}

	if appointmentRepo.IsConflict(err) {
		uc.logger.Warn("CreateBooking: concurrent booking won the slot: %v", err)
		return fmt.Errorf("%w: %v", domain.ErrSlotNoLongerAvailable, err)
	}

	if bookCtx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		uc.logger.Warn("CreateBooking: transaction aborted: %v", err)
		return fmt.Errorf("%w: %v", domain.ErrBookingTimeout, err)
	}

	uc.logger.Error("CreateBooking: transaction failed: %v", err)
	return fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
}

// afterCommit сбрасывает кэш и публикует событие; ошибки только логируются
func (uc *UseCase) afterCommit(ctx context.Context, appointment *domain.Appointment) {
	ctx = context.WithoutCancel(ctx)

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, appointment.TenantID, appointment.Date); err != nil {
			uc.logger.Warn("CreateBooking: failed to invalidate cache: %v", err)
		}
	}

	if uc.publisher != nil {
		event := events.AppointmentBooked{
			AppointmentID: appointment.ID,
			TenantID:      appointment.TenantID,
			ProviderID:    appointment.ProviderID,
			ServiceID:     appointment.ServiceID,
			ClientID:      appointment.ClientID,
			Date:          appointment.Date.String(),
			StartTime:     timegrid.FormatMinutes(appointment.StartTime),
			EndTime:       timegrid.FormatMinutes(appointment.EndTime),
			BookedAt:      appointment.CreatedAt,
		}
		if err := uc.publisher.AppointmentBooked(ctx, event); err != nil {
			uc.logger.Warn("CreateBooking: failed to publish event for appointment id=%d: %v", appointment.ID, err)
		}
	}
}

func (uc *UseCase) observe(err error) {
	if uc.metrics == nil {
		return
	}

	outcome := metrics.BookingCreated
	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindSlotNoLongerAvailable:
			outcome = metrics.BookingConflict
		case domain.KindBookingTimeout:
			outcome = metrics.BookingTimeout
		case domain.KindRepositoryUnavailable:
			outcome = metrics.BookingError
		default:
			outcome = metrics.BookingRejected
		}
	}
	uc.metrics.IncBookingOutcome(outcome)
}

// slotKey ключ сериализации бронирований
func slotKey(req *Request) string {
	return fmt.Sprintf("booking:%d:%d:%s", req.TenantID, req.ProviderID, req.Date)
}
