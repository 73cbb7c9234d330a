package get_available_slots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/cache"
	catalogRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/catalog"
	configRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/config"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling/slots"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling/window"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

// UseCase use case для получения доступных слотов для бронирования
// Только чтение, без побочных эффектов в хранилище
type UseCase struct {
	catalogRepo     CatalogRepository
	scheduleRepo    ScheduleRepository
	appointmentRepo AppointmentRepository
	configRepo      ConfigRepository
	cache           SlotsCache
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
// slotsCache может быть nil, тогда кэш не используется
func NewUseCase(
	catalogRepo CatalogRepository,
	scheduleRepo ScheduleRepository,
	appointmentRepo AppointmentRepository,
	configRepo ConfigRepository,
	slotsCache SlotsCache,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	if slotsCache == nil {
		slotsCache = cache.Noop{}
	}
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	return &UseCase{
		catalogRepo:     catalogRepo,
		scheduleRepo:    scheduleRepo,
		appointmentRepo: appointmentRepo,
		configRepo:      configRepo,
		cache:           slotsCache,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: tenant=%d, service=%d, provider=%s, date=%s",
		req.TenantID, req.ServiceID, providerString(req.ProviderID), req.Date)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Текущий момент в настенном времени тенанта
	now := window.MomentOf(uc.timeProvider.Now())

	// 3. Получаем услугу
	service, err := uc.catalogRepo.GetService(ctx, req.TenantID, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, domain.ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", domain.ErrRepositoryUnavailable, err)
	}
	if !service.IsActive || service.DurationMinutes <= 0 {
		uc.logger.Warn("GetAvailableSlots: service id=%d is inactive", req.ServiceID)
		return nil, domain.ErrServiceNotFound
	}

	// 4. Определяем мастеров, которые оказывают услугу
	providerIDs, err := uc.eligibleProviders(ctx, req)
	if err != nil {
		return nil, err
	}

	// 5. Получаем конфигурацию слотов с учетом иерархии
	config, err := uc.configRepo.GetConfigWithHierarchy(ctx, req.TenantID, ptr.Ptr(req.ServiceID))
	if err != nil && !errors.Is(err, configRepo.ErrConfigNotFound) {
		uc.logger.Error("GetAvailableSlots: failed to get config: %v", err)
		return nil, fmt.Errorf("%w: failed to get config: %v", domain.ErrRepositoryUnavailable, err)
	}
	if config == nil {
		config = domain.DefaultSlotsConfig(req.TenantID)
	}

	// 6. Валидация даты с учетом конфигурации
	if err := window.CheckDate(req.Date, now, config); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	response := &Response{
		Date:       req.Date,
		ServiceID:  req.ServiceID,
		ProviderID: req.ProviderID,
		Slots:      []Slot{},
	}
	if len(providerIDs) == 0 {
		uc.logger.Info("GetAvailableSlots: no providers offer service id=%d", req.ServiceID)
		return response, nil
	}

	earliest := window.EarliestStart(req.Date, now, config)
	key := cache.Key{
		TenantID:    req.TenantID,
		ServiceID:   req.ServiceID,
		ProviderID:  req.ProviderID,
		Date:        req.Date,
		Granularity: config.GranularityMinutes,
	}

	// 7. Пробуем кэш; версия берётся до чтения хранилища
	cached, version, ok := uc.fromCache(ctx, key)
	if ok {
		response.Slots = filterNotice(cached, earliest)
		return response, nil
	}

	// 8. Часы работы; выходной - пустой список
	hours, err := uc.scheduleRepo.LoadOpeningHours(ctx, req.TenantID, req.Date.Weekday())
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to load opening hours: %v", err)
		return nil, fmt.Errorf("%w: failed to load opening hours: %v", domain.ErrRepositoryUnavailable, err)
	}
	if !hours.IsOpen() {
		uc.logger.Info("GetAvailableSlots: tenant=%d is closed on %s", req.TenantID, req.Date)
		return response, nil
	}

	// 9. Записи и блокировки мастеров читаем параллельно
	group, groupCtx := errgroup.WithContext(ctx)

	appointments := make([]*domain.Appointment, 0)
	group.Go(func() error {
		loaded, err := uc.appointmentRepo.LoadAppointments(groupCtx, req.TenantID, providerIDs, req.Date)
		if err != nil {
			return fmt.Errorf("failed to load appointments: %w", err)
		}
		appointments = loaded
		return nil
	})

	scheduleBlocks := make([]*domain.ScheduleBlock, 0)
	group.Go(func() error {
		loaded, err := uc.scheduleRepo.LoadBlocks(groupCtx, req.TenantID, providerIDs, req.Date)
		if err != nil {
			return fmt.Errorf("failed to load blocks: %w", err)
		}
		scheduleBlocks = loaded
		return nil
	})

	if err := group.Wait(); err != nil {
		uc.logger.Error("GetAvailableSlots: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}

	// 10. Вычисляем свободные слоты
	gen := slots.ForDay(hours, service.DurationMinutes, config.GranularityMinutes)
	all := calculateSlots(gen, providerIDs, busyIntervals(providerIDs, req.Date, scheduleBlocks, appointments))

	uc.toCache(ctx, key, version, all)

	response.Slots = filterNotice(all, earliest)

	uc.logger.Info("GetAvailableSlots: found %d slots for tenant=%d, service=%d, date=%s",
		len(response.Slots), req.TenantID, req.ServiceID, req.Date)

	return response, nil
}

// eligibleProviders возвращает отсортированные ID мастеров с активной связкой на услугу
// Явно указанный мастер без такой связки - ErrServiceNotOfferedByProvider
func (uc *UseCase) eligibleProviders(ctx context.Context, req *Request) ([]int64, error) {
	links, err := uc.catalogRepo.LoadActiveProviderServices(ctx, req.TenantID, req.ServiceID, req.ProviderID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to load provider services: %v", err)
		return nil, fmt.Errorf("%w: failed to load provider services: %v", domain.ErrRepositoryUnavailable, err)
	}

	seen := make(map[int64]struct{}, len(links))
	providerIDs := make([]int64, 0, len(links))
	for _, link := range links {
		if req.ProviderID != nil && link.ProviderID != *req.ProviderID {
			continue
		}
		if _, ok := seen[link.ProviderID]; ok {
			continue
		}
		seen[link.ProviderID] = struct{}{}
		providerIDs = append(providerIDs, link.ProviderID)
	}
	sort.Slice(providerIDs, func(i, j int) bool { return providerIDs[i] < providerIDs[j] })

	if req.ProviderID != nil && len(providerIDs) == 0 {
		uc.logger.Warn("GetAvailableSlots: provider id=%d does not offer service id=%d", *req.ProviderID, req.ServiceID)
		return nil, domain.ErrServiceNotOfferedByProvider
	}

	return providerIDs, nil
}

// fromCache ошибки кэша не прерывают запрос
// Версия возвращается и при промахе, ответ потом пишется под ней
func (uc *UseCase) fromCache(ctx context.Context, key cache.Key) ([]Slot, int64, bool) {
	entry, ok, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: cache get failed: %v", err)
		return nil, entry.Version, false
	}
	if !ok {
		return nil, entry.Version, false
	}

	var cached []Slot
	if err := json.Unmarshal(entry.Data, &cached); err != nil {
		uc.logger.Warn("GetAvailableSlots: cache entry is corrupted: %v", err)
		return nil, entry.Version, false
	}
	return cached, entry.Version, true
}

func (uc *UseCase) toCache(ctx context.Context, key cache.Key, version int64, all []Slot) {
	data, err := json.Marshal(all)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: failed to encode cache entry: %v", err)
		return
	}
	if err := uc.cache.Set(ctx, key, version, data); err != nil {
		uc.logger.Warn("GetAvailableSlots: cache set failed: %v", err)
	}
}

func providerString(providerID *int64) string {
	if providerID == nil {
		return "any"
	}
	return fmt.Sprintf("%d", *providerID)
}
