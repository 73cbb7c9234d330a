// Package memory хранилище в памяти с семантикой postgres репозиториев
// Используется в тестах и для локального запуска без БД
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/catalog"
	configRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/config"
	"github.com/m04kA/SMC-SchedulingService/internal/scheduling/timegrid"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Store реализует репозитории каталога, расписания, записей и конфигурации
type Store struct {
	mu sync.RWMutex

	services         map[int64]*domain.Service
	providers        map[int64]*domain.Provider
	providerServices []*domain.ProviderService
	openingHours     map[hoursKey]*domain.OpeningHours
	blocks           []*domain.ScheduleBlock
	appointments     map[int64]*domain.Appointment
	configs          []*domain.SlotsConfig

	nextID   int64
	failures map[string]error
	now      func() time.Time
}

type hoursKey struct {
	tenantID int64
	weekday  time.Weekday
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		services:     make(map[int64]*domain.Service),
		providers:    make(map[int64]*domain.Provider),
		openingHours: make(map[hoursKey]*domain.OpeningHours),
		appointments: make(map[int64]*domain.Appointment),
		failures:     make(map[string]error),
		now:          time.Now,
	}
}

// FailOn заставляет операцию op возвращать err (nil снимает ошибку)
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	if err, ok := s.failures[op]; ok {
		return fmt.Errorf("memory: %s: %w", op, err)
	}
	return nil
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// AddService добавляет услугу
func (s *Store) AddService(service domain.Service) *domain.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	if service.ID == 0 {
		service.ID = s.id()
	}
	s.services[service.ID] = &service
	return &service
}

// AddProvider добавляет мастера
func (s *Store) AddProvider(provider domain.Provider) *domain.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	if provider.ID == 0 {
		provider.ID = s.id()
	}
	s.providers[provider.ID] = &provider
	return &provider
}

// AddProviderService связывает мастера с услугой
func (s *Store) AddProviderService(link domain.ProviderService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if link.ID == 0 {
		link.ID = s.id()
	}
	s.providerServices = append(s.providerServices, &link)
}

// SetOpeningHours задаёт часы работы на день недели
func (s *Store) SetOpeningHours(hours domain.OpeningHours) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openingHours[hoursKey{hours.TenantID, hours.Weekday}] = &hours
}

// AddBlock добавляет блокировку расписания
func (s *Store) AddBlock(block domain.ScheduleBlock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if block.ID == 0 {
		block.ID = s.id()
	}
	if block.Status == "" {
		block.Status = domain.BlockStatusActive
	}
	s.blocks = append(s.blocks, &block)
}

// --- catalog ---

// GetService получает услугу тенанта по ID
func (s *Store) GetService(_ context.Context, tenantID, serviceID int64) (*domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.failure("GetService"); err != nil {
		return nil, err
	}
	service, ok := s.services[serviceID]
	if !ok || service.TenantID != tenantID {
		return nil, catalogRepo.ErrServiceNotFound
	}
	out := *service
	return &out, nil
}

// LoadActiveProviderServices получает активные связки активных мастеров
func (s *Store) LoadActiveProviderServices(_ context.Context, tenantID, serviceID int64, providerID *int64) ([]*domain.ProviderService, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.failure("LoadActiveProviderServices"); err != nil {
		return nil, err
	}

	links := make([]*domain.ProviderService, 0)
	for _, link := range s.providerServices {
		if link.TenantID != tenantID || link.ServiceID != serviceID || !link.IsActive {
			continue
		}
		if providerID != nil && link.ProviderID != *providerID {
			continue
		}
		provider, ok := s.providers[link.ProviderID]
		if !ok || !provider.IsActive || provider.TenantID != tenantID {
			continue
		}
		out := *link
		links = append(links, &out)
	}

	slices.SortFunc(links, func(a, b *domain.ProviderService) int {
		return cmp.Compare(a.ProviderID, b.ProviderID)
	})
	return links, nil
}

// --- schedule ---

// LoadOpeningHours получает часы работы, nil для выходного
func (s *Store) LoadOpeningHours(_ context.Context, tenantID int64, weekday time.Weekday) (*domain.OpeningHours, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.failure("LoadOpeningHours"); err != nil {
		return nil, err
	}
	hours, ok := s.openingHours[hoursKey{tenantID, weekday}]
	if !ok {
		return nil, nil
	}
	out := *hours
	return &out, nil
}

// LoadBlocks получает блокировки тенанта, относящиеся к мастерам providerIDs или ко всей точке
// Фильтрация по дате выполняется в blocks.Resolve
func (s *Store) LoadBlocks(_ context.Context, tenantID int64, providerIDs []int64, _ types.Date) ([]*domain.ScheduleBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.failure("LoadBlocks"); err != nil {
		return nil, err
	}

	result := make([]*domain.ScheduleBlock, 0)
	for _, block := range s.blocks {
		if block.TenantID != tenantID {
			continue
		}
		if block.ProviderID != nil && !slices.Contains(providerIDs, *block.ProviderID) {
			continue
		}
		out := *block
		result = append(result, &out)
	}
	return result, nil
}

// --- appointments ---

// Create вставляет запись, отклоняя пересечение с активной записью мастера
func (s *Store) Create(_ context.Context, appointment *domain.Appointment) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failure("Create"); err != nil {
		return nil, err
	}

	if appointment.Status.IsActive() {
		for _, existing := range s.appointments {
			if existing.TenantID != appointment.TenantID ||
				existing.ProviderID != appointment.ProviderID ||
				!existing.Date.Equal(appointment.Date) ||
				!existing.IsActive() {
				continue
			}
			if timegrid.Overlaps(existing.StartTime, existing.EndTime, appointment.StartTime, appointment.EndTime) {
				return nil, fmt.Errorf("%w: Create - overlaps appointment id=%d", appointmentRepo.ErrSlotConflict, existing.ID)
			}
		}
	}

	stored := *appointment
	stored.ID = s.id()
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt
	s.appointments[stored.ID] = &stored

	out := stored
	return &out, nil
}

// GetByID получает запись тенанта
func (s *Store) GetByID(_ context.Context, tenantID, id int64) (*domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.failure("GetByID"); err != nil {
		return nil, err
	}
	appointment, ok := s.appointments[id]
	if !ok || appointment.TenantID != tenantID {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	out := *appointment
	return &out, nil
}

// LoadAppointments получает активные записи мастеров на дату
func (s *Store) LoadAppointments(_ context.Context, tenantID int64, providerIDs []int64, date types.Date) ([]*domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.failure("LoadAppointments"); err != nil {
		return nil, err
	}
	return s.filterAppointments(func(a *domain.Appointment) bool {
		return a.TenantID == tenantID &&
			a.Date.Equal(date) &&
			a.IsActive() &&
			slices.Contains(providerIDs, a.ProviderID)
	}), nil
}

// ListByProviderAndDate получает все записи мастера на дату
func (s *Store) ListByProviderAndDate(_ context.Context, tenantID, providerID int64, date types.Date) ([]*domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.failure("ListByProviderAndDate"); err != nil {
		return nil, err
	}
	return s.filterAppointments(func(a *domain.Appointment) bool {
		return a.TenantID == tenantID && a.ProviderID == providerID && a.Date.Equal(date)
	}), nil
}

// UpdateStatus меняет статус from -> to, если текущий статус равен from
func (s *Store) UpdateStatus(_ context.Context, tenantID, id int64, from, to domain.AppointmentStatus) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failure("UpdateStatus"); err != nil {
		return nil, err
	}
	appointment, ok := s.appointments[id]
	if !ok || appointment.TenantID != tenantID || appointment.Status != from {
		return nil, appointmentRepo.ErrStatusChanged
	}
	appointment.Status = to
	appointment.UpdatedAt = s.now()

	out := *appointment
	return &out, nil
}

// LockSlot в памяти сериализация обеспечивается мьютексом Create
func (s *Store) LockSlot(_ context.Context, _ string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failure("LockSlot")
}

// Appointments возвращает копию всех записей, отсортированную по ID
func (s *Store) Appointments() []*domain.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterAppointments(func(*domain.Appointment) bool { return true })
}

func (s *Store) filterAppointments(keep func(*domain.Appointment) bool) []*domain.Appointment {
	result := make([]*domain.Appointment, 0)
	for _, appointment := range s.appointments {
		if keep(appointment) {
			out := *appointment
			result = append(result, &out)
		}
	}
	slices.SortFunc(result, func(a, b *domain.Appointment) int {
		if a.StartTime != b.StartTime {
			return cmp.Compare(a.StartTime, b.StartTime)
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result
}

// --- config ---

// GetConfigWithHierarchy конфигурация услуги, иначе тенанта
func (s *Store) GetConfigWithHierarchy(_ context.Context, tenantID int64, serviceID *int64) (*domain.SlotsConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.failure("GetConfigWithHierarchy"); err != nil {
		return nil, err
	}
	if serviceID != nil {
		if config := s.findConfig(tenantID, serviceID); config != nil {
			return config, nil
		}
	}
	if config := s.findConfig(tenantID, nil); config != nil {
		return config, nil
	}
	return nil, configRepo.ErrConfigNotFound
}

// Upsert создает или обновляет конфигурацию (tenant, service)
func (s *Store) Upsert(_ context.Context, config *domain.SlotsConfig) (*domain.SlotsConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failure("Upsert"); err != nil {
		return nil, err
	}

	now := s.now()
	for _, existing := range s.configs {
		if existing.TenantID == config.TenantID && sameScope(existing.ServiceID, config.ServiceID) {
			existing.GranularityMinutes = config.GranularityMinutes
			existing.AdvanceBookingDays = config.AdvanceBookingDays
			existing.MinBookingNoticeMinutes = config.MinBookingNoticeMinutes
			existing.UpdatedAt = now
			out := *existing
			return &out, nil
		}
	}

	stored := *config
	stored.ID = s.id()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.configs = append(s.configs, &stored)

	out := stored
	return &out, nil
}

func (s *Store) findConfig(tenantID int64, serviceID *int64) *domain.SlotsConfig {
	for _, config := range s.configs {
		if config.TenantID == tenantID && sameScope(config.ServiceID, serviceID) {
			out := *config
			return &out
		}
	}
	return nil
}

func sameScope(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
