package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/events"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
)

// Service сервис для работы с записями
type Service struct {
	appointmentRepo AppointmentRepository
	txManager       TransactionManager
	cache           CacheInvalidator
	publisher       EventPublisher
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
// cache и publisher могут быть nil
func NewService(
	appointmentRepo AppointmentRepository,
	txManager TransactionManager,
	cache CacheInvalidator,
	publisher EventPublisher,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		txManager:       txManager,
		cache:           cache,
		publisher:       publisher,
		logger:          logger,
	}
}

// GetByID получает запись тенанта по ID
func (s *Service) GetByID(ctx context.Context, tenantID, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for tenant=%d", id, tenantID)

	if tenantID <= 0 || id <= 0 {
		return nil, fmt.Errorf("%w: tenant and appointment ids must be positive", domain.ErrInvalidInput)
	}

	appointment, err := s.appointmentRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, domain.ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", domain.ErrRepositoryUnavailable, err)
	}

	s.logger.Info("GetByID: successfully fetched appointment id=%d", id)
	return models.FromDomainAppointment(appointment), nil
}

// ListByProvider получает все записи мастера за день, включая отменённые
func (s *Service) ListByProvider(ctx context.Context, req *models.ListProviderAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListByProvider: fetching appointments for tenant=%d, provider=%d, date=%s",
		req.TenantID, req.ProviderID, req.Date)

	if req.TenantID <= 0 || req.ProviderID <= 0 || req.Date.IsZero() {
		return nil, fmt.Errorf("%w: tenant, provider and date are required", domain.ErrInvalidInput)
	}

	var appointments []*domain.Appointment
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		appointments, err = s.appointmentRepo.ListByProviderAndDate(txCtx, req.TenantID, req.ProviderID, req.Date)
		return err
	})
	if err != nil {
		s.logger.Error("ListByProvider: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: ListByProvider - repository error: %v", domain.ErrRepositoryUnavailable, err)
	}

	s.logger.Info("ListByProvider: successfully fetched %d appointments for provider=%d", len(appointments), req.ProviderID)
	return models.FromDomainAppointmentList(appointments), nil
}

// UpdateStatus меняет статус записи по графу переходов
// scheduled -> confirmed | cancelled, confirmed -> completed | cancelled
// Обновление условное (WHERE status = текущий): конкурентная смена статуса даёт InvalidStatusTransition
func (s *Service) UpdateStatus(ctx context.Context, tenantID, id int64, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("UpdateStatus: updating appointment id=%d to status=%s for tenant=%d", id, req.Status, tenantID)

	next, ok := models.ToDomainStatus(req.Status)
	if !ok {
		s.logger.Warn("UpdateStatus: invalid status=%s", req.Status)
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, req.Status)
	}

	var (
		previous domain.AppointmentStatus
		updated  *domain.Appointment
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Получаем запись
		appointment, err := s.appointmentRepo.GetByID(txCtx, tenantID, id)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				s.logger.Warn("UpdateStatus: appointment id=%d not found", id)
				return domain.ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: UpdateStatus - failed to get appointment: %v", domain.ErrRepositoryUnavailable, err)
		}

		// 2. Проверяем переход; из completed и cancelled выхода нет
		if appointment.Status.IsTerminal() {
			s.logger.Warn("UpdateStatus: appointment id=%d is already %s", id, appointment.Status)
			return fmt.Errorf("%w: appointment is already %s", domain.ErrInvalidStatusTransition, appointment.Status)
		}
		if !appointment.CanTransitionTo(next) {
			s.logger.Warn("UpdateStatus: transition %s -> %s is not allowed for appointment id=%d",
				appointment.Status, next, id)
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, appointment.Status, next)
		}
		previous = appointment.Status

		// 3. Условное обновление
		updated, err = s.appointmentRepo.UpdateStatus(txCtx, tenantID, id, previous, next)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrStatusChanged) {
				s.logger.Warn("UpdateStatus: appointment id=%d status changed concurrently", id)
				return fmt.Errorf("%w: status changed concurrently", domain.ErrInvalidStatusTransition)
			}
			return fmt.Errorf("%w: UpdateStatus - failed to update status: %v", domain.ErrRepositoryUnavailable, err)
		}

		return nil
	})
	if err != nil {
		var domainErr *domain.Error
		if !errors.As(err, &domainErr) {
			err = fmt.Errorf("%w: UpdateStatus - transaction error: %v", domain.ErrRepositoryUnavailable, err)
		}
		if domain.KindOf(err) == domain.KindRepositoryUnavailable {
			s.logger.Error("UpdateStatus: %v", err)
		}
		return nil, err
	}

	s.logger.Info("UpdateStatus: appointment id=%d moved %s -> %s", id, previous, next)
	s.afterUpdate(ctx, updated, previous)

	return models.FromDomainAppointment(updated), nil
}

// afterUpdate сбрасывает кэш и публикует событие; ошибки только логируются
func (s *Service) afterUpdate(ctx context.Context, appointment *domain.Appointment, previous domain.AppointmentStatus) {
	ctx = context.WithoutCancel(ctx)

	// Отмена освобождает интервал
	if s.cache != nil && previous.IsActive() != appointment.Status.IsActive() {
		if err := s.cache.Invalidate(ctx, appointment.TenantID, appointment.Date); err != nil {
			s.logger.Warn("UpdateStatus: failed to invalidate cache: %v", err)
		}
	}

	if s.publisher != nil {
		event := events.AppointmentStatusChanged{
			AppointmentID: appointment.ID,
			TenantID:      appointment.TenantID,
			ProviderID:    appointment.ProviderID,
			Date:          appointment.Date.String(),
			From:          string(previous),
			To:            string(appointment.Status),
			ChangedAt:     changedAt(appointment),
		}
		if err := s.publisher.AppointmentStatusChanged(ctx, event); err != nil {
			s.logger.Warn("UpdateStatus: failed to publish event for appointment id=%d: %v", appointment.ID, err)
		}
	}
}

func changedAt(appointment *domain.Appointment) time.Time {
	if appointment.UpdatedAt.IsZero() {
		return time.Now()
	}
	return appointment.UpdatedAt
}
