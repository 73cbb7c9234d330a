package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/catalog"
	configRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/config"
	"github.com/m04kA/SMC-SchedulingService/internal/service/config/models"
)

// Service сервис для работы с конфигурацией слотов
type Service struct {
	configRepo  ConfigRepository
	catalogRepo CatalogRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса конфигурации
func NewService(
	configRepo ConfigRepository,
	catalogRepo CatalogRepository,
	logger Logger,
) *Service {
	return &Service{
		configRepo:  configRepo,
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// GetWithHierarchy получает действующую конфигурацию
// Приоритет: service > tenant > значения по умолчанию
func (s *Service) GetWithHierarchy(ctx context.Context, req *models.GetConfigRequest) (*models.ConfigResponse, error) {
	s.logger.Info("GetWithHierarchy: fetching config for tenant=%d, service=%v", req.TenantID, req.ServiceID)

	if req.TenantID <= 0 || (req.ServiceID != nil && *req.ServiceID <= 0) {
		return nil, fmt.Errorf("%w: tenant and service ids must be positive", domain.ErrInvalidInput)
	}

	config, err := s.configRepo.GetConfigWithHierarchy(ctx, req.TenantID, req.ServiceID)
	if err != nil {
		if errors.Is(err, configRepo.ErrConfigNotFound) {
			s.logger.Info("GetWithHierarchy: no config for tenant=%d, using defaults", req.TenantID)
			return models.FromDomainConfig(domain.DefaultSlotsConfig(req.TenantID), models.LevelDefault), nil
		}
		s.logger.Error("GetWithHierarchy: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetWithHierarchy - repository error: %v", domain.ErrRepositoryUnavailable, err)
	}

	level := models.LevelOf(config)
	s.logger.Info("GetWithHierarchy: successfully fetched config id=%d (level: %s)", config.ID, level)
	return models.FromDomainConfig(config, level), nil
}

// Upsert создает или обновляет конфигурацию тенанта или услуги
// Кэш доступности не сбрасывается: шаг сетки входит в ключ кэша,
// а минимальное уведомление и горизонт проверяются при каждом чтении
func (s *Service) Upsert(ctx context.Context, req *models.UpdateConfigRequest) (*models.ConfigResponse, error) {
	s.logger.Info("Upsert: saving config for tenant=%d, service=%v", req.TenantID, req.ServiceID)

	// 1. Валидируем входные данные
	if err := validateConfigData(req); err != nil {
		s.logger.Warn("Upsert: validation failed: %v", err)
		return nil, err
	}

	// 2. Конфигурация услуги требует существующую услугу
	if req.ServiceID != nil {
		if _, err := s.catalogRepo.GetService(ctx, req.TenantID, *req.ServiceID); err != nil {
			if errors.Is(err, catalogRepo.ErrServiceNotFound) {
				s.logger.Warn("Upsert: service id=%d not found in tenant=%d", *req.ServiceID, req.TenantID)
				return nil, domain.ErrServiceNotFound
			}
			s.logger.Error("Upsert: failed to get service id=%d: %v", *req.ServiceID, err)
			return nil, fmt.Errorf("%w: failed to get service: %v", domain.ErrRepositoryUnavailable, err)
		}
	}

	// 3. Сохраняем
	saved, err := s.configRepo.Upsert(ctx, req.ToDomainConfig())
	if err != nil {
		s.logger.Error("Upsert: repository error: %v", err)
		return nil, fmt.Errorf("%w: Upsert - repository error: %v", domain.ErrRepositoryUnavailable, err)
	}

	s.logger.Info("Upsert: successfully saved config id=%d", saved.ID)
	return models.FromDomainConfig(saved, models.LevelOf(saved)), nil
}

// validateConfigData валидирует параметры конфигурации
func validateConfigData(req *models.UpdateConfigRequest) error {
	if req.TenantID <= 0 {
		return fmt.Errorf("%w: tenantID must be positive", domain.ErrInvalidInput)
	}

	if req.ServiceID != nil && *req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", domain.ErrInvalidInput)
	}

	if req.GranularityMinutes < domain.MinGranularityMinutes || req.GranularityMinutes > domain.MaxGranularityMinutes {
		return fmt.Errorf("%w: granularityMinutes must be between %d and %d",
			domain.ErrInvalidInput, domain.MinGranularityMinutes, domain.MaxGranularityMinutes)
	}

	if req.AdvanceBookingDays < domain.MinAdvanceBookingDays || req.AdvanceBookingDays > domain.MaxAdvanceBookingDays {
		return fmt.Errorf("%w: advanceBookingDays must be between %d and %d",
			domain.ErrInvalidInput, domain.MinAdvanceBookingDays, domain.MaxAdvanceBookingDays)
	}

	if req.MinBookingNoticeMinutes < domain.MinBookingNoticeMinutes || req.MinBookingNoticeMinutes > domain.MaxBookingNoticeMinutes {
		return fmt.Errorf("%w: minBookingNoticeMinutes must be between %d and %d",
			domain.ErrInvalidInput, domain.MinBookingNoticeMinutes, domain.MaxBookingNoticeMinutes)
	}

	return nil
}
