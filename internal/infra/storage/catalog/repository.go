package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

// Repository репозиторий каталога: услуги, мастера и их связки
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetService получает услугу тенанта по ID (в том числе неактивную)
func (r *Repository) GetService(ctx context.Context, tenantID, serviceID int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"tenant_id",
		"name",
		"duration_minutes",
		"is_active",
	).
		From("services").
		Where(squirrel.Eq{"id": serviceID, "tenant_id": tenantID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var service domain.Service
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&service.ID,
		&service.TenantID,
		&service.Name,
		&service.DurationMinutes,
		&service.IsActive,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %v", ErrScanRow, err)
	}

	return &service, nil
}

// LoadActiveProviderServices получает активные связки мастер × услуга
// Учитываются только активные мастера. providerID == nil - все мастера тенанта
func (r *Repository) LoadActiveProviderServices(ctx context.Context, tenantID, serviceID int64, providerID *int64) ([]*domain.ProviderService, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"ps.id",
		"ps.tenant_id",
		"ps.provider_id",
		"ps.service_id",
		"ps.price",
		"ps.is_active",
	).
		From("provider_services ps").
		Join("providers p ON p.id = ps.provider_id AND p.tenant_id = ps.tenant_id").
		Where(squirrel.Eq{
			"ps.tenant_id":  tenantID,
			"ps.service_id": serviceID,
			"ps.is_active":  true,
			"p.is_active":   true,
		}).
		OrderBy("ps.provider_id ASC")

	if providerID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"ps.provider_id": *providerID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: LoadActiveProviderServices - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: LoadActiveProviderServices - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	links := make([]*domain.ProviderService, 0)
	for rows.Next() {
		var link domain.ProviderService
		if err := rows.Scan(
			&link.ID,
			&link.TenantID,
			&link.ProviderID,
			&link.ServiceID,
			&link.Price,
			&link.IsActive,
		); err != nil {
			return nil, fmt.Errorf("%w: LoadActiveProviderServices - scan row: %v", ErrScanRow, err)
		}
		links = append(links, &link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: LoadActiveProviderServices - rows error: %v", ErrScanRow, err)
	}

	return links, nil
}
