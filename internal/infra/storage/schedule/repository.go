package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Repository репозиторий часов работы и блокировок расписания
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// LoadOpeningHours получает часы работы тенанта на день недели
// Для выходного дня возвращает nil без ошибки
func (r *Repository) LoadOpeningHours(ctx context.Context, tenantID int64, weekday time.Weekday) (*domain.OpeningHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("tenant_id", "weekday", "open_minute", "close_minute").
		From("opening_hours").
		Where(squirrel.Eq{"tenant_id": tenantID, "weekday": int(weekday)}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: LoadOpeningHours - build select query: %v", ErrBuildQuery, err)
	}

	var (
		hours domain.OpeningHours
		day   int
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&hours.TenantID,
		&day,
		&hours.OpenTime,
		&hours.CloseTime,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: LoadOpeningHours - scan hours: %v", ErrScanRow, err)
	}
	hours.Weekday = time.Weekday(day)

	return &hours, nil
}

// LoadBlocks получает блокировки, которые могут действовать в date:
// разовые на эту дату и еженедельные, чьё окно содержит date
// Окончательная фильтрация (день недели, статус) выполняется в blocks.Resolve
// providerIDs пустой - только блоки на всю точку
func (r *Repository) LoadBlocks(ctx context.Context, tenantID int64, providerIDs []int64, date types.Date) ([]*domain.ScheduleBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	providerScope := squirrel.Or{squirrel.Eq{"provider_id": nil}}
	if len(providerIDs) > 0 {
		providerScope = append(providerScope, squirrel.Eq{"provider_id": providerIDs})
	}

	query, args, err := psqlbuilder.Select(
		"id",
		"tenant_id",
		"provider_id",
		"kind",
		"date",
		"days_of_week",
		"start_date",
		"end_date",
		"full_day",
		"start_minute",
		"end_minute",
		"status",
		"reason",
	).
		From("schedule_blocks").
		Where(squirrel.Eq{"tenant_id": tenantID, "status": string(domain.BlockStatusActive)}).
		Where(providerScope).
		Where(squirrel.Or{
			squirrel.Eq{"kind": string(domain.BlockKindOneOff), "date": date},
			squirrel.And{
				squirrel.Eq{"kind": string(domain.BlockKindWeekly)},
				squirrel.Or{squirrel.Eq{"start_date": nil}, squirrel.LtOrEq{"start_date": date}},
				squirrel.Or{squirrel.Eq{"end_date": nil}, squirrel.GtOrEq{"end_date": date}},
			},
		}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: LoadBlocks - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: LoadBlocks - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.ScheduleBlock, 0)
	for rows.Next() {
		var (
			block      domain.ScheduleBlock
			daysOfWeek pq.Int64Array
			startTime  sql.NullInt64
			endTime    sql.NullInt64
		)
		if err := rows.Scan(
			&block.ID,
			&block.TenantID,
			&block.ProviderID,
			&block.Kind,
			&block.Date,
			&daysOfWeek,
			&block.StartDate,
			&block.EndDate,
			&block.FullDay,
			&startTime,
			&endTime,
			&block.Status,
			&block.Reason,
		); err != nil {
			return nil, fmt.Errorf("%w: LoadBlocks - scan row: %v", ErrScanRow, err)
		}

		block.DaysOfWeek = make([]time.Weekday, 0, len(daysOfWeek))
		for _, d := range daysOfWeek {
			block.DaysOfWeek = append(block.DaysOfWeek, time.Weekday(d))
		}
		block.StartTime = int(startTime.Int64)
		block.EndTime = int(endTime.Int64)

		result = append(result, &block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: LoadBlocks - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}
