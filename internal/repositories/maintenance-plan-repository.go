package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	db "asset-system/internal/infrastructure/bd"
	"asset-system/internal/entities"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/types"
)

const maintenancePlanTable = "maintenance_plans"

var maintenancePlanMap = map[string]string{
	"id":           "p.id",
	"equipment_id": "p.equipment_id",
	"frequency":    "p.frequency",
	"active":       "p.active",
	"next_due_date": "p.next_due_date",
}

type MaintenancePlanRepositoryInterface interface {
	GetPlans(ctx context.Context, filter types.Filter) ([]entities.MaintenancePlan, uint64, error)
	FindPlan(ctx context.Context, id uint64) (*entities.MaintenancePlan, error)
	CreatePlan(ctx context.Context, plan entities.MaintenancePlan) (uint64, error)
	UpdatePlan(ctx context.Context, id uint64, frequency *string, nextDueDate *time.Time, active *bool) error
	// FindDue returns active plans whose next_due_date has passed.
	FindDue(ctx context.Context, now time.Time) ([]entities.MaintenancePlan, error)
	AdvanceNextDue(ctx context.Context, id uint64, nextDueDate time.Time) error
}

type MaintenancePlanRepository struct {
	storage *pgxpool.Pool
}

func NewMaintenancePlanRepository(storage *pgxpool.Pool) MaintenancePlanRepositoryInterface {
	return &MaintenancePlanRepository{storage: storage}
}

func scanMaintenancePlan(row pgx.Row) (*entities.MaintenancePlan, error) {
	var p entities.MaintenancePlan
	err := row.Scan(&p.ID, &p.EquipmentID, &p.Frequency, &p.NextDueDate, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan maintenance plan: %w", err)
	}
	return &p, nil
}

func (r *MaintenancePlanRepository) GetPlans(ctx context.Context, filter types.Filter) ([]entities.MaintenancePlan, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := psql.Select("COUNT(p.id)").From(maintenancePlanTable + " AS p")
	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, maintenancePlanMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.MaintenancePlan{}, 0, nil
	}

	baseBuilder := psql.Select(
		"p.id", "p.equipment_id", "p.frequency", "p.next_due_date", "p.active",
		"p.created_at", "p.updated_at",
	).From(maintenancePlanTable + " AS p")
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("p.next_due_date ASC")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, maintenancePlanMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	plans := make([]entities.MaintenancePlan, 0, filter.Limit)
	for rows.Next() {
		plan, err := scanMaintenancePlan(rows)
		if err != nil {
			return nil, 0, err
		}
		plans = append(plans, *plan)
	}

	return plans, total, nil
}

func (r *MaintenancePlanRepository) FindPlan(ctx context.Context, id uint64) (*entities.MaintenancePlan, error) {
	return scanMaintenancePlan(r.storage.QueryRow(ctx,
		`SELECT id, equipment_id, frequency, next_due_date, active, created_at, updated_at
		 FROM maintenance_plans WHERE id = $1`,
		id,
	))
}

func (r *MaintenancePlanRepository) CreatePlan(ctx context.Context, plan entities.MaintenancePlan) (uint64, error) {
	query := `
		INSERT INTO maintenance_plans (equipment_id, frequency, next_due_date, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query, plan.EquipmentID, plan.Frequency, plan.NextDueDate, plan.Active).Scan(&newID)
	return newID, err
}

func (r *MaintenancePlanRepository) UpdatePlan(ctx context.Context, id uint64, frequency *string, nextDueDate *time.Time, active *bool) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Update(maintenancePlanTable).Set("updated_at", sq.Expr("NOW()")).Where(sq.Eq{"id": id})

	if frequency != nil {
		builder = builder.Set("frequency", *frequency)
	}
	if nextDueDate != nil {
		builder = builder.Set("next_due_date", *nextDueDate)
	}
	if active != nil {
		builder = builder.Set("active", *active)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *MaintenancePlanRepository) FindDue(ctx context.Context, now time.Time) ([]entities.MaintenancePlan, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT id, equipment_id, frequency, next_due_date, active, created_at, updated_at
		 FROM maintenance_plans WHERE active = TRUE AND next_due_date <= $1
		 ORDER BY next_due_date ASC`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]entities.MaintenancePlan, 0)
	for rows.Next() {
		plan, err := scanMaintenancePlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

func (r *MaintenancePlanRepository) AdvanceNextDue(ctx context.Context, id uint64, nextDueDate time.Time) error {
	result, err := r.storage.Exec(ctx,
		`UPDATE maintenance_plans SET next_due_date = $1, updated_at = NOW() WHERE id = $2`,
		nextDueDate, id,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
