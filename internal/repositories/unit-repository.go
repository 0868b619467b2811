package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	db "asset-system/internal/infrastructure/bd"
	"asset-system/internal/dto"
	"asset-system/internal/entities"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/types"
)

const unitTable = "equipment_units"

var unitMap = map[string]string{
	"id":           "u.id",
	"equipment_id": "u.equipment_id",
	"branch_id":    "u.branch_id",
	"status":       "u.status",
	"cost":         "u.cost",
	"created_at":   "u.created_at",
	"updated_at":   "u.updated_at",
}

var unitColumns = []string{
	"u.id", "u.equipment_id", "u.branch_id", "u.status", "u.cost",
	"u.description", "u.warranty_start_date", "u.warranty_end_date",
	"u.created_at", "u.updated_at",
}

type UnitRepositoryInterface interface {
	GetUnits(ctx context.Context, filter types.Filter) ([]entities.EquipmentUnit, uint64, error)
	FindUnit(ctx context.Context, id uint64) (*entities.EquipmentUnit, error)
	FindUnitInTx(ctx context.Context, q Querier, id uint64) (*entities.EquipmentUnit, error)
	FindUnitsByIDs(ctx context.Context, ids []uint64) ([]entities.EquipmentUnit, error)
	CreateUnit(ctx context.Context, unit entities.EquipmentUnit) (uint64, error)
	UpdateUnit(ctx context.Context, id uint64, data dto.UpdateUnitDTO) error
	// TryUpdateStatus performs a status-guarded conditional write: the status
	// is set only when the current value is one of expected. It reports the
	// status the unit holds after the attempt, so a failed guard exposes the
	// live status for the caller's state-conflict error.
	TryUpdateStatus(ctx context.Context, q Querier, id uint64, to entities.UnitStatus, expected ...entities.UnitStatus) (entities.UnitStatus, bool, error)
	TryUpdateStatusAndBranch(ctx context.Context, q Querier, id uint64, to entities.UnitStatus, branchID uint64, expected ...entities.UnitStatus) (entities.UnitStatus, bool, error)
	DeleteUnit(ctx context.Context, id uint64) error
}

type UnitRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUnitRepository(storage *pgxpool.Pool, logger *zap.Logger) UnitRepositoryInterface {
	return &UnitRepository{storage: storage, logger: logger}
}

func scanUnit(row pgx.Row) (*entities.EquipmentUnit, error) {
	var u entities.EquipmentUnit
	var description sql.NullString
	var warrantyStart, warrantyEnd sql.NullTime

	err := row.Scan(
		&u.ID, &u.EquipmentID, &u.BranchID, &u.Status, &u.Cost,
		&description, &warrantyStart, &warrantyEnd,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan equipment unit: %w", err)
	}

	if description.Valid {
		u.Description = &description.String
	}
	if warrantyStart.Valid {
		u.WarrantyStartDate = &warrantyStart.Time
	}
	if warrantyEnd.Valid {
		u.WarrantyEndDate = &warrantyEnd.Time
	}

	return &u, nil
}

func (r *UnitRepository) GetUnits(ctx context.Context, filter types.Filter) ([]entities.EquipmentUnit, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := psql.Select("COUNT(u.id)").From(unitTable + " AS u")
	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, unitMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.EquipmentUnit{}, 0, nil
	}

	baseBuilder := psql.Select(unitColumns...).From(unitTable + " AS u")
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("u.id DESC")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, unitMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	units := make([]entities.EquipmentUnit, 0, filter.Limit)
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, 0, err
		}
		units = append(units, *unit)
	}

	return units, total, nil
}

func (r *UnitRepository) findOne(ctx context.Context, querier Querier, id uint64) (*entities.EquipmentUnit, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(unitColumns...).
		From(unitTable + " AS u").
		Where(sq.Eq{"u.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanUnit(querier.QueryRow(ctx, query, args...))
}

func (r *UnitRepository) FindUnit(ctx context.Context, id uint64) (*entities.EquipmentUnit, error) {
	return r.findOne(ctx, r.storage, id)
}

func (r *UnitRepository) FindUnitInTx(ctx context.Context, q Querier, id uint64) (*entities.EquipmentUnit, error) {
	if q == nil {
		q = r.storage
	}
	return r.findOne(ctx, q, id)
}

// FindUnitsByIDs is the batch-get used by the aggregation layer: one round
// trip for every unit referenced across a listing page.
func (r *UnitRepository) FindUnitsByIDs(ctx context.Context, ids []uint64) ([]entities.EquipmentUnit, error) {
	if len(ids) == 0 {
		return []entities.EquipmentUnit{}, nil
	}

	query := `
		SELECT u.id, u.equipment_id, u.branch_id, u.status, u.cost,
		       u.description, u.warranty_start_date, u.warranty_end_date,
		       u.created_at, u.updated_at
		FROM equipment_units u
		WHERE u.id = ANY($1)
	`
	rows, err := r.storage.Query(ctx, query, int64IDs(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := make([]entities.EquipmentUnit, 0, len(ids))
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, *unit)
	}

	return units, rows.Err()
}

func (r *UnitRepository) CreateUnit(ctx context.Context, unit entities.EquipmentUnit) (uint64, error) {
	query := `
		INSERT INTO equipment_units (equipment_id, branch_id, status, cost, description, warranty_start_date, warranty_end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		unit.EquipmentID, unit.BranchID, unit.Status, unit.Cost,
		unit.Description, unit.WarrantyStartDate, unit.WarrantyEndDate,
	).Scan(&newID)

	return newID, err
}

func (r *UnitRepository) UpdateUnit(ctx context.Context, id uint64, data dto.UpdateUnitDTO) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Update(unitTable).Set("updated_at", sq.Expr("NOW()")).Where(sq.Eq{"id": id})

	if data.Cost != nil {
		builder = builder.Set("cost", *data.Cost)
	}
	if data.Description != nil {
		builder = builder.Set("description", *data.Description)
	}
	if data.WarrantyStartDate.Valid {
		builder = builder.Set("warranty_start_date", data.WarrantyStartDate.Time)
	}
	if data.WarrantyEndDate.Valid {
		builder = builder.Set("warranty_end_date", data.WarrantyEndDate.Time)
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

func (r *UnitRepository) TryUpdateStatus(ctx context.Context, q Querier, id uint64, to entities.UnitStatus, expected ...entities.UnitStatus) (entities.UnitStatus, bool, error) {
	return r.tryUpdate(ctx, q, id, to, nil, expected)
}

func (r *UnitRepository) TryUpdateStatusAndBranch(ctx context.Context, q Querier, id uint64, to entities.UnitStatus, branchID uint64, expected ...entities.UnitStatus) (entities.UnitStatus, bool, error) {
	return r.tryUpdate(ctx, q, id, to, &branchID, expected)
}

func (r *UnitRepository) tryUpdate(ctx context.Context, q Querier, id uint64, to entities.UnitStatus, branchID *uint64, expected []entities.UnitStatus) (entities.UnitStatus, bool, error) {
	if q == nil {
		q = r.storage
	}

	expectedStrs := make([]string, 0, len(expected))
	for _, s := range expected {
		expectedStrs = append(expectedStrs, string(s))
	}

	var result interface {
		RowsAffected() int64
	}
	var err error
	if branchID != nil {
		result, err = q.Exec(ctx,
			`UPDATE equipment_units SET status = $1, branch_id = $2, updated_at = NOW() WHERE id = $3 AND status = ANY($4)`,
			to, *branchID, id, expectedStrs,
		)
	} else {
		result, err = q.Exec(ctx,
			`UPDATE equipment_units SET status = $1, updated_at = NOW() WHERE id = $2 AND status = ANY($3)`,
			to, id, expectedStrs,
		)
	}
	if err != nil {
		return "", false, err
	}

	if result.RowsAffected() > 0 {
		return to, true, nil
	}

	// Guard failed: read the live status so the caller can name it.
	var current entities.UnitStatus
	err = q.QueryRow(ctx, `SELECT status FROM equipment_units WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, apperrors.ErrNotFound
	}
	if err != nil {
		return "", false, err
	}

	r.logger.Warn("unit status guard rejected transition",
		zap.Uint64("unitId", id),
		zap.String("current", string(current)),
		zap.String("requested", string(to)),
	)
	return current, false, nil
}

// DeleteUnit soft-deletes by moving the unit to the deleted status.
func (r *UnitRepository) DeleteUnit(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx,
		`UPDATE equipment_units SET status = $1, updated_at = NOW() WHERE id = $2`,
		entities.UnitStatusDeleted, id,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
