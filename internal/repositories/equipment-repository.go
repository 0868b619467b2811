package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	db "asset-system/internal/infrastructure/bd"
	"asset-system/internal/entities"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/types"
)

const equipmentTable = "equipments"

var equipmentMap = map[string]string{
	"id":        "e.id",
	"name":      "e.name",
	"category":  "e.category",
	"vendor_id": "e.vendor_id",
}

var equipmentColumns = []string{
	"e.id", "e.name", "e.category", "e.model", "e.vendor_id", "e.description",
	"e.created_at", "e.updated_at",
}

type EquipmentRepositoryInterface interface {
	GetEquipments(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error)
	FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error)
	FindEquipmentsByIDs(ctx context.Context, ids []uint64) ([]entities.Equipment, error)
	CreateEquipment(ctx context.Context, equipment entities.Equipment) (uint64, error)
	UpdateEquipment(ctx context.Context, equipment entities.Equipment) error
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
}

func NewEquipmentRepository(storage *pgxpool.Pool) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage}
}

func scanEquipment(row pgx.Row) (*entities.Equipment, error) {
	var e entities.Equipment
	var model, description sql.NullString

	err := row.Scan(&e.ID, &e.Name, &e.Category, &model, &e.VendorID, &description, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan equipment: %w", err)
	}
	if model.Valid {
		e.Model = &model.String
	}
	if description.Valid {
		e.Description = &description.String
	}
	return &e, nil
}

func (r *EquipmentRepository) GetEquipments(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := psql.Select("COUNT(e.id)").From(equipmentTable + " AS e")
	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, equipmentMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Equipment{}, 0, nil
	}

	baseBuilder := psql.Select(equipmentColumns...).From(equipmentTable + " AS e")
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("e.name ASC")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, equipmentMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	equipments := make([]entities.Equipment, 0, filter.Limit)
	for rows.Next() {
		equipment, err := scanEquipment(rows)
		if err != nil {
			return nil, 0, err
		}
		equipments = append(equipments, *equipment)
	}

	return equipments, total, nil
}

func (r *EquipmentRepository) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(equipmentColumns...).
		From(equipmentTable + " AS e").
		Where(sq.Eq{"e.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanEquipment(r.storage.QueryRow(ctx, query, args...))
}

func (r *EquipmentRepository) FindEquipmentsByIDs(ctx context.Context, ids []uint64) ([]entities.Equipment, error) {
	if len(ids) == 0 {
		return []entities.Equipment{}, nil
	}

	rows, err := r.storage.Query(ctx,
		`SELECT e.id, e.name, e.category, e.model, e.vendor_id, e.description, e.created_at, e.updated_at
		 FROM equipments e WHERE e.id = ANY($1)`,
		int64IDs(ids),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	equipments := make([]entities.Equipment, 0, len(ids))
	for rows.Next() {
		equipment, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		equipments = append(equipments, *equipment)
	}
	return equipments, rows.Err()
}

func (r *EquipmentRepository) CreateEquipment(ctx context.Context, equipment entities.Equipment) (uint64, error) {
	query := `
		INSERT INTO equipments (name, category, model, vendor_id, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		equipment.Name, equipment.Category, equipment.Model, equipment.VendorID, equipment.Description,
	).Scan(&newID)
	return newID, err
}

func (r *EquipmentRepository) UpdateEquipment(ctx context.Context, equipment entities.Equipment) error {
	result, err := r.storage.Exec(ctx,
		`UPDATE equipments
		 SET name = $1, category = $2, model = $3, vendor_id = $4, description = $5, updated_at = NOW()
		 WHERE id = $6`,
		equipment.Name, equipment.Category, equipment.Model, equipment.VendorID, equipment.Description, equipment.ID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
