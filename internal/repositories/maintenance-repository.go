package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	db "asset-system/internal/infrastructure/bd"
	"asset-system/internal/entities"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/types"
)

const maintenanceTable = "maintenances"

var maintenanceMap = map[string]string{
	"id":            "m.id",
	"unit_id":       "m.unit_id",
	"branch_id":     "m.branch_id",
	"technician_id": "m.technician_id",
	"start_date":    "m.start_date",
	"end_date":      "m.end_date",
	"result":        "m.result",
}

var maintenanceColumns = []string{
	"m.id", "m.unit_id", "m.branch_id", "m.assigner_id", "m.technician_id",
	"m.reason", "m.detail", "m.start_date", "m.end_date",
	"m.under_warranty", "m.result", "m.created_at", "m.updated_at",
}

type MaintenanceRepositoryInterface interface {
	GetMaintenances(ctx context.Context, filter types.Filter) ([]entities.Maintenance, uint64, error)
	FindMaintenance(ctx context.Context, id uint64) (*entities.Maintenance, error)
	CreateMaintenanceInTx(ctx context.Context, tx pgx.Tx, m entities.Maintenance) (uint64, error)
	Progress(ctx context.Context, q Querier, id uint64, technicianID uint64, reason *string) error
	CompleteInTx(ctx context.Context, tx pgx.Tx, id uint64, endDate time.Time, result bool, detail *string) error
	CreateInvoiceInTx(ctx context.Context, tx pgx.Tx, invoice entities.MaintenanceInvoice) (uint64, error)
	FindInvoicesByMaintenanceIDs(ctx context.Context, maintenanceIDs []uint64) ([]entities.MaintenanceInvoice, error)
}

type MaintenanceRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewMaintenanceRepository(storage *pgxpool.Pool, logger *zap.Logger) MaintenanceRepositoryInterface {
	return &MaintenanceRepository{storage: storage, logger: logger}
}

func scanMaintenance(row pgx.Row) (*entities.Maintenance, error) {
	var m entities.Maintenance
	var technicianID sql.NullInt64
	var detail sql.NullString
	var endDate sql.NullTime
	var result sql.NullBool

	err := row.Scan(
		&m.ID, &m.UnitID, &m.BranchID, &m.AssignerID, &technicianID,
		&m.Reason, &detail, &m.StartDate, &endDate,
		&m.UnderWarranty, &result, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan maintenance: %w", err)
	}

	if technicianID.Valid {
		id := uint64(technicianID.Int64)
		m.TechnicianID = &id
	}
	if detail.Valid {
		m.Detail = &detail.String
	}
	if endDate.Valid {
		m.EndDate = &endDate.Time
	}
	if result.Valid {
		m.Result = &result.Bool
	}

	return &m, nil
}

// GetMaintenances sorts by end_date descending with open episodes (no
// end_date) last, unless the caller asked for another order.
func (r *MaintenanceRepository) GetMaintenances(ctx context.Context, filter types.Filter) ([]entities.Maintenance, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := psql.Select("COUNT(m.id)").From(maintenanceTable + " AS m")
	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, maintenanceMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Maintenance{}, 0, nil
	}

	baseBuilder := psql.Select(maintenanceColumns...).From(maintenanceTable + " AS m")
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("m.end_date DESC NULLS LAST")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, maintenanceMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	maintenances := make([]entities.Maintenance, 0, filter.Limit)
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, 0, err
		}
		maintenances = append(maintenances, *m)
	}

	return maintenances, total, nil
}

func (r *MaintenanceRepository) FindMaintenance(ctx context.Context, id uint64) (*entities.Maintenance, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(maintenanceColumns...).
		From(maintenanceTable + " AS m").
		Where(sq.Eq{"m.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanMaintenance(r.storage.QueryRow(ctx, query, args...))
}

func (r *MaintenanceRepository) CreateMaintenanceInTx(ctx context.Context, tx pgx.Tx, m entities.Maintenance) (uint64, error) {
	query := `
		INSERT INTO maintenances (unit_id, branch_id, assigner_id, reason, detail, start_date, under_warranty, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := tx.QueryRow(ctx, query,
		m.UnitID, m.BranchID, m.AssignerID, m.Reason, m.Detail, m.StartDate, m.UnderWarranty,
	).Scan(&newID)
	return newID, err
}

// Progress attaches the technician. Deliberately no guard against a second
// progress call: the overwrite is idempotent.
func (r *MaintenanceRepository) Progress(ctx context.Context, q Querier, id uint64, technicianID uint64, reason *string) error {
	if q == nil {
		q = r.storage
	}

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Update(maintenanceTable).
		Set("technician_id", technicianID).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id})
	if reason != nil {
		builder = builder.Set("reason", *reason)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	result, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *MaintenanceRepository) CompleteInTx(ctx context.Context, tx pgx.Tx, id uint64, endDate time.Time, result bool, detail *string) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Update(maintenanceTable).
		Set("end_date", endDate).
		Set("result", result).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id})
	if detail != nil {
		builder = builder.Set("detail", *detail)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *MaintenanceRepository) CreateInvoiceInTx(ctx context.Context, tx pgx.Tx, invoice entities.MaintenanceInvoice) (uint64, error) {
	query := `
		INSERT INTO maintenance_invoices (maintenance_id, cost, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id
	`
	var newID uint64
	err := tx.QueryRow(ctx, query, invoice.MaintenanceID, invoice.Cost).Scan(&newID)
	return newID, err
}

func (r *MaintenanceRepository) FindInvoicesByMaintenanceIDs(ctx context.Context, maintenanceIDs []uint64) ([]entities.MaintenanceInvoice, error) {
	if len(maintenanceIDs) == 0 {
		return []entities.MaintenanceInvoice{}, nil
	}

	rows, err := r.storage.Query(ctx,
		`SELECT id, maintenance_id, cost, created_at
		 FROM maintenance_invoices WHERE maintenance_id = ANY($1)`,
		int64IDs(maintenanceIDs),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]entities.MaintenanceInvoice, 0, len(maintenanceIDs))
	for rows.Next() {
		var inv entities.MaintenanceInvoice
		if err := rows.Scan(&inv.ID, &inv.MaintenanceID, &inv.Cost, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan maintenance invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}
