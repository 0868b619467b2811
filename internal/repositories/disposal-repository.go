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

const disposalTable = "disposals"

var disposalMap = map[string]string{
	"id":        "d.id",
	"user_id":   "d.user_id",
	"branch_id": "d.branch_id",
}

type DisposalRepositoryInterface interface {
	GetDisposals(ctx context.Context, filter types.Filter) ([]entities.Disposal, uint64, error)
	FindDisposal(ctx context.Context, id uint64) (*entities.Disposal, error)
	// CreateDisposalInTx writes the header with total_value already summed,
	// so the header and its details land in the same transaction.
	CreateDisposalInTx(ctx context.Context, tx pgx.Tx, disposal entities.Disposal) (uint64, error)
	CreateDetailInTx(ctx context.Context, tx pgx.Tx, detail entities.DisposalDetail) (uint64, error)
	FindDetailsByDisposalID(ctx context.Context, disposalID uint64) ([]entities.DisposalDetail, error)
	FindDetailsByDisposalIDs(ctx context.Context, disposalIDs []uint64) ([]entities.DisposalDetail, error)
}

type DisposalRepository struct {
	storage *pgxpool.Pool
}

func NewDisposalRepository(storage *pgxpool.Pool) DisposalRepositoryInterface {
	return &DisposalRepository{storage: storage}
}

func scanDisposal(row pgx.Row) (*entities.Disposal, error) {
	var d entities.Disposal
	var note sql.NullString

	err := row.Scan(&d.ID, &d.UserID, &d.BranchID, &note, &d.TotalValue, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan disposal: %w", err)
	}
	if note.Valid {
		d.Note = &note.String
	}
	return &d, nil
}

func (r *DisposalRepository) GetDisposals(ctx context.Context, filter types.Filter) ([]entities.Disposal, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := psql.Select("COUNT(d.id)").From(disposalTable + " AS d")
	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, disposalMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Disposal{}, 0, nil
	}

	baseBuilder := psql.Select(
		"d.id", "d.user_id", "d.branch_id", "d.note", "d.total_value", "d.created_at",
	).From(disposalTable + " AS d")
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("d.id DESC")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, disposalMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	disposals := make([]entities.Disposal, 0, filter.Limit)
	for rows.Next() {
		disposal, err := scanDisposal(rows)
		if err != nil {
			return nil, 0, err
		}
		disposals = append(disposals, *disposal)
	}

	return disposals, total, nil
}

func (r *DisposalRepository) FindDisposal(ctx context.Context, id uint64) (*entities.Disposal, error) {
	return scanDisposal(r.storage.QueryRow(ctx,
		`SELECT id, user_id, branch_id, note, total_value, created_at
		 FROM disposals WHERE id = $1`,
		id,
	))
}

func (r *DisposalRepository) CreateDisposalInTx(ctx context.Context, tx pgx.Tx, disposal entities.Disposal) (uint64, error) {
	query := `
		INSERT INTO disposals (user_id, branch_id, note, total_value, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id
	`
	var newID uint64
	err := tx.QueryRow(ctx, query,
		disposal.UserID, disposal.BranchID, disposal.Note, disposal.TotalValue,
	).Scan(&newID)
	return newID, err
}

func (r *DisposalRepository) CreateDetailInTx(ctx context.Context, tx pgx.Tx, detail entities.DisposalDetail) (uint64, error) {
	query := `
		INSERT INTO disposal_details (disposal_id, unit_id, value_recovered, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id
	`
	var newID uint64
	err := tx.QueryRow(ctx, query, detail.DisposalID, detail.UnitID, detail.ValueRecovered).Scan(&newID)
	return newID, err
}

func (r *DisposalRepository) FindDetailsByDisposalID(ctx context.Context, disposalID uint64) ([]entities.DisposalDetail, error) {
	return r.findDetails(ctx, `disposal_id = $1`, disposalID)
}

func (r *DisposalRepository) FindDetailsByDisposalIDs(ctx context.Context, disposalIDs []uint64) ([]entities.DisposalDetail, error) {
	if len(disposalIDs) == 0 {
		return []entities.DisposalDetail{}, nil
	}
	return r.findDetails(ctx, `disposal_id = ANY($1)`, int64IDs(disposalIDs))
}

func (r *DisposalRepository) findDetails(ctx context.Context, where string, arg interface{}) ([]entities.DisposalDetail, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT id, disposal_id, unit_id, value_recovered, created_at
		 FROM disposal_details WHERE `+where+` ORDER BY id`,
		arg,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]entities.DisposalDetail, 0)
	for rows.Next() {
		var d entities.DisposalDetail
		if err := rows.Scan(&d.ID, &d.DisposalID, &d.UnitID, &d.ValueRecovered, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan disposal detail: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
