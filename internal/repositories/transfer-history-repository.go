package repositories

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	db "asset-system/internal/infrastructure/bd"
	"asset-system/internal/entities"
	"asset-system/pkg/types"
)

const transferHistoryTable = "transfer_histories"

var transferHistoryMap = map[string]string{
	"id":             "h.id",
	"unit_id":        "h.unit_id",
	"from_branch_id": "h.from_branch_id",
	"to_branch_id":   "h.to_branch_id",
	"transfer_id":    "h.transfer_id",
	"moved_at":       "h.moved_at",
}

// TransferHistoryRepositoryInterface is the append-only audit store: one row
// per unit per completed transfer, written only at completion, never updated.
type TransferHistoryRepositoryInterface interface {
	CreateHistoryInTx(ctx context.Context, tx pgx.Tx, history entities.TransferHistory) (uint64, error)
	GetHistories(ctx context.Context, filter types.Filter) ([]entities.TransferHistory, uint64, error)
	FindByUnitID(ctx context.Context, unitID uint64) ([]entities.TransferHistory, error)
}

type TransferHistoryRepository struct {
	storage *pgxpool.Pool
}

func NewTransferHistoryRepository(storage *pgxpool.Pool) TransferHistoryRepositoryInterface {
	return &TransferHistoryRepository{storage: storage}
}

func (r *TransferHistoryRepository) CreateHistoryInTx(ctx context.Context, tx pgx.Tx, history entities.TransferHistory) (uint64, error) {
	query := `
		INSERT INTO transfer_histories (unit_id, from_branch_id, to_branch_id, transfer_id, receiver_id, description, moved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var newID uint64
	err := tx.QueryRow(ctx, query,
		history.UnitID, history.FromBranchID, history.ToBranchID,
		history.TransferID, history.ReceiverID, history.Description, history.MovedAt,
	).Scan(&newID)
	return newID, err
}

func (r *TransferHistoryRepository) GetHistories(ctx context.Context, filter types.Filter) ([]entities.TransferHistory, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := psql.Select("COUNT(h.id)").From(transferHistoryTable + " AS h")
	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, transferHistoryMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.TransferHistory{}, 0, nil
	}

	baseBuilder := psql.Select(
		"h.id", "h.unit_id", "h.from_branch_id", "h.to_branch_id",
		"h.transfer_id", "h.receiver_id", "h.description", "h.moved_at",
	).From(transferHistoryTable + " AS h")
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("h.moved_at DESC")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, transferHistoryMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	histories, err := scanTransferHistories(rows)
	if err != nil {
		return nil, 0, err
	}
	return histories, total, nil
}

func (r *TransferHistoryRepository) FindByUnitID(ctx context.Context, unitID uint64) ([]entities.TransferHistory, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT h.id, h.unit_id, h.from_branch_id, h.to_branch_id, h.transfer_id, h.receiver_id, h.description, h.moved_at
		 FROM transfer_histories h WHERE h.unit_id = $1 ORDER BY h.moved_at DESC`,
		unitID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransferHistories(rows)
}

func scanTransferHistories(rows pgx.Rows) ([]entities.TransferHistory, error) {
	histories := make([]entities.TransferHistory, 0)
	for rows.Next() {
		var h entities.TransferHistory
		var description sql.NullString
		if err := rows.Scan(&h.ID, &h.UnitID, &h.FromBranchID, &h.ToBranchID, &h.TransferID, &h.ReceiverID, &description, &h.MovedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transfer history: %w", err)
		}
		if description.Valid {
			h.Description = &description.String
		}
		histories = append(histories, h)
	}
	return histories, rows.Err()
}
