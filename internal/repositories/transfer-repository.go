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

const transferTable = "transfers"
const transferDetailTable = "transfer_details"

var transferMap = map[string]string{
	"id":             "t.id",
	"from_branch_id": "t.from_branch_id",
	"to_branch_id":   "t.to_branch_id",
	"status":         "t.status",
	"created_at":     "t.created_at",
}

var transferColumns = []string{
	"t.id", "t.from_branch_id", "t.to_branch_id", "t.approver_id", "t.receiver_id",
	"t.description", "t.status", "t.move_start_date", "t.move_receive_date",
	"t.created_at", "t.updated_at",
}

type TransferRepositoryInterface interface {
	GetTransfers(ctx context.Context, filter types.Filter) ([]entities.Transfer, uint64, error)
	FindTransfer(ctx context.Context, id uint64) (*entities.Transfer, error)
	CreateTransferInTx(ctx context.Context, tx pgx.Tx, transfer entities.Transfer) (uint64, error)
	// TryUpdateStatus moves a transfer between workflow states only when the
	// current status is one of expected; reports whether the write happened.
	TryUpdateStatus(ctx context.Context, q Querier, id uint64, to entities.TransferStatus, expected ...entities.TransferStatus) (bool, error)
	CompleteInTx(ctx context.Context, tx pgx.Tx, id uint64, receiverID uint64, receiveDate time.Time) (bool, error)
	CreateDetailInTx(ctx context.Context, tx pgx.Tx, detail entities.TransferDetail) (uint64, error)
	FindDetailsByTransferID(ctx context.Context, q Querier, transferID uint64) ([]entities.TransferDetail, error)
	FindDetailsByTransferIDs(ctx context.Context, transferIDs []uint64) ([]entities.TransferDetail, error)
}

type TransferRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTransferRepository(storage *pgxpool.Pool, logger *zap.Logger) TransferRepositoryInterface {
	return &TransferRepository{storage: storage, logger: logger}
}

func scanTransfer(row pgx.Row) (*entities.Transfer, error) {
	var t entities.Transfer
	var receiverID sql.NullInt64
	var description sql.NullString
	var receiveDate sql.NullTime

	err := row.Scan(
		&t.ID, &t.FromBranchID, &t.ToBranchID, &t.ApproverID, &receiverID,
		&description, &t.Status, &t.MoveStartDate, &receiveDate,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan transfer: %w", err)
	}

	if receiverID.Valid {
		id := uint64(receiverID.Int64)
		t.ReceiverID = &id
	}
	if description.Valid {
		t.Description = &description.String
	}
	if receiveDate.Valid {
		t.MoveReceiveDate = &receiveDate.Time
	}

	return &t, nil
}

func (r *TransferRepository) GetTransfers(ctx context.Context, filter types.Filter) ([]entities.Transfer, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := psql.Select("COUNT(t.id)").From(transferTable + " AS t")
	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, transferMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Transfer{}, 0, nil
	}

	baseBuilder := psql.Select(transferColumns...).From(transferTable + " AS t")
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("t.id DESC")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, transferMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	transfers := make([]entities.Transfer, 0, filter.Limit)
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, 0, err
		}
		transfers = append(transfers, *transfer)
	}

	return transfers, total, nil
}

func (r *TransferRepository) FindTransfer(ctx context.Context, id uint64) (*entities.Transfer, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(transferColumns...).
		From(transferTable + " AS t").
		Where(sq.Eq{"t.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanTransfer(r.storage.QueryRow(ctx, query, args...))
}

func (r *TransferRepository) CreateTransferInTx(ctx context.Context, tx pgx.Tx, transfer entities.Transfer) (uint64, error) {
	query := `
		INSERT INTO transfers (from_branch_id, to_branch_id, approver_id, description, status, move_start_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := tx.QueryRow(ctx, query,
		transfer.FromBranchID, transfer.ToBranchID, transfer.ApproverID,
		transfer.Description, transfer.Status, transfer.MoveStartDate,
	).Scan(&newID)

	return newID, err
}

func (r *TransferRepository) TryUpdateStatus(ctx context.Context, q Querier, id uint64, to entities.TransferStatus, expected ...entities.TransferStatus) (bool, error) {
	if q == nil {
		q = r.storage
	}

	expectedStrs := make([]string, 0, len(expected))
	for _, s := range expected {
		expectedStrs = append(expectedStrs, string(s))
	}

	result, err := q.Exec(ctx,
		`UPDATE transfers SET status = $1, updated_at = NOW() WHERE id = $2 AND status = ANY($3)`,
		to, id, expectedStrs,
	)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// CompleteInTx marks the transfer completed and records the receiver. The
// status guard rejects a second completion.
func (r *TransferRepository) CompleteInTx(ctx context.Context, tx pgx.Tx, id uint64, receiverID uint64, receiveDate time.Time) (bool, error) {
	result, err := tx.Exec(ctx,
		`UPDATE transfers
		 SET status = $1, receiver_id = $2, move_receive_date = $3, updated_at = NOW()
		 WHERE id = $4 AND status = $5`,
		entities.TransferStatusCompleted, receiverID, receiveDate, id, entities.TransferStatusPending,
	)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *TransferRepository) CreateDetailInTx(ctx context.Context, tx pgx.Tx, detail entities.TransferDetail) (uint64, error) {
	query := `
		INSERT INTO transfer_details (transfer_id, unit_id, previous_status, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id
	`
	var newID uint64
	err := tx.QueryRow(ctx, query, detail.TransferID, detail.UnitID, detail.PreviousStatus).Scan(&newID)
	return newID, err
}

func (r *TransferRepository) FindDetailsByTransferID(ctx context.Context, q Querier, transferID uint64) ([]entities.TransferDetail, error) {
	if q == nil {
		q = r.storage
	}

	rows, err := q.Query(ctx,
		`SELECT id, transfer_id, unit_id, previous_status, created_at
		 FROM transfer_details WHERE transfer_id = $1 ORDER BY id`,
		transferID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransferDetails(rows)
}

// FindDetailsByTransferIDs batch-loads the details of a whole listing page.
func (r *TransferRepository) FindDetailsByTransferIDs(ctx context.Context, transferIDs []uint64) ([]entities.TransferDetail, error) {
	if len(transferIDs) == 0 {
		return []entities.TransferDetail{}, nil
	}

	rows, err := r.storage.Query(ctx,
		`SELECT id, transfer_id, unit_id, previous_status, created_at
		 FROM transfer_details WHERE transfer_id = ANY($1) ORDER BY id`,
		int64IDs(transferIDs),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransferDetails(rows)
}

func scanTransferDetails(rows pgx.Rows) ([]entities.TransferDetail, error) {
	details := make([]entities.TransferDetail, 0)
	for rows.Next() {
		var d entities.TransferDetail
		if err := rows.Scan(&d.ID, &d.TransferID, &d.UnitID, &d.PreviousStatus, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transfer detail: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
