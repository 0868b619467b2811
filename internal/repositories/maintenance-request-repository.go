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
	"asset-system/internal/entities"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/types"
)

const maintenanceRequestTable = "maintenance_requests"

var maintenanceRequestMap = map[string]string{
	"id":           "mr.id",
	"branch_id":    "mr.branch_id",
	"assigner_id":  "mr.assigner_id",
	"status":       "mr.status",
	"scheduled_at": "mr.scheduled_at",
}

var maintenanceRequestColumns = []string{
	"mr.id", "mr.branch_id", "mr.assigner_id", "mr.scheduled_at", "mr.technician_ids",
	"mr.confirmed_by", "mr.status", "mr.job_ref", "mr.note",
	"mr.created_at", "mr.updated_at",
}

type MaintenanceRequestRepositoryInterface interface {
	GetRequests(ctx context.Context, filter types.Filter) ([]entities.MaintenanceRequest, uint64, error)
	FindRequest(ctx context.Context, id uint64) (*entities.MaintenanceRequest, error)
	CreateRequestInTx(ctx context.Context, tx pgx.Tx, request entities.MaintenanceRequest) (uint64, error)
	CreateDetailInTx(ctx context.Context, tx pgx.Tx, detail entities.MaintenanceRequestDetail) (uint64, error)
	// TryConfirm flips a pending request to confirmed; reports false when the
	// request is not pending anymore.
	TryConfirm(ctx context.Context, q Querier, id uint64, confirmerID uint64) (bool, error)
	TryCancel(ctx context.Context, q Querier, id uint64) (bool, error)
	SetJobRef(ctx context.Context, q Querier, id uint64, jobRef string) error
	FindDetailsByRequestID(ctx context.Context, requestID uint64) ([]entities.MaintenanceRequestDetail, error)
	FindDetailsByRequestIDs(ctx context.Context, requestIDs []uint64) ([]entities.MaintenanceRequestDetail, error)
	SetDetailMaintenanceID(ctx context.Context, q Querier, detailID uint64, maintenanceID uint64) error
}

type MaintenanceRequestRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewMaintenanceRequestRepository(storage *pgxpool.Pool, logger *zap.Logger) MaintenanceRequestRepositoryInterface {
	return &MaintenanceRequestRepository{storage: storage, logger: logger}
}

func scanMaintenanceRequest(row pgx.Row) (*entities.MaintenanceRequest, error) {
	var mr entities.MaintenanceRequest
	var technicianIDs []int64
	var confirmedBy sql.NullInt64
	var jobRef, note sql.NullString

	err := row.Scan(
		&mr.ID, &mr.BranchID, &mr.AssignerID, &mr.ScheduledAt, &technicianIDs,
		&confirmedBy, &mr.Status, &jobRef, &note,
		&mr.CreatedAt, &mr.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan maintenance request: %w", err)
	}

	mr.TechnicianIDs = make([]uint64, 0, len(technicianIDs))
	for _, id := range technicianIDs {
		mr.TechnicianIDs = append(mr.TechnicianIDs, uint64(id))
	}
	if confirmedBy.Valid {
		id := uint64(confirmedBy.Int64)
		mr.ConfirmedBy = &id
	}
	if jobRef.Valid {
		mr.JobRef = &jobRef.String
	}
	if note.Valid {
		mr.Note = &note.String
	}

	return &mr, nil
}

func (r *MaintenanceRequestRepository) GetRequests(ctx context.Context, filter types.Filter) ([]entities.MaintenanceRequest, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := psql.Select("COUNT(mr.id)").From(maintenanceRequestTable + " AS mr")
	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, maintenanceRequestMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.MaintenanceRequest{}, 0, nil
	}

	baseBuilder := psql.Select(maintenanceRequestColumns...).From(maintenanceRequestTable + " AS mr")
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("mr.scheduled_at DESC")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, maintenanceRequestMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	requests := make([]entities.MaintenanceRequest, 0, filter.Limit)
	for rows.Next() {
		request, err := scanMaintenanceRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, *request)
	}

	return requests, total, nil
}

func (r *MaintenanceRequestRepository) FindRequest(ctx context.Context, id uint64) (*entities.MaintenanceRequest, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(maintenanceRequestColumns...).
		From(maintenanceRequestTable + " AS mr").
		Where(sq.Eq{"mr.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanMaintenanceRequest(r.storage.QueryRow(ctx, query, args...))
}

func (r *MaintenanceRequestRepository) CreateRequestInTx(ctx context.Context, tx pgx.Tx, request entities.MaintenanceRequest) (uint64, error) {
	query := `
		INSERT INTO maintenance_requests (branch_id, assigner_id, scheduled_at, technician_ids, status, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := tx.QueryRow(ctx, query,
		request.BranchID, request.AssignerID, request.ScheduledAt,
		int64IDs(request.TechnicianIDs), request.Status, request.Note,
	).Scan(&newID)
	return newID, err
}

func (r *MaintenanceRequestRepository) CreateDetailInTx(ctx context.Context, tx pgx.Tx, detail entities.MaintenanceRequestDetail) (uint64, error) {
	query := `
		INSERT INTO maintenance_request_details (request_id, unit_id, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id
	`
	var newID uint64
	err := tx.QueryRow(ctx, query, detail.RequestID, detail.UnitID).Scan(&newID)
	return newID, err
}

func (r *MaintenanceRequestRepository) TryConfirm(ctx context.Context, q Querier, id uint64, confirmerID uint64) (bool, error) {
	if q == nil {
		q = r.storage
	}
	result, err := q.Exec(ctx,
		`UPDATE maintenance_requests
		 SET status = $1, confirmed_by = $2, updated_at = NOW()
		 WHERE id = $3 AND status = $4`,
		entities.RequestStatusConfirmed, confirmerID, id, entities.RequestStatusPending,
	)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *MaintenanceRequestRepository) TryCancel(ctx context.Context, q Querier, id uint64) (bool, error) {
	if q == nil {
		q = r.storage
	}
	result, err := q.Exec(ctx,
		`UPDATE maintenance_requests
		 SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND status = $3`,
		entities.RequestStatusCancelled, id, entities.RequestStatusPending,
	)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *MaintenanceRequestRepository) SetJobRef(ctx context.Context, q Querier, id uint64, jobRef string) error {
	if q == nil {
		q = r.storage
	}
	result, err := q.Exec(ctx,
		`UPDATE maintenance_requests SET job_ref = $1, updated_at = NOW() WHERE id = $2`,
		jobRef, id,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *MaintenanceRequestRepository) FindDetailsByRequestID(ctx context.Context, requestID uint64) ([]entities.MaintenanceRequestDetail, error) {
	return r.findDetails(ctx, `request_id = $1`, requestID)
}

func (r *MaintenanceRequestRepository) FindDetailsByRequestIDs(ctx context.Context, requestIDs []uint64) ([]entities.MaintenanceRequestDetail, error) {
	if len(requestIDs) == 0 {
		return []entities.MaintenanceRequestDetail{}, nil
	}
	return r.findDetails(ctx, `request_id = ANY($1)`, int64IDs(requestIDs))
}

func (r *MaintenanceRequestRepository) findDetails(ctx context.Context, where string, arg interface{}) ([]entities.MaintenanceRequestDetail, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT id, request_id, unit_id, maintenance_id, created_at
		 FROM maintenance_request_details WHERE `+where+` ORDER BY id`,
		arg,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]entities.MaintenanceRequestDetail, 0)
	for rows.Next() {
		var d entities.MaintenanceRequestDetail
		var maintenanceID sql.NullInt64
		if err := rows.Scan(&d.ID, &d.RequestID, &d.UnitID, &maintenanceID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan maintenance request detail: %w", err)
		}
		if maintenanceID.Valid {
			id := uint64(maintenanceID.Int64)
			d.MaintenanceID = &id
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func (r *MaintenanceRequestRepository) SetDetailMaintenanceID(ctx context.Context, q Querier, detailID uint64, maintenanceID uint64) error {
	if q == nil {
		q = r.storage
	}
	result, err := q.Exec(ctx,
		`UPDATE maintenance_request_details SET maintenance_id = $1 WHERE id = $2`,
		maintenanceID, detailID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
