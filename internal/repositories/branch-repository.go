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

const branchTable = "branches"

var branchMap = map[string]string{
	"id":         "b.id",
	"name":       "b.name",
	"short_name": "b.short_name",
}

var branchColumns = []string{
	"b.id", "b.name", "b.short_name", "b.address", "b.phone_number", "b.email",
	"b.created_at", "b.updated_at",
}

type BranchRepositoryInterface interface {
	GetBranches(ctx context.Context, filter types.Filter) ([]entities.Branch, uint64, error)
	FindBranch(ctx context.Context, id uint64) (*entities.Branch, error)
	FindBranchesByIDs(ctx context.Context, ids []uint64) ([]entities.Branch, error)
	CreateBranch(ctx context.Context, branch entities.Branch) (uint64, error)
	UpdateBranch(ctx context.Context, branch entities.Branch) error
}

type BranchRepository struct {
	storage *pgxpool.Pool
}

func NewBranchRepository(storage *pgxpool.Pool) BranchRepositoryInterface {
	return &BranchRepository{storage: storage}
}

func scanBranch(row pgx.Row) (*entities.Branch, error) {
	var b entities.Branch
	var address, phoneNumber, email sql.NullString

	err := row.Scan(&b.ID, &b.Name, &b.ShortName, &address, &phoneNumber, &email, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan branch: %w", err)
	}
	if address.Valid {
		b.Address = &address.String
	}
	if phoneNumber.Valid {
		b.PhoneNumber = &phoneNumber.String
	}
	if email.Valid {
		b.Email = &email.String
	}
	return &b, nil
}

func (r *BranchRepository) GetBranches(ctx context.Context, filter types.Filter) ([]entities.Branch, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := psql.Select("COUNT(b.id)").From(branchTable + " AS b")
	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, branchMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Branch{}, 0, nil
	}

	baseBuilder := psql.Select(branchColumns...).From(branchTable + " AS b")
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("b.name ASC")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, branchMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	branches := make([]entities.Branch, 0, filter.Limit)
	for rows.Next() {
		branch, err := scanBranch(rows)
		if err != nil {
			return nil, 0, err
		}
		branches = append(branches, *branch)
	}

	return branches, total, nil
}

func (r *BranchRepository) FindBranch(ctx context.Context, id uint64) (*entities.Branch, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(branchColumns...).
		From(branchTable + " AS b").
		Where(sq.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanBranch(r.storage.QueryRow(ctx, query, args...))
}

func (r *BranchRepository) FindBranchesByIDs(ctx context.Context, ids []uint64) ([]entities.Branch, error) {
	if len(ids) == 0 {
		return []entities.Branch{}, nil
	}

	rows, err := r.storage.Query(ctx,
		`SELECT b.id, b.name, b.short_name, b.address, b.phone_number, b.email, b.created_at, b.updated_at
		 FROM branches b WHERE b.id = ANY($1)`,
		int64IDs(ids),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	branches := make([]entities.Branch, 0, len(ids))
	for rows.Next() {
		branch, err := scanBranch(rows)
		if err != nil {
			return nil, err
		}
		branches = append(branches, *branch)
	}
	return branches, rows.Err()
}

func (r *BranchRepository) CreateBranch(ctx context.Context, branch entities.Branch) (uint64, error) {
	query := `
		INSERT INTO branches (name, short_name, address, phone_number, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		branch.Name, branch.ShortName, branch.Address, branch.PhoneNumber, branch.Email,
	).Scan(&newID)
	return newID, err
}

func (r *BranchRepository) UpdateBranch(ctx context.Context, branch entities.Branch) error {
	result, err := r.storage.Exec(ctx,
		`UPDATE branches
		 SET name = $1, short_name = $2, address = $3, phone_number = $4, email = $5, updated_at = NOW()
		 WHERE id = $6`,
		branch.Name, branch.ShortName, branch.Address, branch.PhoneNumber, branch.Email, branch.ID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
