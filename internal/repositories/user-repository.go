package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"asset-system/internal/entities"
	apperrors "asset-system/pkg/errors"
)

type UserRepositoryInterface interface {
	FindUserByID(ctx context.Context, id uint64) (*entities.User, error)
	FindUsersByIDs(ctx context.Context, ids []uint64) ([]entities.User, error)
	FindUserByEmail(ctx context.Context, email string) (*entities.User, error)
	FindUsersByRole(ctx context.Context, role string) ([]entities.User, error)
	CreateUser(ctx context.Context, user entities.User) (uint64, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
}

func NewUserRepository(storage *pgxpool.Pool) UserRepositoryInterface {
	return &UserRepository{storage: storage}
}

const userColumns = `id, full_name, email, phone_number, password, role, branch_id, created_at, updated_at`

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	var phoneNumber sql.NullString

	err := row.Scan(&u.ID, &u.FullName, &u.Email, &phoneNumber, &u.Password, &u.Role, &u.BranchID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if phoneNumber.Valid {
		u.PhoneNumber = &phoneNumber.String
	}
	return &u, nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	return scanUser(r.storage.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	))
}

func (r *UserRepository) FindUsersByIDs(ctx context.Context, ids []uint64) ([]entities.User, error) {
	if len(ids) == 0 {
		return []entities.User{}, nil
	}

	rows, err := r.storage.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, int64IDs(ids),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	return scanUser(r.storage.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email,
	))
}

func (r *UserRepository) FindUsersByRole(ctx context.Context, role string) ([]entities.User, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY id`, role,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

func (r *UserRepository) CreateUser(ctx context.Context, user entities.User) (uint64, error) {
	query := `
		INSERT INTO users (full_name, email, phone_number, password, role, branch_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		user.FullName, user.Email, user.PhoneNumber, user.Password, user.Role, user.BranchID,
	).Scan(&newID)
	return newID, err
}

func collectUsers(rows pgx.Rows) ([]entities.User, error) {
	users := make([]entities.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}
