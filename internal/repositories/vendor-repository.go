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

const vendorTable = "vendors"

var vendorMap = map[string]string{
	"id":   "v.id",
	"name": "v.name",
}

var vendorColumns = []string{
	"v.id", "v.name", "v.contact_name", "v.phone_number", "v.email", "v.address",
	"v.created_at", "v.updated_at",
}

type VendorRepositoryInterface interface {
	GetVendors(ctx context.Context, filter types.Filter) ([]entities.Vendor, uint64, error)
	FindVendor(ctx context.Context, id uint64) (*entities.Vendor, error)
	FindVendorsByIDs(ctx context.Context, ids []uint64) ([]entities.Vendor, error)
	CreateVendor(ctx context.Context, vendor entities.Vendor) (uint64, error)
}

type VendorRepository struct {
	storage *pgxpool.Pool
}

func NewVendorRepository(storage *pgxpool.Pool) VendorRepositoryInterface {
	return &VendorRepository{storage: storage}
}

func scanVendor(row pgx.Row) (*entities.Vendor, error) {
	var v entities.Vendor
	var contactName, phoneNumber, email, address sql.NullString

	err := row.Scan(&v.ID, &v.Name, &contactName, &phoneNumber, &email, &address, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan vendor: %w", err)
	}
	if contactName.Valid {
		v.ContactName = &contactName.String
	}
	if phoneNumber.Valid {
		v.PhoneNumber = &phoneNumber.String
	}
	if email.Valid {
		v.Email = &email.String
	}
	if address.Valid {
		v.Address = &address.String
	}
	return &v, nil
}

func (r *VendorRepository) GetVendors(ctx context.Context, filter types.Filter) ([]entities.Vendor, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := psql.Select("COUNT(v.id)").From(vendorTable + " AS v")
	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, vendorMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Vendor{}, 0, nil
	}

	baseBuilder := psql.Select(vendorColumns...).From(vendorTable + " AS v")
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("v.name ASC")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, vendorMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	vendors := make([]entities.Vendor, 0, filter.Limit)
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, 0, err
		}
		vendors = append(vendors, *vendor)
	}

	return vendors, total, nil
}

func (r *VendorRepository) FindVendor(ctx context.Context, id uint64) (*entities.Vendor, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(vendorColumns...).
		From(vendorTable + " AS v").
		Where(sq.Eq{"v.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanVendor(r.storage.QueryRow(ctx, query, args...))
}

func (r *VendorRepository) FindVendorsByIDs(ctx context.Context, ids []uint64) ([]entities.Vendor, error) {
	if len(ids) == 0 {
		return []entities.Vendor{}, nil
	}

	rows, err := r.storage.Query(ctx,
		`SELECT v.id, v.name, v.contact_name, v.phone_number, v.email, v.address, v.created_at, v.updated_at
		 FROM vendors v WHERE v.id = ANY($1)`,
		int64IDs(ids),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vendors := make([]entities.Vendor, 0, len(ids))
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, *vendor)
	}
	return vendors, rows.Err()
}

func (r *VendorRepository) CreateVendor(ctx context.Context, vendor entities.Vendor) (uint64, error) {
	query := `
		INSERT INTO vendors (name, contact_name, phone_number, email, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		vendor.Name, vendor.ContactName, vendor.PhoneNumber, vendor.Email, vendor.Address,
	).Scan(&newID)
	return newID, err
}
