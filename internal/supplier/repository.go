package supplier

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"rawmart-be/internal/db"
	"rawmart-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, s *Supplier) (*Supplier, error)
	FindByEmail(ctx context.Context, email string) (*Supplier, error)
	FindByID(ctx context.Context, id uint) (*Supplier, error)
	UpdateProfile(ctx context.Context, id uint, params UpdateProfileParams) (*Supplier, error)
}

type repository struct {
	db db.Provider
}

func NewRepository(db db.Provider) Repository {
	return &repository{db: db}
}

const supplierColumns = `id, name, email, password, business_name, phone, address, city, state, is_verified, created_at, updated_at`

func scanSupplier(row interface{ Scan(...any) error }) (*Supplier, error) {
	var s Supplier
	err := row.Scan(
		&s.ID, &s.Name, &s.Email, &s.Password, &s.BusinessName, &s.Phone,
		&s.Address, &s.City, &s.State, &s.IsVerified, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) Create(ctx context.Context, s *Supplier) (*Supplier, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "supplier.Repository.Create"))

	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	created, err := scanSupplier(conn.QueryRowContext(ctx, `
		INSERT INTO suppliers (name, email, password, business_name, phone, address, city, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+supplierColumns,
		s.Name, s.Email, s.Password, s.BusinessName, s.Phone, s.Address, s.City, s.State,
	))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrEmailExists
		}
		log.Error("db: failed to insert supplier", zap.String("email", s.Email), zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Supplier, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	s, err := scanSupplier(conn.QueryRowContext(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSupplierNotFound
	}
	return s, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (*Supplier, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	s, err := scanSupplier(conn.QueryRowContext(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSupplierNotFound
	}
	return s, err
}

func (r *repository) UpdateProfile(ctx context.Context, id uint, params UpdateProfileParams) (*Supplier, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "supplier.Repository.UpdateProfile"))

	setParts := []string{}
	args := []interface{}{}
	argIndex := 1

	set := func(column string, v *string) {
		if v == nil {
			return
		}
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, *v)
		argIndex++
	}
	set("name", params.Name)
	set("business_name", params.BusinessName)
	set("phone", params.Phone)
	set("address", params.Address)
	set("city", params.City)
	set("state", params.State)

	if len(setParts) == 0 {
		return r.FindByID(ctx, id)
	}

	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`UPDATE suppliers SET %s, updated_at = NOW() WHERE id = $%d RETURNING `+supplierColumns,
		strings.Join(setParts, ", "), argIndex,
	)
	args = append(args, id)

	s, err := scanSupplier(conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSupplierNotFound
	}
	if err != nil {
		log.Error("db: failed to update supplier", zap.Uint("supplier_id", id), zap.Error(err))
		return nil, err
	}
	return s, nil
}
