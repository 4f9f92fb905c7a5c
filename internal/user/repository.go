package user

import (
	"context"
	"database/sql"
	"errors"

	"rawmart-be/internal/db"
	"rawmart-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
}

type repository struct {
	db db.Provider
}

func NewRepository(db db.Provider) Repository {
	return &repository{db: db}
}

const userColumns = `id, name, email, password, phone, stall_name, location, role, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Password,
		&u.Phone, &u.StallName, &u.Location, &u.Role,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) Create(ctx context.Context, u *User) (*User, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "user.Repository.Create"))

	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	created, err := scanUser(conn.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password, phone, stall_name, location, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns,
		u.Name, u.Email, u.Password, u.Phone, u.StallName, u.Location, u.Role,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		log.Error("db: failed to insert user", zap.String("email", u.Email), zap.Error(err))
		return nil, err
	}

	return created, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	u, err := scanUser(conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (*User, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	u, err := scanUser(conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}
