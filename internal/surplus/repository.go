package surplus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"rawmart-be/internal/db"
	"rawmart-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, vendorID uint, params CreateParams) (*Surplus, error)
	GetByID(ctx context.Context, id uint) (*Surplus, error)
	List(ctx context.Context, filter ListFilter) ([]Surplus, error)
	Update(ctx context.Context, id uint, params UpdateParams) (*Surplus, error)
	Delete(ctx context.Context, id uint) error
	Accept(ctx context.Context, id, supplierID uint) (*Surplus, error)
	SetPaymentOrder(ctx context.Context, id uint, gatewayOrderID string) error
	SetPaymentResult(ctx context.Context, id uint, status Status, paymentStatus PaymentStatus, paymentID *string) (*Surplus, error)
}

type repository struct {
	db db.Provider
}

func NewRepository(db db.Provider) Repository {
	return &repository{db: db}
}

const surplusColumns = `
	s.id, s.vendor_id, u.name, s.title, s.description, s.category, s.quantity, s.unit,
	s.price, s.expiry_date, s.location, s.status, s.accepted_by, s.accepted_at,
	s.payment_status, s.payment_order_id, s.payment_id, s.created_at, s.updated_at`

const surplusSelect = `SELECT` + surplusColumns + `
	FROM surplus s
	JOIN users u ON u.id = s.vendor_id`

func scanSurplus(row interface{ Scan(...any) error }) (*Surplus, error) {
	var s Surplus
	err := row.Scan(
		&s.ID, &s.VendorID, &s.VendorName, &s.Title, &s.Description, &s.Category, &s.Quantity, &s.Unit,
		&s.Price, &s.ExpiryDate, &s.Location, &s.Status, &s.AcceptedBy, &s.AcceptedAt,
		&s.PaymentStatus, &s.PaymentOrderID, &s.PaymentID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) Create(ctx context.Context, vendorID uint, params CreateParams) (*Surplus, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	var id uint
	err = conn.QueryRowContext(ctx, `
		INSERT INTO surplus
			(vendor_id, title, description, category, quantity, unit, price, expiry_date, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		vendorID, params.Title, params.Description, params.Category, params.Quantity,
		params.Unit, params.Price, params.ExpiryDate, params.Location,
	).Scan(&id)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to insert surplus",
			zap.String("method", "surplus.Repository.Create"),
			zap.Uint("vendor_id", vendorID),
			zap.Error(err),
		)
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Surplus, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	s, err := scanSurplus(conn.QueryRowContext(ctx, surplusSelect+" WHERE s.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSurplusNotFound
	}
	return s, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Surplus, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	status := StatusPending
	if filter.Status != nil {
		status = *filter.Status
	}

	conditions := []string{"s.status = $1"}
	args := []any{status}
	argIndex := 2

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("s.category = $%d", argIndex))
		args = append(args, *filter.Category)
	}

	query := surplusSelect + " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY s.created_at DESC"
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to list surplus",
			zap.String("method", "surplus.Repository.List"),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	out := []Surplus{}
	for rows.Next() {
		s, err := scanSurplus(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Update only touches listings that are still pending.
func (r *repository) Update(ctx context.Context, id uint, params UpdateParams) (*Surplus, error) {
	setParts := []string{}
	args := []any{}
	argIndex := 1

	add := func(column string, v any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, v)
		argIndex++
	}
	if params.Title != nil {
		add("title", *params.Title)
	}
	if params.Description != nil {
		add("description", *params.Description)
	}
	if params.Category != nil {
		add("category", *params.Category)
	}
	if params.Quantity != nil {
		add("quantity", *params.Quantity)
	}
	if params.Unit != nil {
		add("unit", *params.Unit)
	}
	if params.Price != nil {
		add("price", *params.Price)
	}
	if params.ExpiryDate != nil {
		add("expiry_date", *params.ExpiryDate)
	}
	if params.Location != nil {
		add("location", *params.Location)
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"UPDATE surplus SET %s, updated_at = NOW() WHERE id = $%d AND status = 'Pending'",
		strings.Join(setParts, ", "), argIndex,
	)
	args = append(args, id)

	res, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to update surplus",
			zap.String("method", "surplus.Repository.Update"),
			zap.Uint("surplus_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotAvailable
	}
	return r.GetByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return err
	}

	res, err := conn.ExecContext(ctx, `DELETE FROM surplus WHERE id = $1 AND status = 'Pending'`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotAvailable
	}
	return nil
}

// Accept is the single check-and-set that decides which supplier wins a
// pending listing. Losers get ErrNotAvailable.
func (r *repository) Accept(ctx context.Context, id, supplierID uint) (*Surplus, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	// The accepting supplier may retry while no gateway order is attached.
	var accepted uint
	err = conn.QueryRowContext(ctx, `
		UPDATE surplus
		SET status = 'Accepted', accepted_by = $2, accepted_at = COALESCE(accepted_at, NOW()), updated_at = NOW()
		WHERE id = $1
			AND (status = 'Pending' OR (status = 'Accepted' AND accepted_by = $2 AND payment_order_id IS NULL))
		RETURNING id`,
		id, supplierID,
	).Scan(&accepted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotAvailable
	}
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to accept surplus",
			zap.String("method", "surplus.Repository.Accept"),
			zap.Uint("surplus_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	return r.GetByID(ctx, accepted)
}

func (r *repository) SetPaymentOrder(ctx context.Context, id uint, gatewayOrderID string) error {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return err
	}

	res, err := conn.ExecContext(ctx, `
		UPDATE surplus SET payment_order_id = $1, updated_at = NOW()
		WHERE id = $2 AND payment_order_id IS NULL`,
		gatewayOrderID, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotAvailable
	}
	return nil
}

// SetPaymentResult applies a verified callback to an accepted listing whose
// payment has not completed yet.
func (r *repository) SetPaymentResult(ctx context.Context, id uint, status Status, paymentStatus PaymentStatus, paymentID *string) (*Surplus, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	res, err := conn.ExecContext(ctx, `
		UPDATE surplus
		SET status = $1, payment_status = $2, payment_id = COALESCE($3, payment_id), updated_at = NOW()
		WHERE id = $4 AND status = 'Accepted' AND payment_status <> 'completed'`,
		status, paymentStatus, paymentID, id,
	)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to store surplus payment",
			zap.String("method", "surplus.Repository.SetPaymentResult"),
			zap.Uint("surplus_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrPaymentCompleted
	}
	return r.GetByID(ctx, id)
}
