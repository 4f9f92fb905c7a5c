package cart

import (
	"context"
	"database/sql"
	"errors"

	"rawmart-be/internal/db"
	"rawmart-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, userID uint) ([]CartItem, error)
	GetQuantity(ctx context.Context, userID, materialID uint) (int, error)
	SetQuantity(ctx context.Context, userID, materialID uint, quantity int) error
	Remove(ctx context.Context, userID, materialID uint) error
	Clear(ctx context.Context, userID uint) error
}

type repository struct {
	db db.Provider
}

func NewRepository(db db.Provider) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, userID uint) ([]CartItem, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "cart.Repository.List"))

	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT
			m.id, m.supplier_id, m.name, m.price, m.unit, m.image_url,
			m.stock, m.min_order_quantity, m.is_active,
			c.quantity, c.updated_at
		FROM carts c
		JOIN raw_materials m ON m.id = c.raw_material_id
		WHERE c.user_id = $1
		ORDER BY c.created_at`, userID)
	if err != nil {
		log.Error("failed to query cart", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := []CartItem{}
	for rows.Next() {
		var it CartItem
		if err := rows.Scan(
			&it.MaterialID, &it.SupplierID, &it.Name, &it.Price, &it.Unit, &it.ImageURL,
			&it.Stock, &it.MinOrderQuantity, &it.IsActive,
			&it.Quantity, &it.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetQuantity returns 0 when the material is not in the cart.
func (r *repository) GetQuantity(ctx context.Context, userID, materialID uint) (int, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return 0, err
	}

	var qty int
	err = conn.QueryRowContext(ctx,
		`SELECT quantity FROM carts WHERE user_id = $1 AND raw_material_id = $2`,
		userID, materialID,
	).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return qty, err
}

func (r *repository) SetQuantity(ctx context.Context, userID, materialID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	conn, err := r.db.Get(ctx)
	if err != nil {
		return err
	}

	_, err = conn.ExecContext(ctx, `
		INSERT INTO carts (user_id, raw_material_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, raw_material_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()`,
		userID, materialID, quantity)
	return err
}

func (r *repository) Remove(ctx context.Context, userID, materialID uint) error {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return err
	}

	res, err := conn.ExecContext(ctx,
		`DELETE FROM carts WHERE user_id = $1 AND raw_material_id = $2`, userID, materialID)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *repository) Clear(ctx context.Context, userID uint) error {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return err
	}

	_, err = conn.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	return err
}
