package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"rawmart-be/internal/db"
	"rawmart-be/internal/logger"
	"rawmart-be/internal/utils"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	SetGatewayOrder(ctx context.Context, id uint, gatewayOrderID string) error
	GetByID(ctx context.Context, id uint) (*Order, error)
	GetByGatewayOrder(ctx context.Context, gatewayOrderID string) (*Order, error)
	ListByUser(ctx context.Context, userID uint) ([]Order, error)
	ContainsMaterials(ctx context.Context, orderID uint, materialIDs []uint) (bool, error)
	Save(ctx context.Context, o *Order, expectStatus Status, expectPayment PaymentStatus) error

	FindBySupplierMaterials(ctx context.Context, materialIDs []uint, f Filters) ([]Order, error)
	FindSupplierOrders(ctx context.Context, materialIDs []uint, f Filters) ([]SupplierOrder, error)
	GetSupplierAnalytics(ctx context.Context, materialIDs []uint, from, to *time.Time) (*Analytics, error)
	ListSupplierSales(ctx context.Context, materialIDs []uint, from, to *time.Time) ([]Sale, error)
}

type repository struct {
	db db.Provider
}

func NewRepository(db db.Provider) Repository {
	return &repository{db: db}
}

const orderSelect = `
	SELECT
		o.id, o.user_id, o.total_amount, o.status, o.payment_status, o.payment_method, o.currency,
		o.shipping_name, o.shipping_address, o.shipping_city, o.shipping_state,
		o.shipping_postal_code, o.shipping_country, o.shipping_phone,
		o.razorpay_order_id, o.razorpay_payment_id, o.razorpay_signature,
		o.processed_at, o.delivered_at, o.failed_at, o.created_at, o.updated_at,
		u.name, u.email, u.phone, u.stall_name
	FROM orders o
	JOIN users u ON u.id = o.user_id`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	var b Buyer
	sa := &o.ShippingAddress
	err := row.Scan(
		&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.Currency,
		&sa.Name, &sa.Address, &sa.City, &sa.State,
		&sa.PostalCode, &sa.Country, &sa.Phone,
		&o.PaymentInfo.OrderID, &o.PaymentInfo.PaymentID, &o.PaymentInfo.Signature,
		&o.ProcessedAt, &o.DeliveredAt, &o.FailedAt, &o.CreatedAt, &o.UpdatedAt,
		&b.Name, &b.Email, &b.Phone, &b.StallName,
	)
	if err != nil {
		return nil, err
	}
	b.ID = o.UserID
	o.Buyer = &b
	o.Items = []Item{}
	return &o, nil
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(zap.String("method", "order.Repository.Create"))

	conn, err := r.db.Get(ctx)
	if err != nil {
		return err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sa := o.ShippingAddress
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			user_id, total_amount, status, payment_status, payment_method, currency,
			shipping_name, shipping_address, shipping_city, shipping_state,
			shipping_postal_code, shipping_country, shipping_phone
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`,
		o.UserID, o.TotalAmount, o.Status, o.PaymentStatus, o.PaymentMethod, o.Currency,
		sa.Name, sa.Address, sa.City, sa.State, sa.PostalCode, sa.Country, sa.Phone,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("db: failed to insert order", zap.Uint("user_id", o.UserID), zap.Error(err))
		return err
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		err := tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, raw_material_id, quantity, price)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			o.ID, it.MaterialID, it.Quantity, it.Price,
		).Scan(&it.ID)
		if err != nil {
			log.Error("db: failed to insert order item",
				zap.Uint("order_id", o.ID),
				zap.Uint("material_id", it.MaterialID),
				zap.Error(err),
			)
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) SetGatewayOrder(ctx context.Context, id uint, gatewayOrderID string) error {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return err
	}

	res, err := conn.ExecContext(ctx, `
		UPDATE orders SET razorpay_order_id = $1, updated_at = NOW()
		WHERE id = $2`,
		gatewayOrderID, id,
	)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to store gateway order id",
			zap.String("method", "order.Repository.SetGatewayOrder"),
			zap.Uint("order_id", id),
			zap.Error(err),
		)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) getOne(ctx context.Context, where string, arg any) (*Order, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	o, err := scanOrder(conn.QueryRowContext(ctx, orderSelect+" WHERE "+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := loadItems(ctx, conn, []uint{o.ID})
	if err != nil {
		return nil, err
	}
	if its, ok := items[o.ID]; ok {
		o.Items = its
	}
	return o, nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Order, error) {
	return r.getOne(ctx, "o.id = $1", id)
}

func (r *repository) GetByGatewayOrder(ctx context.Context, gatewayOrderID string) (*Order, error) {
	return r.getOne(ctx, "o.razorpay_order_id = $1", gatewayOrderID)
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]Order, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, orderSelect+" WHERE o.user_id = $1 ORDER BY o.created_at DESC", userID)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to list orders",
			zap.String("method", "order.Repository.ListByUser"),
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}
	return withItems(ctx, conn, rows)
}

func (r *repository) ContainsMaterials(ctx context.Context, orderID uint, materialIDs []uint) (bool, error) {
	if len(materialIDs) == 0 {
		return false, nil
	}

	conn, err := r.db.Get(ctx)
	if err != nil {
		return false, err
	}

	var found bool
	err = conn.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM order_items
			WHERE order_id = $1 AND raw_material_id = ANY($2)
		)`,
		orderID, pq.Array(utils.ToInt64s(materialIDs)),
	).Scan(&found)
	return found, err
}

// Save writes status, payment status, payment info and lifecycle timestamps
// if the row still holds expectStatus and expectPayment. Timestamps that
// are already set are kept.
func (r *repository) Save(ctx context.Context, o *Order, expectStatus Status, expectPayment PaymentStatus) error {
	log := logger.FromCtx(ctx).With(zap.String("method", "order.Repository.Save"))

	conn, err := r.db.Get(ctx)
	if err != nil {
		return err
	}

	err = conn.QueryRowContext(ctx, `
		UPDATE orders SET
			status = $1,
			payment_status = $2,
			razorpay_payment_id = COALESCE($3, razorpay_payment_id),
			razorpay_signature = COALESCE($4, razorpay_signature),
			processed_at = COALESCE(processed_at, $5),
			delivered_at = COALESCE(delivered_at, $6),
			failed_at = COALESCE(failed_at, $7),
			updated_at = NOW()
		WHERE id = $8 AND status = $9 AND payment_status = $10
		RETURNING updated_at`,
		o.Status, o.PaymentStatus, o.PaymentInfo.PaymentID, o.PaymentInfo.Signature,
		o.ProcessedAt, o.DeliveredAt, o.FailedAt,
		o.ID, expectStatus, expectPayment,
	).Scan(&o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Warn("order changed before save",
			zap.Uint("order_id", o.ID),
			zap.String("expected_status", string(expectStatus)),
			zap.String("expected_payment_status", string(expectPayment)),
		)
		return ErrOrderConflict
	}
	if err != nil {
		log.Error("db: failed to update order", zap.Uint("order_id", o.ID), zap.Error(err))
		return err
	}
	return nil
}

// supplierWhere matches orders holding any of the supplier's materials.
func supplierWhere(materialIDs []uint, f Filters) (string, []any) {
	conditions := []string{`EXISTS (
		SELECT 1 FROM order_items oi
		WHERE oi.order_id = o.id AND oi.raw_material_id = ANY($1)
	)`}
	args := []any{pq.Array(utils.ToInt64s(materialIDs))}
	argIndex := 2

	if f.Status != nil {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argIndex))
		args = append(args, *f.Status)
		argIndex++
	}
	if f.PaymentStatus != nil {
		conditions = append(conditions, fmt.Sprintf("o.payment_status = $%d", argIndex))
		args = append(args, *f.PaymentStatus)
		argIndex++
	}
	if f.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at >= $%d", argIndex))
		args = append(args, *f.StartDate)
		argIndex++
	}
	if f.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at <= $%d", argIndex))
		args = append(args, *f.EndDate)
	}

	return strings.Join(conditions, " AND "), args
}

func (r *repository) FindBySupplierMaterials(ctx context.Context, materialIDs []uint, f Filters) ([]Order, error) {
	if len(materialIDs) == 0 {
		return []Order{}, nil
	}

	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	where, args := supplierWhere(materialIDs, f)
	rows, err := conn.QueryContext(ctx, orderSelect+" WHERE "+where+" ORDER BY o.created_at DESC", args...)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to query supplier orders",
			zap.String("method", "order.Repository.FindBySupplierMaterials"),
			zap.Int("materials", len(materialIDs)),
			zap.Error(err),
		)
		return nil, err
	}
	return withItems(ctx, conn, rows)
}

func (r *repository) FindSupplierOrders(ctx context.Context, materialIDs []uint, f Filters) ([]SupplierOrder, error) {
	orders, err := r.FindBySupplierMaterials(ctx, materialIDs, f)
	if err != nil {
		return nil, err
	}

	set := NewMaterialSet(materialIDs)
	out := make([]SupplierOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ProjectTo(set))
	}
	return out, nil
}

func withItems(ctx context.Context, conn *sql.DB, rows *sql.Rows) ([]Order, error) {
	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]uint, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := loadItems(ctx, conn, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if its, ok := items[orders[i].ID]; ok {
			orders[i].Items = its
		}
	}
	return orders, nil
}

func scanOrders(rows *sql.Rows) ([]Order, error) {
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func loadItems(ctx context.Context, conn *sql.DB, orderIDs []uint) (map[uint][]Item, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT
			oi.id, oi.order_id, oi.raw_material_id, oi.quantity, oi.price,
			m.name, m.category, m.unit, m.image_url, m.supplier_id
		FROM order_items oi
		JOIN raw_materials m ON m.id = oi.raw_material_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.id`,
		pq.Array(utils.ToInt64s(orderIDs)),
	)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to load order items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := map[uint][]Item{}
	for rows.Next() {
		var it Item
		var m MaterialInfo
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.MaterialID, &it.Quantity, &it.Price,
			&m.Name, &m.Category, &m.Unit, &m.ImageURL, &m.SupplierID,
		); err != nil {
			return nil, err
		}
		it.Material = &m
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}
