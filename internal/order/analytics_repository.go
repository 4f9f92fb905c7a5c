package order

import (
	"context"
	"fmt"
	"time"

	"rawmart-be/internal/logger"
	"rawmart-be/internal/utils"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// paidSalesWhere restricts to paid orders and, after unwinding, to the
// supplier's own line items.
func paidSalesWhere(materialIDs []uint, from, to *time.Time) (string, []any) {
	where := "o.payment_status = 'completed' AND oi.raw_material_id = ANY($1)"
	args := []any{pq.Array(utils.ToInt64s(materialIDs))}
	argIndex := 2

	if from != nil {
		where += fmt.Sprintf(" AND o.created_at >= $%d", argIndex)
		args = append(args, *from)
		argIndex++
	}
	if to != nil {
		where += fmt.Sprintf(" AND o.created_at <= $%d", argIndex)
		args = append(args, *to)
	}
	return where, args
}

func (r *repository) GetSupplierAnalytics(ctx context.Context, materialIDs []uint, from, to *time.Time) (*Analytics, error) {
	if len(materialIDs) == 0 {
		return &Analytics{}, nil
	}

	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	where, args := paidSalesWhere(materialIDs, from, to)

	var a Analytics
	err = conn.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(oi.price * oi.quantity), 0),
			COUNT(DISTINCT o.id),
			COALESCE(SUM(oi.quantity), 0),
			COUNT(DISTINCT o.user_id)
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE `+where,
		args...,
	).Scan(&a.TotalRevenue, &a.TotalOrders, &a.TotalItems, &a.TotalVendors)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to aggregate supplier sales",
			zap.String("method", "order.Repository.GetSupplierAnalytics"),
			zap.Error(err),
		)
		return nil, err
	}

	a.AverageOrderValue = AverageOrderValue(a.TotalRevenue, a.TotalOrders)
	return &a, nil
}

func (r *repository) ListSupplierSales(ctx context.Context, materialIDs []uint, from, to *time.Time) ([]Sale, error) {
	if len(materialIDs) == 0 {
		return []Sale{}, nil
	}

	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	where, args := paidSalesWhere(materialIDs, from, to)
	rows, err := conn.QueryContext(ctx, `
		SELECT
			o.id, o.user_id, u.name, oi.raw_material_id, m.name, m.category,
			oi.quantity, oi.price, o.payment_method, o.status, o.created_at
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN raw_materials m ON m.id = oi.raw_material_id
		JOIN users u ON u.id = o.user_id
		WHERE `+where+`
		ORDER BY o.created_at, oi.id`,
		args...,
	)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to list supplier sales",
			zap.String("method", "order.Repository.ListSupplierSales"),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	sales := []Sale{}
	for rows.Next() {
		var s Sale
		if err := rows.Scan(
			&s.OrderID, &s.UserID, &s.VendorName, &s.MaterialID, &s.MaterialName, &s.Category,
			&s.Quantity, &s.Price, &s.PaymentMethod, &s.Status, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}
