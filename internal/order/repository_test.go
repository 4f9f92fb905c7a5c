package order

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"rawmart-be/internal/db"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderColumns = []string{
	"id", "user_id", "total_amount", "status", "payment_status", "payment_method", "currency",
	"shipping_name", "shipping_address", "shipping_city", "shipping_state",
	"shipping_postal_code", "shipping_country", "shipping_phone",
	"razorpay_order_id", "razorpay_payment_id", "razorpay_signature",
	"processed_at", "delivered_at", "failed_at", "created_at", "updated_at",
	"name", "email", "phone", "stall_name",
}

var itemColumns = []string{
	"id", "order_id", "raw_material_id", "quantity", "price",
	"name", "category", "unit", "image_url", "supplier_id",
}

func addOrderRow(rows *sqlmock.Rows, id, userID uint, total string, status Status, payment PaymentStatus, createdAt time.Time) *sqlmock.Rows {
	return rows.AddRow(
		id, userID, total, string(status), string(payment), "razorpay", "INR",
		"Ravi", "12 Market Rd", "Pune", "MH", "411001", "India", "9999999999",
		"order_GW", nil, nil,
		nil, nil, nil, createdAt, createdAt,
		"Ravi", "ravi@example.com", nil, "Ravi Chaat",
	)
}

func newRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewRepository(db.Static(conn)), mock
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	o := &Order{
		UserID:          9,
		TotalAmount:     decimal.NewFromInt(250),
		Status:          StatusPaymentFailed,
		PaymentStatus:   PaymentPending,
		PaymentMethod:   "razorpay",
		Currency:        "INR",
		ShippingAddress: ShippingAddress{Name: "Ravi", Address: "12 Market Rd", City: "Pune", State: "MH", PostalCode: "411001", Country: "India", Phone: "9999999999"},
		Items: []Item{
			{MaterialID: 10, Quantity: 2, Price: decimal.NewFromInt(100)},
			{MaterialID: 20, Quantity: 1, Price: decimal.NewFromInt(50)},
		},
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO orders`).
			WithArgs(uint(9), decimal.NewFromInt(250), StatusPaymentFailed, PaymentPending, "razorpay", "INR",
				"Ravi", "12 Market Rd", "Pune", "MH", "411001", "India", "9999999999").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(5, now, now))
		mock.ExpectQuery(`INSERT INTO order_items`).
			WithArgs(uint(5), uint(10), 2, decimal.NewFromInt(100)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectQuery(`INSERT INTO order_items`).
			WithArgs(uint(5), uint(20), 1, decimal.NewFromInt(50)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
		mock.ExpectCommit()

		require.NoError(t, repo.Create(context.Background(), o))
		assert.Equal(t, uint(5), o.ID)
		assert.Equal(t, uint(5), o.Items[1].OrderID)
		assert.Equal(t, uint(2), o.Items[1].ID)
	})

	t.Run("Item insert failure rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(6, now, now))
		mock.ExpectQuery(`INSERT INTO order_items`).
			WillReturnError(errors.New("fk violation"))
		mock.ExpectRollback()

		err := repo.Create(context.Background(), o)
		assert.EqualError(t, err, "fk violation")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()
	now := time.Now()

	t.Run("Loads items", func(t *testing.T) {
		mock.ExpectQuery(`FROM orders o\s+JOIN users u ON u.id = o.user_id WHERE o.id = \$1`).
			WithArgs(uint(5)).
			WillReturnRows(addOrderRow(sqlmock.NewRows(orderColumns), 5, 9, "250.00", StatusProcessing, PaymentCompleted, now))
		mock.ExpectQuery(`FROM order_items oi\s+JOIN raw_materials m`).
			WithArgs(pq.Array([]int64{5})).
			WillReturnRows(sqlmock.NewRows(itemColumns).
				AddRow(1, 5, 10, 2, "100.00", "Onion", "vegetables", "kg", nil, 1).
				AddRow(2, 5, 20, 1, "50.00", "Salt", "spices", "kg", nil, 2))

		o, err := repo.GetByID(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, StatusProcessing, o.Status)
		assert.Equal(t, "Pune", o.ShippingAddress.City)
		assert.Equal(t, "Ravi Chaat", *o.Buyer.StallName)
		require.Len(t, o.Items, 2)
		assert.Equal(t, "Salt", o.Items[1].Material.Name)
		assert.Equal(t, "250", ItemsTotal(o.Items).String())
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(`FROM orders o`).
			WithArgs(uint(404)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, 404)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Save(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()
	now := time.Now()

	o := &Order{ID: 5, Status: StatusDelivered, PaymentStatus: PaymentCompleted, DeliveredAt: &now}

	t.Run("Compare and set succeeds", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE orders SET[\s\S]+delivered_at = COALESCE\(delivered_at, \$6\)[\s\S]+WHERE id = \$8 AND status = \$9 AND payment_status = \$10`).
			WithArgs(StatusDelivered, PaymentCompleted, nil, nil, nil, now, nil, uint(5), StatusProcessing, PaymentCompleted).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

		require.NoError(t, repo.Save(ctx, o, StatusProcessing, PaymentCompleted))
	})

	t.Run("Lost race", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE orders SET`).
			WillReturnError(sql.ErrNoRows)

		err := repo.Save(ctx, o, StatusProcessing, PaymentCompleted)
		assert.ErrorIs(t, err, ErrOrderConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindSupplierOrders(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()
	now := time.Now()
	start := now.Add(-24 * time.Hour)
	status := StatusProcessing

	mock.ExpectQuery(`WHERE EXISTS \([\s\S]+oi.raw_material_id = ANY\(\$1\)[\s\S]+\) AND o.status = \$2 AND o.created_at >= \$3 ORDER BY o.created_at DESC`).
		WithArgs(pq.Array([]int64{10}), StatusProcessing, start).
		WillReturnRows(addOrderRow(sqlmock.NewRows(orderColumns), 1, 9, "250.00", StatusProcessing, PaymentCompleted, now))
	mock.ExpectQuery(`FROM order_items oi`).
		WithArgs(pq.Array([]int64{1})).
		WillReturnRows(sqlmock.NewRows(itemColumns).
			AddRow(1, 1, 10, 2, "100.00", "Onion", "vegetables", "kg", nil, 1).
			AddRow(2, 1, 20, 1, "50.00", "Salt", "spices", "kg", nil, 2))

	out, err := repo.FindSupplierOrders(ctx, []uint{10}, Filters{Status: &status, StartDate: &start})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].Items, 1)
	assert.Equal(t, "200", out[0].SupplierSubtotal.String())
	assert.Equal(t, "250", out[0].TotalAmount.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindBySupplierMaterials_NoMaterials(t *testing.T) {
	repo, mock := newRepo(t)

	out, err := repo.FindBySupplierMaterials(context.Background(), nil, Filters{})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetSupplierAnalytics(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Paid supplier items only", func(t *testing.T) {
		mock.ExpectQuery(`WHERE o.payment_status = 'completed' AND oi.raw_material_id = ANY\(\$1\) AND o.created_at >= \$2`).
			WithArgs(pq.Array([]int64{10, 11}), from).
			WillReturnRows(sqlmock.NewRows([]string{"revenue", "orders", "items", "vendors"}).
				AddRow("1000.00", 3, 12, 2))

		a, err := repo.GetSupplierAnalytics(ctx, []uint{10, 11}, &from, nil)
		require.NoError(t, err)
		assert.Equal(t, "1000", a.TotalRevenue.String())
		assert.Equal(t, 3, a.TotalOrders)
		assert.Equal(t, 2, a.TotalVendors)
		assert.Equal(t, "333.33", a.AverageOrderValue.String())
	})

	t.Run("No paid orders", func(t *testing.T) {
		mock.ExpectQuery(`FROM orders o\s+JOIN order_items oi`).
			WithArgs(pq.Array([]int64{10})).
			WillReturnRows(sqlmock.NewRows([]string{"revenue", "orders", "items", "vendors"}).
				AddRow("0", 0, 0, 0))

		a, err := repo.GetSupplierAnalytics(ctx, []uint{10}, nil, nil)
		require.NoError(t, err)
		assert.True(t, a.AverageOrderValue.IsZero())
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListSupplierSales(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT\s+o.id, o.user_id, u.name, oi.raw_material_id`).
		WithArgs(pq.Array([]int64{10})).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "name", "raw_material_id", "name", "category",
			"quantity", "price", "payment_method", "status", "created_at",
		}).AddRow(1, 9, "Ravi", 10, "Onion", "vegetables", 2, "100.00", "razorpay", "processing", now))

	sales, err := repo.ListSupplierSales(context.Background(), []uint{10}, nil, nil)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "200", sales[0].Revenue().String())
	assert.Equal(t, StatusProcessing, sales[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
