package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"rawmart-be/internal/cart"
	"rawmart-be/internal/payment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, o *Order) error {
	args := m.Called(ctx, o)
	if args.Error(0) == nil {
		o.ID = 5
	}
	return args.Error(0)
}

func (m *MockRepository) SetGatewayOrder(ctx context.Context, id uint, gatewayOrderID string) error {
	return m.Called(ctx, id, gatewayOrderID).Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uint) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) GetByGatewayOrder(ctx context.Context, gatewayOrderID string) (*Order, error) {
	args := m.Called(ctx, gatewayOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID uint) ([]Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Order), args.Error(1)
}

func (m *MockRepository) ContainsMaterials(ctx context.Context, orderID uint, materialIDs []uint) (bool, error) {
	args := m.Called(ctx, orderID, materialIDs)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, o *Order, expectStatus Status, expectPayment PaymentStatus) error {
	return m.Called(ctx, o, expectStatus, expectPayment).Error(0)
}

func (m *MockRepository) FindBySupplierMaterials(ctx context.Context, materialIDs []uint, f Filters) ([]Order, error) {
	args := m.Called(ctx, materialIDs, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Order), args.Error(1)
}

func (m *MockRepository) FindSupplierOrders(ctx context.Context, materialIDs []uint, f Filters) ([]SupplierOrder, error) {
	args := m.Called(ctx, materialIDs, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SupplierOrder), args.Error(1)
}

func (m *MockRepository) GetSupplierAnalytics(ctx context.Context, materialIDs []uint, from, to *time.Time) (*Analytics, error) {
	args := m.Called(ctx, materialIDs, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Analytics), args.Error(1)
}

func (m *MockRepository) ListSupplierSales(ctx context.Context, materialIDs []uint, from, to *time.Time) ([]Sale, error) {
	args := m.Called(ctx, materialIDs, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Sale), args.Error(1)
}

type MockCartStore struct {
	mock.Mock
}

func (m *MockCartStore) List(ctx context.Context, userID uint) ([]cart.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.CartItem), args.Error(1)
}

func (m *MockCartStore) Clear(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

type MockMaterialStore struct {
	mock.Mock
}

func (m *MockMaterialStore) IDsBySupplier(ctx context.Context, supplierID uint) ([]uint, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockMaterialStore) DecrementStock(ctx context.Context, id uint, quantity int) (bool, error) {
	args := m.Called(ctx, id, quantity)
	return args.Bool(0), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) KeyID() string { return "rzp_test" }

func (m *MockGateway) CreateOrder(ctx context.Context, req payment.OrderRequest) (*payment.GatewayOrder, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.GatewayOrder), args.Error(1)
}

func (m *MockGateway) FetchPayment(ctx context.Context, paymentID string) (*payment.PaymentDetails, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PaymentDetails), args.Error(1)
}

func (m *MockGateway) VerifySignature(orderID, paymentID, signature string) error {
	return m.Called(orderID, paymentID, signature).Error(0)
}

type recordingTracker struct {
	callbacks []payment.Callback
	results   []error
}

func (r *recordingTracker) Track(_ context.Context, cb payment.Callback) func(error) {
	r.callbacks = append(r.callbacks, cb)
	return func(err error) { r.results = append(r.results, err) }
}

type fixture struct {
	repo      *MockRepository
	carts     *MockCartStore
	materials *MockMaterialStore
	gateway   *MockGateway
	journal   *recordingTracker
	svc       *service
	now       time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:      new(MockRepository),
		carts:     new(MockCartStore),
		materials: new(MockMaterialStore),
		gateway:   new(MockGateway),
		journal:   &recordingTracker{},
		now:       time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.repo, f.carts, f.materials, f.gateway, f.journal, "INR").(*service)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestService_Checkout(t *testing.T) {
	ctx := context.Background()
	addr := ShippingAddress{Name: "Ravi", Address: "12 Market Rd", City: "Pune", State: "MH", PostalCode: "411001", Country: "India", Phone: "9999999999"}

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		f.carts.On("List", ctx, uint(9)).Return([]cart.CartItem{
			{MaterialID: 10, Name: "Onion", Price: decimal.NewFromInt(100), Quantity: 2, Stock: 5, IsActive: true},
			{MaterialID: 20, Name: "Salt", Price: decimal.NewFromInt(50), Quantity: 1, Stock: 5, IsActive: true},
		}, nil)
		f.repo.On("Create", ctx, mock.MatchedBy(func(o *Order) bool {
			return o.Status == StatusPaymentFailed &&
				o.PaymentStatus == PaymentPending &&
				o.TotalAmount.Equal(decimal.NewFromInt(250)) &&
				o.FailedAt == nil &&
				len(o.Items) == 2
		})).Return(nil)
		f.gateway.On("CreateOrder", ctx, mock.MatchedBy(func(req payment.OrderRequest) bool {
			return req.Receipt == "order_5" && req.Amount.Equal(decimal.NewFromInt(250)) && req.Currency == "INR"
		})).Return(&payment.GatewayOrder{ID: "order_GW", Amount: 25000, Currency: "INR"}, nil)
		f.repo.On("SetGatewayOrder", ctx, uint(5), "order_GW").Return(nil)

		res, err := f.svc.Checkout(ctx, 9, CheckoutParams{ShippingAddress: addr})
		require.NoError(t, err)
		assert.Equal(t, "razorpay", res.Order.PaymentMethod)
		assert.Equal(t, "order_GW", *res.Order.PaymentInfo.OrderID)
		assert.Equal(t, int64(25000), res.Payment.Amount)
		f.repo.AssertExpectations(t)
		f.gateway.AssertExpectations(t)
	})

	t.Run("Empty cart", func(t *testing.T) {
		f := newFixture()
		f.carts.On("List", ctx, uint(9)).Return([]cart.CartItem{}, nil)

		_, err := f.svc.Checkout(ctx, 9, CheckoutParams{ShippingAddress: addr})
		assert.ErrorIs(t, err, cart.ErrCartEmpty)
	})

	t.Run("Reports every shortage", func(t *testing.T) {
		f := newFixture()
		f.carts.On("List", ctx, uint(9)).Return([]cart.CartItem{
			{MaterialID: 10, Name: "Onion", Price: decimal.NewFromInt(100), Quantity: 8, Stock: 5, IsActive: true},
			{MaterialID: 20, Name: "Salt", Price: decimal.NewFromInt(50), Quantity: 1, Stock: 5, IsActive: false},
			{MaterialID: 30, Name: "Rice", Price: decimal.NewFromInt(60), Quantity: 1, Stock: 5, IsActive: true},
		}, nil)

		_, err := f.svc.Checkout(ctx, 9, CheckoutParams{ShippingAddress: addr})

		var availErr *cart.AvailabilityError
		require.ErrorAs(t, err, &availErr)
		assert.Len(t, availErr.Shortages, 2)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Gateway failure", func(t *testing.T) {
		f := newFixture()
		f.carts.On("List", ctx, uint(9)).Return([]cart.CartItem{
			{MaterialID: 10, Price: decimal.NewFromInt(100), Quantity: 1, Stock: 5, IsActive: true},
		}, nil)
		f.repo.On("Create", ctx, mock.Anything).Return(nil)
		f.gateway.On("CreateOrder", ctx, mock.Anything).Return(nil, errors.New("gateway down"))

		_, err := f.svc.Checkout(ctx, 9, CheckoutParams{ShippingAddress: addr})
		assert.ErrorContains(t, err, "gateway down")
		f.repo.AssertNotCalled(t, "SetGatewayOrder", mock.Anything, mock.Anything, mock.Anything)
	})
}

func pendingOrder() *Order {
	gw := "order_GW"
	return &Order{
		ID:     5,
		UserID: 9,
		Items: []Item{
			{MaterialID: 10, Quantity: 2, Price: decimal.NewFromInt(100)},
			{MaterialID: 20, Quantity: 1, Price: decimal.NewFromInt(50)},
		},
		TotalAmount:   decimal.NewFromInt(250),
		Status:        StatusPaymentFailed,
		PaymentStatus: PaymentPending,
		PaymentInfo:   PaymentInfo{OrderID: &gw},
	}
}

func TestService_PaymentCallback(t *testing.T) {
	ctx := context.Background()
	params := payment.CallbackParams{GatewayOrderID: "order_GW", PaymentID: "pay_1", Signature: "sig"}

	t.Run("Success completes the order", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByGatewayOrder", ctx, "order_GW").Return(pendingOrder(), nil)
		f.gateway.On("VerifySignature", "order_GW", "pay_1", "sig").Return(nil)
		f.repo.On("Save", ctx, mock.MatchedBy(func(o *Order) bool {
			return o.Status == StatusProcessing && o.PaymentStatus == PaymentCompleted && o.ProcessedAt != nil
		}), StatusPaymentFailed, PaymentPending).Return(nil)
		f.materials.On("DecrementStock", ctx, uint(10), 2).Return(true, nil)
		f.materials.On("DecrementStock", ctx, uint(20), 1).Return(false, nil)
		f.carts.On("Clear", ctx, uint(9)).Return(nil)

		o, err := f.svc.PaymentCallback(ctx, 9, params)
		require.NoError(t, err)
		assert.Equal(t, StatusProcessing, o.Status)
		assert.Equal(t, f.now, *o.ProcessedAt)
		assert.Equal(t, "pay_1", *o.PaymentInfo.PaymentID)

		require.Len(t, f.journal.callbacks, 1)
		assert.True(t, f.journal.callbacks[0].SignatureValid)
		assert.Equal(t, payment.SourceOrder, f.journal.callbacks[0].Source)
		assert.Equal(t, []error{nil}, f.journal.results)
		f.materials.AssertExpectations(t)
		f.carts.AssertExpectations(t)
	})

	t.Run("Replay is idempotent", func(t *testing.T) {
		f := newFixture()
		paid := pendingOrder()
		paymentID := "pay_1"
		processedAt := f.now.Add(-time.Hour)
		paid.Status = StatusProcessing
		paid.PaymentStatus = PaymentCompleted
		paid.PaymentInfo.PaymentID = &paymentID
		paid.ProcessedAt = &processedAt

		f.repo.On("GetByGatewayOrder", ctx, "order_GW").Return(paid, nil)
		f.gateway.On("VerifySignature", "order_GW", "pay_1", "sig").Return(nil)

		o, err := f.svc.PaymentCallback(ctx, 9, params)
		require.NoError(t, err)
		assert.Equal(t, processedAt, *o.ProcessedAt)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.materials.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Bad signature", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByGatewayOrder", ctx, "order_GW").Return(pendingOrder(), nil)
		f.gateway.On("VerifySignature", "order_GW", "pay_1", "sig").Return(payment.ErrInvalidSignature)

		_, err := f.svc.PaymentCallback(ctx, 9, params)
		assert.ErrorIs(t, err, payment.ErrInvalidSignature)
		require.Len(t, f.journal.callbacks, 1)
		assert.False(t, f.journal.callbacks[0].SignatureValid)
		assert.ErrorIs(t, f.journal.results[0], payment.ErrInvalidSignature)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Another user's order", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByGatewayOrder", ctx, "order_GW").Return(pendingOrder(), nil)

		_, err := f.svc.PaymentCallback(ctx, 10, params)
		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.Empty(t, f.journal.callbacks)
	})

	t.Run("Failure marks payment failed once", func(t *testing.T) {
		f := newFixture()
		failed := params
		failed.Failed = true
		f.repo.On("GetByGatewayOrder", ctx, "order_GW").Return(pendingOrder(), nil)
		f.gateway.On("VerifySignature", "order_GW", "pay_1", "sig").Return(nil)
		f.repo.On("Save", ctx, mock.MatchedBy(func(o *Order) bool {
			return o.PaymentStatus == PaymentFailed && o.FailedAt != nil && o.Status == StatusPaymentFailed
		}), StatusPaymentFailed, PaymentPending).Return(nil)

		o, err := f.svc.PaymentCallback(ctx, 9, failed)
		require.NoError(t, err)
		assert.Equal(t, f.now, *o.FailedAt)
		assert.Equal(t, "failed", f.journal.callbacks[0].Outcome)
	})

	t.Run("Failure after completion is rejected", func(t *testing.T) {
		f := newFixture()
		paid := pendingOrder()
		paid.Status = StatusProcessing
		paid.PaymentStatus = PaymentCompleted
		failed := params
		failed.Failed = true

		f.repo.On("GetByGatewayOrder", ctx, "order_GW").Return(paid, nil)
		f.gateway.On("VerifySignature", "order_GW", "pay_1", "sig").Return(nil)

		_, err := f.svc.PaymentCallback(ctx, 9, failed)
		assert.ErrorIs(t, err, ErrPaymentCompleted)
	})
}

func TestService_UpdateStatusForSupplier(t *testing.T) {
	ctx := context.Background()

	paidOrder := func() *Order {
		o := pendingOrder()
		o.Status = StatusProcessing
		o.PaymentStatus = PaymentCompleted
		return o
	}

	t.Run("Delivers and projects", func(t *testing.T) {
		f := newFixture()
		f.materials.On("IDsBySupplier", ctx, uint(1)).Return([]uint{10}, nil)
		f.repo.On("ContainsMaterials", ctx, uint(5), []uint{10}).Return(true, nil)
		f.repo.On("GetByID", ctx, uint(5)).Return(paidOrder(), nil)
		f.repo.On("Save", ctx, mock.Anything, StatusProcessing, PaymentCompleted).Return(nil)

		so, err := f.svc.UpdateStatusForSupplier(ctx, 1, 5, StatusDelivered)
		require.NoError(t, err)
		assert.Equal(t, StatusDelivered, so.Status)
		assert.Equal(t, f.now, *so.DeliveredAt)
		require.Len(t, so.Items, 1)
		assert.Equal(t, "200", so.SupplierSubtotal.String())
	})

	t.Run("Delivered twice is a no-op", func(t *testing.T) {
		f := newFixture()
		delivered := paidOrder()
		deliveredAt := f.now.Add(-time.Hour)
		delivered.Status = StatusDelivered
		delivered.DeliveredAt = &deliveredAt

		f.materials.On("IDsBySupplier", ctx, uint(1)).Return([]uint{10}, nil)
		f.repo.On("ContainsMaterials", ctx, uint(5), []uint{10}).Return(true, nil)
		f.repo.On("GetByID", ctx, uint(5)).Return(delivered, nil)

		so, err := f.svc.UpdateStatusForSupplier(ctx, 1, 5, StatusDelivered)
		require.NoError(t, err)
		assert.Equal(t, deliveredAt, *so.DeliveredAt)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Backwards move rejected", func(t *testing.T) {
		f := newFixture()
		delivered := paidOrder()
		delivered.Status = StatusDelivered

		f.materials.On("IDsBySupplier", ctx, uint(1)).Return([]uint{10}, nil)
		f.repo.On("ContainsMaterials", ctx, uint(5), []uint{10}).Return(true, nil)
		f.repo.On("GetByID", ctx, uint(5)).Return(delivered, nil)

		_, err := f.svc.UpdateStatusForSupplier(ctx, 1, 5, StatusProcessing)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("Unpaid order cannot be moved by a supplier", func(t *testing.T) {
		f := newFixture()
		f.materials.On("IDsBySupplier", ctx, uint(1)).Return([]uint{10}, nil)
		f.repo.On("ContainsMaterials", ctx, uint(5), []uint{10}).Return(true, nil)
		f.repo.On("GetByID", ctx, uint(5)).Return(pendingOrder(), nil)

		_, err := f.svc.UpdateStatusForSupplier(ctx, 1, 5, StatusProcessing)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("Order without supplier items", func(t *testing.T) {
		f := newFixture()
		f.materials.On("IDsBySupplier", ctx, uint(2)).Return([]uint{99}, nil)
		f.repo.On("ContainsMaterials", ctx, uint(5), []uint{99}).Return(false, nil)

		_, err := f.svc.UpdateStatusForSupplier(ctx, 2, 5, StatusDelivered)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("Concurrent change", func(t *testing.T) {
		f := newFixture()
		f.materials.On("IDsBySupplier", ctx, uint(1)).Return([]uint{10}, nil)
		f.repo.On("ContainsMaterials", ctx, uint(5), []uint{10}).Return(true, nil)
		f.repo.On("GetByID", ctx, uint(5)).Return(paidOrder(), nil)
		f.repo.On("Save", ctx, mock.Anything, StatusProcessing, PaymentCompleted).Return(ErrOrderConflict)

		_, err := f.svc.UpdateStatusForSupplier(ctx, 1, 5, StatusDelivered)
		assert.ErrorIs(t, err, ErrOrderConflict)
	})

	t.Run("Unknown status", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.UpdateStatusForSupplier(ctx, 1, 5, Status("shipped"))
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestService_GetForUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.repo.On("GetByID", ctx, uint(5)).Return(pendingOrder(), nil)

	_, err := f.svc.GetForUser(ctx, 9, 5)
	require.NoError(t, err)

	_, err = f.svc.GetForUser(ctx, 10, 5)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestService_ListSupplierOrders_NoListings(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.materials.On("IDsBySupplier", ctx, uint(3)).Return([]uint{}, nil)

	out, err := f.svc.ListSupplierOrders(ctx, 3, Filters{})
	require.NoError(t, err)
	assert.Empty(t, out)
	f.repo.AssertNotCalled(t, "FindSupplierOrders", mock.Anything, mock.Anything, mock.Anything)
}
