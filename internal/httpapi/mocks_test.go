package httpapi

import (
	"context"
	"io"

	"rawmart-be/internal/analytics"
	"rawmart-be/internal/cart"
	"rawmart-be/internal/order"
	"rawmart-be/internal/payment"
	"rawmart-be/internal/supplier"
	"rawmart-be/internal/surplus"
	"rawmart-be/internal/user"

	"github.com/stretchr/testify/mock"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, params user.RegisterParams) (string, *user.User, error) {
	args := m.Called(ctx, params)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*user.User), args.Error(2)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*user.User), args.Error(2)
}

func (m *MockUserService) GetByID(ctx context.Context, id uint) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockSupplierService struct {
	mock.Mock
}

func (m *MockSupplierService) Register(ctx context.Context, params supplier.RegisterParams) (string, *supplier.Supplier, error) {
	args := m.Called(ctx, params)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*supplier.Supplier), args.Error(2)
}

func (m *MockSupplierService) Login(ctx context.Context, email, password string) (string, *supplier.Supplier, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*supplier.Supplier), args.Error(2)
}

func (m *MockSupplierService) GetProfile(ctx context.Context, id uint) (*supplier.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*supplier.Supplier), args.Error(1)
}

func (m *MockSupplierService) UpdateProfile(ctx context.Context, id uint, params supplier.UpdateProfileParams) (*supplier.Supplier, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*supplier.Supplier), args.Error(1)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) result(args mock.Arguments) (*cart.Cart, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) Get(ctx context.Context, userID uint) (*cart.Cart, error) {
	return m.result(m.Called(ctx, userID))
}

func (m *MockCartService) Add(ctx context.Context, userID, materialID uint, quantity int) (*cart.Cart, error) {
	return m.result(m.Called(ctx, userID, materialID, quantity))
}

func (m *MockCartService) Update(ctx context.Context, userID, materialID uint, quantity int) (*cart.Cart, error) {
	return m.result(m.Called(ctx, userID, materialID, quantity))
}

func (m *MockCartService) Remove(ctx context.Context, userID, materialID uint) (*cart.Cart, error) {
	return m.result(m.Called(ctx, userID, materialID))
}

func (m *MockCartService) Clear(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, userID uint, params order.CheckoutParams) (*order.CheckoutResult, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.CheckoutResult), args.Error(1)
}

func (m *MockOrderService) PaymentCallback(ctx context.Context, userID uint, params payment.CallbackParams) (*order.Order, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListForUser(ctx context.Context, userID uint) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) GetForUser(ctx context.Context, userID, orderID uint) (*order.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListSupplierOrders(ctx context.Context, supplierID uint, f order.Filters) ([]order.SupplierOrder, error) {
	args := m.Called(ctx, supplierID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.SupplierOrder), args.Error(1)
}

func (m *MockOrderService) UpdateStatusForSupplier(ctx context.Context, supplierID, orderID uint, status order.Status) (*order.SupplierOrder, error) {
	args := m.Called(ctx, supplierID, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.SupplierOrder), args.Error(1)
}

func (m *MockOrderService) AdminSupplierOrders(ctx context.Context, supplierID uint, f order.Filters) ([]order.Order, error) {
	args := m.Called(ctx, supplierID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

type MockSurplusService struct {
	mock.Mock
}

func (m *MockSurplusService) List(ctx context.Context, filter surplus.ListFilter) ([]surplus.Surplus, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]surplus.Surplus), args.Error(1)
}

func (m *MockSurplusService) Create(ctx context.Context, vendorID uint, params surplus.CreateParams) (*surplus.Surplus, error) {
	args := m.Called(ctx, vendorID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*surplus.Surplus), args.Error(1)
}

func (m *MockSurplusService) Update(ctx context.Context, vendorID, id uint, params surplus.UpdateParams) (*surplus.Surplus, error) {
	args := m.Called(ctx, vendorID, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*surplus.Surplus), args.Error(1)
}

func (m *MockSurplusService) Delete(ctx context.Context, vendorID, id uint) error {
	return m.Called(ctx, vendorID, id).Error(0)
}

func (m *MockSurplusService) Accept(ctx context.Context, supplierID, id uint) (*surplus.AcceptResult, error) {
	args := m.Called(ctx, supplierID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*surplus.AcceptResult), args.Error(1)
}

func (m *MockSurplusService) PaymentCallback(ctx context.Context, supplierID, id uint, params payment.CallbackParams) (*surplus.Surplus, error) {
	args := m.Called(ctx, supplierID, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*surplus.Surplus), args.Error(1)
}

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) Dashboard(ctx context.Context, supplierID uint, tr analytics.TimeRange) (*analytics.Dashboard, error) {
	args := m.Called(ctx, supplierID, tr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.Dashboard), args.Error(1)
}

func (m *MockAnalyticsService) Export(ctx context.Context, supplierID uint, tr analytics.TimeRange, w io.Writer) error {
	args := m.Called(ctx, supplierID, tr, w)
	if fn, ok := args.Get(1).(func(io.Writer)); ok {
		fn(w)
	}
	return args.Error(0)
}
