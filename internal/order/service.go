package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"rawmart-be/internal/cart"
	"rawmart-be/internal/logger"
	"rawmart-be/internal/payment"

	"go.uber.org/zap"
)

type CartStore interface {
	List(ctx context.Context, userID uint) ([]cart.CartItem, error)
	Clear(ctx context.Context, userID uint) error
}

type MaterialStore interface {
	IDsBySupplier(ctx context.Context, supplierID uint) ([]uint, error)
	DecrementStock(ctx context.Context, id uint, quantity int) (bool, error)
}

type CheckoutParams struct {
	ShippingAddress ShippingAddress
	PaymentMethod   string
}

type CheckoutResult struct {
	Order   *Order                `json:"order"`
	Payment *payment.GatewayOrder `json:"payment"`
}

type Service interface {
	Checkout(ctx context.Context, userID uint, params CheckoutParams) (*CheckoutResult, error)
	PaymentCallback(ctx context.Context, userID uint, params payment.CallbackParams) (*Order, error)
	ListForUser(ctx context.Context, userID uint) ([]Order, error)
	GetForUser(ctx context.Context, userID, orderID uint) (*Order, error)

	ListSupplierOrders(ctx context.Context, supplierID uint, f Filters) ([]SupplierOrder, error)
	UpdateStatusForSupplier(ctx context.Context, supplierID, orderID uint, status Status) (*SupplierOrder, error)
	AdminSupplierOrders(ctx context.Context, supplierID uint, f Filters) ([]Order, error)
}

type service struct {
	repo      Repository
	carts     CartStore
	materials MaterialStore
	gateway   payment.Gateway
	journal   payment.Tracker
	currency  string
	now       func() time.Time
}

func NewService(
	repo Repository,
	carts CartStore,
	materials MaterialStore,
	gateway payment.Gateway,
	journal payment.Tracker,
	currency string,
) Service {
	if currency == "" {
		currency = "INR"
	}
	return &service{
		repo:      repo,
		carts:     carts,
		materials: materials,
		gateway:   gateway,
		journal:   journal,
		currency:  currency,
		now:       time.Now,
	}
}

func (s *service) Checkout(ctx context.Context, userID uint, params CheckoutParams) (*CheckoutResult, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "order.Service.Checkout"))

	lines, err := s.carts.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, cart.ErrCartEmpty
	}

	var shortages []cart.Shortage
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		if !l.Available() {
			shortages = append(shortages, cart.ShortageOf(l))
			continue
		}
		items = append(items, Item{MaterialID: l.MaterialID, Quantity: l.Quantity, Price: l.Price})
	}
	if len(shortages) > 0 {
		log.Info("checkout blocked by stock", zap.Int("shortages", len(shortages)))
		return nil, &cart.AvailabilityError{Shortages: shortages}
	}

	method := params.PaymentMethod
	if method == "" {
		method = DefaultPaymentMethod
	}

	o := &Order{
		UserID:          userID,
		Items:           items,
		TotalAmount:     ItemsTotal(items),
		ShippingAddress: params.ShippingAddress,
		Status:          StatusPaymentFailed,
		PaymentStatus:   PaymentPending,
		PaymentMethod:   method,
		Currency:        s.currency,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	gwOrder, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		Amount:   o.TotalAmount,
		Currency: o.Currency,
		Receipt:  "order_" + strconv.FormatUint(uint64(o.ID), 10),
		Notes: map[string]string{
			"orderId": strconv.FormatUint(uint64(o.ID), 10),
			"userId":  strconv.FormatUint(uint64(userID), 10),
		},
	})
	if err != nil {
		log.Error("gateway order creation failed", zap.Uint("order_id", o.ID), zap.Error(err))
		return nil, fmt.Errorf("create payment order: %w", err)
	}

	if err := s.repo.SetGatewayOrder(ctx, o.ID, gwOrder.ID); err != nil {
		log.Error("gateway order created but not stored",
			zap.Uint("order_id", o.ID),
			zap.String("gateway_order_id", gwOrder.ID),
			zap.Error(err),
		)
		return nil, err
	}
	o.PaymentInfo.OrderID = &gwOrder.ID

	log.Info("order created",
		zap.Uint("order_id", o.ID),
		zap.String("total", o.TotalAmount.StringFixed(2)),
		zap.Int("items", len(o.Items)),
	)
	return &CheckoutResult{Order: o, Payment: gwOrder}, nil
}

func (s *service) PaymentCallback(ctx context.Context, userID uint, params payment.CallbackParams) (o *Order, err error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "order.Service.PaymentCallback"),
		zap.String("gateway_order_id", params.GatewayOrderID),
	)

	o, err = s.repo.GetByGatewayOrder(ctx, params.GatewayOrderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		log.Warn("payment callback for another user's order", zap.Uint("order_id", o.ID))
		return nil, ErrOrderNotFound
	}

	sigErr := s.gateway.VerifySignature(params.GatewayOrderID, params.PaymentID, params.Signature)
	payload, _ := json.Marshal(params)
	done := s.journal.Track(ctx, payment.Callback{
		Source:         payment.SourceOrder,
		ReferenceID:    o.ID,
		GatewayOrderID: params.GatewayOrderID,
		PaymentID:      params.PaymentID,
		Outcome:        params.Outcome(),
		SignatureValid: sigErr == nil,
		Payload:        payload,
	})
	defer func() { done(err) }()

	if sigErr != nil {
		log.Warn("payment signature rejected", zap.Uint("order_id", o.ID))
		return nil, sigErr
	}

	if params.Failed {
		return s.failPayment(ctx, o, params)
	}
	return s.completePayment(ctx, o, params)
}

func (s *service) failPayment(ctx context.Context, o *Order, params payment.CallbackParams) (*Order, error) {
	log := logger.FromCtx(ctx).With(zap.Uint("order_id", o.ID))

	if o.PaymentStatus == PaymentCompleted {
		log.Warn("failure callback after completed payment ignored")
		return nil, ErrPaymentCompleted
	}
	if o.PaymentStatus == PaymentFailed {
		return o, nil
	}

	expectStatus, expectPayment := o.Status, o.PaymentStatus
	o.PaymentStatus = PaymentFailed
	o.ApplyStatus(StatusPaymentFailed, s.now())
	if err := s.repo.Save(ctx, o, expectStatus, expectPayment); err != nil {
		return nil, err
	}

	log.Info("payment failed", zap.String("reason", params.Reason))
	return o, nil
}

func (s *service) completePayment(ctx context.Context, o *Order, params payment.CallbackParams) (*Order, error) {
	log := logger.FromCtx(ctx).With(zap.Uint("order_id", o.ID))

	if o.PaymentStatus == PaymentCompleted {
		if o.PaymentInfo.PaymentID != nil && *o.PaymentInfo.PaymentID == params.PaymentID {
			log.Info("payment already applied")
			return o, nil
		}
		return nil, ErrPaymentCompleted
	}
	if err := CanTransition(o.Status, StatusProcessing); err != nil {
		return nil, err
	}

	expectStatus, expectPayment := o.Status, o.PaymentStatus
	o.PaymentStatus = PaymentCompleted
	o.PaymentInfo.PaymentID = &params.PaymentID
	o.PaymentInfo.Signature = &params.Signature
	o.ApplyStatus(StatusProcessing, s.now())

	if err := s.repo.Save(ctx, o, expectStatus, expectPayment); err != nil {
		if errors.Is(err, ErrOrderConflict) {
			// A concurrent replay may have applied the same payment.
			if current, getErr := s.repo.GetByID(ctx, o.ID); getErr == nil &&
				current.PaymentStatus == PaymentCompleted &&
				current.PaymentInfo.PaymentID != nil &&
				*current.PaymentInfo.PaymentID == params.PaymentID {
				return current, nil
			}
		}
		log.Error("payment captured but order not updated",
			zap.String("payment_id", params.PaymentID),
			zap.Error(err),
		)
		return nil, err
	}

	for _, it := range o.Items {
		ok, err := s.materials.DecrementStock(ctx, it.MaterialID, it.Quantity)
		if err != nil {
			log.Error("stock decrement failed", zap.Uint("material_id", it.MaterialID), zap.Error(err))
			continue
		}
		if !ok {
			log.Warn("stock oversold",
				zap.Uint("material_id", it.MaterialID),
				zap.Int("quantity", it.Quantity),
			)
		}
	}

	if err := s.carts.Clear(ctx, o.UserID); err != nil {
		log.Error("failed to clear cart after payment", zap.Error(err))
	}

	log.Info("payment completed", zap.String("payment_id", params.PaymentID))
	return o, nil
}

func (s *service) ListForUser(ctx context.Context, userID uint) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) GetForUser(ctx context.Context, userID, orderID uint) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *service) ListSupplierOrders(ctx context.Context, supplierID uint, f Filters) ([]SupplierOrder, error) {
	ids, err := s.materials.IDsBySupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []SupplierOrder{}, nil
	}
	return s.repo.FindSupplierOrders(ctx, ids, f)
}

func (s *service) AdminSupplierOrders(ctx context.Context, supplierID uint, f Filters) ([]Order, error) {
	ids, err := s.materials.IDsBySupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Order{}, nil
	}
	return s.repo.FindBySupplierMaterials(ctx, ids, f)
}

// UpdateStatusForSupplier lets a supplier move a paid order that contains
// at least one of their listings.
func (s *service) UpdateStatusForSupplier(ctx context.Context, supplierID, orderID uint, status Status) (*SupplierOrder, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "order.Service.UpdateStatusForSupplier"),
		zap.Uint("order_id", orderID),
		zap.String("status", string(status)),
	)

	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	ids, err := s.materials.IDsBySupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.ContainsMaterials(ctx, orderID, ids)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOrderNotFound
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	set := NewMaterialSet(ids)

	if o.Status == status {
		projected := o.ProjectTo(set)
		return &projected, nil
	}
	if o.PaymentStatus != PaymentCompleted {
		return nil, &TransitionError{From: o.Status, To: status}
	}
	if err := CanTransition(o.Status, status); err != nil {
		log.Info("rejected status change", zap.String("from", string(o.Status)))
		return nil, err
	}

	expectStatus, expectPayment := o.Status, o.PaymentStatus
	o.ApplyStatus(status, s.now())
	if err := s.repo.Save(ctx, o, expectStatus, expectPayment); err != nil {
		return nil, err
	}

	log.Info("order status updated", zap.String("from", string(expectStatus)))
	projected := o.ProjectTo(set)
	return &projected, nil
}
