package surplus

import (
	"context"
	"encoding/json"
	"strconv"

	"rawmart-be/internal/logger"
	"rawmart-be/internal/payment"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, filter ListFilter) ([]Surplus, error)
	Create(ctx context.Context, vendorID uint, params CreateParams) (*Surplus, error)
	Update(ctx context.Context, vendorID, id uint, params UpdateParams) (*Surplus, error)
	Delete(ctx context.Context, vendorID, id uint) error
	Accept(ctx context.Context, supplierID, id uint) (*AcceptResult, error)
	PaymentCallback(ctx context.Context, supplierID, id uint, params payment.CallbackParams) (*Surplus, error)
}

type service struct {
	repo     Repository
	gateway  payment.Gateway
	journal  payment.Tracker
	currency string
}

func NewService(repo Repository, gateway payment.Gateway, journal payment.Tracker, currency string) Service {
	if currency == "" {
		currency = "INR"
	}
	return &service{repo: repo, gateway: gateway, journal: journal, currency: currency}
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Surplus, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Create(ctx context.Context, vendorID uint, params CreateParams) (*Surplus, error) {
	return s.repo.Create(ctx, vendorID, params)
}

// editable loads a listing the vendor owns that nobody has accepted yet.
func (s *service) editable(ctx context.Context, vendorID, id uint) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.VendorID != vendorID {
		return ErrNotOwner
	}
	if current.Status != StatusPending {
		return ErrNotAvailable
	}
	return nil
}

func (s *service) Update(ctx context.Context, vendorID, id uint, params UpdateParams) (*Surplus, error) {
	if err := s.editable(ctx, vendorID, id); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, params)
}

func (s *service) Delete(ctx context.Context, vendorID, id uint) error {
	if err := s.editable(ctx, vendorID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) Accept(ctx context.Context, supplierID, id uint) (*AcceptResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "surplus.Service.Accept"),
		zap.Uint("surplus_id", id),
	)

	accepted, err := s.repo.Accept(ctx, id, supplierID)
	if err != nil {
		return nil, err
	}

	ref := strconv.FormatUint(uint64(id), 10)
	gwOrder, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		Amount:   accepted.Total(),
		Currency: s.currency,
		Receipt:  "surplus_" + ref,
		Notes: map[string]string{
			"surplusId":  ref,
			"supplierId": strconv.FormatUint(uint64(supplierID), 10),
		},
	})
	if err != nil {
		log.Error("surplus accepted but gateway order failed", zap.Error(err))
		return nil, err
	}

	if err := s.repo.SetPaymentOrder(ctx, id, gwOrder.ID); err != nil {
		log.Error("gateway order created but not stored",
			zap.String("gateway_order_id", gwOrder.ID),
			zap.Error(err),
		)
		return nil, err
	}
	accepted.PaymentOrderID = &gwOrder.ID

	log.Info("surplus accepted", zap.String("total", accepted.Total().StringFixed(2)))
	return &AcceptResult{Surplus: accepted, Payment: gwOrder}, nil
}

func (s *service) PaymentCallback(ctx context.Context, supplierID, id uint, params payment.CallbackParams) (out *Surplus, err error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "surplus.Service.PaymentCallback"),
		zap.Uint("surplus_id", id),
	)

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.AcceptedBy == nil || *current.AcceptedBy != supplierID {
		return nil, ErrSurplusNotFound
	}
	if current.PaymentOrderID == nil || *current.PaymentOrderID != params.GatewayOrderID {
		return nil, ErrPaymentMismatch
	}

	sigErr := s.gateway.VerifySignature(params.GatewayOrderID, params.PaymentID, params.Signature)
	payload, _ := json.Marshal(params)
	done := s.journal.Track(ctx, payment.Callback{
		Source:         payment.SourceSurplus,
		ReferenceID:    id,
		GatewayOrderID: params.GatewayOrderID,
		PaymentID:      params.PaymentID,
		Outcome:        params.Outcome(),
		SignatureValid: sigErr == nil,
		Payload:        payload,
	})
	defer func() { done(err) }()

	if sigErr != nil {
		log.Warn("payment signature rejected")
		return nil, sigErr
	}

	if current.PaymentStatus == PaymentCompleted {
		if !params.Failed && current.PaymentID != nil && *current.PaymentID == params.PaymentID {
			return current, nil
		}
		return nil, ErrPaymentCompleted
	}

	if params.Failed {
		out, err = s.repo.SetPaymentResult(ctx, id, StatusAccepted, PaymentFailed, nil)
		if err == nil {
			log.Info("surplus payment failed", zap.String("reason", params.Reason))
		}
		return out, err
	}

	out, err = s.repo.SetPaymentResult(ctx, id, StatusCompleted, PaymentCompleted, &params.PaymentID)
	if err != nil {
		log.Error("payment captured but surplus not updated",
			zap.String("payment_id", params.PaymentID),
			zap.Error(err),
		)
		return nil, err
	}

	log.Info("surplus payment completed", zap.String("payment_id", params.PaymentID))
	return out, nil
}
