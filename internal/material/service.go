package material

import (
	"context"

	"rawmart-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, supplierID uint, params CreateParams) (*Material, error)
	Update(ctx context.Context, supplierID, id uint, params UpdateParams) (*Material, error)
	Delete(ctx context.Context, supplierID, id uint) error
	Get(ctx context.Context, id uint) (*Material, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	ListForSupplier(ctx context.Context, supplierID uint) ([]Material, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, supplierID uint, params CreateParams) (*Material, error) {
	if params.MinOrderQuantity < 1 {
		params.MinOrderQuantity = 1
	}

	m, err := s.repo.Create(ctx, supplierID, params)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("raw material listed",
		zap.Uint("material_id", m.ID),
		zap.Uint("supplier_id", supplierID),
	)
	return m, nil
}

func (s *service) owned(ctx context.Context, supplierID, id uint) (*Material, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.SupplierID != supplierID {
		logger.FromCtx(ctx).Warn("supplier touched foreign material",
			zap.Uint("material_id", id),
			zap.Uint("owner_id", m.SupplierID),
		)
		return nil, ErrNotOwner
	}
	return m, nil
}

func (s *service) Update(ctx context.Context, supplierID, id uint, params UpdateParams) (*Material, error) {
	if _, err := s.owned(ctx, supplierID, id); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, params)
}

func (s *service) Delete(ctx context.Context, supplierID, id uint) error {
	if _, err := s.owned(ctx, supplierID, id); err != nil {
		return err
	}
	return s.repo.Deactivate(ctx, id)
}

// Get hides inactive listings from the public catalogue.
func (s *service) Get(ctx context.Context, id uint) (*Material, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsActive {
		return nil, ErrMaterialNotFound
	}
	return m, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	filter.normalize()

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *service) ListForSupplier(ctx context.Context, supplierID uint) ([]Material, error) {
	return s.repo.ListBySupplier(ctx, supplierID)
}
