package cart

import (
	"context"

	"rawmart-be/internal/logger"
	"rawmart-be/internal/material"

	"go.uber.org/zap"
)

type MaterialReader interface {
	GetByID(ctx context.Context, id uint) (*material.Material, error)
}

// Service defines the business logic for carts.
type Service interface {
	Get(ctx context.Context, userID uint) (*Cart, error)
	Add(ctx context.Context, userID, materialID uint, quantity int) (*Cart, error)
	Update(ctx context.Context, userID, materialID uint, quantity int) (*Cart, error)
	Remove(ctx context.Context, userID, materialID uint) (*Cart, error)
	Clear(ctx context.Context, userID uint) error
}

type service struct {
	repo      Repository
	materials MaterialReader
}

func NewService(repo Repository, materials MaterialReader) Service {
	return &service{repo: repo, materials: materials}
}

func (s *service) Get(ctx context.Context, userID uint) (*Cart, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewCart(items), nil
}

// Add merges quantity into an existing line.
func (s *service) Add(ctx context.Context, userID, materialID uint, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	current, err := s.repo.GetQuantity(ctx, userID, materialID)
	if err != nil {
		return nil, err
	}
	return s.set(ctx, userID, materialID, current+quantity)
}

func (s *service) Update(ctx context.Context, userID, materialID uint, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	current, err := s.repo.GetQuantity(ctx, userID, materialID)
	if err != nil {
		return nil, err
	}
	if current == 0 {
		return nil, ErrCartItemNotFound
	}
	return s.set(ctx, userID, materialID, quantity)
}

func (s *service) set(ctx context.Context, userID, materialID uint, quantity int) (*Cart, error) {
	m, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if !m.IsActive {
		return nil, material.ErrMaterialNotFound
	}

	if quantity > m.Stock {
		logger.FromCtx(ctx).Info("cart quantity exceeds stock",
			zap.Uint("material_id", materialID),
			zap.Int("requested", quantity),
			zap.Int("stock", m.Stock),
		)
		return nil, &AvailabilityError{Shortages: []Shortage{{
			MaterialID: m.ID,
			Name:       m.Name,
			Requested:  quantity,
			Available:  m.Stock,
		}}}
	}

	if err := s.repo.SetQuantity(ctx, userID, materialID, quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *service) Remove(ctx context.Context, userID, materialID uint) (*Cart, error) {
	if err := s.repo.Remove(ctx, userID, materialID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uint) error {
	return s.repo.Clear(ctx, userID)
}
