package review

import (
	"context"

	"rawmart-be/internal/logger"
	"rawmart-be/internal/material"

	"go.uber.org/zap"
)

// MaterialStore is the part of the material repository reviews depend on.
type MaterialStore interface {
	GetByID(ctx context.Context, id uint) (*material.Material, error)
	UpdateRating(ctx context.Context, id uint, ratings float64, numReviews int) error
}

type Service interface {
	Create(ctx context.Context, userID, materialID uint, rating int, comment string) (*Review, error)
	Update(ctx context.Context, userID, id uint, rating int, comment string) (*Review, error)
	Delete(ctx context.Context, userID, id uint) error
	ListByMaterial(ctx context.Context, materialID uint) ([]Review, error)
}

type service struct {
	repo      Repository
	materials MaterialStore
}

func NewService(repo Repository, materials MaterialStore) Service {
	return &service{repo: repo, materials: materials}
}

func validRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

func (s *service) Create(ctx context.Context, userID, materialID uint, rating int, comment string) (*Review, error) {
	if !validRating(rating) {
		return nil, ErrInvalidRating
	}

	m, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if !m.IsActive {
		return nil, material.ErrMaterialNotFound
	}

	rv, err := s.repo.Create(ctx, userID, materialID, rating, comment)
	if err != nil {
		return nil, err
	}

	if err := s.recompute(ctx, materialID); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *service) authored(ctx context.Context, userID, id uint) (*Review, error) {
	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rv.UserID != userID {
		return nil, ErrNotAuthor
	}
	return rv, nil
}

func (s *service) Update(ctx context.Context, userID, id uint, rating int, comment string) (*Review, error) {
	if !validRating(rating) {
		return nil, ErrInvalidRating
	}
	if _, err := s.authored(ctx, userID, id); err != nil {
		return nil, err
	}

	rv, err := s.repo.Update(ctx, id, rating, comment)
	if err != nil {
		return nil, err
	}

	if err := s.recompute(ctx, rv.MaterialID); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *service) Delete(ctx context.Context, userID, id uint) error {
	rv, err := s.authored(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	return s.recompute(ctx, rv.MaterialID)
}

func (s *service) ListByMaterial(ctx context.Context, materialID uint) ([]Review, error) {
	return s.repo.ListByMaterial(ctx, materialID)
}

// recompute re-averages every active review instead of patching the
// stored aggregate, so edits and deletes cannot drift.
func (s *service) recompute(ctx context.Context, materialID uint) error {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "review.Service.recompute"),
		zap.Uint("material_id", materialID),
	)

	ratings, err := s.repo.ListActiveRatings(ctx, materialID)
	if err != nil {
		log.Error("failed to load ratings", zap.Error(err))
		return err
	}

	sum := Summarize(ratings)
	if err := s.materials.UpdateRating(ctx, materialID, sum.Ratings, sum.NumReviews); err != nil {
		log.Error("failed to store rating summary", zap.Error(err))
		return err
	}

	log.Debug("rating recomputed",
		zap.Float64("ratings", sum.Ratings),
		zap.Int("num_reviews", sum.NumReviews),
	)
	return nil
}
