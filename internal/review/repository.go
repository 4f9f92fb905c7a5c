package review

import (
	"context"
	"database/sql"
	"errors"

	"rawmart-be/internal/db"
	"rawmart-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, userID, materialID uint, rating int, comment string) (*Review, error)
	GetByID(ctx context.Context, id uint) (*Review, error)
	Update(ctx context.Context, id uint, rating int, comment string) (*Review, error)
	Deactivate(ctx context.Context, id uint) error
	ListByMaterial(ctx context.Context, materialID uint) ([]Review, error)
	ListActiveRatings(ctx context.Context, materialID uint) ([]int, error)
}

type repository struct {
	db db.Provider
}

func NewRepository(db db.Provider) Repository {
	return &repository{db: db}
}

const reviewColumns = `id, user_id, raw_material_id, rating, comment, is_active, created_at, updated_at`

func scanReview(row interface{ Scan(...any) error }) (*Review, error) {
	var rv Review
	if err := row.Scan(
		&rv.ID, &rv.UserID, &rv.MaterialID, &rv.Rating, &rv.Comment,
		&rv.IsActive, &rv.CreatedAt, &rv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *repository) Create(ctx context.Context, userID, materialID uint, rating int, comment string) (*Review, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "review.Repository.Create"))

	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	rv, err := scanReview(conn.QueryRowContext(ctx, `
		INSERT INTO reviews (user_id, raw_material_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING `+reviewColumns,
		userID, materialID, rating, comment,
	))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrAlreadyReviewed
		}
		log.Error("db: failed to insert review", zap.Uint("material_id", materialID), zap.Error(err))
		return nil, err
	}
	return rv, nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Review, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	rv, err := scanReview(conn.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = $1 AND is_active = TRUE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	return rv, err
}

func (r *repository) Update(ctx context.Context, id uint, rating int, comment string) (*Review, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	rv, err := scanReview(conn.QueryRowContext(ctx, `
		UPDATE reviews SET rating = $1, comment = $2, updated_at = NOW()
		WHERE id = $3 AND is_active = TRUE
		RETURNING `+reviewColumns,
		rating, comment, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	return rv, err
}

// Deactivate soft-deletes; the partial unique index then allows a new review.
func (r *repository) Deactivate(ctx context.Context, id uint) error {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return err
	}

	res, err := conn.ExecContext(ctx,
		`UPDATE reviews SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *repository) ListByMaterial(ctx context.Context, materialID uint) ([]Review, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT rv.id, rv.user_id, u.name, rv.raw_material_id, rv.rating, rv.comment,
		       rv.is_active, rv.created_at, rv.updated_at
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.raw_material_id = $1 AND rv.is_active = TRUE
		ORDER BY rv.created_at DESC`, materialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Review{}
	for rows.Next() {
		var rv Review
		if err := rows.Scan(
			&rv.ID, &rv.UserID, &rv.UserName, &rv.MaterialID, &rv.Rating, &rv.Comment,
			&rv.IsActive, &rv.CreatedAt, &rv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *repository) ListActiveRatings(ctx context.Context, materialID uint) ([]int, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx,
		`SELECT rating FROM reviews WHERE raw_material_id = $1 AND is_active = TRUE`, materialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := []int{}
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}
