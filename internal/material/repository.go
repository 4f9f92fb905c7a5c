package material

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"rawmart-be/internal/db"
	"rawmart-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, supplierID uint, params CreateParams) (*Material, error)
	Update(ctx context.Context, id uint, params UpdateParams) (*Material, error)
	Deactivate(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Material, error)
	List(ctx context.Context, filter ListFilter) ([]Material, int64, error)
	ListBySupplier(ctx context.Context, supplierID uint) ([]Material, error)
	IDsBySupplier(ctx context.Context, supplierID uint) ([]uint, error)
	UpdateRating(ctx context.Context, id uint, ratings float64, numReviews int) error
	DecrementStock(ctx context.Context, id uint, quantity int) (bool, error)
}

type repository struct {
	db db.Provider
}

func NewRepository(db db.Provider) Repository {
	return &repository{db: db}
}

const materialSelect = `
	SELECT
		m.id, m.supplier_id, s.business_name, m.name, m.description, m.category,
		m.price, m.unit, m.stock, m.min_order_quantity, m.image_url,
		m.ratings, m.num_reviews, m.is_active, m.created_at, m.updated_at
	FROM raw_materials m
	JOIN suppliers s ON s.id = m.supplier_id`

func scanMaterial(row interface{ Scan(...any) error }) (*Material, error) {
	var m Material
	err := row.Scan(
		&m.ID, &m.SupplierID, &m.SupplierName, &m.Name, &m.Description, &m.Category,
		&m.Price, &m.Unit, &m.Stock, &m.MinOrderQuantity, &m.ImageURL,
		&m.Ratings, &m.NumReviews, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMaterials(rows *sql.Rows) ([]Material, error) {
	defer rows.Close()

	out := []Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, supplierID uint, params CreateParams) (*Material, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "material.Repository.Create"))

	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	var id uint
	err = conn.QueryRowContext(ctx, `
		INSERT INTO raw_materials
			(supplier_id, name, description, category, price, unit, stock, min_order_quantity, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		supplierID, params.Name, params.Description, params.Category, params.Price,
		params.Unit, params.Stock, params.MinOrderQuantity, params.ImageURL,
	).Scan(&id)
	if err != nil {
		log.Error("db: failed to insert raw material", zap.Uint("supplier_id", supplierID), zap.Error(err))
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *repository) Update(ctx context.Context, id uint, params UpdateParams) (*Material, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "material.Repository.Update"))

	setParts := []string{}
	args := []any{}
	argIndex := 1

	add := func(column string, v any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, v)
		argIndex++
	}
	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.Description != nil {
		add("description", *params.Description)
	}
	if params.Category != nil {
		add("category", *params.Category)
	}
	if params.Price != nil {
		add("price", *params.Price)
	}
	if params.Unit != nil {
		add("unit", *params.Unit)
	}
	if params.Stock != nil {
		add("stock", *params.Stock)
	}
	if params.MinOrderQuantity != nil {
		add("min_order_quantity", *params.MinOrderQuantity)
	}
	if params.ImageURL != nil {
		add("image_url", *params.ImageURL)
	}
	if params.IsActive != nil {
		add("is_active", *params.IsActive)
	}

	if len(setParts) > 0 {
		conn, err := r.db.Get(ctx)
		if err != nil {
			return nil, err
		}

		query := fmt.Sprintf("UPDATE raw_materials SET %s, updated_at = NOW() WHERE id = $%d",
			strings.Join(setParts, ", "), argIndex)
		args = append(args, id)

		res, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			log.Error("db: failed to update raw material", zap.Uint("material_id", id), zap.Error(err))
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, ErrMaterialNotFound
		}
	}

	return r.GetByID(ctx, id)
}

// Deactivate hides a listing; order history keeps referencing it.
func (r *repository) Deactivate(ctx context.Context, id uint) error {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return err
	}

	res, err := conn.ExecContext(ctx,
		`UPDATE raw_materials SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMaterialNotFound
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Material, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	m, err := scanMaterial(conn.QueryRowContext(ctx, materialSelect+` WHERE m.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMaterialNotFound
	}
	return m, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Material, int64, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "material.Repository.List"))
	filter.normalize()

	whereClause := " WHERE m.is_active = TRUE"
	args := []any{}
	argIndex := 1

	if filter.Category != nil {
		whereClause += fmt.Sprintf(" AND m.category = $%d", argIndex)
		args = append(args, *filter.Category)
		argIndex++
	}
	if filter.Search != nil && *filter.Search != "" {
		whereClause += fmt.Sprintf(" AND (m.name ILIKE $%d OR m.description ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}
	if filter.SupplierID != nil {
		whereClause += fmt.Sprintf(" AND m.supplier_id = $%d", argIndex)
		args = append(args, *filter.SupplierID)
		argIndex++
	}
	if filter.MinPrice != nil {
		whereClause += fmt.Sprintf(" AND m.price >= $%d", argIndex)
		args = append(args, *filter.MinPrice)
		argIndex++
	}
	if filter.MaxPrice != nil {
		whereClause += fmt.Sprintf(" AND m.price <= $%d", argIndex)
		args = append(args, *filter.MaxPrice)
		argIndex++
	}

	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM raw_materials m"+whereClause, args...).Scan(&total); err != nil {
		log.Error("failed to count raw materials", zap.Error(err))
		return nil, 0, err
	}

	orderBy := "m.created_at DESC"
	switch filter.Sort {
	case SortPriceAsc:
		orderBy = "m.price ASC"
	case SortPriceDesc:
		orderBy = "m.price DESC"
	case SortRating:
		orderBy = "m.ratings DESC, m.num_reviews DESC"
	}

	query := materialSelect + whereClause +
		" ORDER BY " + orderBy + fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query raw materials", zap.Error(err))
		return nil, 0, err
	}

	items, err := scanMaterials(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListBySupplier includes inactive listings so suppliers can re-enable them.
func (r *repository) ListBySupplier(ctx context.Context, supplierID uint) ([]Material, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx,
		materialSelect+` WHERE m.supplier_id = $1 ORDER BY m.created_at DESC`, supplierID)
	if err != nil {
		return nil, err
	}
	return scanMaterials(rows)
}

// IDsBySupplier returns every material the supplier ever listed, inactive
// ones included, so historical orders stay attributed.
func (r *repository) IDsBySupplier(ctx context.Context, supplierID uint) ([]uint, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx,
		`SELECT id FROM raw_materials WHERE supplier_id = $1 ORDER BY id`, supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uint{}
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repository) UpdateRating(ctx context.Context, id uint, ratings float64, numReviews int) error {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return err
	}

	res, err := conn.ExecContext(ctx,
		`UPDATE raw_materials SET ratings = $1, num_reviews = $2, updated_at = NOW() WHERE id = $3`,
		ratings, numReviews, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMaterialNotFound
	}
	return nil
}

// DecrementStock reports false when the row holds less than quantity.
func (r *repository) DecrementStock(ctx context.Context, id uint, quantity int) (bool, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return false, err
	}

	res, err := conn.ExecContext(ctx,
		`UPDATE raw_materials SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1`,
		quantity, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
