package material

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryVegetables Category = "vegetables"
	CategoryFruits     Category = "fruits"
	CategoryGrains     Category = "grains"
	CategorySpices     Category = "spices"
	CategoryDairy      Category = "dairy"
	CategoryOils       Category = "oils"
	CategoryMeat       Category = "meat"
	CategoryPackaging  Category = "packaging"
	CategoryOther      Category = "other"
)

// Material is a raw-material listing owned by one supplier. Ratings and
// NumReviews are recomputed from active reviews after every review write.
type Material struct {
	ID               uint            `json:"id"`
	SupplierID       uint            `json:"supplierId"`
	SupplierName     string          `json:"supplierName,omitempty"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Category         Category        `json:"category"`
	Price            decimal.Decimal `json:"price"`
	Unit             string          `json:"unit"`
	Stock            int             `json:"stock"`
	MinOrderQuantity int             `json:"minOrderQuantity"`
	ImageURL         *string         `json:"imageUrl,omitempty"`
	Ratings          float64         `json:"ratings"`
	NumReviews       int             `json:"numReviews"`
	IsActive         bool            `json:"isActive"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type CreateParams struct {
	Name             string
	Description      string
	Category         Category
	Price            decimal.Decimal
	Unit             string
	Stock            int
	MinOrderQuantity int
	ImageURL         *string
}

// UpdateParams leaves nil fields unchanged.
type UpdateParams struct {
	Name             *string
	Description      *string
	Category         *Category
	Price            *decimal.Decimal
	Unit             *string
	Stock            *int
	MinOrderQuantity *int
	ImageURL         *string
	IsActive         *bool
}

type SortField string

const (
	SortNewest    SortField = "newest"
	SortPriceAsc  SortField = "price_asc"
	SortPriceDesc SortField = "price_desc"
	SortRating    SortField = "rating"
)

type ListFilter struct {
	Category   *Category
	Search     *string
	SupplierID *uint
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       SortField
	Page       int
	Limit      int
}

type ListResult struct {
	Items []Material `json:"items"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func (f *ListFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
}
