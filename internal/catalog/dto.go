package catalog

import (
	"github.com/google/uuid"
)

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	SKU            string `validate:"required"`
	Name           string `validate:"required"`
	Slug           string `validate:"required"`
	Description    *string
	BrandID        *uuid.UUID
	CategoryID     *uuid.UUID
	BasePriceCents int `validate:"gte=0"`
	IsActive       bool
	IsFeatured     bool
	Tiers          []TierInput `validate:"dive"`
}

// TierInput defines one bulk-pricing band. MaxQty of zero means unbounded.
type TierInput struct {
	MinQty         int `validate:"required,gte=1"`
	MaxQty         int `validate:"gte=0"`
	UnitPriceCents int `validate:"gte=0"`
}

// UpdateProductInput holds optional mutation values for a product. Nil fields
// are left untouched; a non-nil Tiers replaces the whole tier set.
type UpdateProductInput struct {
	SKU            *string
	Name           *string
	Slug           *string
	Description    *string
	BrandID        *uuid.UUID
	CategoryID     *uuid.UUID
	BasePriceCents *int
	IsFeatured     *bool
	Tiers          *[]TierInput
}

// CreateBrandInput holds the validated payload to create a brand.
type CreateBrandInput struct {
	Name        string `validate:"required"`
	Slug        string `validate:"required"`
	Description *string
	LogoURL     *string
}

// CreateCategoryInput holds the validated payload to create a category.
type CreateCategoryInput struct {
	Name     string `validate:"required"`
	Slug     string `validate:"required"`
	ParentID *uuid.UUID
	Position int `validate:"gte=0"`
}
