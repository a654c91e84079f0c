package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ogp-platform/proforma-backend/internal/pricing"
	"github.com/ogp-platform/proforma-backend/pkg/db"
	"github.com/ogp-platform/proforma-backend/pkg/db/models"
	pkgerrors "github.com/ogp-platform/proforma-backend/pkg/errors"
	"github.com/ogp-platform/proforma-backend/pkg/logger"
	"github.com/ogp-platform/proforma-backend/pkg/validate"
)

// Service exposes catalog administration operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, filter ProductListFilter) ([]models.Product, string, error)
	CreateBrand(ctx context.Context, input CreateBrandInput) (*models.Brand, error)
	ListBrands(ctx context.Context, includeInactive bool) ([]models.Brand, error)
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error)
	ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	logg     *logger.Logger
}

// NewService constructs the catalog service.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, logg: logg}, nil
}

// CreateProduct validates the payload, including the tier set, and inserts
// the product. SKU and slug stay unique across every row, archived included.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	tiers := toTierModels(input.Tiers)
	if err := pricing.ValidateTiers(tiers); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:             uuid.New(),
		SKU:            input.SKU,
		Name:           input.Name,
		Slug:           input.Slug,
		Description:    input.Description,
		BrandID:        input.BrandID,
		CategoryID:     input.CategoryID,
		BasePriceCents: input.BasePriceCents,
		IsActive:       input.IsActive,
		IsFeatured:     input.IsFeatured,
		Tiers:          tiers,
	}
	for i := range product.Tiers {
		product.Tiers[i].ID = uuid.New()
		product.Tiers[i].ProductID = product.ID
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku or slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return created, nil
}

// UpdateProduct applies partial changes. Replacing tiers revalidates the full
// set; a product's issued requests keep their snapshot prices regardless.
func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	var newTiers []models.PriceTier
	if input.Tiers != nil {
		newTiers = toTierModels(*input.Tiers)
		if err := pricing.ValidateTiers(newTiers); err != nil {
			return nil, err
		}
	}

	applyProductPatch(product, input)

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		product.Tiers = nil
		if _, err := txRepo.UpdateProduct(ctx, product); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "sku or slug already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		if input.Tiers != nil {
			if err := txRepo.ReplaceTiers(ctx, product.ID, newTiers); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace tiers")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

// GetProduct loads one product with tiers.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return product, nil
}

// ListProducts returns the filtered catalog page.
func (s *service) ListProducts(ctx context.Context, filter ProductListFilter) ([]models.Product, string, error) {
	rows, next, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	return rows, next, nil
}

// CreateBrand validates and inserts the brand.
func (s *service) CreateBrand(ctx context.Context, input CreateBrandInput) (*models.Brand, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	brand := &models.Brand{
		ID:          uuid.New(),
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		LogoURL:     input.LogoURL,
		IsActive:    true,
	}
	created, err := s.repo.CreateBrand(ctx, brand)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "brand slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert brand")
	}
	return created, nil
}

// ListBrands returns brands ordered by name.
func (s *service) ListBrands(ctx context.Context, includeInactive bool) ([]models.Brand, error) {
	rows, err := s.repo.ListBrands(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list brands")
	}
	return rows, nil
}

// CreateCategory validates and inserts the category, checking the parent.
func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if input.ParentID != nil {
		if _, err := s.repo.FindCategory(ctx, *input.ParentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "parent category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load parent category")
		}
	}
	category := &models.Category{
		ID:       uuid.New(),
		Name:     input.Name,
		Slug:     input.Slug,
		ParentID: input.ParentID,
		Position: input.Position,
		IsActive: true,
	}
	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert category")
	}
	return created, nil
}

// ListCategories returns categories in display order.
func (s *service) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	rows, err := s.repo.ListCategories(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories")
	}
	return rows, nil
}

func toTierModels(inputs []TierInput) []models.PriceTier {
	tiers := make([]models.PriceTier, 0, len(inputs))
	for _, in := range inputs {
		tiers = append(tiers, models.PriceTier{
			MinQty:         in.MinQty,
			MaxQty:         in.MaxQty,
			UnitPriceCents: in.UnitPriceCents,
		})
	}
	return tiers
}

func applyProductPatch(product *models.Product, input UpdateProductInput) {
	if input.SKU != nil {
		product.SKU = *input.SKU
	}
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Slug != nil {
		product.Slug = *input.Slug
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.BrandID != nil {
		product.BrandID = input.BrandID
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.BasePriceCents != nil {
		product.BasePriceCents = *input.BasePriceCents
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
}
