package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ogp-platform/proforma-backend/pkg/db/models"
	"github.com/ogp-platform/proforma-backend/pkg/pagination"
)

// Repository owns catalog persistence for products, brands, and categories.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateProduct inserts the product with its pricing tiers.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct persists scalar changes already applied to the row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// ReplaceTiers swaps the product's pricing tiers wholesale.
func (r *Repository) ReplaceTiers(ctx context.Context, productID uuid.UUID, tiers []models.PriceTier) error {
	query := r.db.WithContext(ctx)
	if err := query.Where("product_id = ?", productID).Delete(&models.PriceTier{}).Error; err != nil {
		return err
	}
	for i := range tiers {
		if tiers[i].ID == uuid.Nil {
			tiers[i].ID = uuid.New()
		}
		tiers[i].ProductID = productID
	}
	if len(tiers) == 0 {
		return nil
	}
	return query.Create(&tiers).Error
}

// FindProduct loads the product with its tiers ordered by band.
func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Tiers", func(tx *gorm.DB) *gorm.DB { return tx.Order("min_qty") }).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindForPricing is the read path the request service uses at submit time.
func (r *Repository) FindForPricing(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return r.FindProduct(ctx, id)
}

// ProductListFilter narrows the product listing.
type ProductListFilter struct {
	BrandID         *uuid.UUID
	CategoryID      *uuid.UUID
	IncludeInactive bool
	Page            pagination.Params
}

// ListProducts returns products newest first, cursor-paginated. Archived and
// deactivated rows are hidden unless IncludeInactive is set.
func (r *Repository) ListProducts(ctx context.Context, filter ProductListFilter) ([]models.Product, string, error) {
	limit := pagination.NormalizeLimit(filter.Page.Limit)
	query := r.db.WithContext(ctx).
		Preload("Tiers").
		Order("created_at DESC, id DESC").
		Limit(limit + 1)
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.BrandID != nil {
		query = query.Where("brand_id = ?", *filter.BrandID)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	cursor, err := pagination.ParseCursor(filter.Page.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}

// CreateBrand inserts the brand.
func (r *Repository) CreateBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	if err := r.db.WithContext(ctx).Create(brand).Error; err != nil {
		return nil, err
	}
	return brand, nil
}

// FindBrand loads one brand.
func (r *Repository) FindBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).First(&brand, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

// ListBrands returns brands ordered by name.
func (r *Repository) ListBrands(ctx context.Context, includeInactive bool) ([]models.Brand, error) {
	query := r.db.WithContext(ctx).Order("name")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.Brand
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateCategory inserts the category.
func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// FindCategory loads one category.
func (r *Repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListCategories returns categories in display order.
func (r *Repository) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	query := r.db.WithContext(ctx).Order("position, name")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.Category
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
