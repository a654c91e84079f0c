package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents the canonical catalog listing.
type Product struct {
	ID             uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BrandID        *uuid.UUID  `gorm:"column:brand_id;type:uuid"`
	CategoryID     *uuid.UUID  `gorm:"column:category_id;type:uuid"`
	SKU            string      `gorm:"column:sku;not null;uniqueIndex"`
	Name           string      `gorm:"column:name;not null"`
	Slug           string      `gorm:"column:slug;not null;uniqueIndex"`
	Description    *string     `gorm:"column:description"`
	BasePriceCents int         `gorm:"column:base_price_cents;not null"`
	IsActive       bool        `gorm:"column:is_active;not null;default:true"`
	IsFeatured     bool        `gorm:"column:is_featured;not null;default:false"`
	DeletedAt      *time.Time  `gorm:"column:deleted_at"`
	Tiers          []PriceTier `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
