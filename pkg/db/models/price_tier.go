package models

import (
	"time"

	"github.com/google/uuid"
)

// PriceTier captures one bulk-pricing band for a product. MaxQty of zero
// means the band is unbounded above.
type PriceTier struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	MinQty         int       `gorm:"column:min_qty;not null"`
	MaxQty         int       `gorm:"column:max_qty;not null;default:0"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Unbounded reports whether the tier has no upper quantity limit.
func (t PriceTier) Unbounded() bool {
	return t.MaxQty == 0
}

// Matches reports whether qty falls inside the tier's band.
func (t PriceTier) Matches(qty int) bool {
	if qty < t.MinQty {
		return false
	}
	return t.Unbounded() || qty <= t.MaxQty
}
