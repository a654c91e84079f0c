package pricing

import (
	"fmt"
	"sort"

	"github.com/ogp-platform/proforma-backend/pkg/db/models"
	pkgerrors "github.com/ogp-platform/proforma-backend/pkg/errors"
)

// ValidateTiers rejects malformed tier sets at product-save time so that
// resolution never has to deal with them. A max_qty of zero marks an
// unbounded band.
func ValidateTiers(tiers []models.PriceTier) error {
	for _, tier := range tiers {
		if tier.MinQty < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "tier min_qty must be at least 1")
		}
		if tier.UnitPriceCents < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "tier unit price must be non-negative")
		}
		if !tier.Unbounded() && tier.MaxQty < tier.MinQty {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("tier max_qty %d is below min_qty %d", tier.MaxQty, tier.MinQty))
		}
	}

	sorted := make([]models.PriceTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinQty < sorted[j].MinQty
	})
	for i := 1; i < len(sorted); i++ {
		prev := sorted[i-1]
		curr := sorted[i]
		if curr.MinQty == prev.MinQty {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("duplicate tier min_qty %d", curr.MinQty))
		}
		if prev.Unbounded() || prev.MaxQty >= curr.MinQty {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("tier starting at %d overlaps band starting at %d", curr.MinQty, prev.MinQty))
		}
	}
	return nil
}
