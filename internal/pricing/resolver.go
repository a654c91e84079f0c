package pricing

import (
	"github.com/ogp-platform/proforma-backend/pkg/db/models"
	pkgerrors "github.com/ogp-platform/proforma-backend/pkg/errors"
)

// ResolveUnitPrice returns the effective unit price in cents for the given
// order quantity against a product's bulk-pricing tiers. When no tier band
// covers the quantity the base price applies. When more than one band covers
// it (malformed data, rejected at save time but tolerated on read) the band
// with the highest min_qty wins.
//
// Resolution never fails on tier data; the only error is a quantity below 1.
func ResolveUnitPrice(basePriceCents int, tiers []models.PriceTier, qty int) (int, error) {
	if qty < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var selected *models.PriceTier
	for i := range tiers {
		tier := &tiers[i]
		if !tier.Matches(qty) {
			continue
		}
		if selected == nil || tier.MinQty > selected.MinQty {
			selected = tier
		}
	}
	if selected == nil {
		return basePriceCents, nil
	}
	return selected.UnitPriceCents, nil
}
