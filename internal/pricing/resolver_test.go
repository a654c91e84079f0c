package pricing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogp-platform/proforma-backend/pkg/db/models"
	pkgerrors "github.com/ogp-platform/proforma-backend/pkg/errors"
)

func wholesaleTiers() []models.PriceTier {
	return []models.PriceTier{
		{MinQty: 1, MaxQty: 9, UnitPriceCents: 2500},
		{MinQty: 10, MaxQty: 49, UnitPriceCents: 2200},
		{MinQty: 50, MaxQty: 0, UnitPriceCents: 2000},
	}
}

func TestResolveUnitPrice(t *testing.T) {
	tiers := wholesaleTiers()

	cases := []struct {
		name string
		qty  int
		want int
	}{
		{name: "first band", qty: 5, want: 2500},
		{name: "second band lower bound", qty: 10, want: 2200},
		{name: "second band upper bound", qty: 49, want: 2200},
		{name: "unbounded band", qty: 75, want: 2000},
		{name: "single unit", qty: 1, want: 2500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveUnitPrice(2500, tiers, tc.qty)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveUnitPriceNoTiers(t *testing.T) {
	for _, qty := range []int{1, 7, 100, 100000} {
		got, err := ResolveUnitPrice(1234, nil, qty)
		require.NoError(t, err)
		assert.Equal(t, 1234, got)
	}
}

func TestResolveUnitPriceGapFallsBackToBase(t *testing.T) {
	tiers := []models.PriceTier{
		{MinQty: 10, MaxQty: 19, UnitPriceCents: 900},
	}
	got, err := ResolveUnitPrice(1000, tiers, 5)
	require.NoError(t, err)
	assert.Equal(t, 1000, got)

	got, err = ResolveUnitPrice(1000, tiers, 25)
	require.NoError(t, err)
	assert.Equal(t, 1000, got)
}

func TestResolveUnitPriceInvalidQuantity(t *testing.T) {
	for _, qty := range []int{0, -1, -50} {
		_, err := ResolveUnitPrice(1000, wholesaleTiers(), qty)
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	}
}

func TestResolveUnitPriceOverlapPrefersNarrowestBand(t *testing.T) {
	// Malformed overlapping data must not fail at read time; the band with
	// the highest min_qty wins.
	tiers := []models.PriceTier{
		{MinQty: 1, MaxQty: 0, UnitPriceCents: 1000},
		{MinQty: 10, MaxQty: 0, UnitPriceCents: 800},
	}
	got, err := ResolveUnitPrice(1200, tiers, 15)
	require.NoError(t, err)
	assert.Equal(t, 800, got)
}

func TestResolveUnitPriceMonotonicAcrossRandomTierSets(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		tiers := randomDescendingTiers(rng)
		require.NoError(t, ValidateTiers(tiers))

		base := tiers[0].UnitPriceCents + rng.Intn(500)
		prev := -1
		for qty := 1; qty <= 200; qty++ {
			price, err := ResolveUnitPrice(base, tiers, qty)
			require.NoError(t, err)
			if qty > 1 && qty > tiers[0].MinQty {
				assert.LessOrEqual(t, price, prev, "price increased from qty %d to %d", qty-1, qty)
			}
			prev = price
		}
	}
}

// randomDescendingTiers builds a contiguous, non-overlapping tier set whose
// prices decrease with quantity, starting at min_qty 1 and ending unbounded.
func randomDescendingTiers(rng *rand.Rand) []models.PriceTier {
	bandCount := 2 + rng.Intn(4)
	price := 2000 + rng.Intn(2000)
	tiers := make([]models.PriceTier, 0, bandCount)

	lower := 1
	for i := 0; i < bandCount; i++ {
		upper := 0
		if i < bandCount-1 {
			upper = lower + 1 + rng.Intn(30)
		}
		tiers = append(tiers, models.PriceTier{
			MinQty:         lower,
			MaxQty:         upper,
			UnitPriceCents: price,
		})
		price -= 1 + rng.Intn(300)
		if price < 0 {
			price = 0
		}
		lower = upper + 1
	}
	return tiers
}

func TestValidateTiers(t *testing.T) {
	cases := []struct {
		name    string
		tiers   []models.PriceTier
		wantErr bool
	}{
		{name: "empty", tiers: nil},
		{name: "valid bands", tiers: wholesaleTiers()},
		{name: "single unbounded", tiers: []models.PriceTier{{MinQty: 1, MaxQty: 0, UnitPriceCents: 100}}},
		{
			name:    "max below min",
			tiers:   []models.PriceTier{{MinQty: 10, MaxQty: 5, UnitPriceCents: 100}},
			wantErr: true,
		},
		{
			name:    "zero min",
			tiers:   []models.PriceTier{{MinQty: 0, MaxQty: 5, UnitPriceCents: 100}},
			wantErr: true,
		},
		{
			name:    "negative price",
			tiers:   []models.PriceTier{{MinQty: 1, MaxQty: 5, UnitPriceCents: -1}},
			wantErr: true,
		},
		{
			name: "overlapping bands",
			tiers: []models.PriceTier{
				{MinQty: 1, MaxQty: 10, UnitPriceCents: 100},
				{MinQty: 5, MaxQty: 20, UnitPriceCents: 90},
			},
			wantErr: true,
		},
		{
			name: "unbounded band followed by another",
			tiers: []models.PriceTier{
				{MinQty: 1, MaxQty: 0, UnitPriceCents: 100},
				{MinQty: 50, MaxQty: 0, UnitPriceCents: 90},
			},
			wantErr: true,
		},
		{
			name: "duplicate min",
			tiers: []models.PriceTier{
				{MinQty: 5, MaxQty: 9, UnitPriceCents: 100},
				{MinQty: 5, MaxQty: 20, UnitPriceCents: 90},
			},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTiers(tc.tiers)
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
				return
			}
			require.NoError(t, err)
		})
	}
}
