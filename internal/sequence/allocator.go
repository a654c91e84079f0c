package sequence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	pkgerrors "github.com/ogp-platform/proforma-backend/pkg/errors"
)

const (
	defaultPrefix       = "OGP"
	defaultOrdinalWidth = 3
)

// Allocator mints human-readable, year-scoped request numbers. Ordinals are
// strictly increasing within a year and are never reused; prior years'
// counters are kept for audit.
type Allocator struct {
	db           *gorm.DB
	prefix       string
	ordinalWidth int
}

// Option tweaks the allocator's number format.
type Option func(*Allocator)

// WithPrefix overrides the brand prefix on issued numbers.
func WithPrefix(prefix string) Option {
	return func(a *Allocator) {
		if prefix != "" {
			a.prefix = prefix
		}
	}
}

// WithOrdinalWidth overrides the minimum zero-padded ordinal width.
func WithOrdinalWidth(width int) Option {
	return func(a *Allocator) {
		if width > 0 {
			a.ordinalWidth = width
		}
	}
}

// NewAllocator builds an allocator bound to the provided DB handle.
func NewAllocator(db *gorm.DB, opts ...Option) (*Allocator, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	allocator := &Allocator{
		db:           db,
		prefix:       defaultPrefix,
		ordinalWidth: defaultOrdinalWidth,
	}
	for _, opt := range opts {
		opt(allocator)
	}
	return allocator, nil
}

// WithTx returns an allocator bound to the given transaction so the issued
// number commits or rolls back together with the request row.
func (a *Allocator) WithTx(tx *gorm.DB) *Allocator {
	if tx == nil {
		return a
	}
	return &Allocator{db: tx, prefix: a.prefix, ordinalWidth: a.ordinalWidth}
}

// Next atomically increments the per-year counter and returns the formatted
// request number. The upsert is a single statement at the storage layer; a
// read-then-write would let two concurrent submissions share an ordinal.
// Storage failure surfaces as an allocation error and the caller must not
// fabricate a number.
func (a *Allocator) Next(ctx context.Context, year int) (string, error) {
	ordinal, err := a.NextOrdinal(ctx, year)
	if err != nil {
		return "", err
	}
	return a.Format(year, ordinal), nil
}

// NextOrdinal returns the raw incremented counter value for the year.
func (a *Allocator) NextOrdinal(ctx context.Context, year int) (int64, error) {
	if year < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "year must be positive")
	}

	var issued int64
	err := a.db.WithContext(ctx).Raw(`
		INSERT INTO sequence_counters (year, last_issued, updated_at)
		VALUES (?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT (year)
		DO UPDATE SET last_issued = sequence_counters.last_issued + 1,
		              updated_at = CURRENT_TIMESTAMP
		RETURNING last_issued
	`, year).Scan(&issued).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeAllocation, err, "increment sequence counter")
	}
	if issued < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeAllocation, "counter returned no value")
	}
	return issued, nil
}

// Format renders the externally visible number for a (year, ordinal) pair.
// The output is stable forever once issued; downstream systems key off it.
func (a *Allocator) Format(year int, ordinal int64) string {
	return fmt.Sprintf("%s-%0*d%02d", a.prefix, a.ordinalWidth, ordinal, year%100)
}
