package invoices

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ogp-platform/proforma-backend/pkg/db/models"
	pkgerrors "github.com/ogp-platform/proforma-backend/pkg/errors"
	"github.com/ogp-platform/proforma-backend/pkg/types"
)

// Document is the renderable proforma invoice. Monetary amounts are decimal
// currency units, converted once from the stored cent values.
type Document struct {
	RequestNumber string          `json:"request_number"`
	Customer      types.Customer  `json:"customer"`
	Lines         []DocumentLine  `json:"lines"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	IssuedAt      time.Time       `json:"issued_at"`
}

// DocumentLine is one invoice row.
type DocumentLine struct {
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Renderer turns an assembled document into presentation bytes (PDF, HTML).
// Assembly itself never touches markup.
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// Assemble builds the invoice document from a persisted request. The request
// carries immutable snapshots, so assembly is a pure projection and can run
// any number of times for the same request.
func Assemble(request *models.Request) (Document, error) {
	if request == nil {
		return Document{}, pkgerrors.New(pkgerrors.CodeValidation, "request required")
	}
	if request.RequestNumber == "" {
		return Document{}, pkgerrors.New(pkgerrors.CodeValidation, "request has no number")
	}

	lines := make([]DocumentLine, 0, len(request.Lines))
	for _, line := range request.Lines {
		lines = append(lines, DocumentLine{
			Name:      line.Name,
			Qty:       line.Qty,
			UnitPrice: centsToDecimal(line.UnitPriceCents),
			LineTotal: centsToDecimal(line.LineTotalCents),
		})
	}

	return Document{
		RequestNumber: request.RequestNumber,
		Customer:      request.Customer,
		Lines:         lines,
		TotalAmount:   centsToDecimal(request.TotalAmountCents),
		IssuedAt:      request.CreatedAt,
	}, nil
}

func centsToDecimal(cents int) decimal.Decimal {
	return decimal.New(int64(cents), -2)
}
