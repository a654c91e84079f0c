package requests

import (
	"time"

	"github.com/google/uuid"

	"github.com/ogp-platform/proforma-backend/pkg/db/models"
	"github.com/ogp-platform/proforma-backend/pkg/enums"
	"github.com/ogp-platform/proforma-backend/pkg/types"
)

// CreateRequestInput is the validated basket submission payload.
type CreateRequestInput struct {
	Customer CustomerInput `validate:"required"`
	Lines    []LineInput   `validate:"required,min=1,dive"`
	Notes    *string
}

// CustomerInput is the contact block snapshotted onto the request.
type CustomerInput struct {
	Name    string `validate:"required"`
	Email   string `validate:"required,email"`
	Company string
	Phone   string
	Address string
}

// LineInput is one basket line before price resolution.
type LineInput struct {
	ProductID uuid.UUID `validate:"required"`
	Qty       int       `validate:"required,gte=1"`
}

// RequestDTO is the read model returned to callers.
type RequestDTO struct {
	ID               uuid.UUID           `json:"id"`
	RequestNumber    string              `json:"request_number"`
	Customer         types.Customer      `json:"customer"`
	Status           enums.RequestStatus `json:"status"`
	TotalAmountCents int                 `json:"total_amount_cents"`
	Notes            *string             `json:"notes,omitempty"`
	Lines            []RequestLineDTO    `json:"lines"`
	NotifiedAt       *time.Time          `json:"notified_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// RequestLineDTO is one immutable snapshot line.
type RequestLineDTO struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	Qty            int       `json:"qty"`
	UnitPriceCents int       `json:"unit_price_cents"`
	LineTotalCents int       `json:"line_total_cents"`
}

func toRequestDTO(request *models.Request) *RequestDTO {
	if request == nil {
		return nil
	}
	lines := make([]RequestLineDTO, 0, len(request.Lines))
	for _, line := range request.Lines {
		lines = append(lines, RequestLineDTO{
			ID:             line.ID,
			ProductID:      line.ProductID,
			Name:           line.Name,
			Qty:            line.Qty,
			UnitPriceCents: line.UnitPriceCents,
			LineTotalCents: line.LineTotalCents,
		})
	}
	return &RequestDTO{
		ID:               request.ID,
		RequestNumber:    request.RequestNumber,
		Customer:         request.Customer,
		Status:           request.Status,
		TotalAmountCents: request.TotalAmountCents,
		Notes:            request.Notes,
		Lines:            lines,
		NotifiedAt:       request.NotifiedAt,
		CreatedAt:        request.CreatedAt,
		UpdatedAt:        request.UpdatedAt,
	}
}
