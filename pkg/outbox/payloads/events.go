package payloads

import (
	"github.com/google/uuid"

	"github.com/ogp-platform/proforma-backend/pkg/enums"
)

// RequestCreated is emitted when a basket submission becomes a numbered request.
type RequestCreated struct {
	RequestID     uuid.UUID `json:"request_id"`
	RequestNumber string    `json:"request_number"`
	CustomerEmail string    `json:"customer_email"`
	CustomerName  string    `json:"customer_name"`
	TotalCents    int       `json:"total_cents"`
	LineCount     int       `json:"line_count"`
}

// RequestStatusChanged is emitted when a request lands in approved or rejected.
type RequestStatusChanged struct {
	RequestID     uuid.UUID           `json:"request_id"`
	RequestNumber string              `json:"request_number"`
	CustomerEmail string              `json:"customer_email"`
	CustomerName  string              `json:"customer_name"`
	PriorStatus   enums.RequestStatus `json:"prior_status"`
	NewStatus     enums.RequestStatus `json:"new_status"`
}

// EntityLifecycleChanged is emitted when an entity is archived or restored.
type EntityLifecycleChanged struct {
	Kind     enums.EntityKind `json:"kind"`
	EntityID uuid.UUID        `json:"entity_id"`
	Active   bool             `json:"active"`
}
