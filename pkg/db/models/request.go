package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ogp-platform/proforma-backend/pkg/enums"
	"github.com/ogp-platform/proforma-backend/pkg/types"
)

// Request is a proforma invoice built from a submitted basket. Everything but
// status and notified_at is immutable after creation; line items and resolved
// prices are snapshots of the catalog at submit time.
type Request struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RequestNumber    string              `gorm:"column:request_number;not null;uniqueIndex"`
	Customer         types.Customer      `gorm:"column:customer;type:jsonb;serializer:json"`
	Status           enums.RequestStatus `gorm:"column:status;type:request_status;not null;default:'pending'"`
	TotalAmountCents int                 `gorm:"column:total_amount_cents;not null"`
	Notes            *string             `gorm:"column:notes"`
	Lines            []RequestLine       `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
	NotifiedAt       *time.Time          `gorm:"column:notified_at"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
