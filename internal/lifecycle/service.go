package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ogp-platform/proforma-backend/pkg/db"
	"github.com/ogp-platform/proforma-backend/pkg/enums"
	pkgerrors "github.com/ogp-platform/proforma-backend/pkg/errors"
	"github.com/ogp-platform/proforma-backend/pkg/logger"
	"github.com/ogp-platform/proforma-backend/pkg/outbox"
	"github.com/ogp-platform/proforma-backend/pkg/outbox/payloads"
)

// Service applies tombstone transitions to any registered entity kind.
type Service interface {
	SoftDelete(ctx context.Context, kind enums.EntityKind, id uuid.UUID) error
	Restore(ctx context.Context, kind enums.EntityKind, id uuid.UUID) error
	SetActive(ctx context.Context, kind enums.EntityKind, id uuid.UUID, active bool) error
	BulkApply(ctx context.Context, kind enums.EntityKind, ids []uuid.UUID, op Operation) (*BulkResult, error)
}

type service struct {
	dbClient *db.Client
	events   *outbox.Service
	logg     *logger.Logger
}

// NewService constructs the lifecycle service.
func NewService(dbClient *db.Client, events *outbox.Service, logg *logger.Logger) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{dbClient: dbClient, events: events, logg: logg}, nil
}

// SoftDelete archives the entity. Archiving an already-archived entity is a
// no-op success; no cascade touches related rows.
func (s *service) SoftDelete(ctx context.Context, kind enums.EntityKind, id uuid.UUID) error {
	now := time.Now()
	return s.apply(ctx, kind, id, enums.EventEntityArchived, false, map[string]interface{}{
		"is_active":  false,
		"deleted_at": &now,
	})
}

// Restore unconditionally clears the tombstone and reactivates the entity.
func (s *service) Restore(ctx context.Context, kind enums.EntityKind, id uuid.UUID) error {
	return s.apply(ctx, kind, id, enums.EventEntityRestored, true, map[string]interface{}{
		"is_active":  true,
		"deleted_at": nil,
	})
}

// SetActive toggles visibility without touching the tombstone timestamp. The
// emitted event types are distinct from the archive/restore pair so consumers
// can tell a hidden entity from a tombstoned one.
func (s *service) SetActive(ctx context.Context, kind enums.EntityKind, id uuid.UUID, active bool) error {
	eventType := enums.EventEntityDeactivated
	if active {
		eventType = enums.EventEntityActivated
	}
	return s.apply(ctx, kind, id, eventType, active, map[string]interface{}{
		"is_active": active,
	})
}

func (s *service) apply(ctx context.Context, kind enums.EntityKind, id uuid.UUID, eventType enums.OutboxEventType, active bool, updates map[string]interface{}) error {
	binding, err := bindingFor(kind)
	if err != nil {
		return err
	}
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "entity id required")
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		result := scopeModel(tx, binding).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "db: update "+kind.String())
		}
		if result.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, kind.String()+" not found")
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: binding.aggregate,
			AggregateID:   id,
			Data: payloads.EntityLifecycleChanged{
				Kind:     kind,
				EntityID: id,
				Active:   active,
			},
		})
	})
	if err != nil {
		return err
	}

	if s.logg != nil {
		fields := map[string]any{"kind": kind.String(), "entity_id": id.String(), "active": active}
		s.logg.Info(s.logg.WithFields(ctx, fields), "lifecycle state applied")
	}
	return nil
}
