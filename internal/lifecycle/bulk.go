package lifecycle

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/ogp-platform/proforma-backend/pkg/enums"
	pkgerrors "github.com/ogp-platform/proforma-backend/pkg/errors"
)

// Operation is one administrative action applied across a batch of ids.
type Operation struct {
	Kind   enums.BulkOperation
	Active bool // used by activate/deactivate only
}

// OpSoftDelete archives each entity.
func OpSoftDelete() Operation { return Operation{Kind: enums.BulkOperationSoftDelete} }

// OpRestore clears each entity's tombstone.
func OpRestore() Operation { return Operation{Kind: enums.BulkOperationRestore} }

// OpSetActive toggles visibility without touching tombstones.
func OpSetActive(active bool) Operation {
	kind := enums.BulkOperationDeactivate
	if active {
		kind = enums.BulkOperationActivate
	}
	return Operation{Kind: kind, Active: active}
}

// BulkFailure records why one id in a batch could not be processed.
type BulkFailure struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

// BulkResult is the partial-success outcome of a batch. A batch with failures
// still returns a nil error; callers inspect the result.
type BulkResult struct {
	Succeeded []uuid.UUID   `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// AllSucceeded reports whether every id in the batch was applied.
func (r *BulkResult) AllSucceeded() bool {
	return len(r.Failed) == 0
}

// BulkApply runs the operation against each id independently. One bad id never
// aborts the rest of the batch; each failure is recorded with its reason.
func (s *service) BulkApply(ctx context.Context, kind enums.EntityKind, ids []uuid.UUID, op Operation) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "id list must not be empty")
	}
	if !op.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown bulk operation "+op.Kind.String())
	}
	if _, err := bindingFor(kind); err != nil {
		return nil, err
	}

	result := &BulkResult{
		Succeeded: make([]uuid.UUID, 0, len(ids)),
	}
	var combined error
	for _, id := range ids {
		var err error
		switch op.Kind {
		case enums.BulkOperationSoftDelete:
			err = s.SoftDelete(ctx, kind, id)
		case enums.BulkOperationRestore:
			err = s.Restore(ctx, kind, id)
		case enums.BulkOperationActivate:
			err = s.SetActive(ctx, kind, id, true)
		case enums.BulkOperationDeactivate:
			err = s.SetActive(ctx, kind, id, false)
		}
		if err != nil {
			combined = multierr.Append(combined, err)
			result.Failed = append(result.Failed, BulkFailure{ID: id, Reason: failureReason(err)})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	if combined != nil && s.logg != nil {
		fields := map[string]any{
			"kind":      kind.String(),
			"operation": op.Kind.String(),
			"total":     len(ids),
			"failed":    len(result.Failed),
		}
		s.logg.Error(s.logg.WithFields(ctx, fields), "bulk operation completed with failures", combined)
	}
	return result, nil
}

// failureReason maps an error to the short reason stored alongside the id.
func failureReason(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}
