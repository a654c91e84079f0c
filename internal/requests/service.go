package requests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ogp-platform/proforma-backend/internal/lifecycle"
	"github.com/ogp-platform/proforma-backend/internal/pricing"
	"github.com/ogp-platform/proforma-backend/internal/sequence"
	"github.com/ogp-platform/proforma-backend/pkg/db"
	"github.com/ogp-platform/proforma-backend/pkg/db/models"
	"github.com/ogp-platform/proforma-backend/pkg/enums"
	pkgerrors "github.com/ogp-platform/proforma-backend/pkg/errors"
	"github.com/ogp-platform/proforma-backend/pkg/logger"
	"github.com/ogp-platform/proforma-backend/pkg/outbox"
	"github.com/ogp-platform/proforma-backend/pkg/outbox/payloads"
	"github.com/ogp-platform/proforma-backend/pkg/types"
	"github.com/ogp-platform/proforma-backend/pkg/validate"
)

const defaultNotifyTimeout = 5 * time.Second

// Service exposes proforma request operations.
type Service interface {
	Create(ctx context.Context, input CreateRequestInput) (*RequestDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*RequestDTO, error)
	GetByNumber(ctx context.Context, number string) (*RequestDTO, error)
	List(ctx context.Context, filter ListFilter) ([]RequestDTO, string, error)
	Transition(ctx context.Context, id uuid.UUID, target enums.RequestStatus, actor string) (*RequestDTO, error)
	BulkTransition(ctx context.Context, ids []uuid.UUID, target enums.RequestStatus, actor string) (*lifecycle.BulkResult, error)
}

// Notifier delivers the status-change notice to the customer. Implementations
// must be safe to fail: the transition has already committed when this runs.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, request *models.Request, prior enums.RequestStatus) error
}

// productReader loads catalog rows for price resolution at submit time.
type productReader interface {
	FindForPricing(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo          *Repository
	dbClient      *db.Client
	allocator     *sequence.Allocator
	products      productReader
	events        *outbox.Service
	notifier      Notifier
	logg          *logger.Logger
	notifyTimeout time.Duration
	now           func() time.Time
}

// NewService constructs the request service. The notifier is optional; a nil
// notifier disables post-commit notices without affecting transitions.
func NewService(
	repo *Repository,
	dbClient *db.Client,
	allocator *sequence.Allocator,
	products productReader,
	events *outbox.Service,
	notifier Notifier,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("request repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if allocator == nil {
		return nil, fmt.Errorf("sequence allocator required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{
		repo:          repo,
		dbClient:      dbClient,
		allocator:     allocator,
		products:      products,
		events:        events,
		notifier:      notifier,
		logg:          logg,
		notifyTimeout: defaultNotifyTimeout,
		now:           time.Now,
	}, nil
}

// Create turns a validated basket submission into a numbered request. Number
// allocation, the insert, and the created event commit in one transaction, so
// a failed insert never burns a visible number gap larger than the ordinal
// the rollback discards.
func (s *service) Create(ctx context.Context, input CreateRequestInput) (*RequestDTO, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	lines, totalCents, err := s.buildLines(ctx, input.Lines)
	if err != nil {
		return nil, err
	}

	var created *models.Request
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		number, err := s.allocator.WithTx(tx).Next(ctx, s.now().Year())
		if err != nil {
			return err
		}

		request := &models.Request{
			ID:            uuid.New(),
			RequestNumber: number,
			Customer: types.Customer{
				Name:    input.Customer.Name,
				Email:   input.Customer.Email,
				Company: input.Customer.Company,
				Phone:   input.Customer.Phone,
				Address: input.Customer.Address,
			},
			Status:           enums.RequestStatusPending,
			TotalAmountCents: totalCents,
			Notes:            input.Notes,
			Lines:            lines,
		}
		if _, err := s.repo.WithTx(tx).Create(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert request")
		}
		created = request

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRequestCreated,
			AggregateType: enums.AggregateRequest,
			AggregateID:   request.ID,
			Data: payloads.RequestCreated{
				RequestID:     request.ID,
				RequestNumber: request.RequestNumber,
				CustomerEmail: request.Customer.Email,
				CustomerName:  request.Customer.Name,
				TotalCents:    request.TotalAmountCents,
				LineCount:     len(request.Lines),
			},
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create request")
	}

	if s.logg != nil {
		fields := map[string]any{
			"request_id":     created.ID.String(),
			"request_number": created.RequestNumber,
			"total_cents":    created.TotalAmountCents,
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "request created")
	}
	return toRequestDTO(created), nil
}

// buildLines snapshots product names and resolved unit prices. Lines never
// reference tiers; later catalog edits cannot change an issued request.
func (s *service) buildLines(ctx context.Context, inputs []LineInput) ([]models.RequestLine, int, error) {
	lines := make([]models.RequestLine, 0, len(inputs))
	total := 0
	for _, in := range inputs {
		product, err := s.products.FindForPricing(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("product %s not found", in.ProductID))
			}
			if pkgerrors.As(err) != nil {
				return nil, 0, err
			}
			return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}
		if !product.IsActive || product.DeletedAt != nil {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %s is unavailable", in.ProductID))
		}

		unitPrice, err := pricing.ResolveUnitPrice(product.BasePriceCents, product.Tiers, in.Qty)
		if err != nil {
			return nil, 0, err
		}
		lineTotal := unitPrice * in.Qty
		total += lineTotal

		lines = append(lines, models.RequestLine{
			ID:             uuid.New(),
			ProductID:      product.ID,
			Name:           product.Name,
			Qty:            in.Qty,
			UnitPriceCents: unitPrice,
			LineTotalCents: lineTotal,
		})
	}
	return lines, total, nil
}

// Get loads one request by id.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*RequestDTO, error) {
	request, err := s.loadRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRequestDTO(request), nil
}

// GetByNumber loads one request by its external number.
func (s *service) GetByNumber(ctx context.Context, number string) (*RequestDTO, error) {
	request, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load request")
	}
	return toRequestDTO(request), nil
}

// List returns requests newest first with the next page cursor.
func (s *service) List(ctx context.Context, filter ListFilter) ([]RequestDTO, string, error) {
	rows, nextCursor, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list requests")
	}
	dtos := make([]RequestDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *toRequestDTO(&rows[i]))
	}
	return dtos, nextCursor, nil
}

// Transition moves the request to the target status. Legality is checked
// against the loaded status, then enforced with a compare-and-swap so a
// concurrent transition loses cleanly instead of double-applying.
func (s *service) Transition(ctx context.Context, id uuid.UUID, target enums.RequestStatus, actor string) (*RequestDTO, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown status "+target.String())
	}

	request, err := s.loadRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	prior := request.Status
	if prior == target {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("request already %s", target))
	}
	if !CanTransition(prior, target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot transition from %s to %s", prior, target))
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		affected, err := txRepo.UpdateStatusWhere(ctx, id, prior, target)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: transition request")
		}
		if affected == 0 {
			return s.explainLostRace(ctx, txRepo, id, target)
		}
		if target != enums.RequestStatusApproved && target != enums.RequestStatusRejected {
			return nil
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRequestStatusChanged,
			AggregateType: enums.AggregateRequest,
			AggregateID:   id,
			Actor:         &outbox.ActorRef{Name: actor},
			Data: payloads.RequestStatusChanged{
				RequestID:     id,
				RequestNumber: request.RequestNumber,
				CustomerEmail: request.Customer.Email,
				CustomerName:  request.Customer.Name,
				PriorStatus:   prior,
				NewStatus:     target,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	request.Status = target
	if target == enums.RequestStatusApproved || target == enums.RequestStatusRejected {
		s.notifyBestEffort(ctx, request, prior)
	}

	if s.logg != nil {
		fields := map[string]any{
			"request_id":     id.String(),
			"request_number": request.RequestNumber,
			"from":           prior.String(),
			"to":             target.String(),
			"actor":          actor,
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "request transitioned")
	}
	return toRequestDTO(request), nil
}

// explainLostRace disambiguates a zero-row CAS: deleted row versus a
// concurrent transition that moved the status first.
func (s *service) explainLostRace(ctx context.Context, txRepo *Repository, id uuid.UUID, target enums.RequestStatus) error {
	current, err := txRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload request")
	}
	return pkgerrors.New(pkgerrors.CodeConflict,
		fmt.Sprintf("request moved to %s concurrently", current.Status)).
		WithDetails(map[string]string{
			"current_status": current.Status.String(),
			"target_status":  target.String(),
		})
}

// notifyBestEffort runs the notifier after the transition has committed. A
// notifier failure is logged and swallowed; the status change stands.
func (s *service) notifyBestEffort(ctx context.Context, request *models.Request, prior enums.RequestStatus) {
	if s.notifier == nil {
		return
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if err := s.notifier.NotifyStatusChange(notifyCtx, request, prior); err != nil {
		if s.logg != nil {
			fields := map[string]any{
				"request_id":     request.ID.String(),
				"request_number": request.RequestNumber,
			}
			s.logg.Error(s.logg.WithFields(ctx, fields), "status notification failed", err)
		}
		return
	}

	// The stamp rides the same detached context as the notice itself; a caller
	// that gave up right after commit must not lose the notified_at record.
	notifiedAt := s.now()
	if err := s.repo.StampNotified(notifyCtx, request.ID, notifiedAt); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "stamping notified_at failed", err)
		}
		return
	}
	request.NotifiedAt = &notifiedAt
}

// BulkTransition applies the transition per id; state machine and concurrency
// failures become per-id entries instead of aborting the batch.
func (s *service) BulkTransition(ctx context.Context, ids []uuid.UUID, target enums.RequestStatus, actor string) (*lifecycle.BulkResult, error) {
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "id list must not be empty")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown status "+target.String())
	}

	result := &lifecycle.BulkResult{
		Succeeded: make([]uuid.UUID, 0, len(ids)),
	}
	for _, id := range ids {
		if _, err := s.Transition(ctx, id, target, actor); err != nil {
			result.Failed = append(result.Failed, lifecycle.BulkFailure{ID: id, Reason: bulkReason(err)})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result, nil
}

func bulkReason(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}

func (s *service) loadRequest(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load request")
	}
	return request, nil
}
