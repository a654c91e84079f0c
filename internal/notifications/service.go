package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ogp-platform/proforma-backend/pkg/db/models"
	"github.com/ogp-platform/proforma-backend/pkg/enums"
	pkgerrors "github.com/ogp-platform/proforma-backend/pkg/errors"
	"github.com/ogp-platform/proforma-backend/pkg/logger"
)

// Mailer is the outbound email boundary. Transport lives elsewhere; the
// consumer only needs fire-and-forget semantics.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Service exposes in-app notification operations.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.Notification, error)
	List(ctx context.Context, filter ListFilter) ([]models.Notification, string, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)
}

// RecordInput describes one notification row to persist.
type RecordInput struct {
	Type      enums.NotificationType
	Title     string
	Message   string
	RequestID *uuid.UUID
}

type service struct {
	repo *Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService constructs the notification service.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

// Record persists one in-app notification.
func (s *service) Record(ctx context.Context, input RecordInput) (*models.Notification, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown notification type "+input.Type.String())
	}
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}

	notification := &models.Notification{
		ID:        uuid.New(),
		Type:      input.Type,
		Title:     input.Title,
		Message:   input.Message,
		RequestID: input.RequestID,
	}
	created, err := s.repo.Create(ctx, notification)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert notification")
	}
	return created, nil
}

// List returns the notification feed.
func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Notification, string, error) {
	rows, next, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list notifications")
	}
	return rows, next, nil
}

// MarkRead stamps one notification. Marking an already-read or unknown
// notification yields NotFound so callers can distinguish stale feeds.
func (s *service) MarkRead(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.MarkRead(ctx, id, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark notification read")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "unread notification not found")
	}
	return nil
}

// MarkAllRead stamps every unread notification and reports the count.
func (s *service) MarkAllRead(ctx context.Context) (int64, error) {
	affected, err := s.repo.MarkAllRead(ctx, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark all read")
	}
	return affected, nil
}
