package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/ogp-platform/proforma-backend/pkg/config"
	"github.com/ogp-platform/proforma-backend/pkg/enums"
	"github.com/ogp-platform/proforma-backend/pkg/logger"
	"github.com/ogp-platform/proforma-backend/pkg/outbox"
	"github.com/ogp-platform/proforma-backend/pkg/outbox/idempotency"
	"github.com/ogp-platform/proforma-backend/pkg/outbox/payloads"
)

const domainEventConsumer = "request-notifications"

// Consumer watches domain events, records in-app notifications, and sends
// the customer email through the Mailer boundary.
type Consumer struct {
	service      Service
	mailer       Mailer
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	mail         config.MailConfig
	logg         *logger.Logger
}

// NewConsumer builds the domain event consumer. A nil mailer records in-app
// notifications only.
func NewConsumer(
	service Service,
	mailer Mailer,
	subscription *pubsub.Subscriber,
	manager *idempotency.Manager,
	mail config.MailConfig,
	logg *logger.Logger,
) (*Consumer, error) {
	if service == nil {
		return nil, fmt.Errorf("notification service required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		service:      service,
		mailer:       mailer,
		subscription: subscription,
		idempotency:  manager,
		mail:         mail,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// process returns true when the message should be acked. Malformed messages
// are always acked; redelivery cannot fix them.
func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) bool {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType.String(),
	})

	if eventType != enums.EventRequestCreated && eventType != enums.EventRequestStatusChanged {
		return true
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return true
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return true
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, domainEventConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return false
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return true
	}

	if err := c.handle(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "event handling failed", err)
		_ = c.idempotency.Delete(ctx, domainEventConsumer, eventID)
		return false
	}
	return true
}

func (c *Consumer) handle(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventRequestCreated:
		var payload payloads.RequestCreated
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.handleRequestCreated(ctx, payload)
	case enums.EventRequestStatusChanged:
		var payload payloads.RequestStatusChanged
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.handleStatusChanged(ctx, payload, logCtx)
	default:
		return nil
	}
}

func (c *Consumer) handleRequestCreated(ctx context.Context, payload payloads.RequestCreated) error {
	_, err := c.service.Record(ctx, RecordInput{
		Type:      enums.NotificationTypeRequestSubmitted,
		Title:     fmt.Sprintf("New request %s", payload.RequestNumber),
		Message:   fmt.Sprintf("%s submitted a request for %d line(s)", payload.CustomerName, payload.LineCount),
		RequestID: &payload.RequestID,
	})
	return err
}

func (c *Consumer) handleStatusChanged(ctx context.Context, payload payloads.RequestStatusChanged, logCtx context.Context) error {
	notificationType := enums.NotificationTypeSystem
	switch payload.NewStatus {
	case enums.RequestStatusApproved:
		notificationType = enums.NotificationTypeRequestApproved
	case enums.RequestStatusRejected:
		notificationType = enums.NotificationTypeRequestRejected
	}

	_, err := c.service.Record(ctx, RecordInput{
		Type:      notificationType,
		Title:     fmt.Sprintf("Request %s %s", payload.RequestNumber, payload.NewStatus),
		Message:   fmt.Sprintf("Status moved from %s to %s", payload.PriorStatus, payload.NewStatus),
		RequestID: &payload.RequestID,
	})
	if err != nil {
		return err
	}

	if c.mailer == nil || payload.CustomerEmail == "" {
		return nil
	}
	subject := fmt.Sprintf("Your request %s was %s", payload.RequestNumber, payload.NewStatus)
	body := fmt.Sprintf("Hello %s,\n\nYour request %s is now %s.\n\n%s",
		payload.CustomerName, payload.RequestNumber, payload.NewStatus, c.mail.FromName)
	if err := c.mailer.Send(ctx, payload.CustomerEmail, subject, body); err != nil {
		// Mail is best-effort; the in-app notification already landed.
		c.logg.Error(logCtx, "customer mail failed", err)
	}
	return nil
}
