package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateRequest  OutboxAggregateType = "request"
	AggregateProduct  OutboxAggregateType = "product"
	AggregateBrand    OutboxAggregateType = "brand"
	AggregateCategory OutboxAggregateType = "category"
	AggregateStory    OutboxAggregateType = "story"
	AggregateUser     OutboxAggregateType = "user"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateRequest,
	AggregateProduct,
	AggregateBrand,
	AggregateCategory,
	AggregateStory,
	AggregateUser,
}

func (a OutboxAggregateType) String() string {
	return string(a)
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventRequestCreated       OutboxEventType = "request_created"
	EventRequestStatusChanged OutboxEventType = "request_status_changed"
	EventEntityArchived       OutboxEventType = "entity_archived"
	EventEntityRestored       OutboxEventType = "entity_restored"
	EventEntityActivated      OutboxEventType = "entity_activated"
	EventEntityDeactivated    OutboxEventType = "entity_deactivated"
)

var validOutboxEventTypes = []OutboxEventType{
	EventRequestCreated,
	EventRequestStatusChanged,
	EventEntityArchived,
	EventEntityRestored,
	EventEntityActivated,
	EventEntityDeactivated,
}

func (e OutboxEventType) String() string {
	return string(e)
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
