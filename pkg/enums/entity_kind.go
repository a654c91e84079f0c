package enums

import "fmt"

// EntityKind identifies a tombstoned entity class for lifecycle operations.
type EntityKind string

const (
	EntityKindUser     EntityKind = "user"
	EntityKindProduct  EntityKind = "product"
	EntityKindBrand    EntityKind = "brand"
	EntityKindCategory EntityKind = "category"
	EntityKindStory    EntityKind = "story"
)

var validEntityKinds = []EntityKind{
	EntityKindUser,
	EntityKindProduct,
	EntityKindBrand,
	EntityKindCategory,
	EntityKindStory,
}

// String implements fmt.Stringer.
func (e EntityKind) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EntityKind.
func (e EntityKind) IsValid() bool {
	for _, candidate := range validEntityKinds {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEntityKind converts raw input into an EntityKind.
func ParseEntityKind(value string) (EntityKind, error) {
	for _, candidate := range validEntityKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid entity kind %q", value)
}
