package enums

import "fmt"

// BulkOperation names the administrative action applied to a set of entity ids.
type BulkOperation string

const (
	BulkOperationSoftDelete BulkOperation = "soft_delete"
	BulkOperationRestore    BulkOperation = "restore"
	BulkOperationActivate   BulkOperation = "activate"
	BulkOperationDeactivate BulkOperation = "deactivate"
)

var validBulkOperations = []BulkOperation{
	BulkOperationSoftDelete,
	BulkOperationRestore,
	BulkOperationActivate,
	BulkOperationDeactivate,
}

// String implements fmt.Stringer.
func (b BulkOperation) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BulkOperation.
func (b BulkOperation) IsValid() bool {
	for _, candidate := range validBulkOperations {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBulkOperation converts raw input into a BulkOperation.
func ParseBulkOperation(value string) (BulkOperation, error) {
	for _, candidate := range validBulkOperations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bulk operation %q", value)
}
