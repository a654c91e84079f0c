package requests

import (
	"github.com/ogp-platform/proforma-backend/pkg/enums"
)

// legalTransitions is the full state machine. Absent keys are terminal states.
var legalTransitions = map[enums.RequestStatus][]enums.RequestStatus{
	enums.RequestStatusPending: {
		enums.RequestStatusApproved,
		enums.RequestStatusRejected,
	},
	enums.RequestStatusApproved: {
		enums.RequestStatusProcessing,
		enums.RequestStatusCompleted,
	},
	enums.RequestStatusProcessing: {
		enums.RequestStatusCompleted,
	},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to enums.RequestStatus) bool {
	for _, candidate := range legalTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
