// internal/passport/transitions.go
package passport

import "fmt"

// allowedPredecessors lists, per target status, the states a lifecycle
// operation may move from. Each operation has exactly one target status, so
// keying by target gives one row per operation. Re-invoking a non-terminal
// operation is a legal self-transition: the ledger records every call, not
// every distinct state change. Backward moves are never allowed and
// HANDED_OVER is frozen.
var allowedPredecessors = map[Status][]Status{
	StatusPriorityCollection: {StatusScheduled},
	StatusCollectedByCitizen: {StatusScheduled, StatusPriorityCollection, StatusCollectedByCitizen},
	StatusVerified: {
		StatusScheduled, StatusPriorityCollection,
		StatusCollectedByCitizen, StatusCollectedPending, StatusVerified,
	},
	StatusAssignedToRecycler: {StatusVerified, StatusBiddingOpen, StatusAssignedToRecycler},
	StatusHandedOver:         {StatusAssignedToRecycler},
}

// ValidateTransition checks that moving from the current status to the
// operation's target status is reachable in the custody chain.
func ValidateTransition(from, to Status) error {
	for _, allowed := range allowedPredecessors[to] {
		if from == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
