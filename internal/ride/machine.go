package ride

import (
	"fmt" // Error formatting

	"github.com/techadnank9/alien-miniapp-uber/internal/domain" // Ride statuses
	"github.com/techadnank9/alien-miniapp-uber/internal/utils"  // Sentinel errors
)

// transitions maps each target status to the statuses it may be entered from.
// Cancellation is only legal before the trip starts; terminal states are terminal.
var transitions = map[domain.RideStatus][]domain.RideStatus{
	domain.RideStatusAssigned:  {domain.RideStatusMatching},
	domain.RideStatusStarted:   {domain.RideStatusAssigned},
	domain.RideStatusCompleted: {domain.RideStatusStarted},
	domain.RideStatusCancelled: {domain.RideStatusMatching, domain.RideStatusAssigned},
}

// CanTransition reports whether a ride may move from one status to another.
func CanTransition(from, to domain.RideStatus) bool {
	for _, legal := range transitions[to] {
		if legal == from {
			return true
		}
	}
	return false
}

// CheckTransition validates a transition, failing with ErrInvalidTransition.
func CheckTransition(from, to domain.RideStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("ride cannot move %s -> %s: %w", from, to, utils.ErrInvalidTransition)
	}
	return nil
}

// Predecessors returns the statuses a ride may enter the given status from.
func Predecessors(to domain.RideStatus) []domain.RideStatus {
	return transitions[to]
}
