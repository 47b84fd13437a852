package ride

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/techadnank9/alien-miniapp-uber/internal/domain"
	"github.com/techadnank9/alien-miniapp-uber/internal/utils"
)

func TestTransitionTable(t *testing.T) {
	all := []domain.RideStatus{
		domain.RideStatusMatching,
		domain.RideStatusAssigned,
		domain.RideStatusStarted,
		domain.RideStatusCompleted,
		domain.RideStatusCancelled,
	}
	legal := map[[2]domain.RideStatus]bool{
		{domain.RideStatusMatching, domain.RideStatusAssigned}:  true,
		{domain.RideStatusAssigned, domain.RideStatusStarted}:   true,
		{domain.RideStatusStarted, domain.RideStatusCompleted}:  true,
		{domain.RideStatusMatching, domain.RideStatusCancelled}: true,
		{domain.RideStatusAssigned, domain.RideStatusCancelled}: true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equalf(t, legal[[2]domain.RideStatus{from, to}], CanTransition(from, to),
				"%s -> %s", from, to)
		}
	}
}

func TestCheckTransitionError(t *testing.T) {
	err := CheckTransition(domain.RideStatusMatching, domain.RideStatusStarted)
	assert.True(t, errors.Is(err, utils.ErrInvalidTransition))

	assert.NoError(t, CheckTransition(domain.RideStatusMatching, domain.RideStatusAssigned))
}

func TestTerminalStatesHaveNoExit(t *testing.T) {
	for _, terminal := range []domain.RideStatus{domain.RideStatusCompleted, domain.RideStatusCancelled} {
		assert.True(t, terminal.Terminal())
		for _, to := range []domain.RideStatus{
			domain.RideStatusMatching, domain.RideStatusAssigned, domain.RideStatusStarted,
			domain.RideStatusCompleted, domain.RideStatusCancelled,
		} {
			assert.Falsef(t, CanTransition(terminal, to), "%s -> %s must be illegal", terminal, to)
		}
	}
}
