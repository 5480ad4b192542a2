package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("  Paid ")
	require.NoError(t, err)
	require.Equal(t, StatusPaid, status)

	_, err = ParseStatus("refunded")
	require.ErrorIs(t, err, ErrUnknownStatus)

	_, err = ParseStatus("")
	require.ErrorIs(t, err, ErrUnknownStatus)
}

func TestTransitionTable(t *testing.T) {
	legal := []struct {
		from Status
		to   Status
	}{
		{StatusPending, StatusPaid},
		{StatusPending, StatusCancelled},
		{StatusPaid, StatusShipped},
		{StatusPaid, StatusCancelled},
		{StatusShipped, StatusCompleted},
		{StatusShipped, StatusCancelled},
	}
	for _, tc := range legal {
		require.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	illegal := []struct {
		from Status
		to   Status
	}{
		{StatusPending, StatusShipped},
		{StatusPending, StatusCompleted},
		{StatusPaid, StatusCompleted},
		{StatusPaid, StatusPending},
		{StatusShipped, StatusPaid},
		{StatusCompleted, StatusCancelled},
		{StatusCompleted, StatusPending},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusPaid},
	}
	for _, tc := range illegal {
		require.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be illegal", tc.from, tc.to)
	}
}

func TestTerminalStates(t *testing.T) {
	require.True(t, StatusCompleted.IsTerminal())
	require.True(t, StatusCancelled.IsTerminal())
	require.False(t, StatusPending.IsTerminal())
	require.False(t, StatusPaid.IsTerminal())
	require.False(t, StatusShipped.IsTerminal())
}

func TestReleasesStock(t *testing.T) {
	require.True(t, ReleasesStock(StatusCancelled))
	require.False(t, ReleasesStock(StatusPaid))
	require.False(t, ReleasesStock(StatusShipped))
	require.False(t, ReleasesStock(StatusCompleted))
}
