package actions

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTracker(t *testing.T) {
	t.Parallel()

	t.Run("moves forward and reports transitions", func(t *testing.T) {
		t.Parallel()
		var seen []State
		tracker := NewTracker(func(s State) { seen = append(seen, s) })

		tracker.Advance(Fetched)
		tracker.Advance(TargetUpdated)
		tracker.Advance(Done)

		require.Equal(t, Done, tracker.State())
		require.Equal(t, []State{Fetched, TargetUpdated, Done}, seen)
	})

	t.Run("states may be skipped", func(t *testing.T) {
		t.Parallel()
		tracker := NewTracker(nil)
		tracker.Advance(WorkingBranchReady)
		require.Equal(t, WorkingBranchReady, tracker.State())
	})

	t.Run("backwards transitions panic", func(t *testing.T) {
		t.Parallel()
		tracker := NewTracker(nil)
		tracker.Advance(TargetUpdated)
		require.Panics(t, func() { tracker.Advance(Fetched) })
	})

	t.Run("failed is terminal", func(t *testing.T) {
		t.Parallel()
		tracker := NewTracker(nil)
		boom := errors.New("boom")

		require.Equal(t, boom, tracker.Fail(boom))
		require.Equal(t, Failed, tracker.State())
		require.Panics(t, func() { tracker.Advance(Done) })
	})

	t.Run("names", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "working branch ready", WorkingBranchReady.String())
		require.Equal(t, "State(42)", State(42).String())
	})
}
