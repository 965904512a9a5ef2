package git

import (
	"context"
	"fmt"
)

func (m CherryPickMode) flag() string {
	if m == CherryPickFastForward {
		return "--ff"
	}
	return "-x"
}

// CherryPick replays a single commit onto HEAD.
// On conflict the cherry-pick is left in progress for the operator.
func (r *realRunner) CherryPick(ctx context.Context, commit string, mode CherryPickMode) error {
	_, err := r.cmd.Run(ctx, "cherry-pick", mode.flag(), commit)
	if err != nil {
		return fmt.Errorf("failed to cherry-pick %s: %w", commit, err)
	}
	return nil
}

// CherryPickRange replays every commit in rangeSpec (for example "main..PR-12") onto HEAD
func (r *realRunner) CherryPickRange(ctx context.Context, rangeSpec string, mode CherryPickMode) error {
	_, err := r.cmd.Run(ctx, "cherry-pick", mode.flag(), rangeSpec)
	if err != nil {
		return fmt.Errorf("failed to cherry-pick %s: %w", rangeSpec, err)
	}
	return nil
}
