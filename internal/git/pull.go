package git

import (
	"context"
	"fmt"
)

// Fetch fetches all branches of remote
func (r *realRunner) Fetch(ctx context.Context, remote string) error {
	_, err := r.cmd.Run(ctx, "fetch", remote)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", remote, err)
	}
	return nil
}

// FastForward advances the current branch to remoteBranch, refusing to create a merge commit
func (r *realRunner) FastForward(ctx context.Context, remoteBranch string) error {
	_, err := r.cmd.Run(ctx, "merge", "--ff-only", remoteBranch)
	if err != nil {
		return fmt.Errorf("failed to fast-forward to %s: %w", remoteBranch, err)
	}
	return nil
}
