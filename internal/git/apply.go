package git

import (
	"context"
	"fmt"
)

// ApplyPatch applies a mailbox-formatted patch series on HEAD, falling back to a
// three-way merge. A failed session is left for the operator ('git am --continue').
func (r *realRunner) ApplyPatch(ctx context.Context, path string) error {
	_, err := r.cmd.Run(ctx, "am", "--3way", path)
	if err != nil {
		return fmt.Errorf("failed to apply patch %s: %w", path, err)
	}
	return nil
}
