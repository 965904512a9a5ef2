package git

import (
	"context"
	"fmt"
)

// IsTreeClean reports whether tracked files have no staged or unstaged changes
func (r *realRunner) IsTreeClean(ctx context.Context) (bool, error) {
	output, err := r.cmd.Run(ctx, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return false, fmt.Errorf("failed to get working tree status: %w", err)
	}
	return output == "", nil
}
