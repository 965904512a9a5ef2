package git

import (
	"context"
	"fmt"
)

// Checkout checks out an existing branch
func (r *realRunner) Checkout(ctx context.Context, branchName string) error {
	_, err := r.cmd.Run(ctx, "checkout", branchName)
	if err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", branchName, err)
	}
	return nil
}

// CheckoutNewBranch creates branchName at base and checks it out
func (r *realRunner) CheckoutNewBranch(ctx context.Context, branchName, base string) error {
	_, err := r.cmd.Run(ctx, "checkout", "-b", branchName, base)
	if err != nil {
		return fmt.Errorf("failed to create branch %s from %s: %w", branchName, base, err)
	}
	return nil
}

// DeleteBranch force-deletes a local branch
func (r *realRunner) DeleteBranch(ctx context.Context, branchName string) error {
	_, err := r.cmd.Run(ctx, "branch", "-D", branchName)
	if err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", branchName, err)
	}
	return nil
}
