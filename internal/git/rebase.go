package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	backporterrors "backport.dev/backport/internal/errors"
)

// noopEditorEnv replaces the todo-list and message editors so that an
// interactive rebase runs unattended
var noopEditorEnv = []string{"GIT_SEQUENCE_EDITOR=true", "GIT_EDITOR=true"}

// Rebase replays a branch onto opts.Onto.
// A stopped rebase is left in place for the operator and reported as a RebaseConflictError.
func (r *realRunner) Rebase(ctx context.Context, opts RebaseOptions) error {
	branchName := opts.Branch
	if branchName == "" {
		branchName, _ = r.CurrentBranch(ctx)
	}

	args := []string{"rebase"}
	if opts.Interactive {
		args = append(args, "--interactive")
	}
	if opts.Exec != "" {
		args = append(args, "--exec", opts.Exec)
	}
	args = append(args, opts.Onto)
	if opts.Branch != "" {
		args = append(args, opts.Branch)
	}

	_, err := r.cmd.RunWithEnv(ctx, noopEditorEnv, args...)
	if err != nil {
		if r.IsRebaseInProgress() {
			return backporterrors.NewRebaseConflictError(branchName, "resolve the conflict and run 'git rebase --continue'")
		}
		return fmt.Errorf("failed to rebase %s onto %s: %w", branchName, opts.Onto, err)
	}
	return nil
}

// IsRebaseInProgress checks if a rebase (or git am session) is currently in progress
func (r *realRunner) IsRebaseInProgress() bool {
	// Check for .git/rebase-merge or .git/rebase-apply directories
	for _, dir := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(r.GitDir(), dir)); err == nil {
			return true
		}
	}
	return false
}
