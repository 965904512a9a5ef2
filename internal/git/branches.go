package git

import (
	"context"
)

// CurrentBranch returns the branch currently checked out
func (r *realRunner) CurrentBranch(_ context.Context) (string, error) {
	return r.repo.CurrentBranch()
}

// BranchExists probes for a local branch. Lookup failures read as "absent".
func (r *realRunner) BranchExists(_ context.Context, branchName string) bool {
	return r.repo.BranchExists(branchName)
}

// RemoteBranchExists probes for a remote-tracking branch
func (r *realRunner) RemoteBranchExists(_ context.Context, remote, branchName string) bool {
	return r.repo.RemoteBranchExists(remote, branchName)
}

// Revision resolves rev to a full commit hash
func (r *realRunner) Revision(_ context.Context, rev string) (string, error) {
	return r.repo.ResolveRevision(rev)
}
