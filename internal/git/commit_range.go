package git

import (
	"context"
	"fmt"
)

// ListCherryPickCandidates lists commits reachable from source whose patch is not
// already on target, oldest first. Merge commits are skipped. When paths are
// given only commits touching them are listed.
func (r *realRunner) ListCherryPickCandidates(ctx context.Context, source, target string, paths []string) ([]string, error) {
	args := []string{
		"rev-list", "--reverse", "--right-only", "--cherry-pick", "--no-merges",
		fmt.Sprintf("%s...%s", target, source),
	}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}
	commits, err := r.cmd.RunLines(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits of %s missing from %s: %w", source, target, err)
	}
	return commits, nil
}

// SearchLog returns the hashes of commits in rangeSpec whose message contains term literally
func (r *realRunner) SearchLog(ctx context.Context, term, rangeSpec string) ([]string, error) {
	hits, err := r.cmd.RunLines(ctx, "log", "--fixed-strings", "--grep="+term, "--format=%H", rangeSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to search log %s for %s: %w", rangeSpec, term, err)
	}
	return hits, nil
}

// CommitInfo returns author, date and subject of rev
func (r *realRunner) CommitInfo(_ context.Context, rev string) (CommitInfo, error) {
	return r.repo.CommitInfo(rev)
}
