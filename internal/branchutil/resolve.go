// Package branchutil derives the branch pairs the workflows operate on from branch names.
package branchutil

import (
	"fmt"
	"regexp"
	"strings"

	backporterrors "backport.dev/backport/internal/errors"
)

// DefaultPRPrefix is used for PR branches when no prefix is configured
const DefaultPRPrefix = "PR"

var (
	stableBranchRegex = regexp.MustCompile(`^stable/([0-9]+)$`)
	mfcBranchRegex    = regexp.MustCompile(`^stable/mfc([0-9]+)$`)
)

// BranchPair is the shared branch and the working branch changes are landed on.
// Exactly one of them is checked out while a workflow runs.
type BranchPair struct {
	// Stable is the shared branch that is only ever fast-forwarded
	Stable string
	// Working is the branch commits are replayed or patches applied on
	Working string
}

// IsWorking reports whether branchName is the pair's working branch
func (p BranchPair) IsWorking(branchName string) bool {
	return branchName == p.Working
}

// Resolve derives the MFC branch pair from the checked out branch.
// Both stable/<N> and stable/mfc<N> resolve to (stable/<N>, stable/mfc<N>).
func Resolve(current string) (BranchPair, error) {
	if m := stableBranchRegex.FindStringSubmatch(current); m != nil {
		return mfcPair(m[1]), nil
	}
	if m := mfcBranchRegex.FindStringSubmatch(current); m != nil {
		return mfcPair(m[1]), nil
	}
	return BranchPair{}, backporterrors.NewNamingConventionError(current)
}

func mfcPair(version string) BranchPair {
	return BranchPair{
		Stable:  "stable/" + version,
		Working: "stable/mfc" + version,
	}
}

// PRBranch returns the staging branch name for a pull request
func PRBranch(prefix string, id int) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPRPrefix
	}
	return fmt.Sprintf("%s-%d", prefix, id)
}

// PRPair returns the branch pair for staging pull request id on top of mainline
func PRPair(mainline, prefix string, id int) BranchPair {
	return BranchPair{
		Stable:  mainline,
		Working: PRBranch(prefix, id),
	}
}
