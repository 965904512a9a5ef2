package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	backporterrors "backport.dev/backport/internal/errors"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	t.Parallel()

	cause := errors.New("exit status 1")
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"naming convention", backporterrors.NewNamingConventionError("main"), backporterrors.ErrNamingConvention},
		{"naming convention is a user error", backporterrors.NewNamingConventionError("main"), backporterrors.ErrUser},
		{"branch exists", backporterrors.NewBranchExistsError("PR-1"), backporterrors.ErrBranchExists},
		{"branch exists is a user error", backporterrors.NewBranchExistsError("PR-1"), backporterrors.ErrUser},
		{"discovery", backporterrors.NewDiscoveryError("main", "stable/14", cause), backporterrors.ErrDiscovery},
		{"fast-forward", backporterrors.NewFastForwardError("stable/14", "origin", cause), backporterrors.ErrFastForward},
		{"rebase", backporterrors.NewRebaseConflictError("stable/mfc14", ""), backporterrors.ErrRebaseConflict},
		{"cherry-pick", backporterrors.NewCherryPickConflictError("abc", nil, cause), backporterrors.ErrCherryPickConflict},
		{"patch", backporterrors.NewPatchFetchError("https://example.com/1.patch", cause), backporterrors.ErrPatchFetch},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wrapped := fmt.Errorf("outer: %w", tt.err)
			require.ErrorIs(t, wrapped, tt.sentinel)
		})
	}
}

func TestWrappedCausesAreReachable(t *testing.T) {
	t.Parallel()

	cause := errors.New("exit status 128")
	err := backporterrors.NewDiscoveryError("main", "stable/14", cause)
	require.ErrorIs(t, err, cause)

	var discoveryErr *backporterrors.DiscoveryError
	require.ErrorAs(t, fmt.Errorf("wrap: %w", err), &discoveryErr)
	require.Equal(t, "stable/14", discoveryErr.Target)
}

func TestIsUserError(t *testing.T) {
	t.Parallel()

	require.True(t, backporterrors.IsUserError(backporterrors.NewUserError("missing --id")))
	require.False(t, backporterrors.IsUserError(backporterrors.NewFastForwardError("stable/14", "origin", nil)))
}

func TestCherryPickConflictErrorListsAppliedCommits(t *testing.T) {
	t.Parallel()

	err := backporterrors.NewCherryPickConflictError("ccc", []string{"aaa", "bbb"}, nil)
	require.Contains(t, err.Error(), "ccc")
	require.Contains(t, err.Error(), "aaa, bbb")
}
