// Package testhelpers provides testing utilities for backport,
// including temporary repositories, a recording git runner, and custom assertions.
package testhelpers

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value. This is useful for test setup code
// where errors are not expected and should halt execution immediately.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectBranches asserts that the repository has exactly the expected local branches.
func ExpectBranches(t *testing.T, repo *GitRepo, expected []string) {
	t.Helper()

	branches, err := repo.GetLocalBranches()
	require.NoError(t, err, "Failed to list branches")

	sort.Strings(branches)
	sorted := append([]string(nil), expected...)
	sort.Strings(sorted)

	require.Equal(t, sorted, branches, "Branches do not match")
}

// ExpectCommits asserts that the newest commit subjects on branch match expected, newest first.
func ExpectCommits(t *testing.T, repo *GitRepo, branch string, expected []string) {
	t.Helper()

	output, err := repo.RunGitCommandAndGetOutput("log", "--format=%s", branch)
	require.NoError(t, err, "Failed to list commits")

	subjects := splitLines(output)
	if len(subjects) < len(expected) {
		require.Fail(t, "Not enough commits", "Expected %d commits, got %d", len(expected), len(subjects))
		return
	}

	require.Equal(t, expected, subjects[:len(expected)], "Commits do not match")
}

// ExpectCommitMessageContains asserts that the message of rev contains every fragment.
func ExpectCommitMessageContains(t *testing.T, repo *GitRepo, rev string, fragments ...string) {
	t.Helper()

	message, err := repo.CommitMessage(rev)
	require.NoError(t, err, "Failed to read commit message")
	for _, fragment := range fragments {
		require.True(t, strings.Contains(message, fragment), "commit %s message %q lacks %q", rev, message, fragment)
	}
}
