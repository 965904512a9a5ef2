package git_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	backporterrors "backport.dev/backport/internal/errors"
	"backport.dev/backport/internal/git"
	"backport.dev/backport/testhelpers"
)

func newRunner(t *testing.T, scene *testhelpers.Scene) git.Runner {
	t.Helper()
	runner, err := git.NewRealRunner(scene.Dir)
	require.NoError(t, err)
	return runner
}

// mainlineSetup leaves stable/14 at the first commit and main three commits ahead
func mainlineSetup(s *testhelpers.Scene) error {
	if err := testhelpers.BasicSceneSetup(s); err != nil {
		return err
	}
	if err := s.Repo.CreateBranch("stable/14"); err != nil {
		return err
	}
	for _, name := range []string{"a", "b", "c"} {
		if _, err := s.Repo.CommitFile(filepath.Join("sys", name+".c"), name, "fix "+name); err != nil {
			return err
		}
	}
	return nil
}

func TestNewRealRunner(t *testing.T) {
	t.Parallel()

	t.Run("resolves root and git dir from a subdirectory", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, testhelpers.BasicSceneSetup)
		require.NoError(t, os.MkdirAll(filepath.Join(scene.Dir, "sys", "kern"), 0750))

		runner, err := git.NewRealRunner(filepath.Join(scene.Dir, "sys", "kern"))
		require.NoError(t, err)
		require.Equal(t, scene.Dir, runner.RepoRoot())
		require.Equal(t, filepath.Join(scene.Dir, ".git"), runner.GitDir())
	})

	t.Run("outside a repository", func(t *testing.T) {
		t.Parallel()
		_, err := git.NewRealRunner(t.TempDir())
		require.ErrorIs(t, err, backporterrors.ErrNotARepository)
	})
}

func TestBranchProbes(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.StableBranchSetup)
	runner := newRunner(t, scene)
	ctx := context.Background()

	current, err := runner.CurrentBranch(ctx)
	require.NoError(t, err)
	require.Equal(t, "main", current)

	require.True(t, runner.BranchExists(ctx, "stable/14"))
	require.False(t, runner.BranchExists(ctx, "stable/mfc14"))
	require.True(t, runner.RemoteBranchExists(ctx, "origin", "stable/14"))
	require.False(t, runner.RemoteBranchExists(ctx, "origin", "stable/13"))

	expected, err := scene.Repo.GetRevision("stable/14")
	require.NoError(t, err)
	rev, err := runner.Revision(ctx, "stable/14")
	require.NoError(t, err)
	require.Equal(t, expected, rev)

	_, err = runner.Revision(ctx, "stable/13")
	require.ErrorIs(t, err, backporterrors.ErrBranchNotFound)

	require.NoError(t, scene.Repo.RunGitCommand("checkout", "--detach", "HEAD"))
	_, err = runner.CurrentBranch(ctx)
	require.ErrorIs(t, err, backporterrors.ErrNotOnBranch)
}

func TestListCherryPickCandidates(t *testing.T) {
	t.Parallel()

	t.Run("skips patch-equivalent commits and keeps order", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, mainlineSetup)
		runner := newRunner(t, scene)
		ctx := context.Background()

		a := testhelpers.Must(scene.Repo.GetRevision("main~2"))
		b := testhelpers.Must(scene.Repo.GetRevision("main~1"))
		c := testhelpers.Must(scene.Repo.GetRevision("main"))

		candidates, err := runner.ListCherryPickCandidates(ctx, "main", "stable/14", nil)
		require.NoError(t, err)
		require.Equal(t, []string{a, b, c}, candidates)

		// A plain cherry-pick has a new hash but the same patch id
		require.NoError(t, scene.Repo.CheckoutBranch("stable/14"))
		require.NoError(t, scene.Repo.RunGitCommand("cherry-pick", b))

		candidates, err = runner.ListCherryPickCandidates(ctx, "main", "stable/14", nil)
		require.NoError(t, err)
		require.Equal(t, []string{a, c}, candidates)
	})

	t.Run("path scope", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, func(s *testhelpers.Scene) error {
			if err := mainlineSetup(s); err != nil {
				return err
			}
			_, err := s.Repo.CommitFile(filepath.Join("usr.bin", "grep.c"), "grep", "grep: fix")
			return err
		})
		runner := newRunner(t, scene)

		candidates, err := runner.ListCherryPickCandidates(context.Background(), "main", "stable/14", []string{"usr.bin"})
		require.NoError(t, err)
		require.Equal(t, []string{testhelpers.Must(scene.Repo.GetRevision("main"))}, candidates)
	})

	t.Run("unknown branch", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, mainlineSetup)
		runner := newRunner(t, scene)

		_, err := runner.ListCherryPickCandidates(context.Background(), "main", "stable/13", nil)
		var cmdErr *backporterrors.GitCommandError
		require.ErrorAs(t, err, &cmdErr)
	})
}

func TestCherryPickAndSearchLog(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, mainlineSetup)
	runner := newRunner(t, scene)
	ctx := context.Background()

	a := testhelpers.Must(scene.Repo.GetRevision("main~2"))
	require.NoError(t, runner.CheckoutNewBranch(ctx, "stable/mfc14", "stable/14"))
	require.NoError(t, runner.CherryPick(ctx, a, git.CherryPickRecordProvenance))

	date := time.Date(2026, time.March, 14, 15, 9, 26, 0, time.UTC)
	require.NoError(t, runner.AmendDate(ctx, date))

	testhelpers.ExpectCommits(t, scene.Repo, "stable/mfc14", []string{"fix a", "1"})
	testhelpers.ExpectCommitMessageContains(t, scene.Repo, "HEAD", "(cherry picked from commit "+a+")")

	authorDate, err := scene.Repo.RunGitCommandAndGetOutput("log", "-1", "--format=%aI")
	require.NoError(t, err)
	parsed, err := time.Parse(time.RFC3339, authorDate)
	require.NoError(t, err)
	require.True(t, date.Equal(parsed), "author date %s", authorDate)

	hits, err := runner.SearchLog(ctx, a, "main..stable/mfc14")
	require.NoError(t, err)
	require.Len(t, hits, 1)

	hits, err = runner.SearchLog(ctx, testhelpers.Must(scene.Repo.GetRevision("main~1")), "main..stable/mfc14")
	require.NoError(t, err)
	require.Empty(t, hits)

	info, err := runner.CommitInfo(ctx, "HEAD")
	require.NoError(t, err)
	require.Equal(t, "fix a", info.Subject)
	require.Equal(t, "Test User", info.Author)
}

func TestCherryPickConflict(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, func(s *testhelpers.Scene) error {
		if err := mainlineSetup(s); err != nil {
			return err
		}
		if err := s.Repo.CheckoutBranch("stable/14"); err != nil {
			return err
		}
		_, err := s.Repo.CommitFile(filepath.Join("sys", "a.c"), "stable only", "stable: diverge")
		return err
	})
	runner := newRunner(t, scene)

	err := runner.CherryPick(context.Background(), testhelpers.Must(scene.Repo.GetRevision("main~2")), git.CherryPickRecordProvenance)
	var cmdErr *backporterrors.GitCommandError
	require.ErrorAs(t, err, &cmdErr)
}

func TestFetchAndFastForward(t *testing.T) {
	t.Parallel()

	setup := func(s *testhelpers.Scene) error {
		if err := testhelpers.StableBranchSetup(s); err != nil {
			return err
		}
		if err := s.Repo.CheckoutBranch("stable/14"); err != nil {
			return err
		}
		if err := s.Repo.CreateChangeAndCommit("upstream", "upstream"); err != nil {
			return err
		}
		if err := s.Repo.PushBranch("origin", "stable/14"); err != nil {
			return err
		}
		// Local stable falls one commit behind origin
		return s.Repo.RunGitCommand("reset", "--hard", "HEAD~1")
	}

	t.Run("advances to the remote tip", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, setup)
		runner := newRunner(t, scene)
		ctx := context.Background()

		require.NoError(t, runner.Fetch(ctx, "origin"))
		require.NoError(t, runner.FastForward(ctx, "origin/stable/14"))
		require.Equal(t,
			testhelpers.Must(scene.Repo.GetRevision("origin/stable/14")),
			testhelpers.Must(scene.Repo.GetRevision("stable/14")))
	})

	t.Run("refuses to merge diverged history", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, setup)
		require.NoError(t, scene.Repo.CreateChangeAndCommit("local", "local"))
		runner := newRunner(t, scene)
		ctx := context.Background()

		before := testhelpers.Must(scene.Repo.GetRevision("stable/14"))
		require.Error(t, runner.FastForward(ctx, "origin/stable/14"))
		require.Equal(t, before, testhelpers.Must(scene.Repo.GetRevision("stable/14")))
	})

	t.Run("unknown remote", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, setup)
		runner := newRunner(t, scene)

		require.Error(t, runner.Fetch(context.Background(), "upstream"))
	})
}

func TestRebaseWithTrailers(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, func(s *testhelpers.Scene) error {
		if err := testhelpers.BasicSceneSetup(s); err != nil {
			return err
		}
		if err := s.Repo.CreateAndCheckoutBranch("PR-1234"); err != nil {
			return err
		}
		if err := s.Repo.CreateChangeAndCommit("first", "pr1"); err != nil {
			return err
		}
		if err := s.Repo.CreateChangeAndCommit("second", "pr2"); err != nil {
			return err
		}
		if err := s.Repo.CheckoutBranch("main"); err != nil {
			return err
		}
		return s.Repo.CreateChangeAndCommit("mainline moved", "main")
	})
	runner := newRunner(t, scene)
	ctx := context.Background()

	opts := git.RebaseOptions{
		Onto:   "main",
		Branch: "PR-1234",
		Exec: git.AmendTrailersCommand([]string{
			"Reviewed-by: Jane Doe <jane@example.org>",
			"Pull-Request: https://github.com/owner/repo/pull/1234",
		}),
		Interactive: true,
	}
	require.NoError(t, runner.Rebase(ctx, opts))
	// A second pass must not duplicate the trailers
	require.NoError(t, runner.Rebase(ctx, opts))

	testhelpers.ExpectCommits(t, scene.Repo, "PR-1234", []string{"second", "first", "mainline moved"})
	for _, rev := range []string{"PR-1234", "PR-1234~1"} {
		message := testhelpers.Must(scene.Repo.CommitMessage(rev))
		require.Equal(t, 1, strings.Count(message, "Reviewed-by: Jane Doe <jane@example.org>"), message)
		require.Equal(t, 1, strings.Count(message, "Pull-Request: https://github.com/owner/repo/pull/1234"), message)
	}
	require.False(t, scene.Repo.RebaseInProgress())
}

func TestRebaseConflict(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, func(s *testhelpers.Scene) error {
		if err := testhelpers.BasicSceneSetup(s); err != nil {
			return err
		}
		if err := s.Repo.CreateAndCheckoutBranch("stable/mfc14"); err != nil {
			return err
		}
		if _, err := s.Repo.CommitFile("shared.c", "working", "working change"); err != nil {
			return err
		}
		if err := s.Repo.CheckoutBranch("main"); err != nil {
			return err
		}
		_, err := s.Repo.CommitFile("shared.c", "mainline", "mainline change")
		return err
	})
	runner := newRunner(t, scene)

	err := runner.Rebase(context.Background(), git.RebaseOptions{Onto: "main", Branch: "stable/mfc14"})
	require.ErrorIs(t, err, backporterrors.ErrRebaseConflict)
	require.True(t, scene.Repo.RebaseInProgress())
}

func TestApplyPatch(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, func(s *testhelpers.Scene) error {
		if err := testhelpers.BasicSceneSetup(s); err != nil {
			return err
		}
		if err := s.Repo.CreateAndCheckoutBranch("contributor"); err != nil {
			return err
		}
		_, err := s.Repo.CommitFile("README", "hello", "add readme")
		return err
	})
	patch, err := scene.Repo.RunGitCommandAndGetOutput("format-patch", "-1", "--stdout", "contributor")
	require.NoError(t, err)
	patchPath := filepath.Join(t.TempDir(), "1234.patch")
	require.NoError(t, os.WriteFile(patchPath, []byte(patch+"\n"), 0600))

	runner := newRunner(t, scene)
	ctx := context.Background()
	require.NoError(t, runner.CheckoutNewBranch(ctx, "PR-1234", "main"))
	require.NoError(t, runner.ApplyPatch(ctx, patchPath))

	testhelpers.ExpectCommits(t, scene.Repo, "PR-1234", []string{"add readme", "1"})
}

func TestCherryPickRangeFastForward(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, func(s *testhelpers.Scene) error {
		if err := testhelpers.BasicSceneSetup(s); err != nil {
			return err
		}
		if err := s.Repo.CreateAndCheckoutBranch("PR-1234"); err != nil {
			return err
		}
		if err := s.Repo.CreateChangeAndCommit("first", "pr1"); err != nil {
			return err
		}
		return s.Repo.CreateChangeAndCommit("second", "pr2")
	})
	runner := newRunner(t, scene)
	ctx := context.Background()

	require.NoError(t, runner.Checkout(ctx, "main"))
	require.NoError(t, runner.CherryPickRange(ctx, "main..PR-1234", git.CherryPickFastForward))

	// Fast-forwarded picks keep the original hashes
	require.Equal(t,
		testhelpers.Must(scene.Repo.GetRevision("PR-1234")),
		testhelpers.Must(scene.Repo.GetRevision("main")))
}

func TestTreeStatusAndBranchDeletion(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.BasicSceneSetup)
	runner := newRunner(t, scene)
	ctx := context.Background()

	clean, err := runner.IsTreeClean(ctx)
	require.NoError(t, err)
	require.True(t, clean)

	require.NoError(t, scene.Repo.WriteFile("1_test.txt", "edited"))
	clean, err = runner.IsTreeClean(ctx)
	require.NoError(t, err)
	require.False(t, clean)

	// Untracked files do not count
	require.NoError(t, scene.Repo.RunGitCommand("checkout", "--", "1_test.txt"))
	require.NoError(t, scene.Repo.WriteFile("scratch.txt", "notes"))
	clean, err = runner.IsTreeClean(ctx)
	require.NoError(t, err)
	require.True(t, clean)

	require.NoError(t, scene.Repo.CreateBranch("PR-1"))
	require.NoError(t, runner.DeleteBranch(ctx, "PR-1"))
	testhelpers.ExpectBranches(t, scene.Repo, []string{"main"})
}

func TestConfigValueAndIdentity(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.BasicSceneSetup)
	runner := newRunner(t, scene)
	ctx := context.Background()

	value, err := runner.ConfigValue(ctx, "user.email")
	require.NoError(t, err)
	require.Equal(t, "test@example.com", value)

	_, err = runner.ConfigValue(ctx, "backport.unset")
	require.Error(t, err)

	require.Equal(t, "Test User <test@example.com>", git.Identity(ctx, runner))
}

func TestAmendTrailersCommand(t *testing.T) {
	t.Parallel()

	command := git.AmendTrailersCommand([]string{"Reviewed-by: O'Brien <ob@example.org>"})
	require.Equal(t,
		`git -c trailer.ifexists=addIfDifferent commit --amend --no-edit --trailer 'Reviewed-by: O'\''Brien <ob@example.org>'`,
		command)
}
