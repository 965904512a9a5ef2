package cli_test

import (
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/require"

	"backport.dev/backport/internal/actions/mfc"
	"backport.dev/backport/testhelpers"
)

// stableSceneSetup gives main two fixes that stable/14 lacks and checks out stable/14
func stableSceneSetup(s *testhelpers.Scene) error {
	if err := testhelpers.StableBranchSetup(s); err != nil {
		return err
	}
	for _, name := range []string{"vm", "net"} {
		if _, err := s.Repo.CommitFile(filepath.Join("sys", name, "fix.c"), name, name+": fix leak"); err != nil {
			return err
		}
	}
	return s.Repo.CheckoutBranch("stable/14")
}

func TestMfcCommand(t *testing.T) {
	t.Parallel()
	binaryPath := getBackportBinary(t)

	t.Run("lists candidates without touching branches", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, stableSceneSetup)

		output, err := scene.Repo.RunCliCommand(binaryPath, "mfc", "--list")
		require.NoError(t, err, output)
		require.Contains(t, output, "vm: fix leak")
		require.Contains(t, output, "net: fix leak")
		testhelpers.ExpectBranches(t, scene.Repo, []string{"main", "stable/14"})
	})

	t.Run("no commits only prepares the working branch", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, stableSceneSetup)

		output, err := scene.Repo.RunCliCommand(binaryPath, "mfc")
		require.NoError(t, err, output)
		require.Contains(t, output, "nothing to merge")
		require.NotContains(t, output, "vm: fix leak")
		testhelpers.ExpectBranches(t, scene.Repo, []string{"main", "stable/14", "stable/mfc14"})

		help, err := scene.Repo.RunCliCommand(binaryPath, "mfc", "--help")
		require.NoError(t, err, help)
		require.Contains(t, help, "Use --list to")
	})

	t.Run("yaml report", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, stableSceneSetup)

		cmd := exec.Command(binaryPath, "mfc", "--list", "--yaml", "--path", "sys/net")
		cmd.Dir = scene.Dir
		cmd.Env = append(cmd.Environ(), "BACKPORT_NO_INTERACTIVE=1", "NO_COLOR=1")
		stdout, err := cmd.Output()
		require.NoError(t, err)

		var report mfc.CandidateReport
		require.NoError(t, yaml.Unmarshal(stdout, &report), string(stdout))
		require.Equal(t, "main", report.Source)
		require.Equal(t, "stable/14", report.Target)
		require.Len(t, report.Candidates, 1)
		require.Equal(t, "net: fix leak", report.Candidates[0].Subject)
		require.Equal(t, testhelpers.Must(scene.Repo.GetRevision("main")), report.Candidates[0].SHA)
	})

	t.Run("merges an explicit commit onto a new working branch", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, stableSceneSetup)
		vm := testhelpers.Must(scene.Repo.GetRevision("main~1"))

		output, err := scene.Repo.RunCliCommand(binaryPath, "mfc", vm)
		require.NoError(t, err, output)

		current := testhelpers.Must(scene.Repo.CurrentBranchName())
		require.Equal(t, "stable/mfc14", current)
		testhelpers.ExpectCommits(t, scene.Repo, "stable/mfc14", []string{"vm: fix leak", "1"})
		testhelpers.ExpectCommitMessageContains(t, scene.Repo, "stable/mfc14", "(cherry picked from commit "+vm+")")

		// The merged commit is no longer offered
		output, err = scene.Repo.RunCliCommand(binaryPath, "mfc", "--list")
		require.NoError(t, err, output)
		require.NotContains(t, output, "vm: fix leak")
		require.Contains(t, output, "net: fix leak")
	})

	t.Run("replays all candidates with --yes", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, stableSceneSetup)

		output, err := scene.Repo.RunCliCommand(binaryPath, "mfc", "--candidates", "--yes")
		require.NoError(t, err, output)
		testhelpers.ExpectCommits(t, scene.Repo, "stable/mfc14", []string{"net: fix leak", "vm: fix leak", "1"})
	})

	t.Run("candidates need confirmation outside a terminal", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, stableSceneSetup)

		output, err := scene.Repo.RunCliCommand(binaryPath, "mfc", "--candidates")
		require.Error(t, err)
		require.Contains(t, output, "--yes")
		testhelpers.ExpectCommits(t, scene.Repo, "stable/mfc14", []string{"1"})
	})

	t.Run("skipped commits are not offered", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, stableSceneSetup)
		net := testhelpers.Must(scene.Repo.GetRevision("main"))

		output, err := scene.Repo.RunCliCommand(binaryPath, "mfc", "--skip", net[:12])
		require.NoError(t, err, output)

		output, err = scene.Repo.RunCliCommand(binaryPath, "mfc", "--list")
		require.NoError(t, err, output)
		require.Contains(t, output, "vm: fix leak")
		require.NotContains(t, output, "net: fix leak")
	})

	t.Run("update fast-forwards stable from the remote", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, func(s *testhelpers.Scene) error {
			if err := stableSceneSetup(s); err != nil {
				return err
			}
			if err := s.Repo.CreateChangeAndCommit("security fix", "sa"); err != nil {
				return err
			}
			if err := s.Repo.PushBranch("origin", "stable/14"); err != nil {
				return err
			}
			return s.Repo.RunGitCommand("reset", "--hard", "HEAD~1")
		})

		output, err := scene.Repo.RunCliCommand(binaryPath, "mfc", "--update")
		require.NoError(t, err, output)
		testhelpers.ExpectCommits(t, scene.Repo, "stable/14", []string{"security fix"})
		testhelpers.ExpectBranches(t, scene.Repo, []string{"main", "stable/14"})
	})

	t.Run("rejects branches outside the naming convention", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, stableSceneSetup)
		require.NoError(t, scene.Repo.CheckoutBranch("main"))

		output, err := scene.Repo.RunCliCommand(binaryPath, "mfc", "--list")
		require.Error(t, err)
		var exitErr *exec.ExitError
		require.ErrorAs(t, err, &exitErr)
		require.Equal(t, 1, exitErr.ExitCode())
		require.Contains(t, output, "stable/<N>")
	})

	t.Run("rejects conflicting options", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewSceneParallel(t, stableSceneSetup)

		output, err := scene.Repo.RunCliCommand(binaryPath, "mfc", "--yaml")
		require.Error(t, err)
		require.Contains(t, output, "--yaml requires --list")
	})
}

func TestMfcCommitsFromStdin(t *testing.T) {
	t.Parallel()
	binaryPath := getBackportBinary(t)
	scene := testhelpers.NewSceneParallel(t, stableSceneSetup)

	log, err := scene.Repo.RunGitCommandAndGetOutput("log", "--reverse", "--format=%H", "stable/14..main")
	require.NoError(t, err)

	cmd := exec.Command(binaryPath, "mfc", "-")
	cmd.Dir = scene.Dir
	cmd.Env = append(cmd.Environ(), "GIT_CONFIG_GLOBAL=/dev/null", "BACKPORT_NO_INTERACTIVE=1", "NO_COLOR=1")
	cmd.Stdin = strings.NewReader(log + "\n")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))

	testhelpers.ExpectCommits(t, scene.Repo, "stable/mfc14", []string{"net: fix leak", "vm: fix leak", "1"})
}
