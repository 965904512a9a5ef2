package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	backporterrors "backport.dev/backport/internal/errors"
)

// DefaultCommandTimeout is the default timeout for git commands
const DefaultCommandTimeout = 5 * time.Minute

// CommandRunner handles execution of git commands
type CommandRunner struct {
	workingDir string
}

// NewCommandRunner creates a new CommandRunner
func NewCommandRunner(workingDir string) *CommandRunner {
	return &CommandRunner{workingDir: workingDir}
}

// Run executes a git command with the given context and returns the trimmed output
func (r *CommandRunner) Run(ctx context.Context, args ...string) (string, error) {
	return r.runInternal(ctx, nil, true, args...)
}

// RunWithEnv executes a git command with additional environment variables
func (r *CommandRunner) RunWithEnv(ctx context.Context, env []string, args ...string) (string, error) {
	return r.runInternal(ctx, env, true, args...)
}

// RunLines executes a git command and returns its output split into non-empty lines
func (r *CommandRunner) RunLines(ctx context.Context, args ...string) ([]string, error) {
	output, err := r.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	if output == "" {
		return []string{}, nil
	}
	lines := strings.Split(output, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			result = append(result, line)
		}
	}
	return result, nil
}

// runInternal is the internal implementation that handles directory and environment
func (r *CommandRunner) runInternal(ctx context.Context, env []string, trim bool, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// If no timeout/deadline is set in the context, add the default one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", backporterrors.NewGitCommandError("git", args, stdout.String(), stderr.String(), ctx.Err())
		}
		return "", backporterrors.NewGitCommandError("git", args, stdout.String(), stderr.String(), err)
	}
	if trim {
		return strings.TrimSpace(stdout.String()), nil
	}
	return stdout.String(), nil
}

// CherryPickMode selects how a commit is replayed
type CherryPickMode int

const (
	// CherryPickRecordProvenance keeps the original metadata and appends a
	// "(cherry picked from commit ...)" line
	CherryPickRecordProvenance CherryPickMode = iota
	// CherryPickFastForward fast-forwards when the parent already matches HEAD
	CherryPickFastForward
)

// RebaseOptions describes a rebase invocation
type RebaseOptions struct {
	// Onto is the upstream the branch is replayed onto
	Onto string
	// Branch is checked out before rebasing when set
	Branch string
	// Exec is run after every replayed commit (git rebase --exec)
	Exec string
	// Interactive runs an interactive rebase with the editors replaced by no-ops
	Interactive bool
}

// CommitInfo describes a single commit for reporting
type CommitInfo struct {
	SHA     string
	Author  string
	Date    time.Time
	Subject string
}

// Querier is the read-only half of the git interface.
// Implementations must not mutate the repository.
type Querier interface {
	// Repository layout
	RepoRoot() string
	GitDir() string

	// Branches and refs
	CurrentBranch(ctx context.Context) (string, error)
	BranchExists(ctx context.Context, branchName string) bool
	RemoteBranchExists(ctx context.Context, remote, branchName string) bool
	Revision(ctx context.Context, rev string) (string, error)

	// History
	ListCherryPickCandidates(ctx context.Context, source, target string, paths []string) ([]string, error)
	SearchLog(ctx context.Context, term, rangeSpec string) ([]string, error)
	CommitInfo(ctx context.Context, rev string) (CommitInfo, error)

	// Working tree and config
	IsTreeClean(ctx context.Context) (bool, error)
	ConfigValue(ctx context.Context, key string) (string, error)
}

// Mutator is the state-changing half of the git interface.
type Mutator interface {
	Fetch(ctx context.Context, remote string) error
	Checkout(ctx context.Context, branchName string) error
	CheckoutNewBranch(ctx context.Context, branchName, base string) error
	DeleteBranch(ctx context.Context, branchName string) error
	FastForward(ctx context.Context, remoteBranch string) error
	Rebase(ctx context.Context, opts RebaseOptions) error
	CherryPick(ctx context.Context, commit string, mode CherryPickMode) error
	CherryPickRange(ctx context.Context, rangeSpec string, mode CherryPickMode) error
	AmendDate(ctx context.Context, date time.Time) error
	ApplyPatch(ctx context.Context, path string) error
	SetGlobalAlias(ctx context.Context, name, command string) error
}

// Runner defines the interface for git operations used by the engine and workflows.
// This allows them to be used with both real git and mock implementations.
type Runner interface {
	Querier
	Mutator
}

// realRunner implements Runner with the git CLI for commands and go-git for ref probes
type realRunner struct {
	cmd  *CommandRunner
	repo *Repository
}

// NewRealRunner opens the repository containing dir and returns a Runner bound to it.
// It fails with ErrNotARepository when dir is not inside a git work tree.
func NewRealRunner(dir string) (Runner, error) {
	repo, err := OpenRepository(dir)
	if err != nil {
		return nil, err
	}
	return &realRunner{
		cmd:  NewCommandRunner(repo.Root()),
		repo: repo,
	}, nil
}

func (r *realRunner) RepoRoot() string {
	return r.repo.Root()
}

func (r *realRunner) GitDir() string {
	return r.repo.GitDir()
}
