package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const textFileName = "test.txt"

// GitRepo represents a Git repository for testing purposes.
type GitRepo struct {
	Dir string
}

// NewGitRepo initializes a new Git repository with a main branch in the specified directory.
func NewGitRepo(dir string) (*GitRepo, error) {
	repo := &GitRepo{Dir: dir}

	// Use git -c flags to avoid reading global config
	cmd := exec.Command("git", "-c", "init.defaultBranch=main", "-c", "core.autocrlf=false", "init", dir, "-b", "main")
	cmd.Env = gitEnv()
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to init repo: %w", err)
	}

	// Configure Git user (required for commits)
	if err := repo.RunGitCommand("config", "user.name", "Test User"); err != nil {
		return nil, err
	}
	if err := repo.RunGitCommand("config", "user.email", "test@example.com"); err != nil {
		return nil, err
	}

	return repo, nil
}

// gitEnv keeps the developer's global git config out of tests
func gitEnv() []string {
	return append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
}

// RunGitCommand executes a git command in the repository directory.
func (r *GitRepo) RunGitCommand(args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = gitEnv()
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s failed: %w, output: %s", strings.Join(args, " "), err, string(output))
	}
	return nil
}

// RunGitCommandAndGetOutput executes a git command and returns its trimmed output.
func (r *GitRepo) RunGitCommandAndGetOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = gitEnv()
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(output)), nil
}

// RunCliCommand runs the backport binary in the repository directory and returns its combined output.
func (r *GitRepo) RunCliCommand(binaryPath string, args ...string) (string, error) {
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = r.Dir
	cmd.Env = append(gitEnv(), "BACKPORT_NO_INTERACTIVE=1", "NO_COLOR=1")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// WriteFile writes content to a path relative to the repository root without staging it.
func (r *GitRepo) WriteFile(relPath, content string) error {
	filePath := filepath.Join(r.Dir, relPath)
	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// CommitFile writes relPath and commits it with message, returning the new commit hash.
func (r *GitRepo) CommitFile(relPath, content, message string) (string, error) {
	if err := r.WriteFile(relPath, content); err != nil {
		return "", err
	}
	if err := r.RunGitCommand("add", relPath); err != nil {
		return "", err
	}
	if err := r.RunGitCommand("commit", "-m", message); err != nil {
		return "", err
	}
	return r.GetRevision("HEAD")
}

// CreateChangeAndCommit creates a file change and commits it.
func (r *GitRepo) CreateChangeAndCommit(textValue string, prefix string) error {
	fileName := textFileName
	if prefix != "" {
		fileName = prefix + "_" + fileName
	}
	_, err := r.CommitFile(fileName, textValue, textValue)
	return err
}

// CreateBranch creates a new branch without checking it out.
func (r *GitRepo) CreateBranch(name string) error {
	return r.RunGitCommand("branch", name)
}

// CreateAndCheckoutBranch creates and checks out a new branch.
func (r *GitRepo) CreateAndCheckoutBranch(name string) error {
	return r.RunGitCommand("checkout", "-b", name)
}

// CheckoutBranch checks out a branch.
func (r *GitRepo) CheckoutBranch(name string) error {
	return r.RunGitCommand("checkout", name)
}

// CherryPickWithProvenance cherry-picks commit with -x onto the current branch.
func (r *GitRepo) CherryPickWithProvenance(commit string) error {
	return r.RunGitCommand("cherry-pick", "-x", commit)
}

// CurrentBranchName returns the name of the current branch.
func (r *GitRepo) CurrentBranchName() (string, error) {
	return r.RunGitCommandAndGetOutput("branch", "--show-current")
}

// CreateBareRemote creates a bare git repository next to the work tree and adds it as a remote.
// Returns the path to the bare repository.
func (r *GitRepo) CreateBareRemote(name string) (string, error) {
	bareDir := r.Dir + "-" + name + ".git"

	cmd := exec.Command("git", "init", "--bare", bareDir)
	cmd.Env = gitEnv()
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to create bare repo: %w", err)
	}

	if err := r.RunGitCommand("remote", "add", name, bareDir); err != nil {
		return "", fmt.Errorf("failed to add remote: %w", err)
	}

	return bareDir, nil
}

// PushBranch pushes a branch to a remote.
func (r *GitRepo) PushBranch(remote, branch string) error {
	return r.RunGitCommand("push", "-u", remote, branch)
}

// GetRevision returns the SHA of a revision (branch, tag, or commit reference).
func (r *GitRepo) GetRevision(rev string) (string, error) {
	return r.RunGitCommandAndGetOutput("rev-parse", rev)
}

// CommitMessage returns the full message of a revision.
func (r *GitRepo) CommitMessage(rev string) (string, error) {
	return r.RunGitCommandAndGetOutput("log", "-1", "--format=%B", rev)
}

// RebaseInProgress checks if a rebase is in progress.
func (r *GitRepo) RebaseInProgress() bool {
	_, err := os.Stat(filepath.Join(r.Dir, ".git", "rebase-merge"))
	return err == nil
}

// GetLocalBranches returns a list of all local branches.
func (r *GitRepo) GetLocalBranches() ([]string, error) {
	output, err := r.RunGitCommandAndGetOutput("branch", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	return splitLines(output), nil
}

// splitLines splits a string by newlines and returns non-empty lines.
func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
