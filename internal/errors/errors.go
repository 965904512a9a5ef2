// Package errors provides sentinel errors and custom error types for the backport application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrNotARepository indicates the working directory is not inside a git repository
	ErrNotARepository = errors.New("not a git repository")

	// ErrNotOnBranch indicates that HEAD is not on a branch
	ErrNotOnBranch = errors.New("not on a branch")

	// ErrBranchNotFound indicates that a branch does not exist
	ErrBranchNotFound = errors.New("branch not found")

	// ErrBranchExists indicates that a branch which must be created fresh already exists
	ErrBranchExists = errors.New("branch already exists")

	// ErrNamingConvention indicates the current branch matches no known naming convention
	ErrNamingConvention = errors.New("branch naming convention mismatch")

	// ErrUser indicates invalid or missing operator input
	ErrUser = errors.New("invalid usage")

	// ErrDiscovery indicates candidate discovery could not list commits
	ErrDiscovery = errors.New("candidate discovery failed")

	// ErrFastForward indicates a branch could not be fast-forwarded to its remote
	ErrFastForward = errors.New("fast-forward failed")

	// ErrRebaseConflict indicates that a rebase operation encountered a conflict
	ErrRebaseConflict = errors.New("rebase conflict")

	// ErrCherryPickConflict indicates a cherry-pick stopped on a conflict
	ErrCherryPickConflict = errors.New("cherry-pick conflict")

	// ErrDirtyTree is the workflow precondition warning for a working tree with local changes.
	// It is only returned when the strict clean-tree policy is active.
	ErrDirtyTree = errors.New("working tree is not clean")

	// ErrPatchFetch indicates a patch could not be downloaded
	ErrPatchFetch = errors.New("patch fetch failed")
)

// UserError reports missing or conflicting operator input.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// Is returns true if the target error is ErrUser
func (e *UserError) Is(target error) bool {
	return target == ErrUser
}

// NewUserError creates a new UserError
func NewUserError(format string, args ...interface{}) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// NamingConventionError is returned when a branch name is neither stable/<N> nor stable/mfc<N>
type NamingConventionError struct {
	BranchName string
}

func (e *NamingConventionError) Error() string {
	return fmt.Sprintf("branch %q is neither stable/<N> nor stable/mfc<N>", e.BranchName)
}

// Is returns true if the target error is ErrNamingConvention or ErrUser
func (e *NamingConventionError) Is(target error) bool {
	return target == ErrNamingConvention || target == ErrUser
}

// NewNamingConventionError creates a new NamingConventionError
func NewNamingConventionError(branchName string) *NamingConventionError {
	return &NamingConventionError{BranchName: branchName}
}

// BranchNotFoundError represents an error when a branch is not found
type BranchNotFoundError struct {
	BranchName string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %s does not exist", e.BranchName)
}

// Is returns true if the target error is ErrBranchNotFound
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrBranchNotFound
}

// NewBranchNotFoundError creates a new BranchNotFoundError
func NewBranchNotFoundError(branchName string) *BranchNotFoundError {
	return &BranchNotFoundError{BranchName: branchName}
}

// BranchExistsError is returned when a branch that must be created fresh already exists
type BranchExistsError struct {
	BranchName string
}

func (e *BranchExistsError) Error() string {
	return fmt.Sprintf("branch %s already exists (use --force to replace it)", e.BranchName)
}

// Is returns true if the target error is ErrBranchExists or ErrUser
func (e *BranchExistsError) Is(target error) bool {
	return target == ErrBranchExists || target == ErrUser
}

// NewBranchExistsError creates a new BranchExistsError
func NewBranchExistsError(branchName string) *BranchExistsError {
	return &BranchExistsError{BranchName: branchName}
}

// DiscoveryError wraps the failure of the commit listing step of candidate discovery
type DiscoveryError struct {
	Source string
	Target string
	Err    error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("failed to list candidates from %s for %s: %v", e.Source, e.Target, e.Err)
}

// Is returns true if the target error is ErrDiscovery
func (e *DiscoveryError) Is(target error) bool {
	return target == ErrDiscovery
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// NewDiscoveryError creates a new DiscoveryError
func NewDiscoveryError(source, target string, err error) *DiscoveryError {
	return &DiscoveryError{Source: source, Target: target, Err: err}
}

// FastForwardError is returned when a local branch has diverged from its remote
type FastForwardError struct {
	BranchName string
	Remote     string
	Err        error
}

func (e *FastForwardError) Error() string {
	return fmt.Sprintf("cannot fast-forward %s to %s/%s; the local branch has diverged", e.BranchName, e.Remote, e.BranchName)
}

// Is returns true if the target error is ErrFastForward
func (e *FastForwardError) Is(target error) bool {
	return target == ErrFastForward
}

func (e *FastForwardError) Unwrap() error {
	return e.Err
}

// NewFastForwardError creates a new FastForwardError
func NewFastForwardError(branchName, remote string, err error) *FastForwardError {
	return &FastForwardError{BranchName: branchName, Remote: remote, Err: err}
}

// RebaseConflictError represents an error when a rebase encounters a conflict
type RebaseConflictError struct {
	BranchName string
	Message    string
}

func (e *RebaseConflictError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("rebase conflict on branch %s: %s", e.BranchName, e.Message)
	}
	return fmt.Sprintf("rebase conflict on branch %s", e.BranchName)
}

// Is returns true if the target error is ErrRebaseConflict
func (e *RebaseConflictError) Is(target error) bool {
	return target == ErrRebaseConflict
}

// NewRebaseConflictError creates a new RebaseConflictError
func NewRebaseConflictError(branchName string, message string) *RebaseConflictError {
	return &RebaseConflictError{
		BranchName: branchName,
		Message:    message,
	}
}

// CherryPickConflictError is returned when replaying a commit fails.
// Commits replayed before it stay applied.
type CherryPickConflictError struct {
	Commit  string
	Applied []string
	Err     error
}

func (e *CherryPickConflictError) Error() string {
	msg := fmt.Sprintf("cherry-pick of %s failed", e.Commit)
	if len(e.Applied) > 0 {
		msg += fmt.Sprintf(" (already applied: %s)", strings.Join(e.Applied, ", "))
	}
	return msg
}

// Is returns true if the target error is ErrCherryPickConflict
func (e *CherryPickConflictError) Is(target error) bool {
	return target == ErrCherryPickConflict
}

func (e *CherryPickConflictError) Unwrap() error {
	return e.Err
}

// NewCherryPickConflictError creates a new CherryPickConflictError
func NewCherryPickConflictError(commit string, applied []string, err error) *CherryPickConflictError {
	return &CherryPickConflictError{Commit: commit, Applied: applied, Err: err}
}

// PatchFetchError is returned when a pull request patch cannot be retrieved
type PatchFetchError struct {
	URL string
	Err error
}

func (e *PatchFetchError) Error() string {
	return fmt.Sprintf("failed to fetch patch from %s: %v", e.URL, e.Err)
}

// Is returns true if the target error is ErrPatchFetch
func (e *PatchFetchError) Is(target error) bool {
	return target == ErrPatchFetch
}

func (e *PatchFetchError) Unwrap() error {
	return e.Err
}

// NewPatchFetchError creates a new PatchFetchError
func NewPatchFetchError(url string, err error) *PatchFetchError {
	return &PatchFetchError{URL: url, Err: err}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}

// IsUserError reports whether err stems from operator input rather than a tool failure
func IsUserError(err error) bool {
	return errors.Is(err, ErrUser)
}
