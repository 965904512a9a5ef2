package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/filesystem"

	backporterrors "backport.dev/backport/internal/errors"
)

// Repository wraps a go-git repository
type Repository struct {
	*git.Repository
	root   string
	gitDir string
}

// OpenRepository opens the git repository containing path
func OpenRepository(path string) (*Repository, error) {
	// Resolve to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(absPath, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", backporterrors.ErrNotARepository, absPath, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	root := worktree.Filesystem.Root()

	gitDir := filepath.Join(root, ".git")
	if storage, ok := repo.Storer.(*filesystem.Storage); ok {
		gitDir = storage.Filesystem().Root()
	}

	return &Repository{
		Repository: repo,
		root:       root,
		gitDir:     gitDir,
	}, nil
}

// Root returns the top-level directory of the work tree
func (r *Repository) Root() string {
	return r.root
}

// GitDir returns the metadata directory of the repository
func (r *Repository) GitDir() string {
	return r.gitDir
}

// CurrentBranch returns the branch HEAD points at.
// It works on unborn branches and fails with ErrNotOnBranch on a detached HEAD.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", backporterrors.ErrNotOnBranch
	}
	return head.Target().Short(), nil
}

// HasReference reports whether the fully qualified reference exists
func (r *Repository) HasReference(name plumbing.ReferenceName) bool {
	_, err := r.Reference(name, true)
	return err == nil
}

// BranchExists reports whether a local branch exists
func (r *Repository) BranchExists(branchName string) bool {
	return r.HasReference(plumbing.NewBranchReferenceName(branchName))
}

// RemoteBranchExists reports whether a remote-tracking branch exists
func (r *Repository) RemoteBranchExists(remote, branchName string) bool {
	return r.HasReference(plumbing.NewRemoteReferenceName(remote, branchName))
}

// ResolveRevision resolves a revision expression to a full hash
func (r *Repository) ResolveRevision(rev string) (string, error) {
	hash, err := r.Repository.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", backporterrors.NewBranchNotFoundError(rev)
		}
		return "", fmt.Errorf("failed to resolve %s: %w", rev, err)
	}
	return hash.String(), nil
}

// CommitInfo loads author, date and subject of a commit
func (r *Repository) CommitInfo(rev string) (CommitInfo, error) {
	sha, err := r.ResolveRevision(rev)
	if err != nil {
		return CommitInfo{}, err
	}
	commit, err := r.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return CommitInfo{}, fmt.Errorf("failed to get commit %s: %w", sha, err)
	}
	subject := strings.TrimSpace(strings.SplitN(strings.TrimSpace(commit.Message), "\n", 2)[0])
	return CommitInfo{
		SHA:     sha,
		Author:  commit.Author.Name,
		Date:    commit.Author.When,
		Subject: subject,
	}, nil
}
