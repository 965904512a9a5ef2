package testhelpers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	backporterrors "backport.dev/backport/internal/errors"
	"backport.dev/backport/internal/git"
)

// Call records a single invocation on a MockRunner
type Call struct {
	Method string
	Args   []string
}

// String renders the call as "Method arg1 arg2"
func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Method
	}
	return c.Method + " " + strings.Join(c.Args, " ")
}

// MockRunner is a scripted git.Runner that records every invocation.
// Branch state is simulated just enough for the workflows to make decisions.
type MockRunner struct {
	Root    string
	Dir     string
	Current string
	// Branches maps local branch names to their tip
	Branches map[string]string
	// RemoteBranches holds "remote/branch" names
	RemoteBranches map[string]bool
	// Candidates is returned by ListCherryPickCandidates
	Candidates []string
	// LogHits maps a search term to the commits whose message mention it
	LogHits map[string][]string
	// Infos maps revisions to commit details
	Infos map[string]git.CommitInfo
	// Dirty makes IsTreeClean report local changes
	Dirty bool
	// Config holds git config values
	Config map[string]string
	// Errors maps "Method" or "Method firstArg" to an error to return
	Errors map[string]error

	Calls []Call
}

// NewMockRunner creates a MockRunner rooted at dir with the given branches checked in
func NewMockRunner(dir string, current string, branches ...string) *MockRunner {
	m := &MockRunner{
		Root:           dir,
		Dir:            filepath.Join(dir, ".git"),
		Current:        current,
		Branches:       make(map[string]string),
		RemoteBranches: make(map[string]bool),
		LogHits:        make(map[string][]string),
		Infos:          make(map[string]git.CommitInfo),
		Config:         make(map[string]string),
		Errors:         make(map[string]error),
	}
	for i, b := range branches {
		m.Branches[b] = fmt.Sprintf("%040x", i+1)
	}
	// State files (config, skip list, cache) are written below the git dir
	_ = os.MkdirAll(m.Dir, 0750)
	return m
}

var _ git.Runner = (*MockRunner)(nil)

func (m *MockRunner) record(method string, args ...string) error {
	m.Calls = append(m.Calls, Call{Method: method, Args: args})
	if len(args) > 0 {
		if err, ok := m.Errors[method+" "+args[0]]; ok {
			return err
		}
	}
	return m.Errors[method]
}

// CallsTo returns the recorded calls of one method
func (m *MockRunner) CallsTo(method string) []Call {
	var calls []Call
	for _, c := range m.Calls {
		if c.Method == method {
			calls = append(calls, c)
		}
	}
	return calls
}

// CallNames returns the recorded calls rendered with Call.String, skipping read-only queries
func (m *MockRunner) CallNames() []string {
	queries := []string{"CurrentBranch", "BranchExists", "RemoteBranchExists", "Revision",
		"ListCherryPickCandidates", "SearchLog", "CommitInfo", "IsTreeClean", "ConfigValue"}
	var names []string
	for _, c := range m.Calls {
		if slices.Contains(queries, c.Method) {
			continue
		}
		names = append(names, c.String())
	}
	return names
}

func (m *MockRunner) RepoRoot() string { return m.Root }

func (m *MockRunner) GitDir() string { return m.Dir }

func (m *MockRunner) CurrentBranch(_ context.Context) (string, error) {
	if err := m.record("CurrentBranch"); err != nil {
		return "", err
	}
	if m.Current == "" {
		return "", backporterrors.ErrNotOnBranch
	}
	return m.Current, nil
}

func (m *MockRunner) BranchExists(_ context.Context, branchName string) bool {
	_ = m.record("BranchExists", branchName)
	_, ok := m.Branches[branchName]
	return ok
}

func (m *MockRunner) RemoteBranchExists(_ context.Context, remote, branchName string) bool {
	_ = m.record("RemoteBranchExists", remote, branchName)
	return m.RemoteBranches[remote+"/"+branchName]
}

func (m *MockRunner) Revision(_ context.Context, rev string) (string, error) {
	if err := m.record("Revision", rev); err != nil {
		return "", err
	}
	if sha, ok := m.Branches[rev]; ok {
		return sha, nil
	}
	return "", backporterrors.NewBranchNotFoundError(rev)
}

func (m *MockRunner) ListCherryPickCandidates(_ context.Context, source, target string, paths []string) ([]string, error) {
	if err := m.record("ListCherryPickCandidates", append([]string{source, target}, paths...)...); err != nil {
		return nil, err
	}
	return slices.Clone(m.Candidates), nil
}

func (m *MockRunner) SearchLog(_ context.Context, term, rangeSpec string) ([]string, error) {
	if err := m.record("SearchLog", term, rangeSpec); err != nil {
		return nil, err
	}
	return m.LogHits[term], nil
}

func (m *MockRunner) CommitInfo(_ context.Context, rev string) (git.CommitInfo, error) {
	if err := m.record("CommitInfo", rev); err != nil {
		return git.CommitInfo{}, err
	}
	if info, ok := m.Infos[rev]; ok {
		return info, nil
	}
	return git.CommitInfo{SHA: rev, Subject: "commit " + rev}, nil
}

func (m *MockRunner) IsTreeClean(_ context.Context) (bool, error) {
	if err := m.record("IsTreeClean"); err != nil {
		return false, err
	}
	return !m.Dirty, nil
}

func (m *MockRunner) ConfigValue(_ context.Context, key string) (string, error) {
	if err := m.record("ConfigValue", key); err != nil {
		return "", err
	}
	value, ok := m.Config[key]
	if !ok {
		return "", fmt.Errorf("config %s not set", key)
	}
	return value, nil
}

func (m *MockRunner) Fetch(_ context.Context, remote string) error {
	return m.record("Fetch", remote)
}

func (m *MockRunner) Checkout(_ context.Context, branchName string) error {
	if err := m.record("Checkout", branchName); err != nil {
		return err
	}
	if _, ok := m.Branches[branchName]; !ok {
		return backporterrors.NewBranchNotFoundError(branchName)
	}
	m.Current = branchName
	return nil
}

func (m *MockRunner) CheckoutNewBranch(_ context.Context, branchName, base string) error {
	if err := m.record("CheckoutNewBranch", branchName, base); err != nil {
		return err
	}
	if _, ok := m.Branches[branchName]; ok {
		return fmt.Errorf("branch %s already exists", branchName)
	}
	m.Branches[branchName] = m.Branches[base]
	m.Current = branchName
	return nil
}

func (m *MockRunner) DeleteBranch(_ context.Context, branchName string) error {
	if err := m.record("DeleteBranch", branchName); err != nil {
		return err
	}
	if branchName == m.Current {
		return fmt.Errorf("cannot delete checked out branch %s", branchName)
	}
	delete(m.Branches, branchName)
	return nil
}

func (m *MockRunner) FastForward(_ context.Context, remoteBranch string) error {
	return m.record("FastForward", remoteBranch)
}

func (m *MockRunner) Rebase(_ context.Context, opts git.RebaseOptions) error {
	args := []string{opts.Onto}
	if opts.Branch != "" {
		args = append(args, opts.Branch)
	}
	if opts.Exec != "" {
		args = append(args, "--exec", opts.Exec)
	}
	if opts.Interactive {
		args = append(args, "--interactive")
	}
	if err := m.record("Rebase", args...); err != nil {
		return err
	}
	if opts.Branch != "" {
		m.Current = opts.Branch
	}
	return nil
}

func (m *MockRunner) CherryPick(_ context.Context, commit string, mode git.CherryPickMode) error {
	return m.record("CherryPick", commit, modeName(mode))
}

func (m *MockRunner) CherryPickRange(_ context.Context, rangeSpec string, mode git.CherryPickMode) error {
	return m.record("CherryPickRange", rangeSpec, modeName(mode))
}

func (m *MockRunner) AmendDate(_ context.Context, date time.Time) error {
	return m.record("AmendDate", date.UTC().Format(time.RFC3339))
}

func (m *MockRunner) ApplyPatch(_ context.Context, path string) error {
	return m.record("ApplyPatch", path)
}

func (m *MockRunner) SetGlobalAlias(_ context.Context, name, command string) error {
	return m.record("SetGlobalAlias", name, command)
}

func modeName(mode git.CherryPickMode) string {
	if mode == git.CherryPickFastForward {
		return "ff"
	}
	return "x"
}
