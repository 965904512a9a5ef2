package runtime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"backport.dev/backport/internal/config"
	"backport.dev/backport/internal/git"
	"backport.dev/backport/internal/github"
	"backport.dev/backport/internal/tui"
)

const (
	// LogFileName is the rotating log written below the state directory
	LogFileName = "backport.log"
	// GitHubAPIURLEnv overrides the GitHub API endpoint, as on GitHub Enterprise
	GitHubAPIURLEnv = "GITHUB_API_URL"
)

// Context provides access to the repository, configuration and output for commands
type Context struct {
	Context  context.Context
	Runner   git.Runner
	Splog    *tui.Splog
	Config   *config.RepoConfig
	RepoRoot string
	GitDir   string
	Verbose  bool
	RunID    string
	Prompter tui.Prompter
	// PatchSource is created on first use by GitHub
	PatchSource github.PatchSource
	// Now is the clock used for commit dates
	Now func() time.Time
}

// Options controls how GetContext builds a Context
type Options struct {
	// Dir is the directory the repository is discovered from, the working directory when empty
	Dir     string
	Verbose bool
	NoColor bool
}

// NewContext creates a context around an existing runner, used by tests and GetContext
func NewContext(ctx context.Context, runner git.Runner, splog *tui.Splog) *Context {
	if splog == nil {
		splog = tui.NewSplog()
	}
	return &Context{
		Context:  ctx,
		Runner:   runner,
		Splog:    splog,
		Config:   &config.RepoConfig{},
		RepoRoot: runner.RepoRoot(),
		GitDir:   runner.GitDir(),
		RunID:    uuid.NewString(),
		Prompter: tui.NewTerminalPrompter(),
		Now:      time.Now,
	}
}

// GetContext discovers the repository and loads its configuration.
// It fails with ErrNotARepository outside a git work tree.
func GetContext(ctx context.Context, opts Options) (*Context, error) {
	tui.ConfigureColors(opts.NoColor)

	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	runner, err := git.NewRealRunner(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := config.GetRepoConfig(runner.GitDir())
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	splog, err := tui.NewSplogWithConfig(tui.SplogOptions{
		Verbose:     opts.Verbose,
		LogFilePath: filepath.Join(config.StateDir(runner.GitDir()), LogFileName),
		RunID:       runID,
	})
	if err != nil {
		// The log file is optional; fall back to console-only output
		splog, _ = tui.NewSplogWithConfig(tui.SplogOptions{Verbose: opts.Verbose})
	}

	c := NewContext(ctx, runner, splog)
	c.Config = cfg
	c.Verbose = opts.Verbose
	c.RunID = runID
	splog.Debug("run %s in %s", runID, c.RepoRoot)
	return c, nil
}

// GitHub returns the patch source, creating it from the repository configuration on first use
func (c *Context) GitHub() (github.PatchSource, error) {
	if c.PatchSource != nil {
		return c.PatchSource, nil
	}
	client, err := github.NewClient(c.Context, github.ClientOptions{
		Repo:             c.Config.GetGitHubRepo(),
		PatchURLTemplate: c.Config.GetPatchURLTemplate(),
		Token:            github.LookupToken(c.Context),
		BaseURL:          os.Getenv(GitHubAPIURLEnv),
	})
	if err != nil {
		return nil, err
	}
	c.PatchSource = client
	return client, nil
}

// Close releases the log file
func (c *Context) Close() error {
	return c.Splog.Close()
}
