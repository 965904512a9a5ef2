// Package setup records per-repository defaults and installs the git aliases.
package setup

import (
	"errors"
	"fmt"

	"backport.dev/backport/internal/config"
	backporterrors "backport.dev/backport/internal/errors"
	"backport.dev/backport/internal/git"
	"backport.dev/backport/internal/github"
	"backport.dev/backport/internal/runtime"
	"backport.dev/backport/internal/tui"
)

// Aliases are installed as "git <name>" running "<command> <name>"
var Aliases = []string{"mfc", "pr"}

// Options contains options for the setup command
type Options struct {
	// Reviewer is stored for Reviewed-by trailers; asked for when empty
	Reviewer string
	// GitHubRepo is the owner/name pull requests are fetched from
	GitHubRepo string
	// Strict refuses MFC runs with a dirty working tree
	Strict bool
	// NoAlias leaves the global git config alone
	NoAlias bool
	// Command is the program the aliases run, "backport" when empty
	Command string
}

// Result describes what setup changed
type Result struct {
	Reviewer string
	Aliases  map[string]string
}

// Action updates the repository config and installs the git aliases
func Action(ctx *runtime.Context, opts Options) (*Result, error) {
	cfg := ctx.Config
	if opts.GitHubRepo != "" {
		if _, _, err := github.ParseRepo(opts.GitHubRepo); err != nil {
			return nil, backporterrors.NewUserError("%s", err.Error())
		}
		cfg.SetGitHubRepo(opts.GitHubRepo)
	}
	if opts.Strict {
		cfg.SetCleanTreePolicy(config.CleanTreeStrict)
	}

	reviewer, err := askReviewer(ctx, opts.Reviewer)
	if err != nil {
		return nil, err
	}
	if reviewer != "" {
		cfg.SetReviewer(reviewer)
	}

	if err := config.SaveRepoConfig(ctx.GitDir, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	ctx.Splog.Debug("wrote %s", config.ConfigPath(ctx.GitDir))

	result := &Result{Reviewer: reviewer, Aliases: map[string]string{}}
	if opts.NoAlias {
		ctx.Splog.Info("Saved settings; git aliases left unchanged.")
		return result, nil
	}

	command := opts.Command
	if command == "" {
		command = "backport"
	}
	for _, name := range Aliases {
		alias := fmt.Sprintf("!%s %s", command, name)
		if err := ctx.Runner.SetGlobalAlias(ctx.Context, name, alias); err != nil {
			return result, err
		}
		result.Aliases[name] = alias
		ctx.Splog.Info("Installed %s.", tui.ColorSuccess("git "+name))
	}
	return result, nil
}

// askReviewer prefers the flag, then asks with the configured or git identity as default
func askReviewer(ctx *runtime.Context, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fallback := ctx.Config.GetReviewer()
	if fallback == "" {
		fallback = git.Identity(ctx.Context, ctx.Runner)
	}

	answer, err := ctx.Prompter.TextInput("Reviewer for Reviewed-by trailers:", fallback)
	if errors.Is(err, tui.ErrInteractiveDisabled) {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	return answer, nil
}
