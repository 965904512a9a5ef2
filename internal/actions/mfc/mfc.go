// Package mfc merges commits from mainline into a stable branch through its working branch.
package mfc

import (
	"errors"
	"fmt"

	"backport.dev/backport/internal/actions"
	"backport.dev/backport/internal/branchutil"
	"backport.dev/backport/internal/config"
	"backport.dev/backport/internal/engine"
	backporterrors "backport.dev/backport/internal/errors"
	"backport.dev/backport/internal/git"
	"backport.dev/backport/internal/runtime"
	"backport.dev/backport/internal/tui"
)

// State is the progress of an MFC run
type State = actions.State

// Options contains options for the mfc command
type Options struct {
	// Base is the branch commits come from, the configured mainline when empty
	Base string
	// List prints the candidates and stops without touching the repository
	List bool
	// YAML renders the candidate list as YAML
	YAML bool
	// Update fast-forwards the stable branch and rebases the working branch, then stops
	Update bool
	// Commits are replayed onto the working branch in order
	Commits []string
	// UseCandidates replays the discovered candidates after confirmation
	UseCandidates bool
	// Yes skips the confirmation of UseCandidates
	Yes bool
	// Paths restrict discovery to these directories
	Paths []string
	// Remote overrides the configured upstream remote
	Remote string
	// Strict refuses to continue with a dirty working tree
	Strict bool
	// NoCache disables the merged cache for this run
	NoCache bool
	// Skip adds commits to the local skip list and stops
	Skip []string
}

// Result describes what an MFC run did
type Result struct {
	Pair      branchutil.BranchPair
	State     State
	Discovery *engine.Result
	Applied   []string
}

func (o Options) validate() error {
	if o.UseCandidates && len(o.Commits) > 0 {
		return backporterrors.NewUserError("--candidates cannot be combined with explicit commits")
	}
	if o.Update && (o.UseCandidates || len(o.Commits) > 0) {
		return backporterrors.NewUserError("--update only updates branches; drop the commits or --candidates")
	}
	if o.List && (o.Update || o.UseCandidates || len(o.Commits) > 0) {
		return backporterrors.NewUserError("--list cannot be combined with update or replay")
	}
	if o.YAML && !o.List {
		return backporterrors.NewUserError("--yaml requires --list")
	}
	return nil
}

// Action runs the MFC workflow for the stable branch pair of the current branch
func Action(ctx *runtime.Context, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	runner := ctx.Runner
	splog := ctx.Splog
	gctx := ctx.Context

	current, err := runner.CurrentBranch(gctx)
	if err != nil {
		return nil, err
	}
	pair, err := branchutil.Resolve(current)
	if err != nil {
		return nil, err
	}

	result := &Result{Pair: pair}
	tracker := actions.NewTracker(func(s State) {
		splog.Debug("mfc %s: %s", pair.Stable, s)
		result.State = s
	})

	if len(opts.Skip) > 0 {
		if err := config.AddToSkipList(ctx.GitDir, opts.Skip...); err != nil {
			return nil, err
		}
		for _, sha := range opts.Skip {
			splog.Info("Skipping %s in future candidate lists.", tui.ColorCommit(sha))
		}
		return result, nil
	}

	if opts.List {
		discovery, err := discover(ctx, pair, opts)
		if err != nil {
			return nil, err
		}
		result.Discovery = discovery
		return result, printCandidates(ctx, discovery, opts.YAML)
	}

	if err := reconcile(ctx, pair, opts, tracker, current); err != nil {
		return result, err
	}

	if opts.Update {
		tracker.Advance(actions.Done)
		splog.Info("%s and %s are up to date.",
			tui.ColorBranchName(pair.Stable, false), tui.ColorBranchName(pair.Working, false))
		return result, nil
	}

	if err := ensureWorkingBranch(ctx, pair, tracker); err != nil {
		return result, err
	}

	commits := opts.Commits
	if opts.UseCandidates {
		discovery, err := discover(ctx, pair, opts)
		if err != nil {
			return result, tracker.Fail(err)
		}
		result.Discovery = discovery
		commits, err = confirmCandidates(ctx, discovery, opts.Yes)
		if err != nil {
			return result, tracker.Fail(err)
		}
	}

	if len(commits) == 0 {
		tracker.Advance(actions.Done)
		splog.Info("%s is ready, nothing to merge.", tui.ColorBranchName(pair.Working, true))
		splog.Tip("Run backport mfc --list to see the commits still missing from %s.", pair.Stable)
		return result, nil
	}

	tracker.Advance(actions.Applying)
	for _, commit := range commits {
		if err := runner.CherryPick(gctx, commit, git.CherryPickRecordProvenance); err != nil {
			return result, tracker.Fail(backporterrors.NewCherryPickConflictError(commit, result.Applied, err))
		}
		if err := runner.AmendDate(gctx, ctx.Now()); err != nil {
			return result, tracker.Fail(fmt.Errorf("failed to refresh date of %s: %w", commit, err))
		}
		result.Applied = append(result.Applied, commit)
		splog.Info("Merged %s into %s.", tui.ColorCommit(commit), tui.ColorBranchName(pair.Working, true))
	}

	tracker.Advance(actions.Done)
	splog.Info(tui.ColorSuccess(fmt.Sprintf("Merged %d commit(s) into %s.", len(result.Applied), pair.Working)))
	return result, nil
}

// reconcile brings the stable branch up to date with its remote and rebases
// the working branch onto it.
func reconcile(ctx *runtime.Context, pair branchutil.BranchPair, opts Options, tracker *actions.Tracker, current string) error {
	runner := ctx.Runner
	splog := ctx.Splog
	gctx := ctx.Context

	remote := opts.Remote
	if remote == "" {
		remote = ctx.Config.GetRemote()
	}

	if current == pair.Working {
		if err := checkCleanTree(ctx, opts); err != nil {
			return tracker.Fail(err)
		}
	}
	if current != pair.Stable {
		if err := runner.Checkout(gctx, pair.Stable); err != nil {
			return tracker.Fail(fmt.Errorf("failed to check out %s: %w", pair.Stable, err))
		}
	}

	splog.Info("Fetching %s...", remote)
	if err := runner.Fetch(gctx, remote); err != nil {
		splog.Warn("Fetching %s failed, continuing with local refs: %v", remote, err)
	}
	tracker.Advance(actions.Fetched)

	if err := runner.FastForward(gctx, remote+"/"+pair.Stable); err != nil {
		return tracker.Fail(backporterrors.NewFastForwardError(pair.Stable, remote, err))
	}
	splog.Info("%s is up to date with %s.", tui.ColorBranchName(pair.Stable, true), remote)

	if runner.BranchExists(gctx, pair.Working) {
		splog.Info("Rebasing %s onto %s...", tui.ColorBranchName(pair.Working, false), pair.Stable)
		if err := runner.Rebase(gctx, git.RebaseOptions{Onto: pair.Stable, Branch: pair.Working}); err != nil {
			var conflict *backporterrors.RebaseConflictError
			if errors.As(err, &conflict) {
				return tracker.Fail(err)
			}
			return tracker.Fail(backporterrors.NewRebaseConflictError(pair.Working, err.Error()))
		}
	}
	tracker.Advance(actions.TargetUpdated)
	return nil
}

func checkCleanTree(ctx *runtime.Context, opts Options) error {
	clean, err := ctx.Runner.IsTreeClean(ctx.Context)
	if err != nil {
		return err
	}
	if clean {
		return nil
	}
	if opts.Strict || ctx.Config.GetCleanTreePolicy() == config.CleanTreeStrict {
		return fmt.Errorf("%w: commit or stash your changes first", backporterrors.ErrDirtyTree)
	}
	ctx.Splog.Warn("The working tree has uncommitted changes.")
	return nil
}

func ensureWorkingBranch(ctx *runtime.Context, pair branchutil.BranchPair, tracker *actions.Tracker) error {
	runner := ctx.Runner
	gctx := ctx.Context

	if runner.BranchExists(gctx, pair.Working) {
		if err := runner.Checkout(gctx, pair.Working); err != nil {
			return tracker.Fail(fmt.Errorf("failed to check out %s: %w", pair.Working, err))
		}
	} else {
		if err := runner.CheckoutNewBranch(gctx, pair.Working, pair.Stable); err != nil {
			return tracker.Fail(fmt.Errorf("failed to create %s: %w", pair.Working, err))
		}
		ctx.Splog.Info("Created %s from %s.", tui.ColorBranchName(pair.Working, true), pair.Stable)
	}
	tracker.Advance(actions.WorkingBranchReady)
	return nil
}

// discover lists the commits of the base branch still missing from the pair.
// The working branch is compared when it exists, the stable branch otherwise.
func discover(ctx *runtime.Context, pair branchutil.BranchPair, opts Options) (*engine.Result, error) {
	source := opts.Base
	if source == "" {
		source = ctx.Config.GetMainline()
	}
	target := pair.Stable
	if ctx.Runner.BranchExists(ctx.Context, pair.Working) {
		target = pair.Working
	}

	var logger engine.Logger = ctx.Splog
	if opts.YAML {
		// Keep stdout parseable
		logger = debugOnly{ctx.Splog}
	}
	engineOpts := []engine.Option{engine.WithLogger(logger)}
	if !opts.NoCache && ctx.Config.IsMergedCacheEnabled() {
		cache, err := config.LoadMergedCache(ctx.GitDir)
		if err != nil {
			ctx.Splog.Warn("Ignoring merged cache: %v", err)
		} else {
			engineOpts = append(engineOpts, engine.WithMergedCache(cache))
		}
	}

	return engine.NewEngine(ctx.Runner, engineOpts...).Discover(ctx.Context, source, target, opts.Paths)
}

// debugOnly demotes info messages to debug
type debugOnly struct {
	*tui.Splog
}

func (d debugOnly) Info(format string, args ...interface{}) {
	d.Debug(format, args...)
}
