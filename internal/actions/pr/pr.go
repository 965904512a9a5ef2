// Package pr stages an externally submitted pull request as a local branch and lands it on mainline.
package pr

import (
	"errors"
	"fmt"
	"os"

	"backport.dev/backport/internal/actions"
	"backport.dev/backport/internal/branchutil"
	backporterrors "backport.dev/backport/internal/errors"
	"backport.dev/backport/internal/git"
	"backport.dev/backport/internal/github"
	"backport.dev/backport/internal/runtime"
	"backport.dev/backport/internal/tui"
)

// State is the progress of a PR run
type State = actions.State

// Options contains options for the pr command
type Options struct {
	// ID is the pull request number
	ID int
	// Prefix names the branch "<prefix>-<id>", the configured prefix when empty
	Prefix string
	// Remote overrides the configured upstream remote
	Remote string
	// Reviewer is recorded in the Reviewed-by trailer
	Reviewer string
	// Force replaces an existing branch when staging
	Force bool
	// Yes replaces an existing branch without asking
	Yes bool

	Delete bool
	Update bool
	Stage  bool
	Mark   bool
	Rebase bool
	Push   bool
}

// Result describes what a PR run did
type Result struct {
	Pair  branchutil.BranchPair
	State State
	// PatchPath is the downloaded patch, left on disk for inspection
	PatchPath   string
	PullRequest *github.PullRequestInfo
}

func (o *Options) normalize() error {
	if !o.Delete && !o.Update && !o.Stage && !o.Mark && !o.Rebase && !o.Push {
		o.Stage = true
	}
	if o.Rebase && o.Push {
		return backporterrors.NewUserError("--rebase and --push cannot be used together")
	}
	onlyUpdate := o.Update && !o.Delete && !o.Stage && !o.Mark && !o.Rebase && !o.Push
	if o.ID <= 0 && !onlyUpdate {
		return backporterrors.NewUserError("a pull request number is required (--id)")
	}
	return nil
}

// Action runs the requested PR operations in order: delete, update, stage, mark, rebase, push
func Action(ctx *runtime.Context, opts Options) (*Result, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = ctx.Config.GetPRPrefix()
	}
	remote := opts.Remote
	if remote == "" {
		remote = ctx.Config.GetRemote()
	}

	w := &workflow{
		ctx:    ctx,
		opts:   opts,
		remote: remote,
		result: &Result{Pair: branchutil.PRPair(ctx.Config.GetMainline(), prefix, opts.ID)},
	}
	w.tracker = actions.NewTracker(func(s State) {
		ctx.Splog.Debug("pr %s: %s", w.result.Pair.Working, s)
		w.result.State = s
	})

	steps := []struct {
		enabled bool
		run     func() error
	}{
		{opts.Delete, w.delete},
		{opts.Update, w.update},
		{opts.Stage, w.stage},
		{opts.Mark, w.mark},
		{opts.Rebase, w.rebase},
		{opts.Push, w.push},
	}
	for _, step := range steps {
		if !step.enabled {
			continue
		}
		if err := step.run(); err != nil {
			return w.result, w.tracker.Fail(err)
		}
	}

	w.tracker.Advance(actions.Done)
	return w.result, nil
}

type workflow struct {
	ctx     *runtime.Context
	opts    Options
	remote  string
	tracker *actions.Tracker
	result  *Result
}

func (w *workflow) advanceTo(s State) {
	if w.tracker.State() < s {
		w.tracker.Advance(s)
	}
}

// leaveBranch checks out mainline when the PR branch is checked out
func (w *workflow) leaveBranch() error {
	pair := w.result.Pair
	current, err := w.ctx.Runner.CurrentBranch(w.ctx.Context)
	if err != nil || current != pair.Working {
		return nil
	}
	if err := w.ctx.Runner.Checkout(w.ctx.Context, pair.Stable); err != nil {
		return fmt.Errorf("failed to check out %s: %w", pair.Stable, err)
	}
	return nil
}

func (w *workflow) requireBranch() error {
	if !w.ctx.Runner.BranchExists(w.ctx.Context, w.result.Pair.Working) {
		return backporterrors.NewBranchNotFoundError(w.result.Pair.Working)
	}
	return nil
}

func (w *workflow) delete() error {
	pair := w.result.Pair
	runner := w.ctx.Runner

	if !runner.BranchExists(w.ctx.Context, pair.Working) {
		w.ctx.Splog.Info("%s does not exist, nothing to delete.", tui.ColorBranchName(pair.Working, false))
		return nil
	}
	if err := w.leaveBranch(); err != nil {
		return err
	}
	if err := runner.DeleteBranch(w.ctx.Context, pair.Working); err != nil {
		return err
	}
	w.ctx.Splog.Info("Deleted %s.", tui.ColorBranchName(pair.Working, false))
	return nil
}

func (w *workflow) update() error {
	pair := w.result.Pair
	runner := w.ctx.Runner
	gctx := w.ctx.Context

	current, err := runner.CurrentBranch(gctx)
	if err != nil || current != pair.Stable {
		if err := runner.Checkout(gctx, pair.Stable); err != nil {
			return fmt.Errorf("failed to check out %s: %w", pair.Stable, err)
		}
	}

	w.ctx.Splog.Info("Fetching %s...", w.remote)
	if err := runner.Fetch(gctx, w.remote); err != nil {
		w.ctx.Splog.Warn("Fetching %s failed, continuing with local refs: %v", w.remote, err)
	}
	w.advanceTo(actions.Fetched)

	if err := runner.FastForward(gctx, w.remote+"/"+pair.Stable); err != nil {
		return backporterrors.NewFastForwardError(pair.Stable, w.remote, err)
	}
	w.advanceTo(actions.TargetUpdated)
	w.ctx.Splog.Info("%s is up to date with %s.", tui.ColorBranchName(pair.Stable, true), w.remote)
	return nil
}

// stage creates the PR branch from mainline and applies the pull request's patch.
// An existing branch is deleted and recreated with Force, never reset in place.
func (w *workflow) stage() error {
	pair := w.result.Pair
	runner := w.ctx.Runner
	gctx := w.ctx.Context
	splog := w.ctx.Splog

	if runner.BranchExists(gctx, pair.Working) {
		if !w.opts.Force {
			return backporterrors.NewBranchExistsError(pair.Working)
		}
		if err := w.confirmReplace(); err != nil {
			return err
		}
		if err := w.leaveBranch(); err != nil {
			return err
		}
		if err := runner.DeleteBranch(gctx, pair.Working); err != nil {
			return err
		}
		splog.Info("Deleted existing %s.", tui.ColorBranchName(pair.Working, false))
	}

	if err := runner.CheckoutNewBranch(gctx, pair.Working, pair.Stable); err != nil {
		return fmt.Errorf("failed to create %s: %w", pair.Working, err)
	}
	w.advanceTo(actions.WorkingBranchReady)
	splog.Info("Created %s from %s.", tui.ColorBranchName(pair.Working, true), pair.Stable)

	source, err := w.ctx.GitHub()
	if err != nil {
		return err
	}
	if info, err := source.PullRequest(gctx, w.opts.ID); err == nil {
		w.result.PullRequest = info
		splog.Info("#%d %s (%s)", info.Number, info.Title, info.Author)
	} else {
		splog.Debug("pull request metadata unavailable: %v", err)
	}

	patchPath, err := w.downloadPatch(source)
	if err != nil {
		return err
	}
	w.result.PatchPath = patchPath

	w.advanceTo(actions.Applying)
	if err := runner.ApplyPatch(gctx, patchPath); err != nil {
		splog.Tip("Resolve the conflicts and run git am --continue, or git am --abort to give up.")
		return err
	}
	splog.Info("Applied %s.", tui.ColorDim(patchPath))
	return nil
}

// confirmReplace asks before an existing branch is thrown away.
// Without a terminal the --force request stands.
func (w *workflow) confirmReplace() error {
	if w.opts.Yes {
		return nil
	}
	name := w.result.Pair.Working
	ok, err := w.ctx.Prompter.Confirm(fmt.Sprintf("Delete the existing %s and stage #%d again?", name, w.opts.ID), false)
	switch {
	case errors.Is(err, tui.ErrInteractiveDisabled):
		return nil
	case err != nil:
		return err
	case !ok:
		return backporterrors.NewUserError("kept %s; nothing staged", name)
	}
	return nil
}

func (w *workflow) downloadPatch(source github.PatchSource) (string, error) {
	f, err := os.CreateTemp("", fmt.Sprintf("backport-pr-%d-*.patch", w.opts.ID))
	if err != nil {
		return "", fmt.Errorf("failed to create patch file: %w", err)
	}
	defer func() { _ = f.Close() }()

	w.ctx.Splog.Debug("downloading %s to %s", source.PatchURL(w.opts.ID), f.Name())
	if err := source.FetchPatch(w.ctx.Context, w.opts.ID, f); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write patch file: %w", err)
	}
	return f.Name(), nil
}

// mark appends Reviewed-by and Pull-Request trailers to every commit of the PR branch
func (w *workflow) mark() error {
	if err := w.requireBranch(); err != nil {
		return err
	}
	reviewer, err := w.reviewer()
	if err != nil {
		return err
	}

	source, err := w.ctx.GitHub()
	if err != nil {
		return err
	}
	trailers := []string{
		"Reviewed-by: " + reviewer,
		"Pull-Request: " + source.PullRequestURL(w.opts.ID),
	}

	pair := w.result.Pair
	w.advanceTo(actions.Applying)
	err = w.ctx.Runner.Rebase(w.ctx.Context, git.RebaseOptions{
		Onto:        pair.Stable,
		Branch:      pair.Working,
		Exec:        git.AmendTrailersCommand(trailers),
		Interactive: true,
	})
	if err != nil {
		return err
	}
	w.ctx.Splog.Info("Marked %s as reviewed by %s.", tui.ColorBranchName(pair.Working, true), reviewer)
	return nil
}

// reviewer picks the flag, the configured reviewer, then the git identity
func (w *workflow) reviewer() (string, error) {
	if w.opts.Reviewer != "" {
		return w.opts.Reviewer, nil
	}
	if reviewer := w.ctx.Config.GetReviewer(); reviewer != "" {
		return reviewer, nil
	}

	if identity := git.Identity(w.ctx.Context, w.ctx.Runner); identity != "" {
		return identity, nil
	}
	return "", backporterrors.NewUserError("no reviewer known; pass --reviewer or run backport setup")
}

func (w *workflow) rebase() error {
	if err := w.requireBranch(); err != nil {
		return err
	}
	pair := w.result.Pair
	w.advanceTo(actions.Applying)
	if err := w.ctx.Runner.Rebase(w.ctx.Context, git.RebaseOptions{Onto: pair.Stable, Branch: pair.Working}); err != nil {
		return err
	}
	w.ctx.Splog.Info("Rebased %s onto %s.", tui.ColorBranchName(pair.Working, true), pair.Stable)
	return nil
}

// push lands the PR branch's commits on mainline
func (w *workflow) push() error {
	if err := w.requireBranch(); err != nil {
		return err
	}
	pair := w.result.Pair
	runner := w.ctx.Runner
	gctx := w.ctx.Context

	w.advanceTo(actions.Applying)
	if err := runner.Checkout(gctx, pair.Stable); err != nil {
		return fmt.Errorf("failed to check out %s: %w", pair.Stable, err)
	}
	if err := runner.CherryPickRange(gctx, pair.Stable+".."+pair.Working, git.CherryPickFastForward); err != nil {
		return err
	}
	w.ctx.Splog.Info("Landed %s on %s.", tui.ColorBranchName(pair.Working, false), tui.ColorBranchName(pair.Stable, true))
	w.ctx.Splog.Tip("Review the result and push %s to %s.", pair.Stable, w.remote)
	return nil
}
