package engine

import (
	"context"

	"backport.dev/backport/internal/config"
	backporterrors "backport.dev/backport/internal/errors"
	"backport.dev/backport/internal/git"
)

// Logger receives progress messages; *tui.Splog satisfies it
type Logger interface {
	Info(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Debug(string, ...interface{}) {}

// Engine runs candidate discovery against a repository
type Engine struct {
	git   git.Querier
	log   Logger
	cache *config.MergedCache
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for stage statistics
func WithLogger(log Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithMergedCache enables reuse of already-merged verdicts between runs
func WithMergedCache(cache *config.MergedCache) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

// NewEngine creates an Engine backed by the given git queries
func NewEngine(querier git.Querier, opts ...Option) *Engine {
	e := &Engine{git: querier, log: nopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Discover returns the commits on source that still need to be ported to target.
// paths restricts the listing and selects which mfc.exclude files apply.
func (e *Engine) Discover(ctx context.Context, source, target string, paths []string) (*Result, error) {
	listed, err := e.git.ListCherryPickCandidates(ctx, source, target, paths)
	if err != nil {
		return nil, backporterrors.NewDiscoveryError(source, target, err)
	}

	result := &Result{Source: source, Target: target}
	candidates := make(CandidateSet, 0, len(listed))
	for _, sha := range listed {
		candidates = append(candidates, CommitRef(sha))
	}
	result.Stats.Listed = len(candidates)

	exclusions, err := e.loadExclusions(paths)
	if err != nil {
		return nil, backporterrors.NewDiscoveryError(source, target, err)
	}
	candidates, result.Excluded = candidates.filter(func(c CommitRef) bool {
		prefix, excluded := exclusions.Match(string(c))
		if excluded {
			e.log.Debug("excluding %s (matches %s)", c.Short(), prefix)
		}
		return !excluded
	})
	result.Stats.AfterExclusion = len(candidates)

	targetTip := ""
	if e.cache != nil {
		if tip, err := e.git.Revision(ctx, target); err == nil {
			targetTip = tip
		}
	}
	candidates, result.Merged = candidates.filter(func(c CommitRef) bool {
		merged, cached := e.isMerged(ctx, source, target, targetTip, c)
		if cached {
			result.Stats.CacheHits++
		}
		if merged {
			e.log.Debug("%s already merged into %s", c.Short(), target)
		}
		return !merged
	})
	result.Stats.AfterMerged = len(candidates)
	result.Candidates = candidates

	if e.cache != nil {
		if err := e.cache.Save(); err != nil {
			e.log.Debug("failed to save merged cache: %v", err)
		}
	}

	e.log.Info("%d commits on %s not on %s, %d after exclusions, %d not yet merged",
		result.Stats.Listed, source, target, result.Stats.AfterExclusion, result.Stats.AfterMerged)
	return result, nil
}

func (e *Engine) loadExclusions(paths []string) (config.ExclusionList, error) {
	exclusions, err := config.LoadExclusions(e.git.RepoRoot(), paths)
	if err != nil {
		return config.ExclusionList{}, err
	}
	skipped, err := config.LoadSkipList(e.git.GitDir())
	if err != nil {
		return config.ExclusionList{}, err
	}
	return exclusions.Merge(skipped), nil
}

// isMerged reports whether target's history since source already mentions the commit.
// A failed search counts as not merged and is not cached.
func (e *Engine) isMerged(ctx context.Context, source, target, targetTip string, c CommitRef) (merged bool, cached bool) {
	if e.cache != nil && targetTip != "" {
		if merged, ok := e.cache.Lookup(source, target, targetTip, string(c)); ok {
			return merged, true
		}
	}

	hits, err := e.git.SearchLog(ctx, string(c), source+".."+target)
	if err != nil {
		e.log.Debug("log search for %s failed: %v", c.Short(), err)
		return false, false
	}
	merged = len(hits) > 0

	if e.cache != nil && targetTip != "" {
		e.cache.Store(source, target, targetTip, string(c), merged)
	}
	return merged, false
}
