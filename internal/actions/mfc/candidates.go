package mfc

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-yaml"

	"backport.dev/backport/internal/engine"
	backporterrors "backport.dev/backport/internal/errors"
	"backport.dev/backport/internal/runtime"
	"backport.dev/backport/internal/tui"
)

// CandidateReport is the YAML form of a candidate listing
type CandidateReport struct {
	Source     string            `yaml:"source"`
	Target     string            `yaml:"target"`
	Candidates []CandidateCommit `yaml:"candidates"`
	Excluded   []string          `yaml:"excluded,omitempty"`
	Merged     []string          `yaml:"merged,omitempty"`
	Stats      engine.Stats      `yaml:"stats"`
}

// CandidateCommit describes one commit still to be merged
type CandidateCommit struct {
	SHA     string    `yaml:"sha"`
	Author  string    `yaml:"author"`
	Date    time.Time `yaml:"date"`
	Subject string    `yaml:"subject"`
}

// NewCandidateReport looks up commit details for every candidate of a discovery result
func NewCandidateReport(ctx *runtime.Context, discovery *engine.Result) (*CandidateReport, error) {
	report := &CandidateReport{
		Source:     discovery.Source,
		Target:     discovery.Target,
		Candidates: make([]CandidateCommit, 0, len(discovery.Candidates)),
		Stats:      discovery.Stats,
	}
	for _, c := range discovery.Candidates {
		info, err := ctx.Runner.CommitInfo(ctx.Context, string(c))
		if err != nil {
			return nil, err
		}
		report.Candidates = append(report.Candidates, CandidateCommit{
			SHA:     info.SHA,
			Author:  info.Author,
			Date:    info.Date,
			Subject: info.Subject,
		})
	}
	for _, c := range discovery.Excluded {
		report.Excluded = append(report.Excluded, string(c))
	}
	for _, c := range discovery.Merged {
		report.Merged = append(report.Merged, string(c))
	}
	return report, nil
}

func printCandidates(ctx *runtime.Context, discovery *engine.Result, asYAML bool) error {
	splog := ctx.Splog

	report, err := NewCandidateReport(ctx, discovery)
	if err != nil {
		return err
	}

	if asYAML {
		data, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("failed to render candidates: %w", err)
		}
		splog.Page(string(data))
		return nil
	}

	if len(report.Candidates) == 0 {
		splog.Info("Nothing on %s is missing from %s.", report.Source, tui.ColorBranchName(report.Target, false))
		return nil
	}

	splog.Info(tui.ColorHeader(fmt.Sprintf("Commits on %s not yet in %s:", report.Source, report.Target)))
	for _, c := range report.Candidates {
		splog.Info("%s %s %s", tui.ColorCommit(c.SHA), c.Subject, tui.ColorDim("("+c.Author+")"))
	}
	if len(report.Excluded)+len(report.Merged) > 0 {
		splog.Info(tui.ColorDim(fmt.Sprintf("%d excluded, %d already merged", len(report.Excluded), len(report.Merged))))
	}
	return nil
}

// confirmCandidates asks which discovered commits to replay. With yes every
// candidate is taken without asking.
func confirmCandidates(ctx *runtime.Context, discovery *engine.Result, yes bool) ([]string, error) {
	candidates := discovery.Candidates.Strings()
	if len(candidates) == 0 || yes {
		return candidates, nil
	}

	labels := make([]string, len(candidates))
	bySHA := make(map[string]string, len(candidates))
	for i, sha := range candidates {
		info, err := ctx.Runner.CommitInfo(ctx.Context, sha)
		if err != nil {
			return nil, err
		}
		labels[i] = fmt.Sprintf("%s %s", engine.CommitRef(sha).Short(), info.Subject)
		bySHA[labels[i]] = sha
	}

	selected, err := ctx.Prompter.SelectCommits(
		fmt.Sprintf("Merge these commits into %s?", discovery.Target), labels, labels)
	if err != nil {
		if errors.Is(err, tui.ErrInteractiveDisabled) {
			return nil, backporterrors.NewUserError("--candidates needs confirmation; re-run in a terminal or pass --yes")
		}
		return nil, err
	}

	// Keep discovery order regardless of selection order
	chosen := make(map[string]bool, len(selected))
	for _, label := range selected {
		chosen[bySHA[label]] = true
	}
	var commits []string
	for _, sha := range candidates {
		if chosen[sha] {
			commits = append(commits, sha)
		}
	}
	return commits, nil
}
