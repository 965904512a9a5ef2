package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

const mergedCacheFileName = "merged.yaml"

// MergedCacheSection holds already-merged verdicts for one (source, target) pair.
// The verdicts are only valid while target still points at TargetTip.
type MergedCacheSection struct {
	Source    string          `yaml:"source"`
	Target    string          `yaml:"target"`
	TargetTip string          `yaml:"targetTip"`
	Commits   map[string]bool `yaml:"commits"`
}

// MergedCache persists already-merged checks keyed by (source, target, commit)
type MergedCache struct {
	Sections []*MergedCacheSection `yaml:"sections"`

	path  string
	dirty bool
}

// MergedCachePath returns the location of the merged cache file
func MergedCachePath(gitDir string) string {
	return filepath.Join(StateDir(gitDir), mergedCacheFileName)
}

// LoadMergedCache reads the merged cache. A missing file is an empty cache.
func LoadMergedCache(gitDir string) (*MergedCache, error) {
	cache := &MergedCache{path: MergedCachePath(gitDir)}

	data, err := os.ReadFile(cache.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return nil, fmt.Errorf("failed to read merged cache: %w", err)
	}

	if err := yaml.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("failed to parse merged cache %s: %w", cache.path, err)
	}
	return cache, nil
}

func (c *MergedCache) section(source, target string) *MergedCacheSection {
	for _, s := range c.Sections {
		if s.Source == source && s.Target == target {
			return s
		}
	}
	return nil
}

// Lookup returns the cached verdict for commit. ok is false when nothing is
// cached or the cached section was computed against a different target tip.
func (c *MergedCache) Lookup(source, target, targetTip, commit string) (merged bool, ok bool) {
	s := c.section(source, target)
	if s == nil || s.TargetTip != targetTip {
		return false, false
	}
	merged, ok = s.Commits[commit]
	return merged, ok
}

// Store records a verdict. Storing against a new target tip drops every
// verdict recorded for the previous tip.
func (c *MergedCache) Store(source, target, targetTip, commit string, merged bool) {
	s := c.section(source, target)
	if s == nil {
		s = &MergedCacheSection{Source: source, Target: target}
		c.Sections = append(c.Sections, s)
	}
	if s.TargetTip != targetTip || s.Commits == nil {
		s.TargetTip = targetTip
		s.Commits = make(map[string]bool)
	}
	if current, ok := s.Commits[commit]; ok && current == merged {
		return
	}
	s.Commits[commit] = merged
	c.dirty = true
}

// Save writes the cache if anything changed since it was loaded
func (c *MergedCache) Save() error {
	if !c.dirty {
		return nil
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal merged cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0750); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := writeFileAtomic(c.path, data); err != nil {
		return err
	}
	c.dirty = false
	return nil
}
