package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"backport.dev/backport/internal/utils"
)

// ExcludeFileName is the per-directory list of commits that must never be merged
const ExcludeFileName = "mfc.exclude"

// ExclusionList is an ordered set of commit hash prefixes
type ExclusionList struct {
	prefixes []string
	seen     map[string]bool
}

// NewExclusionList creates an exclusion list from prefixes, dropping duplicates
func NewExclusionList(prefixes ...string) ExclusionList {
	var l ExclusionList
	l.add(prefixes...)
	return l
}

func (l *ExclusionList) add(prefixes ...string) {
	if l.seen == nil {
		l.seen = make(map[string]bool)
	}
	for _, p := range prefixes {
		if p == "" || l.seen[p] {
			continue
		}
		l.seen[p] = true
		l.prefixes = append(l.prefixes, p)
	}
}

// Merge returns a list holding the prefixes of both lists
func (l ExclusionList) Merge(other ExclusionList) ExclusionList {
	merged := NewExclusionList(l.prefixes...)
	merged.add(other.prefixes...)
	return merged
}

// Len returns the number of prefixes
func (l ExclusionList) Len() int {
	return len(l.prefixes)
}

// Prefixes returns a copy of the prefixes in load order
func (l ExclusionList) Prefixes() []string {
	return append([]string(nil), l.prefixes...)
}

// Match returns the first prefix sha starts with. Matching is case-sensitive.
func (l ExclusionList) Match(sha string) (string, bool) {
	for _, p := range l.prefixes {
		if strings.HasPrefix(sha, p) {
			return p, true
		}
	}
	return "", false
}

// ParseExclusions reads whitespace separated hash prefixes. Text after '#' on a line is ignored.
func ParseExclusions(r io.Reader) ([]string, error) {
	return utils.ReadFields(r)
}

// LoadExclusions reads the mfc.exclude file of every path scope below repoRoot.
// With no paths the repository root is the only scope. Scopes without the file contribute nothing.
func LoadExclusions(repoRoot string, paths []string) (ExclusionList, error) {
	scopes := paths
	if len(scopes) == 0 {
		scopes = []string{"."}
	}

	var list ExclusionList
	for _, scope := range scopes {
		dir := filepath.Join(repoRoot, scope)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		prefixes, err := readPrefixFile(filepath.Join(dir, ExcludeFileName))
		if err != nil {
			return ExclusionList{}, err
		}
		list.add(prefixes...)
	}
	return list, nil
}

func readPrefixFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	prefixes, err := ParseExclusions(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return prefixes, nil
}
