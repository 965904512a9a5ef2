package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	stateDirName     = "backport"
	skipListFileName = "skip"
)

// StateDir returns the directory holding backport's local state
func StateDir(gitDir string) string {
	return filepath.Join(gitDir, stateDirName)
}

// SkipListPath returns the location of the local skip list
func SkipListPath(gitDir string) string {
	return filepath.Join(StateDir(gitDir), skipListFileName)
}

// LoadSkipList reads the operator's local skip list. A missing file is an empty list.
func LoadSkipList(gitDir string) (ExclusionList, error) {
	prefixes, err := readPrefixFile(SkipListPath(gitDir))
	if err != nil {
		return ExclusionList{}, err
	}
	return NewExclusionList(prefixes...), nil
}

// AddToSkipList appends prefixes that are not yet listed to the local skip list
func AddToSkipList(gitDir string, prefixes ...string) error {
	current, err := LoadSkipList(gitDir)
	if err != nil {
		return err
	}

	before := current.Len()
	for _, p := range prefixes {
		current.add(strings.TrimSpace(p))
	}
	if current.Len() == before {
		return nil
	}

	if err := os.MkdirAll(StateDir(gitDir), 0750); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	content := strings.Join(current.Prefixes(), "\n") + "\n"
	return writeFileAtomic(SkipListPath(gitDir), []byte(content))
}

// writeFileAtomic writes data next to path and renames it into place
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
