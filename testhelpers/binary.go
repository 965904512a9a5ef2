package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	sharedBinaryPath string
	binaryOnce       sync.Once
	binaryErr        error
	binaryCleanup    = func() {}
)

// GetSharedBinaryPath returns the backport binary path, building it on first access.
func GetSharedBinaryPath() string {
	binaryOnce.Do(func() {
		sharedBinaryPath, binaryCleanup, binaryErr = buildBinary()
	})
	return sharedBinaryPath
}

// GetBinaryError returns any error that occurred during binary building.
func GetBinaryError() error {
	return binaryErr
}

// buildBinary builds the backport binary into a temp directory and returns its path.
func buildBinary() (string, func(), error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	moduleRoot := findModuleRoot(wd)
	if moduleRoot == "" {
		return "", nil, fmt.Errorf("could not find module root (go.mod) starting from %s", wd)
	}

	tmpDir, err := os.MkdirTemp("", "backport-test-binary-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	binaryPath := filepath.Join(tmpDir, "backport")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/backport")
	cmd.Dir = moduleRoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", nil, fmt.Errorf("failed to build: %s: %w", string(output), err)
	}

	return binaryPath, func() { _ = os.RemoveAll(tmpDir) }, nil
}

// findModuleRoot walks up the directory tree from startDir to find the module root
// (directory containing go.mod file).
func findModuleRoot(startDir string) string {
	dir := startDir
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// TestMain builds the backport binary once, runs the tests and removes the binary.
// Packages can use this by calling testhelpers.TestMain(m, nil) in their own TestMain.
func TestMain(m *testing.M, cleanup func()) {
	if GetSharedBinaryPath() == "" {
		fmt.Fprintf(os.Stderr, "Failed to build backport binary: %v\n", binaryErr)
		os.Exit(1)
	}

	code := m.Run()

	binaryCleanup()
	if cleanup != nil {
		cleanup()
	}
	os.Exit(code)
}
