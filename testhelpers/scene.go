package testhelpers

import (
	"os"
	"path/filepath"
	"testing"
)

// Scene represents a test scene with a temporary directory and Git repository.
type Scene struct {
	Dir  string
	Repo *GitRepo
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a scene and changes the working directory into it.
// Tests using it must not run in parallel.
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()
	scene := NewSceneParallel(t, setup)

	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}
	if err := os.Chdir(scene.Dir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldDir)
	})
	return scene
}

// NewSceneParallel creates a scene without touching the working directory.
// Cleanup is registered with t.Cleanup.
func NewSceneParallel(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()

	// EvalSymlinks keeps paths comparable with what git reports on macOS
	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to resolve temp dir: %v", err)
	}
	dir := filepath.Join(tmpDir, "repo")

	repo, err := NewGitRepo(dir)
	if err != nil {
		t.Fatalf("Failed to create Git repo: %v", err)
	}

	scene := &Scene{Dir: dir, Repo: repo}
	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}
	return scene
}

// BasicSceneSetup is a setup function that creates a basic scene with a single commit.
func BasicSceneSetup(scene *Scene) error {
	return scene.Repo.CreateChangeAndCommit("1", "1")
}

// StableBranchSetup creates main with one commit, a stable/14 branch at that
// commit, and an origin remote holding both branches.
func StableBranchSetup(scene *Scene) error {
	if err := BasicSceneSetup(scene); err != nil {
		return err
	}
	if err := scene.Repo.CreateBranch("stable/14"); err != nil {
		return err
	}
	if _, err := scene.Repo.CreateBareRemote("origin"); err != nil {
		return err
	}
	if err := scene.Repo.PushBranch("origin", "main"); err != nil {
		return err
	}
	return scene.Repo.PushBranch("origin", "stable/14")
}
