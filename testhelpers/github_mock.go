package testhelpers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/v62/github"

	githubpkg "backport.dev/backport/internal/github"
)

// MockGitHubServerConfig configures the behavior of a mock GitHub server
type MockGitHubServerConfig struct {
	// Owner and Repo for the mock server
	Owner string
	Repo  string
	// PRs maps pull request numbers to the metadata returned by the API
	PRs map[int]*github.PullRequest
	// Patches maps pull request numbers to their mbox patch
	Patches map[int]string

	mu       sync.Mutex
	requests []string
	auth     []string
}

// NewMockGitHubServerConfig creates a new mock server config with defaults
func NewMockGitHubServerConfig() *MockGitHubServerConfig {
	return &MockGitHubServerConfig{
		Owner:   "owner",
		Repo:    "repo",
		PRs:     make(map[int]*github.PullRequest),
		Patches: make(map[int]string),
	}
}

// Requests returns the paths requested so far
func (c *MockGitHubServerConfig) Requests() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.requests...)
}

// Authorizations returns the Authorization header of each request, in order
func (c *MockGitHubServerConfig) Authorizations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.auth...)
}

// NewMockGitHubServer creates an httptest server that mocks the pull request
// endpoints and a plain patch download location at /patches/{number}.patch
func NewMockGitHubServer(t *testing.T, config *MockGitHubServerConfig) *httptest.Server {
	t.Helper()
	if config == nil {
		config = NewMockGitHubServerConfig()
	}

	pullsPath := "/repos/" + config.Owner + "/" + config.Repo + "/pulls/"

	mux := http.NewServeMux()
	mux.HandleFunc(pullsPath, func(w http.ResponseWriter, r *http.Request) {
		config.record(r)
		number, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, pullsPath))
		if err != nil || r.Method != http.MethodGet {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}

		if strings.Contains(r.Header.Get("Accept"), "patch") {
			patch, ok := config.Patches[number]
			if !ok {
				writeNotFound(w)
				return
			}
			w.Header().Set("Content-Type", "text/x-patch")
			_, _ = io.WriteString(w, patch)
			return
		}

		pr, ok := config.PRs[number]
		if !ok {
			writeNotFound(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(pr)
	})

	mux.HandleFunc("/patches/", func(w http.ResponseWriter, r *http.Request) {
		config.record(r)
		name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/patches/"), ".patch")
		number, err := strconv.Atoi(name)
		if err != nil {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		patch, ok := config.Patches[number]
		if !ok {
			writeNotFound(w)
			return
		}
		_, _ = io.WriteString(w, patch)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func (c *MockGitHubServerConfig) record(r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, r.URL.Path)
	c.auth = append(c.auth, r.Header.Get("Authorization"))
}

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Not Found"})
}

// MockPatchSource is an in-memory githubpkg.PatchSource
type MockPatchSource struct {
	Patches map[int]string
	PRs     map[int]*githubpkg.PullRequestInfo
	Err     error
	Fetched []int
}

var _ githubpkg.PatchSource = (*MockPatchSource)(nil)

// NewMockPatchSource creates an empty MockPatchSource
func NewMockPatchSource() *MockPatchSource {
	return &MockPatchSource{
		Patches: make(map[int]string),
		PRs:     make(map[int]*githubpkg.PullRequestInfo),
	}
}

// FetchPatch writes the scripted patch for id
func (m *MockPatchSource) FetchPatch(_ context.Context, id int, w io.Writer) error {
	m.Fetched = append(m.Fetched, id)
	if m.Err != nil {
		return m.Err
	}
	patch, ok := m.Patches[id]
	if !ok {
		return fmt.Errorf("no patch for pull request %d", id)
	}
	_, err := io.WriteString(w, patch)
	return err
}

// PatchURL returns a fake download URL
func (m *MockPatchSource) PatchURL(id int) string {
	return fmt.Sprintf("https://patches.example/%d.patch", id)
}

// PullRequest returns the scripted metadata for id
func (m *MockPatchSource) PullRequest(_ context.Context, id int) (*githubpkg.PullRequestInfo, error) {
	pr, ok := m.PRs[id]
	if !ok {
		return nil, fmt.Errorf("pull request %d not found", id)
	}
	return pr, nil
}

// PullRequestURL returns a fake browser URL
func (m *MockPatchSource) PullRequestURL(id int) string {
	return fmt.Sprintf("https://github.com/owner/repo/pull/%d", id)
}
