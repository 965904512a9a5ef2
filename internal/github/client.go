// Package github retrieves pull request patches and metadata.
package github

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	backporterrors "backport.dev/backport/internal/errors"
)

// PullRequestInfo contains information about a pull request
// This is a simplified struct to avoid coupling to go-github library
type PullRequestInfo struct {
	Number  int
	HTMLURL string
	Title   string
	Author  string
	State   string
}

// PatchSource downloads pull request patches
type PatchSource interface {
	// FetchPatch writes the mbox formatted patch series of pull request id to w
	FetchPatch(ctx context.Context, id int, w io.Writer) error

	// PatchURL returns the URL FetchPatch requests for pull request id
	PatchURL(id int) string

	// PullRequest returns metadata about pull request id
	PullRequest(ctx context.Context, id int) (*PullRequestInfo, error)

	// PullRequestURL returns the browser URL of pull request id
	PullRequestURL(id int) string
}

// ClientOptions configures a Client
type ClientOptions struct {
	// Repo is the "owner/name" of the repository pull requests belong to
	Repo string
	// PatchURLTemplate replaces the API download when set; "{repo}" and "{id}" are substituted
	PatchURLTemplate string
	// Token authenticates API calls; the client is anonymous when empty
	Token string
	// BaseURL overrides the API endpoint (GitHub Enterprise, tests)
	BaseURL string
}

// Client implements PatchSource with go-github
type Client struct {
	gh *github.Client
	// anon downloads templated patches from hosts other than the API
	anon             *github.Client
	owner            string
	repo             string
	patchURLTemplate string
}

var _ PatchSource = (*Client)(nil)

// NewClient creates a GitHub client for the configured repository
func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	owner, repo, err := ParseRepo(opts.Repo)
	if err != nil {
		return nil, err
	}

	var gh *github.Client
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: opts.Token},
		)
		gh = github.NewClient(oauth2.NewClient(ctx, ts))
	} else {
		gh = github.NewClient(nil)
	}

	if opts.BaseURL != "" {
		baseURL := opts.BaseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", opts.BaseURL, err)
		}
		gh.BaseURL = parsed
	}

	return &Client{
		gh:               gh,
		anon:             github.NewClient(nil),
		owner:            owner,
		repo:             repo,
		patchURLTemplate: opts.PatchURLTemplate,
	}, nil
}

// ParseRepo splits "owner/name"
func ParseRepo(value string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid GitHub repository %q (expected owner/name)", value)
	}
	return owner, name, nil
}

// PatchURL returns the URL FetchPatch requests for pull request id:
// the expanded template, or the API pull request endpoint.
func (c *Client) PatchURL(id int) string {
	if c.patchURLTemplate != "" {
		return strings.NewReplacer(
			"{repo}", c.owner+"/"+c.repo,
			"{id}", strconv.Itoa(id),
		).Replace(c.patchURLTemplate)
	}
	return fmt.Sprintf("%srepos/%s/%s/pulls/%d", c.gh.BaseURL, c.owner, c.repo, id)
}

// FetchPatch downloads the patch for pull request id.
// Without a URL template the API's patch media type is used.
func (c *Client) FetchPatch(ctx context.Context, id int, w io.Writer) error {
	patchURL := c.PatchURL(id)
	if c.patchURLTemplate == "" {
		patch, _, err := c.gh.PullRequests.GetRaw(ctx, c.owner, c.repo, id, github.RawOptions{Type: github.Patch})
		if err != nil {
			return backporterrors.NewPatchFetchError(patchURL, err)
		}
		if _, err := io.WriteString(w, patch); err != nil {
			return fmt.Errorf("failed to write patch: %w", err)
		}
		return nil
	}

	parsed, err := url.Parse(patchURL)
	if err != nil {
		return backporterrors.NewPatchFetchError(patchURL, err)
	}
	// The token only goes to the API host
	gh := c.anon
	if parsed.Host == c.gh.BaseURL.Host {
		gh = c.gh
	}
	req, err := gh.NewRequest("GET", patchURL, nil)
	if err != nil {
		return backporterrors.NewPatchFetchError(patchURL, err)
	}
	if _, err := gh.Do(ctx, req, w); err != nil {
		return backporterrors.NewPatchFetchError(patchURL, err)
	}
	return nil
}

// PullRequest returns metadata about pull request id
func (c *Client) PullRequest(ctx context.Context, id int) (*PullRequestInfo, error) {
	pr, _, err := c.gh.PullRequests.Get(ctx, c.owner, c.repo, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request %d: %w", id, err)
	}
	return &PullRequestInfo{
		Number:  pr.GetNumber(),
		HTMLURL: pr.GetHTMLURL(),
		Title:   pr.GetTitle(),
		Author:  pr.GetUser().GetLogin(),
		State:   pr.GetState(),
	}, nil
}

// PullRequestURL returns the browser URL of pull request id
func (c *Client) PullRequestURL(id int) string {
	return fmt.Sprintf("https://github.com/%s/%s/pull/%d", c.owner, c.repo, id)
}

// LookupToken returns a GitHub token from GITHUB_TOKEN or the gh CLI.
// An empty token means anonymous access.
func LookupToken(ctx context.Context) string {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token
	}
	if _, err := exec.LookPath("gh"); err != nil {
		return ""
	}
	output, err := exec.CommandContext(ctx, "gh", "auth", "token").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}
