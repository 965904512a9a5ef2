package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultRemote is the upstream remote fetched by the workflows
	DefaultRemote = "origin"
	// DefaultMainline is the branch MFC candidates come from and PRs are staged on
	DefaultMainline = "main"
	// DefaultGitHubRepo is the repository pull requests are fetched from
	DefaultGitHubRepo = "freebsd/freebsd-src"

	configFileName = ".backport_config"
)

// CleanTreePolicy decides what happens when the working tree has local changes
type CleanTreePolicy string

const (
	// CleanTreeWarn logs a warning and carries on
	CleanTreeWarn CleanTreePolicy = "warn"
	// CleanTreeStrict refuses to continue
	CleanTreeStrict CleanTreePolicy = "strict"
)

// RepoConfig represents the repository configuration
type RepoConfig struct {
	Remote           *string `json:"remote,omitempty"`
	Mainline         *string `json:"mainline,omitempty"`
	PRPrefix         *string `json:"prPrefix,omitempty"`
	CleanTreePolicy  *string `json:"cleanTreePolicy,omitempty"`
	PatchURLTemplate *string `json:"patchUrlTemplate,omitempty"`
	GitHubRepo       *string `json:"githubRepo,omitempty"`
	Reviewer         *string `json:"reviewer,omitempty"`
	MergedCache      *bool   `json:"mergedCache,omitempty"`
}

// ConfigPath returns the location of the repository configuration file
func ConfigPath(gitDir string) string {
	return filepath.Join(gitDir, configFileName)
}

// GetRepoConfig reads the repository configuration
func GetRepoConfig(gitDir string) (*RepoConfig, error) {
	data, err := os.ReadFile(ConfigPath(gitDir))
	if err != nil {
		// Config doesn't exist - return default
		return &RepoConfig{}, nil
	}

	var config RepoConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse repo config: %w", err)
	}

	if config.CleanTreePolicy != nil {
		if _, err := ParseCleanTreePolicy(*config.CleanTreePolicy); err != nil {
			return nil, err
		}
	}

	return &config, nil
}

// SaveRepoConfig writes the repository configuration
func SaveRepoConfig(gitDir string, config *RepoConfig) error {
	configJSON, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(ConfigPath(gitDir), configJSON, 0600)
}

// ParseCleanTreePolicy validates a policy name
func ParseCleanTreePolicy(value string) (CleanTreePolicy, error) {
	switch CleanTreePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case CleanTreeWarn, "":
		return CleanTreeWarn, nil
	case CleanTreeStrict:
		return CleanTreeStrict, nil
	default:
		return "", fmt.Errorf("invalid clean tree policy %q (expected warn or strict)", value)
	}
}

// GetRemote returns the configured remote, or "origin"
func (c *RepoConfig) GetRemote() string {
	return stringOr(c.Remote, DefaultRemote)
}

// GetMainline returns the configured mainline branch, or "main"
func (c *RepoConfig) GetMainline() string {
	return stringOr(c.Mainline, DefaultMainline)
}

// GetPRPrefix returns the configured PR branch prefix, or "PR"
func (c *RepoConfig) GetPRPrefix() string {
	return stringOr(c.PRPrefix, "PR")
}

// GetCleanTreePolicy returns the configured policy, warn by default
func (c *RepoConfig) GetCleanTreePolicy() CleanTreePolicy {
	if c.CleanTreePolicy == nil {
		return CleanTreeWarn
	}
	policy, err := ParseCleanTreePolicy(*c.CleanTreePolicy)
	if err != nil {
		return CleanTreeWarn
	}
	return policy
}

// GetGitHubRepo returns the owner/name of the repository pull requests come from
func (c *RepoConfig) GetGitHubRepo() string {
	return stringOr(c.GitHubRepo, DefaultGitHubRepo)
}

// GetPatchURLTemplate returns the custom patch URL template, or an empty string
// when patches come from the GitHub API. "{repo}" and "{id}" are expanded by the client.
func (c *RepoConfig) GetPatchURLTemplate() string {
	return stringOr(c.PatchURLTemplate, "")
}

// GetReviewer returns the configured reviewer, or an empty string
func (c *RepoConfig) GetReviewer() string {
	return stringOr(c.Reviewer, "")
}

// IsMergedCacheEnabled returns whether already-merged checks are cached, true by default
func (c *RepoConfig) IsMergedCacheEnabled() bool {
	if c.MergedCache == nil {
		return true
	}
	return *c.MergedCache
}

func stringOr(value *string, fallback string) string {
	if value != nil && strings.TrimSpace(*value) != "" {
		return strings.TrimSpace(*value)
	}
	return fallback
}

// SetReviewer records the reviewer identity used by pr --mark
func (c *RepoConfig) SetReviewer(reviewer string) {
	c.Reviewer = &reviewer
}

// SetGitHubRepo records the owner/name pull requests are fetched from
func (c *RepoConfig) SetGitHubRepo(repo string) {
	c.GitHubRepo = &repo
}

// SetCleanTreePolicy records the dirty working tree policy
func (c *RepoConfig) SetCleanTreePolicy(policy CleanTreePolicy) {
	value := string(policy)
	c.CleanTreePolicy = &value
}
