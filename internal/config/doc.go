// Package config manages backport configuration and local state files.
//
// It handles:
//   - Repository-specific configuration (.backport_config in the git directory)
//   - Per-path mfc.exclude exclusion lists and the operator's local skip list
//   - The persisted cache of already-merged candidate checks
package config
