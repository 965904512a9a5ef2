// Package git provides low-level Git operations.
//
// It wraps git command execution and provides a Go-friendly interface split in two groups:
//   - Querier: branch and ref probes, cherry-pick aware commit listing, log search, status
//   - Mutator: fetch, checkout, branch create/delete, fast-forward, rebase, cherry-pick,
//     amend, patch application, alias setup
//
// This package should be the only place where direct git commands are executed.
package git
