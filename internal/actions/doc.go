// Package actions provides the workflow state shared by the backport commands.
//
// Each command lives in its own subpackage (mfc, pr, setup) and orchestrates
// operations across the engine, git, and github packages.
//
// Key patterns:
//   - Actions accept runtime.Context which provides the git runner, Splog, config and prompts
//   - Actions keep no state between invocations; a Tracker records progress within one run
//   - A failed mutation halts the workflow; nothing already applied is rolled back
package actions
