// Package runtime provides the execution context for backport commands.
//
// A Context is built once per process and passed to every action. It carries
// the git runner, logger, repository configuration, prompts and the clock,
// so actions never consult global state.
package runtime
