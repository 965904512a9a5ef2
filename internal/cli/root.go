// Package cli wires the backport commands to cobra.
package cli

import (
	"github.com/spf13/cobra"

	"backport.dev/backport/internal/runtime"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	verbose bool
	noColor bool
}

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "backport",
		Short: "Backport merges mainline commits into stable branches and stages pull requests",
		Long: `Backport merges mainline commits into stable branches and stages pull requests.

MFC work happens on a working branch named after the stable branch
(stable/14 is worked on in stable/mfc14). Pull requests are staged on
PR-<id> branches off mainline.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Show debug output")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newMfcCmd(flags))
	rootCmd.AddCommand(newPRCmd(flags))
	rootCmd.AddCommand(newSetupCmd(flags))
	rootCmd.AddCommand(newVersionCmd(version, commit, date))

	return rootCmd
}

// withContext opens the repository for cmd and closes the log file afterwards
func withContext(cmd *cobra.Command, flags *globalFlags, fn func(*runtime.Context) error) error {
	ctx, err := runtime.GetContext(cmd.Context(), runtime.Options{
		Verbose: flags.verbose,
		NoColor: flags.noColor,
	})
	if err != nil {
		return err
	}
	defer func() { _ = ctx.Close() }()
	return fn(ctx)
}
