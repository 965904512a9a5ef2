package cli

import (
	"os"

	"github.com/spf13/cobra"

	"backport.dev/backport/internal/actions/setup"
	"backport.dev/backport/internal/runtime"
)

// newSetupCmd creates the setup command
func newSetupCmd(flags *globalFlags) *cobra.Command {
	var opts setup.Options

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Save repository defaults and install the git mfc and git pr aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if exe, err := os.Executable(); err == nil {
				opts.Command = exe
			}
			return withContext(cmd, flags, func(ctx *runtime.Context) error {
				_, err := setup.Action(ctx, opts)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&opts.Reviewer, "reviewer", "", "Identity for Reviewed-by trailers")
	cmd.Flags().StringVar(&opts.GitHubRepo, "github-repo", "", "owner/name pull requests are fetched from")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Refuse MFC runs with local changes")
	cmd.Flags().BoolVar(&opts.NoAlias, "no-alias", false, "Do not touch the global git config")

	return cmd
}
