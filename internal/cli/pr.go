package cli

import (
	"github.com/spf13/cobra"

	"backport.dev/backport/internal/actions/pr"
	"backport.dev/backport/internal/runtime"
)

// newPRCmd creates the pr command
func newPRCmd(flags *globalFlags) *cobra.Command {
	var opts pr.Options

	cmd := &cobra.Command{
		Use:   "pr",
		Short: "Stage a GitHub pull request on a local branch and land it",
		Long: `Stage a GitHub pull request on a local branch and land it.

Operations run in this order: --delete, --update, --stage, --mark,
--rebase, --push. With no operation flag, --stage is assumed.

  backport pr -n 1234                # PR-1234 from mainline with the patch applied
  backport pr -n 1234 --mark         # add Reviewed-by and Pull-Request trailers
  backport pr -n 1234 --push         # cherry-pick PR-1234 onto mainline`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContext(cmd, flags, func(ctx *runtime.Context) error {
				_, err := pr.Action(ctx, opts)
				return err
			})
		},
	}

	cmd.Flags().IntVarP(&opts.ID, "id", "n", 0, "Pull request number")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "Branch name prefix (defaults to the configured prefix, PR)")
	cmd.Flags().StringVar(&opts.Remote, "remote", "", "Remote to fetch (defaults to the configured remote)")
	cmd.Flags().StringVar(&opts.Reviewer, "reviewer", "", "Identity for the Reviewed-by trailer")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Replace an existing branch when staging")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Replace a --force branch without asking")
	cmd.Flags().BoolVar(&opts.Delete, "delete", false, "Delete the pull request branch")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "Fast-forward mainline from the remote")
	cmd.Flags().BoolVar(&opts.Stage, "stage", false, "Create the branch and apply the patch")
	cmd.Flags().BoolVar(&opts.Mark, "mark", false, "Add review trailers to every commit on the branch")
	cmd.Flags().BoolVar(&opts.Rebase, "rebase", false, "Rebase the branch onto mainline")
	cmd.Flags().BoolVar(&opts.Push, "push", false, "Cherry-pick the branch onto mainline")

	return cmd
}
