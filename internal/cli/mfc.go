package cli

import (
	"github.com/spf13/cobra"

	"backport.dev/backport/internal/actions/mfc"
	"backport.dev/backport/internal/runtime"
	"backport.dev/backport/internal/utils"
)

// newMfcCmd creates the mfc command
func newMfcCmd(flags *globalFlags) *cobra.Command {
	var opts mfc.Options

	cmd := &cobra.Command{
		Use:   "mfc [commit...]",
		Short: "Merge commits from mainline into the stable branch you are on",
		Long: `Merge commits from mainline into the stable branch you are on.

Run from stable/<N> or stable/mfc<N>. The stable branch is fast-forwarded
from the remote, the working branch stable/mfc<N> is rebased onto it (or
created), and each commit is cherry-picked with provenance.

With no commits, only the branches are brought up to date. Use --list to
see the candidates not yet merged into the stable branch, or --candidates
to replay them. Pass "-" to read the commits from standard input, one or
more per line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && args[0] == "-" {
				commits, err := utils.ReadStdinFields()
				if err != nil {
					return err
				}
				args = commits
			}
			opts.Commits = args
			return withContext(cmd, flags, func(ctx *runtime.Context) error {
				_, err := mfc.Action(ctx, opts)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&opts.Base, "base", "", "Branch commits come from (defaults to the configured mainline)")
	cmd.Flags().BoolVar(&opts.List, "list", false, "List candidates without changing any branch")
	cmd.Flags().BoolVar(&opts.YAML, "yaml", false, "Print the --list report as YAML")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "Update the stable and working branches, then stop")
	cmd.Flags().BoolVar(&opts.UseCandidates, "candidates", false, "Replay the discovered candidates")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Replay --candidates without asking")
	cmd.Flags().StringArrayVar(&opts.Paths, "path", nil, "Only consider commits touching this path (repeatable)")
	cmd.Flags().StringVar(&opts.Remote, "remote", "", "Remote to fetch (defaults to the configured remote)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Refuse to run with local changes")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Do not use the merged-commit cache")
	cmd.Flags().StringArrayVar(&opts.Skip, "skip", nil, "Never offer this commit again (repeatable)")

	return cmd
}
