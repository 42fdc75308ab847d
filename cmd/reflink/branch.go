package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/reflink/internal/autolink"
)

var branchCmd = &cobra.Command{
	Use:   "branch [name]",
	Short: "Resolve the issue reference a branch name carries",
	Long: `Guess which issue a branch name refers to.

With no argument the currently checked-out branch of the repository
given by --repo is used.

Examples:
  # Resolve the current branch
  reflink branch

  # Resolve an arbitrary branch name
  reflink branch feature/JIRA-1234-login`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBranch,
}

func runBranch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := runContext(cmd)

	info, err := repoInfo()
	var name string
	switch {
	case len(args) > 0:
		name = args[0]
	case err != nil:
		return err
	default:
		name = info.Branch
	}
	if name == "" {
		return fmt.Errorf("no branch to resolve (detached HEAD?)")
	}

	var remote *autolink.Remote
	if err == nil {
		remote = info.PrimaryRemote()
	}
	refs := a.engine.BranchAutolinks(ctx, name, remote)
	if refs.Len() == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no reference found")
		return nil
	}

	key := refs.Keys()[0]
	ref := refs.Get(key)
	fmt.Fprintf(cmd.OutOrStdout(), "%s%s\t%s\n", ref.Prefix, ref.ID, ref.URL)
	return nil
}
