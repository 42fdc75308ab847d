package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/reflink/internal/autolink"
)

var (
	scanEnrich  bool
	scanTimeout time.Duration
)

var scanCmd = &cobra.Command{
	Use:   "scan [message]",
	Short: "List the references found in a commit message",
	Long: `Scan a commit message for issue and pull request references.

With no message argument the commit message at HEAD of the repository
given by --repo is scanned.

Examples:
  # Scan the HEAD commit
  reflink scan

  # Scan an arbitrary message
  reflink scan "Fix JIRA-123 and close #42"

  # Include live issue state
  reflink scan --enrich`,
	Args: cobra.ArbitraryArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanEnrich, "enrich", false, "fetch live issue state for each reference")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 5*time.Second, "how long to wait for enrichment")
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := runContext(cmd)

	message, remote, err := scanInput(args)
	if err != nil {
		return err
	}

	refs := a.engine.Autolinks(ctx, message, remote)
	if refs.Len() == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no references found")
		return nil
	}

	if !scanEnrich {
		for _, key := range refs.Keys() {
			ref := refs.Get(key)
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s\t%s\n", ref.Prefix, ref.ID, ref.URL)
		}
		return nil
	}

	enriched := a.engine.EnrichedAutolinks(ctx, refs, remote)
	waitCtx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	for _, key := range enriched.Keys() {
		ea, _ := enriched.Get(key)
		fmt.Fprintln(cmd.OutOrStdout(), describeEnriched(waitCtx, ea))
	}
	return nil
}

// scanInput resolves the message to scan and the remote providing
// context. The repository is best effort when an explicit message is
// given; it is required when the HEAD message is wanted.
func scanInput(args []string) (string, *autolink.Remote, error) {
	info, err := repoInfo()
	if len(args) > 0 {
		var remote *autolink.Remote
		if err == nil {
			remote = info.PrimaryRemote()
		}
		return strings.Join(args, " "), remote, nil
	}
	if err != nil {
		return "", nil, err
	}
	return info.HeadMessage, info.PrimaryRemote(), nil
}

func describeEnriched(ctx context.Context, ea autolink.EnrichedAutolink) string {
	ref := ea.Autolink
	line := ref.Prefix + ref.ID + "\t" + ref.URL

	if ea.Result == nil {
		return line
	}
	v, err := ea.Result.Wait(ctx)
	if err != nil || v == nil {
		return line + "\t(not found)"
	}
	return fmt.Sprintf("%s\t%s [%s]", line, v.Title, v.State)
}
