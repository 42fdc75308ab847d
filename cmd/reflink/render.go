package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/reflink/internal/autolink"
)

var (
	renderEnrich  bool
	renderTimeout time.Duration
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Rewrite references in text into links",
	Long: `Rewrite issue and pull request references in text into links.

Input comes from a file argument, from stdin with "-", or from the
commit message at HEAD when omitted. The output format is chosen with
--format.

Examples:
  # Render the HEAD commit message as markdown
  reflink render --format markdown

  # Render a changelog file
  reflink render --format html CHANGELOG

  # Render stdin with live issue state
  git log -1 --format=%B | reflink render --enrich -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().BoolVar(&renderEnrich, "enrich", false, "fetch live issue state before rendering")
	renderCmd.Flags().DurationVar(&renderTimeout, "timeout", 5*time.Second, "how long to wait for enrichment")
}

func runRender(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := runContext(cmd)

	format, err := outputFormat()
	if err != nil {
		return err
	}

	text, remote, err := renderInput(args)
	if err != nil {
		return err
	}

	opts := autolink.RenderOptions{}
	if remote != nil {
		opts.Remotes = []*autolink.Remote{remote}
	}

	if renderEnrich {
		refs := a.engine.Autolinks(ctx, text, remote)
		enriched := a.engine.EnrichedAutolinks(ctx, refs, remote)
		if enriched != nil {
			awaitEnrichment(ctx, enriched)
			opts.Enriched = enriched
			opts.Remotes = nil
		}
	}

	if format == autolink.FormatMarkdown {
		text = autolink.EscapeMarkdown(text)
	}

	fmt.Fprintln(cmd.OutOrStdout(), a.engine.Render(ctx, text, format, opts))
	return nil
}

// awaitEnrichment gives the in-flight fetches a bounded window to
// settle; whatever is still pending renders in its loading state.
func awaitEnrichment(ctx context.Context, enriched *autolink.EnrichedMap) {
	ctx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()

	for _, key := range enriched.Keys() {
		ea, _ := enriched.Get(key)
		if ea.Result == nil {
			continue
		}
		select {
		case <-ea.Result.Done():
		case <-ctx.Done():
			return
		}
	}
}

// renderInput resolves the text to render and the remote providing
// context.
func renderInput(args []string) (string, *autolink.Remote, error) {
	info, err := repoInfo()

	var remote *autolink.Remote
	if err == nil {
		remote = info.PrimaryRemote()
	}

	if len(args) == 0 {
		if err != nil {
			return "", nil, err
		}
		return strings.TrimRight(info.HeadMessage, "\n"), remote, nil
	}

	var content []byte
	if args[0] == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", nil, fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(string(content), "\n"), remote, nil
}
