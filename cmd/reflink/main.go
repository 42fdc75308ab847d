// Package main implements the reflink CLI: it recognizes issue and
// pull request references in commit messages and branch names and
// rewrites them into links.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/reflink/internal/autolink"
	"github.com/fyrsmithlabs/reflink/internal/config"
	"github.com/fyrsmithlabs/reflink/internal/gitinfo"
	"github.com/fyrsmithlabs/reflink/internal/integration"
	githubintegration "github.com/fyrsmithlabs/reflink/internal/integration/github"
	gitlabintegration "github.com/fyrsmithlabs/reflink/internal/integration/gitlab"
	jiraintegration "github.com/fyrsmithlabs/reflink/internal/integration/jira"
	"github.com/fyrsmithlabs/reflink/internal/logging"
)

var (
	configPath string
	repoPath   string
	formatName string

	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reflink",
	Short: "Turn issue references in commits and branches into links",
	Long: `reflink recognizes references like #123 or JIRA-456 in commit messages
and branch names and rewrites them into links, optionally enriched with
live issue state from GitHub, GitLab or Jira.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/reflink/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&repoPath, "repo", ".", "path to the git repository")
	rootCmd.PersistentFlags().StringVar(&formatName, "format", "plaintext", "output format: plaintext, markdown or html")
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(renderCmd)
}

// app bundles everything a command run needs.
type app struct {
	cfg    *config.Config
	log    *logging.Logger
	engine *autolink.Engine
}

// outboundBudget keeps one CLI run from hammering the providers.
var outboundBudget = integration.NewBudget(10, 30)

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	ctx := cmd.Context()
	registry := autolink.NewRegistry()

	registry.Register(githubintegration.New(ctx, githubintegration.Options{
		Token:  cfg.Providers.GitHub.Token,
		Repos:  cfg.Providers.GitHub.Repos,
		Budget: outboundBudget,
		Logger: log,
	}))

	gitlabClient, err := gitlabintegration.New(gitlabintegration.Options{
		BaseURL: cfg.Providers.GitLab.BaseURL,
		Token:   cfg.Providers.GitLab.Token,
		Budget:  outboundBudget,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}
	registry.Register(gitlabClient)

	jiraClient, err := jiraintegration.New(jiraintegration.Options{
		BaseURL:  cfg.Providers.Jira.BaseURL,
		Username: cfg.Providers.Jira.Username,
		APIToken: cfg.Providers.Jira.APIToken,
		Budget:   outboundBudget,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}
	registry.Register(jiraClient)

	engine := autolink.New(autolink.Options{
		Logger:          log,
		Registry:        registry,
		Metrics:         autolink.NewMetrics(),
		CacheTTL:        cfg.Cache.TTL.Duration(),
		CacheMaxEntries: cfg.Cache.MaxEntries,
	})
	engine.SetCustomAutolinks(customDefinitions(cfg))

	return &app{cfg: cfg, log: log, engine: engine}, nil
}

// customDefinitions converts the configured custom autolinks into
// engine definitions.
func customDefinitions(cfg *config.Config) []autolink.Definition {
	defs := make([]autolink.Definition, 0, len(cfg.Autolinks))
	for _, def := range cfg.CustomAutolinks() {
		defs = append(defs, &autolink.StaticDefinition{
			Prefix:              def.Prefix,
			URLTemplate:         def.URL,
			TitleTemplate:       def.Title,
			DescriptionTemplate: def.Description,
			Alphanumeric:        def.Alphanumeric,
			IgnoreCase:          def.IgnoreCase,
		})
	}
	return defs
}

func outputFormat() (autolink.Format, error) {
	switch formatName {
	case "plaintext", "text", "":
		return autolink.FormatPlaintext, nil
	case "markdown", "md":
		return autolink.FormatMarkdown, nil
	case "html":
		return autolink.FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown format %q", formatName)
	}
}

func repoInfo() (*gitinfo.Info, error) {
	return gitinfo.Read(repoPath)
}

// runContext tags the command context with a per-run scan id so every
// log line of one invocation correlates.
func runContext(cmd *cobra.Command) context.Context {
	return logging.WithScanID(cmd.Context(), uuid.NewString())
}
