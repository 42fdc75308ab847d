// Package github implements the GitHub issue and pull request
// integration on top of the official REST client.
package github

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/fyrsmithlabs/reflink/internal/autolink"
	"github.com/fyrsmithlabs/reflink/internal/config"
	"github.com/fyrsmithlabs/reflink/internal/integration"
	"github.com/fyrsmithlabs/reflink/internal/logging"
)

const (
	integrationID = "github"
	domain        = "github.com"
)

// Options configures the GitHub client.
type Options struct {
	Token  config.Secret
	Budget *integration.Budget
	Logger *logging.Logger

	// Repos lists "owner/name" repositories whose configured autolink
	// references are fetched and offered as definitions.
	Repos []string
}

// Client is the GitHub integration. It satisfies autolink.Integration.
type Client struct {
	gh     *github.Client
	token  config.Secret
	budget *integration.Budget
	log    *logging.Logger
	repos  []string
}

// New creates a GitHub client. An unset token yields a disconnected
// client rather than an error; the engine skips it.
func New(ctx context.Context, opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	c := &Client{
		token:  opts.Token,
		budget: opts.Budget,
		log:    opts.Logger,
		repos:  opts.Repos,
	}

	if opts.Token.IsSet() {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token.Value()})
		c.gh = github.NewClient(oauth2.NewClient(ctx, ts))
	}
	return c
}

func (c *Client) ID() string     { return integrationID }
func (c *Client) Domain() string { return domain }

func (c *Client) State() autolink.ConnectionState {
	if c.gh == nil {
		return autolink.ConnectionDisconnected
	}
	return autolink.ConnectionConnected
}

func (c *Client) Connected(context.Context) bool {
	return c.gh != nil
}

func (c *Client) Access(context.Context) error {
	if c.gh == nil {
		return integration.ErrNotConnected
	}
	return c.budget.Allow()
}

// Autolinks lists the configured autolink references of every
// configured repository. GitHub's URL templates use the same <num>
// placeholder the engine does, so they pass through unchanged.
func (c *Client) Autolinks(ctx context.Context) *autolink.Future[[]autolink.Definition] {
	if c.gh == nil || len(c.repos) == 0 {
		return autolink.Resolved[[]autolink.Definition](nil)
	}

	return autolink.Go(func() ([]autolink.Definition, error) {
		var defs []autolink.Definition
		for _, slug := range c.repos {
			owner, name, ok := splitSlug(slug)
			if !ok {
				c.log.Warn(ctx, "skipping malformed repository slug", zap.String("repo", slug))
				continue
			}

			links, _, err := c.gh.Repositories.ListAutolinks(ctx, owner, name, nil)
			if err != nil {
				return nil, fmt.Errorf("listing autolinks for %s: %w", slug, err)
			}

			desc := &autolink.Descriptor{Key: slug, Owner: owner, Name: name}
			info := &autolink.ProviderInfo{ID: integrationID, Domain: domain}
			for _, l := range links {
				if l.GetKeyPrefix() == "" || l.GetURLTemplate() == "" {
					continue
				}
				defs = append(defs, &autolink.StaticDefinition{
					Prefix:       l.GetKeyPrefix(),
					URLTemplate:  l.GetURLTemplate(),
					Alphanumeric: l.GetIsAlphanumeric(),
					Descriptor:   desc,
					Provider:     info,
				})
			}
		}
		return defs, nil
	})
}

// IssueOrPullRequest fetches one issue or pull request. A 404 settles
// as (nil, nil): the reference points at nothing.
func (c *Client) IssueOrPullRequest(ctx context.Context, repo autolink.Descriptor, id string, typ autolink.IssueType) (*autolink.IssueOrPullRequest, error) {
	if c.gh == nil {
		return nil, integration.ErrNotConnected
	}

	num, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("non-numeric issue id %q", id)
	}

	issue, resp, err := c.gh.Issues.Get(ctx, repo.Owner, repo.Name, num)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching %s/%s#%d: %w", repo.Owner, repo.Name, num, err)
	}

	result := &autolink.IssueOrPullRequest{
		Type:      autolink.IssueTypeIssue,
		ID:        id,
		Title:     issue.GetTitle(),
		URL:       issue.GetHTMLURL(),
		State:     issueState(issue.GetState()),
		CreatedAt: issue.GetCreatedAt().Time,
		ClosedAt:  issue.GetClosedAt().Time,
	}

	if issue.IsPullRequest() {
		result.Type = autolink.IssueTypePullRequest
		// The issues API cannot distinguish merged from closed.
		pr, _, err := c.gh.PullRequests.Get(ctx, repo.Owner, repo.Name, num)
		if err == nil && pr.GetMerged() {
			result.State = autolink.IssueStateMerged
			result.ClosedAt = pr.GetMergedAt().Time
		}
	}
	return result, nil
}

func issueState(s string) autolink.IssueState {
	if s == "closed" {
		return autolink.IssueStateClosed
	}
	return autolink.IssueStateOpened
}

func splitSlug(slug string) (owner, name string, ok bool) {
	for i := 0; i < len(slug); i++ {
		if slug[i] == '/' {
			owner, name = slug[:i], slug[i+1:]
			return owner, name, owner != "" && name != ""
		}
	}
	return "", "", false
}
