// Package jira implements the Jira issue-tracking integration. It
// contributes one reference definition per visible project (the
// "KEY-123" style) and resolves issues by their full key.
package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"

	"github.com/fyrsmithlabs/reflink/internal/autolink"
	"github.com/fyrsmithlabs/reflink/internal/config"
	"github.com/fyrsmithlabs/reflink/internal/integration"
	"github.com/fyrsmithlabs/reflink/internal/logging"
)

const integrationID = "jira"

// Options configures the Jira client.
type Options struct {
	// BaseURL is the Jira instance, e.g. https://acme.atlassian.net.
	BaseURL  string
	Username string
	APIToken config.Secret
	Budget   *integration.Budget
	Logger   *logging.Logger
}

// Client is the Jira integration. It satisfies autolink.Integration.
type Client struct {
	jc      *jira.Client
	baseURL string
	domain  string
	budget  *integration.Budget
	log     *logging.Logger
}

// New creates a Jira client. Missing credentials yield a disconnected
// client; a malformed base URL is an error.
func New(opts Options) (*Client, error) {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.BaseURL == "" {
		return &Client{budget: opts.Budget, log: opts.Logger}, nil
	}

	u, err := url.Parse(opts.BaseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid Jira base URL %q", opts.BaseURL)
	}

	c := &Client{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		domain:  u.Host,
		budget:  opts.Budget,
		log:     opts.Logger,
	}

	if opts.Username != "" && opts.APIToken.IsSet() {
		tp := jira.BasicAuthTransport{
			Username: opts.Username,
			Password: opts.APIToken.Value(),
		}
		jc, err := jira.NewClient(tp.Client(), opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("creating Jira client: %w", err)
		}
		c.jc = jc
	}
	return c, nil
}

func (c *Client) ID() string     { return integrationID }
func (c *Client) Domain() string { return c.domain }

func (c *Client) State() autolink.ConnectionState {
	if c.jc == nil {
		return autolink.ConnectionDisconnected
	}
	return autolink.ConnectionConnected
}

func (c *Client) Connected(context.Context) bool {
	return c.jc != nil
}

func (c *Client) Access(context.Context) error {
	if c.jc == nil {
		return integration.ErrNotConnected
	}
	return c.budget.Allow()
}

// Autolinks lists the visible projects and derives one definition per
// project key. Jira issue lookups need the whole key, so the
// definitions mark their ids as prefixed.
func (c *Client) Autolinks(ctx context.Context) *autolink.Future[[]autolink.Definition] {
	if c.jc == nil {
		return autolink.Resolved[[]autolink.Definition](nil)
	}

	return autolink.Go(func() ([]autolink.Definition, error) {
		projects, _, err := c.jc.Project.GetListWithContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing Jira projects: %w", err)
		}

		info := &autolink.ProviderInfo{ID: integrationID, Domain: c.domain}
		defs := make([]autolink.Definition, 0, len(*projects))
		for _, p := range *projects {
			if p.Key == "" {
				continue
			}
			defs = append(defs, &autolink.StaticDefinition{
				Prefix:        p.Key + "-",
				URLTemplate:   c.baseURL + "/browse/" + p.Key + "-" + autolink.IDPlaceholder,
				TitleTemplate: p.Key + "-" + autolink.IDPlaceholder + " on " + c.domain,
				Descriptor:    &autolink.Descriptor{Key: p.Key, Name: p.Name},
				Provider:      info,
				PrefixedID:    true,
			})
		}
		return defs, nil
	})
}

// IssueOrPullRequest resolves a full issue key ("KEY-123"). A 404
// settles as (nil, nil).
func (c *Client) IssueOrPullRequest(ctx context.Context, _ autolink.Descriptor, id string, _ autolink.IssueType) (*autolink.IssueOrPullRequest, error) {
	if c.jc == nil {
		return nil, integration.ErrNotConnected
	}

	issue, resp, err := c.jc.Issue.GetWithContext(ctx, id, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching Jira issue %s: %w", id, err)
	}

	result := &autolink.IssueOrPullRequest{
		Type:  autolink.IssueTypeIssue,
		ID:    issue.Key,
		URL:   c.baseURL + "/browse/" + issue.Key,
		State: autolink.IssueStateOpened,
	}
	if issue.Fields != nil {
		result.Title = issue.Fields.Summary
		result.CreatedAt = time.Time(issue.Fields.Created)
		if done(issue.Fields.Status) {
			result.State = autolink.IssueStateClosed
			result.ClosedAt = time.Time(issue.Fields.Resolutiondate)
		}
	}
	return result, nil
}

func done(status *jira.Status) bool {
	return status != nil && strings.EqualFold(status.StatusCategory.Key, "done")
}
