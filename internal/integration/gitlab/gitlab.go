// Package gitlab implements the GitLab issue and merge request
// integration, including self-hosted instances.
package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	gitlab "github.com/xanzy/go-gitlab"

	"github.com/fyrsmithlabs/reflink/internal/autolink"
	"github.com/fyrsmithlabs/reflink/internal/config"
	"github.com/fyrsmithlabs/reflink/internal/integration"
	"github.com/fyrsmithlabs/reflink/internal/logging"
)

const integrationID = "gitlab"

// Options configures the GitLab client.
type Options struct {
	// BaseURL points at a self-hosted instance; empty means gitlab.com.
	BaseURL string
	Token   config.Secret
	Budget  *integration.Budget
	Logger  *logging.Logger
}

// Client is the GitLab integration. It satisfies autolink.Integration.
type Client struct {
	gl     *gitlab.Client
	domain string
	budget *integration.Budget
	log    *logging.Logger
}

// New creates a GitLab client. An unset token yields a disconnected
// client; a malformed base URL is an error.
func New(opts Options) (*Client, error) {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	c := &Client{
		domain: "gitlab.com",
		budget: opts.Budget,
		log:    opts.Logger,
	}

	if opts.BaseURL != "" {
		u, err := url.Parse(opts.BaseURL)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid GitLab base URL %q", opts.BaseURL)
		}
		c.domain = u.Host
	}

	if opts.Token.IsSet() {
		var clientOpts []gitlab.ClientOptionFunc
		if opts.BaseURL != "" {
			clientOpts = append(clientOpts, gitlab.WithBaseURL(opts.BaseURL))
		}
		gl, err := gitlab.NewClient(opts.Token.Value(), clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("creating GitLab client: %w", err)
		}
		c.gl = gl
	}
	return c, nil
}

func (c *Client) ID() string     { return integrationID }
func (c *Client) Domain() string { return c.domain }

func (c *Client) State() autolink.ConnectionState {
	if c.gl == nil {
		return autolink.ConnectionDisconnected
	}
	return autolink.ConnectionConnected
}

func (c *Client) Connected(context.Context) bool {
	return c.gl != nil
}

func (c *Client) Access(context.Context) error {
	if c.gl == nil {
		return integration.ErrNotConnected
	}
	return c.budget.Allow()
}

// Autolinks returns nothing: GitLab has no per-repository reference
// configuration to list; its definitions come from remote URL
// recognition.
func (c *Client) Autolinks(context.Context) *autolink.Future[[]autolink.Definition] {
	return autolink.Resolved[[]autolink.Definition](nil)
}

// IssueOrPullRequest fetches one issue or merge request. With an
// unknown type the issue endpoint is tried first, then merge requests.
// A 404 on all applicable endpoints settles as (nil, nil).
func (c *Client) IssueOrPullRequest(ctx context.Context, repo autolink.Descriptor, id string, typ autolink.IssueType) (*autolink.IssueOrPullRequest, error) {
	if c.gl == nil {
		return nil, integration.ErrNotConnected
	}

	iid, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("non-numeric reference id %q", id)
	}

	if typ != autolink.IssueTypePullRequest {
		issue, resp, err := c.gl.Issues.GetIssue(repo.Key, iid, gitlab.WithContext(ctx))
		switch {
		case err == nil:
			return issueResult(id, issue), nil
		case !notFound(resp):
			return nil, fmt.Errorf("fetching %s#%d: %w", repo.Key, iid, err)
		case typ == autolink.IssueTypeIssue:
			return nil, nil
		}
	}

	mr, resp, err := c.gl.MergeRequests.GetMergeRequest(repo.Key, iid, nil, gitlab.WithContext(ctx))
	if err != nil {
		if notFound(resp) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching %s!%d: %w", repo.Key, iid, err)
	}
	return mergeRequestResult(id, mr), nil
}

func issueResult(id string, issue *gitlab.Issue) *autolink.IssueOrPullRequest {
	state := autolink.IssueStateOpened
	if issue.State == "closed" {
		state = autolink.IssueStateClosed
	}
	return &autolink.IssueOrPullRequest{
		Type:      autolink.IssueTypeIssue,
		ID:        id,
		Title:     issue.Title,
		URL:       issue.WebURL,
		State:     state,
		CreatedAt: deref(issue.CreatedAt),
		ClosedAt:  deref(issue.ClosedAt),
	}
}

func mergeRequestResult(id string, mr *gitlab.MergeRequest) *autolink.IssueOrPullRequest {
	state := autolink.IssueStateOpened
	closedAt := deref(mr.ClosedAt)
	switch mr.State {
	case "merged":
		state = autolink.IssueStateMerged
		closedAt = deref(mr.MergedAt)
	case "closed":
		state = autolink.IssueStateClosed
	}
	return &autolink.IssueOrPullRequest{
		Type:      autolink.IssueTypePullRequest,
		ID:        id,
		Title:     mr.Title,
		URL:       mr.WebURL,
		State:     state,
		CreatedAt: deref(mr.CreatedAt),
		ClosedAt:  closedAt,
	}
}

func notFound(resp *gitlab.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
