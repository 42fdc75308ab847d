package github

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/reflink/internal/autolink"
	"github.com/fyrsmithlabs/reflink/internal/config"
	"github.com/fyrsmithlabs/reflink/internal/integration"
)

func TestClientConnectivity(t *testing.T) {
	ctx := context.Background()

	t.Run("no token means disconnected", func(t *testing.T) {
		c := New(ctx, Options{})
		assert.Equal(t, autolink.ConnectionDisconnected, c.State())
		assert.False(t, c.Connected(ctx))
		assert.ErrorIs(t, c.Access(ctx), integration.ErrNotConnected)

		defs, err := c.Autolinks(ctx).Wait(ctx)
		require.NoError(t, err)
		assert.Empty(t, defs)
	})

	t.Run("token connects", func(t *testing.T) {
		c := New(ctx, Options{Token: config.Secret("tok")})
		assert.Equal(t, autolink.ConnectionConnected, c.State())
		assert.True(t, c.Connected(ctx))
		assert.NoError(t, c.Access(ctx))
	})

	t.Run("budget gates access", func(t *testing.T) {
		c := New(ctx, Options{
			Token:  config.Secret("tok"),
			Budget: integration.NewBudget(0.001, 1),
		})
		require.NoError(t, c.Access(ctx))
		assert.ErrorIs(t, c.Access(ctx), integration.ErrRateLimited)
	})
}

func TestIssueOrPullRequestRejectsNonNumericIDs(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, Options{Token: config.Secret("tok")})

	_, err := c.IssueOrPullRequest(ctx, autolink.Descriptor{Owner: "acme", Name: "widget"}, "abc", autolink.IssueTypeMaybe)
	assert.Error(t, err)
}

func TestSplitSlug(t *testing.T) {
	owner, name, ok := splitSlug("acme/widget")
	require.True(t, ok)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "widget", name)

	for _, bad := range []string{"", "acme", "/widget", "acme/"} {
		_, _, ok := splitSlug(bad)
		assert.False(t, ok, bad)
	}
}
