package jira

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/reflink/internal/autolink"
	"github.com/fyrsmithlabs/reflink/internal/config"
	"github.com/fyrsmithlabs/reflink/internal/integration"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("no base URL means disconnected", func(t *testing.T) {
		c, err := New(Options{})
		require.NoError(t, err)
		assert.Equal(t, autolink.ConnectionDisconnected, c.State())
		assert.ErrorIs(t, c.Access(ctx), integration.ErrNotConnected)
	})

	t.Run("credentials connect", func(t *testing.T) {
		c, err := New(Options{
			BaseURL:  "https://acme.atlassian.net/",
			Username: "dev@acme.example",
			APIToken: config.Secret("tok"),
		})
		require.NoError(t, err)
		assert.Equal(t, "acme.atlassian.net", c.Domain())
		assert.Equal(t, autolink.ConnectionConnected, c.State())
		assert.True(t, c.Connected(ctx))
	})

	t.Run("base URL without credentials stays disconnected", func(t *testing.T) {
		c, err := New(Options{BaseURL: "https://acme.atlassian.net"})
		require.NoError(t, err)
		assert.False(t, c.Connected(ctx))

		defs, err := c.Autolinks(ctx).Wait(ctx)
		require.NoError(t, err)
		assert.Empty(t, defs)
	})

	t.Run("rejects malformed base URLs", func(t *testing.T) {
		_, err := New(Options{BaseURL: "not a url"})
		assert.Error(t, err)
	})
}
