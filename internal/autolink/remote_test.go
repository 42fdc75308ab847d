package autolink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		provider string
		key      string
	}{
		{"https", "https://github.com/acme/widget.git", ProviderGitHub, "acme/widget"},
		{"https no suffix", "https://github.com/acme/widget", ProviderGitHub, "acme/widget"},
		{"ssh scheme", "ssh://git@github.com/acme/widget.git", ProviderGitHub, "acme/widget"},
		{"scp-like", "git@github.com:acme/widget.git", ProviderGitHub, "acme/widget"},
		{"gitlab", "https://gitlab.com/acme/widget.git", ProviderGitLab, "acme/widget"},
		{"gitlab subgroup", "https://gitlab.com/acme/tools/widget.git", ProviderGitLab, "acme/tools/widget"},
		{"self-hosted gitlab", "https://gitlab.corp.example.com/acme/widget.git", ProviderGitLab, "acme/widget"},
		{"bitbucket", "https://bitbucket.org/acme/widget.git", ProviderBitbucket, "acme/widget"},
		{"azure", "https://dev.azure.com/acme/widget/repo", ProviderAzureDevOps, "acme/widget/repo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := ParseRemoteURL("origin", tt.url)
			require.NotNil(t, remote.Provider, tt.url)
			assert.Equal(t, tt.provider, remote.Provider.Info.ID)
			assert.Equal(t, tt.key, remote.Provider.Descriptor.Key)
			assert.Equal(t, tt.url, remote.Key())
		})
	}

	t.Run("unrecognized host keeps nil provider", func(t *testing.T) {
		remote := ParseRemoteURL("origin", "https://git.example.com/acme/widget.git")
		assert.Nil(t, remote.Provider)
		assert.Equal(t, "origin", remote.Name)
	})

	t.Run("garbage yields nil provider", func(t *testing.T) {
		assert.Nil(t, ParseRemoteURL("origin", "not a url").Provider)
		assert.Nil(t, ParseRemoteURL("origin", "").Provider)
	})
}

func TestRemoteKey(t *testing.T) {
	assert.Empty(t, (*Remote)(nil).Key())
	assert.Equal(t, "u", (&Remote{Name: "origin", URL: "u"}).Key())
	assert.Equal(t, "origin", (&Remote{Name: "origin"}).Key())
}
