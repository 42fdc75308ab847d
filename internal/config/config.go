// Package config provides configuration loading for reflink.
package config

import (
	"time"

	"github.com/fyrsmithlabs/reflink/internal/logging"
)

// Config is the root configuration for reflink.
type Config struct {
	Logging   logging.Config  `koanf:"logging"`
	Cache     CacheConfig     `koanf:"cache"`
	Autolinks []AutolinkDef   `koanf:"autolinks"`
	Providers ProvidersConfig `koanf:"providers"`
}

// CacheConfig controls the reference-group cache.
type CacheConfig struct {
	TTL        Duration `koanf:"ttl"`
	MaxEntries int      `koanf:"max_entries"`
}

// AutolinkDef is a user-configured custom autolink definition.
//
// URL, Title and Description may contain the <num> placeholder, which is
// replaced with the captured id. Definitions missing a prefix or url are
// silently dropped at read time rather than rejected.
type AutolinkDef struct {
	Prefix       string `koanf:"prefix"`
	URL          string `koanf:"url"`
	Alphanumeric bool   `koanf:"alphanumeric"`
	IgnoreCase   bool   `koanf:"ignore_case"`
	Title        string `koanf:"title"`
	Description  string `koanf:"description"`
}

// ProvidersConfig holds credentials for the issue/PR providers.
type ProvidersConfig struct {
	GitHub GitHubConfig `koanf:"github"`
	GitLab GitLabConfig `koanf:"gitlab"`
	Jira   JiraConfig   `koanf:"jira"`
}

// GitHubConfig holds GitHub credentials. Repos lists "owner/name"
// repositories whose configured autolink references are fetched as
// definitions.
type GitHubConfig struct {
	Token Secret   `koanf:"token"`
	Repos []string `koanf:"repos"`
}

// GitLabConfig holds GitLab credentials. BaseURL is only needed for
// self-hosted instances.
type GitLabConfig struct {
	BaseURL string `koanf:"base_url"`
	Token   Secret `koanf:"token"`
}

// JiraConfig holds Jira Cloud credentials.
type JiraConfig struct {
	BaseURL  string `koanf:"base_url"`
	Username string `koanf:"username"`
	APIToken Secret `koanf:"api_token"`
}

// applyDefaults fills in defaults for missing values.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = Duration(time.Hour)
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 128
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return nil
}

// CustomAutolinks returns the configured custom definitions, defensively
// copied and with malformed entries (missing prefix or url) excluded.
func (c *Config) CustomAutolinks() []AutolinkDef {
	out := make([]AutolinkDef, 0, len(c.Autolinks))
	for _, def := range c.Autolinks {
		if def.Prefix == "" || def.URL == "" {
			continue
		}
		out = append(out, def)
	}
	return out
}
