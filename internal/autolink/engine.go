package autolink

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fyrsmithlabs/reflink/internal/logging"
)

const (
	defaultCacheTTL        = time.Hour
	defaultCacheMaxEntries = 128
)

// defaultIssueIntegrations is the allow-list of issue-tracking
// integrations queried when assembling reference groups, regardless of
// the remote's hosting provider.
var defaultIssueIntegrations = []string{"jira"}

// Engine recognizes references in commit messages and branch names,
// resolves them against provider, integration and user-configured
// definitions, optionally enriches them with live issue data, and
// rewrites text with the results.
//
// An Engine is safe for concurrent use.
type Engine struct {
	log      *logging.Logger
	metrics  *Metrics
	registry *Registry
	cache    *groupCache

	issueIntegrations []string

	mu     sync.RWMutex
	custom []Definition
}

// Options configures a new Engine. Zero values get usable defaults.
type Options struct {
	Logger   *logging.Logger
	Registry *Registry
	Metrics  *Metrics

	// CacheTTL bounds how long assembled reference groups are reused
	// without re-listing integrations. The clock runs from last
	// access.
	CacheTTL time.Duration
	// CacheMaxEntries caps the group cache; the least recently used
	// entry is evicted at capacity.
	CacheMaxEntries int
	// IssueIntegrations overrides the issue-tracking allow-list.
	IssueIntegrations []string
}

// New returns an Engine wired to the given registry. Registering or
// removing integrations afterwards invalidates the group cache.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.CacheMaxEntries <= 0 {
		opts.CacheMaxEntries = defaultCacheMaxEntries
	}
	if opts.IssueIntegrations == nil {
		opts.IssueIntegrations = defaultIssueIntegrations
	}

	e := &Engine{
		log:               opts.Logger,
		metrics:           opts.Metrics,
		registry:          opts.Registry,
		cache:             newGroupCache(opts.CacheTTL, opts.CacheMaxEntries, opts.Metrics),
		issueIntegrations: opts.IssueIntegrations,
	}
	e.registry.OnChange(e.cache.clear)
	return e
}

// Registry returns the integration registry the engine consults.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// SetCustomAutolinks replaces the user-configured definitions and
// invalidates the group cache.
func (e *Engine) SetCustomAutolinks(defs []Definition) {
	copied := make([]Definition, len(defs))
	copy(copied, defs)

	e.mu.Lock()
	e.custom = copied
	e.mu.Unlock()

	e.cache.clear()
}

// customDefinitions returns the current custom definitions.
func (e *Engine) customDefinitions() []Definition {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.custom
}

// Reset drops all cached reference groups. The next extraction
// re-lists every integration.
func (e *Engine) Reset() {
	e.cache.clear()
}

// Autolinks extracts every recognized reference from commit-message
// text, keyed by id in discovery order.
func (e *Engine) Autolinks(ctx context.Context, message string, remote *Remote) *Map {
	ctx = logging.WithRemoteKey(ctx, remote.Key())
	groups := e.groups(ctx, remote, false)
	return e.extractMessage(ctx, message, groups)
}

// BranchAutolinks extracts at most one reference from a branch name,
// keyed by its URL.
func (e *Engine) BranchAutolinks(ctx context.Context, branch string, remote *Remote) *Map {
	ctx = logging.WithRemoteKey(ctx, remote.Key())
	groups := e.groups(ctx, remote, true)
	return e.extractBranch(ctx, branch, groups)
}

// EnrichedAutolinks starts live issue/PR lookups for already-extracted
// references. The fetches run concurrently and are never awaited;
// callers observe settlement through each entry's Result. Returns nil
// when refs is empty.
func (e *Engine) EnrichedAutolinks(ctx context.Context, refs *Map, remote *Remote) *EnrichedMap {
	ctx = logging.WithRemoteKey(ctx, remote.Key())
	return e.enrich(ctx, refs, remote)
}

// MessageAutolinks is the one-call form: extract from a commit message
// and start enrichment in one step.
func (e *Engine) MessageAutolinks(ctx context.Context, message string, remote *Remote) *EnrichedMap {
	return e.enrich(ctx, e.Autolinks(ctx, message, remote), remote)
}

// remotesByConnectivity stably orders remotes so that those whose
// provider has a possibly-connected integration come first. Definition
// matching visits remotes in this order, so a connected provider's
// definitions claim shared prefixes ahead of an unconfigured one's.
func (e *Engine) remotesByConnectivity(remotes []*Remote) []*Remote {
	out := make([]*Remote, len(remotes))
	copy(out, remotes)

	rank := func(r *Remote) int {
		if r == nil || r.Provider == nil {
			return 1
		}
		integ, ok := e.registry.ForProvider(r.Provider.Info.ID)
		if !ok || integ.State() == ConnectionDisconnected {
			return 1
		}
		return 0
	}

	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i]) < rank(out[j])
	})
	return out
}
