package autolink

import (
	"context"
	"sync"
	"time"
)

// ConnectionState is an integration's cheap, no-I/O connectivity
// report. Only an explicit Disconnected excludes an integration from
// source aggregation; Unknown integrations are still queried.
type ConnectionState int

const (
	ConnectionUnknown ConnectionState = iota
	ConnectionConnected
	ConnectionDisconnected
)

// IssueType narrows an enrichment lookup when the reference already
// knows what it points at.
type IssueType string

const (
	IssueTypeMaybe       IssueType = ""
	IssueTypeIssue       IssueType = "issue"
	IssueTypePullRequest IssueType = "pullrequest"
)

// IssueState is the lifecycle state of a fetched issue or pull
// request.
type IssueState string

const (
	IssueStateOpened IssueState = "opened"
	IssueStateClosed IssueState = "closed"
	IssueStateMerged IssueState = "merged"
)

// IssueOrPullRequest is the enrichment payload: live state for one
// referenced issue or pull request.
type IssueOrPullRequest struct {
	Type      IssueType
	ID        string
	Title     string
	URL       string
	State     IssueState
	CreatedAt time.Time
	ClosedAt  time.Time
}

// Integration is the engine's view of one connected issue/PR provider.
// Implementations live outside this package; the engine only needs the
// listing and lookup capabilities plus connectivity and budget checks.
type Integration interface {
	// ID is the integration's stable identifier ("github", "jira", ...).
	ID() string
	// Domain is the host the integration serves ("github.com").
	Domain() string
	// State reports connectivity without I/O.
	State() ConnectionState
	// Connected reports whether the integration is usable; may probe.
	Connected(ctx context.Context) bool
	// Access checks entitlement and request budget for one call.
	Access(ctx context.Context) error
	// Autolinks lists the integration's reference definitions. The
	// result may already be settled when the list was available
	// synchronously.
	Autolinks(ctx context.Context) *Future[[]Definition]
	// IssueOrPullRequest fetches live state for one reference. A nil
	// result with nil error means the reference does not exist.
	IssueOrPullRequest(ctx context.Context, repo Descriptor, id string, typ IssueType) (*IssueOrPullRequest, error)
}

// Registry tracks registered integrations and the mapping from remote
// provider ids to integration ids. Registration changes invalidate the
// engine's group cache through the change listeners.
type Registry struct {
	mu        sync.RWMutex
	byID      map[string]Integration
	remoteIDs map[string]string
	listeners []func()
}

// NewRegistry returns an empty registry with the default remote
// provider mapping.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]Integration),
		remoteIDs: map[string]string{
			"github": "github",
			"gitlab": "gitlab",
		},
	}
}

// Register adds (or replaces) an integration.
func (r *Registry) Register(i Integration) {
	r.mu.Lock()
	r.byID[i.ID()] = i
	r.mu.Unlock()
	r.notify()
}

// MapRemoteProvider records that references from the given remote
// provider id are serviced by the given integration id.
func (r *Registry) MapRemoteProvider(providerID, integrationID string) {
	r.mu.Lock()
	r.remoteIDs[providerID] = integrationID
	r.mu.Unlock()
	r.notify()
}

// ByID returns the integration registered under id.
func (r *Registry) ByID(id string) (Integration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byID[id]
	return i, ok
}

// ForProvider resolves a remote provider id to its integration: first
// through the remote-id mapping, then by treating the provider id
// itself as an integration id. The second step is a historical
// compatibility shim; removing it would silently stop enriching
// references from providers that only match that way.
func (r *Registry) ForProvider(providerID string) (Integration, bool) {
	r.mu.RLock()
	mapped, hasMapping := r.remoteIDs[providerID]
	r.mu.RUnlock()

	if hasMapping {
		if i, ok := r.ByID(mapped); ok {
			return i, true
		}
	}
	return r.ByID(providerID)
}

// OnChange registers a callback invoked whenever the registry's
// contents change.
func (r *Registry) OnChange(fn func()) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

func (r *Registry) notify() {
	r.mu.RLock()
	listeners := make([]func(), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}
