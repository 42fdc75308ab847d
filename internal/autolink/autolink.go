package autolink

import "regexp"

// Owner is the source a definition or reference came from: a connected
// integration, a remote's hosting provider, or neither for
// user-configured custom definitions.
type Owner struct {
	Integration Integration
	Provider    *RemoteProvider
}

// Autolink is a recognized reference occurrence plus its resolved
// metadata. Templates have already had the id substituted.
type Autolink struct {
	ID           string
	Prefix       string
	URL          string
	Title        string
	Description  string
	Type         RefType
	Alphanumeric bool
	IgnoreCase   bool
	Descriptor   *Descriptor
	Provider     *ProviderInfo
	PrefixedID   bool
	Owner        Owner

	cache matcherCache
}

// EnrichableID returns the id the owning provider wants for issue
// lookups: some providers (Jira) need the prefix concatenated, others
// just the bare id.
func (a *Autolink) EnrichableID() string {
	if a.PrefixedID {
		return a.Prefix + a.ID
	}
	return a.ID
}

// tokenRegex returns the memoized re-identification matcher for this
// reference: its exact literal id, case-sensitive, so already-resolved
// references are never re-matched as new occurrences.
func (a *Autolink) tokenRegex(format Format) (*regexp.Regexp, error) {
	return a.cache.regex(matcherKey{format: format, literal: a.ID}, func() (*regexp.Regexp, error) {
		return compileSearch(a.Prefix, a.Alphanumeric, a.IgnoreCase, format, a.ID)
	})
}

// Map is an insertion-ordered collection of references keyed by id (or
// by URL in branch mode). Overwriting a key keeps its original
// position, so iteration order is deterministic regardless of which
// group last claimed an id.
type Map struct {
	keys  []string
	items map[string]*Autolink
}

// NewMap returns an empty reference map.
func NewMap() *Map {
	return &Map{items: make(map[string]*Autolink)}
}

// Set inserts or overwrites the entry for key.
func (m *Map) Set(key string, a *Autolink) {
	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.items[key] = a
}

// Get returns the entry for key, or nil.
func (m *Map) Get(key string) *Autolink {
	return m.items[key]
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map) Keys() []string {
	return append([]string(nil), m.keys...)
}

// EnrichedAutolink pairs a reference with its in-flight enrichment.
// Result is nil when no fetch was issued for the reference. A result
// that has not settled yet is "paused": the renderer shows a loading
// placeholder for it.
type EnrichedAutolink struct {
	Result   *Future[*IssueOrPullRequest]
	Autolink *Autolink
}

// Paused reports whether enrichment is still in flight.
func (e EnrichedAutolink) Paused() bool {
	if e.Result == nil {
		return false
	}
	_, _, settled := e.Result.Settled()
	return !settled
}

// EnrichedMap is an insertion-ordered collection of enriched
// references keyed by id.
type EnrichedMap struct {
	keys  []string
	items map[string]EnrichedAutolink
}

// NewEnrichedMap returns an empty enriched-reference map.
func NewEnrichedMap() *EnrichedMap {
	return &EnrichedMap{items: make(map[string]EnrichedAutolink)}
}

// Set inserts or overwrites the entry for key.
func (m *EnrichedMap) Set(key string, e EnrichedAutolink) {
	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.items[key] = e
}

// Get returns the entry for key and whether it exists.
func (m *EnrichedMap) Get(key string) (EnrichedAutolink, bool) {
	e, ok := m.items[key]
	return e, ok
}

// Len returns the number of entries.
func (m *EnrichedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *EnrichedMap) Keys() []string {
	return append([]string(nil), m.keys...)
}
