package autolink

import (
	"regexp"
	"strings"
	"sync"
)

// Format selects the output flavor of compiled matchers and rendered
// markup.
type Format string

const (
	FormatPlaintext Format = "plaintext"
	FormatMarkdown  Format = "markdown"
	FormatHTML      Format = "html"
)

// RefType restricts where a reference definition applies. An empty
// RefType means the definition applies everywhere.
type RefType string

const (
	RefTypeCommit      RefType = "commit"
	RefTypeBranch      RefType = "branch"
	RefTypePullRequest RefType = "pullrequest"
)

// IDPlaceholder is the token inside URL/title/description templates that
// is replaced with the captured id.
const IDPlaceholder = "<num>"

// substituteID replaces the id placeholder in a template. Empty
// templates pass through unchanged.
func substituteID(template, id string) string {
	if template == "" {
		return ""
	}
	return strings.ReplaceAll(template, IDPlaceholder, id)
}

// Descriptor locates a repository on a provider. Key is the
// provider-specific repo key ("owner/name" for the git hosts).
type Descriptor struct {
	Key   string
	Owner string
	Name  string
}

// ProviderInfo identifies the provider a definition or reference
// belongs to.
type ProviderInfo struct {
	ID     string
	Domain string
}

// Definition is a reference-pattern template. It is a closed sum of
// StaticDefinition (declarative prefix + URL template) and
// DynamicDefinition (provider-supplied parsing code).
type Definition interface {
	refType() RefType
}

// StaticDefinition is a declaratively expressed reference pattern.
// Compiled matchers are memoized on the instance and never rebuilt;
// configuration changes must discard and recreate the definition.
type StaticDefinition struct {
	// Prefix precedes the id, e.g. "#" or "JIRA-".
	Prefix string
	// URLTemplate, TitleTemplate and DescriptionTemplate contain the
	// <num> placeholder.
	URLTemplate         string
	TitleTemplate       string
	DescriptionTemplate string
	// Alphanumeric widens the id capture from digits to word characters.
	Alphanumeric bool
	// IgnoreCase makes generic matching case-insensitive. Literal-id
	// recompiles stay exact since the id was already resolved.
	IgnoreCase bool
	// RefType restricts where the definition applies; empty means
	// anywhere.
	RefType RefType
	// Descriptor locates the repository the definition's links point at.
	Descriptor *Descriptor
	// Provider identifies the contributing provider, nil for custom
	// definitions.
	Provider *ProviderInfo
	// PrefixedID marks providers whose enrichment lookups need the
	// prefix concatenated onto the id (Jira issue keys).
	PrefixedID bool

	cache matcherCache
}

func (d *StaticDefinition) refType() RefType { return d.RefType }

// Valid reports whether the definition meets the minimum static
// requirements for commit-message matching and tokenizing.
func (d *StaticDefinition) Valid() bool {
	return d.Prefix != "" && d.URLTemplate != ""
}

// searchRegex returns the memoized matcher for the given format. An
// empty literalID compiles the generic id class; a non-empty literalID
// re-identifies an already-extracted id exactly. A (nil, nil) return
// means compilation failed earlier and the definition is permanently
// non-matchable for that key.
func (d *StaticDefinition) searchRegex(format Format, literalID string) (*regexp.Regexp, error) {
	return d.cache.regex(matcherKey{format: format, literal: literalID}, func() (*regexp.Regexp, error) {
		return compileSearch(d.Prefix, d.Alphanumeric, d.IgnoreCase, format, literalID)
	})
}

// branchRules returns the memoized ordered branch-name rule list.
func (d *StaticDefinition) branchRules() ([]*regexp.Regexp, error) {
	return d.cache.branchRules(func() ([]*regexp.Regexp, error) {
		return compileBranchRules(d.Prefix, d.IgnoreCase)
	})
}

// newAutolink builds the extracted reference for a matched id.
func (d *StaticDefinition) newAutolink(id string, owner Owner) *Autolink {
	return &Autolink{
		ID:           id,
		Prefix:       d.Prefix,
		URL:          substituteID(d.URLTemplate, id),
		Title:        substituteID(d.TitleTemplate, id),
		Description:  substituteID(d.DescriptionTemplate, id),
		Type:         d.RefType,
		Alphanumeric: d.Alphanumeric,
		IgnoreCase:   d.IgnoreCase,
		Descriptor:   d.Descriptor,
		Provider:     d.Provider,
		PrefixedID:   d.PrefixedID,
		Owner:        owner,
	}
}

// TokenSink receives final markup during rendering and hands back the
// opaque placeholder to splice into the text.
type TokenSink interface {
	AddToken(markup string) string
}

// DynamicDefinition is a reference pattern implemented by custom
// provider code instead of a compiled prefix pattern.
type DynamicDefinition struct {
	// Type restricts where the definition applies; empty means anywhere.
	Type RefType
	// Parse scans text and inserts discovered references into out.
	Parse func(text string, out *Map)
	// Linkify rewrites text for rendering, registering markup through
	// the sink so replacements are immune to re-matching. Nil means the
	// definition does not participate in rendering.
	Linkify func(text string, format Format, tokens TokenSink) string
}

func (d *DynamicDefinition) refType() RefType { return d.Type }

// matcherKey identifies one compiled matcher slot: the output format
// plus the literal id ("" for the generic id class).
type matcherKey struct {
	format  Format
	literal string
}

// compileState is the tagged memoization state: distinct values for
// "not yet attempted" (absent from the map), "compiled" and
// "attempted and failed".
type compileState uint8

const (
	stateCompiled compileState = iota + 1
	stateFailed
)

type compiledMatcher struct {
	state compileState
	re    *regexp.Regexp
}

// matcherCache memoizes compiled matchers per (format, literal) key and
// the branch rule list. Build failures are recorded permanently; the
// error is returned exactly once so the caller can log it, after which
// lookups return (nil, nil).
type matcherCache struct {
	mu          sync.Mutex
	search      map[matcherKey]*compiledMatcher
	branch      []*regexp.Regexp
	branchState compileState
}

func (c *matcherCache) regex(key matcherKey, build func() (*regexp.Regexp, error)) (*regexp.Regexp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.search[key]; ok {
		if m.state == stateFailed {
			return nil, nil
		}
		return m.re, nil
	}

	if c.search == nil {
		c.search = make(map[matcherKey]*compiledMatcher)
	}

	re, err := build()
	if err != nil {
		c.search[key] = &compiledMatcher{state: stateFailed}
		return nil, err
	}
	c.search[key] = &compiledMatcher{state: stateCompiled, re: re}
	return re, nil
}

func (c *matcherCache) branchRules(build func() ([]*regexp.Regexp, error)) ([]*regexp.Regexp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.branchState {
	case stateCompiled:
		return c.branch, nil
	case stateFailed:
		return nil, nil
	}

	rules, err := build()
	if err != nil {
		c.branchState = stateFailed
		return nil, err
	}
	c.branch = rules
	c.branchState = stateCompiled
	return rules, nil
}
