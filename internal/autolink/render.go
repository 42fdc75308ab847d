package autolink

import (
	"context"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Footnotes is an ordered footnote sink. Indices are 1-based and
// assigned by insertion order as matches are discovered, which is
// definition-by-definition, not left-to-right across definitions.
type Footnotes struct {
	entries []string
}

// NewFootnotes returns an empty footnote sink.
func NewFootnotes() *Footnotes {
	return &Footnotes{}
}

// Add appends a footnote body and returns its 1-based index.
func (f *Footnotes) Add(body string) int {
	f.entries = append(f.entries, body)
	return len(f.entries)
}

// Len returns the number of footnotes.
func (f *Footnotes) Len() int {
	if f == nil {
		return 0
	}
	return len(f.entries)
}

// Entries returns the footnote bodies in index order.
func (f *Footnotes) Entries() []string {
	return f.entries
}

// Render formats the footnotes as superscript-prefixed lines.
func (f *Footnotes) Render() string {
	var b strings.Builder
	for i, body := range f.entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(superscript(i + 1))
		b.WriteByte(' ')
		b.WriteString(body)
	}
	return b.String()
}

// RenderOptions carries the optional inputs of one render call.
type RenderOptions struct {
	// Remotes supplies provider definitions when Enriched is nil.
	Remotes []*Remote
	// Enriched switches rendering to the enriched-reference source;
	// Remotes is ignored when set.
	Enriched *EnrichedMap
	// PRDedup holds ids already rendered as pull requests elsewhere;
	// footnotes for those ids are suppressed. Nil means no dedup.
	PRDedup map[string]struct{}
	// FootnoteSink collects footnotes for the caller to render
	// separately. In plaintext mode a nil sink makes the renderer
	// append its own footnote block to the returned text.
	FootnoteSink *Footnotes
}

// tokenPattern matches the opaque placeholders spliced into the text
// during tokenizing.
var tokenPattern = regexp.MustCompile("\x00\\d+\x00")

const footnoteDivider = "--"

// renderState is the per-render-call scratch state: the token table,
// the footnote sink and the dedup set.
type renderState struct {
	format    Format
	tokens    map[string]string
	next      int
	footnotes *Footnotes
	prDedup   map[string]struct{}
	now       time.Time
}

// AddToken records final markup and returns the placeholder to splice
// into the text. Implements TokenSink for dynamic definitions.
func (st *renderState) AddToken(markup string) string {
	token := "\x00" + strconv.Itoa(st.next) + "\x00"
	st.next++
	st.tokens[token] = markup
	return token
}

// Render rewrites text, replacing every recognized reference with a
// link in the requested format.
//
// The rewrite is two-pass: each match is first replaced with an opaque
// placeholder whose markup is recorded in a side table, then a single
// global pass substitutes the placeholders. Replacements are therefore
// immune to re-matching by later definitions.
//
// Markdown input must be pre-escaped with EscapeMarkdown and HTML
// input entity-encoded; the compiled matchers expect it, and it is
// what makes rendering idempotent (rendered output no longer contains
// the escaped form the matchers look for).
func (e *Engine) Render(ctx context.Context, text string, format Format, opts RenderOptions) string {
	st := &renderState{
		format:    format,
		tokens:    make(map[string]string),
		footnotes: opts.FootnoteSink,
		prDedup:   opts.PRDedup,
		now:       time.Now(),
	}

	localSink := false
	if format == FormatPlaintext && st.footnotes == nil {
		st.footnotes = NewFootnotes()
		localSink = true
	}

	if opts.Enriched != nil {
		for _, key := range opts.Enriched.Keys() {
			ea, _ := opts.Enriched.Get(key)
			text = e.tokenizeReference(ctx, st, text, ea)
		}
	} else {
		for _, def := range e.customDefinitions() {
			text = e.tokenizeDefinition(ctx, st, text, def)
		}
		for _, r := range e.remotesByConnectivity(opts.Remotes) {
			if r == nil || r.Provider == nil {
				continue
			}
			for _, def := range r.Provider.Autolinks {
				text = e.tokenizeDefinition(ctx, st, text, def)
			}
		}
	}

	text = tokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		if markup, ok := st.tokens[token]; ok {
			return markup
		}
		// Unknown placeholder-looking text passes through unchanged.
		return token
	})

	if localSink && st.footnotes.Len() > 0 {
		text += "\n" + footnoteDivider + "\n" + st.footnotes.Render()
	}

	return text
}

// tokenizeReference replaces occurrences of one (possibly enriched)
// reference, re-identifying its exact literal id.
func (e *Engine) tokenizeReference(ctx context.Context, st *renderState, text string, ea EnrichedAutolink) string {
	a := ea.Autolink
	if a == nil || a.Prefix == "" || a.URL == "" {
		return text
	}

	re, err := a.tokenRegex(st.format)
	if err != nil {
		e.log.Warn(ctx, "failed to compile autolink tokenizer",
			zap.String("prefix", a.Prefix),
			zap.String("url", a.URL),
			zap.String("title", a.Title),
			zap.Error(err))
		return text
	}
	if re == nil {
		return text
	}

	return re.ReplaceAllStringFunc(text, func(m string) string {
		sub := re.FindStringSubmatch(m)
		boundary := sub[1]
		markup := st.markup(occurrence{
			linkText: a.Prefix + a.ID,
			id:       a.ID,
			url:      a.URL,
			title:    a.Title,
			enriched: &ea,
		})
		return boundary + st.AddToken(markup)
	})
}

// tokenizeDefinition replaces all generic matches of one definition.
func (e *Engine) tokenizeDefinition(ctx context.Context, st *renderState, text string, def Definition) string {
	switch d := def.(type) {
	case *DynamicDefinition:
		if d.Linkify == nil {
			return text
		}
		return d.Linkify(text, st.format, st)

	case *StaticDefinition:
		if !d.Valid() {
			return text
		}

		re, err := d.searchRegex(st.format, "")
		if err != nil {
			e.log.Warn(ctx, "failed to compile autolink tokenizer",
				zap.String("prefix", d.Prefix),
				zap.String("url", d.URLTemplate),
				zap.String("title", d.TitleTemplate),
				zap.Error(err))
			return text
		}
		if re == nil {
			return text
		}

		return re.ReplaceAllStringFunc(text, func(m string) string {
			sub := re.FindStringSubmatch(m)
			boundary, id := sub[1], sub[3]
			markup := st.markup(occurrence{
				linkText: d.Prefix + id,
				id:       id,
				url:      substituteID(d.URLTemplate, id),
				title:    substituteID(d.TitleTemplate, id),
			})
			return boundary + st.AddToken(markup)
		})

	default:
		return text
	}
}

// occurrence is one matched reference occurrence being turned into
// markup.
type occurrence struct {
	linkText string
	id       string
	url      string
	title    string
	enriched *EnrichedAutolink
}

type enrichmentCase int

const (
	enrichNone enrichmentCase = iota
	enrichPending
	enrichResolved
	enrichEmpty
)

// classify determines which enrichment branch an occurrence takes. A
// settled error counts as empty: the reference renders as a plain
// link, never as an error.
func (occ occurrence) classify() (enrichmentCase, *IssueOrPullRequest) {
	if occ.enriched == nil || occ.enriched.Result == nil {
		return enrichNone, nil
	}
	v, err, settled := occ.enriched.Result.Settled()
	if !settled {
		return enrichPending, nil
	}
	if err == nil && v != nil {
		return enrichResolved, v
	}
	return enrichEmpty, nil
}

// markup builds the final markup for one occurrence, appending a
// footnote when a sink is active and the id is not suppressed by the
// PR-dedup set.
func (st *renderState) markup(occ occurrence) string {
	title := occ.title
	footnoteIdx := 0

	addFootnote := func(body string) {
		if st.footnotes == nil {
			return
		}
		if st.prDedup != nil {
			if _, ok := st.prDedup[occ.id]; ok {
				return
			}
		}
		footnoteIdx = st.footnotes.Add(body)
	}

	kase, v := occ.classify()
	if title != "" {
		switch kase {
		case enrichNone:
			addFootnote("Custom Autolink " + occ.linkText + ": " + title)
			if footnoteIdx > 0 {
				title += `"..."`
			}
		case enrichPending:
			addFootnote(occ.linkText + ": Loading...")
			title += "\nLoading..."
		case enrichResolved:
			status := issueStatus(v, st.now)
			addFootnote(occ.linkText + ": " + v.Title + " (" + status + ")")
			title += "\n" + v.Title + "\n" + status
		case enrichEmpty:
			// No footnote; see format handling below.
		}
	}

	switch st.format {
	case FormatMarkdown:
		if title != "" {
			return "[" + occ.linkText + "](" + occ.url + ` "` + strings.ReplaceAll(title, `"`, `\"`) + `")`
		}
		return "[" + occ.linkText + "](" + occ.url + ")"

	case FormatHTML:
		attrs := ` href="` + html.EscapeString(occ.url) + `"`
		if title != "" {
			attrs += ` title="` + html.EscapeString(title) + `"`
		}
		return "<a" + attrs + ">" + html.EscapeString(occ.linkText) + "</a>"

	default: // plaintext
		// A resolved-but-empty reference collapses to bare text: no
		// footnote marker for a dead link. Markdown and HTML still
		// render a (less informative) link in that case.
		if kase == enrichEmpty {
			return occ.linkText
		}
		if footnoteIdx > 0 {
			return occ.linkText + superscript(footnoteIdx)
		}
		return occ.linkText
	}
}
