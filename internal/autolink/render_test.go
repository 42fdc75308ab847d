package autolink

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ticketDef() *StaticDefinition {
	return &StaticDefinition{
		Prefix:        "#",
		URLTemplate:   "https://tracker.example.com/ticket/" + IDPlaceholder,
		TitleTemplate: "Ticket " + IDPlaceholder,
	}
}

func TestRenderPlaintext(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	e.SetCustomAutolinks([]Definition{ticketDef()})

	t.Run("appends a local footnote block", func(t *testing.T) {
		got := e.Render(ctx, "fixes #123 and #456", FormatPlaintext, RenderOptions{})
		assert.Equal(t,
			"fixes #123¹ and #456²\n--\n"+
				"¹ Custom Autolink #123: Ticket 123\n"+
				"² Custom Autolink #456: Ticket 456",
			got)
	})

	t.Run("no matches leaves text untouched", func(t *testing.T) {
		assert.Equal(t, "nothing here", e.Render(ctx, "nothing here", FormatPlaintext, RenderOptions{}))
	})

	t.Run("external sink suppresses the local block", func(t *testing.T) {
		sink := NewFootnotes()
		got := e.Render(ctx, "fixes #123", FormatPlaintext, RenderOptions{FootnoteSink: sink})

		assert.Equal(t, "fixes #123¹", got)
		require.Equal(t, 1, sink.Len())
		assert.Equal(t, "Custom Autolink #123: Ticket 123", sink.Entries()[0])
	})

	t.Run("footnote order follows definition order not text order", func(t *testing.T) {
		e := newTestEngine(t)
		e.SetCustomAutolinks([]Definition{
			&StaticDefinition{Prefix: "A-", URLTemplate: "https://a.example.com/" + IDPlaceholder, TitleTemplate: "A " + IDPlaceholder},
			&StaticDefinition{Prefix: "B-", URLTemplate: "https://b.example.com/" + IDPlaceholder, TitleTemplate: "B " + IDPlaceholder},
		})

		got := e.Render(ctx, "B-1 then A-2", FormatPlaintext, RenderOptions{})
		assert.Equal(t,
			"B-1² then A-2¹\n--\n"+
				"¹ Custom Autolink A-2: A 2\n"+
				"² Custom Autolink B-1: B 1",
			got)
	})
}

func TestRenderMarkdown(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	e.SetCustomAutolinks([]Definition{ticketDef()})

	t.Run("links escaped references", func(t *testing.T) {
		got := e.Render(ctx, EscapeMarkdown("fixes #123"), FormatMarkdown, RenderOptions{})
		assert.Equal(t, `fixes [#123](https://tracker.example.com/ticket/123 "Ticket 123")`, got)
	})

	t.Run("rendering is idempotent", func(t *testing.T) {
		once := e.Render(ctx, EscapeMarkdown("fixes #123"), FormatMarkdown, RenderOptions{})
		twice := e.Render(ctx, once, FormatMarkdown, RenderOptions{})
		assert.Equal(t, once, twice)
	})

	t.Run("collects footnotes only into an explicit sink", func(t *testing.T) {
		sink := NewFootnotes()
		got := e.Render(ctx, EscapeMarkdown("fixes #123"), FormatMarkdown, RenderOptions{FootnoteSink: sink})

		assert.NotContains(t, got, "\n")
		assert.Equal(t, 1, sink.Len())
	})

	t.Run("footnoted titles gain the quoting suffix", func(t *testing.T) {
		sink := NewFootnotes()
		got := e.Render(ctx, EscapeMarkdown("fixes #123"), FormatMarkdown, RenderOptions{FootnoteSink: sink})

		assert.Equal(t, `fixes [#123](https://tracker.example.com/ticket/123 "Ticket 123\"...\"")`, got)

		// PR-deduped ids keep the plain title along with the skipped footnote.
		got = e.Render(ctx, EscapeMarkdown("fixes #123"), FormatMarkdown, RenderOptions{
			FootnoteSink: NewFootnotes(),
			PRDedup:      map[string]struct{}{"123": {}},
		})
		assert.Equal(t, `fixes [#123](https://tracker.example.com/ticket/123 "Ticket 123")`, got)
	})
}

func TestRenderHTML(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	e.SetCustomAutolinks([]Definition{ticketDef()})

	got := e.Render(ctx, "fixes #9", FormatHTML, RenderOptions{})
	assert.Equal(t, `fixes <a href="https://tracker.example.com/ticket/9" title="Ticket 9">#9</a>`, got)

	// Rendered output carries no matchable reference.
	assert.Equal(t, got, e.Render(ctx, got, FormatHTML, RenderOptions{}))

	footnoted := e.Render(ctx, "fixes #9", FormatHTML, RenderOptions{FootnoteSink: NewFootnotes()})
	assert.Equal(t, `fixes <a href="https://tracker.example.com/ticket/9" title="Ticket 9&#34;...&#34;">#9</a>`, footnoted)
}

func TestRenderProviderDefinitions(t *testing.T) {
	ctx := context.Background()

	t.Run("remote definitions apply when no enrichment is supplied", func(t *testing.T) {
		e := newTestEngine(t)
		got := e.Render(ctx, "see #42", FormatMarkdown, RenderOptions{
			Remotes: []*Remote{githubRemote()},
		})
		assert.Contains(t, got, "https://github.com/acme/widget/issues/42")
	})

	t.Run("connected provider outranks unconfigured one", func(t *testing.T) {
		e := newTestEngine(t, githubFake())

		gitlab := ParseRemoteURL("upstream", "https://gitlab.com/acme/widget.git")
		got := e.Render(ctx, "see #42", FormatMarkdown, RenderOptions{
			Remotes: []*Remote{gitlab, githubRemote()},
		})
		assert.Contains(t, got, "github.com/acme/widget/issues/42")
		assert.NotContains(t, got, "gitlab.com")
	})
}

func enrichedSingle(a *Autolink, fut *Future[*IssueOrPullRequest]) *EnrichedMap {
	m := NewEnrichedMap()
	m.Set(a.ID, EnrichedAutolink{Result: fut, Autolink: a})
	return m
}

func issueRef() *Autolink {
	return &Autolink{
		ID:     "9",
		Prefix: "#",
		URL:    "https://github.com/acme/widget/issues/9",
		Title:  "Issue #9 on acme/widget",
	}
}

func TestRenderEnriched(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	t.Run("resolved reference gains state and age", func(t *testing.T) {
		fut := Resolved(&IssueOrPullRequest{
			ID:        "9",
			Title:     "Fix crash on resume",
			State:     IssueStateOpened,
			CreatedAt: time.Now().Add(-73 * time.Hour),
		})

		got := e.Render(ctx, "merge #9 now", FormatPlaintext, RenderOptions{
			Enriched: enrichedSingle(issueRef(), fut),
		})
		assert.Equal(t,
			"merge #9¹ now\n--\n"+
				"¹ #9: Fix crash on resume (opened 3 days ago)",
			got)
	})

	t.Run("markdown title carries the summary", func(t *testing.T) {
		fut := Resolved(&IssueOrPullRequest{
			ID:       "9",
			Title:    "Fix crash on resume",
			State:    IssueStateClosed,
			ClosedAt: time.Now().Add(-25 * time.Hour),
		})

		got := e.Render(ctx, EscapeMarkdown("merge #9 now"), FormatMarkdown, RenderOptions{
			Enriched: enrichedSingle(issueRef(), fut),
		})
		assert.Contains(t, got, "[#9](https://github.com/acme/widget/issues/9")
		assert.Contains(t, got, "Fix crash on resume")
		assert.Contains(t, got, "closed yesterday")
	})

	t.Run("in-flight reference renders a loading state", func(t *testing.T) {
		block := make(chan struct{})
		fut := Go(func() (*IssueOrPullRequest, error) {
			<-block
			return &IssueOrPullRequest{ID: "9", Title: "Fix crash", CreatedAt: time.Now()}, nil
		})

		got := e.Render(ctx, "merge #9 now", FormatPlaintext, RenderOptions{
			Enriched: enrichedSingle(issueRef(), fut),
		})
		assert.Equal(t,
			"merge #9¹ now\n--\n¹ #9: Loading...",
			got)

		close(block)
		_, err := fut.Wait(ctx)
		require.NoError(t, err)

		got = e.Render(ctx, "merge #9 now", FormatPlaintext, RenderOptions{
			Enriched: enrichedSingle(issueRef(), fut),
		})
		assert.Contains(t, got, "Fix crash (opened just now)")
	})

	t.Run("dead link renders as bare text in plaintext only", func(t *testing.T) {
		for _, fut := range []*Future[*IssueOrPullRequest]{
			Resolved[*IssueOrPullRequest](nil),
			Failed[*IssueOrPullRequest](assert.AnError),
		} {
			got := e.Render(ctx, "merge #9 now", FormatPlaintext, RenderOptions{
				Enriched: enrichedSingle(issueRef(), fut),
			})
			assert.Equal(t, "merge #9 now", got)

			got = e.Render(ctx, EscapeMarkdown("merge #9 now"), FormatMarkdown, RenderOptions{
				Enriched: enrichedSingle(issueRef(), fut),
			})
			assert.Equal(t, `merge [#9](https://github.com/acme/widget/issues/9 "Issue #9 on acme/widget") now`, got)
		}
	})

	t.Run("pull request dedup suppresses the footnote", func(t *testing.T) {
		fut := Resolved(&IssueOrPullRequest{ID: "9", Title: "Fix crash", CreatedAt: time.Now()})

		got := e.Render(ctx, "merge #9 now", FormatPlaintext, RenderOptions{
			Enriched: enrichedSingle(issueRef(), fut),
			PRDedup:  map[string]struct{}{"9": {}},
		})
		assert.Equal(t, "merge #9 now", got)
	})

	t.Run("no future renders the plain link", func(t *testing.T) {
		got := e.Render(ctx, EscapeMarkdown("merge #9 now"), FormatMarkdown, RenderOptions{
			Enriched: enrichedSingle(issueRef(), nil),
		})
		assert.Equal(t, `merge [#9](https://github.com/acme/widget/issues/9 "Issue #9 on acme/widget") now`, got)
	})

	t.Run("exact ids only", func(t *testing.T) {
		fut := Resolved(&IssueOrPullRequest{ID: "9", Title: "Fix crash", CreatedAt: time.Now()})

		got := e.Render(ctx, "see #90", FormatPlaintext, RenderOptions{
			Enriched: enrichedSingle(issueRef(), fut),
		})
		assert.Equal(t, "see #90", got)
	})
}
