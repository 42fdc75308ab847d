package autolink

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// enrich starts live issue/PR lookups for the extracted references.
// Returns nil when refs is empty.
//
// Fetches are independent, started eagerly and run concurrently; the
// futures are never awaited here. Callers observe settlement later and
// render a loading state for anything still in flight. A reference
// that no integration can service simply carries no future.
func (e *Engine) enrich(ctx context.Context, refs *Map, remote *Remote) *EnrichedMap {
	if refs.Len() == 0 {
		return nil
	}

	remoteIntegration := e.usableRemoteIntegration(ctx, remote)

	out := NewEnrichedMap()
	for _, key := range refs.Keys() {
		a := refs.Get(key)

		integ := e.resolveIntegration(ctx, a)
		if integ != nil && !e.usable(ctx, integ) {
			integ = nil
		}

		var fut *Future[*IssueOrPullRequest]
		switch {
		case remoteIntegration != nil && a.Provider != nil &&
			a.Provider.ID == remoteIntegration.ID() &&
			a.Provider.Domain == remoteIntegration.Domain():
			repo := a.Descriptor
			if repo == nil && remote.Provider != nil {
				repo = &remote.Provider.Descriptor
			}
			if repo != nil {
				fut = e.startFetch(ctx, remoteIntegration, *repo, a)
			}

		case a.Descriptor != nil && integ != nil:
			fut = e.startFetch(ctx, integ, *a.Descriptor, a)
		}

		out.Set(key, EnrichedAutolink{Result: fut, Autolink: a})
	}

	return out
}

// usableRemoteIntegration resolves the remote's own integration and
// gates it behind the connectivity and access checks. Unusable means
// absent for this call.
func (e *Engine) usableRemoteIntegration(ctx context.Context, remote *Remote) Integration {
	if remote == nil || remote.Provider == nil {
		return nil
	}
	integ, ok := e.registry.ForProvider(remote.Provider.Info.ID)
	if !ok || !e.usable(ctx, integ) {
		return nil
	}
	return integ
}

func (e *Engine) usable(ctx context.Context, integ Integration) bool {
	if !integ.Connected(ctx) {
		return false
	}
	if err := integ.Access(ctx); err != nil {
		e.log.Debug(ctx, "integration failed access check",
			zap.String("integration", integ.ID()),
			zap.Error(err))
		return false
	}
	return true
}

// resolveIntegration finds the integration servicing one reference.
// Three decreasing-confidence steps: the reference's own typed
// integration, then the remote-id mapping, then the provider id cast
// directly as an integration id. The last step is a historical
// compatibility shim kept deliberately: dropping it would silently
// stop enriching references from providers that only match that way.
// Lookup failures are logged, never propagated.
func (e *Engine) resolveIntegration(ctx context.Context, a *Autolink) Integration {
	if a.Owner.Integration != nil {
		return a.Owner.Integration
	}
	if a.Provider == nil {
		return nil
	}

	if integ, ok := e.registry.ForProvider(a.Provider.ID); ok {
		return integ
	}

	e.log.Debug(ctx, "no integration for reference provider",
		zap.String("provider", a.Provider.ID),
		zap.String("prefix", a.Prefix),
		zap.String("url", a.URL))
	return nil
}

// startFetch launches one enrichment lookup. Failures settle the
// future with the error; the renderer treats a settled error the same
// as a settled empty result.
func (e *Engine) startFetch(ctx context.Context, integ Integration, repo Descriptor, a *Autolink) *Future[*IssueOrPullRequest] {
	typ := IssueTypeMaybe
	if a.Type == RefTypePullRequest {
		typ = IssueTypePullRequest
	}
	id := a.EnrichableID()

	return Go(func() (*IssueOrPullRequest, error) {
		start := time.Now()
		result, err := integ.IssueOrPullRequest(ctx, repo, id, typ)

		switch {
		case err != nil:
			e.metrics.recordEnrichmentFetch(integ.ID(), "error", time.Since(start))
			e.log.Warn(ctx, "enrichment fetch failed",
				zap.String("integration", integ.ID()),
				zap.String("id", id),
				zap.Error(err))
		case result == nil:
			e.metrics.recordEnrichmentFetch(integ.ID(), "empty", time.Since(start))
		default:
			e.metrics.recordEnrichmentFetch(integ.ID(), "ok", time.Since(start))
		}

		return result, err
	})
}
