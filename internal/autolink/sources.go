package autolink

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Group pairs an owner with its ordered reference definitions. The
// ordered group list is the unit extraction consumes; assembly order
// defines precedence.
type Group struct {
	Owner       Owner
	Definitions []Definition
}

// groups returns the ordered reference-definition groups for a remote,
// from the cache when fresh.
func (e *Engine) groups(ctx context.Context, remote *Remote, forBranch bool) []Group {
	key := remote.Key()
	if forBranch {
		key += "|branch"
	} else {
		key += "|message"
	}

	if cached, ok := e.cache.get(key); ok {
		return cached
	}

	groups := e.assembleGroups(ctx, remote, forBranch)
	e.cache.set(key, groups)
	return groups
}

// assembleGroups builds the group list in precedence order:
//
//  1. Issue-tracking integration groups, plus (outside branch mode)
//     the remote's own integration. Listings run concurrently and are
//     collected positionally; one failing integration contributes
//     nothing and never aborts the others.
//  2. The remote provider's definitions. In branch mode these are
//     filtered to static branch-typed definitions.
//  3. The user-configured custom definitions.
func (e *Engine) assembleGroups(ctx context.Context, remote *Remote, forBranch bool) []Group {
	integrations := e.aggregationIntegrations(remote, forBranch)

	type listResult struct {
		defs []Definition
		err  error
	}
	results := make([]listResult, len(integrations))

	var wg sync.WaitGroup
	for i, integ := range integrations {
		wg.Add(1)
		go func(i int, integ Integration) {
			defer wg.Done()
			defs, err := integ.Autolinks(ctx).Wait(ctx)
			results[i] = listResult{defs: defs, err: err}
		}(i, integ)
	}
	wg.Wait()

	var groups []Group
	for i, res := range results {
		if res.err != nil {
			e.log.Warn(ctx, "integration autolink listing failed",
				zap.String("integration", integrations[i].ID()),
				zap.Error(res.err))
			e.metrics.recordListFailure(integrations[i].ID())
			continue
		}
		if len(res.defs) == 0 {
			continue
		}
		groups = append(groups, Group{
			Owner:       Owner{Integration: integrations[i]},
			Definitions: res.defs,
		})
	}

	if remote != nil && remote.Provider != nil {
		defs := remote.Provider.Autolinks
		if forBranch {
			defs = branchEligibleProviderDefs(defs)
		}
		if len(defs) > 0 {
			groups = append(groups, Group{
				Owner:       Owner{Provider: remote.Provider},
				Definitions: defs,
			})
		}
	}

	if custom := e.customDefinitions(); len(custom) > 0 {
		groups = append(groups, Group{Definitions: custom})
	}

	return groups
}

// aggregationIntegrations selects which integrations to query: the
// fixed issue-tracking allow-list, plus the remote's own integration
// when not aggregating for a branch. Explicitly disconnected
// integrations are skipped; duplicates (same instance) are queried
// once.
func (e *Engine) aggregationIntegrations(remote *Remote, forBranch bool) []Integration {
	var integrations []Integration

	add := func(integ Integration) {
		if integ.State() == ConnectionDisconnected {
			return
		}
		for _, existing := range integrations {
			if existing == integ {
				return
			}
		}
		integrations = append(integrations, integ)
	}

	for _, id := range e.issueIntegrations {
		if integ, ok := e.registry.ByID(id); ok {
			add(integ)
		}
	}

	if !forBranch && remote != nil && remote.Provider != nil {
		if integ, ok := e.registry.ForProvider(remote.Provider.Info.ID); ok {
			add(integ)
		}
	}

	return integrations
}

// branchEligibleProviderDefs filters a provider's definitions down to
// the static, branch-typed ones.
func branchEligibleProviderDefs(defs []Definition) []Definition {
	var out []Definition
	for _, def := range defs {
		if d, ok := def.(*StaticDefinition); ok && d.RefType == RefTypeBranch {
			out = append(out, def)
		}
	}
	return out
}
