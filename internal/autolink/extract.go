package autolink

import (
	"context"

	"go.uber.org/zap"
)

// extractMessage scans commit-message text against the ordered groups
// and returns the discovered references keyed by id.
//
// Every group is visited, in order, and within a group every
// definition. When two groups claim the same id, the LAST definition
// to claim it wins, not the first: groups are assembled in precedence
// order (integrations, then the remote provider, then custom), and a
// later overwrite replaces the earlier entry while keeping its map
// position. This is deliberate and differs from branch-name mode.
func (e *Engine) extractMessage(ctx context.Context, text string, groups []Group) *Map {
	out := NewMap()

	for _, g := range groups {
		for _, def := range g.Definitions {
			switch d := def.(type) {
			case *DynamicDefinition:
				if d.Type != "" && d.Type != RefTypeCommit {
					continue
				}
				if d.Parse != nil {
					d.Parse(text, out)
				}

			case *StaticDefinition:
				if !d.Valid() {
					continue
				}
				if d.RefType != "" && d.RefType != RefTypeCommit {
					continue
				}

				re, err := d.searchRegex(FormatPlaintext, "")
				if err != nil {
					e.log.Warn(ctx, "failed to compile autolink matcher",
						zap.String("prefix", d.Prefix),
						zap.String("url", d.URLTemplate),
						zap.Error(err))
					continue
				}
				if re == nil {
					continue
				}

				for _, m := range re.FindAllStringSubmatch(text, -1) {
					id := m[3]
					out.Set(id, d.newAutolink(id, g.Owner))
				}
			}
		}
	}

	return out
}

// extractBranch scans a branch name against the ordered groups and
// returns at most one reference, keyed by its URL.
//
// Groups owned by an issue-tracking integration are stably moved to
// the front, then the first rule of the first eligible definition to
// match wins and scanning stops. Unlike commit-message mode this is
// short-circuiting first-match-wins: a branch wants a single best
// guess, not every reference.
func (e *Engine) extractBranch(ctx context.Context, branch string, groups []Group) *Map {
	out := NewMap()
	if branch == "" {
		return out
	}

	for _, g := range partitionIssueIntegrationsFirst(groups, e.issueIntegrations) {
		for _, def := range g.Definitions {
			d, ok := def.(*StaticDefinition)
			if !ok {
				continue
			}
			if d.RefType == RefTypePullRequest {
				continue
			}
			if d.RefType != "" && d.RefType != RefTypeBranch {
				continue
			}
			if d.URLTemplate == "" {
				continue
			}

			rules, err := d.branchRules()
			if err != nil {
				e.log.Warn(ctx, "failed to compile branch rules",
					zap.String("prefix", d.Prefix),
					zap.String("url", d.URLTemplate),
					zap.Error(err))
				continue
			}

			for _, rule := range rules {
				m := rule.FindStringSubmatch(branch)
				if m == nil {
					continue
				}
				id := branchCaptureID(rule, m)
				if id == "" {
					continue
				}

				a := d.newAutolink(id, g.Owner)
				out.Set(a.URL, a)
				return out
			}
		}
	}

	return out
}

// partitionIssueIntegrationsFirst stably moves groups owned by a
// recognized issue-tracking integration to the front. Ties keep their
// relative order; this is a partition, not a full precedence
// reassignment.
func partitionIssueIntegrationsFirst(groups []Group, issueIntegrations []string) []Group {
	isIssueOwned := func(g Group) bool {
		if g.Owner.Integration == nil {
			return false
		}
		for _, id := range issueIntegrations {
			if g.Owner.Integration.ID() == id {
				return true
			}
		}
		return false
	}

	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if isIssueOwned(g) {
			out = append(out, g)
		}
	}
	for _, g := range groups {
		if !isIssueOwned(g) {
			out = append(out, g)
		}
	}
	return out
}
