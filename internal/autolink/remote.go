package autolink

import (
	"strings"
)

// Remote is a repository remote, reduced to what the engine needs: a
// name, the raw URL (the cache key) and the recognized hosting
// provider, if any.
type Remote struct {
	Name     string
	URL      string
	Provider *RemoteProvider
}

// Key identifies the remote in the group cache.
func (r *Remote) Key() string {
	if r == nil {
		return ""
	}
	if r.URL != "" {
		return r.URL
	}
	if r.Provider != nil {
		return r.Provider.Info.Domain + "/" + r.Provider.Descriptor.Key
	}
	return r.Name
}

// RemoteProvider is a recognized hosting provider for one repository:
// its identity, the repository descriptor, and the provider's own
// reference definitions.
type RemoteProvider struct {
	Info       ProviderInfo
	Name       string
	Descriptor Descriptor
	Autolinks  []Definition
}

// ParseRemoteURL parses a git remote URL (https, ssh, or scp-like) into
// a Remote, attaching a RemoteProvider when the host is a recognized
// hosting service. Unrecognized hosts yield a Remote with a nil
// Provider.
func ParseRemoteURL(name, raw string) *Remote {
	remote := &Remote{Name: name, URL: raw}

	domain, path := splitRemoteURL(raw)
	if domain == "" {
		return remote
	}

	owner, repo := splitRepoPath(path)
	if owner == "" || repo == "" {
		return remote
	}

	remote.Provider = providerForDomain(domain, owner, repo)
	return remote
}

// splitRemoteURL returns (host, path) for the supported URL shapes:
//
//	https://github.com/owner/repo.git
//	ssh://git@github.com/owner/repo.git
//	git@github.com:owner/repo.git
func splitRemoteURL(raw string) (domain, path string) {
	raw = strings.TrimSpace(raw)

	for _, scheme := range []string{"https://", "http://", "ssh://", "git://"} {
		if rest, ok := strings.CutPrefix(raw, scheme); ok {
			if at := strings.LastIndex(rest, "@"); at >= 0 {
				rest = rest[at+1:]
			}
			domain, path, _ = strings.Cut(rest, "/")
			return domain, path
		}
	}

	// scp-like: git@host:owner/repo.git
	if at := strings.Index(raw, "@"); at >= 0 {
		if host, rest, ok := strings.Cut(raw[at+1:], ":"); ok {
			return host, rest
		}
	}

	return "", ""
}

// splitRepoPath extracts owner and repo from a remote URL path,
// stripping a trailing .git. Deep paths (GitLab subgroups, Azure
// projects) keep everything before the final segment as the owner.
func splitRepoPath(path string) (owner, repo string) {
	path = strings.Trim(path, "/")
	path = strings.TrimSuffix(path, ".git")
	if path == "" {
		return "", ""
	}

	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", ""
	}
	return path[:idx], path[idx+1:]
}
