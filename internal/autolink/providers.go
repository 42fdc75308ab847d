package autolink

import "strings"

// Provider ids for the hosting services the engine recognizes from
// remote URLs. Issue-tracking integrations (Jira) have no remote
// provider; they contribute definitions through the registry instead.
const (
	ProviderGitHub      = "github"
	ProviderGitLab      = "gitlab"
	ProviderBitbucket   = "bitbucket"
	ProviderAzureDevOps = "azuredevops"
)

// providerForDomain maps a remote URL host to its hosting provider,
// building the provider's reference definitions for the repository.
func providerForDomain(domain, owner, repo string) *RemoteProvider {
	switch {
	case domain == "github.com" || strings.HasPrefix(domain, "github."):
		return githubProvider(domain, owner, repo)
	case domain == "gitlab.com" || strings.HasPrefix(domain, "gitlab."):
		return gitlabProvider(domain, owner, repo)
	case domain == "bitbucket.org":
		return bitbucketProvider(domain, owner, repo)
	case domain == "dev.azure.com":
		return azureProvider(domain, owner, repo)
	default:
		return nil
	}
}

func githubProvider(domain, owner, repo string) *RemoteProvider {
	info := ProviderInfo{ID: ProviderGitHub, Domain: domain}
	desc := Descriptor{Key: owner + "/" + repo, Owner: owner, Name: repo}
	base := "https://" + domain + "/" + owner + "/" + repo
	slug := owner + "/" + repo

	return &RemoteProvider{
		Info:       info,
		Name:       "GitHub",
		Descriptor: desc,
		Autolinks: []Definition{
			&StaticDefinition{
				Prefix:        "#",
				URLTemplate:   base + "/issues/" + IDPlaceholder,
				TitleTemplate: "Issue #" + IDPlaceholder + " on " + slug,
				Descriptor:    &desc,
				Provider:      &info,
			},
			&StaticDefinition{
				Prefix:        "GH-",
				IgnoreCase:    true,
				URLTemplate:   base + "/issues/" + IDPlaceholder,
				TitleTemplate: "Issue #" + IDPlaceholder + " on " + slug,
				Descriptor:    &desc,
				Provider:      &info,
			},
			&StaticDefinition{
				RefType:       RefTypeBranch,
				URLTemplate:   base + "/issues/" + IDPlaceholder,
				TitleTemplate: "Issue #" + IDPlaceholder + " on " + slug,
				Descriptor:    &desc,
				Provider:      &info,
			},
		},
	}
}

func gitlabProvider(domain, owner, repo string) *RemoteProvider {
	info := ProviderInfo{ID: ProviderGitLab, Domain: domain}
	desc := Descriptor{Key: owner + "/" + repo, Owner: owner, Name: repo}
	base := "https://" + domain + "/" + owner + "/" + repo
	slug := owner + "/" + repo

	return &RemoteProvider{
		Info:       info,
		Name:       "GitLab",
		Descriptor: desc,
		Autolinks: []Definition{
			&StaticDefinition{
				Prefix:        "#",
				URLTemplate:   base + "/-/issues/" + IDPlaceholder,
				TitleTemplate: "Issue #" + IDPlaceholder + " on " + slug,
				Descriptor:    &desc,
				Provider:      &info,
			},
			&StaticDefinition{
				Prefix:        "!",
				RefType:       RefTypePullRequest,
				URLTemplate:   base + "/-/merge_requests/" + IDPlaceholder,
				TitleTemplate: "Merge request !" + IDPlaceholder + " on " + slug,
				Descriptor:    &desc,
				Provider:      &info,
			},
			&StaticDefinition{
				RefType:       RefTypeBranch,
				URLTemplate:   base + "/-/issues/" + IDPlaceholder,
				TitleTemplate: "Issue #" + IDPlaceholder + " on " + slug,
				Descriptor:    &desc,
				Provider:      &info,
			},
		},
	}
}

func bitbucketProvider(domain, owner, repo string) *RemoteProvider {
	info := ProviderInfo{ID: ProviderBitbucket, Domain: domain}
	desc := Descriptor{Key: owner + "/" + repo, Owner: owner, Name: repo}
	base := "https://" + domain + "/" + owner + "/" + repo
	slug := owner + "/" + repo

	return &RemoteProvider{
		Info:       info,
		Name:       "Bitbucket",
		Descriptor: desc,
		Autolinks: []Definition{
			&StaticDefinition{
				Prefix:        "#",
				URLTemplate:   base + "/issues/" + IDPlaceholder,
				TitleTemplate: "Issue #" + IDPlaceholder + " on " + slug,
				Descriptor:    &desc,
				Provider:      &info,
			},
			&StaticDefinition{
				RefType:       RefTypeBranch,
				URLTemplate:   base + "/issues/" + IDPlaceholder,
				TitleTemplate: "Issue #" + IDPlaceholder + " on " + slug,
				Descriptor:    &desc,
				Provider:      &info,
			},
		},
	}
}

func azureProvider(domain, owner, repo string) *RemoteProvider {
	info := ProviderInfo{ID: ProviderAzureDevOps, Domain: domain}
	desc := Descriptor{Key: owner + "/" + repo, Owner: owner, Name: repo}
	base := "https://" + domain + "/" + owner

	return &RemoteProvider{
		Info:       info,
		Name:       "Azure DevOps",
		Descriptor: desc,
		Autolinks: []Definition{
			&StaticDefinition{
				Prefix:        "#",
				URLTemplate:   base + "/_workitems/edit/" + IDPlaceholder,
				TitleTemplate: "Work item #" + IDPlaceholder,
				Descriptor:    &desc,
				Provider:      &info,
			},
			&StaticDefinition{
				RefType:       RefTypeBranch,
				URLTemplate:   base + "/_workitems/edit/" + IDPlaceholder,
				TitleTemplate: "Work item #" + IDPlaceholder,
				Descriptor:    &desc,
				Provider:      &info,
			},
		},
	}
}
