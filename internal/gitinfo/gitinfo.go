// Package gitinfo reads the local repository facts the engine needs:
// the checked-out branch, the configured remotes and the commit
// message at HEAD.
package gitinfo

import (
	"fmt"

	git "github.com/go-git/go-git/v5"

	"github.com/fyrsmithlabs/reflink/internal/autolink"
)

// Info is a snapshot of one local repository.
type Info struct {
	// Branch is the checked-out branch, empty on a detached HEAD.
	Branch string
	// Remotes holds the parsed remotes, origin first when present.
	Remotes []*autolink.Remote
	// HeadMessage is the full commit message at HEAD.
	HeadMessage string
}

// Read opens the repository at path and collects its snapshot.
func Read(path string) (*Info, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	info := &Info{}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			info.Branch = head.Name().Short()
		}
		if commit, err := repo.CommitObject(head.Hash()); err == nil {
			info.HeadMessage = commit.Message
		}
	}

	remotes, err := repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("listing remotes: %w", err)
	}
	for _, r := range remotes {
		cfg := r.Config()
		if len(cfg.URLs) == 0 {
			continue
		}
		parsed := autolink.ParseRemoteURL(cfg.Name, cfg.URLs[0])
		if cfg.Name == "origin" {
			info.Remotes = append([]*autolink.Remote{parsed}, info.Remotes...)
		} else {
			info.Remotes = append(info.Remotes, parsed)
		}
	}

	return info, nil
}

// PrimaryRemote returns the remote the engine should treat as the
// repository's home: origin when present, otherwise the first remote.
func (i *Info) PrimaryRemote() *autolink.Remote {
	if len(i.Remotes) == 0 {
		return nil
	}
	return i.Remotes[0]
}
