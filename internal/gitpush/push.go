// Package gitpush publishes a rendered project tree to a freshly created
// GitHub repository: init, single commit, push to the default branch.
package gitpush

import (
	"context"
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"template-api/internal/models"
)

// Options describe one publish operation.
type Options struct {
	Dir         string // rendered project root
	RemoteURL   string // HTTPS clone URL of the target repository
	Branch      string // target branch, e.g. "main"
	AuthorName  string
	AuthorEmail string
	Token       string
	Message     string
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.Branch == "" {
		out.Branch = "main"
	}
	if out.AuthorName == "" {
		out.AuthorName = "Template API"
	}
	if out.AuthorEmail == "" {
		out.AuthorEmail = "noreply@example.com"
	}
	if out.Message == "" {
		out.Message = "Initial commit from template"
	}
	return out
}

// InitCommitPush initialises a repository in opts.Dir, commits the whole
// tree on opts.Branch, and pushes it to opts.RemoteURL. A push failure is an
// upstream error; everything before the network is internal.
func InitCommitPush(ctx context.Context, opts Options) error {
	o := opts.withDefaults()

	repo, err := git.PlainInit(o.Dir, false)
	if err != nil {
		return models.Internalf("git init: %v", err)
	}

	branchRef := plumbing.NewBranchReferenceName(o.Branch)
	if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branchRef)); err != nil {
		return models.Internalf("setting branch %s: %v", o.Branch, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return models.Internalf("opening worktree: %v", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return models.Internalf("staging files: %v", err)
	}

	_, err = wt.Commit(o.Message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  o.AuthorName,
			Email: o.AuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return models.Internalf("committing: %v", err)
	}

	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{o.RemoteURL},
	})
	if err != nil {
		return models.Internalf("adding remote: %v", err)
	}

	refSpec := config.RefSpec(fmt.Sprintf("%s:%s", branchRef, branchRef))
	pushOpts := &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{refSpec},
	}
	if o.Token != "" {
		// GitHub accepts any username when the password is a token.
		pushOpts.Auth = &githttp.BasicAuth{
			Username: "x-access-token",
			Password: o.Token,
		}
	}
	if err := repo.PushContext(ctx, pushOpts); err != nil {
		return models.Upstreamf(0, "git push failed: %v", err)
	}
	return nil
}
