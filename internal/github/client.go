// Package github wraps the GitHub REST API for repository creation and user
// lookup. It is a direct pass-through: single attempt, no retries, upstream
// errors relayed in status and message.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"

	"template-api/internal/models"
)

const DefaultAPIURL = "https://api.github.com"

// Client wraps the GitHub API client
type Client struct {
	client *github.Client
	token  string
}

// NewClient creates a new GitHub client with authentication. apiURL may be
// empty for the public API.
func NewClient(token, apiURL string) (*Client, error) {
	// Create an HTTP client with authentication header
	httpClient := &http.Client{
		Transport: &authTransport{
			token: token,
			base:  http.DefaultTransport,
		},
	}

	gh := github.NewClient(httpClient)
	if apiURL != "" && apiURL != DefaultAPIURL {
		base, err := url.Parse(strings.TrimSuffix(apiURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", apiURL, err)
		}
		gh.BaseURL = base
	}

	return &Client{
		client: gh,
		token:  token,
	}, nil
}

// authTransport adds the GitHub token to each request
type authTransport struct {
	token string
	base  http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(req)
}

// CreateRepo creates a repository for the authenticated user, or under org
// when one is set on the spec (falling back to defaultOrg). GitHub failures
// are relayed with their original status code and message.
func (c *Client) CreateRepo(ctx context.Context, spec *models.GitHubRepoSpec, defaultOrg string) (*models.GitHubRepo, error) {
	repo := &github.Repository{
		Name:     github.String(spec.Name),
		Private:  github.Bool(spec.Private),
		AutoInit: github.Bool(spec.AutoInit),
	}
	if spec.Description != "" {
		repo.Description = github.String(spec.Description)
	}
	if spec.GitignoreTemplate != "" {
		repo.GitignoreTemplate = github.String(spec.GitignoreTemplate)
	}
	repo.AllowSquashMerge = spec.AllowSquashMerge
	repo.AllowMergeCommit = spec.AllowMergeCommit
	repo.AllowRebaseMerge = spec.AllowRebaseMerge
	repo.DeleteBranchOnMerge = spec.DeleteBranchOnMerge

	org := spec.Org
	if org == "" {
		org = defaultOrg
	}

	created, _, err := c.client.Repositories.Create(ctx, org, repo)
	if err != nil {
		return nil, relayError("repository creation", err)
	}

	return &models.GitHubRepo{
		ID:            created.GetID(),
		Name:          created.GetName(),
		FullName:      created.GetFullName(),
		Private:       created.GetPrivate(),
		HTMLURL:       created.GetHTMLURL(),
		SSHURL:        created.GetSSHURL(),
		CloneURL:      created.GetCloneURL(),
		DefaultBranch: defaultBranch(created),
		Description:   created.GetDescription(),
		Visibility:    created.GetVisibility(),
	}, nil
}

// GetAuthenticatedUser returns the currently authenticated user
func (c *Client) GetAuthenticatedUser(ctx context.Context) (*models.GitHubUser, error) {
	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return nil, relayError("user lookup", err)
	}

	return &models.GitHubUser{
		Login:     user.GetLogin(),
		ID:        user.GetID(),
		Name:      user.GetName(),
		Email:     user.GetEmail(),
		AvatarURL: user.GetAvatarURL(),
		HTMLURL:   user.GetHTMLURL(),
	}, nil
}

func defaultBranch(repo *github.Repository) string {
	if b := repo.GetDefaultBranch(); b != "" {
		return b
	}
	return "main"
}

// relayError maps a go-github error to the taxonomy, keeping GitHub's status
// code and message intact.
func relayError(op string, err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		msg := ghErr.Message
		if len(ghErr.Errors) > 0 {
			msg = fmt.Sprintf("%s: %v", msg, ghErr.Errors)
		}
		status := 0
		if ghErr.Response != nil {
			status = ghErr.Response.StatusCode
		}
		return models.Upstreamf(status, "GitHub %s failed: %s", op, msg)
	}
	return models.Upstreamf(0, "GitHub %s failed: %v", op, err)
}
