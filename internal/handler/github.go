package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"template-api/internal/generator"
	"template-api/internal/github"
	"template-api/internal/gitpush"
	"template-api/internal/models"
	"template-api/internal/params"
)

// CreateRepo creates a GitHub repository from a posted spec. The token is
// resolved before anything touches the network.
func (h *Handler) CreateRepo(w http.ResponseWriter, r *http.Request) {
	token, err := github.ResolveToken(r.Header.Get("Authorization"), h.auth.TokenFromRequest(r), h.cfg.GitHubToken)
	if err != nil {
		writeError(w, err)
		return
	}

	var spec models.GitHubRepoSpec
	if err := readJSON(w, r, &spec); err != nil {
		writeError(w, err)
		return
	}
	if err := spec.Validate(); err != nil {
		writeError(w, err)
		return
	}

	gh, err := github.NewClient(token, h.cfg.GitHubAPIURL)
	if err != nil {
		writeError(w, models.Internalf("building GitHub client: %v", err))
		return
	}
	repo, err := gh.CreateRepo(r.Context(), &spec, h.cfg.GitHubDefaultOrg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, repo)
}

// GenerateToGitHub renders a template and publishes the result to a freshly
// created repository named after the project slug.
func (h *Handler) GenerateToGitHub(w http.ResponseWriter, r *http.Request) {
	token, err := github.ResolveToken(r.Header.Get("Authorization"), h.auth.TokenFromRequest(r), h.cfg.GitHubToken)
	if err != nil {
		writeError(w, err)
		return
	}

	raw := make(map[string]any)
	if err := readJSON(w, r, &raw); err != nil {
		writeError(w, err)
		return
	}
	spec, err := popRepoOptions(raw)
	if err != nil {
		writeError(w, err)
		return
	}

	name := chi.URLParam(r, "name")
	desc, err := h.registry.Get(name)
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := models.GenerationRequestFromParams(raw)
	if err != nil {
		writeError(w, err)
		return
	}
	req.TemplateName = name

	resolved, err := params.Resolve(desc, req)
	if err != nil {
		writeError(w, err)
		return
	}
	slug, _ := resolved["project_slug"].(string)
	spec.Name = slug

	gh, err := github.NewClient(token, h.cfg.GitHubAPIURL)
	if err != nil {
		writeError(w, models.Internalf("building GitHub client: %v", err))
		return
	}
	repo, err := gh.CreateRepo(r.Context(), spec, h.cfg.GitHubDefaultOrg)
	if err != nil {
		writeError(w, err)
		return
	}

	projectDir, cleanup, err := generator.Render(desc, resolved)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cleanup()

	authorName, authorEmail := authorFromParams(resolved)
	err = gitpush.InitCommitPush(r.Context(), gitpush.Options{
		Dir:         projectDir,
		RemoteURL:   repo.CloneURL,
		Branch:      repo.DefaultBranch,
		AuthorName:  authorName,
		AuthorEmail: authorEmail,
		Token:       token,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, repo)
}

// popRepoOptions extracts repository options from the request body, leaving
// only template parameters behind.
func popRepoOptions(raw map[string]any) (*models.GitHubRepoSpec, error) {
	spec := &models.GitHubRepoSpec{Private: true}

	if v, ok := raw["description"]; ok {
		s, err := popString("description", v)
		if err != nil {
			return nil, err
		}
		spec.Description = s
		delete(raw, "description")
	}
	if v, ok := raw["private"]; ok {
		b, err := popBool("private", v)
		if err != nil {
			return nil, err
		}
		spec.Private = b
		delete(raw, "private")
	}
	if v, ok := raw["org"]; ok {
		s, err := popString("org", v)
		if err != nil {
			return nil, err
		}
		spec.Org = s
		delete(raw, "org")
	}
	if v, ok := raw["auto_init"]; ok {
		b, err := popBool("auto_init", v)
		if err != nil {
			return nil, err
		}
		spec.AutoInit = b
		delete(raw, "auto_init")
	}
	if v, ok := raw["gitignore_template"]; ok {
		s, err := popString("gitignore_template", v)
		if err != nil {
			return nil, err
		}
		spec.GitignoreTemplate = s
		delete(raw, "gitignore_template")
	}

	for key, dst := range map[string]**bool{
		"allow_squash_merge":     &spec.AllowSquashMerge,
		"allow_merge_commit":     &spec.AllowMergeCommit,
		"allow_rebase_merge":     &spec.AllowRebaseMerge,
		"delete_branch_on_merge": &spec.DeleteBranchOnMerge,
	} {
		if v, ok := raw[key]; ok {
			b, err := popBool(key, v)
			if err != nil {
				return nil, err
			}
			*dst = &b
			delete(raw, key)
		}
	}
	return spec, nil
}

func popString(key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", models.Validationf("option %q must be a string, got %T", key, v)
	}
	return s, nil
}

func popBool(key string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, models.Validationf("option %q must be a boolean, got %T", key, v)
	}
	return b, nil
}

func authorFromParams(resolved map[string]any) (string, string) {
	first, _ := resolved["first_name"].(string)
	last, _ := resolved["last_name"].(string)
	email, _ := resolved["email"].(string)

	name := first
	if last != "" {
		if name != "" {
			name += " "
		}
		name += last
	}
	return name, email
}
