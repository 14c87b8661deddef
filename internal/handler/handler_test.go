package handler

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"template-api/internal/auth"
	"template-api/internal/config"
	"template-api/internal/registry"
)

func testConfig() *config.Config {
	return &config.Config{
		AppName:           "Recap Template API",
		AppVersion:        "test",
		AllowedOrigins:    []string{"*"},
		GitHubAPIURL:      "https://api.github.com",
		SessionSecretKey:  "test-secret",
		SessionCookieName: "recap_session",
		SessionMaxAge:     3600,
	}
}

// fixtureRegistry writes a one-template registry to disk and loads it.
func fixtureRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	base := t.TempDir()

	dir := filepath.Join(base, "templates", "recap")
	root := filepath.Join(dir, "{{.project_slug}}")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"),
		[]byte("# {{.project_name}}\n"), 0o644))

	cfg := map[string]any{
		"project_name": "Recap Project",
		"use_r":        false,
	}
	raw, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "template.json"), raw, 0o644))

	idx, err := json.Marshal(map[string]any{
		"templates": map[string]any{
			"recap": map[string]string{
				"path":        "templates/recap",
				"title":       "Recap",
				"description": "Standard project",
			},
		},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(base, "templates.json"), idx, 0o644))

	reg, err := registry.New(base)
	require.NoError(t, err)
	return reg
}

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	h := New(cfg, fixtureRegistry(t), auth.NewManager(cfg))
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func newCookieJar(t *testing.T) http.CookieJar {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return jar
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestRoot(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	decodeBody(t, resp, &body)
	assert.Equal(t, "Recap Template API", body["name"])
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body["endpoints"], "generate")
}

func TestListTemplates(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, err := http.Get(srv.URL + "/templates")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Templates map[string]registry.Info `json:"templates"`
	}
	decodeBody(t, resp, &body)
	require.Contains(t, body.Templates, "recap")
	assert.Equal(t, "Recap", body.Templates["recap"].Title)
}

func TestTemplateConfig(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, err := http.Get(srv.URL + "/templates/recap/config")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Template string         `json:"template"`
		Config   map[string]any `json:"config"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "recap", body.Template)
	assert.Equal(t, "Recap Project", body.Config["project_name"])
}

func TestTemplateConfigUnknown(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, err := http.Get(srv.URL + "/templates/nope/config")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGenerateQuery(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, err := http.Get(srv.URL + "/generate?template_name=recap&project_name=Demo")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="demo.zip"`, resp.Header.Get("Content-Disposition"))

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "demo/")
	assert.Contains(t, names, "demo/README.md")
}

func TestGenerateJSON(t *testing.T) {
	srv := newTestServer(t, testConfig())

	body := `{"template_name": "recap", "project_name": "My Thesis"}`
	resp, err := http.Post(srv.URL+"/generate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="my-thesis.zip"`, resp.Header.Get("Content-Disposition"))
}

func TestGenerateUnknownTemplate(t *testing.T) {
	srv := newTestServer(t, testConfig())

	// parameter-sourced name, so the error is a 400, not a 404
	resp, err := http.Get(srv.URL + "/generate?template_name=nope")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]any
	decodeBody(t, resp, &body)
	assert.Equal(t, "not_found", body["kind"])
}

func TestGenerateMissingTemplateName(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, err := http.Get(srv.URL + "/generate")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateMalformedJSON(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, err := http.Post(srv.URL+"/generate", "application/json", strings.NewReader("{broken"))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body map[string]any
	decodeBody(t, resp, &body)
	assert.Equal(t, "validation_error", body["kind"])
}

func TestGenerateMistypedParameter(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, err := http.Get(srv.URL + "/generate?template_name=recap&use_r=maybe")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCreateRepoRequiresToken(t *testing.T) {
	// no header, no session, no fallback: rejected before any network call
	srv := newTestServer(t, testConfig())

	resp, err := http.Post(srv.URL+"/gh-repo-create", "application/json",
		strings.NewReader(`{"name": "demo"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]any
	decodeBody(t, resp, &body)
	assert.Equal(t, "authentication_error", body["kind"])
}

func TestCreateRepoWithHeaderToken(t *testing.T) {
	var gotAuth string
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/user/repos", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"id":             1,
			"name":           "demo",
			"full_name":      "octocat/demo",
			"default_branch": "main",
		})
	}))
	defer gh.Close()

	cfg := testConfig()
	cfg.GitHubAPIURL = gh.URL
	srv := newTestServer(t, cfg)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/gh-repo-create",
		strings.NewReader(`{"name": "demo", "private": true}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer user-tok")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Bearer user-tok", gotAuth)

	var body map[string]any
	decodeBody(t, resp, &body)
	assert.Equal(t, "octocat/demo", body["full_name"])
}

func TestCreateRepoMissingName(t *testing.T) {
	cfg := testConfig()
	cfg.GitHubToken = "env-tok"
	srv := newTestServer(t, cfg)

	resp, err := http.Post(srv.URL+"/gh-repo-create", "application/json",
		strings.NewReader(`{"private": true}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCallbackInvalidState(t *testing.T) {
	cfg := testConfig()
	cfg.GitHubClientID = "cid"
	cfg.GitHubClientSecret = "secret"
	cfg.GitHubRedirectURI = "http://localhost/auth/github/callback"
	cfg.GitHubAuthorizeURL = "https://example.invalid/authorize"
	cfg.GitHubTokenURL = "https://example.invalid/token"
	srv := newTestServer(t, cfg)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(srv.URL + "/auth/github/callback?state=forged&code=abc")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]any
	decodeBody(t, resp, &body)
	assert.Equal(t, "authentication_error", body["kind"])

	// no session was created
	me, err := http.Get(srv.URL + "/auth/github/me")
	require.NoError(t, err)
	defer me.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, me.StatusCode)
}

func TestLoginUnconfigured(t *testing.T) {
	srv := newTestServer(t, testConfig())

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(srv.URL + "/auth/github/login")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestOAuthFlow(t *testing.T) {
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/token":
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "oauth-tok",
				"token_type":   "bearer",
			})
		case "/user":
			json.NewEncoder(w).Encode(map[string]any{
				"login": "octocat",
				"id":    7,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer gh.Close()

	cfg := testConfig()
	cfg.GitHubClientID = "cid"
	cfg.GitHubClientSecret = "secret"
	cfg.GitHubRedirectURI = "http://localhost/auth/github/callback"
	cfg.GitHubAuthorizeURL = "https://example.invalid/authorize"
	cfg.GitHubTokenURL = gh.URL + "/token"
	cfg.GitHubAPIURL = gh.URL
	srv := newTestServer(t, cfg)

	jar := newCookieJar(t)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	// login: redirect carries the state that went into the cookie session
	resp, err := client.Get(srv.URL + "/auth/github/login")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Equal(t, "cid", loc.Query().Get("client_id"))

	// callback with the matching state establishes the session
	resp, err = client.Get(srv.URL + "/auth/github/callback?state=" + state + "&code=authcode")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	me, err := client.Get(srv.URL + "/auth/github/me")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, me.StatusCode)

	var body struct {
		Authenticated bool `json:"authenticated"`
		User          struct {
			Login string `json:"login"`
		} `json:"user"`
	}
	decodeBody(t, me, &body)
	assert.True(t, body.Authenticated)
	assert.Equal(t, "octocat", body.User.Login)

	// logout drops the session
	resp, err = client.Post(srv.URL+"/auth/logout", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	me, err = client.Get(srv.URL + "/auth/github/me")
	require.NoError(t, err)
	defer me.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, me.StatusCode)
}

func TestRateLimitedGenerate(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitPerHour = 1
	srv := newTestServer(t, cfg)

	resp, err := http.Get(srv.URL + "/generate?template_name=recap")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/generate?template_name=recap")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
