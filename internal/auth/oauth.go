package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"

	"template-api/internal/config"
	"template-api/internal/github"
	"template-api/internal/models"
)

const (
	sessionIDKey  = "session_id"
	oauthStateKey = "oauth_state"
)

// Manager drives the GitHub OAuth authorization-code flow and ties the
// resulting access tokens to cookie-backed sessions.
type Manager struct {
	cfg      *config.Config
	oauth    *oauth2.Config
	cookies  *sessions.CookieStore
	sessions *SessionStore
}

func NewManager(cfg *config.Config) *Manager {
	cookies := sessions.NewCookieStore([]byte(cfg.SessionSecretKey))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.SessionHTTPSOnly,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.GitHubRedirectURI,
			Scopes:       []string{"repo", "read:user"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.GitHubAuthorizeURL,
				TokenURL: cfg.GitHubTokenURL,
			},
		},
		cookies:  cookies,
		sessions: NewSessionStore(time.Duration(cfg.SessionMaxAge) * time.Second),
	}
}

// Configured reports whether the OAuth app settings are present.
func (m *Manager) Configured() bool { return m.cfg.OAuthConfigured() }

// LoginURL generates a fresh state value, stores it in the cookie session,
// and returns the GitHub authorization URL to redirect to.
func (m *Manager) LoginURL(w http.ResponseWriter, r *http.Request) (string, error) {
	state := uuid.NewString()

	sess, _ := m.cookies.Get(r, m.cfg.SessionCookieName)
	sess.Values[oauthStateKey] = state
	if err := sess.Save(r, w); err != nil {
		return "", models.Internalf("saving login state: %v", err)
	}
	return m.oauth.AuthCodeURL(state), nil
}

// HandleCallback validates the state parameter, exchanges the code for an
// access token, resolves the GitHub user, and establishes a session.
func (m *Manager) HandleCallback(ctx context.Context, w http.ResponseWriter, r *http.Request, state, code string) (*Session, error) {
	sess, _ := m.cookies.Get(r, m.cfg.SessionCookieName)
	expected, _ := sess.Values[oauthStateKey].(string)
	delete(sess.Values, oauthStateKey)

	if state == "" || expected == "" || state != expected {
		sess.Save(r, w)
		return nil, models.Authf("invalid OAuth state")
	}

	tok, err := m.oauth.Exchange(ctx, code)
	if err != nil {
		sess.Save(r, w)
		return nil, models.Authf("OAuth code exchange failed: %v", err)
	}

	gh, err := github.NewClient(tok.AccessToken, m.cfg.GitHubAPIURL)
	if err != nil {
		return nil, models.Internalf("building GitHub client: %v", err)
	}
	user, err := gh.GetAuthenticatedUser(ctx)
	if err != nil {
		return nil, err
	}

	session := m.sessions.Create(tok.AccessToken, user)
	sess.Values[sessionIDKey] = session.ID
	if err := sess.Save(r, w); err != nil {
		return nil, models.Internalf("saving session: %v", err)
	}
	return session, nil
}

// SessionFromRequest returns the live session referenced by the request's
// cookie, or nil when there is none.
func (m *Manager) SessionFromRequest(r *http.Request) *Session {
	sess, err := m.cookies.Get(r, m.cfg.SessionCookieName)
	if err != nil {
		return nil
	}
	id, _ := sess.Values[sessionIDKey].(string)
	if id == "" {
		return nil
	}
	return m.sessions.Get(id)
}

// TokenFromRequest returns the session-held access token for the request, or
// the empty string when the user is not logged in.
func (m *Manager) TokenFromRequest(r *http.Request) string {
	if s := m.SessionFromRequest(r); s != nil {
		return s.Token
	}
	return ""
}

// Logout drops the server-side session and clears the cookie.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := m.cookies.Get(r, m.cfg.SessionCookieName)
	if id, _ := sess.Values[sessionIDKey].(string); id != "" {
		m.sessions.Delete(id)
	}
	sess.Options.MaxAge = -1
	sess.Save(r, w)
}
