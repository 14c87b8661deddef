package handler

import (
	"net/http"

	"template-api/internal/models"
)

// Login starts the GitHub OAuth flow.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.auth.Configured() {
		writeError(w, models.Internalf("GitHub OAuth is not configured"))
		return
	}
	url, err := h.auth.LoginURL(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// Callback completes the OAuth flow and establishes a session.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	if !h.auth.Configured() {
		writeError(w, models.Internalf("GitHub OAuth is not configured"))
		return
	}
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")

	if _, err := h.auth.HandleCallback(r.Context(), w, r, state, code); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Me reports the logged-in user, from the profile cached at login time.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess := h.auth.SessionFromRequest(r)
	if sess == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          sess.User,
	})
}

// Logout drops the session and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(w, r)
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
}
