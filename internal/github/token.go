package github

import (
	"strings"

	"template-api/internal/models"
)

// ResolveToken returns the first usable token in precedence order: explicit
// Authorization header, then the session-stored token, then the
// server-configured fallback.
func ResolveToken(authorizationHeader, sessionToken, fallbackToken string) (string, error) {
	if t := bearerToken(authorizationHeader); t != "" {
		return t, nil
	}
	if sessionToken != "" {
		return sessionToken, nil
	}
	if fallbackToken != "" {
		return fallbackToken, nil
	}
	return "", models.ErrMissingToken
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
