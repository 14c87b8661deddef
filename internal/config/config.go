// Package config loads application settings from the environment with
// declared defaults.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds every environment-sourced setting. Populated once at startup.
type Config struct {
	AppName    string
	AppVersion string
	Port       int

	AllowedOrigins   []string
	TemplateBasePath string

	GitHubAPIURL     string
	GitHubToken      string // server-configured fallback token
	GitHubDefaultOrg string

	GitHubClientID     string
	GitHubClientSecret string
	GitHubRedirectURI  string
	GitHubAuthorizeURL string
	GitHubTokenURL     string

	SessionSecretKey  string
	SessionCookieName string
	SessionHTTPSOnly  bool
	SessionMaxAge     int // seconds

	RateLimitPerHour int // 0 disables rate limiting
}

// Load reads the environment. Missing variables take their defaults; nothing
// here fails, unconfigured optional features are checked at use sites.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "Recap Template API")
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("PORT", 8000)
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("TEMPLATE_BASE_PATH", "./templates")
	v.SetDefault("GITHUB_API_URL", "https://api.github.com")
	v.SetDefault("GITHUB_AUTHORIZE_URL", "https://github.com/login/oauth/authorize")
	v.SetDefault("GITHUB_TOKEN_URL", "https://github.com/login/oauth/access_token")
	v.SetDefault("SESSION_SECRET_KEY", "change-this-in-production")
	v.SetDefault("SESSION_COOKIE_NAME", "recap_session")
	v.SetDefault("SESSION_HTTPS_ONLY", false)
	v.SetDefault("SESSION_MAX_AGE", 14*24*60*60)
	v.SetDefault("RATE_LIMIT_PER_HOUR", 0)

	return &Config{
		AppName:    v.GetString("APP_NAME"),
		AppVersion: v.GetString("APP_VERSION"),
		Port:       v.GetInt("PORT"),

		AllowedOrigins:   splitOrigins(v.GetString("ALLOWED_ORIGINS")),
		TemplateBasePath: v.GetString("TEMPLATE_BASE_PATH"),

		GitHubAPIURL:     strings.TrimSuffix(v.GetString("GITHUB_API_URL"), "/"),
		GitHubToken:      v.GetString("GITHUB_TOKEN"),
		GitHubDefaultOrg: v.GetString("GITHUB_DEFAULT_ORG"),

		GitHubClientID:     v.GetString("GITHUB_CLIENT_ID"),
		GitHubClientSecret: v.GetString("GITHUB_CLIENT_SECRET"),
		GitHubRedirectURI:  v.GetString("GITHUB_REDIRECT_URI"),
		GitHubAuthorizeURL: v.GetString("GITHUB_AUTHORIZE_URL"),
		GitHubTokenURL:     v.GetString("GITHUB_TOKEN_URL"),

		SessionSecretKey:  v.GetString("SESSION_SECRET_KEY"),
		SessionCookieName: v.GetString("SESSION_COOKIE_NAME"),
		SessionHTTPSOnly:  v.GetBool("SESSION_HTTPS_ONLY"),
		SessionMaxAge:     v.GetInt("SESSION_MAX_AGE"),

		RateLimitPerHour: v.GetInt("RATE_LIMIT_PER_HOUR"),
	}
}

// OAuthConfigured reports whether the GitHub OAuth app settings are present.
func (c *Config) OAuthConfigured() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != "" && c.GitHubRedirectURI != ""
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
