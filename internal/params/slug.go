package params

import "strings"

// Slugify normalizes a project name into a filesystem- and repository-safe
// identifier: lowercased, whitespace collapsed to hyphens, anything outside
// [a-z0-9._-] dropped. An empty result falls back to "project".
func Slugify(name string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	joined := strings.Join(fields, "-")

	var b strings.Builder
	b.Grow(len(joined))
	for _, r := range joined {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	slug := strings.Trim(b.String(), "-.")
	if slug == "" {
		return "project"
	}
	return slug
}
