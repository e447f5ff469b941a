package client

import (
	"net/url"
	"strings"
)

// JoinAPIURL resolves a relative API path against the configured base
// origin. The path's single leading slash is stripped first, so a trailing
// slash on the base keeps its usual resolution meaning: present appends,
// absent replaces the last segment.
//
// When the base cannot be parsed at all the function falls back to plain
// concatenation with exactly one separating slash. It never fails; a request
// attempt is always possible.
func JoinAPIURL(base, path string) string {
	if base == "" {
		base = "/"
	}
	rel := strings.TrimPrefix(path, "/")

	if baseURL, err := url.Parse(base); err == nil {
		if relURL, err := url.Parse(rel); err == nil {
			return baseURL.ResolveReference(relURL).String()
		}
	}
	return strings.TrimRight(base, "/") + "/" + rel
}
