package utils

import (
	"net/url"
	"regexp"
	"strings"
)

// dpRegex extracts the bare /dp/ASIN segment from an Amazon product path.
var dpRegex = regexp.MustCompile(`(/dp/[^/?]+)`)

// CanonicalizeURL reduces a product URL to scheme+host+path, keeping only
// the affiliate "tag" query parameter and dropping every tracking
// parameter. Amazon URLs are additionally trimmed to their /dp/ segment.
// The function is idempotent. Unparseable input is returned unchanged.
func CanonicalizeURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw
	}

	path := parsed.EscapedPath()
	if strings.Contains(parsed.Host, "amazon.") {
		if m := dpRegex.FindString(path); m != "" {
			path = m
		}
	}

	clean := parsed.Scheme + "://" + parsed.Host + path
	if tag := parsed.Query().Get("tag"); tag != "" {
		clean += "?tag=" + url.QueryEscape(tag)
	}
	return clean
}

// AddReferralTag appends an affiliate tag to an already canonical URL.
// A URL that carries a tag keeps the one it has.
func AddReferralTag(canonical, tag string) string {
	if tag == "" || strings.Contains(canonical, "?tag=") {
		return canonical
	}
	return canonical + "?tag=" + url.QueryEscape(tag)
}
