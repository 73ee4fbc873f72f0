package entity

import (
	"net/url"
	"path"
	"strings"
)

var feedPathMarkers = []string{"/feed", "/rss", "/atom", ".rss", ".atom"}

// IsFeedURL reports whether the URL path signals syndication content,
// e.g. /feed, /rss.xml, /blog/atom.xml or /feeds/posts/default.
func IsFeedURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if strings.HasPrefix(strings.ToLower(u.Hostname()), "feeds.") {
		return true
	}
	path := strings.ToLower(u.EscapedPath())
	for _, m := range feedPathMarkers {
		if strings.Contains(path, m) {
			return true
		}
	}
	return false
}

// IsFeedEndpoint reports whether the URL addresses a feed document itself
// rather than a page that may advertise one: a feeds.* host, a path segment
// named feed, feeds, rss or atom, or a .xml, .rss or .atom last segment.
// Unlike IsFeedURL it ignores words that merely start with a marker, such
// as /atomic-habits or /feedback-loops.
func IsFeedEndpoint(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if strings.HasPrefix(strings.ToLower(u.Hostname()), "feeds.") {
		return true
	}
	p := strings.ToLower(strings.TrimSuffix(u.Path, "/"))
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "feed", "feeds", "rss", "atom":
			return true
		}
	}
	switch path.Ext(p) {
	case ".xml", ".rss", ".atom":
		return true
	}
	return false
}

// IsSocialURL reports whether the URL points at twitter.com or x.com,
// including subdomains such as mobile.twitter.com.
func IsSocialURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, social := range []string{"twitter.com", "x.com"} {
		if host == social || strings.HasSuffix(host, "."+social) {
			return true
		}
	}
	return false
}

// IsDocsURL reports whether the URL looks like product documentation:
// a docs.* host or a /docs path segment.
func IsDocsURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if strings.HasPrefix(strings.ToLower(u.Hostname()), "docs.") {
		return true
	}
	for _, seg := range strings.Split(strings.ToLower(u.Path), "/") {
		if seg == "docs" {
			return true
		}
	}
	return false
}

// ClassifyURL assigns a role to a URL listed without a label. The rules are
// applied in order and the first match wins:
//
//  1. twitter.com / x.com            -> discarded
//  2. feed-like path                 -> feed
//  3. "changelog" or "release-notes" -> changelog
//  4. "blog", "news" or "updates"    -> blog
//  5. documentation URL              -> discarded
//  6. anything else                  -> blog
//
// The boolean result is false when the URL is discarded.
func ClassifyURL(rawURL string) (Role, bool) {
	lower := strings.ToLower(rawURL)

	switch {
	case IsSocialURL(rawURL):
		return "", false
	case IsFeedURL(rawURL):
		return RoleFeed, true
	case strings.Contains(lower, "changelog"), strings.Contains(lower, "release-notes"):
		return RoleChangelog, true
	case strings.Contains(lower, "blog"), strings.Contains(lower, "news"), strings.Contains(lower, "updates"):
		return RoleBlog, true
	case IsDocsURL(rawURL):
		return "", false
	default:
		return RoleBlog, true
	}
}

// SameHost reports whether two URLs share a host, ignoring case and a
// leading "www.".
func SameHost(a, b string) bool {
	ha, hb := hostOf(a), hostOf(b)
	return ha != "" && ha == hb
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
