package audit

import (
	"strings"

	"feed-audit/internal/domain/entity"
)

// OverrideTable maps an entity name to feed URLs that are audited before
// any URL found in the registry. It covers sites whose feed cannot be
// discovered from their homepage.
type OverrideTable map[string][]string

// Lookup returns the override feeds for name. An exact match wins over a
// case-insensitive one.
func (t OverrideTable) Lookup(name string) []string {
	if len(t) == 0 {
		return nil
	}
	if feeds, ok := t[name]; ok {
		return feeds
	}
	key := strings.TrimSpace(name)
	for k, feeds := range t {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			return feeds
		}
	}
	return nil
}

// source is one planned candidate URL.
type source struct {
	url  string
	role entity.Role
}

// planOrder is the order in which roles are audited after the overrides.
var planOrder = []entity.Role{
	entity.RoleFeed,
	entity.RoleBlog,
	entity.RoleNewsletter,
	entity.RoleChangelog,
}

// plan lists the sources to audit: override feeds, then registry URLs by
// role. A URL listed twice is audited once, under its first role. Social
// URLs are never audited.
func plan(overrides []string, urls entity.URLSet) []source {
	var out []source
	seen := make(map[string]bool)

	add := func(u string, role entity.Role) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		out = append(out, source{url: u, role: role})
	}

	for _, u := range overrides {
		add(u, entity.RoleFeed)
	}
	for _, role := range planOrder {
		for _, u := range urls[role] {
			add(u, role)
		}
	}
	return out
}

// explicitFeeds returns the planned sources already known to be feeds.
func explicitFeeds(sources []source) []string {
	var feeds []string
	for _, s := range sources {
		if s.role == entity.RoleFeed {
			feeds = append(feeds, s.url)
		}
	}
	return feeds
}
