// Package entity defines the core domain types of the feed auditor:
// tracked entities parsed from a registry document, the feed entries found
// for them, and the per-entity audit outcome.
package entity

// Role tags a candidate URL with the part it plays for an entity.
type Role string

const (
	RoleBlog       Role = "blog"
	RoleFeed       Role = "feed"
	RoleNewsletter Role = "newsletter"
	RoleSocial     Role = "social"
	RoleChangelog  Role = "changelog"
)

// Roles lists every role in the order sources are planned and reported.
var Roles = []Role{RoleFeed, RoleBlog, RoleNewsletter, RoleChangelog, RoleSocial}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleBlog, RoleFeed, RoleNewsletter, RoleSocial, RoleChangelog:
		return true
	}
	return false
}

// Auditable reports whether URLs of this role can yield feed entries.
// Social URLs are kept for reference only.
func (r Role) Auditable() bool {
	return r.Valid() && r != RoleSocial
}

// Kind identifies which registry layout produced a record.
type Kind string

const (
	KindPerson  Kind = "person"
	KindCompany Kind = "company"
)

// URLSet maps a role to its URLs in document order.
type URLSet map[Role][]string

// Add appends u under role r, ignoring empty strings and exact duplicates
// within the same role.
func (s URLSet) Add(r Role, u string) {
	if u == "" {
		return
	}
	for _, existing := range s[r] {
		if existing == u {
			return
		}
	}
	s[r] = append(s[r], u)
}

// First returns the first URL stored under r, or "".
func (s URLSet) First(r Role) string {
	if len(s[r]) == 0 {
		return ""
	}
	return s[r][0]
}

// Has reports whether at least one URL is stored under r.
func (s URLSet) Has(r Role) bool {
	return len(s[r]) > 0
}

// Len returns the total number of URLs across all roles.
func (s URLSet) Len() int {
	n := 0
	for _, urls := range s {
		n += len(urls)
	}
	return n
}

// Clone returns a deep copy of s.
func (s URLSet) Clone() URLSet {
	out := make(URLSet, len(s))
	for r, urls := range s {
		out[r] = append([]string(nil), urls...)
	}
	return out
}

// EntityRecord is one tracked person or company.
// Records are built once by the registry parser and treated as read-only
// afterwards; callers that need to change URLs work on URLs.Clone().
type EntityRecord struct {
	Name     string
	Kind     Kind
	Category string
	URLs     URLSet
}

// NewEntityRecord returns a record with an initialised URL set.
func NewEntityRecord(name string, kind Kind) EntityRecord {
	return EntityRecord{
		Name: name,
		Kind: kind,
		URLs: URLSet{},
	}
}

// HasAuditableURLs reports whether the record has any blog, feed,
// newsletter or changelog URL.
func (e EntityRecord) HasAuditableURLs() bool {
	for r, urls := range e.URLs {
		if r.Auditable() && len(urls) > 0 {
			return true
		}
	}
	return false
}
