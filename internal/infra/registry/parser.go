package registry

import (
	"fmt"
	"regexp"
	"strings"

	"feed-audit/internal/domain/entity"
)

// Style selects how section bodies are interpreted.
type Style int

const (
	// StyleAuto picks StyleCompany when any section has a primary-sources
	// block, StylePerson otherwise.
	StyleAuto Style = iota
	// StylePerson reads one URL per labelled line. Records without URLs are kept.
	StylePerson
	// StyleCompany classifies every URL of the primary-sources block.
	// Records without blog, feed or changelog URLs are dropped.
	StyleCompany
)

// String returns the flag spelling of the style.
func (s Style) String() string {
	switch s {
	case StylePerson:
		return "person"
	case StyleCompany:
		return "company"
	default:
		return "auto"
	}
}

// ParseStyle converts a flag or front matter value to a Style.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return StyleAuto, nil
	case "person", "people":
		return StylePerson, nil
	case "company", "companies":
		return StyleCompany, nil
	}
	return StyleAuto, fmt.Errorf("unknown registry style %q (want auto, person or company)", s)
}

var (
	urlPattern    = regexp.MustCompile(`https?://[^\s)\]>"'<]+`)
	handlePattern = regexp.MustCompile(`(?:^|[\s(:*])@(\w+)`)
)

// label is a case-insensitive line marker and the field it fills.
type label struct {
	marker string
	field  field
}

type field int

const (
	fieldNone field = iota
	fieldFeed
	fieldBlog
	fieldNewsletter
	fieldChangelog
	fieldLinkedIn
	fieldTwitter
	fieldCategory
	fieldPrimarySources
)

// labels are matched by earliest position on the line; on a tie the longer
// marker wins, so "rss feed:" beats "feed:"-style overlaps.
var labels = []label{
	{"primary sources:", fieldPrimarySources},
	{"category:", fieldCategory},
	{"rss feed:", fieldFeed},
	{"rss:", fieldFeed},
	{"newsletter:", fieldNewsletter},
	{"changelog:", fieldChangelog},
	{"blog:", fieldBlog},
	{"linkedin:", fieldLinkedIn},
	{"twitter/x:", fieldTwitter},
	{"twitter:", fieldTwitter},
}

const primarySourcesMarker = "primary sources:"

// section is the raw text of one "## " block.
type section struct {
	name  string
	lines []string
}

// splitSections cuts body at second-level headers. Text before the first
// header is preamble and is discarded.
func splitSections(body string) []section {
	body = strings.ReplaceAll(body, "\r\n", "\n")

	var (
		sections []section
		current  *section
	)
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "## ") || line == "##" {
			sections = append(sections, section{name: strings.TrimSpace(strings.TrimPrefix(line, "##"))})
			current = &sections[len(sections)-1]
			continue
		}
		if current != nil {
			current.lines = append(current.lines, line)
		}
	}
	return sections
}

func detectStyle(body string) Style {
	for _, sec := range splitSections(body) {
		for _, line := range sec.lines {
			if strings.Contains(strings.ToLower(line), primarySourcesMarker) {
				return StyleCompany
			}
		}
	}
	return StylePerson
}

func parseBody(body string, style Style) []entity.EntityRecord {
	sections := splitSections(body)
	records := make([]entity.EntityRecord, 0, len(sections))

	for _, sec := range sections {
		switch style {
		case StyleCompany:
			rec := parseCompany(sec)
			if rec.HasAuditableURLs() {
				records = append(records, rec)
			}
		default:
			records = append(records, parsePerson(sec))
		}
	}
	return records
}

// parsePerson keeps the first value found for each label.
func parsePerson(sec section) entity.EntityRecord {
	rec := entity.NewEntityRecord(sec.name, entity.KindPerson)
	var haveLinkedIn, haveTwitter bool

	for _, line := range sec.lines {
		f, rest := matchLabel(line)
		switch f {
		case fieldCategory:
			if rec.Category == "" {
				rec.Category = categoryValue(rest)
			}
		case fieldFeed, fieldBlog, fieldNewsletter, fieldChangelog:
			role := roleFor(f)
			if rec.URLs.Has(role) {
				continue
			}
			rec.URLs.Add(role, extractURL(line, rest))
		case fieldLinkedIn:
			if haveLinkedIn {
				continue
			}
			if u := extractURL(line, rest); u != "" {
				rec.URLs.Add(entity.RoleSocial, u)
				haveLinkedIn = true
			}
		case fieldTwitter:
			if haveTwitter {
				continue
			}
			if u := twitterValue(line, rest); u != "" {
				rec.URLs.Add(entity.RoleSocial, u)
				haveTwitter = true
			}
		}
	}
	return rec
}

// parseCompany reads the category and the primary-sources block. The block
// starts on the label line and ends at a blank line once a URL has been
// stored, at a horizontal rule, or at a category line.
func parseCompany(sec section) entity.EntityRecord {
	rec := entity.NewEntityRecord(sec.name, entity.KindCompany)
	inBlock := false
	stored := 0

	for _, line := range sec.lines {
		f, rest := matchLabel(line)

		if inBlock {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "---") {
				inBlock = false
				continue
			}
			if trimmed == "" {
				if stored > 0 {
					inBlock = false
				}
				continue
			}
			if f == fieldCategory {
				inBlock = false
				if rec.Category == "" {
					rec.Category = categoryValue(rest)
				}
				continue
			}
			stored += addClassified(&rec, line)
			continue
		}

		switch f {
		case fieldCategory:
			if rec.Category == "" {
				rec.Category = categoryValue(rest)
			}
		case fieldPrimarySources:
			inBlock = true
			stored += addClassified(&rec, rest)
		case fieldFeed, fieldBlog, fieldNewsletter, fieldChangelog:
			if u := extractURL(line, rest); u != "" && !entity.IsSocialURL(u) {
				rec.URLs.Add(roleFor(f), u)
			}
		}
	}
	return rec
}

// addClassified stores every URL on line under its classified role and
// returns how many URLs were kept.
func addClassified(rec *entity.EntityRecord, line string) int {
	n := 0
	for _, raw := range urlPattern.FindAllString(line, -1) {
		u := cleanURL(raw)
		role, ok := entity.ClassifyURL(u)
		if !ok {
			continue
		}
		rec.URLs.Add(role, u)
		n++
	}
	return n
}

// matchLabel returns the label found earliest on line and the text after it.
func matchLabel(line string) (field, string) {
	lower := strings.ToLower(line)
	best, bestPos, bestLen := fieldNone, -1, 0

	for _, l := range labels {
		pos := strings.Index(lower, l.marker)
		if pos < 0 {
			continue
		}
		if bestPos < 0 || pos < bestPos || (pos == bestPos && len(l.marker) > bestLen) {
			best, bestPos, bestLen = l.field, pos, len(l.marker)
		}
	}
	if bestPos < 0 {
		return fieldNone, ""
	}
	return best, line[bestPos+bestLen:]
}

// extractURL prefers the first URL after the label and falls back to the
// first URL anywhere on the line.
func extractURL(line, afterLabel string) string {
	if m := urlPattern.FindString(afterLabel); m != "" {
		return cleanURL(m)
	}
	if m := urlPattern.FindString(line); m != "" {
		return cleanURL(m)
	}
	return ""
}

func twitterValue(line, afterLabel string) string {
	if u := extractURL(line, afterLabel); u != "" {
		return u
	}
	if m := handlePattern.FindStringSubmatch(afterLabel); m != nil {
		return "https://x.com/" + m[1]
	}
	if m := handlePattern.FindStringSubmatch(line); m != nil {
		return "https://x.com/" + m[1]
	}
	return ""
}

func categoryValue(rest string) string {
	rest = strings.TrimSpace(rest)
	rest = strings.TrimPrefix(rest, "**")
	return strings.TrimSpace(rest)
}

func cleanURL(u string) string {
	return strings.TrimRight(u, "),.;*")
}

func roleFor(f field) entity.Role {
	switch f {
	case fieldFeed:
		return entity.RoleFeed
	case fieldNewsletter:
		return entity.RoleNewsletter
	case fieldChangelog:
		return entity.RoleChangelog
	default:
		return entity.RoleBlog
	}
}
