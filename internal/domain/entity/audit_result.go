package entity

import "fmt"

// ErrorKind classifies a per-source failure.
type ErrorKind string

const (
	ErrorUnreachable ErrorKind = "unreachable"
	ErrorUnparseable ErrorKind = "unparseable"
	ErrorNoFeed      ErrorKind = "no_feed"
	ErrorInvalidURL  ErrorKind = "invalid_url"

	// NoteSkipped marks a source left out because an explicit feed already
	// covers its host. It only appears in notes.
	NoteSkipped ErrorKind = "skipped"
)

// SourceError is a failure, or an informational note, tied to one source URL.
type SourceError struct {
	SourceURL string
	Kind      ErrorKind
	Message   string
}

// String renders the error the way reports print it: "<url>: <message>".
func (e SourceError) String() string {
	return fmt.Sprintf("%s: %s", e.SourceURL, e.Message)
}

// SourceStatus records what happened to one checked source.
type SourceStatus struct {
	URL     string
	Role    Role
	FeedURL string // resolved feed endpoint; empty when none was found
	Entries int
	Failed  bool
}

// AuditResult is the outcome of auditing one entity. Entries keep feed
// order (sources in plan order, items in feed order) and are never re-sorted.
//
// An entity with no candidate sources has empty Entries and empty Errors.
// An entity whose sources were checked but had nothing recent also has empty
// Entries and empty Errors, but a non-empty Sources list.
type AuditResult struct {
	Name     string
	Kind     Kind
	Category string
	Entries  []FeedEntry
	Errors   []SourceError
	Notes    []SourceError
	Sources  []SourceStatus
}

// ErrorMessages returns the errors rendered as "<url>: <message>" strings.
func (r AuditResult) ErrorMessages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.String())
	}
	return out
}

// NoteMessages returns the notes rendered as "<url>: <message>" strings.
func (r AuditResult) NoteMessages() []string {
	out := make([]string, 0, len(r.Notes))
	for _, n := range r.Notes {
		out = append(out, n.String())
	}
	return out
}

// SourcesChecked returns the URLs of every source that was evaluated.
func (r AuditResult) SourcesChecked() []string {
	out := make([]string, 0, len(r.Sources))
	for _, s := range r.Sources {
		out = append(out, s.URL)
	}
	return out
}

// Active reports whether the audit found at least one entry.
func (r AuditResult) Active() bool {
	return len(r.Entries) > 0
}
