// Package report renders audit results as JSON, a Markdown digest or the
// digest converted to HTML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"feed-audit/internal/domain/entity"
)

// Format selects an output rendering.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts "json", "markdown" (or "md") and "html".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown format %q (want json, markdown or html)", s)
}

// Ext is the file extension used for the format.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Post is the serialized form of one recent feed entry.
type Post struct {
	Title     string  `json:"title"`
	Link      string  `json:"link"`
	Published *string `json:"published"`
	Summary   string  `json:"summary"`
	Source    string  `json:"source"`
	SourceURL string  `json:"source_url"`
}

// Entity is the serialized form of one audit result.
type Entity struct {
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Posts          []Post   `json:"posts"`
	Errors         []string `json:"errors"`
	Notes          []string `json:"notes"`
	SourcesChecked []string `json:"sources_checked"`
}

// FromResults converts audit results, keeping their order. Slices are never
// nil so they encode as [].
func FromResults(results []entity.AuditResult) []Entity {
	out := make([]Entity, 0, len(results))
	for _, r := range results {
		e := Entity{
			Name:           r.Name,
			Category:       r.Category,
			Posts:          make([]Post, 0, len(r.Entries)),
			Errors:         r.ErrorMessages(),
			Notes:          r.NoteMessages(),
			SourcesChecked: r.SourcesChecked(),
		}
		for _, fe := range r.Entries {
			e.Posts = append(e.Posts, toPost(fe))
		}
		out = append(out, e)
	}
	return out
}

func toPost(fe entity.FeedEntry) Post {
	p := Post{
		Title:     fe.Title,
		Link:      fe.Link,
		Summary:   fe.Summary,
		Source:    string(fe.SourceKind),
		SourceURL: fe.SourceURL,
	}
	if fe.HasTimestamp() {
		s := fe.PublishedAt.UTC().Format(time.RFC3339)
		p.Published = &s
	}
	return p
}

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []entity.AuditResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(FromResults(results)); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// Write renders results in format f.
func Write(w io.Writer, f Format, results []entity.AuditResult, opts Options) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, results)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(results, opts))
		return err
	case FormatHTML:
		out, err := HTML(results, opts)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	}
	return fmt.Errorf("unknown format %q", f)
}
