package report

import (
	"fmt"
	"strings"
	"time"

	"feed-audit/internal/domain/entity"
	"feed-audit/internal/utils/text"
)

// Options tune the digest header.
type Options struct {
	// Title is the top-level heading. Default: "Feed Audit Digest"
	Title string
	// WindowDays is shown in the header when positive.
	WindowDays int
	// GeneratedAt is shown in the header when set.
	GeneratedAt time.Time
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`#`, `\#`,
)

func escape(s string) string {
	return mdEscaper.Replace(text.CollapseSpace(s))
}

// Markdown renders the digest: active entities with their posts, then the
// inactive ones with their errors.
func Markdown(results []entity.AuditResult, opts Options) string {
	title := opts.Title
	if title == "" {
		title = "Feed Audit Digest"
	}

	var active, inactive []entity.AuditResult
	for _, r := range results {
		if r.Active() {
			active = append(active, r)
		} else {
			inactive = append(inactive, r)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escape(title))

	var meta []string
	if !opts.GeneratedAt.IsZero() {
		meta = append(meta, "Generated "+opts.GeneratedAt.Format("2006-01-02"))
	}
	if opts.WindowDays > 0 {
		meta = append(meta, fmt.Sprintf("last %d days", opts.WindowDays))
	}
	meta = append(meta, fmt.Sprintf("%d of %d active", len(active), len(results)))
	fmt.Fprintf(&b, "_%s_\n\n", strings.Join(meta, ", "))

	fmt.Fprintf(&b, "## Active (%d)\n\n", len(active))
	for _, r := range active {
		writeEntity(&b, r)
	}

	fmt.Fprintf(&b, "## Inactive (%d)\n\n", len(inactive))
	for _, r := range inactive {
		fmt.Fprintf(&b, "- %s\n", escape(r.Name))
		if msgs := r.ErrorMessages(); len(msgs) > 0 {
			fmt.Fprintf(&b, "  - Errors: %s\n", escape(strings.Join(msgs, "; ")))
		}
	}
	if len(inactive) > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

func writeEntity(b *strings.Builder, r entity.AuditResult) {
	fmt.Fprintf(b, "### %s\n\n", escape(r.Name))
	if r.Category != "" {
		fmt.Fprintf(b, "*Category: %s*\n\n", escape(r.Category))
	}

	for _, e := range r.Entries {
		if e.Link != "" {
			fmt.Fprintf(b, "#### [%s](<%s>)\n\n", escape(e.Title), e.Link)
		} else {
			fmt.Fprintf(b, "#### %s\n\n", escape(e.Title))
		}
		if e.HasTimestamp() {
			fmt.Fprintf(b, "- **Published:** %s\n", e.PublishedAt.UTC().Format("2006-01-02"))
		}
		fmt.Fprintf(b, "- **Source:** %s (<%s>)\n\n", e.SourceKind, e.SourceURL)
		if s := escape(e.Summary); s != "" {
			fmt.Fprintf(b, "%s\n\n", s)
		}
	}
}
