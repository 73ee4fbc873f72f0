package report

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"feed-audit/internal/domain/entity"
)

// Raw HTML in feed summaries is not passed through: the renderer runs
// without html.WithUnsafe.
var htmlEngine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// HTML renders the Markdown digest to a standalone HTML document.
func HTML(results []entity.AuditResult, opts Options) ([]byte, error) {
	title := opts.Title
	if title == "" {
		title = "Feed Audit Digest"
	}

	var body bytes.Buffer
	if err := htmlEngine.Convert([]byte(Markdown(results, opts)), &body); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}

	var doc bytes.Buffer
	fmt.Fprintf(&doc, "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n",
		html.EscapeString(title))
	doc.Write(body.Bytes())
	doc.WriteString("</body>\n</html>\n")
	return doc.Bytes(), nil
}
