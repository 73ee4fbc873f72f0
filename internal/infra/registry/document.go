// Package registry parses Markdown registry documents that describe tracked
// people and companies, one second-level section per entity.
package registry

import (
	"fmt"
	"os"
	"strings"

	"github.com/adrg/frontmatter"

	"feed-audit/internal/domain/entity"
)

// Metadata is the optional front matter of a registry document.
type Metadata struct {
	Title   string `yaml:"title" toml:"title"`
	Updated string `yaml:"updated" toml:"updated"`
	Style   string `yaml:"style" toml:"style"`
}

// Document is a parsed registry file.
type Document struct {
	Path     string
	Metadata Metadata
	Style    Style // style actually used for parsing
	Records  []entity.EntityRecord
}

// ParseDocument strips front matter from text and parses the remaining body.
// A front matter "style" key is honoured when style is StyleAuto.
//
// The only error condition is a front matter block that cannot be decoded;
// malformed sections never fail the parse.
func ParseDocument(text string, style Style) (*Document, error) {
	meta, body, err := splitFrontMatter(text)
	if err != nil {
		return nil, err
	}

	if style == StyleAuto && meta.Style != "" {
		if hinted, perr := ParseStyle(meta.Style); perr == nil {
			style = hinted
		}
	}
	if style == StyleAuto {
		style = detectStyle(body)
	}

	return &Document{
		Metadata: meta,
		Style:    style,
		Records:  parseBody(body, style),
	}, nil
}

// Parse returns the entity records of text in document order.
func Parse(text string, style Style) ([]entity.EntityRecord, error) {
	doc, err := ParseDocument(text, style)
	if err != nil {
		return nil, err
	}
	return doc.Records, nil
}

// LoadFile reads and parses the registry at path.
func LoadFile(path string, style Style) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}

	doc, err := ParseDocument(string(data), style)
	if err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// splitFrontMatter only engages the front matter decoder when the document
// opens with a delimiter line, so a leading horizontal rule in a plain
// document is left alone.
func splitFrontMatter(text string) (Metadata, string, error) {
	var meta Metadata

	trimmed := strings.TrimPrefix(text, "\ufeff")
	if !hasFrontMatter(trimmed) {
		return meta, text, nil
	}

	body, err := frontmatter.Parse(strings.NewReader(trimmed), &meta)
	if err != nil {
		return Metadata{}, "", fmt.Errorf("parse frontmatter: %w", err)
	}
	return meta, string(body), nil
}

// hasFrontMatter requires an opening delimiter on the first line and a
// matching closing delimiter further down.
func hasFrontMatter(text string) bool {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return false
	}
	delim := strings.TrimSpace(lines[0])
	if delim != "---" && delim != "+++" {
		return false
	}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == delim {
			return true
		}
	}
	return false
}
