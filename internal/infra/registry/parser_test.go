package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feed-audit/internal/domain/entity"
	"feed-audit/tests/fixtures"
)

func TestParse_PersonStyle(t *testing.T) {
	records, err := Parse(fixtures.PeopleRegistry, StylePerson)
	require.NoError(t, err)
	require.Len(t, records, 3)

	want := []entity.EntityRecord{
		{
			Name:     "Alice Example",
			Kind:     entity.KindPerson,
			Category: "Research",
			URLs: entity.URLSet{
				entity.RoleBlog:   {"https://alice.dev"},
				entity.RoleFeed:   {"https://alice.dev/feed.xml"},
				entity.RoleSocial: {"https://www.linkedin.com/in/alice", "https://x.com/alice_writes"},
			},
		},
		{
			Name: "Bob Builder",
			Kind: entity.KindPerson,
			URLs: entity.URLSet{
				entity.RoleBlog:       {"https://bob.dev"},
				entity.RoleNewsletter: {"https://bob.substack.com"},
			},
		},
		{
			Name: "Carol NoLinks",
			Kind: entity.KindPerson,
			URLs: entity.URLSet{},
		},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_CompanyStyle(t *testing.T) {
	records, err := Parse(fixtures.CompanyRegistry, StyleCompany)
	require.NoError(t, err)

	want := []entity.EntityRecord{
		{
			Name:     "Example AI",
			Kind:     entity.KindCompany,
			Category: "Labs",
			URLs: entity.URLSet{
				entity.RoleBlog:      {"https://example.ai/news"},
				entity.RoleFeed:      {"https://example.ai/news/rss.xml"},
				entity.RoleChangelog: {"https://docs.example.ai/changelog"},
			},
		},
		{
			Name:     "Tooling Co",
			Kind:     entity.KindCompany,
			Category: "Developer tools",
			URLs: entity.URLSet{
				entity.RoleBlog:      {"https://tooling.dev/engineering"},
				entity.RoleChangelog: {"https://tooling.dev/release-notes"},
			},
		},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_SingleSectionAtDocumentStart(t *testing.T) {
	records, err := Parse("## Alice\nRSS Feed: https://alice.dev/feed.xml\n", StyleAuto)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Alice", records[0].Name)
	assert.Equal(t, []string{"https://alice.dev/feed.xml"}, records[0].URLs[entity.RoleFeed])
}

func TestParse_PreambleAndDuplicates(t *testing.T) {
	doc := "Intro https://preamble.dev/blog\n\n## Dup\nBlog: https://one.dev\n\n## Dup\nBlog: https://two.dev\n\n##\n"

	records, err := Parse(doc, StylePerson)
	require.NoError(t, err)
	require.Len(t, records, 3, "one record per section, duplicates and empty names pass through")

	assert.Equal(t, "Dup", records[0].Name)
	assert.Equal(t, "Dup", records[1].Name)
	assert.Equal(t, "", records[2].Name)
	assert.Equal(t, "https://one.dev", records[0].URLs.First(entity.RoleBlog))
	assert.Equal(t, "https://two.dev", records[1].URLs.First(entity.RoleBlog))
}

func TestParse_PersonFirstValueWins(t *testing.T) {
	doc := "## Alice\nBlog: https://first.dev\nBlog: https://second.dev\nRSS: https://first.dev/rss\n"

	records, err := Parse(doc, StylePerson)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"https://first.dev"}, records[0].URLs[entity.RoleBlog])
	assert.Equal(t, []string{"https://first.dev/rss"}, records[0].URLs[entity.RoleFeed])
}

func TestParse_LabelLineVariants(t *testing.T) {
	tests := []struct {
		name string
		line string
		role entity.Role
		want string
	}{
		{"lowercase label", "blog: https://a.dev", entity.RoleBlog, "https://a.dev"},
		{"markdown link", "- **Blog:** [a.dev](https://a.dev/)", entity.RoleBlog, "https://a.dev/"},
		{"trailing punctuation", "RSS Feed: https://a.dev/feed.xml.", entity.RoleFeed, "https://a.dev/feed.xml"},
		{"trailing comma", "Newsletter: https://a.substack.com,", entity.RoleNewsletter, "https://a.substack.com"},
		{"url before label", "https://a.dev/rss (RSS:)", entity.RoleFeed, "https://a.dev/rss"},
		{"twitter handle", "Twitter: @someone", entity.RoleSocial, "https://x.com/someone"},
		{"twitter url", "Twitter/X: https://x.com/someone", entity.RoleSocial, "https://x.com/someone"},
		{"email is not a handle", "Twitter: mail me at me@example.com", entity.RoleSocial, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Parse("## A\n"+tt.line+"\n", StylePerson)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, tt.want, records[0].URLs.First(tt.role))
		})
	}
}

func TestParse_PrimarySourcesBlockEnds(t *testing.T) {
	t.Run("blank line before any URL keeps the block open", func(t *testing.T) {
		doc := "## Co\n**Primary sources:**\n\n- https://co.dev/blog\n\n- https://co.dev/late\n"
		records, err := Parse(doc, StyleCompany)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, []string{"https://co.dev/blog"}, records[0].URLs[entity.RoleBlog])
	})

	t.Run("horizontal rule ends the block", func(t *testing.T) {
		doc := "## Co\n**Primary sources:**\n- https://co.dev/news\n---\n- https://co.dev/after\n"
		records, err := Parse(doc, StyleCompany)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, []string{"https://co.dev/news"}, records[0].URLs[entity.RoleBlog])
	})

	t.Run("category line inside the block is kept", func(t *testing.T) {
		doc := "## Co\n**Primary sources:**\n- https://co.dev/blog\n**Category:** Infrastructure\n- https://co.dev/after\n"
		records, err := Parse(doc, StyleCompany)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Infrastructure", records[0].Category)
		assert.Equal(t, []string{"https://co.dev/blog"}, records[0].URLs[entity.RoleBlog])
	})
}

func TestParse_AutoStyle(t *testing.T) {
	doc, err := ParseDocument(fixtures.CompanyRegistry, StyleAuto)
	require.NoError(t, err)
	assert.Equal(t, StyleCompany, doc.Style)

	doc, err = ParseDocument(fixtures.PeopleRegistry, StyleAuto)
	require.NoError(t, err)
	assert.Equal(t, StylePerson, doc.Style)
}

func TestParseDocument_FrontMatter(t *testing.T) {
	text := "---\ntitle: Tracked companies\nupdated: 2026-01-05\nstyle: person\n---\n## Alice\nBlog: https://alice.dev\n"

	doc, err := ParseDocument(text, StyleAuto)
	require.NoError(t, err)
	assert.Equal(t, "Tracked companies", doc.Metadata.Title)
	assert.Equal(t, "2026-01-05", doc.Metadata.Updated)
	assert.Equal(t, StylePerson, doc.Style)
	require.Len(t, doc.Records, 1)
	assert.Equal(t, "https://alice.dev", doc.Records[0].URLs.First(entity.RoleBlog))
}

func TestParseDocument_LeadingRuleIsNotFrontMatter(t *testing.T) {
	doc, err := ParseDocument("---\n## Alice\nBlog: https://alice.dev\n", StylePerson)
	require.NoError(t, err)
	require.Len(t, doc.Records, 1)
	assert.Equal(t, Metadata{}, doc.Metadata)
}

func TestParseDocument_BadFrontMatter(t *testing.T) {
	_, err := ParseDocument("---\ntitle: [unclosed\n---\n## Alice\n", StyleAuto)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.md")
	require.NoError(t, os.WriteFile(path, []byte(fixtures.PeopleRegistry), 0o600))

	doc, err := LoadFile(path, StyleAuto)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path)
	assert.Len(t, doc.Records, 3)

	_, err = LoadFile(filepath.Join(dir, "missing.md"), StyleAuto)
	assert.Error(t, err)
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    Style
		wantErr bool
	}{
		{"", StyleAuto, false},
		{"auto", StyleAuto, false},
		{"Person", StylePerson, false},
		{"companies", StyleCompany, false},
		{"teams", StyleAuto, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStyle(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
