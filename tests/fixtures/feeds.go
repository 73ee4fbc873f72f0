// Package fixtures provides reusable test data for package tests: RSS and
// Atom documents, blog pages and registry documents.
package fixtures

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// Item describes one generated feed item.
type Item struct {
	Title       string
	Link        string
	Description string
	Content     string
	// Published is rendered as pubDate / <published>; zero means omitted.
	Published time.Time
	// Updated is rendered as <updated> (Atom) or dc:date (RSS); zero means omitted.
	Updated time.Time
}

// ItemsAged returns one item per age, published age before now, with links
// under base. Titles are "Post 1", "Post 2", ...
//
// Example:
//
//	items := ItemsAged(time.Now(), "https://alice.dev", 2*24*time.Hour, 20*24*time.Hour)
func ItemsAged(now time.Time, base string, ages ...time.Duration) []Item {
	items := make([]Item, 0, len(ages))
	for i, age := range ages {
		n := i + 1
		items = append(items, Item{
			Title:       fmt.Sprintf("Post %d", n),
			Link:        fmt.Sprintf("%s/posts/%d", strings.TrimRight(base, "/"), n),
			Description: fmt.Sprintf("Summary of post %d", n),
			Published:   now.Add(-age),
		})
	}
	return items
}

// RSS renders items as an RSS 2.0 document.
func RSS(title string, items []Item) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:content="http://purl.org/rss/1.0/modules/content/">` + "\n")
	b.WriteString("<channel>\n")
	fmt.Fprintf(&b, "<title>%s</title>\n<link>https://example.com</link>\n<description>fixture</description>\n", html.EscapeString(title))
	for _, it := range items {
		b.WriteString("<item>\n")
		if it.Title != "" {
			fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(it.Title))
		}
		if it.Link != "" {
			fmt.Fprintf(&b, "<link>%s</link>\n", html.EscapeString(it.Link))
		}
		if it.Description != "" {
			fmt.Fprintf(&b, "<description>%s</description>\n", html.EscapeString(it.Description))
		}
		if it.Content != "" {
			fmt.Fprintf(&b, "<content:encoded>%s</content:encoded>\n", html.EscapeString(it.Content))
		}
		if !it.Published.IsZero() {
			fmt.Fprintf(&b, "<pubDate>%s</pubDate>\n", it.Published.UTC().Format(time.RFC1123Z))
		}
		if !it.Updated.IsZero() {
			fmt.Fprintf(&b, "<dc:date>%s</dc:date>\n", it.Updated.UTC().Format(time.RFC3339))
		}
		b.WriteString("</item>\n")
	}
	b.WriteString("</channel>\n</rss>\n")
	return b.String()
}

// Atom renders items as an Atom 1.0 document.
func Atom(title string, items []Item) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom">` + "\n")
	fmt.Fprintf(&b, "<title>%s</title>\n<id>urn:fixture</id>\n", html.EscapeString(title))
	for _, it := range items {
		b.WriteString("<entry>\n")
		if it.Title != "" {
			fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(it.Title))
		}
		if it.Link != "" {
			fmt.Fprintf(&b, `<link href="%s"/>`+"\n", html.EscapeString(it.Link))
		}
		if it.Description != "" {
			fmt.Fprintf(&b, "<summary>%s</summary>\n", html.EscapeString(it.Description))
		}
		if it.Content != "" {
			fmt.Fprintf(&b, `<content type="html">%s</content>`+"\n", html.EscapeString(it.Content))
		}
		if !it.Published.IsZero() {
			fmt.Fprintf(&b, "<published>%s</published>\n", it.Published.UTC().Format(time.RFC3339))
		}
		if !it.Updated.IsZero() {
			fmt.Fprintf(&b, "<updated>%s</updated>\n", it.Updated.UTC().Format(time.RFC3339))
		}
		b.WriteString("</entry>\n")
	}
	b.WriteString("</feed>\n")
	return b.String()
}

// BlogPage returns an HTML page. A non-empty feedHref is advertised with a
// <link rel="alternate" type="application/rss+xml"> tag in the head.
func BlogPage(title, feedHref string) string {
	head := fmt.Sprintf("<title>%s</title>", html.EscapeString(title))
	if feedHref != "" {
		head += fmt.Sprintf(`<link rel="alternate" type="application/rss+xml" title="RSS" href="%s">`, html.EscapeString(feedHref))
	}
	return "<!DOCTYPE html><html><head>" + head + "</head><body><h1>" +
		html.EscapeString(title) + "</h1><p>Welcome.</p></body></html>"
}

// BlogPageWithAnchor returns an HTML page whose only feed hint is an <a> in the body.
func BlogPageWithAnchor(title, href string) string {
	return "<!DOCTYPE html><html><head><title>" + html.EscapeString(title) +
		`</title></head><body><a href="/about">About</a> <a href="` + html.EscapeString(href) +
		`">Subscribe</a></body></html>`
}
