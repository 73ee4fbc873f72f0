package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"feed-audit/internal/observability/metrics"
	"feed-audit/internal/usecase/audit"

	"github.com/PuerkitoBio/goquery"
)

// probePaths are the conventional feed locations tried when a page does not
// advertise its feed.
var probePaths = []string{
	"/feed", "/feed.xml", "/rss", "/rss.xml", "/atom.xml", "/index.xml",
	"/blog/feed", "/blog/rss", "/blog/atom.xml",
	"/feeds/posts/default",
	"/feed/rss", "/feed/atom",
}

const (
	// DefaultPageTimeout bounds the fetch of the page being inspected.
	DefaultPageTimeout = 10 * time.Second
	// DefaultProbeTimeout bounds each probe request.
	DefaultProbeTimeout = 5 * time.Second

	signatureLength = 500
)

// Discovery methods, also used as metric labels.
const (
	MethodLink   = "link"
	MethodAnchor = "anchor"
	MethodProbe  = "probe"
)

// Discoverer implements audit.FeedResolver.
//
// Resolution order:
//  1. <link> elements advertising RSS or Atom (RSS types preferred)
//  2. the first <a href> mentioning feed, rss or atom
//  3. probes of probePaths under the page path, then under the site root
type Discoverer struct {
	client       *HTTPClient
	pageTimeout  time.Duration
	probeTimeout time.Duration
}

// NewDiscoverer creates a Discoverer. Zero timeouts take the defaults.
func NewDiscoverer(client *HTTPClient, pageTimeout, probeTimeout time.Duration) *Discoverer {
	if pageTimeout <= 0 {
		pageTimeout = DefaultPageTimeout
	}
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	return &Discoverer{client: client, pageTimeout: pageTimeout, probeTimeout: probeTimeout}
}

// Resolve returns the feed for pageURL. A page that cannot be reached at all
// yields an audit.ErrSourceUnreachable error; a page answering with an HTTP
// error is still probed.
func (d *Discoverer) Resolve(ctx context.Context, pageURL string) (audit.Resolution, error) {
	page, err := url.Parse(pageURL)
	if err != nil || page.Host == "" {
		metrics.RecordDiscovery("error")
		return audit.Resolution{}, fmt.Errorf("%w: invalid URL %q", audit.ErrSourceUnreachable, pageURL)
	}

	resp, err := d.client.Get(ctx, pageURL, d.pageTimeout)
	if err != nil {
		metrics.RecordDiscovery("error")
		return audit.Resolution{}, err
	}

	if resp.OK() {
		if href, method := scanPage(resp.Body); href != "" {
			feedURL := resolveHref(page, href)
			metrics.RecordDiscovery(method)
			slog.Debug("feed advertised by page",
				slog.String("page", pageURL),
				slog.String("feed", feedURL),
				slog.String("method", method))
			return audit.Resolution{FeedURL: feedURL, Method: method}, nil
		}
	}

	for _, candidate := range probeCandidates(page) {
		if ctx.Err() != nil {
			return audit.Resolution{}, ctx.Err()
		}
		if d.probe(ctx, candidate) {
			metrics.RecordDiscovery(MethodProbe)
			return audit.Resolution{FeedURL: candidate, Method: MethodProbe}, nil
		}
	}

	metrics.RecordDiscovery("none")
	return audit.Resolution{}, audit.ErrNoFeedDiscovered
}

// probe checks candidate with HEAD and falls back to GET when HEAD is
// inconclusive. Probe failures are never reported.
func (d *Discoverer) probe(ctx context.Context, candidate string) bool {
	head, err := d.client.Head(ctx, candidate, d.probeTimeout)
	if err == nil && head.StatusCode == 200 && isFeedContentType(head.Header.Get("Content-Type")) {
		return true
	}

	get, err := d.client.Get(ctx, candidate, d.probeTimeout)
	if err != nil {
		slog.Debug("probe failed", slog.String("url", candidate), slog.Any("error", err))
		return false
	}
	if get.StatusCode != 200 {
		return false
	}
	return isFeedContentType(get.Header.Get("Content-Type")) || hasFeedSignature(get.Body)
}

// scanPage returns the advertised feed href of an HTML page and the method
// that found it.
func scanPage(body []byte) (string, string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", ""
	}

	best, bestRank := "", len(linkTypeRanks)
	doc.Find("link[type]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		rank := linkTypeRank(s.AttrOr("type", ""))
		if rank < bestRank {
			best, bestRank = href, rank
		}
	})
	if best != "" {
		return best, MethodLink
	}

	var anchor string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		lower := strings.ToLower(href)
		if strings.Contains(lower, "feed") || strings.Contains(lower, "rss") || strings.Contains(lower, "atom") {
			anchor = href
			return false
		}
		return true
	})
	if anchor != "" {
		return anchor, MethodAnchor
	}
	return "", ""
}

var linkTypeRanks = []func(string) bool{
	func(t string) bool { return strings.Contains(t, "rss") },
	func(t string) bool { return strings.Contains(t, "atom") },
	func(t string) bool { return t == "text/xml" || t == "application/xml" },
}

func linkTypeRank(typ string) int {
	typ = strings.ToLower(strings.TrimSpace(typ))
	for i, match := range linkTypeRanks {
		if match(typ) {
			return i
		}
	}
	return len(linkTypeRanks)
}

// resolveHref makes href absolute against the page's scheme and host.
func resolveHref(page *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return ref.String()
	}
	root := &url.URL{Scheme: page.Scheme, Host: page.Host, Path: "/"}
	return root.ResolveReference(ref).String()
}

// probeCandidates lists the probe URLs for page: under its path first when
// it has one, then under the site root.
func probeCandidates(page *url.URL) []string {
	root := page.Scheme + "://" + page.Host
	bases := []string{root}
	if p := strings.TrimRight(page.Path, "/"); p != "" {
		bases = []string{root + p, root}
	}

	candidates := make([]string, 0, len(bases)*len(probePaths))
	seen := make(map[string]bool)
	for _, base := range bases {
		for _, p := range probePaths {
			c := base + p
			if !seen[c] {
				seen[c] = true
				candidates = append(candidates, c)
			}
		}
	}
	return candidates
}

func isFeedContentType(ct string) bool {
	ct = strings.ToLower(ct)
	if strings.Contains(ct, "html") {
		return false
	}
	return strings.Contains(ct, "xml") || strings.Contains(ct, "rss") || strings.Contains(ct, "atom")
}

// hasFeedSignature inspects the first bytes of body for an XML feed root.
func hasFeedSignature(body []byte) bool {
	head := body
	if len(head) > signatureLength {
		head = head[:signatureLength]
	}
	lower := strings.ToLower(string(head))
	if strings.Contains(lower, "<html") {
		return false
	}
	for _, sig := range []string{"<rss", "<feed", "<rdf:rdf", "<?xml"} {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
