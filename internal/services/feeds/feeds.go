// Package feeds gathers news items from configured RSS and Atom sources,
// filtered to entries published since the last successful run.
package feeds

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"showrunner/internal/config"
	"showrunner/internal/episode"
	"showrunner/internal/logging"
	"showrunner/internal/textutil"
)

const maxFeedBody = 4 << 20

// Fetcher downloads and parses the configured news sources.
type Fetcher struct {
	sources []string
	client  *http.Client
	logger  *slog.Logger
}

// NewFetcher constructs a Fetcher from configuration.
func NewFetcher(cfg config.Feeds, logger *slog.Logger) *Fetcher {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		sources: append([]string(nil), cfg.Sources...),
		client:  &http.Client{Timeout: timeout},
		logger:  logging.NewComponentLogger(logger, "feeds"),
	}
}

// WithHTTPClient overrides the HTTP client (used in tests).
func (f *Fetcher) WithHTTPClient(client *http.Client) *Fetcher {
	if client != nil {
		f.client = client
	}
	return f
}

// Fetch returns items published after since, newest first. A source that
// fails to download or parse is logged and skipped; Fetch fails only when
// every source fails.
func (f *Fetcher) Fetch(ctx context.Context, since time.Time) ([]episode.NewsItem, error) {
	if len(f.sources) == 0 {
		return nil, errors.New("feeds: no sources configured")
	}

	var items []episode.NewsItem
	var failures []error
	for _, source := range f.sources {
		fetched, err := f.fetchOne(ctx, source, since)
		if err != nil {
			f.logger.Warn("feed source skipped",
				logging.String(logging.FieldEventType, "feed_fetch_failed"),
				logging.String("source", source),
				logging.Error(err),
			)
			failures = append(failures, fmt.Errorf("%s: %w", source, err))
			continue
		}
		items = append(items, fetched...)
	}

	if len(failures) == len(f.sources) {
		return nil, fmt.Errorf("feeds: all sources failed: %w", errors.Join(failures...))
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})
	return dedupe(items), nil
}

// duplicateThreshold is the headline cosine similarity above which two items
// are treated as the same story syndicated by different sources.
const duplicateThreshold = 0.85

// dedupe drops items whose headline near-duplicates an earlier (newer) item.
func dedupe(items []episode.NewsItem) []episode.NewsItem {
	if len(items) < 2 {
		return items
	}
	kept := make([]episode.NewsItem, 0, len(items))
	fingerprints := make([]*textutil.Fingerprint, 0, len(items))
	for _, item := range items {
		fp := textutil.NewFingerprint(item.Title)
		duplicate := false
		for _, seen := range fingerprints {
			if fp.Similarity(seen) >= duplicateThreshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		kept = append(kept, item)
		fingerprints = append(fingerprints, fp)
	}
	return kept
}

func (f *Fetcher) fetchOne(ctx context.Context, source string, since time.Time) ([]episode.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Showrunner/0.1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return parseFeed(body, source, since)
}

type rssDocument struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

type atomDocument struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string `xml:"title"`
	Summary string `xml:"summary"`
	Updated string `xml:"updated"`
	Links   []struct {
		Rel  string `xml:"rel,attr"`
		Href string `xml:"href,attr"`
	} `xml:"link"`
}

func parseFeed(body []byte, source string, since time.Time) ([]episode.NewsItem, error) {
	// Match on the document element so a valid feed with zero entries reads
	// as quiet, not as a parse failure.
	var rss rssDocument
	if err := xml.Unmarshal(body, &rss); err == nil && rss.XMLName.Local == "rss" {
		return collectRSS(rss, source, since), nil
	}

	var atom atomDocument
	if err := xml.Unmarshal(body, &atom); err == nil && atom.XMLName.Local == "feed" {
		return collectAtom(atom, source, since), nil
	}

	return nil, errors.New("unrecognized feed format")
}

func collectRSS(doc rssDocument, source string, since time.Time) []episode.NewsItem {
	channel := strings.TrimSpace(doc.Channel.Title)
	if channel == "" {
		channel = source
	}
	var items []episode.NewsItem
	for _, item := range doc.Channel.Items {
		published, ok := parseTime(item.PubDate)
		if !ok || !published.After(since) {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		items = append(items, episode.NewsItem{
			Title:     title,
			Link:      strings.TrimSpace(item.Link),
			Source:    channel,
			Summary:   strings.TrimSpace(item.Description),
			Published: published,
		})
	}
	return items
}

func collectAtom(doc atomDocument, source string, since time.Time) []episode.NewsItem {
	channel := strings.TrimSpace(doc.Title)
	if channel == "" {
		channel = source
	}
	var items []episode.NewsItem
	for _, entry := range doc.Entries {
		published, ok := parseTime(entry.Updated)
		if !ok || !published.After(since) {
			continue
		}
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}
		link := ""
		for _, l := range entry.Links {
			if l.Rel == "" || l.Rel == "alternate" {
				link = l.Href
				break
			}
		}
		items = append(items, episode.NewsItem{
			Title:     title,
			Link:      strings.TrimSpace(link),
			Source:    channel,
			Summary:   strings.TrimSpace(entry.Summary),
			Published: published,
		})
	}
	return items
}

var timeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02T15:04:05Z",
}

func parseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
