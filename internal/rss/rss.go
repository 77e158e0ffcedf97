package rss

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/deusflow/krnews/internal/news"
)

// DescriptionMaxRunes bounds the feed description used as a fallback summary.
const DescriptionMaxRunes = 200

// Reader downloads and parses feeds.
type Reader struct {
	parser *gofeed.Parser
}

// NewReader creates a Reader whose requests time out after timeout.
func NewReader(timeout time.Duration, userAgent string) *Reader {
	fp := gofeed.NewParser()
	fp.Client = &http.Client{Timeout: timeout}
	if userAgent != "" {
		fp.UserAgent = userAgent
	}
	return &Reader{parser: fp}
}

// Read fetches and parses the feed at url.
func (r *Reader) Read(ctx context.Context, url string) (*gofeed.Feed, error) {
	feed, err := r.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}
	slog.Info("feed loaded", "url", url, "items", len(feed.Items))
	return feed, nil
}

// Parse parses an already downloaded feed document.
func Parse(raw string) (*gofeed.Feed, error) {
	feed, err := gofeed.NewParser().ParseString(raw)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// Stubs converts the first feed items into article stubs, deduplicated by
// link and capped at max.
func Stubs(feed *gofeed.Feed, max int) []news.Stub {
	if feed == nil {
		return nil
	}
	stubs := make([]news.Stub, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		stubs = append(stubs, news.Stub{
			Title:       strings.TrimSpace(item.Title),
			URL:         strings.TrimSpace(item.Link),
			PublishedAt: strings.TrimSpace(item.Published),
			Description: CleanDescription(item.Description),
		})
	}
	return news.Dedup(stubs, max)
}

// CleanDescription strips markup from a feed description and shortens it to
// DescriptionMaxRunes, marking the cut with "...".
func CleanDescription(desc string) string {
	text := desc
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(desc)); err == nil {
		text = doc.Text()
	}
	text = news.NormalizeWhitespace(text)

	if utf8.RuneCountInString(text) > DescriptionMaxRunes {
		return string([]rune(text)[:DescriptionMaxRunes]) + "..."
	}
	return text
}
