package news

import (
	"strings"
)

// Stub is an article found on a listing page or in a feed, before it is
// summarized.
type Stub struct {
	Title       string
	URL         string
	PublishedAt string // empty when the source does not provide it

	// Description is the short text the feed ships with the item, used when
	// the article page cannot be summarized.
	Description string
}

// Summary is the extractive summary of one article page.
type Summary struct {
	SourceURL string
	Sentences []string
	OK        bool
}

// Item pairs a stub with its summary, in listing order.
type Item struct {
	Stub    Stub
	Summary Summary
}

// Dedup drops stubs whose URL was already seen or whose title is empty,
// keeps first-seen order and stops after max stubs (max <= 0 means no cap).
func Dedup(stubs []Stub, max int) []Stub {
	seen := make(map[string]bool, len(stubs))
	out := make([]Stub, 0, len(stubs))
	for _, s := range stubs {
		if max > 0 && len(out) >= max {
			break
		}
		if s.URL == "" || strings.TrimSpace(s.Title) == "" || seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		out = append(out, s)
	}
	return out
}

// NormalizeWhitespace collapses runs of whitespace into single spaces.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
