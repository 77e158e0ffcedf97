// Package summarizer builds short extractive summaries of article pages:
// fetch, locate the body, split into sentences, keep the first few that
// pass the sentence filter.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/krnews/internal/news"
	"github.com/deusflow/krnews/internal/sentence"
)

// DefaultMaxSentences caps the number of sentences in a summary.
const DefaultMaxSentences = 3

// DefaultTimeout bounds a single article fetch.
const DefaultTimeout = 10 * time.Second

// ErrNoBody is returned when no strategy finds the article body.
var ErrNoBody = errors.New("article body not found")

// FetchError wraps a failure of the page fetch collaborator.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FetchFunc returns the raw HTML of the page at url.
type FetchFunc func(ctx context.Context, url string) (string, error)

// Summarizer turns article URLs into summaries. It holds no state between
// calls.
type Summarizer struct {
	fetch        FetchFunc
	strategies   []Strategy
	filter       sentence.Filter
	terminator   string
	maxSentences int
	timeout      time.Duration
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithStrategies replaces the body location strategies. Order is priority.
func WithStrategies(strategies ...Strategy) Option {
	return func(s *Summarizer) {
		s.strategies = strategies
	}
}

// WithFilter sets the sentence filter.
func WithFilter(f sentence.Filter) Option {
	return func(s *Summarizer) {
		s.filter = f
	}
}

// WithTerminator sets the sentence terminator.
func WithTerminator(t string) Option {
	return func(s *Summarizer) {
		s.terminator = t
	}
}

// WithMaxSentences sets the summary length.
func WithMaxSentences(n int) Option {
	return func(s *Summarizer) {
		if n > 0 {
			s.maxSentences = n
		}
	}
}

// WithTimeout sets the per-article fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Summarizer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a Summarizer that fetches pages with fetch.
func New(fetch FetchFunc, opts ...Option) *Summarizer {
	s := &Summarizer{
		fetch:        fetch,
		strategies:   SelectorStrategies(DefaultBodySelectors),
		filter:       sentence.DefaultFilter(),
		terminator:   sentence.DefaultTerminator,
		maxSentences: DefaultMaxSentences,
		timeout:      DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize never fails: fetch and parse errors come back as OK=false with
// no sentences.
func (s *Summarizer) Summarize(ctx context.Context, url string) news.Summary {
	sentences, err := s.Extract(ctx, url)
	if err != nil {
		slog.Warn("summary unavailable", "url", url, "error", err)
		return news.Summary{SourceURL: url}
	}
	return news.Summary{
		SourceURL: url,
		Sentences: sentences,
		OK:        len(sentences) > 0,
	}
}

// Extract is Summarize with the failure kept: a *FetchError when the page
// could not be loaded, ErrNoBody when no strategy matched. A panic while
// fetching or extracting comes back as an error.
func (s *Summarizer) Extract(ctx context.Context, url string) (sentences []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			sentences, err = nil, fmt.Errorf("summarize %s: panic: %v", url, r)
		}
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.fetch(fetchCtx, url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	body, strategy := s.locate(doc)
	if body == "" {
		return nil, ErrNoBody
	}
	slog.Debug("article body located", "url", url, "strategy", strategy, "runes", len([]rune(body)))

	return sentence.Select(body, s.terminator, s.filter, s.maxSentences), nil
}

func (s *Summarizer) locate(doc *goquery.Document) (string, string) {
	for _, st := range s.strategies {
		if text := tryLocate(st, doc); text != "" {
			return text, st.Name
		}
	}
	return "", ""
}

// tryLocate runs one strategy; a panic counts as no match.
func tryLocate(st Strategy, doc *goquery.Document) (text string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("content strategy panicked", "strategy", st.Name, "panic", r)
			text = ""
		}
	}()
	return st.Locate(doc)
}
