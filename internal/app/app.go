// Package app runs one scrape-summarize-deliver cycle over the configured
// sources.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/deusflow/krnews/internal/config"
	"github.com/deusflow/krnews/internal/discord"
	"github.com/deusflow/krnews/internal/links"
	"github.com/deusflow/krnews/internal/metrics"
	"github.com/deusflow/krnews/internal/news"
	"github.com/deusflow/krnews/internal/ratelimit"
	"github.com/deusflow/krnews/internal/rss"
)

// PageLoader returns the HTML of a listing page.
type PageLoader interface {
	Load(ctx context.Context, url string) (string, error)
}

// FeedReader fetches and parses a feed.
type FeedReader interface {
	Read(ctx context.Context, url string) (*gofeed.Feed, error)
}

// Summarizer turns an article URL into a summary. It never fails; a failed
// attempt comes back with OK false.
type Summarizer interface {
	Summarize(ctx context.Context, url string) news.Summary
}

// Pipeline wires one source to its collaborators. Listing is used by
// section sources, Feeds by feed sources.
type Pipeline struct {
	Source     config.Source
	Listing    PageLoader
	Feeds      FeedReader
	Summarizer Summarizer
}

// Digest is what one source produced in a run.
type Digest struct {
	Header   *discord.Header
	Articles []discord.Item
}

// DefaultListingTimeout bounds loading a listing page or a feed.
const DefaultListingTimeout = 30 * time.Second

// Options tunes a run.
type Options struct {
	FetchPause     time.Duration
	SendPause      time.Duration
	ListingTimeout time.Duration // per listing page or feed load
	Location       *time.Location
	Metrics        *metrics.Metrics
	Now            func() time.Time
}

// App delivers digests to one webhook.
type App struct {
	sender discord.Sender
	opts   Options
}

// New creates an app posting through sender.
func New(sender discord.Sender, opts Options) *App {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Global
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ListingTimeout <= 0 {
		opts.ListingTimeout = DefaultListingTimeout
	}
	return &App{sender: sender, opts: opts}
}

// Run processes the pipelines one after another. A failing source never
// stops the others; only cancellation of ctx ends the run early.
func (a *App) Run(ctx context.Context, pipelines []Pipeline) error {
	runID := uuid.NewString()
	log := slog.With("run_id", runID)
	start := time.Now()
	log.Info("run started", "sources", len(pipelines))

	var failed int
	for _, p := range pipelines {
		if err := ctx.Err(); err != nil {
			log.Warn("run cancelled", "error", err)
			break
		}
		failed += a.runSource(ctx, log.With("source", p.Source.Name), p)
	}

	elapsed := time.Since(start)
	a.opts.Metrics.RecordProcessingTime(elapsed)
	a.opts.Metrics.SetLastRun(runID)
	if failed > 0 {
		a.opts.Metrics.SetError(fmt.Sprintf("run %s: %d batches failed", runID, failed))
	}
	log.Info("run finished", "duration", elapsed.Round(time.Millisecond), "failed_batches", failed)
	return ctx.Err()
}

// runSource collects and delivers one digest and returns the number of
// batches that could not be sent.
func (a *App) runSource(ctx context.Context, log *slog.Logger, p Pipeline) int {
	d := a.Collect(ctx, log, p)
	if len(d.Articles) == 0 {
		log.Info("no articles to send")
		a.opts.Metrics.RecordDelivery(p.Source.Name, 0, 0, 0)
		return 0
	}

	batches := discord.Partition(d.Articles, d.Header, discord.MaxEmbedsPerMessage)
	log.Info("delivering digest", "articles", len(d.Articles), "batches", len(batches))

	pacer := ratelimit.NewPacer(p.Source.Name+"-send", a.opts.SendPause)
	rep := discord.Deliver(ctx, a.sender, pacer, p.Source.Username, batches)
	a.opts.Metrics.RecordDelivery(p.Source.Name, len(d.Articles), rep.Sent, rep.Failed)
	return rep.Failed
}

// Collect builds the digest of one source without sending it.
func (a *App) Collect(ctx context.Context, log *slog.Logger, p Pipeline) Digest {
	now := a.opts.Now().In(a.opts.Location)
	switch p.Source.Kind {
	case config.KindSection:
		return a.collectSection(ctx, log, p, now)
	case config.KindRSS:
		return a.collectFeed(ctx, log, p, now)
	default:
		log.Error("unknown source kind", "kind", p.Source.Kind)
		return Digest{}
	}
}

func (a *App) collectSection(ctx context.Context, log *slog.Logger, p Pipeline, now time.Time) Digest {
	src := p.Source
	header := &discord.Header{
		Title:     src.HeaderTitle,
		Text:      headerText(src.HeaderText, now),
		Color:     src.HeaderColor,
		LinkedURL: src.URL,
	}

	var stubs []news.Stub
	page, err := a.loadListing(ctx, p.Listing, src.URL)
	if err != nil {
		log.Warn("failed to load listing page", "url", src.URL, "error", err)
	} else if doc, err := goquery.NewDocumentFromReader(strings.NewReader(page)); err != nil {
		log.Warn("failed to parse listing page", "url", src.URL, "error", err)
	} else {
		if video := links.FindVideoLink(doc); video != "" {
			header.Text += "\n📺 [라이브 방송 보러가기](" + video + ")"
		}
		stubs = links.Extract(doc, links.Options{
			SectionHint:   src.SectionHint,
			ArticleMarker: src.ArticleMarker,
			Origin:        src.Origin,
		}, src.MaxLinks)
	}
	log.Info("links extracted", "count", len(stubs))

	items := a.summarize(ctx, log, p, stubs)
	articles := make([]discord.Item, 0, len(items))
	for i, it := range items {
		body := src.Placeholder
		if it.Summary.OK {
			body = discord.Bullets(it.Summary.Sentences)
		}
		articles = append(articles, &discord.Article{
			Index: i + 1,
			Title: it.Stub.Title,
			URL:   it.Stub.URL,
			Body:  body,
			Color: src.ArticleColor,
		})
	}
	return Digest{Header: header, Articles: articles}
}

func (a *App) collectFeed(ctx context.Context, log *slog.Logger, p Pipeline, now time.Time) Digest {
	src := p.Source
	header := &discord.Header{
		Title: src.HeaderTitle,
		Text:  headerText(src.HeaderText, now),
		Color: src.HeaderColor,
	}

	var stubs []news.Stub
	feed, err := a.readFeed(ctx, p.Feeds, src.URL)
	if err != nil {
		log.Warn("failed to read feed", "url", src.URL, "error", err)
	} else {
		stubs = rss.Stubs(feed, src.MaxLinks)
	}
	log.Info("feed items collected", "count", len(stubs))

	items := a.summarize(ctx, log, p, stubs)
	articles := make([]discord.Item, 0, len(items))
	for _, it := range items {
		var body string
		switch {
		case it.Summary.OK:
			body = discord.Bullets(it.Summary.Sentences)
		case it.Stub.Description != "":
			body = it.Stub.Description
		default:
			body = src.Placeholder
		}
		articles = append(articles, &discord.Article{
			Title:  it.Stub.Title,
			URL:    it.Stub.URL,
			Body:   body,
			Color:  src.ArticleColor,
			Footer: it.Stub.PublishedAt,
		})
	}
	return Digest{Header: header, Articles: articles}
}

func (a *App) loadListing(ctx context.Context, l PageLoader, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.ListingTimeout)
	defer cancel()
	return l.Load(ctx, url)
}

func (a *App) readFeed(ctx context.Context, f FeedReader, url string) (*gofeed.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.ListingTimeout)
	defer cancel()
	return f.Read(ctx, url)
}

// headerText fills the {date} and {time} placeholders of a header template.
func headerText(tmpl string, now time.Time) string {
	if tmpl == "" {
		tmpl = "{date}"
	}
	return strings.NewReplacer(
		"{date}", now.Format("2006-01-02"),
		"{time}", now.Format("15:04"),
	).Replace(tmpl)
}

// summarize visits the stubs in order, pausing between article fetches.
// Cancellation keeps the items summarized so far.
func (a *App) summarize(ctx context.Context, log *slog.Logger, p Pipeline, stubs []news.Stub) []news.Item {
	pacer := ratelimit.NewPacer(p.Source.Name+"-fetch", a.opts.FetchPause)
	items := make([]news.Item, 0, len(stubs))
	for _, s := range stubs {
		if err := pacer.Wait(ctx); err != nil {
			log.Warn("summarizing interrupted", "remaining", len(stubs)-len(items), "error", err)
			break
		}
		sum := p.Summarizer.Summarize(ctx, s.URL)
		a.opts.Metrics.RecordSummary(sum.OK)
		log.Debug("article visited", "url", s.URL, "ok", sum.OK, "sentences", len(sum.Sentences))
		items = append(items, news.Item{Stub: s, Summary: sum})
	}
	return items
}
