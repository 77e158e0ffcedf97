package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/deusflow/krnews/internal/app"
	"github.com/deusflow/krnews/internal/config"
	"github.com/deusflow/krnews/internal/discord"
	"github.com/deusflow/krnews/internal/logger"
	"github.com/deusflow/krnews/internal/metrics"
	"github.com/deusflow/krnews/internal/monitor"
	"github.com/deusflow/krnews/internal/renderer"
	"github.com/deusflow/krnews/internal/rss"
	"github.com/deusflow/krnews/internal/scheduler"
	"github.com/deusflow/krnews/internal/scraper"
	"github.com/deusflow/krnews/internal/sentence"
	"github.com/deusflow/krnews/internal/summarizer"
)

func main() {
	cfg, err := config.Load()
	logger.Init(cfg.Debug, cfg.LogFile)
	if err != nil {
		if errors.Is(err, config.ErrWebhookMissing) {
			slog.Error("no webhook configured, nothing to deliver to", "error", err)
		} else {
			slog.Error("invalid configuration", "error", err)
		}
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MonitoringEnabled {
		go func() {
			if err := monitor.Serve(ctx, cfg.MonitoringPort, metrics.Global); err != nil {
				slog.Error("monitoring server error", "error", err)
			}
		}()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		slog.Error("invalid timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	a := app.New(discord.NewClient(cfg.WebhookURL, cfg.RequestTimeout), app.Options{
		FetchPause:     cfg.FetchPause,
		SendPause:      cfg.SendPause,
		ListingTimeout: cfg.ListingTimeout,
		Location:       loc,
		Metrics:        metrics.Global,
	})

	if cfg.Schedule == "" {
		if err := runOnce(ctx, cfg, a); err != nil {
			slog.Error("run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	s, err := scheduler.New(cfg.Timezone)
	if err != nil {
		slog.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}
	err = s.Add(cfg.Schedule, func() {
		if err := runOnce(ctx, cfg, a); err != nil {
			slog.Error("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		slog.Error("invalid schedule", "schedule", cfg.Schedule, "error", err)
		os.Exit(1)
	}
	s.Run(ctx)
}

// runOnce wires the selected sources and runs them. The browser is only
// started when a source needs it and lives for this run.
func runOnce(ctx context.Context, cfg *config.Config, a *app.App) error {
	sources := cfg.Selected()

	var r *renderer.Renderer
	if needsBrowser(sources) {
		var err error
		r, err = renderer.New(renderer.Options{ChromePath: cfg.ChromePath, Timeout: cfg.ListingTimeout})
		if err != nil {
			metrics.Global.SetError(err.Error())
			return fmt.Errorf("start renderer: %w", err)
		}
		defer r.Close()
	}

	loader := scraper.NewLoader(cfg.RequestTimeout)
	feeds := rss.NewReader(cfg.RequestTimeout, scraper.UserAgent)

	pipelines := make([]app.Pipeline, 0, len(sources))
	for _, src := range sources {
		var listing app.PageLoader = loader
		fetch := summarizer.FetchFunc(loader.Load)
		if src.Render {
			listing = r
			fetch = r.LoadWaitingFor(strings.Join(bodySelectors(src), ", "))
		}
		pipelines = append(pipelines, app.Pipeline{
			Source:     src,
			Listing:    listing,
			Feeds:      feeds,
			Summarizer: newSummarizer(cfg, src, fetch),
		})
	}

	return a.Run(ctx, pipelines)
}

func needsBrowser(sources []config.Source) bool {
	for _, s := range sources {
		if s.Render {
			return true
		}
	}
	return false
}

func bodySelectors(src config.Source) []string {
	if len(src.BodySelectors) == 0 {
		return summarizer.DefaultBodySelectors
	}
	return src.BodySelectors
}

func newSummarizer(cfg *config.Config, src config.Source, fetch summarizer.FetchFunc) *summarizer.Summarizer {
	strategies := summarizer.SelectorStrategies(bodySelectors(src))
	if src.ReadabilityFallback {
		strategies = append(strategies, summarizer.ReadabilityStrategy())
	}

	return summarizer.New(fetch,
		summarizer.WithStrategies(strategies...),
		summarizer.WithFilter(sentence.Filter{
			MinRunes:  cfg.Summary.MinRunes,
			Blacklist: cfg.Summary.Blacklist,
		}),
		summarizer.WithTerminator(cfg.Summary.Terminator),
		summarizer.WithMaxSentences(cfg.Summary.MaxSentences),
		summarizer.WithTimeout(cfg.RequestTimeout),
	)
}
