// Package app wires configuration into the aggregator and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deusflow/goodnews/internal/config"
	"github.com/deusflow/goodnews/internal/geo"
	"github.com/deusflow/goodnews/internal/logger"
	"github.com/deusflow/goodnews/internal/metrics"
	"github.com/deusflow/goodnews/internal/news"
	"github.com/deusflow/goodnews/internal/quotes"
	"github.com/deusflow/goodnews/internal/ratelimit"
	"github.com/deusflow/goodnews/internal/rss"
	"github.com/deusflow/goodnews/internal/server"
	"github.com/deusflow/goodnews/internal/weather"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg        *config.Config
	Aggregator *news.Aggregator
	Quotes     *quotes.Rotator
	Geo        *geo.Locator
	Weather    *weather.Client

	geoLimit     *ratelimit.Daily
	weatherLimit *ratelimit.Daily
}

// New builds every component from cfg for the given feeds.
func New(cfg *config.Config, feeds []news.FeedSource) *App {
	fetcher := rss.NewFetcher(rss.Options{
		ItemsPerFeed: cfg.ItemsPerFeed,
		Timeout:      cfg.FetchTimeout,
		Retry:        cfg.Retry(),
		Logger:       logger.With("rss"),
	})

	limitLog := ratelimit.WithLogger(logger.With("ratelimit"))
	geoLimit := ratelimit.NewDaily("ipapi", cfg.GeoDailyLimit, limitLog)
	weatherLimit := ratelimit.NewDaily("openweathermap", cfg.WeatherDailyLimit, limitLog)

	return &App{
		cfg: cfg,
		Aggregator: news.NewAggregator(fetcher, cfg.News(feeds),
			news.WithMetrics(metrics.Global),
			news.WithLogger(logger.With("news")),
		),
		Quotes: quotes.NewRotator(nil, cfg.QuoteTTL),
		Geo: geo.NewLocator(geo.Options{
			BaseURL: cfg.IPAPIBaseURL,
			TTL:     cfg.LocationTTL,
			Logger:  logger.With("geo"),
			Limiter: geoLimit,
		}),
		Weather: weather.NewClient(weather.Options{
			APIKey:  cfg.OpenWeatherAPIKey,
			BaseURL: cfg.OpenWeatherBaseURL,
			Logger:  logger.With("weather"),
			Limiter: weatherLimit,
		}),
		geoLimit:     geoLimit,
		weatherLimit: weatherLimit,
	}
}

func (a *App) Handler() http.Handler {
	return server.New(server.Deps{
		News:          a.Aggregator,
		Geo:           a.Geo,
		Weather:       a.Weather,
		Quotes:        a.Quotes,
		Metrics:       metrics.Global,
		Logger:        logger.With("http"),
		APILimits:     []server.UsageReporter{a.geoLimit, a.weatherLimit},
		TrustProxy:    a.cfg.TrustProxyHeaders,
		SnippetLength: a.cfg.ContentSnippetLength,
	}).Handler()
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go a.Geo.RunCleanup(ctx, geo.CleanupInterval)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", "addr", srv.Addr, "feeds", len(a.Aggregator.Sources()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// Fetch runs one aggregation cycle and returns the selection.
func (a *App) Fetch(ctx context.Context) ([]news.Article, error) {
	start := time.Now()
	items, err := a.Aggregator.Selection(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("fetch finished", "articles", len(items), "duration", time.Since(start))
	if !metrics.Global.Healthy() {
		logger.Warn("no feed could be fetched")
	}
	return items, nil
}
