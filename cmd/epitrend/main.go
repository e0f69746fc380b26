package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"epitrend/internal/fetch"
	"epitrend/internal/infra"
	"epitrend/internal/pipeline"
	"epitrend/internal/report"
	"epitrend/internal/report/chart"
	"epitrend/internal/storage"
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache, err := storage.NewCacheFile(cfg.CachePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("epitrend: failed to configure cache")
	}

	fetcher, err := fetch.NewFetcher(cache, fetch.Options{
		URL:        cfg.SourceURL,
		Timeout:    cfg.FetchTimeout,
		HTTPClient: &http.Client{Timeout: cfg.FetchTimeout},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("epitrend: failed to configure fetcher")
	}

	renderer, err := chart.NewPlotRenderer(chart.PlotOptions{
		Dir:        cfg.ChartDir,
		WidthInch:  cfg.ChartWidthInch,
		HeightInch: cfg.ChartHeightInch,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("epitrend: failed to configure chart renderer")
	}

	reporter, err := report.NewReporter(report.Config{
		Locale:         cfg.Locale,
		WatchList:      cfg.WatchList,
		AnnotateOffset: cfg.AnnotateOffset,
		Describe:       cfg.Describe,
	}, renderer, os.Stdout, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("epitrend: failed to configure reporter")
	}

	runner := &pipeline.Runner{
		Cache:           cache,
		Fetcher:         fetcher,
		Reporter:        reporter,
		ReferenceEntity: cfg.ReferenceEntity,
		Now:             func() time.Time { return time.Now().In(cfg.Timezone) },
		Logger:          &logger,
	}

	res, err := runner.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn().Msg("epitrend: interrupted")
			os.Exit(130)
		}
		logger.Fatal().Err(err).Str("stage", pipeline.Stage(err)).Msg("epitrend: run failed")
	}
	logger.Info().
		Int("charts", len(res.Charts)).
		Strs("skipped", res.Skipped).
		Str("chart_dir", cfg.ChartDir).
		Msg("epitrend: done")
}
