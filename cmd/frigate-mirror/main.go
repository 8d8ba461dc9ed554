package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/a-jackson/frigate/internal/api"
	"github.com/a-jackson/frigate/internal/auth"
	"github.com/a-jackson/frigate/internal/config"
	"github.com/a-jackson/frigate/internal/metrics"
	"github.com/a-jackson/frigate/internal/stats"
	"github.com/a-jackson/frigate/internal/ws"
	"github.com/a-jackson/frigate/pkg/client"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("frigate-mirror starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"upstream_url", cfg.Mirror.UpstreamURL,
		"http_port", cfg.Mirror.HTTPPort,
		"stats_interval", cfg.Mirror.StatsInterval,
		"local_auth_mode", cfg.Mirror.LocalAuth.Mode,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Upstream connection — mirrors the server's topic stream into state.
	header := http.Header{}
	if cfg.Mirror.UpstreamAuth.Mode == "apikey" && cfg.Mirror.UpstreamAuth.Key() != "" {
		header.Set(cfg.Mirror.UpstreamAuth.EffectiveHeader(), cfg.Mirror.UpstreamAuth.Key())
	}
	cl := client.New(client.Options{
		URL:        cfg.Mirror.UpstreamURL,
		APIURL:     cfg.Mirror.APIURL,
		Header:     header,
		SendBuffer: cfg.Mirror.SendBuffer,
	})
	go cl.Run(ctx)

	// Downstream hub — re-serves the mirror to dashboard clients and
	// forwards their control frames upstream.
	hub := ws.New(cl.State(), cl)
	go hub.Run(ctx)

	// Stats emitter, optionally folding in the upstream exporter's gauges.
	var scraper *metrics.Scraper
	if cfg.Mirror.MetricsURL != "" {
		scraper = metrics.New(cfg.Mirror.MetricsURL, 0)
	}
	started := time.Now()
	emitter := stats.New(cl.State(), cfg.Mirror.StatsInterval, func(ctx context.Context) stats.Snapshot {
		snap := stats.Snapshot{
			UptimeSeconds:     time.Since(started).Seconds(),
			UpstreamConnected: cl.Connected(),
			TopicCount:        cl.State().Len(),
			ClientCount:       hub.Count(),
			CollectedAt:       time.Now().UTC().Format(time.RFC3339),
		}
		if scraper != nil {
			vals, err := scraper.Scrape(ctx)
			if err != nil {
				slog.Warn("stats: exporter scrape failed", "err", err)
			} else {
				snap.Exporter = vals
			}
		}
		return snap
	})
	go emitter.Run(ctx)

	// Watch config file for changes. Settings apply on restart.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config, err error) {
			if err != nil {
				slog.Error("config change rejected", "err", err)
				return
			}
			slog.Info("config changed, restart to apply",
				"upstream_url", updated.Mirror.UpstreamURL)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// Combined HTTP server: REST API + WebSocket hub, behind API key auth.
	guard := auth.APIKey(
		cfg.Mirror.LocalAuth.Mode,
		cfg.Mirror.LocalAuth.EffectiveHeader(),
		cfg.Mirror.LocalAuth.Key(),
	)
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", guard(api.New(cl.State(), cl, emitter, hub)))
	httpMux.Handle("/ws", guard(hub))

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Mirror.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Mirror.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("frigate-mirror shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
