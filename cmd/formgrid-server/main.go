package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/formgrid-dev/formgrid/internal/logger"
	"github.com/formgrid-dev/formgrid/internal/server"
	"github.com/formgrid-dev/formgrid/pkg/util"
)

func main() {
	upstreamURL := flag.String("upstream", util.GetEnv("UPSTREAM_URL", ""), "legacy backend base URL")
	redisDSN := flag.String("redis", util.GetEnv("REDIS_DSN", ""), "redis DSN for cache and persistence")
	policyPath := flag.String("policy", util.GetEnv("WIDGET_POLICY", ""), "widget policy file")
	eventsConf := flag.String("events", util.GetEnv("FG_EVENTS_CONFIG", ""), "events sink configuration file")
	configUser := flag.String("config-user", util.GetEnv("CONFIG_USER", "default"), "user scope of the persisted config cache")
	addr := flag.String("addr", ":8080", "listen address")
	openapi := flag.String("openapi", "", "write OpenAPI JSON and exit")
	flag.Parse()

	logger.Set(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if *upstreamURL == "" {
		logger.L.Error("UPSTREAM_URL is not set. Application cannot start.")
		os.Exit(1)
	}

	rt, err := server.New(server.Config{
		UpstreamURL:   *upstreamURL,
		UpstreamToken: os.Getenv("UPSTREAM_TOKEN"),
		RedisDSN:      *redisDSN,
		PolicyPath:    *policyPath,
		EventsConfig:  *eventsConf,
		ConfigUser:    *configUser,
	})
	if err != nil {
		logger.L.Error("server init", "err", err)
		os.Exit(1)
	}

	s := gocron.NewScheduler(time.UTC)
	if _, err := s.Every(1).Minute().Do(func() {
		if err := rt.Config.Flush(context.Background()); err != nil {
			logger.L.Error("config flush sweep", "err", err)
		}
	}); err != nil {
		logger.L.Error("schedule config flush", "err", err)
	}
	if rt.Cache != nil {
		if _, err := s.Every(10).Minutes().Do(rt.Cache.Sweep); err != nil {
			logger.L.Error("schedule cache sweep", "err", err)
		}
	}
	if _, err := s.Every(6).Hours().Do(func() {
		rt.Resolver.RefreshHot(context.Background())
	}); err != nil {
		logger.L.Error("schedule schema refresh", "err", err)
	}
	s.StartAsync()

	if *openapi != "" {
		data, err := json.MarshalIndent(rt.API.OpenAPI(), "", "  ")
		if err != nil {
			logger.L.Error("marshal openapi", "err", err)
			os.Exit(1)
		}
		p := filepath.Clean(*openapi)
		if err := os.WriteFile(p, data, 0o600); err != nil {
			logger.L.Error("write openapi", "err", err)
			os.Exit(1)
		}
		return
	}

	logger.L.Info("listening", "addr", *addr)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      rt.API.Adapter(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.L.Error("server error", "err", err)
		os.Exit(1)
	}
}
