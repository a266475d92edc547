package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/blockedby/leetstats/internal/api"
	"github.com/blockedby/leetstats/internal/config"
	"github.com/blockedby/leetstats/internal/leetcode"
	"github.com/blockedby/leetstats/internal/logger"
	"github.com/blockedby/leetstats/internal/web"
	"github.com/blockedby/leetstats/internal/web/handlers"
	"github.com/blockedby/leetstats/webui"
)

func main() {
	// 1. Load .env and config
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. Initialize logger
	if err := logger.Init(logger.Options{
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
		JSON:  cfg.IsProduction(),
	}); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()
	log.Info().Str("env", cfg.Env).Msg("starting leetstats server")

	// 3. Setup context with graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 4. Upstream client
	lc := leetcode.NewClient(leetcode.Config{
		URL:     cfg.UpstreamURL,
		Timeout: cfg.UpstreamTimeout,
		RPS:     cfg.UpstreamRPS,
		Burst:   cfg.UpstreamBurst,
	}, log)

	// 5. Page assets
	assets, err := loadAssets(cfg.StaticDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load page assets")
	}

	// 6. Server and routes
	server := web.NewServer(&web.Config{
		Port:            cfg.HTTPPort,
		AllowedOrigin:   cfg.AllowedOrigin,
		TrustProxy:      cfg.TrustProxy,
		Production:      cfg.IsProduction(),
		Assets:          assets,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
	}, log)

	apiServer := api.NewServer(&api.Config{
		Title:       "leetstats",
		Description: "Proxy for public LeetCode solved-problem statistics.",
		Version:     "1.0.0",
	})
	apiServer.RegisterUserLookup(handlers.NewUserHandler(lc).Lookup)

	server.RegisterAPI(apiServer.Handler())
	server.RegisterDocs(apiServer)

	// 7. Start
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Str("origin", cfg.AllowedOrigin).Msg("starting web server")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 8. Wait for shutdown
	select {
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}

	log.Info().Msg("shutdown complete")
}

// loadAssets prefers a directory on disk, for editing the page without
// rebuilding.
func loadAssets(dir string) (fs.FS, error) {
	if dir == "" {
		return webui.Static()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New(dir + " is not a directory")
	}
	return os.DirFS(dir), nil
}
