package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vidqueue/internal/api"
	"vidqueue/internal/config"
	fileutil "vidqueue/internal/file"
	"vidqueue/internal/media"
	"vidqueue/internal/queue"
	"vidqueue/internal/web"
)

func main() {

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	_ = godotenv.Load()

	cfg, err := config.Load("config.yml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if err := fileutil.EnsureDir(cfg.DataDir); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("ensure data dir")
	}
	if err := fileutil.EnsureDir(cfg.DownloadDir); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DownloadDir).Msg("ensure download dir")
	}

	manager := buildQueueManager(cfg)

	router := setupRouter()
	wireRoutes(router, manager)

	baseCtx, baseCancel := context.WithCancel(context.Background())
	manager.Start(baseCtx)

	const (
		readHeaderTimeout = 5 * time.Second
		shutdownTimeout   = 10 * time.Second
	)

	srv := newHTTPServer(cfg.Port, router, readHeaderTimeout)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()
	log.Info().Int("port", cfg.Port).Str("download_dir", cfg.DownloadDir).Msg("listening")

	waitForShutdownSignal()

	gracefulShutdown(srv, baseCancel, manager, shutdownTimeout)
}

func setupRouter() *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(api.ZerologLogger())
	r.Use(api.CORS())
	return r
}

func buildQueueManager(cfg config.Config) *queue.Manager {
	m := queue.NewManagerWithOptions(queue.Options{
		DataDir:                cfg.DataDir,
		MaxConcurrentDownloads: cfg.MaxConcurrentDownloads,
	})
	m.UseDownloader(media.NewDownloader(cfg.DownloadDir).Download)

	if err := m.LoadFromDisk(); err != nil {
		log.Warn().Err(err).Msg("could not restore persisted jobs")
	}
	return m
}

func wireRoutes(router *gin.Engine, m *queue.Manager) {
	apiHandler := api.NewAPI(m, media.NewProber())
	apiHandler.RegisterRoutes(router)

	uiHandler := web.NewUI()
	uiHandler.RegisterRoutes(router)
}

func newHTTPServer(port int, handler http.Handler, readHeaderTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func waitForShutdownSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutdown signal received")
}

func gracefulShutdown(srv *http.Server, cancelBase context.CancelFunc, m *queue.Manager, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("http server shutdown warning")
	}

	cancelBase()
	done := m.WaitAll(ctx)
	if !done {
		log.Warn().Msg("downloads did not finish before timeout")
	}
	log.Info().Msg("server exited cleanly")
}
