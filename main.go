package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogpu/gg"
	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"

	"github.com/chaos-io/photobooth/camera"
	"github.com/chaos-io/photobooth/compose"
	"github.com/chaos-io/photobooth/config"
	"github.com/chaos-io/photobooth/gallery"
	"github.com/chaos-io/photobooth/rembg"
	"github.com/chaos-io/photobooth/server"
	"github.com/chaos-io/photobooth/session"
	"github.com/chaos-io/photobooth/studio"
	"github.com/chaos-io/photobooth/telegram"
	nhttp "github.com/chaos-io/photobooth/util/http"
)

const visitorIdle = 3 * time.Minute

func main() {
	if err := run(); err != nil {
		slog.Error("photobooth stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.Server)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	gg.SetLogger(logger)
	gin.SetMode(gin.ReleaseMode)

	compositor, err := newCompositor(cfg.Camera)
	if err != nil {
		return err
	}
	defer func() {
		_ = compositor.Close()
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := server.NewMetrics(reg)

	manager := session.NewManager(newDevice(cfg.Camera), compositor,
		session.WithTTL(cfg.Session.SessionTTL()),
		session.WithCountdownInterval(cfg.Session.Countdown()),
		session.WithCaptureHook(func(studio.Photo) { metrics.CaptureObserved() }),
	)
	defer manager.Stop()
	server.RegisterSessionGauge(reg, manager.Len)
	if err := manager.StartReaper(cfg.Session.ReaperSchedule); err != nil {
		return fmt.Errorf("start session reaper: %w", err)
	}

	opts := []server.Option{
		server.WithMetrics(metrics, reg),
		server.WithMaxUpload(cfg.Server.MaxUploadBytes),
		server.WithMaxFramePixels(cfg.Server.MaxFramePixels),
	}
	if cfg.Server.RateLimit > 0 {
		limiter := server.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
		sweeper := cron.New()
		if _, err := sweeper.AddFunc("@every 1m", func() { limiter.Sweep(visitorIdle) }); err != nil {
			return err
		}
		sweeper.Start()
		defer sweeper.Stop()
		opts = append(opts, server.WithRateLimiter(limiter))
	}

	g := gallery.NewService(
		rembg.NewService(newRemover(cfg.RemBG)),
		telegram.NewSender(cfg.Telegram.BotToken, cfg.Telegram.ChatID, telegram.WithAPIURL(cfg.Telegram.APIURL)),
		nil,
	)
	srv := server.New(manager, g, opts...)

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.Server.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.ExposedHeaders([]string{"Content-Length", "Content-Disposition"}),
	)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           cors(srv.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
		// Background removal can take a while.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.Server.Addr, "camera", cfg.Camera.Mode, "rembg", cfg.RemBG.Provider)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newLogger(cfg config.ServerConfig) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

func newCompositor(cfg config.CameraConfig) (*compose.Compositor, error) {
	var glyph []byte
	if cfg.GlyphFont != "" {
		data, err := os.ReadFile(cfg.GlyphFont)
		if err != nil {
			return nil, fmt.Errorf("read glyph font: %w", err)
		}
		glyph = data
	}
	return compose.NewCompositor(glyph)
}

func newDevice(cfg config.CameraConfig) camera.Device {
	switch cfg.Mode {
	case config.CameraStill:
		return camera.StillDevice{Location: cfg.Still, Client: nhttp.NewHTTPClient()}
	case config.CameraDisabled:
		return camera.DeniedDevice{Err: camera.ErrUnsupported}
	default:
		return camera.FeedDevice{}
	}
}

func newRemover(cfg config.RemBGConfig) rembg.Remover {
	switch cfg.Provider {
	case config.RemBGGemini:
		if cfg.GeminiAPIKey == "" {
			slog.Warn("GEMINI_API_KEY is not set, background removal disabled")
			return rembg.NewDisabledRemBG()
		}
		return rembg.NewGeminiRemBG(cfg.GeminiAPIKey,
			rembg.WithGeminiModel(cfg.GeminiModel),
			rembg.WithGeminiBaseURL(cfg.GeminiBaseURL),
		)
	case config.RemBGBiRefNet:
		return rembg.NewBiRefNetRemBG(cfg.ComfyUIURL)
	default:
		return rembg.NewDisabledRemBG()
	}
}
