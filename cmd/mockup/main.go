package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/LOSTXKER/anajak-mockup-god/internal/common/config"
	"github.com/LOSTXKER/anajak-mockup-god/internal/common/logger"
	"github.com/LOSTXKER/anajak-mockup-god/internal/common/middleware"
	"github.com/LOSTXKER/anajak-mockup-god/internal/mockup/handlers"
	"github.com/LOSTXKER/anajak-mockup-god/internal/mockup/repository"
	"github.com/LOSTXKER/anajak-mockup-god/internal/mockup/service"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/editor"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/overlay"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/preset"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/rs/zerolog/log"
)

// ============================================================
// Mockup Placement Service
// ============================================================

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := repository.OpenSQLite(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("open db")
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("init db")
	}

	overlayOpts := overlay.Options{
		SpacingCm:       cfg.Overlay.GridSpacingCm,
		MajorIntervalCm: cfg.Overlay.MajorIntervalCm,
		MinorIntervalCm: cfg.Overlay.MinorIntervalCm,
	}
	sessions := service.NewSessionManager(repo,
		editor.WithOverlayOptions(overlayOpts),
		editor.WithDefaultReferenceCm(cfg.Calibration.DefaultReferenceCm),
		editor.WithPresets(preset.Chain(preset.Builtin(), repo.Presets())),
	)
	h := handlers.New(repo, sessions, overlayOpts)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		AppName:      "Mockup Placement Service",
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger(cfg.IsProduction()))
	app.Use(middleware.CORS())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", h.LivenessProbe)
	app.Get("/health/ready", h.ReadinessProbe)

	// ============================================================
	// API Routes
	// ============================================================

	h.Register(app.Group("/api/v1"))

	// ============================================================
	// Server Start
	// ============================================================

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.App.Port)
	log.Info().Str("addr", addr).Str("env", cfg.App.Environment).Msg("starting mockup placement service")

	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
