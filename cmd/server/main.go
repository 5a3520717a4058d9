// Package main is the entry point for the LacyLights pattern server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/lacylights-patterns/internal/api"
	"github.com/bbernstein/lacylights-patterns/internal/config"
	"github.com/bbernstein/lacylights-patterns/internal/database"
	"github.com/bbernstein/lacylights-patterns/internal/database/repositories"
	"github.com/bbernstein/lacylights-patterns/internal/services/controller"
	"github.com/bbernstein/lacylights-patterns/internal/services/dmx"
	"github.com/bbernstein/lacylights-patterns/internal/services/pubsub"
	"github.com/bbernstein/lacylights-patterns/internal/services/registry"
	"github.com/bbernstein/lacylights-patterns/internal/services/scene"
	"github.com/bbernstein/lacylights-patterns/internal/services/world"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load .env file if present
	envErr := godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel, cfg.LogJSON, cfg.IsDevelopment())
	if envErr != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	printBanner(cfg)

	db, err := database.Connect(cfg.Database())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() { _ = database.Close(db) }()

	log.Info().Msg("Running database migrations")
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	reg := registry.New()
	ctrl := controller.New(reg)
	ctrl.SetEvictInterval(cfg.EvictInterval)
	ctrl.SetGlobalIntensity(cfg.GlobalIntensity)
	ctrl.SetGlobalSpeed(cfg.GlobalSpeed)

	ps := pubsub.New()
	defer ps.Close()

	w := world.New(reg, ps, cfg.RandomSeed)
	w.SetRepositories(world.Repositories{
		Lights:      repositories.NewLightPresetRepository(db),
		Reflections: repositories.NewReflectionPresetRepository(db),
		Curves:      repositories.NewCurvePresetRepository(db),
	})

	dmxService := dmx.NewService(cfg.DMX())
	if err := dmxService.Initialize(); err != nil {
		// DMX may be disabled or the broadcast address unavailable
		log.Warn().Err(err).Msg("DMX service initialization failed")
	}

	handler := api.New(api.Options{
		Controller: ctrl,
		World:      w,
		PubSub:     ps,
		DMX:        dmxService,
		Settings:   repositories.NewSettingRepository(db),
		Version:    Version,
	})

	ctx := context.Background()
	if err := handler.RestoreGlobals(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to restore global settings")
	}
	if err := handler.RestoreOutput(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to load saved broadcast address")
	}
	if cfg.LoadPresets {
		res, err := w.LoadPresets(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load presets")
		} else {
			log.Info().
				Int("curves", res.Curves).
				Int("lights", res.Lights).
				Int("reflections", res.Reflections).
				Msg("Loaded presets")
		}
	}
	if cfg.SceneFile != "" {
		if err := loadScene(w, cfg.SceneFile); err != nil {
			log.Fatal().Err(err).Str("file", cfg.SceneFile).Msg("Failed to load scene")
		}
	}

	engine := controller.NewEngine(ctrl, dmxService, ps)
	engine.SetTickRate(cfg.TickRateHz)
	engine.Start()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin, "http://localhost:3000", "http://localhost:4000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		Debug:            cfg.IsDevelopment() && cfg.LogLevel == "debug",
	})
	router.Use(corsMiddleware.Handler)
	handler.Routes(router)

	// No write timeout: /ws/frames connections are long-lived.
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", "http://localhost:"+cfg.Port).Msg("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	// Cleanup services in reverse order
	engine.Stop()
	dmxService.Stop()
	w.Clear()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Server stopped")
}

// loadScene spawns the lights, reflections and curves described in a scene file.
func loadScene(w *world.World, path string) error {
	f, err := scene.Load(path)
	if err != nil {
		return err
	}
	res, err := f.Apply(w)
	if err != nil {
		return err
	}
	log.Info().
		Str("file", path).
		Int("curves", res.Curves).
		Int("lights", res.Lights).
		Int("reflections", res.Reflections).
		Msg("Loaded scene")
	return nil
}

// setupLogging configures the global zerolog logger.
func setupLogging(level string, useJSON bool, colors bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	if useJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			NoColor:    !colors,
		})
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// printBanner prints the startup banner.
func printBanner(cfg *config.Config) {
	fmt.Println("============================================")
	fmt.Println("  LacyLights Pattern Server")
	fmt.Printf("  Version: %s\n", Version)
	fmt.Printf("  Build:   %s\n", BuildTime)
	fmt.Printf("  Commit:  %s\n", GitCommit)
	fmt.Println("============================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Port:        %s\n", cfg.Port)
	fmt.Printf("  Database:    %s\n", cfg.DatabaseURL)
	fmt.Printf("  Tick rate:   %d Hz\n", cfg.TickRateHz)
	fmt.Printf("  Art-Net:     %v\n", cfg.ArtNetEnabled)
	if cfg.SceneFile != "" {
		fmt.Printf("  Scene:       %s\n", cfg.SceneFile)
	}
	fmt.Println("============================================")
}
