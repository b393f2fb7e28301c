package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"hrtraining/analytics"
	"hrtraining/config"
	controllers "hrtraining/controllers/training"
	"hrtraining/database"
	"hrtraining/middleware"
	"hrtraining/player"
	"hrtraining/repository"
	trainingRoutes "hrtraining/routers/trainingRoutes"
	"hrtraining/utils"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return database.Migrate(database.Database.Db)
	},
}

var checkProgramCmd = &cobra.Command{
	Use:   "check-program PROGRAM_ID",
	Short: "Validate the module and content structure of a program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := repository.NewContentRepository(database.Database.Db)
		program, err := repo.FetchProgram(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		graph := player.NewContentGraph(program)
		if err := graph.Validate(); err != nil {
			return err
		}
		fmt.Printf("Program %s (%s): %d modules, %d content items\n", program.ID, program.Title, graph.ModuleCount(), graph.TotalContent())
		return nil
	},
}

// eventSinks stores events in the database and forwards them to the
// analytics collector when one is configured.
func eventSinks(cfg *config.Config, logger *slog.Logger) analytics.Fanout {
	sinks := analytics.Fanout{
		analytics.NewDBSink(database.Database.Db, logger),
		analytics.LogSink{Logger: logger},
	}
	if cfg.AnalyticsURL != "" {
		sinks = append(sinks, analytics.NewHTTPSink(cfg.AnalyticsURL, cfg.AnalyticsTimeout, logger))
	}
	return sinks
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.AppConfig
	db := database.Database.Db
	logger := slog.Default()

	if err := database.Migrate(db); err != nil {
		return err
	}

	sinks := eventSinks(cfg, logger)
	enrollments := repository.NewEnrollmentStore(db)
	registry := player.NewRegistry(player.Dependencies{
		Content:            repository.NewContentRepository(db),
		Progress:           repository.NewProgressStore(db, logger),
		Enrollments:        enrollments,
		Events:             sinks,
		Logger:             logger,
		WatchWriteInterval: cfg.WatchWriteInterval,
	})

	flusher, err := utils.InitializeProgressFlusher(registry, cfg.ProgressFlushSchedule)
	if err != nil {
		return fmt.Errorf("progress flusher: %w", err)
	}

	app := middleware.NewApp(true)
	trainingRoutes.SetupTrainingRoutes(app, controllers.NewPlayerController(registry, enrollments, db))
	trainingRoutes.SetupMetricsRoute(app)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		log.Printf("Server is running on port %s", cfg.Port)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}
	flusher.Stop(shutdownCtx)
	if err := sinks.Close(shutdownCtx); err != nil {
		log.Printf("Error closing event sinks: %v", err)
	}
	return nil
}
