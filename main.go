package main

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"hrtraining/config"
	"hrtraining/database"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hrtraining",
	Short: "Training program player service",
	Long: `Serves the training player: enrollment, sequential content unlocking,
video watch tracking, quizzes and program completion.

Commands:
  serve          - Run the HTTP server and the progress flusher
  migrate        - Create or update the database schema
  check-program  - Validate the content structure of a stored program`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		config.LoadConfig()
		slog.SetDefault(newLogger(config.AppConfig.LogLevel))
		database.ConnectDb()
	}
	rootCmd.AddCommand(serveCmd, migrateCmd, checkProgramCmd)
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
