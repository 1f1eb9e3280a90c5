// Package cli implements the blockrec CLI commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arran4/golang-blockrec/internal/booking"
	"github.com/arran4/golang-blockrec/internal/config"
)

var (
	configPath   string
	calendarPath string
	verbose      bool

	cfg    *config.Config
	logger *slog.Logger
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "blockrec",
	Short: "Parse and validate BEGIN/END block records",
	Long:  "Parse RECORD files, validate VEVENT calendars and keep a one-per-day appointment book in a calendar file.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		c, err := config.Load(getConfigPath())
		if err != nil {
			exitErr("load config", err)
		}
		cfg = c
		logger = newLogger(cfg, verbose)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config path (default: $BLOCKREC_CONFIG or ~/.blockrec/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&calendarPath, "calendar", "", "Booking calendar file (default: calendar_path from config)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("BLOCKREC_CONFIG"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".blockrec", "config.yaml")
}

func getCalendarPath() string {
	if calendarPath != "" {
		return calendarPath
	}
	return cfg.CalendarPath
}

func newLogger(c *config.Config, verbose bool) *slog.Logger {
	level := c.Level()
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openBook() (*booking.Book, error) {
	return booking.Open(getCalendarPath(), logger, booking.WithProductID(cfg.ProductID))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
