package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Kerhoff/todoapi/internal/config"
	"github.com/Kerhoff/todoapi/pkg/logger"
)

var (
	databaseURL string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "todoapi",
	Short: "Todo HTTP API",
	Long: `todoapi serves a small JSON API for creating, listing, reading and
deleting todos backed by PostgreSQL or SQLite.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Database URL (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
}

// loadConfig reads the environment and applies command line overrides.
func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if databaseURL != "" {
		if _, _, err := config.ParseDatabaseURL(databaseURL); err != nil {
			return nil, nil, err
		}
		cfg.DatabaseURL = databaseURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, logger.New(cfg.LogLevel, cfg.LogFormat), nil
}

// openDatabase connects and makes sure the todos table exists.
func openDatabase(cfg *config.Config, l *logrus.Logger) (*config.Database, error) {
	db, err := config.NewDatabase(cfg.DatabaseURL, cfg.Pool, l)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
