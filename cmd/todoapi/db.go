package main

import (
	"github.com/spf13/cobra"

	"github.com/Kerhoff/todoapi/internal/config"
)

var initDBCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Create the todos table and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDatabase(cfg, l)
		if err != nil {
			return err
		}
		return db.Close()
	},
}

var dropDBCmd = &cobra.Command{
	Use:   "dropdb",
	Short: "Drop the todos table and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := config.NewDatabase(cfg.DatabaseURL, cfg.Pool, l)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Drop()
	},
}

func init() {
	rootCmd.AddCommand(initDBCmd, dropDBCmd)
}
