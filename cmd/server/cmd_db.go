package main

import (
	"errors"

	"github.com/spf13/cobra"

	"pizzatrack/internal/config"
	"pizzatrack/internal/migrations"
)

var resetConfirmed bool

// pizzatrack migrate: create or update the schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(config.Load())
		if err != nil {
			return err
		}
		return migrations.RunMigrations(db)
	},
}

// pizzatrack seed: default users, deliverers, settings and catalog.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default users, deliverers and catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(config.Load())
		if err != nil {
			return err
		}
		return migrations.Seed(cmd.Context(), db)
	},
}

// pizzatrack reset --yes: drop everything, recreate and seed.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop every table, recreate the schema and seed it",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirmed {
			return errors.New("reset deletes all data; pass --yes to confirm")
		}
		db, err := openDatabase(config.Load())
		if err != nil {
			return err
		}
		if err := migrations.Reset(db); err != nil {
			return err
		}
		return migrations.Seed(cmd.Context(), db)
	},
}
