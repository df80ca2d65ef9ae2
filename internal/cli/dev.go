package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/elemcat/internal/config"
	"github.com/example/elemcat/internal/db"
)

// EnvDevDB must point at the database `elemcat dev reset` may delete.
const EnvDevDB = "ELEMCAT_DEV_DB"

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development utilities",
		Long: `Development utilities for working with a throwaway elemcat database.

These commands only touch the database named by ELEMCAT_DEV_DB, so running
them by accident cannot modify the configured catalog.`,
	}

	cmd.AddCommand(devResetCmd())
	return cmd
}

func devResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the dev database with fresh fixtures",
		Long: `Delete the dev database and recreate it with fixture data.

This command:
1. Deletes the existing dev database file
2. Creates a fresh database with the current schema
3. Seeds a demo catalog, project, and instance

Point ELEMCAT_DB at the same file to use it with the other commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := os.Getenv(EnvDevDB)
			if dbPath == "" {
				return fmt.Errorf("%s not set\n\nThis safety check prevents accidental reset of your catalog database", EnvDevDB)
			}
			if configured, err := configuredDBPath(); err == nil && configured == dbPath && os.Getenv(config.EnvDBPath) == "" {
				return fmt.Errorf("%s points at the configured catalog database %s", EnvDevDB, dbPath)
			}

			if !force {
				fmt.Printf("This will delete and recreate: %s\n", dbPath)
				fmt.Print("Continue? [y/N] ")
				var response string
				fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			for _, f := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
				if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("failed to delete database: %w", err)
				}
			}
			fmt.Printf("✓ Deleted %s\n", dbPath)

			database, err := db.Open(dbPath)
			if err != nil {
				return fmt.Errorf("failed to create database: %w", err)
			}
			defer database.Close()
			fmt.Println("✓ Created fresh database with schema")

			if err := db.SeedFixtures(database); err != nil {
				return fmt.Errorf("failed to seed fixtures: %w", err)
			}
			fmt.Println("✓ Seeded fixture data")

			fmt.Println("\nDev database reset complete!")
			fmt.Println("\nSeeded entities:")
			fmt.Println("  - 2 elements (MC-01 with an active template, CP-01)")
			fmt.Println("  - 1 project (OBRA-2024-01)")
			fmt.Println("  - 1 instance (MC-01-FACHADA-N), rendered description stale")

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}

// configuredDBPath resolves the database the workspace config points at.
func configuredDBPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		return "", err
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	return config.DefaultDBPath()
}
