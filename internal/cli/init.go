package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/elemcat/internal/config"
	"github.com/example/elemcat/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize an elemcat workspace",
		Long: `Write .elemcat/config.yaml in the current directory and create the
database with the required schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			force, _ := cmd.Flags().GetBool("force")
			path := config.Path(cwd)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to check config: %w", err)
			}

			cfg := config.Default()
			cfg.DBPath, _ = cmd.Flags().GetString("db")
			if cmd.Flags().Changed("approvals") {
				cfg.RequiredApprovals, _ = cmd.Flags().GetInt("approvals")
			}
			if cmd.Flags().Changed("log") {
				cfg.LogMode, _ = cmd.Flags().GetString("log")
			}

			if err := config.SaveConfig(cwd, cfg); err != nil {
				return err
			}
			fmt.Printf("✓ Config written to %s\n", path)

			// Opening the services creates the database and its schema.
			wire.Logger().Info("workspace initialized", "config", path)
			dbPath := cfg.DBPath
			if loaded, err := config.LoadConfig(cwd); err == nil {
				dbPath = loaded.DBPath
			}
			if dbPath == "" {
				dbPath, _ = config.DefaultDBPath()
			}
			fmt.Printf("✓ Database ready at %s\n", dbPath)

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  elemcat category list")
			fmt.Println("  elemcat element create MC-01 \"Muro cortina\" --category \"MURO CORTINA\"")
			return nil
		},
	}

	cmd.Flags().String("db", "", "Database path (default: ~/.elemcat/elemcat.db)")
	cmd.Flags().Int("approvals", config.DefaultRequiredApprovals, "Approvals required before a version activates")
	cmd.Flags().String("log", config.DefaultLogMode, "Log mode (dev, prod, quiet, off)")
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing config")

	return cmd
}
