package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/elemcat/internal/cli"
	"github.com/example/elemcat/internal/version"
	"github.com/example/elemcat/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "elemcat",
		Short:   "elemcat - constructive element catalog",
		Version: version.String(),
		Long: `elemcat manages a catalog of constructive elements with versioned,
approval-gated description templates, and renders the descriptions of element
instances inside projects.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String(cli.ActorFlag, "", "Who performs the change (default: system)")

	// Setup
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.ImportCmd())

	// Catalog
	rootCmd.AddCommand(cli.CategoryCmd())
	rootCmd.AddCommand(cli.ElementCmd())
	rootCmd.AddCommand(cli.VariableCmd())
	rootCmd.AddCommand(cli.TemplateCmd())

	// Projects
	rootCmd.AddCommand(cli.ProjectCmd())
	rootCmd.AddCommand(cli.InstanceCmd())
	rootCmd.AddCommand(cli.RenderCmd())
	rootCmd.AddCommand(cli.HistoryCmd())

	// Developer tools
	rootCmd.AddCommand(cli.DevCmd())

	err := rootCmd.Execute()
	wire.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
