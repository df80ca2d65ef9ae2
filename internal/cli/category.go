package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/elemcat/internal/wire"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Inspect the element categories",
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the valid categories with their groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		wire.CatalogAdapter().ListCategories(commandContext(cmd))
		return nil
	},
}

// CategoryCmd returns the category command
func CategoryCmd() *cobra.Command {
	categoryCmd.AddCommand(categoryListCmd)
	return categoryCmd
}
