package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/elemcat/internal/wire"
)

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.yaml]",
		Short: "Import catalog elements from a YAML document",
		Long: `Import elements with their variables, options, and templates from a YAML
document. Elements whose code already exists are skipped. Templates marked
with activate: true are approved until they become the active version.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer f.Close()

			report, err := wire.Importer().Import(commandContext(cmd), f)
			if report != nil {
				for _, code := range report.Created {
					fmt.Printf("✓ Created element %s\n", code)
				}
				for _, code := range report.Skipped {
					fmt.Printf("- Skipped %s (already exists)\n", code)
				}
				fmt.Printf("\n%d created, %d skipped, %d template version(s), %d activated\n",
					len(report.Created), len(report.Skipped), len(report.Versions), len(report.Active))
			}
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			return nil
		},
	}
}
