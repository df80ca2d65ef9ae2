package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/elemcat/internal/wire"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render instance descriptions",
	Long: `Render the description of an element instance from its pinned template
version and current values. Placeholders without a value render as [SIN VALOR].`,
}

var renderShowCmd = &cobra.Command{
	Use:   "show [instance-id]",
	Short: "Render an instance description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "instance"); err != nil {
			return err
		}
		cached, _ := cmd.Flags().GetBool("cached")
		return wire.RenderAdapter().Show(commandContext(cmd), args[0], cached)
	},
}

var renderPersistCmd = &cobra.Command{
	Use:   "persist [instance-id]",
	Short: "Render an instance and store the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "instance"); err != nil {
			return err
		}
		return wire.RenderAdapter().Persist(commandContext(cmd), args[0])
	},
}

var renderReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Re-render every stale stored description",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.RenderAdapter().Reconcile(commandContext(cmd))
	},
}

// RenderCmd returns the render command
func RenderCmd() *cobra.Command {
	renderShowCmd.Flags().Bool("cached", false, "Show the stored rendering instead of rendering now")

	renderCmd.AddCommand(renderShowCmd)
	renderCmd.AddCommand(renderPersistCmd)
	renderCmd.AddCommand(renderReconcileCmd)

	return renderCmd
}
