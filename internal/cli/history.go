package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/elemcat/internal/wire"
)

// HistoryCmd returns the history command
func HistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [entity-id]",
		Short: "Show the change log",
		Long:  "Show who created elements and instances and who changed prices and values. Without an ID the whole log is listed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityID := ""
			if len(args) == 1 {
				entityID = args[0]
			}

			changes, err := wire.ChangeLog().List(commandContext(cmd), entityID)
			if err != nil {
				return fmt.Errorf("failed to read change log: %w", err)
			}
			if len(changes) == 0 {
				fmt.Println("No changes recorded")
				return nil
			}

			for _, c := range changes {
				fmt.Printf("%s  %-8s %-12s %s %s", c.CreatedAt, c.ID, c.Actor, c.Action, c.EntityID)
				if c.FieldName != "" {
					fmt.Printf(" %s: %q -> %q", c.FieldName, c.OldValue, c.NewValue)
				}
				fmt.Println()
			}
			return nil
		},
	}
}
