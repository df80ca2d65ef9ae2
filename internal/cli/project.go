package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/elemcat/internal/ports/primary"
	"github.com/example/elemcat/internal/wire"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  "Create, list, and show the construction projects that instantiate catalog elements",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [code] [name]",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		location, _ := cmd.Flags().GetString("location")

		return wire.ProjectAdapter().Create(commandContext(cmd), primary.CreateProjectRequest{
			Code:      args[0],
			Name:      args[1],
			Status:    status,
			StartDate: start,
			EndDate:   end,
			Location:  location,
		})
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ProjectAdapter().List(commandContext(cmd))
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show [code]",
	Short: "Show a project with its element instances and values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.ProjectAdapter().Show(commandContext(cmd), args[0])
		return err
	},
}

// ProjectCmd returns the project command
func ProjectCmd() *cobra.Command {
	projectCreateCmd.Flags().StringP("status", "s", "", "Project status (default: active)")
	projectCreateCmd.Flags().StringP("location", "l", "", "Project location")
	projectCreateCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	projectCreateCmd.Flags().String("end", "", "End date (YYYY-MM-DD)")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)

	return projectCmd
}
