package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/elemcat/internal/ports/primary"
	"github.com/example/elemcat/internal/wire"
)

var instanceCmd = &cobra.Command{
	Use:   "instance",
	Short: "Manage element instances inside projects",
}

var instanceCreateCmd = &cobra.Command{
	Use:   "create [project-id] [element-id] [instance-code]",
	Short: "Instantiate an element in a project",
	Long: `Instantiate an element in a project.

The instance is pinned to a template version for its whole life. Without
--version it is pinned to the element's active version.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		projectID, elementID := args[0], args[1]
		if err := validateEntityID(projectID, "project"); err != nil {
			return err
		}
		if err := validateEntityID(elementID, "element"); err != nil {
			return err
		}

		versionID, _ := cmd.Flags().GetString("version")
		name, _ := cmd.Flags().GetString("name")
		location, _ := cmd.Flags().GetString("location")

		if versionID == "" {
			active, err := wire.TemplateService().GetActiveVersion(ctx, elementID)
			if err != nil {
				return fmt.Errorf("no --version given and no active version: %w", err)
			}
			versionID = active.ID
		} else if err := validateEntityID(versionID, "version"); err != nil {
			return err
		}

		return wire.ProjectAdapter().CreateInstance(ctx, primary.CreateProjectElementRequest{
			ProjectID:    projectID,
			ElementID:    elementID,
			VersionID:    versionID,
			InstanceCode: args[2],
			InstanceName: name,
			Location:     location,
		})
	},
}

var instanceSetCmd = &cobra.Command{
	Use:   "set [instance-id] [variable-id] [value]",
	Short: "Set a variable value on an instance",
	Long: `Set a variable value on an instance.

Writes are last-write-wins. With --expect the write only succeeds when the
stored value is still at that revision.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "instance"); err != nil {
			return err
		}
		if err := validateEntityID(args[1], "variable"); err != nil {
			return err
		}
		expected, _ := cmd.Flags().GetInt("expect")

		return wire.ProjectAdapter().SetValue(commandContext(cmd), primary.SetValueRequest{
			ProjectElementID: args[0],
			VariableID:       args[1],
			Value:            args[2],
			ExpectedRevision: expected,
		})
	},
}

// InstanceCmd returns the instance command
func InstanceCmd() *cobra.Command {
	instanceCreateCmd.Flags().String("version", "", "Template version to pin (default: the active version)")
	instanceCreateCmd.Flags().StringP("name", "n", "", "Instance name")
	instanceCreateCmd.Flags().StringP("location", "l", "", "Location within the project")
	instanceSetCmd.Flags().Int("expect", 0, "Only write if the value is at this revision")

	instanceCmd.AddCommand(instanceCreateCmd)
	instanceCmd.AddCommand(instanceSetCmd)

	return instanceCmd
}
