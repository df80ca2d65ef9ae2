package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/elemcat/internal/ports/primary"
	"github.com/example/elemcat/internal/wire"
)

var variableCmd = &cobra.Command{
	Use:   "variable",
	Short: "Manage element variables and their options",
}

var variableAddCmd = &cobra.Command{
	Use:   "add [element-id] [name]",
	Short: "Add a variable to an element",
	Long: `Add a variable to an element.

Choice variables take their options with repeated --option flags of the form
value[=label][*]; a trailing * marks the default option:

  elemcat variable add ELEM-001 tipo_vidrio -t single_choice \
    --option 'Templado*' --option 'DBE=Doble Bajo Emisivo'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		elementID := args[0]
		if err := validateEntityID(elementID, "element"); err != nil {
			return err
		}

		varType, _ := cmd.Flags().GetString("type")
		unit, _ := cmd.Flags().GetString("unit")
		defaultValue, _ := cmd.Flags().GetString("default")
		required, _ := cmd.Flags().GetBool("required")
		order, _ := cmd.Flags().GetInt("order")
		rawOptions, _ := cmd.Flags().GetStringArray("option")

		options, err := parseOptions(rawOptions)
		if err != nil {
			return err
		}

		return wire.CatalogAdapter().AddVariable(commandContext(cmd), primary.AddVariableRequest{
			ElementID:    elementID,
			Name:         args[1],
			Type:         varType,
			Unit:         unit,
			DefaultValue: defaultValue,
			Required:     required,
			DisplayOrder: order,
			Options:      options,
		})
	},
}

var variableListCmd = &cobra.Command{
	Use:   "list [element-id]",
	Short: "List an element's variables with their options",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "element"); err != nil {
			return err
		}
		return wire.CatalogAdapter().ListVariables(commandContext(cmd), args[0])
	},
}

var variableOptionCmd = &cobra.Command{
	Use:   "option [variable-id] [value[=label][*]]",
	Short: "Add an option to a choice variable",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		variableID := args[0]
		if err := validateEntityID(variableID, "variable"); err != nil {
			return err
		}

		order, _ := cmd.Flags().GetInt("order")
		opt, err := parseOption(args[1], order)
		if err != nil {
			return err
		}

		return wire.CatalogAdapter().AddOption(commandContext(cmd), primary.AddVariableOptionRequest{
			VariableID:   variableID,
			Value:        opt.Value,
			Label:        opt.Label,
			DisplayOrder: opt.DisplayOrder,
			IsDefault:    opt.IsDefault,
		})
	},
}

var variableDefaultCmd = &cobra.Command{
	Use:   "default [variable-id] [option-id]",
	Short: "Make an option the variable's default",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "variable"); err != nil {
			return err
		}
		if err := validateEntityID(args[1], "option"); err != nil {
			return err
		}
		return wire.CatalogAdapter().SetDefaultOption(commandContext(cmd), args[0], args[1])
	},
}

// VariableCmd returns the variable command
func VariableCmd() *cobra.Command {
	variableAddCmd.Flags().StringP("type", "t", "text", "Variable type (text, numeric, single_choice, multi_choice)")
	variableAddCmd.Flags().StringP("unit", "u", "", "Unit of measure")
	variableAddCmd.Flags().String("default", "", "Default value")
	variableAddCmd.Flags().BoolP("required", "r", false, "Mark the variable as required")
	variableAddCmd.Flags().Int("order", 0, "Display order")
	variableAddCmd.Flags().StringArrayP("option", "o", nil, "Option value[=label][*] (repeatable)")
	variableOptionCmd.Flags().Int("order", 0, "Display order")

	variableCmd.AddCommand(variableAddCmd)
	variableCmd.AddCommand(variableListCmd)
	variableCmd.AddCommand(variableOptionCmd)
	variableCmd.AddCommand(variableDefaultCmd)

	return variableCmd
}
