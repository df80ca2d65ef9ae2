package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/elemcat/internal/ports/primary"
	"github.com/example/elemcat/internal/wire"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Propose, bind, and approve description templates",
	Long: `Manage the versioned description templates of catalog elements.

A proposal starts as a draft (S0) and advances one state per approval until it
becomes the element's active version (S3). Any pending version can be rejected.`,
}

var templateProposeCmd = &cobra.Command{
	Use:   "propose [element-id] [template-text]",
	Short: "Propose a new template version",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "element"); err != nil {
			return err
		}
		text := strings.Join(args[1:], " ")
		return wire.TemplateAdapter().Propose(commandContext(cmd), args[0], text)
	},
}

var templateBindCmd = &cobra.Command{
	Use:   "bind [version-id] [placeholder] [variable-id]",
	Short: "Bind a placeholder to a variable",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "version"); err != nil {
			return err
		}
		if err := validateEntityID(args[2], "variable"); err != nil {
			return err
		}
		position, _ := cmd.Flags().GetInt("position")

		return wire.TemplateAdapter().Bind(commandContext(cmd), primary.BindPlaceholderRequest{
			VersionID:   args[0],
			Placeholder: args[1],
			VariableID:  args[2],
			Position:    position,
		})
	},
}

var templateAutoBindCmd = &cobra.Command{
	Use:   "autobind [version-id]",
	Short: "Bind placeholders that are named after a variable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "version"); err != nil {
			return err
		}
		return wire.TemplateAdapter().AutoBind(commandContext(cmd), args[0])
	},
}

var templateApproveCmd = &cobra.Command{
	Use:   "approve [version-id]",
	Short: "Record one approval of a pending version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "version"); err != nil {
			return err
		}
		comment, _ := cmd.Flags().GetString("comment")
		return wire.TemplateAdapter().Approve(commandContext(cmd), args[0], comment)
	},
}

var templateRejectCmd = &cobra.Command{
	Use:   "reject [version-id]",
	Short: "Reject a pending version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "version"); err != nil {
			return err
		}
		reason, _ := cmd.Flags().GetString("reason")
		return wire.TemplateAdapter().Reject(commandContext(cmd), args[0], reason)
	},
}

var templateShowCmd = &cobra.Command{
	Use:   "show [version-id]",
	Short: "Show a version with its bindings and approval history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "version"); err != nil {
			return err
		}
		_, err := wire.TemplateAdapter().Show(commandContext(cmd), args[0])
		return err
	},
}

var templateListCmd = &cobra.Command{
	Use:   "list [element-id]",
	Short: "List an element's template versions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "element"); err != nil {
			return err
		}
		return wire.TemplateAdapter().List(commandContext(cmd), args[0])
	},
}

var templatePendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List versions awaiting approval",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.TemplateAdapter().Pending(commandContext(cmd))
	},
}

var templateActiveCmd = &cobra.Command{
	Use:   "active [element-id]",
	Short: "Show the active version of an element",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "element"); err != nil {
			return err
		}
		return wire.TemplateAdapter().Active(commandContext(cmd), args[0])
	},
}

var templateValidateCmd = &cobra.Command{
	Use:   "validate [element-id] [template-text]",
	Short: "Check a template text against an element's variables",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "element"); err != nil {
			return err
		}
		valid, err := wire.TemplateAdapter().Validate(commandContext(cmd), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		if !valid {
			return fmt.Errorf("template does not match the variables of %s", args[0])
		}
		return nil
	},
}

// TemplateCmd returns the template command
func TemplateCmd() *cobra.Command {
	templateBindCmd.Flags().IntP("position", "p", 0, "Substitution order (default: next free position)")
	templateApproveCmd.Flags().StringP("comment", "m", "", "Approval comment")
	templateRejectCmd.Flags().StringP("reason", "r", "", "Rejection reason")

	templateCmd.AddCommand(templateProposeCmd)
	templateCmd.AddCommand(templateBindCmd)
	templateCmd.AddCommand(templateAutoBindCmd)
	templateCmd.AddCommand(templateApproveCmd)
	templateCmd.AddCommand(templateRejectCmd)
	templateCmd.AddCommand(templateShowCmd)
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templatePendingCmd)
	templateCmd.AddCommand(templateActiveCmd)
	templateCmd.AddCommand(templateValidateCmd)

	return templateCmd
}
