package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/elemcat/internal/ports/primary"
	"github.com/example/elemcat/internal/wire"
)

var elementCmd = &cobra.Command{
	Use:   "element",
	Short: "Manage catalog elements",
	Long:  "Create, list, show, and price the constructive elements of the catalog",
}

var elementCreateCmd = &cobra.Command{
	Use:   "create [code] [name]",
	Short: "Create a new catalog element",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		price, err := priceFlag(cmd)
		if err != nil {
			return err
		}

		return wire.CatalogAdapter().CreateElement(commandContext(cmd), primary.CreateElementRequest{
			Code:     args[0],
			Name:     args[1],
			Category: category,
			Price:    price,
		})
	},
}

var elementListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog elements",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		return wire.CatalogAdapter().ListElements(commandContext(cmd), category)
	},
}

var elementShowCmd = &cobra.Command{
	Use:   "show [code]",
	Short: "Show an element with its variables and options",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.CatalogAdapter().ShowElement(commandContext(cmd), args[0])
		return err
	},
}

var elementPriceCmd = &cobra.Command{
	Use:   "price [element-id] [price]",
	Short: "Set or clear an element's reference price",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		elementID := args[0]
		if err := validateEntityID(elementID, "element"); err != nil {
			return err
		}

		clearPrice, _ := cmd.Flags().GetBool("clear")
		var price *float64
		switch {
		case clearPrice && len(args) == 2:
			return fmt.Errorf("use either a price or --clear, not both")
		case clearPrice:
		case len(args) == 2:
			p, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", args[1], err)
			}
			price = &p
		default:
			return fmt.Errorf("a price or --clear is required")
		}

		return wire.CatalogAdapter().SetPrice(commandContext(cmd), elementID, price)
	},
}

// priceFlag returns the --price flag, or nil when it was not given.
func priceFlag(cmd *cobra.Command) (*float64, error) {
	if !cmd.Flags().Changed("price") {
		return nil, nil
	}
	p, err := cmd.Flags().GetFloat64("price")
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ElementCmd returns the element command
func ElementCmd() *cobra.Command {
	elementCreateCmd.Flags().StringP("category", "c", "", "Element category (see 'elemcat category list')")
	elementCreateCmd.Flags().Float64P("price", "p", 0, "Reference price")
	elementListCmd.Flags().StringP("category", "c", "", "Filter by category")
	elementPriceCmd.Flags().Bool("clear", false, "Remove the reference price")

	elementCmd.AddCommand(elementCreateCmd)
	elementCmd.AddCommand(elementListCmd)
	elementCmd.AddCommand(elementShowCmd)
	elementCmd.AddCommand(elementPriceCmd)

	return elementCmd
}
