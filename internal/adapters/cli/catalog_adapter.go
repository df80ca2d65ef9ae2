package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/example/elemcat/internal/ports/primary"
)

// CatalogAdapter is a thin adapter that translates CLI operations to CatalogService calls.
type CatalogAdapter struct {
	service primary.CatalogService
	out     io.Writer
}

// NewCatalogAdapter creates a new CatalogAdapter with the given service.
func NewCatalogAdapter(service primary.CatalogService, out io.Writer) *CatalogAdapter {
	return &CatalogAdapter{
		service: service,
		out:     out,
	}
}

// CreateElement creates a catalog element.
func (a *CatalogAdapter) CreateElement(ctx context.Context, req primary.CreateElementRequest) error {
	resp, err := a.service.CreateElement(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created element %s: %s (%s)\n", resp.ElementID, resp.Element.Code, resp.Element.Name)
	return nil
}

// ListElements lists elements with an optional category filter.
func (a *CatalogAdapter) ListElements(ctx context.Context, category string) error {
	elements, err := a.service.ListElements(ctx, primary.ElementFilters{Category: category})
	if err != nil {
		return fmt.Errorf("failed to list elements: %w", err)
	}

	if len(elements) == 0 {
		fmt.Fprintln(a.out, "No elements found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %-14s %-28s %10s %s\n", "ID", "CODE", "CATEGORY", "PRICE", "NAME")
	fmt.Fprintln(a.out, rule)
	for _, e := range elements {
		fmt.Fprintf(a.out, "%-10s %-14s %-28s %10s %s\n", e.ID, e.Code, orDash(e.Category), formatPrice(e.Price), e.Name)
	}
	fmt.Fprintln(a.out)

	return nil
}

// ShowElement displays an element and its variables.
func (a *CatalogAdapter) ShowElement(ctx context.Context, code string) (*primary.Element, error) {
	element, err := a.service.GetElement(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get element: %w", err)
	}
	variables, err := a.service.GetVariables(ctx, element.ID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get variables: %w", err)
	}

	fmt.Fprintf(a.out, "\nElement:  %s\n", element.ID)
	fmt.Fprintf(a.out, "Code:     %s\n", element.Code)
	fmt.Fprintf(a.out, "Name:     %s\n", element.Name)
	if element.Category != "" {
		fmt.Fprintf(a.out, "Category: %s (%s)\n", element.Category, element.Group)
	}
	fmt.Fprintf(a.out, "Price:    %s\n", formatPrice(element.Price))
	fmt.Fprintf(a.out, "Created:  %s by %s\n", element.CreatedAt, element.CreatedBy)

	if len(variables) > 0 {
		fmt.Fprintln(a.out, "\nVariables:")
		for _, v := range variables {
			a.printVariable(v)
		}
	}
	fmt.Fprintln(a.out)

	return element, nil
}

// SetPrice sets or clears an element's price.
func (a *CatalogAdapter) SetPrice(ctx context.Context, elementID string, price *float64) error {
	err := a.service.UpdateElementPrice(ctx, primary.UpdateElementPriceRequest{ElementID: elementID, Price: price})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Element %s price set to %s\n", elementID, formatPrice(price))
	return nil
}

// AddVariable adds a variable with its options.
func (a *CatalogAdapter) AddVariable(ctx context.Context, req primary.AddVariableRequest) error {
	resp, err := a.service.AddVariable(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Added variable %s: %s (%s", resp.VariableID, resp.Variable.Name, resp.Variable.Type)
	if n := len(resp.Variable.Options); n > 0 {
		fmt.Fprintf(a.out, ", %d options", n)
	}
	fmt.Fprintln(a.out, ")")
	return nil
}

// ListVariables lists an element's variables with their options.
func (a *CatalogAdapter) ListVariables(ctx context.Context, elementID string) error {
	variables, err := a.service.GetVariables(ctx, elementID, true)
	if err != nil {
		return fmt.Errorf("failed to list variables: %w", err)
	}

	if len(variables) == 0 {
		fmt.Fprintln(a.out, "No variables found")
		return nil
	}
	for _, v := range variables {
		a.printVariable(v)
	}
	return nil
}

// AddOption adds an option to a choice variable.
func (a *CatalogAdapter) AddOption(ctx context.Context, req primary.AddVariableOptionRequest) error {
	resp, err := a.service.AddVariableOption(ctx, req)
	if err != nil {
		return err
	}

	suffix := ""
	if resp.Option.IsDefault {
		suffix = " (default)"
	}
	fmt.Fprintf(a.out, "✓ Added option %s: %s%s\n", resp.OptionID, resp.Option.Value, suffix)
	return nil
}

// SetDefaultOption makes an option the variable's default.
func (a *CatalogAdapter) SetDefaultOption(ctx context.Context, variableID, optionID string) error {
	if err := a.service.SetDefaultOption(ctx, variableID, optionID); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Option %s is now the default of %s\n", optionID, variableID)
	return nil
}

// ListCategories prints the category enumeration with groups.
func (a *CatalogAdapter) ListCategories(ctx context.Context) {
	fmt.Fprintf(a.out, "\n%-40s %s\n", "CATEGORY", "GROUP")
	fmt.Fprintln(a.out, rule)
	for _, c := range a.service.ListCategories(ctx) {
		fmt.Fprintf(a.out, "%-40s %s\n", c.Name, c.Group)
	}
	fmt.Fprintln(a.out)
}

func (a *CatalogAdapter) printVariable(v *primary.Variable) {
	var attrs []string
	attrs = append(attrs, v.Type)
	if v.Unit != "" {
		attrs = append(attrs, "unit "+v.Unit)
	}
	if v.Required {
		attrs = append(attrs, "required")
	}
	fmt.Fprintf(a.out, "  %-10s %-24s %s\n", v.ID, v.Name, strings.Join(attrs, ", "))

	for _, o := range v.Options {
		marker := " "
		if o.IsDefault {
			marker = "*"
		}
		fmt.Fprintf(a.out, "      %s %-10s %s\n", marker, o.ID, o.Value)
	}
}
