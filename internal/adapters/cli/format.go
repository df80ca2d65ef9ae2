// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"strconv"

	"github.com/fatih/color"

	"github.com/example/elemcat/internal/core/template"
)

const rule = "────────────────────────────────────────────────────────────────"

// stateBadge colors a version state: green when active, red when rejected,
// yellow while pending.
func stateBadge(state string, active bool) string {
	switch {
	case active:
		return color.New(color.FgGreen).Sprintf("%s ACTIVE", state)
	case state == string(template.StateRejected):
		return color.New(color.FgRed).Sprint(state)
	default:
		return color.New(color.FgYellow).Sprint(state)
	}
}

// formatPrice renders an optional price.
func formatPrice(price *float64) string {
	if price == nil {
		return "-"
	}
	return strconv.FormatFloat(*price, 'f', 2, 64)
}

// orDash substitutes "-" for empty strings in tables.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func warn(format string, args ...any) string {
	return color.New(color.FgYellow).Sprintf(format, args...)
}
