package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/example/elemcat/internal/ports/primary"
)

// entityPrefixes maps entity types to their expected ID prefixes
var entityPrefixes = map[string]string{
	"element":  "ELEM",
	"variable": "VAR",
	"option":   "OPT",
	"version":  "VER",
	"project":  "PROJ",
	"instance": "PE",
}

// validateEntityID checks if an ID has the correct prefix format.
// Returns an error with helpful message if the ID appears to be a short ID.
func validateEntityID(id, entityType string) error {
	if id == "" {
		return nil // Empty is OK, let other validation handle required fields
	}

	prefix, ok := entityPrefixes[entityType]
	if !ok {
		return nil
	}

	expectedPattern := prefix + "-"
	if strings.HasPrefix(id, expectedPattern) {
		return nil
	}

	if matched, _ := regexp.MatchString(`^\d+$`, id); matched {
		return fmt.Errorf("invalid %s ID '%s'. Use full ID format: %s-%s", entityType, id, prefix, id)
	}

	if strings.HasPrefix(strings.ToUpper(id), expectedPattern) {
		return fmt.Errorf("invalid %s ID '%s'. IDs are case-sensitive, use: %s", entityType, id, strings.ToUpper(id))
	}

	return fmt.Errorf("invalid %s ID '%s'. Expected format: %s-xxx", entityType, id, prefix)
}

// parseOption reads an option flag of the form value[=label][*]. A trailing
// asterisk marks the default option.
func parseOption(raw string, order int) (primary.OptionInput, error) {
	opt := primary.OptionInput{DisplayOrder: order}

	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, "*") {
		opt.IsDefault = true
		raw = strings.TrimSpace(strings.TrimSuffix(raw, "*"))
	}

	value, label, _ := strings.Cut(raw, "=")
	opt.Value = strings.TrimSpace(value)
	opt.Label = strings.TrimSpace(label)
	if opt.Value == "" {
		return opt, fmt.Errorf("invalid option %q: value is required", raw)
	}
	return opt, nil
}

// parseOptions parses repeated --option flags in display order.
func parseOptions(raw []string) ([]primary.OptionInput, error) {
	options := make([]primary.OptionInput, 0, len(raw))
	for i, r := range raw {
		opt, err := parseOption(r, i+1)
		if err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	return options, nil
}
