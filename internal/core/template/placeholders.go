package template

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ExtractPlaceholders returns the identifiers of every {identifier} token in
// text, in order of first appearance, without duplicates.
func ExtractPlaceholders(text string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		out = append(out, m[1])
	}
	return out
}

// NormalizePlaceholder accepts "{name}" or "name" and returns "name".
// ok is false when the result is not a valid identifier.
func NormalizePlaceholder(raw string) (name string, ok bool) {
	name = strings.TrimSpace(raw)
	if strings.HasPrefix(name, "{") && strings.HasSuffix(name, "}") {
		name = strings.TrimSpace(name[1 : len(name)-1])
	}
	return name, identifierPattern.MatchString(name)
}

// Token returns the literal token for a placeholder identifier.
func Token(name string) string {
	return "{" + name + "}"
}

// Unbound returns the placeholders occurring in text that are not in bound.
func Unbound(text string, bound []string) []string {
	have := make(map[string]bool, len(bound))
	for _, b := range bound {
		have[b] = true
	}
	var missing []string
	for _, p := range ExtractPlaceholders(text) {
		if !have[p] {
			missing = append(missing, p)
		}
	}
	return missing
}

// VariableSpec is the minimal variable info needed for template validation.
type VariableSpec struct {
	Name     string
	Required bool
}

// Validation reports how a template's placeholders line up with an element's variables.
type Validation struct {
	Placeholders    []string
	Undefined       []string // placeholders with no same-named variable
	MissingRequired []string // required variables absent from the text
}

// Valid reports whether the template has no undefined placeholders and
// mentions every required variable.
func (v Validation) Valid() bool {
	return len(v.Undefined) == 0 && len(v.MissingRequired) == 0
}

// ValidateTemplate compares the placeholders of text with the element's variables.
func ValidateTemplate(text string, vars []VariableSpec) Validation {
	v := Validation{Placeholders: ExtractPlaceholders(text)}

	names := make(map[string]bool, len(vars))
	for _, vs := range vars {
		names[vs.Name] = true
	}
	used := make(map[string]bool, len(v.Placeholders))
	for _, p := range v.Placeholders {
		used[p] = true
		if !names[p] {
			v.Undefined = append(v.Undefined, p)
		}
	}
	for _, vs := range vars {
		if vs.Required && !used[vs.Name] {
			v.MissingRequired = append(v.MissingRequired, vs.Name)
		}
	}
	return v
}
