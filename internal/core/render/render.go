// Package render contains the pure substitution logic that turns a template
// version plus instance values into a description.
// This is part of the Functional Core - no I/O, only pure functions.
package render

import (
	"sort"
	"strings"

	"github.com/example/elemcat/internal/core/template"
)

// NoValue is substituted for a bound placeholder whose value is missing or empty.
const NoValue = "[SIN VALOR]"

// Mapping binds a placeholder identifier to a variable at a position.
type Mapping struct {
	Placeholder string // bare identifier, without braces
	VariableID  string
	Position    int
}

// Input is everything a render depends on.
type Input struct {
	TemplateText string
	Mappings     []Mapping
	Values       map[string]string // variable id -> value
}

// Result is the rendered text plus diagnostics.
type Result struct {
	Text     string
	NoValue  []string // placeholders that fell back to NoValue, in position order
	Unmapped []string // {tokens} left untouched because no mapping exists
}

// Complete reports whether every placeholder got a real value.
func (r Result) Complete() bool {
	return len(r.NoValue) == 0 && len(r.Unmapped) == 0
}

// Render substitutes each mapped {placeholder} token in position order with
// the variable's value, or NoValue. Substitution is literal. Tokens without a
// mapping are left as they are.
func Render(in Input) Result {
	mappings := make([]Mapping, len(in.Mappings))
	copy(mappings, in.Mappings)
	sort.SliceStable(mappings, func(i, j int) bool {
		return mappings[i].Position < mappings[j].Position
	})

	// Build all replacements first so a value that happens to contain a
	// token is never substituted again.
	pairs := make([]string, 0, len(mappings)*2)
	mapped := make(map[string]bool, len(mappings))
	var res Result
	for _, m := range mappings {
		if mapped[m.Placeholder] {
			continue
		}
		mapped[m.Placeholder] = true

		value := in.Values[m.VariableID]
		if value == "" {
			value = NoValue
			res.NoValue = append(res.NoValue, m.Placeholder)
		}
		pairs = append(pairs, template.Token(m.Placeholder), value)
	}

	res.Text = in.TemplateText
	if len(pairs) > 0 {
		res.Text = strings.NewReplacer(pairs...).Replace(in.TemplateText)
	}

	for _, p := range template.ExtractPlaceholders(in.TemplateText) {
		if !mapped[p] {
			res.Unmapped = append(res.Unmapped, p)
		}
	}
	return res
}
