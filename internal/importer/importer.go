// Package importer loads catalog elements, their variables and description
// templates from a YAML document through the primary ports.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/example/elemcat/internal/core/errkind"
	"github.com/example/elemcat/internal/ctxutil"
	"github.com/example/elemcat/internal/logging"
	"github.com/example/elemcat/internal/ports/primary"
)

// Document is the root of an import file.
type Document struct {
	Author   string    `yaml:"author,omitempty"`
	Elements []Element `yaml:"elements"`
}

// Element describes one catalog element to import.
type Element struct {
	Code      string     `yaml:"code"`
	Name      string     `yaml:"name"`
	Category  string     `yaml:"category,omitempty"`
	Price     *float64   `yaml:"price,omitempty"`
	Variables []Variable `yaml:"variables,omitempty"`
	Templates []Template `yaml:"templates,omitempty"`
}

// Variable describes one element variable.
type Variable struct {
	Name         string   `yaml:"name"`
	Type         string   `yaml:"type"`
	Unit         string   `yaml:"unit,omitempty"`
	DefaultValue string   `yaml:"default_value,omitempty"`
	Required     bool     `yaml:"required,omitempty"`
	Options      []Option `yaml:"options,omitempty"`
}

// Option describes one selectable value of a choice variable.
type Option struct {
	Value   string `yaml:"value"`
	Label   string `yaml:"label,omitempty"`
	Default bool   `yaml:"default,omitempty"`
}

// Template describes a description template proposal. Placeholders named
// after a variable are bound automatically; Bindings maps the remaining
// placeholders to variable names. With Activate set the version is approved
// until it becomes active.
type Template struct {
	Text     string            `yaml:"text"`
	Bindings map[string]string `yaml:"bindings,omitempty"`
	Activate bool              `yaml:"activate,omitempty"`
}

// Report summarizes an import run.
type Report struct {
	Created  []string // element codes
	Skipped  []string // element codes that already existed
	Versions []string // version IDs proposed
	Active   []string // version IDs activated
}

// Importer drives the catalog and template ports from an import document.
type Importer struct {
	catalog   primary.CatalogService
	templates primary.TemplateService
	log       *logging.Logger
}

// New creates an Importer.
func New(catalog primary.CatalogService, templates primary.TemplateService, log *logging.Logger) *Importer {
	return &Importer{
		catalog:   catalog,
		templates: templates,
		log:       log.With("component", "importer"),
	}
}

// Parse decodes an import document. Unknown keys are rejected.
func Parse(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, fmt.Errorf("failed to parse import document: %w", err)
	}
	return &doc, nil
}

// Import parses r and imports every element in it.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*Report, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return im.ImportDocument(ctx, doc)
}

// ImportDocument imports the elements of doc in order. Elements whose code
// already exists are skipped. The first failure stops the run; the report
// covers what was done before it.
func (im *Importer) ImportDocument(ctx context.Context, doc *Document) (*Report, error) {
	if doc.Author != "" {
		ctx = ctxutil.WithActor(ctx, doc.Author)
	}

	report := &Report{}
	for _, el := range doc.Elements {
		if err := im.importElement(ctx, el, report); err != nil {
			return report, fmt.Errorf("element %s: %w", el.Code, err)
		}
	}

	im.log.Info("import finished",
		"created", len(report.Created),
		"skipped", len(report.Skipped),
		"versions", len(report.Versions),
		"active", len(report.Active),
	)
	return report, nil
}

func (im *Importer) importElement(ctx context.Context, el Element, report *Report) error {
	if _, err := im.catalog.GetElement(ctx, el.Code); err == nil {
		im.log.Debug("element exists, skipping", "code", el.Code)
		report.Skipped = append(report.Skipped, el.Code)
		return nil
	} else if !errors.Is(err, errkind.ErrNotFound) {
		return err
	}

	created, err := im.catalog.CreateElement(ctx, primary.CreateElementRequest{
		Code:     el.Code,
		Name:     el.Name,
		Category: el.Category,
		Price:    el.Price,
	})
	if err != nil {
		return err
	}
	report.Created = append(report.Created, el.Code)

	variableIDs := make(map[string]string, len(el.Variables))
	for i, v := range el.Variables {
		options := make([]primary.OptionInput, len(v.Options))
		for j, o := range v.Options {
			options[j] = primary.OptionInput{Value: o.Value, Label: o.Label, DisplayOrder: j + 1, IsDefault: o.Default}
		}
		resp, err := im.catalog.AddVariable(ctx, primary.AddVariableRequest{
			ElementID:    created.ElementID,
			Name:         v.Name,
			Type:         v.Type,
			Unit:         v.Unit,
			DefaultValue: v.DefaultValue,
			Required:     v.Required,
			DisplayOrder: i + 1,
			Options:      options,
		})
		if err != nil {
			return fmt.Errorf("variable %s: %w", v.Name, err)
		}
		variableIDs[v.Name] = resp.VariableID
	}

	for _, tpl := range el.Templates {
		if err := im.importTemplate(ctx, created.ElementID, tpl, variableIDs, report); err != nil {
			return err
		}
	}
	return nil
}

func (im *Importer) importTemplate(ctx context.Context, elementID string, tpl Template, variableIDs map[string]string, report *Report) error {
	proposed, err := im.templates.ProposeTemplate(ctx, primary.ProposeTemplateRequest{
		ElementID:    elementID,
		TemplateText: tpl.Text,
	})
	if err != nil {
		return fmt.Errorf("template: %w", err)
	}
	versionID := proposed.VersionID
	report.Versions = append(report.Versions, versionID)

	bound, err := im.templates.AutoBind(ctx, versionID)
	if err != nil {
		return fmt.Errorf("template %s: %w", versionID, err)
	}
	position := len(bound) + 1
	autoBound := make(map[string]bool, len(bound))
	for _, m := range bound {
		autoBound[m.Placeholder] = true
	}

	// Map iteration order is random; bind explicit placeholders by name.
	placeholders := make([]string, 0, len(tpl.Bindings))
	for p := range tpl.Bindings {
		if !autoBound[p] {
			placeholders = append(placeholders, p)
		}
	}
	sort.Strings(placeholders)
	for _, p := range placeholders {
		variableID, ok := variableIDs[tpl.Bindings[p]]
		if !ok {
			return fmt.Errorf("template %s: %w: binding %s names unknown variable %s", versionID, errkind.ErrNotFound, p, tpl.Bindings[p])
		}
		if _, err := im.templates.BindPlaceholder(ctx, primary.BindPlaceholderRequest{
			VersionID:   versionID,
			VariableID:  variableID,
			Placeholder: p,
			Position:    position,
		}); err != nil {
			return fmt.Errorf("template %s: %w", versionID, err)
		}
		position++
	}

	if !tpl.Activate {
		return nil
	}
	for {
		resp, err := im.templates.Approve(ctx, primary.ApproveRequest{VersionID: versionID, Comment: "import"})
		if err != nil {
			return fmt.Errorf("template %s: %w", versionID, err)
		}
		if resp.Active {
			report.Active = append(report.Active, versionID)
			return nil
		}
	}
}
