package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/example/elemcat/internal/adapters/sqlite"
	"github.com/example/elemcat/internal/app"
	"github.com/example/elemcat/internal/core/errkind"
	"github.com/example/elemcat/internal/core/template"
	"github.com/example/elemcat/internal/ctxutil"
	"github.com/example/elemcat/internal/db"
	"github.com/example/elemcat/internal/logging"
	"github.com/example/elemcat/internal/ports/primary"
)

// stack wires the four services over one in-memory database.
type stack struct {
	catalog  *app.CatalogServiceImpl
	template *app.TemplateServiceImpl
	project  *app.ProjectServiceImpl
	render   *app.RenderServiceImpl
	changes  *sqlite.LogWriterAdapter
}

func newStack(t *testing.T) *stack {
	t.Helper()

	database, err := db.Open(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	log := logging.Nop()
	changes := sqlite.NewLogWriterAdapter(database)
	elements := sqlite.NewElementRepository(database, changes)
	variables := sqlite.NewVariableRepository(database)
	versions := sqlite.NewVersionRepository(database)
	projects := sqlite.NewProjectRepository(database)
	instances := sqlite.NewProjectElementRepository(database, changes)
	rendered := sqlite.NewRenderedRepository(database)

	return &stack{
		catalog:  app.NewCatalogService(elements, variables, log),
		template: app.NewTemplateService(elements, variables, versions, template.DefaultPolicy(), log),
		project:  app.NewProjectService(projects, instances, elements, variables, versions, log),
		render:   app.NewRenderService(rendered, 3, log),
		changes:  changes,
	}
}

// glassFixture holds the IDs created by setupGlassWall.
type glassFixture struct {
	elementID  string
	variableID string
	versionID  string
	projectID  string
	instanceID string
}

// setupGlassWall creates element MC-01 with variable tipo_vidrio, an active
// template bound through {vidrio_ph}, a project and one instance.
func setupGlassWall(t *testing.T, s *stack) glassFixture {
	t.Helper()
	ctx := context.Background()
	var f glassFixture

	el, err := s.catalog.CreateElement(ctx, primary.CreateElementRequest{Code: "MC-01", Name: "Muro cortina", Category: "MURO CORTINA"})
	if err != nil {
		t.Fatalf("CreateElement failed: %v", err)
	}
	f.elementID = el.ElementID

	v, err := s.catalog.AddVariable(ctx, primary.AddVariableRequest{
		ElementID: f.elementID,
		Name:      "tipo_vidrio",
		Type:      "single_choice",
		Options: []primary.OptionInput{
			{Value: "Templado", IsDefault: true},
			{Value: "Doble Bajo Emisivo"},
		},
	})
	if err != nil {
		t.Fatalf("AddVariable failed: %v", err)
	}
	f.variableID = v.VariableID

	f.versionID = activateTemplate(t, s, f.elementID, "Muro con vidrio {vidrio_ph}.", map[string]string{"vidrio_ph": f.variableID})

	p, err := s.project.CreateProject(ctx, primary.CreateProjectRequest{Code: "OBRA-1", Name: "Nave logística"})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	f.projectID = p.ProjectID

	pe, err := s.project.CreateProjectElement(ctx, primary.CreateProjectElementRequest{
		ProjectID: f.projectID, ElementID: f.elementID, VersionID: f.versionID, InstanceCode: "MC-01-N",
	})
	if err != nil {
		t.Fatalf("CreateProjectElement failed: %v", err)
	}
	f.instanceID = pe.ProjectElementID
	return f
}

// activateTemplate proposes text, binds the given placeholders in order and
// approves the version up to the final state.
func activateTemplate(t *testing.T, s *stack, elementID, text string, bindings map[string]string) string {
	t.Helper()
	ctx := context.Background()

	proposed, err := s.template.ProposeTemplate(ctx, primary.ProposeTemplateRequest{ElementID: elementID, TemplateText: text})
	if err != nil {
		t.Fatalf("ProposeTemplate failed: %v", err)
	}

	position := 1
	for _, placeholder := range template.ExtractPlaceholders(text) {
		variableID, ok := bindings[placeholder]
		if !ok {
			continue
		}
		_, err := s.template.BindPlaceholder(ctx, primary.BindPlaceholderRequest{
			VersionID: proposed.VersionID, VariableID: variableID, Placeholder: placeholder, Position: position,
		})
		if err != nil {
			t.Fatalf("BindPlaceholder failed: %v", err)
		}
		position++
	}

	for i := 0; i < template.DefaultRequiredApprovals; i++ {
		if _, err := s.template.Approve(ctx, primary.ApproveRequest{VersionID: proposed.VersionID, Approver: fmt.Sprintf("revisor-%d", i+1)}); err != nil {
			t.Fatalf("approval %d failed: %v", i+1, err)
		}
	}
	return proposed.VersionID
}

func TestScenario_UnvaluedPlaceholderRendersSentinel(t *testing.T) {
	s := newStack(t)
	f := setupGlassWall(t, s)

	r, err := s.render.Render(context.Background(), f.instanceID)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if r.Text != "Muro con vidrio [SIN VALOR]." {
		t.Errorf("unexpected text %q", r.Text)
	}
}

func TestScenario_SetValueThenRender(t *testing.T) {
	s := newStack(t)
	f := setupGlassWall(t, s)
	ctx := context.Background()

	if _, err := s.render.PersistRendered(ctx, f.instanceID); err != nil {
		t.Fatalf("PersistRendered failed: %v", err)
	}

	if _, err := s.project.SetValue(ctx, primary.SetValueRequest{ProjectElementID: f.instanceID, VariableID: f.variableID, Value: "Doble Bajo Emisivo"}); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	cached, err := s.render.GetRendered(ctx, f.instanceID)
	if err != nil {
		t.Fatalf("GetRendered failed: %v", err)
	}
	if !cached.IsStale {
		t.Error("expected value write to mark the cache stale")
	}

	first, err := s.render.Render(ctx, f.instanceID)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if first.Text != "Muro con vidrio Doble Bajo Emisivo." {
		t.Errorf("unexpected text %q", first.Text)
	}
	second, _ := s.render.Render(ctx, f.instanceID)
	if second.Text != first.Text {
		t.Error("expected repeated renders to agree")
	}

	result, err := s.render.PersistRendered(ctx, f.instanceID)
	if err != nil {
		t.Fatalf("PersistRendered failed: %v", err)
	}
	cached, _ = s.render.GetRendered(ctx, f.instanceID)
	if !result.Saved || cached.IsStale || cached.RenderedText != first.Text {
		t.Errorf("expected cache to hold %q and be fresh, got %q stale=%v", first.Text, cached.RenderedText, cached.IsStale)
	}
}

func TestScenario_SecondActivationDemotesFirst(t *testing.T) {
	s := newStack(t)
	f := setupGlassWall(t, s)
	ctx := context.Background()

	second := activateTemplate(t, s, f.elementID, "Fachada de vidrio {vidrio_ph}.", map[string]string{"vidrio_ph": f.variableID})

	versions, err := s.template.ListVersions(ctx, f.elementID)
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	active := 0
	for _, v := range versions {
		if v.IsActive {
			active++
		}
		switch v.ID {
		case f.versionID:
			if v.IsActive {
				t.Error("expected first version demoted")
			}
		case second:
			if !v.IsActive {
				t.Error("expected second version active")
			}
		}
	}
	if active != 1 {
		t.Errorf("expected exactly one active version, got %d", active)
	}

	// Existing instances stay on the version they were created with.
	r, err := s.render.Render(ctx, f.instanceID)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if r.VersionID != f.versionID {
		t.Errorf("expected instance pinned to %s, got %s", f.versionID, r.VersionID)
	}

	_, err = s.template.Approve(ctx, primary.ApproveRequest{VersionID: second})
	if !errors.Is(err, errkind.ErrInvalidTransition) {
		t.Errorf("expected fourth approval to fail with ErrInvalidTransition, got %v", err)
	}
}

func TestScenario_DuplicateInstanceCode(t *testing.T) {
	s := newStack(t)
	f := setupGlassWall(t, s)
	ctx := context.Background()

	before, err := s.project.GetProjectElements(ctx, f.projectID)
	if err != nil {
		t.Fatalf("GetProjectElements failed: %v", err)
	}

	_, err = s.project.CreateProjectElement(ctx, primary.CreateProjectElementRequest{
		ProjectID: f.projectID, ElementID: f.elementID, VersionID: f.versionID, InstanceCode: "MC-01-N",
	})
	if !errors.Is(err, errkind.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	after, err := s.project.GetProjectElements(ctx, f.projectID)
	if err != nil {
		t.Fatalf("GetProjectElements failed: %v", err)
	}
	if len(after) != len(before) {
		t.Errorf("expected %d instances, got %d", len(before), len(after))
	}
}

func TestScenario_ReconcileClearsAllStale(t *testing.T) {
	s := newStack(t)
	f := setupGlassWall(t, s)
	ctx := context.Background()

	ids := []string{f.instanceID}
	for i := 2; i <= 6; i++ {
		pe, err := s.project.CreateProjectElement(ctx, primary.CreateProjectElementRequest{
			ProjectID: f.projectID, ElementID: f.elementID, VersionID: f.versionID, InstanceCode: fmt.Sprintf("MC-01-%d", i),
		})
		if err != nil {
			t.Fatalf("CreateProjectElement failed: %v", err)
		}
		ids = append(ids, pe.ProjectElementID)
		if i%2 == 0 {
			if _, err := s.project.SetValue(ctx, primary.SetValueRequest{ProjectElementID: pe.ProjectElementID, VariableID: f.variableID, Value: "Templado"}); err != nil {
				t.Fatalf("SetValue failed: %v", err)
			}
		}
	}

	result, err := s.render.ReconcileStale(ctx)
	if err != nil {
		t.Fatalf("ReconcileStale failed: %v", err)
	}
	if result.Scanned != len(ids) || result.Refreshed != len(ids) {
		t.Errorf("expected %d scanned and refreshed, got %d/%d", len(ids), result.Scanned, result.Refreshed)
	}

	for _, id := range ids {
		cached, err := s.render.GetRendered(ctx, id)
		if err != nil {
			t.Fatalf("GetRendered failed: %v", err)
		}
		if cached.IsStale {
			t.Errorf("expected %s fresh after sweep", id)
		}
		fresh, err := s.render.Render(ctx, id)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if cached.RenderedText != fresh.Text {
			t.Errorf("%s: cached %q, render %q", id, cached.RenderedText, fresh.Text)
		}
	}

	again, err := s.render.ReconcileStale(ctx)
	if err != nil {
		t.Fatalf("second ReconcileStale failed: %v", err)
	}
	if again.Scanned != 0 {
		t.Errorf("expected nothing left to scan, got %d", again.Scanned)
	}
}

func TestScenario_ApprovalBlockedByUnboundPlaceholder(t *testing.T) {
	s := newStack(t)
	f := setupGlassWall(t, s)
	ctx := context.Background()

	proposed, err := s.template.ProposeTemplate(ctx, primary.ProposeTemplateRequest{ElementID: f.elementID, TemplateText: "Vidrio {vidrio_ph} con {perfil}."})
	if err != nil {
		t.Fatalf("ProposeTemplate failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := s.template.Approve(ctx, primary.ApproveRequest{VersionID: proposed.VersionID}); err != nil {
			t.Fatalf("approval %d failed: %v", i+1, err)
		}
	}

	_, err = s.template.Approve(ctx, primary.ApproveRequest{VersionID: proposed.VersionID})
	if !errors.Is(err, errkind.ErrUnboundPlaceholder) {
		t.Fatalf("expected ErrUnboundPlaceholder, got %v", err)
	}

	active, err := s.template.GetActiveVersion(ctx, f.elementID)
	if err != nil {
		t.Fatalf("GetActiveVersion failed: %v", err)
	}
	if active.ID != f.versionID {
		t.Errorf("expected %s to remain active, got %s", f.versionID, active.ID)
	}
}

func TestScenario_ChangeLogRecordsActors(t *testing.T) {
	s := newStack(t)
	f := setupGlassWall(t, s)
	ctx := ctxutil.WithActor(context.Background(), "ana")

	if _, err := s.project.SetValue(ctx, primary.SetValueRequest{ProjectElementID: f.instanceID, VariableID: f.variableID, Value: "Templado"}); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if _, err := s.project.SetValue(ctx, primary.SetValueRequest{ProjectElementID: f.instanceID, VariableID: f.variableID, Value: "Laminado", Author: "luis"}); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	changes, err := s.changes.List(context.Background(), f.instanceID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(changes) != 3 {
		t.Fatalf("expected create plus two writes, got %d entries", len(changes))
	}
	if changes[0].Action != "create" {
		t.Errorf("expected create first, got %+v", changes[0])
	}
	if changes[1].Actor != "ana" || changes[1].NewValue != "Templado" {
		t.Errorf("unexpected first write %+v", changes[1])
	}
	if changes[2].Actor != "luis" || changes[2].OldValue != "Templado" || changes[2].NewValue != "Laminado" {
		t.Errorf("unexpected second write %+v", changes[2])
	}
}
