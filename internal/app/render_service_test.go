package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/example/elemcat/internal/core/errkind"
	"github.com/example/elemcat/internal/core/render"
	"github.com/example/elemcat/internal/ports/secondary"
)

func newTestRenderService() (*RenderServiceImpl, *mockRenderedRepository) {
	repo := newMockRenderedRepository()
	return NewRenderService(repo, 2, testLogger), repo
}

func glassInputs(id string, values map[string]string) *secondary.RenderInputsRecord {
	return &secondary.RenderInputsRecord{
		ProjectElementID: id,
		VersionID:        "VER-001",
		TemplateText:     "Muro con vidrio {vidrio_ph} de {espesor} mm.",
		Mappings: []*secondary.MappingRecord{
			{VersionID: "VER-001", VariableID: "VAR-001", Placeholder: "vidrio_ph", Position: 1},
			{VersionID: "VER-001", VariableID: "VAR-002", Placeholder: "espesor", Position: 2},
		},
		Values: values,
	}
}

// ============================================================================
// Render Tests
// ============================================================================

func TestRender_Substitutes(t *testing.T) {
	service, repo := newTestRenderService()
	repo.addInstance(glassInputs("PE-001", map[string]string{"VAR-001": "Templado", "VAR-002": "8"}))

	r, err := service.Render(context.Background(), "PE-001")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if r.Text != "Muro con vidrio Templado de 8 mm." {
		t.Errorf("unexpected text %q", r.Text)
	}
	if !r.Complete() {
		t.Error("expected complete rendering")
	}
	if repo.saveCalls != 0 {
		t.Error("expected Render not to touch the cache")
	}
}

func TestRender_MissingValueUsesSentinel(t *testing.T) {
	service, repo := newTestRenderService()
	repo.addInstance(glassInputs("PE-001", map[string]string{"VAR-001": "Templado", "VAR-002": ""}))

	r, err := service.Render(context.Background(), "PE-001")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	want := fmt.Sprintf("Muro con vidrio Templado de %s mm.", render.NoValue)
	if r.Text != want {
		t.Errorf("expected %q, got %q", want, r.Text)
	}
	if len(r.NoValue) != 1 || r.NoValue[0] != "espesor" {
		t.Errorf("expected NoValue [espesor], got %v", r.NoValue)
	}
}

func TestRender_UnknownInstance(t *testing.T) {
	service, _ := newTestRenderService()

	if _, err := service.Render(context.Background(), "PE-404"); !errors.Is(err, errkind.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// ============================================================================
// PersistRendered Tests
// ============================================================================

func TestPersistRendered_ClearsStale(t *testing.T) {
	service, repo := newTestRenderService()
	repo.addInstance(glassInputs("PE-001", map[string]string{"VAR-001": "Laminado", "VAR-002": "10"}))
	ctx := context.Background()

	result, err := service.PersistRendered(ctx, "PE-001")
	if err != nil {
		t.Fatalf("PersistRendered failed: %v", err)
	}
	if !result.Saved {
		t.Fatal("expected rendering to be saved")
	}

	cached, err := service.GetRendered(ctx, "PE-001")
	if err != nil {
		t.Fatalf("GetRendered failed: %v", err)
	}
	if cached.IsStale {
		t.Error("expected stale flag cleared")
	}
	if cached.RenderedText != result.Rendering.Text {
		t.Errorf("expected cached text %q, got %q", result.Rendering.Text, cached.RenderedText)
	}
}

func TestPersistRendered_ConcurrentWriteLeavesStale(t *testing.T) {
	service, repo := newTestRenderService()
	repo.addInstance(glassInputs("PE-001", map[string]string{"VAR-001": "Templado", "VAR-002": "8"}))
	repo.onLoad = repo.bump

	result, err := service.PersistRendered(context.Background(), "PE-001")
	if err != nil {
		t.Fatalf("PersistRendered failed: %v", err)
	}
	if result.Saved {
		t.Error("expected outdated rendering not to be saved")
	}
	if !repo.rows["PE-001"].IsStale {
		t.Error("expected row to stay stale")
	}
	if repo.rows["PE-001"].RenderedText != "" {
		t.Error("expected no text written")
	}
}

// ============================================================================
// ReconcileStale Tests
// ============================================================================

func TestReconcileStale(t *testing.T) {
	service, repo := newTestRenderService()
	for i := 1; i <= 5; i++ {
		repo.addInstance(glassInputs(fmt.Sprintf("PE-%03d", i), map[string]string{"VAR-001": "Templado"}))
	}
	repo.rows["PE-005"].IsStale = false
	ctx := context.Background()

	result, err := service.ReconcileStale(ctx)
	if err != nil {
		t.Fatalf("ReconcileStale failed: %v", err)
	}
	if result.Scanned != 4 || result.Refreshed != 4 || result.Skipped != 0 {
		t.Errorf("expected 4/4/0, got %d/%d/%d", result.Scanned, result.Refreshed, result.Skipped)
	}

	stale, _ := repo.ListStale(ctx)
	if len(stale) != 0 {
		t.Errorf("expected no stale rows left, got %v", stale)
	}
}

func TestReconcileStale_RacedRowsSkipped(t *testing.T) {
	service, repo := newTestRenderService()
	repo.addInstance(glassInputs("PE-001", map[string]string{}))
	repo.addInstance(glassInputs("PE-002", map[string]string{}))
	repo.onLoad = func(id string) {
		if id == "PE-002" {
			repo.bump(id)
		}
	}

	result, err := service.ReconcileStale(context.Background())
	if err != nil {
		t.Fatalf("ReconcileStale failed: %v", err)
	}
	if result.Refreshed != 1 || result.Skipped != 1 {
		t.Errorf("expected 1 refreshed and 1 skipped, got %d/%d", result.Refreshed, result.Skipped)
	}
	if !repo.rows["PE-002"].IsStale {
		t.Error("expected raced row to stay stale")
	}
}

func TestReconcileStale_FailedRowDoesNotStopSweep(t *testing.T) {
	service, repo := newTestRenderService()
	for i := 1; i <= 4; i++ {
		repo.addInstance(glassInputs(fmt.Sprintf("PE-%03d", i), map[string]string{"VAR-001": "Templado"}))
	}
	// A stale row whose inputs cannot be loaded.
	repo.rows["PE-009"] = &secondary.RenderedRecord{ProjectElementID: "PE-009", IsStale: true}
	ctx := context.Background()

	result, err := service.ReconcileStale(ctx)
	if err != nil {
		t.Fatalf("ReconcileStale failed: %v", err)
	}
	if result.Scanned != 5 || result.Refreshed != 4 || result.Failed != 1 {
		t.Errorf("expected 5 scanned, 4 refreshed, 1 failed, got %+v", result)
	}

	stale, _ := repo.ListStale(ctx)
	if len(stale) != 1 || stale[0] != "PE-009" {
		t.Errorf("expected only the failed row left stale, got %v", stale)
	}
}

func TestReconcileStale_CancelledKeepsCounts(t *testing.T) {
	service, repo := newTestRenderService()
	repo.addInstance(glassInputs("PE-001", map[string]string{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := service.ReconcileStale(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.Scanned != 1 || result.Refreshed != 0 {
		t.Errorf("expected partial counts, got %+v", result)
	}
}

func TestNewRenderService_DefaultWorkers(t *testing.T) {
	service := NewRenderService(newMockRenderedRepository(), 0, testLogger)
	if service.workers != DefaultReconcileWorkers {
		t.Errorf("expected %d workers, got %d", DefaultReconcileWorkers, service.workers)
	}
}
