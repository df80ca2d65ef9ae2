package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/elemcat/internal/adapters/sqlite"
	"github.com/example/elemcat/internal/core/errkind"
	"github.com/example/elemcat/internal/ports/secondary"
)

func TestRenderedRepository_LoadInputs(t *testing.T) {
	db := setupTestDB(t)
	seedInstanceFixture(t, db)
	values := sqlite.NewProjectElementRepository(db, nil)
	repo := sqlite.NewRenderedRepository(db)
	ctx := context.Background()

	if err := values.UpsertValue(ctx, &secondary.ValueRecord{ProjectElementID: "PE-001", VariableID: "VAR-001", Value: "Templado", UpdatedBy: "t"}, 0); err != nil {
		t.Fatalf("UpsertValue failed: %v", err)
	}

	in, err := repo.LoadInputs(ctx, "PE-001")
	if err != nil {
		t.Fatalf("LoadInputs failed: %v", err)
	}
	if in.VersionID != "VER-001" || in.TemplateText != "Muro con vidrio {vidrio_ph}." {
		t.Errorf("unexpected template inputs %+v", in)
	}
	if len(in.Mappings) != 1 || in.Mappings[0].Placeholder != "vidrio_ph" {
		t.Errorf("unexpected mappings %+v", in.Mappings)
	}
	if in.Values["VAR-001"] != "Templado" {
		t.Errorf("expected value Templado, got %q", in.Values["VAR-001"])
	}
	if in.InputRevision != 1 {
		t.Errorf("expected input revision 1, got %d", in.InputRevision)
	}

	if _, err := repo.LoadInputs(ctx, "PE-404"); !errors.Is(err, errkind.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRenderedRepository_SaveRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	seedInstanceFixture(t, db)
	repo := sqlite.NewRenderedRepository(db)
	ctx := context.Background()

	saved, err := repo.Save(ctx, "PE-001", "Muro con vidrio [SIN VALOR].", 0)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !saved {
		t.Fatal("expected Save to succeed at current revision")
	}

	row, err := repo.Get(ctx, "PE-001")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if row.IsStale {
		t.Error("expected row to be fresh after Save")
	}
	if row.RenderedText != "Muro con vidrio [SIN VALOR]." {
		t.Errorf("unexpected text %q", row.RenderedText)
	}
	if row.RenderedAt == "" {
		t.Error("expected rendered_at to be stamped")
	}

	stale, _ := repo.ListStale(ctx)
	if len(stale) != 0 {
		t.Errorf("expected no stale rows, got %v", stale)
	}
}

func TestRenderedRepository_SaveLosesToConcurrentWrite(t *testing.T) {
	db := setupTestDB(t)
	seedInstanceFixture(t, db)
	values := sqlite.NewProjectElementRepository(db, nil)
	repo := sqlite.NewRenderedRepository(db)
	ctx := context.Background()

	in, err := repo.LoadInputs(ctx, "PE-001")
	if err != nil {
		t.Fatalf("LoadInputs failed: %v", err)
	}

	// A value lands between the read and the write-back.
	if err := values.UpsertValue(ctx, &secondary.ValueRecord{ProjectElementID: "PE-001", VariableID: "VAR-001", Value: "Laminado", UpdatedBy: "t"}, 0); err != nil {
		t.Fatalf("UpsertValue failed: %v", err)
	}

	saved, err := repo.Save(ctx, "PE-001", "outdated", in.InputRevision)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved {
		t.Fatal("expected Save to be rejected after a concurrent write")
	}

	row, _ := repo.Get(ctx, "PE-001")
	if !row.IsStale || row.RenderedText == "outdated" {
		t.Errorf("expected row to stay stale and untouched, got %+v", row)
	}
}
