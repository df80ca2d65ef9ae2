package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/example/elemcat/internal/adapters/sqlite"
	"github.com/example/elemcat/internal/db"
	"github.com/example/elemcat/internal/ports/secondary"
)

// setupFileDB opens a file-backed database through db.Open, with a real
// connection pool.
func setupFileDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "elemcat.db"))
	if err != nil {
		t.Fatalf("failed to open file db: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

func TestProjectElementRepository_ConcurrentWritesOnFileDB(t *testing.T) {
	database := setupFileDB(t)
	seedElement(t, database, "", "")
	seedVariable(t, database, "VAR-001", "ELEM-001", "tipo_vidrio")
	seedVersion(t, database, "VER-001", "ELEM-001", 1, "Vidrio {tipo_vidrio}", "S3", true)
	seedProject(t, database, "", "")

	const instances = 20
	for i := 1; i <= instances; i++ {
		id := fmt.Sprintf("PE-%03d", i)
		seedProjectElement(t, database, id, "PROJ-001", "ELEM-001", "VER-001", fmt.Sprintf("MC-01-%02d", i))
	}

	w := sqlite.NewLogWriterAdapter(database)
	repo := sqlite.NewProjectElementRepository(database, w)
	ctx := context.Background()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []error
	)
	for round := 0; round < 5; round++ {
		for i := 1; i <= instances; i++ {
			wg.Add(1)
			go func(peID, value string) {
				defer wg.Done()
				err := repo.UpsertValue(ctx, &secondary.ValueRecord{ProjectElementID: peID, VariableID: "VAR-001", Value: value, UpdatedBy: "ana"}, 0)
				if err != nil {
					mu.Lock()
					failed = append(failed, err)
					mu.Unlock()
				}
			}(fmt.Sprintf("PE-%03d", i), fmt.Sprintf("valor-%d", round))
		}
		wg.Wait()
	}

	if len(failed) > 0 {
		t.Fatalf("expected no failures, got %d (first: %v)", len(failed), failed[0])
	}

	var stale int
	if err := database.QueryRow("SELECT COUNT(*) FROM rendered_descriptions WHERE is_stale = 1").Scan(&stale); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if stale != instances {
		t.Errorf("expected %d stale rows, got %d", instances, stale)
	}

	changes, err := w.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(changes) != 5*instances {
		t.Errorf("expected %d change entries, got %d", 5*instances, len(changes))
	}
}

func TestElementRepository_ConcurrentCreatesOnFileDB(t *testing.T) {
	database := setupFileDB(t)
	repo := sqlite.NewElementRepository(database, nil)
	ctx := context.Background()

	const n = 30
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		ids    = make(map[string]bool)
		failed []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			element := &secondary.ElementRecord{Code: code, Name: "Elemento " + code, CreatedBy: "importer"}
			err := repo.Create(ctx, element)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, err)
				return
			}
			ids[element.ID] = true
		}(fmt.Sprintf("C-%02d", i))
	}
	wg.Wait()

	if len(failed) > 0 {
		t.Fatalf("expected no failures, got %d (first: %v)", len(failed), failed[0])
	}
	if len(ids) != n {
		t.Errorf("expected %d distinct IDs, got %d", n, len(ids))
	}
}
