package primary

import "context"

// RenderService defines the primary port for rendering instance descriptions
// and maintaining the rendered cache.
type RenderService interface {
	// Render computes an instance's description from source tables.
	// It never reads or writes the cache.
	Render(ctx context.Context, projectElementID string) (*Rendering, error)

	// PersistRendered renders and writes the result to the cache, clearing
	// the stale flag when the inputs did not change meanwhile.
	PersistRendered(ctx context.Context, projectElementID string) (*PersistResult, error)

	// GetRendered reads the cached description of an instance.
	GetRendered(ctx context.Context, projectElementID string) (*RenderedDescription, error)

	// ReconcileStale refreshes every stale cache row.
	ReconcileStale(ctx context.Context) (*ReconcileResult, error)
}

// Rendering is the output of one render.
type Rendering struct {
	ProjectElementID string
	VersionID        string
	Text             string
	NoValue          []string // placeholders rendered with the no-value sentinel
	Unmapped         []string // tokens left untouched for lack of a binding
}

// Complete reports whether every placeholder got a real value.
func (r *Rendering) Complete() bool {
	return len(r.NoValue) == 0 && len(r.Unmapped) == 0
}

// PersistResult is the outcome of writing a render to the cache.
type PersistResult struct {
	Rendering *Rendering
	Saved     bool // false when a concurrent write left the row stale
}

// RenderedDescription is the cached description of an instance.
type RenderedDescription struct {
	ProjectElementID string
	RenderedText     string
	IsStale          bool
	RenderedAt       string
}

// ReconcileResult summarizes one sweep over stale rows.
type ReconcileResult struct {
	Scanned   int
	Refreshed int
	Skipped   int // raced with a concurrent write, still stale
	Failed    int // errored, still stale
}
