package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/example/elemcat/internal/ports/primary"
)

// RenderAdapter is a thin adapter that translates CLI operations to RenderService calls.
type RenderAdapter struct {
	service primary.RenderService
	out     io.Writer
}

// NewRenderAdapter creates a new RenderAdapter with the given service.
func NewRenderAdapter(service primary.RenderService, out io.Writer) *RenderAdapter {
	return &RenderAdapter{
		service: service,
		out:     out,
	}
}

// Show prints an instance's description. With cached set it reads the cache
// instead of rendering from source.
func (a *RenderAdapter) Show(ctx context.Context, projectElementID string, cached bool) error {
	if cached {
		rd, err := a.service.GetRendered(ctx, projectElementID)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, rd.RenderedText)
		if rd.IsStale {
			fmt.Fprintln(a.out, warn("! cached description is stale"))
		}
		return nil
	}

	r, err := a.service.Render(ctx, projectElementID)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, r.Text)
	a.printCompleteness(r)
	return nil
}

// Persist renders an instance and writes the cache.
func (a *RenderAdapter) Persist(ctx context.Context, projectElementID string) error {
	result, err := a.service.PersistRendered(ctx, projectElementID)
	if err != nil {
		return err
	}

	if result.Saved {
		fmt.Fprintf(a.out, "✓ Rendered description of %s saved\n", projectElementID)
	} else {
		fmt.Fprintln(a.out, warn("! %s changed while rendering, left stale", projectElementID))
	}
	a.printCompleteness(result.Rendering)
	return nil
}

// Reconcile refreshes every stale cache row. Rows that failed are reported
// and make the command fail after the summary is printed.
func (a *RenderAdapter) Reconcile(ctx context.Context) error {
	result, err := a.service.ReconcileStale(ctx)
	if result == nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Scanned %d stale, refreshed %d", result.Scanned, result.Refreshed)
	if result.Skipped > 0 {
		fmt.Fprint(a.out, warn(", %d changed during the sweep", result.Skipped))
	}
	if result.Failed > 0 {
		fmt.Fprint(a.out, warn(", %d failed", result.Failed))
	}
	fmt.Fprintln(a.out)

	if err != nil {
		return err
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d stale row(s) could not be refreshed, run reconcile again", result.Failed)
	}
	return nil
}

// printCompleteness flags placeholders rendered without a value.
func (a *RenderAdapter) printCompleteness(r *primary.Rendering) {
	if len(r.NoValue) > 0 {
		fmt.Fprintln(a.out, warn("! no value for: %s", strings.Join(r.NoValue, ", ")))
	}
	if len(r.Unmapped) > 0 {
		fmt.Fprintln(a.out, warn("! unbound placeholders: %s", strings.Join(r.Unmapped, ", ")))
	}
}
