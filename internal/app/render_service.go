package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/example/elemcat/internal/core/render"
	"github.com/example/elemcat/internal/logging"
	"github.com/example/elemcat/internal/ports/primary"
	"github.com/example/elemcat/internal/ports/secondary"
)

// DefaultReconcileWorkers bounds a sweep when no worker count is configured.
const DefaultReconcileWorkers = 4

// RenderServiceImpl implements the RenderService interface.
type RenderServiceImpl struct {
	renderedRepo secondary.RenderedRepository
	workers      int
	log          *logging.Logger
}

// NewRenderService creates a new RenderService with injected dependencies.
// workers bounds how many instances a sweep renders at once.
func NewRenderService(renderedRepo secondary.RenderedRepository, workers int, log *logging.Logger) *RenderServiceImpl {
	if workers < 1 {
		workers = DefaultReconcileWorkers
	}
	return &RenderServiceImpl{
		renderedRepo: renderedRepo,
		workers:      workers,
		log:          log.With("service", "render"),
	}
}

// Render computes an instance's description from source tables.
func (s *RenderServiceImpl) Render(ctx context.Context, projectElementID string) (*primary.Rendering, error) {
	rendering, _, err := s.render(ctx, projectElementID)
	return rendering, err
}

// PersistRendered renders an instance and writes the result to the cache.
// When a value changed between the read and the write, nothing is written
// and Saved is false.
func (s *RenderServiceImpl) PersistRendered(ctx context.Context, projectElementID string) (*primary.PersistResult, error) {
	rendering, inputRevision, err := s.render(ctx, projectElementID)
	if err != nil {
		return nil, err
	}

	saved, err := s.renderedRepo.Save(ctx, projectElementID, rendering.Text, inputRevision)
	if err != nil {
		return nil, err
	}

	if saved {
		s.log.Debug("rendered description saved", "project_element_id", projectElementID, "input_revision", inputRevision)
	} else {
		s.log.Warn("rendered description outdated before save, left stale", "project_element_id", projectElementID, "input_revision", inputRevision)
	}
	return &primary.PersistResult{Rendering: rendering, Saved: saved}, nil
}

// GetRendered reads the cached description of an instance.
func (s *RenderServiceImpl) GetRendered(ctx context.Context, projectElementID string) (*primary.RenderedDescription, error) {
	record, err := s.renderedRepo.Get(ctx, projectElementID)
	if err != nil {
		return nil, err
	}
	return &primary.RenderedDescription{
		ProjectElementID: record.ProjectElementID,
		RenderedText:     record.RenderedText,
		IsStale:          record.IsStale,
		RenderedAt:       record.RenderedAt,
	}, nil
}

// ReconcileStale refreshes every stale cache row with bounded parallelism.
// Rows raced by a concurrent write stay stale and are counted as skipped.
// A row that fails is logged, counted as failed and left stale; the sweep
// carries on with the remaining rows. Cancelling ctx stops the sweep and
// returns the partial counts with the context error.
func (s *RenderServiceImpl) ReconcileStale(ctx context.Context) (*primary.ReconcileResult, error) {
	ids, err := s.renderedRepo.ListStale(ctx)
	if err != nil {
		return nil, err
	}

	var refreshed, skipped, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		id := id
		g.Go(func() error {
			result, err := s.PersistRendered(ctx, id)
			switch {
			case err != nil:
				failed.Add(1)
				s.log.Error("stale row not refreshed", "project_element_id", id, "error", err)
			case result.Saved:
				refreshed.Add(1)
			default:
				skipped.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result := &primary.ReconcileResult{
		Scanned:   len(ids),
		Refreshed: int(refreshed.Load()),
		Skipped:   int(skipped.Load()),
		Failed:    int(failed.Load()),
	}
	s.log.Info("stale sweep finished", "scanned", result.Scanned, "refreshed", result.Refreshed, "skipped", result.Skipped, "failed", result.Failed)
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("stale sweep interrupted: %w", err)
	}
	return result, nil
}

// render loads the inputs of an instance and substitutes them. It also
// returns the input revision the render was computed from.
func (s *RenderServiceImpl) render(ctx context.Context, projectElementID string) (*primary.Rendering, int, error) {
	in, err := s.renderedRepo.LoadInputs(ctx, projectElementID)
	if err != nil {
		return nil, 0, err
	}

	mappings := make([]render.Mapping, len(in.Mappings))
	for i, m := range in.Mappings {
		mappings[i] = render.Mapping{Placeholder: m.Placeholder, VariableID: m.VariableID, Position: m.Position}
	}
	result := render.Render(render.Input{
		TemplateText: in.TemplateText,
		Mappings:     mappings,
		Values:       in.Values,
	})

	return &primary.Rendering{
		ProjectElementID: projectElementID,
		VersionID:        in.VersionID,
		Text:             result.Text,
		NoValue:          result.NoValue,
		Unmapped:         result.Unmapped,
	}, in.InputRevision, nil
}

// Ensure RenderServiceImpl implements the interface
var _ primary.RenderService = (*RenderServiceImpl)(nil)
