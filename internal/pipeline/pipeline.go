// Package pipeline wires the full retrieval-decode-render chain behind a
// single entry point and guarantees at most one in-flight execution per
// (satellite, hour).
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/sekaiwx/vissrview/internal/cache"
	"github.com/sekaiwx/vissrview/internal/fetch"
	"github.com/sekaiwx/vissrview/internal/render"
	"github.com/sekaiwx/vissrview/internal/satellite"
	"github.com/sekaiwx/vissrview/internal/vissr"
)

// clampWarnThreshold is the calibration clamp fraction above which a frame
// is reported as suspect.
const clampWarnThreshold = 0.05

// Pipeline runs resolve -> locate -> fetch -> extract -> decode ->
// calibrate -> render, memoizing the result. All stages other than the
// fetch are pure transformations of their inputs.
type Pipeline struct {
	retriever *fetch.Retriever
	renderer  *render.Renderer
	cache     *cache.Cache
	group     singleflight.Group
}

// New assembles a Pipeline. The cache is owned by the caller and torn down
// with the process; the pipeline only reads and writes entries.
func New(retriever *fetch.Retriever, renderer *render.Renderer, c *cache.Cache) *Pipeline {
	return &Pipeline{retriever: retriever, renderer: renderer, cache: c}
}

// Render produces the rendered artifact for the hour containing t. A cache
// hit skips the network and decode entirely. Concurrent calls for the same
// hour share one execution; a caller abandoning its request does not abort
// the shared execution for the others.
func (p *Pipeline) Render(ctx context.Context, t time.Time) (*render.Artifact, error) {
	req, err := satellite.Resolve(t)
	if err != nil {
		return nil, err
	}

	if artifact, ok := p.cache.Lookup(req); ok {
		log.Debug().Str("key", req.Key()).Msg("cache hit")
		return artifact, nil
	}

	ch := p.group.DoChan(req.Key(), func() (interface{}, error) {
		// Detached from the first caller's ctx: later joiners must not
		// lose the fetch when the first caller disconnects.
		return p.execute(context.WithoutCancel(ctx), req)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*render.Artifact), nil
	}
}

func (p *Pipeline) execute(ctx context.Context, req satellite.Request) (*render.Artifact, error) {
	logger := log.With().
		Str("request_id", uuid.NewString()).
		Str("satellite", string(req.Satellite)).
		Time("hour", req.Time).
		Logger()

	// A call that lost the singleflight race may land here just after the
	// winner stored its result.
	if artifact, ok := p.cache.Lookup(req); ok {
		return artifact, nil
	}

	loc, err := satellite.Locate(req)
	if err != nil {
		logger.Error().Err(err).Msg("locator invariant violation")
		return nil, err
	}

	start := time.Now()
	raw, size, err := p.retriever.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("bytes", size).Dur("elapsed", time.Since(start)).Msg("archive fetched")

	segment, err := fetch.ExtractVISSR(raw)
	if err != nil {
		return nil, err
	}
	raw = nil // the tarball is dead weight from here on

	frame, err := vissr.DecodeFrame(segment, req.Time)
	if err != nil {
		return nil, err
	}

	grid := vissr.Calibrate(frame)
	if frac := grid.ClampFraction(); frac > clampWarnThreshold {
		logger.Warn().Float64("clamp_fraction", frac).Msg("calibration clamped an unusual share of samples")
	}

	artifact := p.renderer.Render(grid)
	p.cache.Store(req, artifact)

	logger.Info().
		Int("width", artifact.Width).
		Int("height", artifact.Height).
		Dur("elapsed", time.Since(start)).
		Msg("artifact rendered")
	return artifact, nil
}
