// Package pipeline runs one thumbnail generation: resolve the source image,
// normalize it to the thumbnail frame, edit the expression and draw the
// caption.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/domain"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/imaging"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/infra"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/overlay"
)

// Options wires the pipeline stages.
type Options struct {
	Resolver   *Resolver
	Normalizer *imaging.Normalizer
	Editor     Editor
	Renderer   *overlay.Renderer
	Logger     *infra.Logger
}

// Pipeline is safe for concurrent use; it keeps no per-request state.
type Pipeline struct {
	resolver   *Resolver
	normalizer *imaging.Normalizer
	editor     Editor
	renderer   *overlay.Renderer
	logger     *infra.Logger
}

func New(opts Options) (*Pipeline, error) {
	if opts.Resolver == nil {
		return nil, errors.New("pipeline: resolver is required")
	}
	if opts.Editor == nil {
		return nil, errors.New("pipeline: editor is required")
	}
	if opts.Renderer == nil {
		return nil, errors.New("pipeline: renderer is required")
	}
	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = imaging.NewNormalizer()
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Pipeline{
		resolver:   opts.Resolver,
		normalizer: normalizer,
		editor:     opts.Editor,
		renderer:   opts.Renderer,
		logger:     logger,
	}, nil
}

// Generate produces the final PNG for req. The uploaded source file, if any,
// is removed before Generate returns, whatever the outcome.
func (p *Pipeline) Generate(ctx context.Context, req domain.ThumbnailRequest) (domain.ThumbnailResult, error) {
	defer func() {
		if err := req.Source.Release(); err != nil {
			p.logger.Warn().Err(err).Msg("pipeline: release upload")
		}
	}()

	start := time.Now()
	raw, mime, err := p.resolver.Resolve(ctx, req.Source)
	if err != nil {
		return domain.ThumbnailResult{}, err
	}
	p.logger.Debug().
		Str("stage", "resolve").
		Str("mime", mime).
		Int("bytes", len(raw)).
		Dur("elapsed", time.Since(start)).
		Msg("pipeline: stage done")

	if err := checkpoint(ctx, "normalize"); err != nil {
		return domain.ThumbnailResult{}, err
	}
	start = time.Now()
	framed, err := p.normalizer.Normalize(raw)
	if err != nil {
		return domain.ThumbnailResult{}, err
	}
	p.stage("normalize", start, len(framed))

	if err := checkpoint(ctx, "edit"); err != nil {
		return domain.ThumbnailResult{}, err
	}
	start = time.Now()
	edited, err := p.editor.EditExpression(ctx, framed, "image/png", req.Expression)
	if err != nil {
		var de *domain.Error
		if !errors.As(err, &de) {
			err = domain.Upstream("expression edit failed", err)
		}
		return domain.ThumbnailResult{}, err
	}
	p.stage("edit", start, len(edited))

	if err := checkpoint(ctx, "overlay"); err != nil {
		return domain.ThumbnailResult{}, err
	}
	start = time.Now()
	out, err := p.renderer.Render(edited, req.Text, req.Style)
	if err != nil {
		return domain.ThumbnailResult{}, err
	}
	cfg, err := imaging.DecodeConfig(out)
	if err != nil {
		return domain.ThumbnailResult{}, domain.Internal("inspect output", err)
	}
	p.stage("overlay", start, len(out))

	return domain.ThumbnailResult{PNG: out, Width: cfg.Width, Height: cfg.Height}, nil
}

func checkpoint(ctx context.Context, next string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("pipeline: canceled before %s: %w", next, err)
	}
	return nil
}

func (p *Pipeline) stage(name string, start time.Time, size int) {
	p.logger.Debug().
		Str("stage", name).
		Int("bytes", size).
		Dur("elapsed", time.Since(start)).
		Msg("pipeline: stage done")
}
