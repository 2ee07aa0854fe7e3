package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/script2video/internal/config"
	"github.com/ivlev/script2video/internal/director"
	"github.com/ivlev/script2video/internal/errs"
	"github.com/ivlev/script2video/internal/script"
	"github.com/ivlev/script2video/internal/source"
)

// probeDurations measures every voice clip. Results are index-addressed so
// the order matches the script regardless of completion order.
func (p *Project) probeDurations(ctx context.Context, meta *script.MovieMeta, workers int) ([]float64, error) {
	durations := make([]float64, len(meta.ScriptItems))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range meta.ScriptItems {
		g.Go(func() error {
			path := meta.VoiceFile(i)
			d, err := p.Prober.Duration(gctx, path)
			if err != nil {
				p.Logger.Error().Err(err).Int("item", i).Str("field", "voice_path").Str("path", path).Msg("cannot probe voice")
				return errs.MediaProbe("probe", fmt.Errorf("item %d: %w", i, err))
			}
			p.Logger.Debug().Int("item", i).Float64("duration", d).Msg("voice probed")
			durations[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return durations, nil
}

// prepareIllustrations decodes every image (or first PDF page) and writes it
// resized into the full-resolution image box.
func (p *Project) prepareIllustrations(ctx context.Context, meta *script.MovieMeta, workers int) ([]source.Illustration, error) {
	boxW, boxH := p.Layout.ImageBox()
	out := make([]source.Illustration, len(meta.ScriptItems))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range meta.ScriptItems {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := meta.ImageFile(i)
			ill, err := prepareOne(path, boxW, boxH, filepath.Join(p.tempDir, director.IllustrationName(i)))
			if err != nil {
				p.Logger.Error().Err(err).Int("item", i).Str("field", "image_path").Str("path", path).Msg("cannot decode illustration")
				return errs.MediaProbe("illustration", fmt.Errorf("item %d: %w", i, err))
			}
			out[i] = ill
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func prepareOne(path string, boxW, boxH int, dst string) (source.Illustration, error) {
	src, err := source.Open(path)
	if err != nil {
		return source.Illustration{}, err
	}
	defer src.Close()
	return source.PrepareIllustration(src, IllustrationDPI, boxW, boxH, dst)
}

// renderAssets rasterizes the text and QR layers of plan into their Source
// files. Image layers already point at prepared illustrations.
func (p *Project) renderAssets(ctx context.Context, plan *director.Plan, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, l := range plan.Assets() {
		if l.Kind == director.KindImage {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := p.renderAsset(l); err != nil {
				return errs.Render("asset", fmt.Errorf("%s %d: %w", l.Kind, l.Index, err))
			}
			return nil
		})
	}
	return g.Wait()
}

func (p *Project) renderAsset(l director.Layer) error {
	if l.Kind == director.KindQRCode {
		return source.WriteQRCode(l.Text, l.W, l.Source)
	}
	if !l.IsText() {
		return fmt.Errorf("no renderer for layer kind %q", l.Kind)
	}

	fg, err := config.ParseColor(l.Color)
	if err != nil {
		return err
	}
	box := source.TextBox{Text: l.Text, Size: l.FontSize, Width: l.W, Height: l.H, Padding: l.Padding, Foreground: fg}
	if l.Background != "" {
		bg, err := config.ParseColor(l.Background)
		if err != nil {
			return err
		}
		box.Background = bg
	}
	return p.Text.RenderToFile(box, l.Source)
}
