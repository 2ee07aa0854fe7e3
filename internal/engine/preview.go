package engine

import (
	"context"
	"path/filepath"

	"github.com/ivlev/script2video/internal/director"
	"github.com/ivlev/script2video/internal/errs"
	"github.com/ivlev/script2video/internal/renderer"
	"github.com/ivlev/script2video/internal/script"
	"github.com/ivlev/script2video/internal/source"
	"github.com/ivlev/script2video/internal/timeline"
)

const (
	previewScale  = 0.5
	previewPreset = "ultrafast"
)

// preview writes one full-resolution snapshot per item, taken at the middle
// of its voice clip, and a half-resolution preview video.
func (p *Project) preview(ctx context.Context, res *Result, meta *script.MovieMeta, tl *timeline.Timeline, seed int64, ills []source.Illustration, workers int) error {
	if err := p.renderAssets(ctx, res.Plan, workers); err != nil {
		return err
	}

	comp := renderer.NewCompositor(res.Plan, p.Layout.EffectDuration)
	for i := range meta.ScriptItems {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame, err := comp.Frame(tl.Midpoint(i))
		if err != nil {
			return errs.Render("snapshot", err)
		}
		path := director.SnapshotPath(p.Config.Workdir, i)
		if err := source.WritePNG(path, frame); err != nil {
			return errs.Render("snapshot", err)
		}
		res.Snapshots = append(res.Snapshots, path)
		p.Logger.Debug().Int("item", i).Str("path", path).Msg("snapshot written")
	}

	small := p.Layout.Scaled(previewScale)
	plan, err := p.buildPlan(small, seed, meta, tl, ills, filepath.Join(p.tempDir, "preview"))
	if err != nil {
		return err
	}
	if err := p.renderAssets(ctx, plan, workers); err != nil {
		return err
	}
	res.Output = p.Config.PreviewPath()
	return p.compose(ctx, plan, meta, res.Output, previewPreset)
}
