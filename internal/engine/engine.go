package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/ivlev/script2video/internal/audio"
	"github.com/ivlev/script2video/internal/config"
	"github.com/ivlev/script2video/internal/director"
	"github.com/ivlev/script2video/internal/errs"
	"github.com/ivlev/script2video/internal/renderer"
	"github.com/ivlev/script2video/internal/script"
	"github.com/ivlev/script2video/internal/source"
	"github.com/ivlev/script2video/internal/system"
	"github.com/ivlev/script2video/internal/timeline"
	"github.com/ivlev/script2video/internal/video"
)

// IllustrationDPI is the rasterization density of PDF illustrations.
const IllustrationDPI = 150

// Project runs one composition for a workdir.
type Project struct {
	Config  *config.Config
	Layout  config.Layout
	Prober  system.Prober
	Encoder video.Encoder
	Logger  zerolog.Logger
	// Stdout receives the plan table in plan and preview modes.
	Stdout io.Writer
	// Text overrides the font loaded from Config.FontPath.
	Text *source.TextRenderer

	tempDir string
}

// Result describes what a run produced.
type Result struct {
	Plan      *director.Plan
	PlanPath  string
	Output    string
	Snapshots []string
}

func NewProject(cfg *config.Config, layout config.Layout, prober system.Prober, encoder video.Encoder, logger zerolog.Logger) *Project {
	return &Project{
		Config:  cfg,
		Layout:  layout,
		Prober:  prober,
		Encoder: encoder,
		Logger:  logger,
		Stdout:  os.Stdout,
	}
}

// Run loads, validates, times, lays out and renders the script. Validation
// failures stop the run before any media is touched.
func (p *Project) Run(ctx context.Context) (*Result, error) {
	startTime := time.Now()
	cfg := p.Config
	if err := cfg.Validate(); err != nil {
		return nil, errs.Config("config", err)
	}

	meta, err := script.Load(cfg.Workdir, cfg.Metafile)
	if err != nil {
		return nil, err
	}
	if err := script.Validate(meta, p.Logger); err != nil {
		return nil, err
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, errs.Config("lock", err)
	}
	if !locked {
		return nil, errs.Config("lock", fmt.Errorf("workdir %s is used by another run", cfg.Workdir))
	}
	defer lock.Unlock()

	p.tempDir, err = os.MkdirTemp("", "script2video_")
	if err != nil {
		return nil, errs.Config("temp dir", err)
	}
	defer os.RemoveAll(p.tempDir)

	host := system.DescribeHost()
	workers := system.WorkerCount(cfg.Workers, host)
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	p.Logger.Info().
		Str("workdir", cfg.Workdir).
		Str("mode", cfg.Mode).
		Int("items", len(meta.ScriptItems)).
		Int("workers", workers).
		Int("cpus", host.LogicalCPUs).
		Uint64("free_mem_mb", host.FreeMemory>>20).
		Int64("seed", seed).
		Msg("starting composition")

	durations, err := p.probeDurations(ctx, meta, workers)
	if err != nil {
		return nil, err
	}
	tl, err := timeline.Compute(durations, p.Layout.Gap, persistence(p.Layout))
	if err != nil {
		return nil, errs.MediaProbe("timeline", err)
	}
	p.Logger.Info().Float64("total", tl.Total).Float64("gap", tl.Gap).Msg("timeline computed")

	illustrations, err := p.prepareIllustrations(ctx, meta, workers)
	if err != nil {
		return nil, err
	}

	needText := cfg.Mode != config.ModePlan || p.Layout.EnglishWidth == config.WidthMeasure
	if needText && p.Text == nil {
		p.Text, err = source.NewTextRenderer(cfg.FontPath())
		if err != nil {
			return nil, errs.Config("font", err)
		}
	}

	plan, err := p.buildPlan(p.Layout, seed, meta, tl, illustrations, filepath.Join(p.tempDir, "assets"))
	if err != nil {
		return nil, err
	}
	res := &Result{Plan: plan, PlanPath: cfg.PlanPath()}
	if err := director.WritePlan(plan, res.PlanPath); err != nil {
		return nil, errs.Render("write plan", err)
	}

	switch cfg.Mode {
	case config.ModePlan:
		fmt.Fprintln(p.Stdout, director.RenderTable(plan))
	case config.ModePreview:
		fmt.Fprintln(p.Stdout, director.RenderTable(plan))
		if err := p.preview(ctx, res, meta, tl, seed, illustrations, workers); err != nil {
			return nil, err
		}
	default:
		if err := p.renderAssets(ctx, plan, workers); err != nil {
			return nil, err
		}
		res.Output = cfg.OutputPath()
		if err := p.compose(ctx, plan, meta, res.Output, ""); err != nil {
			return nil, err
		}
	}

	p.Logger.Info().
		Str("plan", res.PlanPath).
		Str("output", res.Output).
		Dur("elapsed", time.Since(startTime)).
		Msg("composition finished")
	return res, nil
}

func (p *Project) buildPlan(layout config.Layout, seed int64, meta *script.MovieMeta, tl *timeline.Timeline, ills []source.Illustration, assetDir string) (*director.Plan, error) {
	if err := os.MkdirAll(assetDir, 0755); err != nil {
		return nil, errs.Render("asset dir", err)
	}
	d := director.NewDirector(layout, seed)
	if p.Text != nil {
		d.Measurer = p.Text
	}
	plan, err := d.Build(meta, tl, ills, assetDir)
	if err != nil {
		return nil, errs.Render("layout", err)
	}
	return plan, nil
}

// compose encodes plan into output. preset is passed through to libx264.
func (p *Project) compose(ctx context.Context, plan *director.Plan, meta *script.MovieMeta, output, preset string) error {
	graph, err := renderer.BuildGraph(plan, p.Layout.EffectDuration)
	if err != nil {
		return errs.Render("filter graph", err)
	}
	voices := make([]string, len(meta.ScriptItems))
	for i := range meta.ScriptItems {
		voices[i] = meta.VoiceFile(i)
	}
	track, err := audio.Build(plan.Audio, voices, plan.Gap, p.Layout.VoiceGain, graph.NextInput())
	if err != nil {
		return errs.Render("audio", err)
	}

	encoder := p.Config.VideoEncoder
	if encoder == "auto" {
		encoder = system.GetBestH264Encoder()
	}
	quality := p.Config.Quality
	if quality == 0 {
		quality = system.DefaultQuality(encoder)
	}

	p.Logger.Info().
		Str("output", output).
		Str("encoder", encoder).
		Int("layers", len(plan.Layers)).
		Float64("duration", plan.Total).
		Msg("rendering")
	return p.Encoder.Compose(ctx, video.Job{
		Graph:        graph,
		Audio:        track,
		Duration:     plan.Total,
		FPS:          plan.FPS,
		VideoEncoder: encoder,
		AudioCodec:   p.Config.AudioCodec,
		Quality:      quality,
		Preset:       preset,
		Output:       output,
	})
}

func persistence(l config.Layout) timeline.Persistence {
	if l.Persistence == config.PersistGap {
		return timeline.PersistGap
	}
	return timeline.PersistLiteral
}
