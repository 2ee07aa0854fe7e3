package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ivlev/script2video/internal/config"
	"github.com/ivlev/script2video/internal/director"
	"github.com/ivlev/script2video/internal/errs"
	"github.com/ivlev/script2video/internal/script"
	"github.com/ivlev/script2video/internal/source"
	"github.com/ivlev/script2video/internal/video"
)

type fakeProber struct {
	mu        sync.Mutex
	durations map[string]float64
	calls     int
}

func (f *fakeProber) Duration(_ context.Context, path string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	d, ok := f.durations[filepath.Base(path)]
	if !ok {
		return 0, os.ErrInvalid
	}
	return d, nil
}

type fakeEncoder struct {
	jobs    []video.Job
	missing []string
}

func (f *fakeEncoder) Compose(_ context.Context, job video.Job) error {
	for _, still := range job.Graph.Stills {
		if _, err := os.Stat(still); err != nil {
			f.missing = append(f.missing, still)
		}
	}
	f.jobs = append(f.jobs, job)
	return os.WriteFile(job.Output, []byte("mp4"), 0644)
}

type fixture struct {
	dir     string
	cfg     *config.Config
	prober  *fakeProber
	encoder *fakeEncoder
	stdout  *bytes.Buffer
}

func newFixture(t *testing.T, meta script.MovieMeta) *fixture {
	t.Helper()
	dir := t.TempDir()
	for _, item := range meta.ScriptItems {
		if item.VoicePath != "" {
			require.NoError(t, os.WriteFile(filepath.Join(dir, item.VoicePath), []byte("mp3"), 0644))
		}
		if item.ImagePath != "" {
			require.NoError(t, source.WritePNG(filepath.Join(dir, item.ImagePath), image.NewRGBA(image.Rect(0, 0, 400, 200))))
		}
	}
	data, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meta.json"), data, 0644))

	return &fixture{
		dir: dir,
		cfg: &config.Config{
			Workdir:      dir,
			Metafile:     "meta.json",
			Mode:         config.ModeRender,
			Seed:         11,
			VideoEncoder: "libx264",
			AudioCodec:   "aac",
			Workers:      2,
		},
		prober:  &fakeProber{durations: map[string]float64{"v0.mp3": 1.0, "v1.mp3": 2.0}},
		encoder: &fakeEncoder{},
		stdout:  &bytes.Buffer{},
	}
}

func (f *fixture) project(t *testing.T) *Project {
	t.Helper()
	text, err := source.NewTextRendererFromBytes(goregular.TTF)
	require.NoError(t, err)
	p := NewProject(f.cfg, config.DefaultLayout(), f.prober, f.encoder, zerolog.Nop())
	p.Stdout = f.stdout
	p.Text = text
	return p
}

func twoItems() script.MovieMeta {
	return script.MovieMeta{
		Title:  "Demo",
		Footer: "footer",
		Link:   "https://example.com",
		ScriptItems: []script.ScriptItem{
			{CN: "你好", EN: "Hello", VoicePath: "v0.mp3", ImagePath: "i0.png"},
			{CN: "再见", EN: "Bye", VoicePath: "v1.mp3", ImagePath: "i1.png"},
		},
	}
}

func TestRunRender(t *testing.T) {
	f := newFixture(t, twoItems())
	res, err := f.project(t).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, f.encoder.jobs, 1)
	job := f.encoder.jobs[0]
	assert.Equal(t, filepath.Join(f.dir, "output.mp4"), job.Output)
	assert.InDelta(t, 3.3, job.Duration, 1e-9)
	assert.Equal(t, 24, job.FPS)
	assert.Equal(t, 23, job.Quality)
	assert.Empty(t, f.encoder.missing, "every asset exists when ffmpeg starts")
	assert.Equal(t, []string{filepath.Join(f.dir, "v0.mp3"), filepath.Join(f.dir, "v1.mp3")}, job.Audio.Inputs)

	assert.FileExists(t, res.PlanPath)
	assert.FileExists(t, res.Output)
	plan, err := director.ReadPlan(res.PlanPath)
	require.NoError(t, err)
	assert.Equal(t, res.Plan.Layers, plan.Layers)
	assert.Len(t, plan.LayersOf(director.KindImage), 2)
	assert.Len(t, plan.LayersOf(director.KindQRCode), 1)
}

func TestRunPlanModeSkipsEncoder(t *testing.T) {
	f := newFixture(t, twoItems())
	f.cfg.Mode = config.ModePlan

	res, err := f.project(t).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, f.encoder.jobs)
	assert.Equal(t, 2, f.prober.calls)
	assert.FileExists(t, res.PlanPath)
	assert.Contains(t, f.stdout.String(), "caption-en")
}

func TestRunPreview(t *testing.T) {
	f := newFixture(t, twoItems())
	f.cfg.Mode = config.ModePreview

	res, err := f.project(t).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, f.encoder.jobs, 1)
	job := f.encoder.jobs[0]
	assert.Equal(t, filepath.Join(f.dir, "preview.mp4"), job.Output)
	assert.Equal(t, "ultrafast", job.Preset)
	assert.Contains(t, job.Graph.Background, "s=540x960")
	assert.Empty(t, f.encoder.missing)

	require.Len(t, res.Snapshots, 2)
	for _, snap := range res.Snapshots {
		assert.FileExists(t, snap)
	}
	assert.Contains(t, f.stdout.String(), "image")
}

func TestRunMissingMetafile(t *testing.T) {
	f := newFixture(t, twoItems())
	f.cfg.Metafile = "absent.json"

	_, err := f.project(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errs.KindConfig, errs.KindOf(err))
	assert.Equal(t, 2, errs.ExitCode(err))
	assert.Empty(t, f.encoder.jobs)
}

func TestRunValidationNeverReachesEncoder(t *testing.T) {
	meta := twoItems()
	f := newFixture(t, meta)
	require.NoError(t, os.Remove(filepath.Join(f.dir, "v1.mp3")))

	_, err := f.project(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Zero(t, f.prober.calls)
	assert.Empty(t, f.encoder.jobs)
	assert.NoFileExists(t, filepath.Join(f.dir, "timeline.yaml"))
}

func TestRunEmptyScript(t *testing.T) {
	f := newFixture(t, script.MovieMeta{Title: "Empty"})

	_, err := f.project(t).Run(context.Background())
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Empty(t, f.encoder.jobs)
}

func TestRunProbeFailure(t *testing.T) {
	f := newFixture(t, twoItems())
	delete(f.prober.durations, "v1.mp3")

	_, err := f.project(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errs.KindMediaProbe, errs.KindOf(err))
	assert.Empty(t, f.encoder.jobs)
}

func TestRunUndecodableImage(t *testing.T) {
	f := newFixture(t, twoItems())
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "i0.png"), []byte("not an image"), 0644))

	_, err := f.project(t).Run(context.Background())
	assert.Equal(t, errs.KindMediaProbe, errs.KindOf(err))
}

func TestRunRefusesLockedWorkdir(t *testing.T) {
	f := newFixture(t, twoItems())
	other := flock.New(f.cfg.LockPath())
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer other.Unlock()

	_, err = f.project(t).Run(context.Background())
	assert.Equal(t, errs.KindConfig, errs.KindOf(err))
	assert.Empty(t, f.encoder.jobs)
}

func TestRunSeedIsReproducible(t *testing.T) {
	f := newFixture(t, twoItems())
	first, err := f.project(t).Run(context.Background())
	require.NoError(t, err)
	second, err := f.project(t).Run(context.Background())
	require.NoError(t, err)

	a := first.Plan.LayersOf(director.KindImage)
	b := second.Plan.LayersOf(director.KindImage)
	for i := range a {
		assert.Equal(t, a[i].Effect, b[i].Effect)
	}
}
