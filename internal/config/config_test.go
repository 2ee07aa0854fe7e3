package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"WORKDIR", "METAFILE", "MODE", "SEED", "ENCODER"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, DefaultWorkdir, cfg.Workdir)
	assert.Equal(t, DefaultMetafile, cfg.Metafile)
	assert.Equal(t, ModeRender, cfg.Mode)
	assert.Equal(t, DefaultEncoder, cfg.VideoEncoder)
	assert.Equal(t, int64(0), cfg.Seed)
	assert.Equal(t, filepath.Join(DefaultWorkdir, DefaultMetafile), cfg.MetaPath())
	assert.Equal(t, filepath.Join(DefaultWorkdir, "output.mp4"), cfg.OutputPath())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("WORKDIR", "/tmp/movie")
	t.Setenv("METAFILE", "script.json")
	t.Setenv("MODE", "Preview")
	t.Setenv("SEED", "42")

	cfg := FromEnv()
	assert.Equal(t, "/tmp/movie", cfg.Workdir)
	assert.Equal(t, "script.json", cfg.Metafile)
	assert.Equal(t, ModePreview, cfg.Mode)
	assert.Equal(t, int64(42), cfg.Seed)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg := &Config{Workdir: "/w", Metafile: "meta.json", Mode: "interactive"}
	assert.Error(t, cfg.Validate())
}

func TestFontPath(t *testing.T) {
	cfg := &Config{ResourceDir: "/opt/res", FontFile: "a.otf"}
	assert.Equal(t, "/opt/res/fonts/a.otf", cfg.FontPath())

	cfg.FontFile = "/abs/b.ttf"
	assert.Equal(t, "/abs/b.ttf", cfg.FontPath())
}

func TestDefaultLayoutGeometry(t *testing.T) {
	l := DefaultLayout()
	require.NoError(t, l.Validate())

	assert.Equal(t, 733, l.BandHeight())
	assert.Equal(t, (1920-l.BandHeight())/2, l.BandY())
	assert.Equal(t, l.BandY()+l.BandHeight(), l.BandBottom())

	w, h := l.ImageBox()
	assert.Equal(t, 648, w)
	assert.Equal(t, 366, h)
}

func TestLoadLayoutOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gap: 0.5\npersistence: gap\nmark_color: \"#00FF00\"\n"), 0o644))

	l, err := LoadLayout(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, l.Gap)
	assert.Equal(t, PersistGap, l.Persistence)
	assert.Equal(t, "#00FF00", l.MarkColor)
	assert.Equal(t, 1080, l.Width, "unset keys keep defaults")
}

func TestLoadLayoutRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("persistence: forever\n"), 0o644))

	_, err := LoadLayout(path)
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#102030")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x10), c.R)
	assert.Equal(t, uint8(0x20), c.G)
	assert.Equal(t, uint8(0x30), c.B)
	assert.Equal(t, uint8(0xff), c.A)

	_, err = ParseColor("red")
	assert.Error(t, err)

	assert.Equal(t, "0x102030", FFmpegColor("#102030"))
	assert.Equal(t, "0x102030@0.502", FFmpegColor("#10203080"))
}

func TestScaledLayoutStaysEven(t *testing.T) {
	l := DefaultLayout().Scaled(0.5)
	assert.Equal(t, 540, l.Width)
	assert.Equal(t, 960, l.Height)
	assert.Equal(t, 28.0, l.CNFontSize)
	require.NoError(t, l.Validate())
}
