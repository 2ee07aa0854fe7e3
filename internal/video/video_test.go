package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/script2video/internal/audio"
	"github.com/ivlev/script2video/internal/errs"
	"github.com/ivlev/script2video/internal/renderer"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJob(output string) Job {
	return Job{
		Graph: renderer.Graph{
			Background: "color=c=0x000000:s=1080x1920:r=24:d=3.300000",
			Stills:     []string{"/a/title.png", "/a/image-000.png"},
			Filters:    []string{"[0:v]format=yuv420p[vout]"},
		},
		Audio: audio.Track{
			Inputs:  []string{"/w/v0.mp3"},
			Filters: []string{"[3:a]volume=0.900000[a0]", "[a0]concat=n=1:v=0:a=1[aout]"},
		},
		Duration:     3.3,
		FPS:          24,
		VideoEncoder: "libx264",
		Quality:      23,
		Output:       output,
	}
}

// recorder fakes ffmpeg: it writes the file named by the last argument.
type recorder struct {
	args []string
	err  error
}

func (r *recorder) run(_ context.Context, _ string, args ...string) ([]byte, error) {
	r.args = args
	tmp := args[len(args)-1]
	if werr := os.WriteFile(tmp, []byte("partial"), 0644); werr != nil {
		return nil, werr
	}
	return []byte("ffmpeg says no\n"), r.err
}

func TestBuildArgs(t *testing.T) {
	e := NewFFmpegEncoder(zerolog.Nop())
	args := e.buildArgs(testJob("/w/output.mp4"), "/w/.output-x.mp4")
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-f lavfi -i color=c=0x000000:s=1080x1920:r=24:d=3.300000")
	assert.Contains(t, joined, "-loop 1 -framerate 24 -t 3.300000 -i /a/title.png")
	assert.Contains(t, joined, "-loop 1 -framerate 24 -t 3.300000 -i /a/image-000.png -i /w/v0.mp3")
	assert.Contains(t, joined, "-map [vout] -map [aout] -r 24 -c:v libx264")
	assert.Contains(t, joined, "-crf 23 -preset medium")
	assert.Contains(t, joined, "-c:a aac -t 3.300000")
	assert.Equal(t, "/w/.output-x.mp4", args[len(args)-1])
	assert.Equal(t, "mp4", args[len(args)-2])

	i := indexOf(args, "-filter_complex")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, "[0:v]format=yuv420p[vout];[3:a]volume=0.900000[a0];[a0]concat=n=1:v=0:a=1[aout]", args[i+1])
}

func TestComposeRenamesOnSuccess(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output.mp4")
	rec := &recorder{}
	e := NewFFmpegEncoder(zerolog.Nop())
	e.Run = rec.run

	require.NoError(t, e.Compose(context.Background(), testJob(out)))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "partial", string(data))
	assertOnly(t, dir, "output.mp4")
	assert.True(t, strings.HasPrefix(filepath.Base(rec.args[len(rec.args)-1]), ".output-"))
}

func TestComposeRemovesPartialOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output.mp4")
	e := NewFFmpegEncoder(zerolog.Nop())
	e.Run = (&recorder{err: errors.New("exit status 1")}).run

	err := e.Compose(context.Background(), testJob(out))
	require.Error(t, err)
	assert.Equal(t, errs.KindRender, errs.KindOf(err))
	assert.Contains(t, err.Error(), "ffmpeg says no")
	assertOnly(t, dir)
}

func TestComposeRejectsEmptyDuration(t *testing.T) {
	job := testJob(filepath.Join(t.TempDir(), "output.mp4"))
	job.Duration = 0
	err := NewFFmpegEncoder(zerolog.Nop()).Compose(context.Background(), job)
	assert.Equal(t, errs.KindRender, errs.KindOf(err))
}

func TestTempPath(t *testing.T) {
	p := TempPath("/w/preview.mp4")
	assert.Equal(t, "/w", filepath.Dir(p))
	assert.True(t, strings.HasPrefix(filepath.Base(p), ".preview-"))
	assert.True(t, strings.HasSuffix(p, ".mp4"))
	assert.NotEqual(t, p, TempPath("/w/preview.mp4"))
}

func assertOnly(t *testing.T, dir string, names ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	assert.ElementsMatch(t, names, got)
}

func indexOf(args []string, v string) int {
	for i, a := range args {
		if a == v {
			return i
		}
	}
	return -1
}
