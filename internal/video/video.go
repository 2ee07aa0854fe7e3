package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ivlev/script2video/internal/audio"
	"github.com/ivlev/script2video/internal/errs"
	"github.com/ivlev/script2video/internal/renderer"
	"github.com/ivlev/script2video/internal/system"
	"github.com/rs/zerolog"
)

// Job is one muxed render: the video graph, the voice track and the output
// settings.
type Job struct {
	Graph    renderer.Graph
	Audio    audio.Track
	Duration float64
	FPS      int

	VideoEncoder string
	AudioCodec   string
	Quality      int
	Preset       string // libx264 only; empty means medium

	Output string
}

// Encoder produces the final file for a Job.
type Encoder interface {
	Compose(ctx context.Context, job Job) error
}

// RunFunc executes a command and returns its combined output.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// FFmpegEncoder renders with a single ffmpeg invocation. The file is written
// next to Output under a hidden temporary name and renamed once ffmpeg
// succeeds; a failed run leaves no partial output behind.
type FFmpegEncoder struct {
	Binary string
	Logger zerolog.Logger
	Run    RunFunc
}

func NewFFmpegEncoder(logger zerolog.Logger) *FFmpegEncoder {
	return &FFmpegEncoder{Binary: "ffmpeg", Logger: logger, Run: runCommand}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func (e *FFmpegEncoder) Compose(ctx context.Context, job Job) error {
	if job.Duration <= 0 {
		return errs.Render("compose", fmt.Errorf("non-positive duration %v", job.Duration))
	}
	tmp := TempPath(job.Output)
	args := e.buildArgs(job, tmp)

	binary := e.Binary
	if binary == "" {
		binary = "ffmpeg"
	}
	run := e.Run
	if run == nil {
		run = runCommand
	}

	e.Logger.Debug().
		Str("output", job.Output).
		Str("encoder", job.VideoEncoder).
		Int("inputs", job.Graph.NextInput()+len(job.Audio.Inputs)).
		Float64("duration", job.Duration).
		Msg("starting ffmpeg")

	out, err := run(ctx, binary, args...)
	if err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			e.Logger.Warn().Err(rmErr).Str("path", tmp).Msg("cannot remove partial output")
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errs.Render("ffmpeg", ctxErr)
		}
		return errs.Render("ffmpeg", fmt.Errorf("%w, output: %s", err, tail(string(out), 20)))
	}

	if err := os.Rename(tmp, job.Output); err != nil {
		os.Remove(tmp)
		return errs.Render("finalize", err)
	}
	return nil
}

func (e *FFmpegEncoder) buildArgs(job Job, tmp string) []string {
	total := fmt.Sprintf("%.6f", job.Duration)
	fps := fmt.Sprintf("%d", job.FPS)

	args := []string{"-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", job.Graph.Background,
	}
	for _, still := range job.Graph.Stills {
		args = append(args, "-loop", "1", "-framerate", fps, "-t", total, "-i", still)
	}
	for _, voice := range job.Audio.Inputs {
		args = append(args, "-i", voice)
	}

	filters := append(append([]string(nil), job.Graph.Filters...), job.Audio.Filters...)
	args = append(args,
		"-filter_complex", strings.Join(filters, ";"),
		"-map", "["+renderer.VideoLabel+"]",
		"-map", "["+audio.OutputLabel+"]",
		"-r", fps,
		"-c:v", job.VideoEncoder,
		"-pix_fmt", "yuv420p",
	)
	args = append(args, system.QualityArgs(job.VideoEncoder, job.Quality, job.Preset)...)

	audioCodec := job.AudioCodec
	if audioCodec == "" {
		audioCodec = "aac"
	}
	args = append(args,
		"-c:a", audioCodec,
		"-t", total,
		"-movflags", "+faststart",
		"-f", "mp4",
		tmp,
	)
	return args
}

// TempPath is the hidden sibling of output used while ffmpeg runs, e.g.
// output.mp4 -> .output-<uuid>.mp4.
func TempPath(output string) string {
	dir, base := filepath.Split(output)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf(".%s-%s%s", stem, uuid.NewString(), ext))
}

func tail(s string, lines int) string {
	parts := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(parts) > lines {
		parts = parts[len(parts)-lines:]
	}
	return strings.Join(parts, "\n")
}
