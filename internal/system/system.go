package system

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file limit; every layer of a long script
// is a separate ffmpeg input.
func InitResourceLimits(logger zerolog.Logger) {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logger.Warn().Err(err).Msg("cannot read open file limit")
		return
	}

	if rLimit.Cur >= 2048 {
		return
	}
	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logger.Warn().Err(err).Msg("cannot raise open file limit")
		return
	}
	logger.Debug().Uint64("nofile", uint64(rLimit.Cur)).Msg("open file limit raised")
}

// Host summarizes the machine the render runs on.
type Host struct {
	LogicalCPUs int
	TotalMemory uint64
	FreeMemory  uint64
}

// DescribeHost queries CPU and memory. Missing values are left zero.
func DescribeHost() Host {
	h := Host{}
	if n, err := cpu.Counts(true); err == nil {
		h.LogicalCPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		h.TotalMemory = vm.Total
		h.FreeMemory = vm.Available
	}
	return h
}

// WorkerCount bounds per-item parallel work. A positive configured value wins;
// otherwise the logical CPU count is used.
func WorkerCount(configured int, host Host) int {
	if configured > 0 {
		return configured
	}
	if host.LogicalCPUs > 0 {
		return host.LogicalCPUs
	}
	return runtime.NumCPU()
}

// CheckBinaries verifies ffmpeg and ffprobe are on PATH.
func CheckBinaries(names ...string) error {
	var missing []string
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required binaries not found on PATH: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GetBestH264Encoder returns the first available hardware H.264 encoder,
// falling back to libx264.
func GetBestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickEncoder(string(out))
}

func pickEncoder(encoders string) string {
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(encoders, name) {
			return name
		}
	}
	return "libx264"
}

// DefaultQuality is the per-encoder quality used when none is configured.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75
	case "h264_nvenc":
		return 28
	default:
		return 23
	}
}

// QualityArgs maps a quality value onto the encoder's rate control flags.
func QualityArgs(encoder string, quality int, preset string) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox does not accept -q:v everywhere; use a bitrate.
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default:
		if preset == "" {
			preset = "medium"
		}
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", preset}
	}
}
