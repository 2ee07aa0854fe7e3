package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Run modes.
const (
	ModeRender  = "render"
	ModePreview = "preview"
	ModePlan    = "plan"
)

const (
	DefaultWorkdir     = "/default/workdir"
	DefaultMetafile    = "meta.json"
	DefaultResourceDir = "resources"
	DefaultFontFile    = "NotoSansSC-Regular.otf"
	DefaultOutputName  = "output.mp4"
	DefaultPreviewName = "preview.mp4"
	DefaultPlanName    = "timeline.yaml"
	DefaultEncoder     = "libx264"
	DefaultAudioCodec  = "aac"
)

// Config holds the options of a single run. Visual constants live in Layout.
type Config struct {
	Workdir     string
	Metafile    string
	Mode        string
	ResourceDir string
	FontFile    string
	LayoutFile  string
	Seed        int64
	// VideoEncoder is an ffmpeg encoder name or "auto" for hardware detection.
	VideoEncoder string
	AudioCodec   string
	Quality      int
	Workers      int
	LogLevel     string
	LogFormat    string
	BuildVersion string
}

// FromEnv builds a Config from the process environment. A .env file in the
// current directory is loaded first when present; real environment variables win.
func FromEnv() *Config {
	_ = godotenv.Load()

	return &Config{
		Workdir:      getEnv("WORKDIR", DefaultWorkdir),
		Metafile:     getEnv("METAFILE", DefaultMetafile),
		Mode:         strings.ToLower(getEnv("MODE", ModeRender)),
		ResourceDir:  getEnv("RESOURCE_DIR", DefaultResourceDir),
		FontFile:     getEnv("FONT_FILE", DefaultFontFile),
		LayoutFile:   getEnv("LAYOUT_FILE", ""),
		Seed:         getEnvInt64("SEED", 0),
		VideoEncoder: getEnv("ENCODER", DefaultEncoder),
		AudioCodec:   DefaultAudioCodec,
		Quality:      int(getEnvInt64("QUALITY", 0)),
		Workers:      int(getEnvInt64("WORKERS", 0)),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", ""),
	}
}

// Validate checks option values that do not require touching the filesystem.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Workdir) == "" {
		return fmt.Errorf("workdir must not be empty")
	}
	if strings.TrimSpace(c.Metafile) == "" {
		return fmt.Errorf("metafile must not be empty")
	}
	switch c.Mode {
	case ModeRender, ModePreview, ModePlan:
	default:
		return fmt.Errorf("unknown mode %q (want %s, %s or %s)", c.Mode, ModeRender, ModePreview, ModePlan)
	}
	if c.Quality < 0 {
		return fmt.Errorf("quality must be >= 0, got %d", c.Quality)
	}
	return nil
}

// MetaPath is the absolute location of the script descriptor.
func (c *Config) MetaPath() string { return filepath.Join(c.Workdir, c.Metafile) }

// FontPath resolves the bundled caption font against the resource root.
func (c *Config) FontPath() string {
	if filepath.IsAbs(c.FontFile) {
		return c.FontFile
	}
	return filepath.Join(c.ResourceDir, "fonts", c.FontFile)
}

func (c *Config) OutputPath() string  { return filepath.Join(c.Workdir, DefaultOutputName) }
func (c *Config) PreviewPath() string { return filepath.Join(c.Workdir, DefaultPreviewName) }
func (c *Config) PlanPath() string    { return filepath.Join(c.Workdir, DefaultPlanName) }
func (c *Config) LockPath() string    { return filepath.Join(c.Workdir, ".script2video.lock") }

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}
