package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ivlev/script2video/internal/config"
	"github.com/ivlev/script2video/internal/engine"
	"github.com/ivlev/script2video/internal/errs"
	"github.com/ivlev/script2video/internal/logging"
	"github.com/ivlev/script2video/internal/system"
	"github.com/ivlev/script2video/internal/video"
)

func newRootCommand() *cobra.Command {
	cfg := config.FromEnv()
	cfg.BuildVersion = version

	rootCmd := &cobra.Command{
		Use:           "script2video",
		Short:         "Compose a captioned vertical video from a voiced script",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.Workdir, "workdir", "w", cfg.Workdir, "Directory holding the metafile and its media (WORKDIR)")
	flags.StringVar(&cfg.Metafile, "metafile", cfg.Metafile, "Script descriptor inside the workdir (METAFILE)")
	flags.StringVarP(&cfg.Mode, "mode", "m", cfg.Mode, "render, preview or plan (MODE)")
	flags.StringVar(&cfg.ResourceDir, "resource-dir", cfg.ResourceDir, "Root of bundled resources (RESOURCE_DIR)")
	flags.StringVar(&cfg.FontFile, "font", cfg.FontFile, "Caption font under <resource-dir>/fonts, or an absolute path (FONT_FILE)")
	flags.StringVar(&cfg.LayoutFile, "layout", cfg.LayoutFile, "YAML file overriding layout constants (LAYOUT_FILE)")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Effect seed, 0 picks one from the clock (SEED)")
	flags.StringVar(&cfg.VideoEncoder, "encoder", cfg.VideoEncoder, "ffmpeg video encoder or auto (ENCODER)")
	flags.IntVar(&cfg.Quality, "quality", cfg.Quality, "Encoder quality, 0 uses the encoder default (QUALITY)")
	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "Parallel probe/asset workers, 0 uses every CPU (WORKERS)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "trace, debug, info, warn or error (LOG_LEVEL)")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "console or json, empty picks by terminal (LOG_FORMAT)")

	return rootCmd
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	logger, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return errs.Config("logging", err)
	}
	logger = logger.With().Str("version", cfg.BuildVersion).Logger()

	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	if err := cfg.Validate(); err != nil {
		return errs.Config("config", err)
	}
	layout, err := config.LoadLayout(cfg.LayoutFile)
	if err != nil {
		return errs.Config("layout", err)
	}

	binaries := []string{"ffprobe"}
	if cfg.Mode != config.ModePlan {
		binaries = append(binaries, "ffmpeg")
	}
	if err := system.CheckBinaries(binaries...); err != nil {
		return errs.Config("environment", err)
	}
	system.InitResourceLimits(logger)

	project := engine.NewProject(cfg, layout, system.FFprobe{}, video.NewFFmpegEncoder(logger), logger)
	project.Stdout = cmd.OutOrStdout()
	if _, err := project.Run(cmd.Context()); err != nil {
		logger.Error().Err(err).Str("kind", errs.KindOf(err).String()).Int("exit", errs.ExitCode(err)).Msg("composition failed")
		return err
	}
	return nil
}
