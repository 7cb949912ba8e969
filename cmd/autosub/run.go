package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"autosub/internal/config"
	"autosub/internal/logging"
	"autosub/internal/media"
	"autosub/internal/media/ffprobe"
	"autosub/internal/pipeline"
	"autosub/internal/preflight"
	"autosub/internal/runlock"
	"autosub/internal/services"
	"autosub/internal/services/whisperx"
	"autosub/internal/transcriptcache"
	"autosub/internal/translate"
)

func runSubtitles(cmd *cobra.Command, cmdCtx *commandContext, args []string) error {
	cfg, err := cmdCtx.ensureConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg, cmdCtx.overrides.verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	for _, notice := range cfg.Notices() {
		logging.WarnWithContext(logger, notice, "config_adjusted",
			logging.String(logging.FieldErrorHint, "pick a multilingual model to transcribe other languages"),
			logging.String(logging.FieldImpact, "transcription runs with the adjusted value"),
		)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = services.WithRunID(ctx, uuid.NewString())

	inputs, err := pipeline.ResolveInputs(args)
	if err != nil {
		return err
	}
	if err := preflight.RequireBinaries(cfg); err != nil {
		return err
	}

	lock, err := runlock.Acquire(cfg.Paths.OutputDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release output lock failed", logging.Error(err))
		}
	}()

	whisper := whisperx.NewService(whisperx.Config{
		Model:              cfg.Transcription.Model,
		Device:             cfg.Transcription.Device,
		ComputeType:        cfg.Transcription.ComputeType,
		Language:           cfg.Transcription.Language,
		EnhanceConsistency: cfg.Transcription.EnhanceConsistency,
	}, logger)
	if err := whisper.Load(ctx); err != nil {
		return err
	}

	transcriber, closeCache, err := buildTranscriber(cfg, whisper, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	opts, err := runOptions(cfg)
	if err != nil {
		return err
	}
	ffmpeg := media.NewFFmpeg(cfg.FFmpegBinary(), logger)
	pipeDeps := pipeline.Dependencies{
		Transcriber: transcriber,
		Extractor:   ffmpeg,
		Muxer:       ffmpeg,
		Prober:      ffprobe.New(cfg.FFprobeBinary()),
	}
	if opts.Translate {
		translator, err := translate.NewProvider(cfg)
		if err != nil {
			return err
		}
		pipeDeps.Translator = translator
		logger.Debug("translation provider ready",
			logging.String("provider", translate.ProviderName(translator)),
			logging.String("target", opts.Target),
		)
	}

	runner, err := pipeline.New(opts, pipeDeps, logger)
	if err != nil {
		return err
	}
	report := runner.Run(ctx, inputs)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderReport(report, shouldColorize(out)))

	if ctx.Err() != nil {
		return context.Canceled
	}
	return nil
}

// buildTranscriber wraps whisper with the transcript cache when enabled.
// The returned close func is always safe to call.
func buildTranscriber(cfg *config.Config, whisper *whisperx.Service, logger *slog.Logger) (pipeline.Transcriber, func(), error) {
	if !cfg.Cache.Enabled {
		return whisper, func() {}, nil
	}
	store, err := transcriptcache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, nil, err
	}
	params := transcriptcache.Params{
		Model:              whisper.Model(),
		Language:           whisper.Language(),
		EnhanceConsistency: cfg.Transcription.EnhanceConsistency,
	}
	closeFn := func() {
		if err := store.Close(); err != nil {
			logger.Warn("close transcript cache failed", logging.Error(err))
		}
	}
	return transcriptcache.NewTranscriber(whisper, store, params, logger), closeFn, nil
}

// runOptions maps the effective configuration onto pipeline options.
func runOptions(cfg *config.Config) (pipeline.Options, error) {
	subtitleDir := cfg.Paths.OutputDir
	if !cfg.Output.Subtitles {
		cwd, err := os.Getwd()
		if err != nil {
			return pipeline.Options{}, fmt.Errorf("resolve working directory: %w", err)
		}
		subtitleDir = cwd
	}
	opts := pipeline.Options{
		SubtitleDir:      subtitleDir,
		VideoDir:         cfg.Paths.OutputDir,
		BurnVideo:        cfg.Output.Video,
		ExtractWorkers:   cfg.Extraction.Workers,
		Translate:        cfg.TranslationActive(),
		Target:           cfg.Translation.Target,
		BatchSize:        cfg.Translation.BatchSize,
		TranslateWorkers: cfg.Translation.MaxWorkers,
		Limiter:          translate.NewLimiter(cfg.Translation.RequestsPerMinute),
		DetectLanguage:   cfg.Transcription.Language == "",
	}
	if cfg.Output.Audio {
		opts.AudioDir = cfg.Paths.OutputDir
	}
	return opts, nil
}
