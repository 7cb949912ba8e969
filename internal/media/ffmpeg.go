package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"autosub/internal/logging"
	"autosub/internal/services"
)

// FFmpegCommand is the default binary name.
const FFmpegCommand = "ffmpeg"

type commandRunner func(ctx context.Context, name string, args ...string) error

// FFmpeg runs audio extraction and subtitle burn-in.
type FFmpeg struct {
	binary string
	logger *slog.Logger
	run    commandRunner
}

// NewFFmpeg constructs a runner for binary (ffmpeg when empty).
func NewFFmpeg(binary string, logger *slog.Logger) *FFmpeg {
	if strings.TrimSpace(binary) == "" {
		binary = FFmpegCommand
	}
	return &FFmpeg{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "ffmpeg"),
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (f *FFmpeg) WithCommandRunner(r func(ctx context.Context, name string, args ...string) error) {
	if f != nil && r != nil {
		f.run = r
	}
}

// ExtractAudio writes a mono audio track of source to dest, overwriting.
func (f *FFmpeg) ExtractAudio(ctx context.Context, source, dest string) error {
	if strings.TrimSpace(source) == "" || strings.TrimSpace(dest) == "" {
		return services.Wrap(services.ErrValidation, "extract", "ffmpeg", "source and destination required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("extract audio: ensure dir: %w", err)
	}
	started := time.Now()
	if err := f.run(ctx, f.binary, extractArgs(source, dest)...); err != nil {
		return f.toolError(ctx, "extract", "extract audio", err)
	}
	logging.WithContext(ctx, f.logger).Debug("audio extracted",
		logging.String("audio_path", dest),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// BurnSubtitles re-encodes video with the cue file rendered into the
// picture and writes the result to dest. The output only appears at dest
// once ffmpeg succeeded.
func (f *FFmpeg) BurnSubtitles(ctx context.Context, video, cueFile, dest string) error {
	if strings.TrimSpace(video) == "" || strings.TrimSpace(cueFile) == "" || strings.TrimSpace(dest) == "" {
		return services.Wrap(services.ErrValidation, "mux", "ffmpeg", "video, subtitle, and destination required", nil)
	}
	if _, err := os.Stat(cueFile); err != nil {
		return services.Wrap(services.ErrNotFound, "mux", "ffmpeg", "subtitle file missing", err)
	}
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("burn subtitles: ensure dir: %w", err)
	}
	ext := filepath.Ext(dest)
	tmpPath := filepath.Join(dir, "."+strings.TrimSuffix(filepath.Base(dest), ext)+".partial"+ext)

	started := time.Now()
	if err := f.run(ctx, f.binary, burnArgs(video, cueFile, tmpPath)...); err != nil {
		_ = os.Remove(tmpPath)
		return f.toolError(ctx, "mux", "burn subtitles", err)
	}
	if _, err := os.Stat(tmpPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "mux", "burn subtitles", "ffmpeg produced no output", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("burn subtitles: replace output: %w", err)
	}
	logging.WithContext(ctx, f.logger).Debug("subtitles burned",
		logging.String("video_path", dest),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (f *FFmpeg) toolError(ctx context.Context, stage, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return services.Wrap(services.ErrExternalTool, stage, op, "", err)
}

func extractArgs(source, dest string) []string {
	return []string{"-y", "-hide_banner", "-loglevel", "error", "-i", source, "-ac", "1", "-async", "1", dest}
}

func burnArgs(video, cueFile, dest string) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", video,
		"-vf", "subtitles=filename=" + escapeFilterValue(cueFile),
		"-c:v", "libx264",
		"-c:a", "copy",
		dest,
	}
}

// escapeFilterValue escapes value for use inside a -vf argument. ffmpeg
// unescapes it twice, first while parsing the filtergraph and then while
// parsing the filter's options, so both levels are applied here.
func escapeFilterValue(value string) string {
	return backslashEscape(backslashEscape(value, `\':`), `\'[],;`)
}

func backslashEscape(value, special string) string {
	var b strings.Builder
	for _, r := range value {
		if strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%s exited with %d: %s", name, exitErr.ExitCode(), strings.TrimSpace(string(output)))
	}
	return fmt.Errorf("%s: %w", name, err)
}
