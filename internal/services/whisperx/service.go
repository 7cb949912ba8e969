package whisperx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"autosub/internal/language"
	"autosub/internal/logging"
	"autosub/internal/services"
	"autosub/internal/subtitles"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

// Service transcribes audio files with WhisperX.
type Service struct {
	cfg      Config
	logger   *slog.Logger
	run      commandRunner
	lookPath func(string) (string, error)
	device   string
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config, logger *slog.Logger) *Service {
	s := &Service{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "whisperx"),
		lookPath: exec.LookPath,
	}
	s.run = s.runCommand
	return s
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	if runner != nil {
		s.run = runner
	}
}

// WithLookPath overrides binary resolution (for testing).
func (s *Service) WithLookPath(lookPath func(string) (string, error)) {
	if lookPath != nil {
		s.lookPath = lookPath
	}
}

// Model returns the configured model name.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// Language returns the forced transcription language, if any. Models with
// an ".en" suffix are English-only.
func (s *Service) Language() string {
	if strings.HasSuffix(s.Model(), ".en") {
		return "en"
	}
	return language.ToISO2(s.cfg.Language)
}

// Device returns the resolved device; "auto" picks cuda when nvidia-smi is
// on PATH.
func (s *Service) Device() string {
	if s.device != "" {
		return s.device
	}
	switch strings.ToLower(strings.TrimSpace(s.cfg.Device)) {
	case CUDADevice:
		s.device = CUDADevice
	case CPUDevice:
		s.device = CPUDevice
	default:
		s.device = CPUDevice
		if _, err := s.lookPath(NvidiaSMICommand); err == nil {
			s.device = CUDADevice
		}
	}
	return s.device
}

// Load checks that the WhisperX toolchain can be launched. A failure here
// aborts the whole run.
func (s *Service) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.lookPath(UVXCommand); err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribe", "load model",
			fmt.Sprintf("%s not found on PATH; install uv to run whisperx", UVXCommand), err)
	}
	s.logger.Info("whisperx ready",
		logging.String("model", s.Model()),
		logging.String("device", s.Device()),
		logging.String("language", displayLanguage(s.Language())),
	)
	return nil
}

// Transcribe runs WhisperX on audioPath and returns its segments in order.
func (s *Service) Transcribe(ctx context.Context, audioPath string) (subtitles.Transcript, error) {
	if strings.TrimSpace(audioPath) == "" {
		return subtitles.Transcript{}, services.Wrap(services.ErrValidation, "transcribe", "whisperx", "audio path required", nil)
	}
	workDir, err := os.MkdirTemp("", "autosub-whisperx-")
	if err != nil {
		return subtitles.Transcript{}, fmt.Errorf("transcribe: create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	started := time.Now()
	if err := s.run(ctx, UVXCommand, s.buildArgs(audioPath, workDir)...); err != nil {
		if ctx.Err() != nil {
			return subtitles.Transcript{}, ctx.Err()
		}
		return subtitles.Transcript{}, services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "", err)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	raw, err := os.ReadFile(filepath.Join(workDir, base+".json"))
	if err != nil {
		return subtitles.Transcript{}, services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "no json output", err)
	}
	transcript, err := DecodeTranscript(raw)
	if err != nil {
		return subtitles.Transcript{}, services.Wrap(services.ErrValidation, "transcribe", "whisperx", "", err)
	}
	if forced := s.Language(); forced != "" {
		transcript.Language = forced
	}
	logging.WithContext(ctx, s.logger).Debug("whisperx finished",
		logging.Int("segments", len(transcript.Segments)),
		logging.String("language", transcript.Language),
		logging.Duration("elapsed", time.Since(started)),
	)
	return transcript, nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir string) []string {
	args := make([]string, 0, 24)
	device := s.Device()
	if device == CUDADevice {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		WhisperXPackage,
		source,
		"--model", s.Model(),
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--device", device,
	)
	if device == CPUDevice {
		computeType := s.cfg.ComputeType
		if computeType == "" {
			computeType = DefaultComputeType
		}
		args = append(args, "--compute_type", computeType)
	}
	if lang := s.Language(); lang != "" {
		args = append(args, "--language", lang)
	}
	condition := "False"
	if s.cfg.EnhanceConsistency {
		condition = "True"
	}
	args = append(args, "--condition_on_previous_text", condition)
	return args
}

// runCommand runs a command, killing it when ctx is cancelled.
func (s *Service) runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, tail(strings.TrimSpace(string(output)), 2048))
	}
	return nil
}

func tail(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return "..." + text[len(text)-limit:]
}

func displayLanguage(code string) string {
	if code == "" {
		return "auto"
	}
	return code
}
