package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	CacheDir  string `toml:"cache_dir"`
}

// Output selects which artifacts are kept in the output directory.
type Output struct {
	// Subtitles places <name>.srt in output_dir instead of the working directory.
	Subtitles bool `toml:"subtitles"`
	// Audio keeps extracted audio in output_dir instead of a throwaway temp dir.
	Audio bool `toml:"audio"`
	// Video burns the subtitles into <name>_subtitled.mp4.
	Video bool `toml:"video"`
}

// Transcription contains speech-to-text settings.
type Transcription struct {
	Model              string `toml:"model"`
	Device             string `toml:"device"`
	ComputeType        string `toml:"compute_type"`
	Language           string `toml:"language"`
	EnhanceConsistency bool   `toml:"enhance_consistency"`
}

// Translation contains batch translation settings.
type Translation struct {
	Enabled           bool   `toml:"enabled"`
	Target            string `toml:"target"`
	Provider          string `toml:"provider"`
	BatchSize         int    `toml:"batch_size"`
	MaxWorkers        int    `toml:"max_workers"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	GoogleBaseURL     string `toml:"google_base_url"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
}

// Extraction contains audio extraction settings.
type Extraction struct {
	Workers int `toml:"workers"`
}

// LLM contains connection settings for the chat-completion translator.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Cache contains configuration for the transcript cache.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// File enables an additional JSON log file under paths.log_dir.
	File bool `toml:"file"`
}

// Config encapsulates all configuration values for autosub.
//
// Configuration sections by subsystem:
//   - Paths: output, log, and cache directories
//   - Output: which artifacts land in the output directory
//   - Transcription: WhisperX model, device, and language
//   - Translation: target language, provider, batching, and concurrency
//   - Extraction: audio extraction parallelism
//   - LLM: chat-completion connection settings for the llm provider
//   - Cache: transcript cache keyed by audio content
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Output        Output        `toml:"output"`
	Transcription Transcription `toml:"transcription"`
	Translation   Translation   `toml:"translation"`
	Extraction    Extraction    `toml:"extraction"`
	LLM           LLM           `toml:"llm"`
	Cache         Cache         `toml:"cache"`
	Logging       Logging       `toml:"logging"`

	notices []string
}

// Notices lists adjustments normalization made to values the user asked
// for, such as a language overridden by an English-only model.
func (c *Config) Notices() []string {
	return slices.Clone(c.notices)
}

func (c *Config) notice(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !slices.Contains(c.notices, msg) {
		c.notices = append(c.notices, msg)
	}
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. Environment
// overrides (AUTOSUB_*) are applied on top of the file before validation.
// The returned config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Finalize normalizes and validates a config after callers (typically CLI
// flags) changed fields following Load.
func (c *Config) Finalize() error {
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("autosub.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir}
	if c.Logging.File {
		dirs = append(dirs, c.Paths.LogDir)
	}
	if c.Cache.Enabled {
		dirs = append(dirs, filepath.Dir(c.Cache.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// TranslationActive reports whether a run will construct a translator.
func (c *Config) TranslationActive() bool {
	return c.Translation.Enabled && c.Translation.Target != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "autosub")
	}
	return defaultCacheDirFallback
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	redacted := *c
	if redacted.LLM.APIKey != "" {
		redacted.LLM.APIKey = "********"
	}
	data, err := toml.Marshal(redacted)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

// LLMConfig contains the LLM connection settings used by the llm translator.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetLLM returns the LLM connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}
