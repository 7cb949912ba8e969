package config

import "runtime"

const (
	defaultConfigPath            = "~/.config/autosub/config.toml"
	defaultOutputDir             = "."
	defaultLogDir                = "~/.local/share/autosub/logs"
	defaultCacheDirFallback      = "~/.cache/autosub"
	defaultCacheFile             = "transcripts.db"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultModel                 = "small"
	defaultDevice                = "auto"
	defaultComputeType           = "float32"
	defaultTranslateTarget       = "tr"
	defaultTranslationProvider   = ProviderGoogle
	defaultBatchSize             = 10
	defaultMaxWorkers            = 4
	defaultGoogleBaseURL         = "https://translate.googleapis.com/translate_a/single"
	defaultTranslationTimeoutSec = 30
	defaultLLMBaseURL            = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel              = "google/gemini-3-flash-preview"
	defaultLLMReferer            = "https://github.com/autosub/autosub"
	defaultLLMTitle              = "autosub"
	defaultLLMTimeoutSeconds     = 60
)

// Translation providers.
const (
	ProviderGoogle = "google"
	ProviderLLM    = "llm"
)

// Transcription devices.
const (
	DeviceAuto = "auto"
	DeviceCPU  = "cpu"
	DeviceCUDA = "cuda"
)

// DefaultExtractWorkers returns half the logical CPUs, never less than one.
func DefaultExtractWorkers() int {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		return 1
	}
	return workers
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			CacheDir:  defaultCacheDir(),
		},
		Transcription: Transcription{
			Model:       defaultModel,
			Device:      defaultDevice,
			ComputeType: defaultComputeType,
		},
		Translation: Translation{
			Enabled:        true,
			Target:         defaultTranslateTarget,
			Provider:       defaultTranslationProvider,
			BatchSize:      defaultBatchSize,
			MaxWorkers:     defaultMaxWorkers,
			GoogleBaseURL:  defaultGoogleBaseURL,
			TimeoutSeconds: defaultTranslationTimeoutSec,
		},
		Extraction: Extraction{
			Workers: DefaultExtractWorkers(),
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
