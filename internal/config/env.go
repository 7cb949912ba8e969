package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix shared by every environment override.
const EnvPrefix = "AUTOSUB"

// envOverrides mirrors the settings operators commonly change per shell.
// Nil pointers mean "not set".
type envOverrides struct {
	OutputDir         *string `envconfig:"OUTPUT_DIR"`
	Model             *string `envconfig:"MODEL"`
	Device            *string `envconfig:"DEVICE"`
	Language          *string `envconfig:"LANGUAGE"`
	TranslateTo       *string `envconfig:"TRANSLATE_TO"`
	TranslateOff      *bool   `envconfig:"TRANSLATE_OFF"`
	Provider          *string `envconfig:"TRANSLATION_PROVIDER"`
	BatchSize         *int    `envconfig:"BATCH_SIZE"`
	MaxWorkers        *int    `envconfig:"MAX_WORKERS"`
	ExtractWorkers    *int    `envconfig:"EXTRACT_WORKERS"`
	RequestsPerMinute *int    `envconfig:"REQUESTS_PER_MINUTE"`
	LLMAPIKey         *string `envconfig:"LLM_API_KEY"`
	LLMModel          *string `envconfig:"LLM_MODEL"`
	LLMBaseURL        *string `envconfig:"LLM_BASE_URL"`
	LogLevel          *string `envconfig:"LOG_LEVEL"`
	LogFormat         *string `envconfig:"LOG_FORMAT"`
	CacheEnabled      *bool   `envconfig:"CACHE"`
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	setString(&c.Paths.OutputDir, env.OutputDir)
	setString(&c.Transcription.Model, env.Model)
	setString(&c.Transcription.Device, env.Device)
	setString(&c.Transcription.Language, env.Language)
	setString(&c.Translation.Target, env.TranslateTo)
	if env.TranslateOff != nil {
		c.Translation.Enabled = !*env.TranslateOff
	}
	setString(&c.Translation.Provider, env.Provider)
	setInt(&c.Translation.BatchSize, env.BatchSize)
	setInt(&c.Translation.MaxWorkers, env.MaxWorkers)
	setInt(&c.Extraction.Workers, env.ExtractWorkers)
	setInt(&c.Translation.RequestsPerMinute, env.RequestsPerMinute)
	setString(&c.LLM.APIKey, env.LLMAPIKey)
	setString(&c.LLM.Model, env.LLMModel)
	setString(&c.LLM.BaseURL, env.LLMBaseURL)
	setString(&c.Logging.Level, env.LogLevel)
	setString(&c.Logging.Format, env.LogFormat)
	if env.CacheEnabled != nil {
		c.Cache.Enabled = *env.CacheEnabled
	}
	return nil
}

func setString(dst *string, value *string) {
	if value != nil && strings.TrimSpace(*value) != "" {
		*dst = *value
	}
}

func setInt(dst *int, value *int) {
	if value != nil {
		*dst = *value
	}
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. An explicit path that
// does not exist is an error; the implicit ".env" is optional. The returned
// string is the file that was loaded, empty when none was.
func LoadDotEnv(path string) (string, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		if custom := strings.TrimSpace(os.Getenv(EnvPrefix + "_ENV_FILE")); custom != "" {
			path = custom
			explicit = true
		} else {
			path = ".env"
		}
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return "", nil
		}
		return "", fmt.Errorf("env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return "", fmt.Errorf("load env file %s: %w", path, err)
	}
	return path, nil
}
