package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if c.Extraction.Workers < 1 {
		return errors.New("extraction.workers must be positive")
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Path) == "" {
		return errors.New("cache.path must be set when cache.enabled is true")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Device {
	case DeviceAuto, DeviceCPU, DeviceCUDA:
	default:
		return fmt.Errorf("transcription.device must be one of auto, cpu, cuda (got %q)", c.Transcription.Device)
	}
	return nil
}

func (c *Config) validateTranslation() error {
	if c.Translation.BatchSize < 1 {
		return errors.New("translation.batch_size must be positive")
	}
	if c.Translation.MaxWorkers < 1 {
		return errors.New("translation.max_workers must be positive")
	}
	if !c.Translation.Enabled {
		return nil
	}
	if c.Translation.Target == "" {
		return errors.New("translation.target must be set when translation.enabled is true")
	}
	switch c.Translation.Provider {
	case ProviderGoogle:
	case ProviderLLM:
		if c.LLM.APIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = defaultConfigPath
			}
			return fmt.Errorf("llm.api_key is required when translation.provider is llm. Set AUTOSUB_LLM_API_KEY or OPENROUTER_API_KEY, or edit %s (create with 'autosub config init')", defaultPath)
		}
	default:
		return fmt.Errorf("translation.provider must be %q or %q (got %q)", ProviderGoogle, ProviderLLM, c.Translation.Provider)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}
