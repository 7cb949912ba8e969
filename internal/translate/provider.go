package translate

import (
	"fmt"

	"autosub/internal/config"
	"autosub/internal/services"
	"autosub/internal/services/gtranslate"
	"autosub/internal/services/llm"
)

// NewProvider builds the translator selected by translation.provider.
func NewProvider(cfg *config.Config) (Translator, error) {
	switch cfg.Translation.Provider {
	case config.ProviderGoogle, "":
		return gtranslate.NewClient(gtranslate.Config{
			BaseURL:        cfg.Translation.GoogleBaseURL,
			Source:         cfg.Transcription.Language,
			TimeoutSeconds: cfg.Translation.TimeoutSeconds,
		}), nil
	case config.ProviderLLM:
		llmCfg := cfg.GetLLM()
		client := llm.NewClient(llm.Config{
			APIKey:         llmCfg.APIKey,
			BaseURL:        llmCfg.BaseURL,
			Model:          llmCfg.Model,
			Referer:        llmCfg.Referer,
			Title:          llmCfg.Title,
			TimeoutSeconds: llmCfg.TimeoutSeconds,
		})
		return llm.NewTranslator(client), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "translate", "provider", fmt.Sprintf("unknown provider %q", cfg.Translation.Provider), nil)
	}
}

// ProviderName returns the provider's self-reported name, if it has one.
func ProviderName(t Translator) string {
	if named, ok := t.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", t)
}
