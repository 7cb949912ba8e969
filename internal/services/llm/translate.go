package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"autosub/internal/language"
)

// TranslationPrompt instructs the model to translate subtitle lines one to one.
const TranslationPrompt = `You translate subtitle lines.
You receive JSON: {"target_language": "<name (code)>", "lines": ["...", ...]}.
Translate every line into the target language independently, keeping the meaning, tone, and any names.
Never merge, split, drop, or reorder lines. Keep empty lines empty.
Respond with JSON only: {"translations": ["...", ...]} containing exactly one entry per input line, in the same order.`

type translationRequest struct {
	TargetLanguage string   `json:"target_language"`
	Lines          []string `json:"lines"`
}

type translationResponse struct {
	Translations []string `json:"translations"`
}

// Translator adapts Client to batch subtitle translation.
type Translator struct {
	client *Client
}

// NewTranslator wraps client for batch translation.
func NewTranslator(client *Client) *Translator {
	return &Translator{client: client}
}

// Name identifies the provider in logs and reports.
func (t *Translator) Name() string { return "llm" }

// TranslateBatch translates texts into target with a single completion call.
// A response with a different number of lines than requested is an error.
func (t *Translator) TranslateBatch(ctx context.Context, texts []string, target string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}
	request := translationRequest{
		TargetLanguage: fmt.Sprintf("%s (%s)", language.DisplayName(target), target),
		Lines:          texts,
	}
	encoded, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("llm translate: encode request: %w", err)
	}
	content, err := t.client.CompleteJSON(ctx, TranslationPrompt, string(encoded))
	if err != nil {
		return nil, err
	}
	var parsed translationResponse
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return nil, fmt.Errorf("llm translate: parse payload: %w", err)
	}
	if len(parsed.Translations) != len(texts) {
		return nil, fmt.Errorf("llm translate: got %d translations for %d lines", len(parsed.Translations), len(texts))
	}
	return parsed.Translations, nil
}
