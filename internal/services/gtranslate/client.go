package gtranslate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public gtx endpoint.
	DefaultBaseURL     = "https://translate.googleapis.com/translate_a/single"
	defaultHTTPTimeout = 30 * time.Second
	maxErrorBody       = 512
)

// Config captures the translator settings.
type Config struct {
	BaseURL string
	// Source is the source language code; empty means auto-detect.
	Source         string
	TimeoutSeconds int
}

// Client translates batches of lines with one HTTP request each.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a client from cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the provider in logs and reports.
func (c *Client) Name() string { return "google" }

// TranslateBatch translates texts into target. Blank lines are passed
// through untouched and never sent.
func (c *Client) TranslateBatch(ctx context.Context, texts []string, target string) ([]string, error) {
	out := make([]string, len(texts))
	positions := make([]int, 0, len(texts))
	lines := make([]string, 0, len(texts))
	for i, text := range texts {
		text = strings.Join(strings.Fields(text), " ")
		if text == "" {
			continue
		}
		positions = append(positions, i)
		lines = append(lines, text)
	}
	if len(lines) == 0 {
		return out, nil
	}

	translated, err := c.translate(ctx, strings.Join(lines, "\n"), target)
	if err != nil {
		return nil, err
	}
	got := splitLines(translated)
	if len(got) != len(lines) {
		return nil, fmt.Errorf("google translate: got %d lines for %d", len(got), len(lines))
	}
	for i, pos := range positions {
		out[pos] = got[i]
	}
	return out, nil
}

func (c *Client) translate(ctx context.Context, text, target string) (string, error) {
	source := c.cfg.Source
	if source == "" {
		source = "auto"
	}
	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", source)
	query.Set("tl", target)
	query.Set("dt", "t")
	query.Set("q", text)

	endpoint := c.cfg.BaseURL + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("google translate: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("google translate: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("google translate: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return "", fmt.Errorf("google translate: status %d: %s", resp.StatusCode, snippet)
	}
	return decodeResponse(body)
}

// decodeResponse concatenates the translated chunks of a gtx payload:
// [[["<translated>","<original>",...], ...], ...].
func decodeResponse(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("google translate: decode response: %w", err)
	}
	if len(payload) == 0 {
		return "", errors.New("google translate: empty response")
	}
	var chunks [][]any
	if err := json.Unmarshal(payload[0], &chunks); err != nil {
		return "", fmt.Errorf("google translate: decode sentences: %w", err)
	}
	var b strings.Builder
	for _, chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		if s, ok := chunk[0].(string); ok {
			b.WriteString(s)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("google translate: no translated text")
	}
	return b.String(), nil
}

func splitLines(text string) []string {
	text = strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return lines
}
