// Package llm provides an OpenAI-compatible chat client and a subtitle batch
// translator built on it.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: send system/user prompts, receive a JSON response.
// Client.HealthCheck: verify API key and model availability.
// NewTranslator / Translator.TranslateBatch: translate one batch of lines.
//
// # Retry Behaviour
//
// The client retries HTTP 408/429/5xx, empty completions, and network
// timeouts with exponential backoff (base 1s, max 10s, 3 attempts by
// default), honouring Retry-After. Context cancellation aborts immediately.
// The whole retry loop counts as one translate call to the caller.
package llm
