package transcriptcache

import (
	"context"
	"log/slog"

	"autosub/internal/logging"
	"autosub/internal/subtitles"
)

// Source is anything that turns an audio file into a transcript.
type Source interface {
	Transcribe(ctx context.Context, audioPath string) (subtitles.Transcript, error)
}

// Transcriber serves transcripts from the store and falls through to the
// wrapped source on a miss.
type Transcriber struct {
	source Source
	store  *Store
	params Params
	logger *slog.Logger
}

// NewTranscriber wraps source with a read-through cache.
func NewTranscriber(source Source, store *Store, params Params, logger *slog.Logger) *Transcriber {
	return &Transcriber{
		source: source,
		store:  store,
		params: params,
		logger: logging.NewComponentLogger(logger, "transcript_cache"),
	}
}

// Transcribe returns the cached transcript for audioPath when present.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (subtitles.Transcript, error) {
	logger := logging.WithContext(ctx, t.logger)
	key, err := Key(audioPath, t.params)
	if err != nil {
		logging.WarnWithContext(logger, "transcript cache key failed", "transcript_cache_key_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "transcribing without cache"),
		)
		return t.source.Transcribe(ctx, audioPath)
	}

	cached, ok, err := t.store.Get(ctx, key)
	switch {
	case err != nil:
		logging.WarnWithContext(logger, "transcript cache lookup failed", "transcript_cache_lookup_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "transcribing without cache"),
		)
	case ok:
		logger.Info("transcript cache hit", logging.Int("segments", len(cached.Segments)))
		return cached, nil
	}

	transcript, err := t.source.Transcribe(ctx, audioPath)
	if err != nil {
		return transcript, err
	}
	if err := t.store.Put(ctx, key, audioPath, transcript); err != nil {
		logging.WarnWithContext(logger, "transcript cache store failed", "transcript_cache_store_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "next run will transcribe again"),
		)
	}
	return transcript, nil
}
