// Package transcriptcache stores WhisperX transcripts in SQLite keyed by
// the audio content and the settings that shape the transcript, so
// re-running autosub over the same media (for another target language, or
// after a translation outage) skips the slowest stage.
//
// The cache is opt-in (cache.enabled). Transcriber wraps any transcriber
// with a read-through lookup; cache failures are logged and never fail a
// file.
package transcriptcache
