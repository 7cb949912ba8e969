// Package whisperx runs WhisperX through uvx and turns its JSON output into
// an ordered subtitles.Transcript.
//
// Service.Load is the model-load check done once per run: it resolves uvx
// so a missing toolchain aborts before any file is touched. Transcribe runs
// one file at a time in a scratch directory and validates the JSON against
// an embedded schema before decoding it.
package whisperx
