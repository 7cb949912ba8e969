// Package pipeline drives one autosub run: audio extraction fans out over a
// bounded pool, then each file is transcribed, translated, written, and
// optionally burned into its video one at a time.
//
// Every input moves through
//
//	Resolved -> AudioReady -> Transcribed -> SubtitleWritten -> VideoMuxed | Skipped
//
// and a failure at any stage ends that file only. Run never returns an
// error; outcomes are collected in a Report.
package pipeline
