// Package main hosts the autosub CLI entrypoint and command graph.
//
// The root command resolves input paths, loads configuration (defaults,
// config file, AUTOSUB_* environment, then flags), and drives one pipeline
// run: parallel audio extraction, sequential transcription, batched
// translation, cue file writing, and optional subtitle burn-in. A summary
// table is printed when the run ends.
//
// Per-file failures are reported in the table and never change the exit
// code; configuration, model-load, and startup failures do.
package main
