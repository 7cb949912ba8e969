// Package ffprobe reads container metadata through ffprobe's JSON output.
//
// autosub only needs two facts from it: how long an input runs (logged
// before transcription and used to sanity-check the written cue file) and
// whether it carries a video stream worth burning subtitles into.
package ffprobe
