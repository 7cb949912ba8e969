// Package media wraps the ffmpeg invocations autosub needs: pulling a mono
// audio track out of an input and burning a cue file into a video.
//
// Both operations run through an injectable command runner so tests never
// spawn ffmpeg; the default runner uses exec.CommandContext, which kills
// the process when the run is cancelled.
package media
