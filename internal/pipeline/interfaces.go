package pipeline

import (
	"context"

	"autosub/internal/media/ffprobe"
	"autosub/internal/subtitles"
)

// Transcriber turns one audio file into ordered segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (subtitles.Transcript, error)
}

// AudioExtractor writes the audio track of source to dest.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, source, dest string) error
}

// VideoMuxer renders a cue file into a copy of video at dest.
type VideoMuxer interface {
	BurnSubtitles(ctx context.Context, video, cueFile, dest string) error
}

// Prober reports media metadata. Optional.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}
