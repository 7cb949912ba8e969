package pipeline

import (
	"time"

	"autosub/internal/services"
)

// State is how far a file got.
type State string

const (
	StateResolved        State = "resolved"
	StateAudioReady      State = "audio_ready"
	StateTranscribed     State = "transcribed"
	StateSubtitleWritten State = "subtitle_written"
	StateVideoMuxed      State = "video_muxed"
	// StateSkipped means the subtitle was written and muxing did not apply.
	StateSkipped   State = "skipped"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Stage names used in logs, errors, and the report.
const (
	StageResolve    = "resolve"
	StageExtract    = "extract"
	StageTranscribe = "transcribe"
	StageTranslate  = "translate"
	StageWrite      = "write"
	StageMux        = "mux"
)

// FileResult is the outcome of one input.
type FileResult struct {
	Input        string
	State        State
	Stage        string
	Err          error
	AudioPath    string
	SubtitlePath string
	VideoPath    string
	Language     string
	Segments     int
	// FailedBatches counts translation batches that carry a failure marker.
	FailedBatches int
	SkipReason    string
	Elapsed       time.Duration
}

// OK reports whether the file reached a terminal success state.
func (f FileResult) OK() bool {
	return f.Err == nil && (f.State == StateVideoMuxed || f.State == StateSkipped)
}

// ErrorKind classifies the failure for display.
func (f FileResult) ErrorKind() string {
	return services.Kind(f.Err)
}

// Report collects every file's outcome in input order.
type Report struct {
	RunID   string
	Started time.Time
	Elapsed time.Duration
	Files   []FileResult
}

// Counts returns how many files succeeded, failed, and were cancelled.
func (r Report) Counts() (succeeded, failed, cancelled int) {
	for _, f := range r.Files {
		switch {
		case f.OK():
			succeeded++
		case f.State == StateCancelled:
			cancelled++
		default:
			failed++
		}
	}
	return succeeded, failed, cancelled
}

// PartialTranslations counts files written with at least one failed batch.
func (r Report) PartialTranslations() int {
	n := 0
	for _, f := range r.Files {
		if f.FailedBatches > 0 {
			n++
		}
	}
	return n
}
