package media

import (
	"path/filepath"
	"strings"
)

// AudioExtensions lists the inputs that are transcribed directly and never
// muxed.
var AudioExtensions = []string{".mp3", ".wav", ".flac", ".m4a", ".wma", ".aac"}

// IsAudio reports whether path names an audio-only file.
func IsAudio(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range AudioExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// BaseName returns the file name without directory or extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SubtitledName is the burned-in output name for an input.
func SubtitledName(path string) string {
	return BaseName(path) + "_subtitled.mp4"
}
