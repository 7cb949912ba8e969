// Package langdetect guesses the language of transcribed text when the
// transcriber did not report one.
package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// minLetters is the shortest sample worth classifying.
const minLetters = 6

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// DetectISO6391 returns the lowercase ISO 639-1 code of text, or "" when
// the sample is too short or the detector is unsure.
func DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < minLetters {
		return ""
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

// DetectSegments joins up to limit segment texts and detects their language.
func DetectSegments(texts []string, limit int) string {
	if limit > 0 && len(texts) > limit {
		texts = texts[:limit]
	}
	return DetectISO6391(strings.Join(texts, " "))
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		// Models load lazily per language; only a few are ever consulted.
		detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			WithLowAccuracyMode().
			Build()
	})
	return detector
}
