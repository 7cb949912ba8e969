package subtitles

import "strings"

// Segment is a timed span of transcribed text in source order.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Clean returns the segment with surrounding whitespace trimmed and every
// "-->" replaced so the text cannot be mistaken for a timing line.
func (s Segment) Clean() Segment {
	s.Text = strings.ReplaceAll(strings.TrimSpace(s.Text), "-->", "->")
	return s
}

// Duration returns End-Start, never negative.
func (s Segment) Duration() float64 {
	return max(s.End-s.Start, 0)
}

// Transcript is what a transcriber produces for one audio file.
type Transcript struct {
	// Language is the ISO 639-1 code the model transcribed in, if known.
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Texts returns the cleaned text of every segment, in order.
func (t Transcript) Texts() []string {
	texts := make([]string, len(t.Segments))
	for i, seg := range t.Segments {
		texts[i] = seg.Clean().Text
	}
	return texts
}

// Duration returns the end time of the last segment.
func (t Transcript) Duration() float64 {
	var last float64
	for _, seg := range t.Segments {
		last = max(last, seg.End)
	}
	return last
}
