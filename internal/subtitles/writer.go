package subtitles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Cue is one numbered subtitle block.
type Cue struct {
	Index          int
	Start          float64
	End            float64
	Original       string
	Translated     string
	HasTranslation bool
}

// BuildCues pairs segments with their translations and numbers them from 1.
// A nil translations slice produces cues without a translated line.
func BuildCues(segments []Segment, translations []string) ([]Cue, error) {
	if translations != nil && len(translations) != len(segments) {
		return nil, fmt.Errorf("build cues: %d translations for %d segments", len(translations), len(segments))
	}
	cues := make([]Cue, len(segments))
	for i, seg := range segments {
		seg = seg.Clean()
		cues[i] = Cue{
			Index:    i + 1,
			Start:    seg.Start,
			End:      seg.End,
			Original: seg.Text,
		}
		if translations != nil {
			cues[i].Translated = translations[i]
			cues[i].HasTranslation = true
		}
	}
	return cues, nil
}

// WriteStats summarises a completed WriteFile call.
type WriteStats struct {
	Path       string
	Cues       int
	Translated int
	Elapsed    time.Duration
}

// Writer streams cues to a destination, flushing after every cue so a crash
// leaves a readable prefix on disk.
type Writer struct {
	buf  *bufio.Writer
	file *os.File
	n    int
}

// NewWriter wraps dst. When dst is an *os.File each flushed cue is also
// synced to stable storage.
func NewWriter(dst io.Writer) *Writer {
	w := &Writer{buf: bufio.NewWriter(dst)}
	if f, ok := dst.(*os.File); ok {
		w.file = f
	}
	return w
}

// WriteCue writes a single cue block and flushes it.
func (w *Writer) WriteCue(cue Cue) error {
	start, err := FormatTimestamp(cue.Start, true)
	if err != nil {
		return fmt.Errorf("cue %d start: %w", cue.Index, err)
	}
	end, err := FormatTimestamp(cue.End, true)
	if err != nil {
		return fmt.Errorf("cue %d end: %w", cue.Index, err)
	}

	w.buf.WriteString(strconv.Itoa(cue.Index))
	w.buf.WriteByte('\n')
	w.buf.WriteString(start)
	w.buf.WriteString(" --> ")
	w.buf.WriteString(end)
	w.buf.WriteByte('\n')
	w.buf.WriteString(textLine(cue.Original))
	w.buf.WriteByte('\n')
	if cue.HasTranslation {
		w.buf.WriteString(textLine(cue.Translated))
		w.buf.WriteByte('\n')
	}
	w.buf.WriteByte('\n')

	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush cue %d: %w", cue.Index, err)
	}
	if w.file != nil {
		if err := w.file.Sync(); err != nil {
			return fmt.Errorf("sync cue %d: %w", cue.Index, err)
		}
	}
	w.n++
	return nil
}

// Write writes every cue in order, stopping at the first error.
func (w *Writer) Write(cues []Cue) error {
	for _, cue := range cues {
		if err := w.WriteCue(cue); err != nil {
			return err
		}
	}
	return nil
}

// Count returns how many cues have been written.
func (w *Writer) Count() int { return w.n }

// WriteFile creates (or truncates) path and writes cues to it.
func WriteFile(path string, cues []Cue) (WriteStats, error) {
	started := time.Now()
	stats := WriteStats{Path: path}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return stats, fmt.Errorf("write cues: ensure dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return stats, fmt.Errorf("write cues: %w", err)
	}
	writer := NewWriter(file)
	writeErr := writer.Write(cues)
	closeErr := file.Close()
	stats.Cues = writer.Count()
	for _, cue := range cues[:stats.Cues] {
		if cue.HasTranslation {
			stats.Translated++
		}
	}
	stats.Elapsed = time.Since(started)
	if writeErr != nil {
		return stats, fmt.Errorf("write cues %s: %w", path, writeErr)
	}
	if closeErr != nil {
		return stats, fmt.Errorf("close %s: %w", path, closeErr)
	}
	return stats, nil
}

// EmptyText stands in for a blank text line, which would otherwise end the
// cue block early.
const EmptyText = "..."

// textLine renders a text field as exactly one non-empty line that cannot be
// mistaken for a timing line.
func textLine(text string) string {
	if strings.ContainsAny(text, "\r\n") {
		text = strings.Join(strings.Fields(text), " ")
	}
	text = strings.ReplaceAll(strings.TrimSpace(text), "-->", "->")
	if text == "" {
		return EmptyText
	}
	return text
}
