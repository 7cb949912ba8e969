package subtitles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// durationSlack is how far the last cue may run past the media end before
// validation flags it.
const durationSlack = 5.0

// ReadCues parses cue blocks back from r. A block with a fourth line is
// treated as carrying a translation.
func ReadCues(r io.Reader) ([]Cue, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		cues  []Cue
		block []string
		line  int
	)
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		cue, err := parseBlock(block)
		block = block[:0]
		if err != nil {
			return fmt.Errorf("block ending line %d: %w", line, err)
		}
		cues = append(cues, cue)
		return nil
	}
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		block = append(block, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cues: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cues, nil
}

// ReadCueFile parses the cue file at path.
func ReadCueFile(path string) ([]Cue, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read cues: %w", err)
	}
	defer file.Close()
	return ReadCues(file)
}

func parseBlock(lines []string) (Cue, error) {
	if len(lines) < 3 || len(lines) > 4 {
		return Cue{}, fmt.Errorf("expected 3 or 4 lines, got %d", len(lines))
	}
	index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return Cue{}, fmt.Errorf("invalid index %q", lines[0])
	}
	startText, endText, ok := strings.Cut(lines[1], "-->")
	if !ok {
		return Cue{}, fmt.Errorf("invalid timing line %q", lines[1])
	}
	start, err := ParseTimestamp(startText)
	if err != nil {
		return Cue{}, err
	}
	end, err := ParseTimestamp(endText)
	if err != nil {
		return Cue{}, err
	}
	cue := Cue{Index: index, Start: start, End: end, Original: lines[2]}
	if len(lines) == 4 {
		cue.Translated = lines[3]
		cue.HasTranslation = true
	}
	return cue, nil
}

// Validate checks a written cue file and returns the issues found; an empty
// slice means the file passed. mediaSeconds enables the duration check when
// positive.
func Validate(path string, mediaSeconds float64) []string {
	cues, err := ReadCueFile(path)
	if err != nil {
		return []string{fmt.Sprintf("read_error: %v", err)}
	}
	if len(cues) == 0 {
		return []string{"empty_subtitle_file"}
	}

	var issues []string
	var last float64
	for i, cue := range cues {
		if cue.Index != i+1 {
			issues = append(issues, fmt.Sprintf("index_gap: want %d got %d", i+1, cue.Index))
		}
		if cue.End < cue.Start {
			issues = append(issues, fmt.Sprintf("inverted_timing: cue %d", cue.Index))
		}
		last = max(last, cue.End)
	}
	if mediaSeconds > 0 && last > mediaSeconds+durationSlack {
		issues = append(issues, fmt.Sprintf("duration_mismatch: delta=%.1fs", last-mediaSeconds))
	}
	return issues
}
