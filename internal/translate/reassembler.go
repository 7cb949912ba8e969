package translate

import "fmt"

// FailureMarker is the text written in place of every line of a failed batch.
func FailureMarker(err error) string {
	if err == nil {
		return "[translation failed]"
	}
	return fmt.Sprintf("[translation failed: %v]", err)
}

// Reassembler collects batch results into a slice aligned with the source
// lines. Each batch writes only its own range, so results may be placed in
// any order.
type Reassembler struct {
	lines []string
	set   []bool
}

// NewReassembler sizes the result for n lines.
func NewReassembler(n int) *Reassembler {
	return &Reassembler{
		lines: make([]string, n),
		set:   make([]bool, n),
	}
}

// Place writes a result into its batch's range. A failed result fills the
// range with FailureMarker.
func (r *Reassembler) Place(res Result) error {
	b := res.Batch
	if b.Start < 0 || b.End > len(r.lines) || b.Start > b.End {
		return fmt.Errorf("place %s: out of range for %d lines", b, len(r.lines))
	}
	for i := b.Start; i < b.End; i++ {
		if r.set[i] {
			return fmt.Errorf("place %s: line %d already placed", b, i)
		}
	}
	if res.Err == nil && len(res.Texts) != b.Len() {
		res.Err = lengthError(b, len(res.Texts))
	}
	for i := b.Start; i < b.End; i++ {
		if res.Err != nil {
			r.lines[i] = FailureMarker(res.Err)
		} else {
			r.lines[i] = res.Texts[i-b.Start]
		}
		r.set[i] = true
	}
	return nil
}

// Lines returns the assembled lines. Every position must have been placed.
func (r *Reassembler) Lines() ([]string, error) {
	for i, ok := range r.set {
		if !ok {
			return nil, fmt.Errorf("reassemble: line %d never placed", i)
		}
	}
	return r.lines, nil
}

func lengthError(b Batch, got int) error {
	return fmt.Errorf("provider returned %d lines for %d", got, b.Len())
}
