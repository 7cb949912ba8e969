package translate

import (
	"errors"
	"fmt"

	"autosub/internal/services"
)

// ErrInvalidBatchSize is returned for a batch size below one.
var ErrInvalidBatchSize = errors.New("batch size must be at least 1")

// Batch is the half-open index range [Start, End) of one provider call.
type Batch struct {
	Index int
	Start int
	End   int
}

// Len returns the number of lines in the batch.
func (b Batch) Len() int { return b.End - b.Start }

func (b Batch) String() string { return fmt.Sprintf("batch %d [%d,%d)", b.Index, b.Start, b.End) }

// SplitBatches partitions [0, n) into contiguous batches of size lines; the
// last batch may be shorter.
func SplitBatches(n, size int) ([]Batch, error) {
	if size < 1 {
		return nil, services.Wrap(services.ErrConfiguration, "translate", "split batches", fmt.Sprintf("size %d", size), ErrInvalidBatchSize)
	}
	if n <= 0 {
		return nil, nil
	}
	batches := make([]Batch, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		batches = append(batches, Batch{
			Index: len(batches),
			Start: start,
			End:   min(start+size, n),
		})
	}
	return batches, nil
}
