package translate

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"autosub/internal/logging"
)

// Translator is the single call a provider has to implement. It returns one
// translated line per input line, in order.
type Translator interface {
	TranslateBatch(ctx context.Context, texts []string, target string) ([]string, error)
}

// Result is the outcome of one batch.
type Result struct {
	Batch Batch
	Texts []string
	Err   error
}

// Dispatcher runs provider calls for a set of batches with bounded
// concurrency.
type Dispatcher struct {
	Translator Translator
	// Workers caps provider calls in flight; values below one mean one.
	Workers int
	// Limiter, when set, paces call starts.
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

// Dispatch translates every batch and returns results indexed by
// Batch.Index. It always returns after all calls finished; failures are
// recorded per batch and never cancel siblings.
func (d *Dispatcher) Dispatch(ctx context.Context, texts []string, batches []Batch, target string) []Result {
	logger := logging.NewComponentLogger(d.Logger, "dispatcher")
	results := make([]Result, len(batches))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(max(d.Workers, 1))
	for i, batch := range batches {
		group.Go(func() error {
			results[i] = d.run(gctx, logger, texts, batch, target)
			return nil
		})
	}
	_ = group.Wait()
	return results
}

func (d *Dispatcher) run(ctx context.Context, logger *slog.Logger, texts []string, batch Batch, target string) Result {
	res := Result{Batch: batch}
	started := time.Now()
	if d.Limiter != nil {
		if err := d.Limiter.Wait(ctx); err != nil {
			res.Err = err
			d.logFailure(ctx, logger, res)
			return res
		}
	} else if err := ctx.Err(); err != nil {
		res.Err = err
		d.logFailure(ctx, logger, res)
		return res
	}

	translated, err := d.Translator.TranslateBatch(ctx, texts[batch.Start:batch.End:batch.End], target)
	switch {
	case err != nil:
		res.Err = err
	case len(translated) != batch.Len():
		res.Err = lengthError(batch, len(translated))
	default:
		res.Texts = translated
	}
	if res.Err != nil {
		d.logFailure(ctx, logger, res)
		return res
	}
	logger.Debug("batch translated",
		logging.BatchStart(batch.Start),
		logging.BatchEnd(batch.End),
		logging.Duration("elapsed", time.Since(started)),
	)
	return res
}

func (d *Dispatcher) logFailure(ctx context.Context, logger *slog.Logger, res Result) {
	logging.WarnWithContext(logging.WithContext(ctx, logger), "translation batch failed", "translation_batch_failed",
		logging.BatchStart(res.Batch.Start),
		logging.BatchEnd(res.Batch.End),
		logging.Error(res.Err),
		logging.String(logging.FieldErrorHint, "check provider connectivity, quota, and target language"),
		logging.String(logging.FieldImpact, "lines in this batch carry a failure marker"),
	)
}

// Outcome is the reassembled translation of one file.
type Outcome struct {
	Lines  []string
	Failed []Result
}

// Translate splits texts into batches of size, dispatches them, and
// reassembles the lines in source order.
func (d *Dispatcher) Translate(ctx context.Context, texts []string, size int, target string) (Outcome, error) {
	batches, err := SplitBatches(len(texts), size)
	if err != nil {
		return Outcome{}, err
	}
	results := d.Dispatch(ctx, texts, batches, target)

	assembler := NewReassembler(len(texts))
	var failed []Result
	for _, res := range results {
		if err := assembler.Place(res); err != nil {
			return Outcome{}, err
		}
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	lines, err := assembler.Lines()
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Lines: lines, Failed: failed}, nil
}

// NewLimiter paces calls to perMinute starts per minute; zero or less
// disables pacing.
func NewLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}
