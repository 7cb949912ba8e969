package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"autosub/internal/langdetect"
	"autosub/internal/language"
	"autosub/internal/logging"
	"autosub/internal/media"
	"autosub/internal/services"
	"autosub/internal/subtitles"
	"autosub/internal/translate"
)

// detectSample is how many leading segments feed language detection.
const detectSample = 20

// Options shape a run.
type Options struct {
	// SubtitleDir receives <name>.srt.
	SubtitleDir string
	// AudioDir receives extracted audio; empty means a per-run temp dir
	// removed when the run ends.
	AudioDir string
	// VideoDir receives <name>_subtitled.mp4 when BurnVideo is set.
	VideoDir  string
	BurnVideo bool

	ExtractWorkers int

	Translate        bool
	Target           string
	BatchSize        int
	TranslateWorkers int
	Limiter          *rate.Limiter

	// DetectLanguage fills in the transcript language when the
	// transcriber left it empty.
	DetectLanguage bool
}

// Dependencies are the collaborators a run drives.
type Dependencies struct {
	Transcriber Transcriber
	Translator  translate.Translator
	Extractor   AudioExtractor
	Muxer       VideoMuxer
	Prober      Prober
}

// Runner executes runs.
type Runner struct {
	opts       Options
	deps       Dependencies
	dispatcher *translate.Dispatcher
	logger     *slog.Logger
}

// New validates opts and deps. Configuration problems surface here, before
// any file is touched.
func New(opts Options, deps Dependencies, logger *slog.Logger) (*Runner, error) {
	if deps.Transcriber == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "transcriber required", nil)
	}
	if deps.Extractor == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "audio extractor required", nil)
	}
	if opts.BurnVideo && deps.Muxer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "video muxer required for video output", nil)
	}
	if opts.SubtitleDir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "subtitle directory required", nil)
	}
	if opts.BurnVideo && opts.VideoDir == "" {
		opts.VideoDir = opts.SubtitleDir
	}
	opts.ExtractWorkers = max(opts.ExtractWorkers, 1)

	r := &Runner{
		opts:   opts,
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
	if opts.Translate {
		if deps.Translator == nil {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "translator required when translation is enabled", nil)
		}
		if opts.Target == "" {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "translation target required", nil)
		}
		if opts.BatchSize < 1 {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", fmt.Sprintf("batch size %d", opts.BatchSize), translate.ErrInvalidBatchSize)
		}
		r.dispatcher = &translate.Dispatcher{
			Translator: deps.Translator,
			Workers:    max(opts.TranslateWorkers, 1),
			Limiter:    opts.Limiter,
			Logger:     logger,
		}
	}
	return r, nil
}

// Run processes inputs and reports every file's outcome in input order.
func (r *Runner) Run(ctx context.Context, inputs []string) Report {
	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = services.WithRunID(ctx, runID)
	}
	report := Report{RunID: runID, Started: time.Now()}
	logger := logging.WithContext(ctx, r.logger)

	results := make([]FileResult, len(inputs))
	for i, input := range inputs {
		results[i] = FileResult{Input: input, State: StateResolved}
	}
	r.checkCollisions(results)

	audioDir := r.opts.AudioDir
	if audioDir == "" {
		tmp, err := os.MkdirTemp("", "autosub-audio-")
		if err != nil {
			for i := range results {
				r.fail(ctx, &results[i], StageExtract, fmt.Errorf("create audio temp dir: %w", err))
			}
			report.Files = results
			report.Elapsed = time.Since(report.Started)
			return report
		}
		defer os.RemoveAll(tmp)
		audioDir = tmp
	}

	logger.Info("run started",
		logging.Int("files", len(inputs)),
		logging.Int("extract_workers", r.opts.ExtractWorkers),
		logging.Bool("translate", r.opts.Translate),
		logging.String("target", r.opts.Target),
	)

	r.extractAll(ctx, results, audioDir)
	for i := range results {
		if results[i].State != StateAudioReady {
			continue
		}
		if err := ctx.Err(); err != nil {
			r.cancel(&results[i], err)
			continue
		}
		r.process(ctx, &results[i])
	}

	report.Files = results
	report.Elapsed = time.Since(report.Started)
	succeeded, failed, cancelled := report.Counts()
	logger.Info("run finished",
		logging.Int("succeeded", succeeded),
		logging.Int("failed", failed),
		logging.Int("cancelled", cancelled),
		logging.Duration("elapsed", report.Elapsed),
	)
	return report
}

// checkCollisions fails every input whose output name repeats an earlier
// input's, since both would write the same <name>.srt.
func (r *Runner) checkCollisions(results []FileResult) {
	owners := make(map[string]string, len(results))
	for i := range results {
		name := media.BaseName(results[i].Input)
		if owner, taken := owners[name]; taken {
			results[i].State = StateFailed
			results[i].Stage = StageResolve
			results[i].Err = services.Wrap(services.ErrValidation, StageResolve, "outputs",
				fmt.Sprintf("output name %q already used by %s", name, owner), nil)
			continue
		}
		owners[name] = results[i].Input
	}
}

// extractAll moves every resolved file to AudioReady, extracting audio for
// non-audio inputs on a bounded pool.
func (r *Runner) extractAll(ctx context.Context, results []FileResult, audioDir string) {
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(r.opts.ExtractWorkers)
	for i := range results {
		res := &results[i]
		if res.State != StateResolved {
			continue
		}
		if media.IsAudio(res.Input) {
			res.AudioPath = res.Input
			res.State = StateAudioReady
			continue
		}
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				r.cancel(res, err)
				return nil
			}
			fctx := services.WithStage(services.WithFile(gctx, res.Input), StageExtract)
			dest := filepath.Join(audioDir, media.BaseName(res.Input)+".mp3")
			logging.WithContext(fctx, r.logger).Info("extracting audio")
			if err := r.deps.Extractor.ExtractAudio(fctx, res.Input, dest); err != nil {
				r.fail(fctx, res, StageExtract, err)
				return nil
			}
			res.AudioPath = dest
			res.State = StateAudioReady
			return nil
		})
	}
	_ = group.Wait()
}

// process runs the sequential stages for one file.
func (r *Runner) process(ctx context.Context, res *FileResult) {
	started := time.Now()
	defer func() { res.Elapsed = time.Since(started) }()
	ctx = services.WithFile(ctx, res.Input)

	// Transcribe.
	tctx := services.WithStage(ctx, StageTranscribe)
	logger := logging.WithContext(tctx, r.logger)
	mediaSeconds := r.probe(tctx, res.Input)
	logger.Info("transcribing", logging.Float64("duration_seconds", mediaSeconds))
	transcript, err := r.deps.Transcriber.Transcribe(tctx, res.AudioPath)
	if err != nil {
		r.fail(tctx, res, StageTranscribe, err)
		return
	}
	if transcript.Language == "" && r.opts.DetectLanguage {
		transcript.Language = langdetect.DetectSegments(transcript.Texts(), detectSample)
	}
	res.Language = transcript.Language
	res.Segments = len(transcript.Segments)
	res.State = StateTranscribed
	logger.Info("transcribed",
		logging.Int("segments", res.Segments),
		logging.String("language", language.DisplayName(transcript.Language)),
	)

	// Translate.
	var translations []string
	if r.dispatcher != nil {
		xctx := services.WithStage(ctx, StageTranslate)
		logging.WithContext(xctx, r.logger).Info("translating",
			logging.String("target", r.opts.Target),
			logging.Int("batch_size", r.opts.BatchSize),
		)
		outcome, err := r.dispatcher.Translate(xctx, transcript.Texts(), r.opts.BatchSize, r.opts.Target)
		if err == nil {
			err = xctx.Err()
		}
		if err != nil {
			r.fail(xctx, res, StageTranslate, err)
			return
		}
		translations = outcome.Lines
		res.FailedBatches = len(outcome.Failed)
	}

	// Write.
	wctx := services.WithStage(ctx, StageWrite)
	cues, err := subtitles.BuildCues(transcript.Segments, translations)
	if err != nil {
		r.fail(wctx, res, StageWrite, err)
		return
	}
	cuePath := filepath.Join(r.opts.SubtitleDir, media.BaseName(res.Input)+".srt")
	stats, err := subtitles.WriteFile(cuePath, cues)
	if err != nil {
		r.fail(wctx, res, StageWrite, err)
		return
	}
	res.SubtitlePath = cuePath
	res.State = StateSubtitleWritten
	wlogger := logging.WithContext(wctx, r.logger)
	wlogger.Info("subtitles saved",
		logging.String("subtitle_path", absolute(cuePath)),
		logging.Int("cues", stats.Cues),
		logging.Int("failed_batches", res.FailedBatches),
		logging.Duration("write_elapsed", stats.Elapsed),
	)
	for _, issue := range subtitles.Validate(cuePath, mediaSeconds) {
		logging.WarnWithContext(wlogger, "subtitle file check", "subtitle_validation",
			logging.String("issue", issue),
			logging.String(logging.FieldImpact, "subtitles written; review the file"),
		)
	}

	// Mux.
	switch {
	case !r.opts.BurnVideo:
		res.State = StateSkipped
		res.SkipReason = "video output not requested"
		return
	case media.IsAudio(res.Input):
		res.State = StateSkipped
		res.SkipReason = "audio input"
		return
	}
	mctx := services.WithStage(ctx, StageMux)
	if err := mctx.Err(); err != nil {
		r.fail(mctx, res, StageMux, err)
		return
	}
	dest := filepath.Join(r.opts.VideoDir, media.SubtitledName(res.Input))
	logging.WithContext(mctx, r.logger).Info("creating subtitled video", logging.String("video_path", absolute(dest)))
	if err := r.deps.Muxer.BurnSubtitles(mctx, res.Input, cuePath, dest); err != nil {
		r.fail(mctx, res, StageMux, err)
		return
	}
	res.VideoPath = dest
	res.State = StateVideoMuxed
	logging.WithContext(mctx, r.logger).Info("subtitled video saved", logging.String("video_path", absolute(dest)))
}

func (r *Runner) probe(ctx context.Context, path string) float64 {
	if r.deps.Prober == nil {
		return 0
	}
	result, err := r.deps.Prober.Inspect(ctx, path)
	if err != nil {
		logging.WithContext(ctx, r.logger).Debug("ffprobe failed", logging.Error(err))
		return 0
	}
	return result.DurationSeconds()
}

func (r *Runner) fail(ctx context.Context, res *FileResult, stage string, err error) {
	if errors.Is(err, context.Canceled) {
		r.cancel(res, err)
		res.Stage = stage
		return
	}
	res.State = StateFailed
	res.Stage = stage
	res.Err = err
	logging.ErrorWithContext(logging.WithContext(ctx, r.logger), "file failed", "file_failed",
		logging.String(logging.FieldStage, stage),
		logging.Error(err),
		logging.String("error_kind", services.Kind(err)),
		logging.String(logging.FieldErrorHint, hintFor(stage)),
	)
}

func (r *Runner) cancel(res *FileResult, err error) {
	res.State = StateCancelled
	res.Err = err
}

func hintFor(stage string) string {
	switch stage {
	case StageExtract, StageMux:
		return "check that ffmpeg can read the input"
	case StageTranscribe:
		return "run autosub check and inspect whisperx output"
	case StageWrite:
		return "check permissions on the subtitle directory"
	case StageResolve:
		return "rename one of the inputs"
	default:
		return "check logs for details"
	}
}

func absolute(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
