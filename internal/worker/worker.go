// Package worker runs one batch: every file of the input directory goes through
// decode -> fit -> watermark -> encode -> store, failures are routed to the error directory
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/UnendingLoop/BatchWatermark/internal/imageproc"
	"github.com/UnendingLoop/BatchWatermark/internal/model"
	"github.com/UnendingLoop/BatchWatermark/internal/mwlogger"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// Sink - контракт для записи результата (локальная папка или minio)
type Sink interface {
	Prepare(ctx context.Context) error
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
	Locate(key string) string
}

// Publisher - контракт для отправки событий по файлам в очередь
type Publisher interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

// RunJournal - контракт для журнала запусков
type RunJournal interface {
	CreateRun(ctx context.Context, run *model.Run) error
	AddFile(ctx context.Context, ev *model.FileEvent) error
	FinishRun(ctx context.Context, run *model.Run) error
}

// Стратегия ретрая отправки в очередь
var publishStrategy = retry.Strategy{
	Attempts: 3,
	Delay:    time.Second,
	Backoff:  1.5,
}

type Worker struct {
	fs        afero.Fs
	sink      Sink
	publisher Publisher
	journal   RunJournal
	mark      *imageproc.Watermark
	opts      model.BatchOptions
	logger    zlog.Zerolog
	now       func() time.Time
}

func NewWorkerInstance(fs afero.Fs, sink Sink, pub Publisher, journal RunJournal, mark *imageproc.Watermark, opts model.BatchOptions, logger zlog.Zerolog) *Worker {
	if pub == nil {
		pub = NoopPublisher{}
	}
	if journal == nil {
		journal = NoopJournal{}
	}
	return &Worker{
		fs:        fs,
		sink:      sink,
		publisher: pub,
		journal:   journal,
		mark:      mark,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// PrepareFolders creates the output location and, when set, the error folder.
// Both may already exist; calling it again is harmless.
func PrepareFolders(ctx context.Context, fs afero.Fs, sink Sink, opts model.BatchOptions) error {
	if err := sink.Prepare(ctx); err != nil {
		return fmt.Errorf("failed to prepare output location %q: %w", opts.OutputDir, err)
	}
	if opts.ErrorDir != "" {
		if err := fs.MkdirAll(opts.ErrorDir, 0o755); err != nil {
			return fmt.Errorf("failed to create error folder %q: %w", opts.ErrorDir, err)
		}
	}
	return nil
}

// Run processes the input directory once. Only setup failures are returned as error;
// per-file failures end up in the returned outcomes.
func (w *Worker) Run(ctx context.Context) (*model.Run, []model.Outcome, error) {
	if err := w.opts.Validate(); err != nil {
		return nil, nil, err
	}

	// готовим папки
	if err := PrepareFolders(ctx, w.fs, w.sink, w.opts); err != nil {
		return nil, nil, err
	}

	// afero.ReadDir отдает записи отсортированными по имени
	entries, err := afero.ReadDir(w.fs, w.opts.InputDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read input folder %q: %w", w.opts.InputDir, err)
	}

	started := w.now().UTC()
	run := &model.Run{
		UID:       uuid.New(),
		Batch:     w.opts,
		Watermark: w.mark.Options(),
		StartedAt: &started,
	}
	logger := w.logger.With().Str("run_id", run.UID.String()).Logger()

	if err := w.journal.CreateRun(ctx, run); err != nil {
		logger.Error().Err(err).Msg("Failed to journal run start")
	}

	outcomes := make([]model.Outcome, 0, len(entries))
	for i, entry := range entries {
		if ctx.Err() != nil {
			logger.Warn().Msgf("Interrupted, %d file(s) left untouched", len(entries)-i)
			break
		}
		if entry.IsDir() {
			logger.Info().Msgf("Skipping folder %s", entry.Name())
			continue
		}

		fileLogger := logger.With().Str("file", entry.Name()).Logger()
		fileCtx := mwlogger.WithLogger(ctx, fileLogger)

		outcome := w.processFile(fileCtx, entry.Name())
		run.Count(outcome)
		outcomes = append(outcomes, outcome)

		w.report(fileCtx, run.UID, outcome)
	}

	finished := w.now().UTC()
	run.FinishedAt = &finished
	// журнал закрываем даже после прерывания - контекст уже может быть отменен
	if err := w.journal.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Error().Err(err).Msg("Failed to journal run finish")
	}

	logger.Info().Msgf("Batch finished: %d processed, %d succeeded, %d failed", run.Total, run.Succeeded, run.Failed)
	return run, outcomes, nil
}

// processFile never returns an error: whatever happens is recorded in the outcome.
func (w *Worker) processFile(ctx context.Context, name string) model.Outcome {
	logger := mwlogger.LoggerFromContext(ctx)
	outcome := model.Outcome{Name: name}

	if err := w.transform(ctx, name, &outcome); err != nil {
		outcome.Fail(err)
		logger.Error().Err(err).Msgf("Error processing %s", name)
		outcome.Routed = w.routeFailure(ctx, name)
		return outcome
	}

	outcome.Status = model.StatusSucceeded
	logger.Info().Msgf("Processed: %s", name)
	return outcome
}

func (w *Worker) transform(ctx context.Context, name string, outcome *model.Outcome) (err error) {
	logger := mwlogger.LoggerFromContext(ctx)
	src := filepath.Join(w.opts.InputDir, name)
	stage := model.StageDecode

	// паника на любом шаге - ошибка этого файла, а не всего батча
	defer func() {
		if r := recover(); r != nil {
			err = model.NewFileError(stage, fmt.Errorf("panic: %v", r))
		}
	}()

	f, err := w.fs.Open(src)
	if err != nil {
		return model.NewFileError(stage, err)
	}
	img, err := imageproc.Decode(f)
	closeFileFlow(ctx, f)
	if err != nil {
		return model.NewFileError(stage, err)
	}

	stage = model.StageResize
	img, resized := imageproc.FitWithin(img, w.opts.MaxWidth, w.opts.MaxHeight)
	if resized {
		logger.Info().Msgf("%s resized to %dx%d", name, img.Bounds().Dx(), img.Bounds().Dy())
	}
	outcome.Resized = resized
	outcome.Width, outcome.Height = img.Bounds().Dx(), img.Bounds().Dy()

	stage = model.StageComposite
	result := w.mark.Apply(img, w.opts.Spacing)

	stage = model.StageEncode
	buf, cType, err := imageproc.Encode(name, result)
	if err != nil {
		return model.NewFileError(stage, err)
	}

	stage = model.StageWrite
	size := int64(buf.Len())
	if err := w.sink.Put(ctx, name, size, cType, buf); err != nil {
		return model.NewFileError(stage, err)
	}
	outcome.OutputKey = w.sink.Locate(name)
	outcome.Size = size

	// исходник удаляем только после успешной записи результата
	stage = model.StageDelete
	if err := w.fs.Remove(src); err != nil {
		return model.NewFileError(stage, err)
	}

	return nil
}

// routeFailure moves the untouched source into the error folder, if there is one.
func (w *Worker) routeFailure(ctx context.Context, name string) bool {
	if w.opts.ErrorDir == "" {
		return false
	}
	logger := mwlogger.LoggerFromContext(ctx)

	src := filepath.Join(w.opts.InputDir, name)
	dst := filepath.Join(w.opts.ErrorDir, name)
	if err := moveFile(w.fs, src, dst); err != nil {
		logger.Error().Err(err).Msgf("Error moving %s to error folder", name)
		return false
	}

	logger.Info().Msgf("File %s moved to error folder.", name)
	return true
}

// report publishes and journals the outcome; failures here never change the outcome itself.
func (w *Worker) report(ctx context.Context, runID uuid.UUID, outcome model.Outcome) {
	logger := mwlogger.LoggerFromContext(ctx)
	ev := model.NewFileEvent(runID, outcome, w.now().UTC())

	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal file event")
	} else if err := w.publisher.SendWithRetry(ctx, publishStrategy, []byte(runID.String()), payload); err != nil {
		logger.Error().Err(err).Msg("Failed to publish file event")
	}

	if err := w.journal.AddFile(ctx, &ev); err != nil {
		logger.Error().Err(err).Msg("Failed to journal file outcome")
	}
}

func closeFileFlow(ctx context.Context, res io.Closer) {
	if res == nil {
		return
	}

	if err := res.Close(); err != nil {
		logger := mwlogger.LoggerFromContext(ctx)
		logger.Warn().Err(err).Msg("Worker failed to close fileflow")
	}
}
