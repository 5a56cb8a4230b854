package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"intake-go/internal/config"
	"intake-go/internal/intake"
	"intake-go/internal/model"
	"intake-go/internal/store"
	"intake-go/internal/tracker"
)

// IntakeApp is the application layer between the CLI and the tracker.
// It constructs all dependencies from config, exposes operations that
// accept raw paths and IDs, and releases everything on Close.
type IntakeApp struct {
	cfg     *config.Config
	store   tracker.Store
	tracker *tracker.Tracker
	queue   *intake.Queue
	batches *batchLog
	clock   tracker.Clock
	ids     tracker.IDGenerator
	logger  tracker.Logger
	logFile *os.File
}

// NewIntakeApp creates a fully wired IntakeApp from the given config.
// The caller must call Close when done.
func NewIntakeApp(cfg *config.Config) (*IntakeApp, error) {
	sessionID := time.Now().UTC().Format("20060102T150405Z")
	l, logFile, err := newLogger(cfg.LogDir, sessionID, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: l}

	s, err := store.NewStoreFromConfig(cfg.Store)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating store: %w", err)
	}

	q, err := intake.NewQueueFromConfig(cfg.Intake)
	if err != nil {
		s.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating intake queue: %w", err)
	}

	clock := tracker.RealClock{}
	ids := tracker.UUIDGenerator{}
	tr := tracker.NewTracker(s, clock, tracker.NewRandom(cfg.Tracker.RandomSeed), ids, logger, tracker.Options{
		TickInterval:           cfg.Tracker.TickInterval.Duration,
		AdvanceProbability:     cfg.Tracker.AdvanceProbability,
		DefaultRejectionReason: cfg.Tracker.DefaultRejectionReason,
	})

	if !cfg.Tracker.SkipSamples {
		if err := tr.Seed(tracker.SampleDocuments()...); err != nil {
			s.Close()
			logFile.Close()
			return nil, fmt.Errorf("seeding samples: %w", err)
		}
	}

	return &IntakeApp{
		cfg:     cfg,
		store:   s,
		tracker: tr,
		queue:   q,
		batches: &batchLog{},
		clock:   clock,
		ids:     ids,
		logger:  logger,
		logFile: logFile,
	}, nil
}

// Start begins periodic auto-advance until ctx is cancelled or Close is called.
func (a *IntakeApp) Start(ctx context.Context) error {
	return a.tracker.Start(ctx)
}

// Subscribe registers fn for tracker events. See tracker.Tracker.Subscribe.
func (a *IntakeApp) Subscribe(fn func(tracker.Event)) (unsubscribe func()) {
	return a.tracker.Subscribe(fn)
}

// Documents returns the collection in insertion order.
func (a *IntakeApp) Documents() ([]model.Document, error) {
	return a.tracker.Documents()
}

// Document returns a single document by ID.
func (a *IntakeApp) Document(id string) (model.Document, error) {
	return a.tracker.Get(id)
}

// Counts returns the per-status summary.
func (a *IntakeApp) Counts() (model.StatusCounts, error) {
	return a.tracker.StatusCounts()
}

// Groups returns the collection partitioned by status.
func (a *IntakeApp) Groups() (map[model.Status][]model.Document, error) {
	return a.tracker.GroupByStatus()
}

// Approve approves a document awaiting review.
func (a *IntakeApp) Approve(id string) error {
	return a.tracker.Approve(id)
}

// Reject rejects a document. An empty reason uses the configured default.
func (a *IntakeApp) Reject(id, reason string) error {
	return a.tracker.Reject(id, reason)
}

// Tick runs one auto-advance check immediately.
func (a *IntakeApp) Tick() (int, error) {
	return a.tracker.Tick()
}

// History returns the most recent tracker events, newest first.
func (a *IntakeApp) History(limit int) []tracker.Event {
	return a.tracker.History(limit)
}

// CheckFile resolves a local path and validates it without queueing it.
func (a *IntakeApp) CheckFile(path string) (intake.File, error) {
	f, err := intake.FileFromPath(path)
	if err != nil {
		return intake.File{}, err
	}
	return f, a.queue.Check(f)
}

// QueueFile resolves a local path and adds it to the pending set.
func (a *IntakeApp) QueueFile(path string) (intake.File, error) {
	f, err := intake.FileFromPath(path)
	if err != nil {
		return intake.File{}, err
	}
	if err := a.queue.Add(f); err != nil {
		a.logger.Debug("file refused", "name", f.Name, "error", err)
		return f, err
	}
	a.logger.Debug("file queued", "name", f.Name, "size", f.Size)
	return f, nil
}

// Pending returns the files waiting to be submitted.
func (a *IntakeApp) Pending() []intake.File {
	return a.queue.Pending()
}

// RemovePending drops a pending file by name.
func (a *IntakeApp) RemovePending(name string) bool {
	return a.queue.Remove(name)
}

// Submit submits the pending files and ingests them into the tracker as
// processing documents, recording the batch. Returns the created
// documents. On submission failure the pending set is kept for a retry.
func (a *IntakeApp) Submit(ctx context.Context) ([]model.Document, error) {
	files, err := a.queue.Submit(ctx)
	if err != nil {
		a.logger.Warn("submission failed", "error", err)
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	uploads := make([]tracker.Upload, 0, len(files))
	for _, f := range files {
		kind, ok := intake.KindOf(f.ContentType)
		if !ok {
			return nil, fmt.Errorf("submitted file %s has unsupported type %s", f.Name, f.ContentType)
		}
		uploads = append(uploads, tracker.Upload{
			Name:      f.Name,
			Kind:      kind,
			SizeBytes: f.Size,
			SourceURL: sourceURL(f),
		})
	}

	docs, err := a.tracker.Ingest(uploads...)
	if err != nil {
		return docs, fmt.Errorf("ingesting submitted files: %w", err)
	}

	docIDs := make([]string, len(docs))
	for i, d := range docs {
		docIDs[i] = d.ID
	}
	processorID := a.batches.record(a.ids.New(), a.clock.Now(), docIDs)
	a.logger.Info("submission complete", "files", len(docs), "processor", processorID)
	return docs, nil
}

// Batches returns every recorded submission, oldest first, with its
// documents' current state and derived status.
func (a *IntakeApp) Batches() ([]model.Batch, error) {
	records := a.batches.snapshot()
	out := make([]model.Batch, 0, len(records))
	for _, r := range records {
		docs := make([]model.Document, 0, len(r.documentIDs))
		for _, id := range r.documentIDs {
			d, err := a.tracker.Get(id)
			if err != nil {
				return nil, fmt.Errorf("loading batch %s: %w", r.processorID, err)
			}
			docs = append(docs, d)
		}
		out = append(out, model.Batch{
			ID:          r.id,
			ProcessorID: r.processorID,
			SubmittedAt: r.submittedAt,
			Status:      model.BatchStatusOf(docs),
			Documents:   docs,
		})
	}
	return out, nil
}

// sourceURL points at the local copy of a submitted file until processing
// replaces it with rendered content.
func sourceURL(f intake.File) string {
	if f.Path == "" {
		return ""
	}
	return "file://" + f.Path
}

// Close stops the tracker, then closes the store and the log file.
func (a *IntakeApp) Close() error {
	var firstErr error

	if err := a.tracker.Close(); err != nil {
		firstErr = fmt.Errorf("stopping tracker: %w", err)
	}

	if err := a.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
