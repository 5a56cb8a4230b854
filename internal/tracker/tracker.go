package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"intake-go/internal/model"
)

// DefaultRejectionReason is used when Reject is called without a reason.
const DefaultRejectionReason = "Document rejected by reviewer"

// Options tunes the tracker's scheduling and review defaults.
type Options struct {
	TickInterval           time.Duration // period of the auto-advance check
	AdvanceProbability     float64       // per-tick chance a processing document advances
	DefaultRejectionReason string
}

// DefaultOptions returns a 2s tick and a 10% advance chance.
func DefaultOptions() Options {
	return Options{
		TickInterval:           2 * time.Second,
		AdvanceProbability:     0.10,
		DefaultRejectionReason: DefaultRejectionReason,
	}
}

// Upload describes a submitted file that becomes a new processing document.
type Upload struct {
	Name      string
	Kind      model.Kind
	SizeBytes int64
	SourceURL string
}

// Tracker owns a collection of documents and moves them through the
// review lifecycle:
//
//	processing -> need_approval -> approved | rejected
//	processing -> rejected
//
// approved and rejected are terminal. All operations are serialized, so a
// caller never observes a partially applied mutation.
type Tracker struct {
	store  Store
	clock  Clock
	random Random
	idgen  IDGenerator
	logger Logger
	opts   Options

	mu      sync.Mutex // guards store access, random draws and history
	history []Event

	lmu          sync.Mutex
	listeners    []listener
	nextListener int

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTracker creates a Tracker over the given store. A zero TickInterval or
// empty DefaultRejectionReason falls back to DefaultOptions.
func NewTracker(store Store, clock Clock, random Random, idgen IDGenerator, logger Logger, opts Options) *Tracker {
	defaults := DefaultOptions()
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaults.TickInterval
	}
	if opts.AdvanceProbability < 0 {
		opts.AdvanceProbability = 0
	}
	if opts.DefaultRejectionReason == "" {
		opts.DefaultRejectionReason = defaults.DefaultRejectionReason
	}

	return &Tracker{
		store:  store,
		clock:  clock,
		random: random,
		idgen:  idgen,
		logger: logger,
		opts:   opts,
	}
}

// Seed inserts pre-existing documents, such as SampleDocuments, as-is.
func (t *Tracker) Seed(docs ...*model.Document) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, doc := range docs {
		if !doc.Status.Valid() {
			return fmt.Errorf("seeding document %s: unknown status %q", doc.ID, doc.Status)
		}
		if err := t.store.Insert(doc.Clone()); err != nil {
			return fmt.Errorf("seeding document %s: %w", doc.ID, err)
		}
	}

	t.logger.Debug("collection seeded", "count", len(docs))
	return nil
}

// Ingest creates a processing document for each upload.
func (t *Tracker) Ingest(uploads ...Upload) ([]model.Document, error) {
	t.mu.Lock()
	created := make([]model.Document, 0, len(uploads))
	var events []Event
	var err error
	for _, u := range uploads {
		doc := &model.Document{
			ID:         t.idgen.New(),
			Name:       u.Name,
			Kind:       u.Kind,
			SizeMB:     float64(u.SizeBytes) / (1024 * 1024),
			Status:     model.StatusProcessing,
			UploadedAt: t.clock.Now(),
			SourceURL:  u.SourceURL,
		}
		if err = t.store.Insert(doc); err != nil {
			err = fmt.Errorf("ingesting %s: %w", u.Name, err)
			break
		}
		ev := Event{Type: EventIngested, DocumentID: doc.ID, Status: doc.Status, At: doc.UploadedAt}
		t.record(ev)
		events = append(events, ev)
		created = append(created, *doc.Clone())
		t.logger.Info("document ingested", "id", doc.ID, "name", doc.Name)
	}
	t.mu.Unlock()

	t.publish(events...)
	return created, err
}

// Tick performs one auto-advance check. Each processing document advances
// to need_approval with probability AdvanceProbability, receiving freshly
// extracted data and a placeholder source URL. Returns the number advanced.
func (t *Tracker) Tick() (int, error) {
	t.mu.Lock()
	advanced, events, err := t.tick()
	t.mu.Unlock()

	events = append(events, Event{Type: EventTicked, Advanced: advanced, At: t.clock.Now()})
	t.publish(events...)
	return advanced, err
}

// tick is Tick without locking or publishing. Caller holds t.mu.
func (t *Tracker) tick() (int, []Event, error) {
	docs, err := t.store.List()
	if err != nil {
		return 0, nil, fmt.Errorf("listing documents: %w", err)
	}

	advanced := 0
	var events []Event
	for _, doc := range docs {
		if doc.Status != model.StatusProcessing {
			continue
		}
		if t.random.Float64() >= t.opts.AdvanceProbability {
			continue
		}

		doc.Status = model.StatusNeedApproval
		doc.SourceURL = placeholderURL(doc.Kind)
		doc.ExtractedData = extractData(t.random)
		if err := t.store.Update(doc); err != nil {
			return advanced, events, fmt.Errorf("advancing document %s: %w", doc.ID, err)
		}

		advanced++
		ev := Event{Type: EventAdvanced, DocumentID: doc.ID, Status: doc.Status, At: t.clock.Now()}
		t.record(ev)
		events = append(events, ev)
		t.logger.Info("document ready for review", "id", doc.ID, "name", doc.Name)
	}

	return advanced, events, nil
}

// Approve moves a need_approval document to approved. Extracted data is kept for audit.
func (t *Tracker) Approve(id string) error {
	t.mu.Lock()
	ev, err := t.transition(id, model.StatusApproved, "")
	t.mu.Unlock()
	if err != nil {
		return err
	}

	t.publish(ev)
	return nil
}

// Reject moves a processing or need_approval document to rejected with
// the given reason. An empty reason uses the configured default.
func (t *Tracker) Reject(id string, reason string) error {
	if reason == "" {
		reason = t.opts.DefaultRejectionReason
	}

	t.mu.Lock()
	ev, err := t.transition(id, model.StatusRejected, reason)
	t.mu.Unlock()
	if err != nil {
		return err
	}

	t.publish(ev)
	return nil
}

// transition applies a manual review decision. Caller holds t.mu.
func (t *Tracker) transition(id string, to model.Status, reason string) (Event, error) {
	doc, err := t.store.Get(id)
	if err != nil {
		return Event{}, fmt.Errorf("finding document: %w", err)
	}
	if doc == nil {
		return Event{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !allowed(doc.Status, to) {
		return Event{}, &TransitionError{ID: id, From: doc.Status, To: to}
	}

	doc.Status = to
	if to == model.StatusRejected {
		doc.RejectionReason = reason
	}
	if err := t.store.Update(doc); err != nil {
		return Event{}, fmt.Errorf("updating document %s: %w", id, err)
	}

	ev := Event{Type: EventType(to), DocumentID: id, Status: to, Reason: reason, At: t.clock.Now()}
	t.record(ev)
	t.logger.Info("document reviewed", "id", id, "status", string(to))
	return ev, nil
}

// allowed reports whether a manual decision may move a document from one status to another.
func allowed(from, to model.Status) bool {
	switch to {
	case model.StatusApproved:
		return from == model.StatusNeedApproval
	case model.StatusRejected:
		return !from.Terminal()
	}
	return false
}

// Get returns a copy of the document with the given ID.
func (t *Tracker) Get(id string) (model.Document, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, err := t.store.Get(id)
	if err != nil {
		return model.Document{}, fmt.Errorf("finding document: %w", err)
	}
	if doc == nil {
		return model.Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *doc.Clone(), nil
}

// Documents returns a copy of the collection in insertion order.
func (t *Tracker) Documents() ([]model.Document, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	docs, err := t.store.List()
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	out := make([]model.Document, len(docs))
	for i, doc := range docs {
		out[i] = *doc.Clone()
	}
	return out, nil
}

// StatusCounts returns the number of documents in each status.
func (t *Tracker) StatusCounts() (model.StatusCounts, error) {
	docs, err := t.Documents()
	if err != nil {
		return model.StatusCounts{}, err
	}

	var counts model.StatusCounts
	for _, doc := range docs {
		counts.Add(doc.Status)
	}
	return counts, nil
}

// GroupByStatus partitions the collection by status. Every status has an
// entry, and each partition keeps insertion order.
func (t *Tracker) GroupByStatus() (map[model.Status][]model.Document, error) {
	docs, err := t.Documents()
	if err != nil {
		return nil, err
	}

	groups := make(map[model.Status][]model.Document, len(model.Statuses))
	for _, s := range model.Statuses {
		groups[s] = []model.Document{}
	}
	for _, doc := range docs {
		groups[doc.Status] = append(groups[doc.Status], doc)
	}
	return groups, nil
}
