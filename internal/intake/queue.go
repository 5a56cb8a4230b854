package intake

import (
	"context"
	"sync"
)

// Queue holds files selected for submission. Safe for concurrent use.
type Queue struct {
	rules     *Rules
	submitter Submitter

	submitMu sync.Mutex // one submission at a time

	mu      sync.Mutex
	pending []File
}

// NewQueue creates an empty Queue that validates with rules and submits through submitter.
func NewQueue(rules *Rules, submitter Submitter) *Queue {
	return &Queue{rules: rules, submitter: submitter}
}

// Add validates f and appends it to the pending set. A rejected file
// leaves the set unchanged.
func (q *Queue) Add(f File) error {
	if err := q.rules.Validate(f); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, f)
	return nil
}

// Check validates f without queueing it.
func (q *Queue) Check(f File) error {
	return q.rules.Validate(f)
}

// Remove drops the first pending file named name. It reports whether one was found.
func (q *Queue) Remove(name string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, f := range q.pending {
		if f.Name == name {
			q.pending = append(q.pending[:i:i], q.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Pending returns a copy of the pending files in the order they were added.
func (q *Queue) Pending() []File {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]File(nil), q.pending...)
}

// Len returns the number of pending files.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Submit hands the pending files to the submitter. On success the
// submitted files leave the pending set and are returned. On failure the
// set is kept and the error matches ErrSubmissionFailed. An empty set
// submits nothing and returns nil, nil. Concurrent calls run one after
// another, so a file is never handed out by two of them.
func (q *Queue) Submit(ctx context.Context) ([]File, error) {
	q.submitMu.Lock()
	defer q.submitMu.Unlock()

	batch := q.Pending()
	if len(batch) == 0 {
		return nil, nil
	}

	// The submitter runs outside q.mu; files added meanwhile stay pending.
	if err := q.submitter.Submit(ctx, batch); err != nil {
		return nil, &SubmissionError{Count: len(batch), Err: err}
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for _, f := range batch {
		q.drop(f)
	}
	return batch, nil
}

// drop removes the first pending entry equal to f. Caller holds q.mu.
func (q *Queue) drop(f File) {
	for i, p := range q.pending {
		if p == f {
			q.pending = append(q.pending[:i:i], q.pending[i+1:]...)
			return
		}
	}
}
