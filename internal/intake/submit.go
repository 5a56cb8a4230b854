package intake

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrSubmissionFailed is matched by every error Submit returns after the
// submitter has been called.
var ErrSubmissionFailed = errors.New("upload failed")

// SubmissionError reports a failed submission. The pending files are kept
// so the submission can be retried.
type SubmissionError struct {
	Count int // files in the failed batch
	Err   error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submitting %d file(s): %v", e.Count, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionFailed
}

// Submitter delivers a batch of files somewhere.
type Submitter interface {
	Submit(ctx context.Context, files []File) error
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, files []File) error

func (f SubmitterFunc) Submit(ctx context.Context, files []File) error {
	return f(ctx, files)
}

// DefaultSubmitDelay is how long SimulatedSubmitter takes by default.
const DefaultSubmitDelay = 1500 * time.Millisecond

// SimulatedSubmitter stands in for an upload backend. It waits Delay and
// succeeds, unless ctx is done first.
type SimulatedSubmitter struct {
	Delay time.Duration
}

var _ Submitter = (*SimulatedSubmitter)(nil)

func (s *SimulatedSubmitter) Submit(ctx context.Context, files []File) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
