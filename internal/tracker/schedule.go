package tracker

import "context"

// Start begins the periodic auto-advance task. It ticks every
// Options.TickInterval until ctx is cancelled or Close is called.
func (t *Tracker) Start(ctx context.Context) error {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	if t.done != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	ticker := t.clock.NewTicker(t.opts.TickInterval)
	t.cancel = cancel
	t.done = make(chan struct{})

	go t.run(ctx, ticker, t.done)

	t.logger.Debug("auto-advance started", "interval", t.opts.TickInterval.String())
	return nil
}

func (t *Tracker) run(ctx context.Context, ticker Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if ctx.Err() != nil {
				return
			}
			if _, err := t.Tick(); err != nil {
				t.logger.Error("auto-advance tick failed", "error", err)
			}
		}
	}
}

// Close stops the periodic task and waits for it to exit. After Close
// returns no further tick will touch the collection. Close does not close
// the store; the store's owner does. It is safe to call more than once.
func (t *Tracker) Close() error {
	t.runMu.Lock()
	cancel, done := t.cancel, t.done
	t.runMu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()
	<-done
	return nil
}
