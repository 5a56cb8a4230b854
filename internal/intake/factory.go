package intake

import (
	"fmt"

	"intake-go/internal/config"
)

// NewQueueFromConfig creates a Queue with the configured rules and a
// SimulatedSubmitter.
func NewQueueFromConfig(cfg config.IntakeConfig) (*Queue, error) {
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		return nil, fmt.Errorf("intake max_size must be positive, got %d", maxSize)
	}

	types := cfg.AllowedTypes
	if len(types) == 0 {
		types = config.DefaultAllowedTypes
	}
	for _, t := range types {
		if _, ok := KindOf(t); !ok {
			return nil, fmt.Errorf("allowed type %s is neither an image nor a PDF", t)
		}
	}

	delay := cfg.SubmitDelay.Duration
	if delay < 0 {
		delay = DefaultSubmitDelay
	}

	return NewQueue(NewRules(maxSize, types), &SimulatedSubmitter{Delay: delay}), nil
}
