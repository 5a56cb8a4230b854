package tracker

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval and tickers so scheduling is deterministic in tests.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock uses the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// IDGenerator abstracts unique ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

// Random is the source of randomness for auto-advance and extraction.
// Implementations need not be safe for concurrent use; the tracker only
// draws while holding its lock.
type Random interface {
	Float64() float64
	IntN(n int) int
}

// NewRandom returns a PCG-backed Random. A zero seed picks a random one.
func NewRandom(seed int64) Random {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}
