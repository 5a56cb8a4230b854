package testutil

import "sync"

// SequenceRandom replays scripted draws. Float64 cycles through Floats and
// IntN through Ints (reduced modulo n); an empty script yields zero.
type SequenceRandom struct {
	mu     sync.Mutex
	Floats []float64
	Ints   []int
	fi, ii int
}

// NewSequenceRandom returns a SequenceRandom that replays floats.
func NewSequenceRandom(floats ...float64) *SequenceRandom {
	return &SequenceRandom{Floats: floats}
}

// AlwaysAdvance returns a Random whose every draw is below any positive probability.
func AlwaysAdvance() *SequenceRandom {
	return NewSequenceRandom(0)
}

// NeverAdvance returns a Random whose every draw is at or above any probability up to 1.
func NeverAdvance() *SequenceRandom {
	return NewSequenceRandom(0.999999)
}

func (r *SequenceRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Floats) == 0 {
		return 0
	}
	v := r.Floats[r.fi%len(r.Floats)]
	r.fi++
	return v
}

func (r *SequenceRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Ints) == 0 || n <= 0 {
		return 0
	}
	v := r.Ints[r.ii%len(r.Ints)]
	r.ii++
	return v % n
}
