package battle

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the subset of math/rand used by battle resolution. Tests
// inject fixed implementations to pin down damage rolls, critical
// hits and capture outcomes.
type Rand interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// NewRand returns a time-seeded source. The manager shares one source
// across every battle, and battles resolve turns concurrently under
// their own locks, so draws are serialized with a mutex.
func NewRand() Rand {
	return &lockedRand{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}
