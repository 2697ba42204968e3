// Package randutil builds the random sources used for turn-order draws.
package randutil

import (
	rand "math/rand/v2"
	"sync"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Both PCG seeds are derived from the one value so every call site gets the
// same reproducible sequence for the same seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed returns *seed when set, otherwise a time-derived seed. The second
// return value reports whether the seed was explicit.
func Seed(seed *int64) (int64, bool) {
	if seed != nil {
		return *seed, true
	}
	return time.Now().UnixNano(), false
}

// Locked is a source that can be shared between goroutines. Each IntN call
// is a single atomic draw.
type Locked struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocked wraps a seeded generator for concurrent use.
func NewLocked(seed int64) *Locked {
	return &Locked{rng: New(seed)}
}

// IntN returns a value in [0, n).
func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.IntN(n)
}

// WithRNG runs fn with exclusive access to the generator, so a sequence of
// draws such as a whole shuffle is taken as one atomic draw.
func (l *Locked) WithRNG(fn func(*rand.Rand)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.rng)
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
