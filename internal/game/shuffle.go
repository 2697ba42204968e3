package game

import rand "math/rand/v2"

// Source provides uniformly distributed integers. *rand.Rand from
// math/rand/v2 satisfies it.
type Source interface {
	// IntN returns a value in [0, n). n is always > 0.
	IntN(n int) int
}

// exclusiveSource is a shared source that can lend its generator for a run
// of draws under one lock.
type exclusiveSource interface {
	WithRNG(fn func(*rand.Rand))
}

// Shuffle returns a uniformly random permutation of items using Fisher-Yates.
// The input slice is not modified. A shared source is held for the whole
// permutation.
func Shuffle[T any](items []T, src Source) []T {
	if ex, ok := src.(exclusiveSource); ok {
		var out []T
		ex.WithRNG(func(r *rand.Rand) { out = shuffle(items, r) })
		return out
	}
	return shuffle(items, src)
}

func shuffle[T any](items []T, src Source) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
