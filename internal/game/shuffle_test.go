package game

import (
	"fmt"
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/pigdice/internal/randutil"
)

type fixedSource struct {
	values []int
	next   int
}

func (f *fixedSource) IntN(n int) int {
	v := f.values[f.next%len(f.values)] % n
	f.next++
	return v
}

func TestShuffleDoesNotModifyInput(t *testing.T) {
	in := []int{1, 2, 3, 4, 5}
	out := Shuffle(in, randutil.New(3))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, in)
	assert.ElementsMatch(t, in, out)
}

func TestShuffleIsDeterministicForSource(t *testing.T) {
	in := []string{"a", "b", "c", "d"}
	// j is drawn for i = 3, 2, 1: always 0 rotates the head to the tail.
	out := Shuffle(in, &fixedSource{values: []int{0}})
	assert.Equal(t, []string{"b", "c", "d", "a"}, out)
}

func TestShuffleEmptyAndSingle(t *testing.T) {
	assert.Empty(t, Shuffle([]int{}, randutil.New(1)))
	assert.Equal(t, []int{7}, Shuffle([]int{7}, randutil.New(1)))
}

func TestShuffleIsUniform(t *testing.T) {
	const trials = 6000
	rng := randutil.New(99)
	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		counts[fmt.Sprint(Shuffle([]int{1, 2, 3}, rng))]++
	}

	assert.Len(t, counts, 6)
	for perm, n := range counts {
		assert.InDelta(t, trials/6, n, 150, "permutation %s", perm)
	}
}

type exclusiveCounter struct {
	t     *testing.T
	rng   *rand.Rand
	calls int
}

func (e *exclusiveCounter) IntN(int) int {
	e.t.Fatal("shuffle must draw through WithRNG")
	return 0
}

func (e *exclusiveCounter) WithRNG(fn func(*rand.Rand)) {
	e.calls++
	fn(e.rng)
}

func TestShuffleHoldsSharedSourceOnce(t *testing.T) {
	src := &exclusiveCounter{t: t, rng: randutil.New(4)}
	out := Shuffle([]int{1, 2, 3, 4, 5}, src)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, Shuffle([]int{1, 2, 3, 4, 5}, randutil.New(4)), out)
}

func TestShuffleWithLockedSource(t *testing.T) {
	in := []string{"a", "b", "c", "d"}
	assert.Equal(t, Shuffle(in, randutil.New(8)), Shuffle(in, randutil.NewLocked(8)))
}
