// Package statistics aggregates the results of simulated Pig games.
package statistics

import (
	"fmt"
	"math"
	"sort"
)

// GameResult represents the outcome of a single game
type GameResult struct {
	Seed       int64  `json:"seed"`        // RNG seed for this game (for replay)
	Winner     string `json:"winner"`      // Strategy label of the winner
	WinnerSeat int    `json:"winner_seat"` // Winner's position in the turn order, 0 moves first
	Rolls      int    `json:"rolls"`       // Dice rolled in the game
	Turns      int    `json:"turns"`       // Turns played, including the winning one
	Busts      int    `json:"busts"`       // Turns lost to a one
}

// Series accumulates one metric across games.
type Series struct {
	N      int
	Sum    float64
	Sum2   float64   // Sum of squares for variance calculation
	Values []float64 // All values for median/percentile calculation
}

// Add records v.
func (s *Series) Add(v float64) {
	s.N++
	s.Sum += v
	s.Sum2 += v * v
	s.Values = append(s.Values, v)
}

// Mean returns the arithmetic mean
func (s *Series) Mean() float64 {
	if s.N == 0 {
		return 0
	}
	return s.Sum / float64(s.N)
}

// Variance returns the sample variance
func (s *Series) Variance() float64 {
	if s.N < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.Sum2 - float64(s.N)*mean*mean) / float64(s.N-1)
}

// StdDev returns the sample standard deviation
func (s *Series) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Series) StdError() float64 {
	if s.N == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.N))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Series) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median value
func (s *Series) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Series) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	index := p * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Statistics tracks results across simulated games
type Statistics struct {
	Games int
	Rolls Series
	Turns Series
	Busts int

	Wins     map[string]int // Wins per strategy label
	SeatWins map[int]int    // Wins per turn-order position
}

// Add incorporates a game result
func (s *Statistics) Add(r GameResult) {
	if s.Wins == nil {
		s.Wins = make(map[string]int)
		s.SeatWins = make(map[int]int)
	}
	s.Games++
	s.Rolls.Add(float64(r.Rolls))
	s.Turns.Add(float64(r.Turns))
	s.Busts += r.Busts
	s.Wins[r.Winner]++
	s.SeatWins[r.WinnerSeat]++
}

// Merge folds other into s.
func (s *Statistics) Merge(other *Statistics) {
	if other == nil || other.Games == 0 {
		return
	}
	if s.Wins == nil {
		s.Wins = make(map[string]int)
		s.SeatWins = make(map[int]int)
	}
	s.Games += other.Games
	s.Busts += other.Busts
	for _, v := range other.Rolls.Values {
		s.Rolls.Add(v)
	}
	for _, v := range other.Turns.Values {
		s.Turns.Add(v)
	}
	for k, v := range other.Wins {
		s.Wins[k] += v
	}
	for k, v := range other.SeatWins {
		s.SeatWins[k] += v
	}
}

// WinRate returns the share of games won by label
func (s *Statistics) WinRate(label string) float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins[label]) / float64(s.Games)
}

// Labels returns the strategy labels with wins, most wins first
func (s *Statistics) Labels() []string {
	labels := make([]string, 0, len(s.Wins))
	for l := range s.Wins {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		if s.Wins[labels[i]] != s.Wins[labels[j]] {
			return s.Wins[labels[i]] > s.Wins[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels
}

// Validate checks internal consistency
func (s *Statistics) Validate() error {
	if s.Games < 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}
	if s.Rolls.N != s.Games || s.Turns.N != s.Games {
		return fmt.Errorf("series length (rolls=%d, turns=%d) does not match games count (%d)",
			s.Rolls.N, s.Turns.N, s.Games)
	}
	total := 0
	for _, w := range s.Wins {
		total += w
	}
	if total != s.Games {
		return fmt.Errorf("total wins (%d) does not match games (%d)", total, s.Games)
	}
	if float64(s.Busts) > s.Turns.Sum {
		return fmt.Errorf("busts (%d) exceed turns (%.0f)", s.Busts, s.Turns.Sum)
	}
	return nil
}
