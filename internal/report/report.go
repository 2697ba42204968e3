// Package report renders simulation results for the terminal and for JSON
// output.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/pigdice/internal/statistics"
)

// StrategySummary is one strategy's line in the report.
type StrategySummary struct {
	Label   string  `json:"label"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
}

// Summary is the machine readable form of a simulation.
type Summary struct {
	Seed       int64                   `json:"seed"`
	Games      int                     `json:"games"`
	Strategies []StrategySummary       `json:"strategies"`
	SeatWins   map[int]int             `json:"seat_wins"`
	MeanRolls  float64                 `json:"mean_rolls"`
	MeanTurns  float64                 `json:"mean_turns"`
	BustRate   float64                 `json:"bust_rate"`
	Results    []statistics.GameResult `json:"results,omitempty"`
}

// Summarize builds a Summary. labels lists every strategy, including those
// without wins, in the order they were configured.
func Summarize(seed int64, labels []string, stats *statistics.Statistics, results []statistics.GameResult) Summary {
	s := Summary{
		Seed:      seed,
		Games:     stats.Games,
		SeatWins:  stats.SeatWins,
		MeanRolls: stats.Rolls.Mean(),
		MeanTurns: stats.Turns.Mean(),
		Results:   results,
	}
	if stats.Turns.Sum > 0 {
		s.BustRate = float64(stats.Busts) / stats.Turns.Sum
	}
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if seen[l] {
			continue
		}
		seen[l] = true
		s.Strategies = append(s.Strategies, StrategySummary{Label: l, Wins: stats.Wins[l], WinRate: stats.WinRate(l)})
	}
	sort.SliceStable(s.Strategies, func(i, j int) bool {
		return s.Strategies[i].Wins > s.Strategies[j].Wins
	})
	return s
}

// Render formats s for the terminal.
func Render(s Summary) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("Pig simulation: %d games (seed %d)", s.Games, s.Seed)))
	b.WriteString("\n\n")

	var rows []string
	for i, st := range s.Strategies {
		name := LabelStyle.Render(fmt.Sprintf("%-10s", st.Label))
		if i == 0 && st.Wins > 0 {
			name = WinnerStyle.Render(fmt.Sprintf("%-10s", st.Label))
		}
		rows = append(rows, fmt.Sprintf("%s %s", name,
			ValueStyle.Render(fmt.Sprintf("%6d wins  %5.1f%%", st.Wins, st.WinRate*100))))
	}
	b.WriteString(BoxStyle.Render(strings.Join(rows, "\n")))
	b.WriteString("\n")

	seats := make([]int, 0, len(s.SeatWins))
	for seat := range s.SeatWins {
		seats = append(seats, seat)
	}
	sort.Ints(seats)
	var seatParts []string
	for _, seat := range seats {
		seatParts = append(seatParts, fmt.Sprintf("#%d %d", seat+1, s.SeatWins[seat]))
	}

	details := lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("%s %.1f", LabelStyle.Render("Rolls/game:"), s.MeanRolls),
		fmt.Sprintf("%s %.1f", LabelStyle.Render("Turns/game:"), s.MeanTurns),
		fmt.Sprintf("%s %.1f%%", LabelStyle.Render("Bust rate: "), s.BustRate*100),
		InfoStyle.Render("Wins by turn order: "+strings.Join(seatParts, ", ")),
	)
	b.WriteString(details)
	b.WriteString("\n")
	return b.String()
}
