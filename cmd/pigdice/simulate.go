package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lox/pigdice/cmd/pigdice/shared"
	"github.com/lox/pigdice/internal/fileutil"
	"github.com/lox/pigdice/internal/randutil"
	"github.com/lox/pigdice/internal/report"
	"github.com/lox/pigdice/internal/simulator"
)

// SimulateCmd plays games between scripted bots
type SimulateCmd struct {
	Games      int    `kong:"default='1000',help='Number of games to simulate'"`
	Strategies string `kong:"default='20,25',help='Comma separated hold thresholds, one bot per entry'"`
	Seed       *int64 `kong:"help='RNG seed (random if omitted)'"`
	Workers    int    `kong:"default='0',help='Parallel games (0 = GOMAXPROCS)'"`
	Output     string `kong:"type='path',help='Write JSON results to this file'"`
	Detail     bool   `kong:"help='Include per-game results in JSON output'"`
	Debug      bool   `kong:"help='Enable debug logging'"`
}

func (c *SimulateCmd) Run() error {
	logger, err := shared.SetupLogger(shared.LevelFor(c.Debug, "warn"), "console")
	if err != nil {
		return err
	}

	strategies, err := simulator.ParseStrategies(c.Strategies)
	if err != nil {
		return err
	}
	if c.Games < 1 {
		return fmt.Errorf("games must be positive")
	}

	seed, _ := randutil.Seed(c.Seed)
	ctx, cancel := shared.SetupSignalHandlerWithLogger(logger)
	defer cancel()

	start := time.Now()
	sim := simulator.New(simulator.Config{
		Games:      c.Games,
		Strategies: strategies,
		Seed:       seed,
		Workers:    c.Workers,
		Logger:     logger,
	})
	stats, results, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	labels := make([]string, len(strategies))
	for i, s := range strategies {
		labels[i] = s.Label()
	}
	if !c.Detail {
		results = nil
	}
	summary := report.Summarize(seed, labels, stats, results)

	fmt.Fprint(os.Stdout, report.Render(summary))
	fmt.Fprintln(os.Stdout, report.InfoStyle.Render(fmt.Sprintf("Completed in %s (%.0f games/sec)",
		elapsed.Round(time.Millisecond), float64(stats.Games)/elapsed.Seconds())))

	if c.Output != "" {
		if err := fileutil.WriteJSONAtomic(c.Output, summary, 0o644); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		logger.Info().Str("path", c.Output).Msg("Wrote results")
	}
	return nil
}
