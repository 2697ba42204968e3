package game

import (
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pigdice/internal/randutil"
)

// randomPlaying returns a valid in-game state where nobody has won yet.
func randomPlaying(t *testing.T, rng *rand.Rand) Playing {
	t.Helper()
	n := MinPlayers + rng.IntN(5)
	players := make([]Player, n)
	for i := range players {
		players[i] = Player{ID: UserID(i + 1), Name: "p", Score: rng.IntN(WinScore)}
	}
	turn := rng.IntN(n)
	headroom := WinScore - players[turn].Score
	turnScore := rng.IntN(headroom)
	p, err := NewPlaying(players, turn, turnScore)
	require.NoError(t, err)
	return p
}

func TestNewPlayingValidation(t *testing.T) {
	tests := []struct {
		name      string
		players   []Player
		turn      int
		turnScore int
		wantErr   bool
	}{
		{name: "valid", players: []Player{alice, bob}, turn: 1},
		{name: "one player", players: []Player{alice}, wantErr: true},
		{name: "turn out of range", players: []Player{alice, bob}, turn: 2, wantErr: true},
		{name: "negative turn", players: []Player{alice, bob}, turn: -1, wantErr: true},
		{name: "negative turn score", players: []Player{alice, bob}, turnScore: -3, wantErr: true},
		{name: "duplicate ids", players: []Player{alice, alice}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlaying(tt.players, tt.turn, tt.turnScore)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEngineDoesNotMutateReceiver(t *testing.T) {
	p, err := NewPlaying([]Player{alice, bob}, 0, 10)
	require.NoError(t, err)

	_, _, err = p.Roll(alice.ID, 5)
	require.NoError(t, err)
	_, _, err = p.Bank(alice.ID)
	require.NoError(t, err)
	_, _, err = p.Roll(alice.ID, BustFace)
	require.NoError(t, err)

	assert.Equal(t, 0, p.Turn())
	assert.Equal(t, 10, p.TurnScore())
	assert.Equal(t, 0, p.Players()[0].Score)
}

func TestEngineProperties(t *testing.T) {
	rng := randutil.New(2024)
	const iterations = 500

	t.Run("non-current player is always rejected", func(t *testing.T) {
		for i := 0; i < iterations; i++ {
			p := randomPlaying(t, rng)
			other := p.Players()[(p.Turn()+1+rng.IntN(len(p.Players())-1))%len(p.Players())]

			next, _, err := p.Roll(other.ID, MinFace+rng.IntN(MaxFace))
			require.ErrorIs(t, err, ErrWrongTurn)
			assert.Equal(t, p, next)

			next, _, err = p.Bank(other.ID)
			require.ErrorIs(t, err, ErrWrongTurn)
			assert.Equal(t, p, next)
		}
	})

	t.Run("bust always resets and advances by one", func(t *testing.T) {
		for i := 0; i < iterations; i++ {
			p := randomPlaying(t, rng)
			next, res, err := p.Roll(p.Current().ID, BustFace)
			require.NoError(t, err)

			assert.Equal(t, TurnLost, res.Outcome)
			assert.Equal(t, p.TurnScore(), res.TurnScore)
			assert.Equal(t, 0, next.TurnScore())
			assert.Equal(t, (p.Turn()+1)%len(p.Players()), next.Turn())
			assert.Equal(t, p.Players(), next.Players())
		}
	})

	t.Run("non-bust below threshold keeps the turn", func(t *testing.T) {
		for i := 0; i < iterations; i++ {
			p := randomPlaying(t, rng)
			face := 2 + rng.IntN(MaxFace-1)
			if p.Current().Score+p.TurnScore()+face >= WinScore {
				continue
			}
			next, res, err := p.Roll(p.Current().ID, face)
			require.NoError(t, err)

			assert.Equal(t, Continue, res.Outcome)
			assert.Equal(t, p.Turn(), next.Turn())
			assert.Equal(t, p.TurnScore()+face, next.TurnScore())
			assert.Equal(t, p.Current().ID, next.Current().ID)
			assert.Equal(t, p.Players(), next.Players())
		}
	})

	t.Run("crossing the threshold banks everything", func(t *testing.T) {
		for i := 0; i < iterations; i++ {
			p := randomPlaying(t, rng)
			face := 2 + rng.IntN(MaxFace-1)
			banked := p.Current().Score
			total := banked + p.TurnScore() + face
			if total < WinScore {
				continue
			}
			next, res, err := p.Roll(p.Current().ID, face)
			require.NoError(t, err)

			assert.Equal(t, RoundFinished, res.Outcome)
			assert.Equal(t, total, res.Roller.Score)
			assert.Equal(t, total, next.Current().Score)
			assert.Equal(t, 0, next.TurnScore())
		}
	})

	t.Run("bank moves the turn score exactly once", func(t *testing.T) {
		for i := 0; i < iterations; i++ {
			p := randomPlaying(t, rng)
			current := p.Current()
			next, res, err := p.Bank(current.ID)
			require.NoError(t, err)

			assert.Equal(t, current.Score+p.TurnScore(), res.Banker.Score)
			assert.Equal(t, p.TurnScore(), res.Banked)
			assert.Equal(t, res.Banker.Score, next.Players()[p.Turn()].Score)
			assert.Equal(t, 0, next.TurnScore())
			assert.Equal(t, (p.Turn()+1)%len(p.Players()), next.Turn())
		}
	})

	t.Run("scores never decrease over random play", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			p := randomPlaying(t, rng)
			for step := 0; step < 200; step++ {
				before := p.Players()
				var err error
				var res RollResult
				if rng.IntN(4) == 0 {
					p, _, err = p.Bank(p.Current().ID)
				} else {
					p, res, err = p.Roll(p.Current().ID, MinFace+rng.IntN(MaxFace))
				}
				require.NoError(t, err)
				for j, pl := range p.Players() {
					require.GreaterOrEqual(t, pl.Score, before[j].Score)
				}
				require.Less(t, p.Turn(), len(p.Players()))
				if res.Outcome == RoundFinished {
					break
				}
			}
		}
	})
}

func TestRollOutcomeString(t *testing.T) {
	assert.Equal(t, "turn_lost", TurnLost.String())
	assert.Equal(t, "continue", Continue.String())
	assert.Equal(t, "round_finished", RoundFinished.String())
	assert.Equal(t, "RollOutcome(0)", RollOutcome(0).String())
}
