package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pigdice/internal/randutil"
)

var (
	alice = Player{ID: 1, Name: "Alice", Handle: "alice"}
	bob   = Player{ID: 2, Name: "Bob"}
	carol = Player{ID: 3, Name: "Carol", Handle: "carol"}
)

// playingSession builds a session already in the Playing phase.
func playingSession(t *testing.T, players []Player, turn, turnScore int) *Session {
	t.Helper()
	p, err := NewPlaying(players, turn, turnScore)
	require.NoError(t, err)
	return &Session{state: &p}
}

func TestJoin(t *testing.T) {
	t.Run("distinct players are added", func(t *testing.T) {
		s := NewSession()
		require.NoError(t, s.Join(alice, false))
		require.NoError(t, s.Join(bob, false))
		assert.Equal(t, 2, s.PlayerCount())
		assert.Equal(t, PhaseLobby, s.Phase())
	})

	t.Run("score is reset on join", func(t *testing.T) {
		s := NewSession()
		p := alice
		p.Score = 40
		require.NoError(t, s.Join(p, false))
		assert.Equal(t, 0, s.Snapshot().Standings[0].Player.Score)
	})

	t.Run("duplicate join is rejected", func(t *testing.T) {
		s := NewSession()
		require.NoError(t, s.Join(alice, false))
		err := s.Join(alice, false)
		require.ErrorIs(t, err, ErrAlreadyJoined)
		assert.Equal(t, 1, s.PlayerCount())

		var ruleErr *RuleError
		require.ErrorAs(t, err, &ruleErr)
		assert.Equal(t, "join", ruleErr.Op)
		assert.Equal(t, alice.ID, ruleErr.User)
	})

	t.Run("join after start is rejected", func(t *testing.T) {
		s := playingSession(t, []Player{alice, bob}, 0, 0)
		err := s.Join(carol, false)
		require.ErrorIs(t, err, ErrJoinAfterStart)
		assert.Equal(t, 2, s.PlayerCount())
	})

	t.Run("premium is sticky until reset", func(t *testing.T) {
		s := NewSession()
		require.NoError(t, s.Join(alice, true))
		require.NoError(t, s.Join(bob, false))
		assert.True(t, s.Premium())

		s.Reset()
		assert.False(t, s.Premium())
	})

	t.Run("count matches number of distinct joins", func(t *testing.T) {
		rng := randutil.New(11)
		for trial := 0; trial < 50; trial++ {
			s := NewSession()
			distinct := map[UserID]bool{}
			for i := 0; i < 20; i++ {
				id := UserID(rng.IntN(10) + 1)
				err := s.Join(Player{ID: id, Name: "p"}, false)
				if distinct[id] {
					require.ErrorIs(t, err, ErrAlreadyJoined)
				} else {
					require.NoError(t, err)
					distinct[id] = true
				}
				require.Equal(t, len(distinct), s.PlayerCount())
			}
		}
	})
}

func TestStart(t *testing.T) {
	t.Run("not enough players", func(t *testing.T) {
		for _, players := range [][]Player{nil, {alice}} {
			s := NewSession()
			for _, p := range players {
				require.NoError(t, s.Join(p, false))
			}
			_, err := s.Start(randutil.New(1))
			require.ErrorIs(t, err, ErrNotEnoughPlayers)
			assert.Equal(t, PhaseLobby, s.Phase())
			assert.Equal(t, len(players), s.PlayerCount())
		}
	})

	t.Run("already playing", func(t *testing.T) {
		s := playingSession(t, []Player{alice, bob}, 1, 5)
		_, err := s.Start(randutil.New(1))
		require.ErrorIs(t, err, ErrAlreadyPlaying)

		p, ok := s.Playing()
		require.True(t, ok)
		assert.Equal(t, 1, p.Turn())
		assert.Equal(t, 5, p.TurnScore())
	})

	t.Run("produces a permutation of the lobby", func(t *testing.T) {
		for seed := int64(0); seed < 50; seed++ {
			s := NewSession()
			for _, p := range []Player{alice, bob, carol} {
				require.NoError(t, s.Join(p, false))
			}
			first, err := s.Start(randutil.New(seed))
			require.NoError(t, err)

			p, ok := s.Playing()
			require.True(t, ok)
			assert.Equal(t, 0, p.Turn())
			assert.Equal(t, 0, p.TurnScore())
			assert.Equal(t, first, p.Current())
			assert.ElementsMatch(t, []Player{alice, bob, carol}, p.Players())
		}
	})

	t.Run("first player is uniform over two players", func(t *testing.T) {
		const trials = 2000
		aliceFirst := 0
		for i := 0; i < trials; i++ {
			s := NewSession()
			require.NoError(t, s.Join(alice, false))
			require.NoError(t, s.Join(bob, false))
			first, err := s.Start(randutil.New(int64(i)))
			require.NoError(t, err)
			if first.ID == alice.ID {
				aliceFirst++
			}
		}
		assert.InDelta(t, trials/2, aliceFirst, trials*0.05)
	})
}

func TestRoll(t *testing.T) {
	t.Run("not playing", func(t *testing.T) {
		s := NewSession()
		require.NoError(t, s.Join(alice, false))
		_, err := s.Roll(alice.ID, 3)
		require.ErrorIs(t, err, ErrNotPlaying)
	})

	t.Run("wrong turn leaves state untouched", func(t *testing.T) {
		s := playingSession(t, []Player{alice, bob}, 0, 8)
		before := s.Snapshot()

		_, err := s.Roll(bob.ID, 4)
		require.ErrorIs(t, err, ErrWrongTurn)

		p, _ := s.Playing()
		assert.Equal(t, 0, p.Turn())
		assert.Equal(t, 8, p.TurnScore())
		assert.Equal(t, before, s.Snapshot())
	})

	t.Run("invalid faces are rejected", func(t *testing.T) {
		s := playingSession(t, []Player{alice, bob}, 0, 8)
		for _, face := range []int{0, 7, -1} {
			_, err := s.Roll(alice.ID, face)
			require.ErrorIs(t, err, ErrInvalidFace)
		}
		p, _ := s.Playing()
		assert.Equal(t, 8, p.TurnScore())
	})

	t.Run("bust face passes the turn", func(t *testing.T) {
		s := playingSession(t, []Player{alice, bob}, 0, 9)
		res, err := s.Roll(alice.ID, BustFace)
		require.NoError(t, err)

		assert.Equal(t, TurnLost, res.Outcome)
		assert.Equal(t, 9, res.TurnScore)
		assert.Equal(t, alice.ID, res.Roller.ID)
		assert.Equal(t, bob.ID, res.Next.ID)

		p, _ := s.Playing()
		assert.Equal(t, 1, p.Turn())
		assert.Equal(t, 0, p.TurnScore())
		assert.Equal(t, 0, p.Players()[0].Score)
	})

	t.Run("continue keeps the die", func(t *testing.T) {
		s := playingSession(t, []Player{alice, bob}, 1, 4)
		res, err := s.Roll(bob.ID, 5)
		require.NoError(t, err)

		assert.Equal(t, Continue, res.Outcome)
		assert.Equal(t, 9, res.TurnScore)
		assert.Equal(t, bob.ID, res.Next.ID)

		p, _ := s.Playing()
		assert.Equal(t, 1, p.Turn())
		assert.Equal(t, 9, p.TurnScore())
	})

	t.Run("reaching the win score finishes the round", func(t *testing.T) {
		p0 := alice
		p0.Score = 97
		s := playingSession(t, []Player{p0, bob}, 0, 0)

		res, err := s.Roll(alice.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, RoundFinished, res.Outcome)
		assert.Equal(t, 100, res.Roller.Score)
		assert.Equal(t, 3, res.TurnScore)

		require.Len(t, res.Standings.Standings, 2)
		assert.True(t, res.Standings.Standings[0].Winner)
		assert.False(t, res.Standings.Standings[1].Winner)

		p, _ := s.Playing()
		assert.Equal(t, 0, p.TurnScore())
		assert.Equal(t, 100, p.Players()[0].Score)

		s.Reset()
		assert.Equal(t, PhaseLobby, s.Phase())
		assert.Equal(t, 0, s.PlayerCount())
	})

	t.Run("win banks the whole turn score", func(t *testing.T) {
		p0 := alice
		p0.Score = 90
		s := playingSession(t, []Player{p0, bob}, 0, 8)

		res, err := s.Roll(alice.ID, 6)
		require.NoError(t, err)
		assert.Equal(t, RoundFinished, res.Outcome)
		assert.Equal(t, 104, res.Roller.Score)
	})
}

func TestBank(t *testing.T) {
	t.Run("not playing", func(t *testing.T) {
		_, err := NewSession().Bank(alice.ID)
		require.ErrorIs(t, err, ErrNotPlaying)
	})

	t.Run("wrong turn", func(t *testing.T) {
		s := playingSession(t, []Player{alice, bob}, 0, 12)
		_, err := s.Bank(bob.ID)
		require.ErrorIs(t, err, ErrWrongTurn)
		p, _ := s.Playing()
		assert.Equal(t, 12, p.TurnScore())
		assert.Equal(t, 0, p.Turn())
	})

	t.Run("banks and passes the die", func(t *testing.T) {
		p1 := bob
		p1.Score = 50
		s := playingSession(t, []Player{alice, p1, carol}, 1, 12)

		res, err := s.Bank(bob.ID)
		require.NoError(t, err)
		assert.Equal(t, 62, res.Banker.Score)
		assert.Equal(t, 12, res.Banked)
		assert.Equal(t, carol.ID, res.Next.ID)

		p, _ := s.Playing()
		assert.Equal(t, 2, p.Turn())
		assert.Equal(t, 0, p.TurnScore())
		assert.Equal(t, 62, p.Players()[1].Score)
	})

	t.Run("last player wraps around", func(t *testing.T) {
		s := playingSession(t, []Player{alice, bob, carol}, 2, 3)
		res, err := s.Bank(carol.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, res.Next.ID)
	})
}

func TestLeave(t *testing.T) {
	t.Run("not joined", func(t *testing.T) {
		_, err := NewSession().Leave(alice.ID)
		require.ErrorIs(t, err, ErrNotJoined)

		s := playingSession(t, []Player{alice, bob}, 0, 0)
		_, err = s.Leave(carol.ID)
		require.ErrorIs(t, err, ErrNotJoined)
	})

	t.Run("lobby removes the player", func(t *testing.T) {
		s := NewSession()
		require.NoError(t, s.Join(alice, false))
		require.NoError(t, s.Join(bob, false))

		res, err := s.Leave(alice.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, res.Player.ID)
		assert.False(t, res.Disbanded)
		assert.Equal(t, 1, s.PlayerCount())
		require.NoError(t, s.Join(alice, false))
	})

	t.Run("last opponent leaving disbands the game", func(t *testing.T) {
		s := playingSession(t, []Player{alice, bob}, 0, 0)
		res, err := s.Leave(bob.ID)
		require.NoError(t, err)
		assert.True(t, res.Disbanded)
		assert.Equal(t, PhaseLobby, s.Phase())
		assert.Equal(t, 0, s.PlayerCount())
	})

	t.Run("current player leaving passes the die", func(t *testing.T) {
		s := playingSession(t, []Player{alice, bob, carol}, 1, 7)
		res, err := s.Leave(bob.ID)
		require.NoError(t, err)
		assert.True(t, res.TurnPassed)
		assert.Equal(t, carol.ID, res.Next.ID)

		p, _ := s.Playing()
		assert.Equal(t, carol.ID, p.Current().ID)
		assert.Equal(t, 0, p.TurnScore())
	})

	t.Run("current last player leaving wraps", func(t *testing.T) {
		s := playingSession(t, []Player{alice, bob, carol}, 2, 7)
		res, err := s.Leave(carol.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, res.Next.ID)
	})

	t.Run("earlier player leaving keeps the current player", func(t *testing.T) {
		s := playingSession(t, []Player{alice, bob, carol}, 2, 7)
		res, err := s.Leave(alice.ID)
		require.NoError(t, err)
		assert.False(t, res.TurnPassed)

		p, _ := s.Playing()
		assert.Equal(t, carol.ID, p.Current().ID)
		assert.Equal(t, 7, p.TurnScore())
		assert.Equal(t, 1, p.Turn())
	})
}

func TestReset(t *testing.T) {
	sessions := []*Session{
		NewSession(),
		playingSession(t, []Player{alice, bob, carol}, 2, 30),
	}
	lobby := NewSession()
	require.NoError(t, lobby.Join(alice, true))
	sessions = append(sessions, lobby)

	for _, s := range sessions {
		s.Reset()
		assert.Equal(t, PhaseLobby, s.Phase())
		assert.Equal(t, 0, s.PlayerCount())
		assert.False(t, s.Premium())
	}
}

func TestSnapshot(t *testing.T) {
	t.Run("lobby lists names in join order", func(t *testing.T) {
		s := NewSession()
		require.NoError(t, s.Join(bob, false))
		require.NoError(t, s.Join(alice, false))

		snap := s.Snapshot()
		assert.Equal(t, PhaseLobby, snap.Phase)
		require.Len(t, snap.Standings, 2)
		assert.Equal(t, bob.ID, snap.Standings[0].Player.ID)
		assert.False(t, snap.Standings[0].Current)
	})

	t.Run("playing flags current and every winner", func(t *testing.T) {
		p0, p1, p2 := alice, bob, carol
		p0.Score = 100
		p2.Score = 104
		s := playingSession(t, []Player{p0, p1, p2}, 1, 0)

		snap := s.Snapshot()
		assert.Equal(t, PhasePlaying, snap.Phase)
		assert.True(t, snap.Standings[0].Winner)
		assert.True(t, snap.Standings[1].Current)
		assert.False(t, snap.Standings[1].Winner)
		assert.True(t, snap.Standings[2].Winner)
	})
}

func TestPlayerRendering(t *testing.T) {
	assert.Equal(t, "@alice", alice.Mention())
	assert.Equal(t, "Bob", bob.Mention())
	assert.Equal(t, "Alice (alice)", alice.Label())
	assert.Equal(t, "Bob: 0", bob.String())
}
