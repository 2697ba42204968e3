package game

import "fmt"

// Game constants
const (
	WinScore   = 100 // inclusive
	BustFace   = 1
	MinPlayers = 2
	MinFace    = 1
	MaxFace    = 6
)

// RollOutcome classifies the effect of a roll
type RollOutcome int

const (
	// TurnLost means the bust face came up; the turn score is forfeited and
	// the die passes to the next player.
	TurnLost RollOutcome = iota + 1
	// Continue means the face was added to the turn score and the same player
	// may roll again or bank.
	Continue
	// RoundFinished means the roller reached WinScore. The session must be
	// reset by the caller.
	RoundFinished
)

func (o RollOutcome) String() string {
	switch o {
	case TurnLost:
		return "turn_lost"
	case Continue:
		return "continue"
	case RoundFinished:
		return "round_finished"
	default:
		return fmt.Sprintf("RollOutcome(%d)", int(o))
	}
}

// RollResult describes a successful roll.
type RollResult struct {
	Outcome RollOutcome
	Face    int
	// Roller is the rolling player as of after the roll.
	Roller Player
	// TurnScore is the running unbanked total for Continue, the forfeited
	// amount for TurnLost and the amount banked for RoundFinished.
	TurnScore int
	// Next is the player to move after the roll.
	Next Player
	// Standings is only set for RoundFinished and lists the final scores.
	Standings Snapshot
}

// BankResult describes a successful bank
type BankResult struct {
	Banker Player // with the updated score
	Banked int
	Next   Player
}

// LeaveResult describes a player leaving a session
type LeaveResult struct {
	Player Player // as it was when leaving
	// Disbanded is set when too few players remain to continue playing.
	Disbanded bool
	// TurnPassed is set when the leaver held the die; Next is then the new
	// current player.
	TurnPassed bool
	Next       Player
}

// Playing is the in-game phase. Its methods never modify the receiver: they
// return the next state, so a failed call leaves the previous value valid.
type Playing struct {
	players   []Player
	turn      int
	turnScore int
}

// NewPlaying builds a Playing state from an explicit turn order.
func NewPlaying(players []Player, turn, turnScore int) (Playing, error) {
	if len(players) < MinPlayers {
		return Playing{}, ErrNotEnoughPlayers
	}
	if turn < 0 || turn >= len(players) {
		return Playing{}, fmt.Errorf("turn index %d out of range for %d players", turn, len(players))
	}
	if turnScore < 0 {
		return Playing{}, fmt.Errorf("negative turn score %d", turnScore)
	}
	seen := make(map[UserID]bool, len(players))
	for _, p := range players {
		if seen[p.ID] {
			return Playing{}, fmt.Errorf("duplicate player %d", p.ID)
		}
		seen[p.ID] = true
	}
	out := make([]Player, len(players))
	copy(out, players)
	return Playing{players: out, turn: turn, turnScore: turnScore}, nil
}

// Players returns the players in turn order
func (p Playing) Players() []Player {
	out := make([]Player, len(p.players))
	copy(out, p.players)
	return out
}

// Turn returns the index of the player holding the die.
func (p Playing) Turn() int { return p.turn }

// TurnScore returns the unbanked points of the current turn.
func (p Playing) TurnScore() int { return p.turnScore }

// Current returns the player holding the die.
func (p Playing) Current() Player { return p.players[p.turn] }

// Roll applies a die face rolled by id.
func (p Playing) Roll(id UserID, face int) (Playing, RollResult, error) {
	if err := p.checkTurn("roll", id); err != nil {
		return p, RollResult{}, err
	}
	if face < MinFace || face > MaxFace {
		return p, RollResult{}, ruleError("roll", id, ErrInvalidFace)
	}

	next := p.clone()
	if face == BustFace {
		forfeited := next.turnScore
		roller := next.Current()
		next = next.advance()
		return next, RollResult{
			Outcome:   TurnLost,
			Face:      face,
			Roller:    roller,
			TurnScore: forfeited,
			Next:      next.Current(),
		}, nil
	}

	next.turnScore += face
	current := &next.players[next.turn]
	if current.Score+next.turnScore >= WinScore {
		banked := next.turnScore
		current.Score += banked
		next.turnScore = 0
		return next, RollResult{
			Outcome:   RoundFinished,
			Face:      face,
			Roller:    *current,
			TurnScore: banked,
			Next:      *current,
			Standings: next.Snapshot(),
		}, nil
	}

	return next, RollResult{
		Outcome:   Continue,
		Face:      face,
		Roller:    *current,
		TurnScore: next.turnScore,
		Next:      *current,
	}, nil
}

// Bank folds the turn score into the current player's total and passes the die.
func (p Playing) Bank(id UserID) (Playing, BankResult, error) {
	if err := p.checkTurn("bank", id); err != nil {
		return p, BankResult{}, err
	}

	next := p.clone()
	banked := next.turnScore
	next.players[next.turn].Score += banked
	banker := next.Current()
	next = next.advance()
	return next, BankResult{Banker: banker, Banked: banked, Next: next.Current()}, nil
}

// Leave removes id from the turn order. When fewer than MinPlayers would
// remain the result is Disbanded and the returned state must be discarded.
func (p Playing) Leave(id UserID) (Playing, LeaveResult, error) {
	idx := p.indexOf(id)
	if idx < 0 {
		return p, LeaveResult{}, ruleError("leave", id, ErrNotJoined)
	}

	res := LeaveResult{Player: p.players[idx]}
	if len(p.players)-1 < MinPlayers {
		res.Disbanded = true
		return Playing{}, res, nil
	}

	next := Playing{
		players:   make([]Player, 0, len(p.players)-1),
		turn:      p.turn,
		turnScore: p.turnScore,
	}
	next.players = append(next.players, p.players[:idx]...)
	next.players = append(next.players, p.players[idx+1:]...)

	switch {
	case idx < p.turn:
		next.turn--
	case idx == p.turn:
		next.turnScore = 0
		next.turn %= len(next.players)
		res.TurnPassed = true
		res.Next = next.Current()
	}
	return next, res, nil
}

// Snapshot returns the scores in turn order.
func (p Playing) Snapshot() Snapshot {
	standings := make([]Standing, len(p.players))
	for i, pl := range p.players {
		standings[i] = Standing{
			Player:  pl,
			Current: i == p.turn,
			Winner:  pl.Score >= WinScore,
		}
	}
	return Snapshot{Phase: PhasePlaying, Standings: standings}
}

func (p Playing) checkTurn(op string, id UserID) error {
	if p.players[p.turn].ID != id {
		return ruleError(op, id, ErrWrongTurn)
	}
	return nil
}

func (p Playing) indexOf(id UserID) int {
	for i, pl := range p.players {
		if pl.ID == id {
			return i
		}
	}
	return -1
}

func (p Playing) clone() Playing {
	players := make([]Player, len(p.players))
	copy(players, p.players)
	return Playing{players: players, turn: p.turn, turnScore: p.turnScore}
}

// advance passes the die; the receiver must already be a private copy.
func (p Playing) advance() Playing {
	p.turnScore = 0
	p.turn = (p.turn + 1) % len(p.players)
	return p
}
