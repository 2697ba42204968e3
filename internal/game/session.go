package game

// Phase identifies which variant a session is in.
type Phase int

const (
	PhaseLobby Phase = iota
	PhasePlaying
)

func (p Phase) String() string {
	if p == PhasePlaying {
		return "playing"
	}
	return "lobby"
}

// Standing is one row of a Snapshot.
type Standing struct {
	Player  Player
	Current bool // holds the die
	Winner  bool // reached WinScore
}

// Snapshot is a read-only view of a session. In the lobby only names are
// meaningful and no flags are set.
type Snapshot struct {
	Phase     Phase
	Standings []Standing
}

// phase is implemented by *Lobby and *Playing only.
type phase interface {
	phase() Phase
}

func (*Lobby) phase() Phase   { return PhaseLobby }
func (*Playing) phase() Phase { return PhasePlaying }

// Lobby is the pre-game phase: a set of players keyed by ID. Join order is
// kept for listing only and has no influence on the turn order.
type Lobby struct {
	players map[UserID]Player
	order   []UserID
}

func newLobby() *Lobby {
	return &Lobby{players: make(map[UserID]Player)}
}

// Len returns the number of joined players.
func (l *Lobby) Len() int { return len(l.order) }

// Players returns the joined players in join order
func (l *Lobby) Players() []Player {
	out := make([]Player, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.players[id])
	}
	return out
}

func (l *Lobby) remove(id UserID) {
	delete(l.players, id)
	for i, v := range l.order {
		if v == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			return
		}
	}
}

// Session is the game state of one chat. It is not safe for concurrent use;
// callers serialize access (see internal/directory).
type Session struct {
	state   phase
	premium bool
}

// NewSession returns an empty lobby.
func NewSession() *Session {
	return &Session{state: newLobby()}
}

// Phase reports the current variant
func (s *Session) Phase() Phase { return s.state.phase() }

// Premium reports whether a premium player has joined since the last reset.
func (s *Session) Premium() bool { return s.premium }

// PlayerCount returns the number of players in either phase.
func (s *Session) PlayerCount() int {
	switch st := s.state.(type) {
	case *Lobby:
		return st.Len()
	case *Playing:
		return len(st.players)
	}
	return 0
}

// Playing returns a copy of the in-game state, if any.
func (s *Session) Playing() (Playing, bool) {
	st, ok := s.state.(*Playing)
	if !ok {
		return Playing{}, false
	}
	return st.clone(), true
}

// Join adds p with a zero score. premium marks the whole session as premium.
func (s *Session) Join(p Player, premium bool) error {
	switch st := s.state.(type) {
	case *Lobby:
		if _, exists := st.players[p.ID]; exists {
			return ruleError("join", p.ID, ErrAlreadyJoined)
		}
		p.Score = 0
		st.players[p.ID] = p
		st.order = append(st.order, p.ID)
		if premium {
			s.premium = true
		}
		return nil
	default:
		return ruleError("join", p.ID, ErrJoinAfterStart)
	}
}

// Start draws a random turn order from src and moves the session to Playing.
// It returns the first player to move.
func (s *Session) Start(src Source) (Player, error) {
	st, ok := s.state.(*Lobby)
	if !ok {
		return Player{}, ruleError("start", 0, ErrAlreadyPlaying)
	}
	if st.Len() < MinPlayers {
		return Player{}, ruleError("start", 0, ErrNotEnoughPlayers)
	}

	playing := &Playing{players: Shuffle(st.Players(), src)}
	s.state = playing
	return playing.Current(), nil
}

// Roll applies a die face rolled by id. On RoundFinished the session stays in
// Playing with the winning score so the caller can render the standings; it
// must call Reset before releasing the session.
func (s *Session) Roll(id UserID, face int) (RollResult, error) {
	st, ok := s.state.(*Playing)
	if !ok {
		return RollResult{}, ruleError("roll", id, ErrNotPlaying)
	}
	next, res, err := st.Roll(id, face)
	if err != nil {
		return RollResult{}, err
	}
	s.state = &next
	return res, nil
}

// Bank ends id's turn, keeping the turn score.
func (s *Session) Bank(id UserID) (BankResult, error) {
	st, ok := s.state.(*Playing)
	if !ok {
		return BankResult{}, ruleError("bank", id, ErrNotPlaying)
	}
	next, res, err := st.Bank(id)
	if err != nil {
		return BankResult{}, err
	}
	s.state = &next
	return res, nil
}

// Leave removes id from the session. A game left with fewer than MinPlayers
// is reset and the result is marked Disbanded.
func (s *Session) Leave(id UserID) (LeaveResult, error) {
	switch st := s.state.(type) {
	case *Lobby:
		p, ok := st.players[id]
		if !ok {
			return LeaveResult{}, ruleError("leave", id, ErrNotJoined)
		}
		st.remove(id)
		return LeaveResult{Player: p}, nil
	case *Playing:
		next, res, err := st.Leave(id)
		if err != nil {
			return LeaveResult{}, err
		}
		if res.Disbanded {
			s.Reset()
			return res, nil
		}
		s.state = &next
		return res, nil
	}
	return LeaveResult{}, ruleError("leave", id, ErrNotJoined)
}

// Reset discards all players and progress.
func (s *Session) Reset() {
	s.state = newLobby()
	s.premium = false
}

// Snapshot returns the current players, with scores when playing.
func (s *Session) Snapshot() Snapshot {
	switch st := s.state.(type) {
	case *Playing:
		return st.Snapshot()
	case *Lobby:
		players := st.Players()
		standings := make([]Standing, len(players))
		for i, p := range players {
			standings[i] = Standing{Player: p}
		}
		return Snapshot{Phase: PhaseLobby, Standings: standings}
	}
	return Snapshot{}
}
