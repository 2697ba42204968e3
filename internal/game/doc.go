// Package game implements the Pig dice game rules for a single chat.
//
// The main type is Session, which is always in exactly one of two phases:
// a Lobby, where players gather before the game starts, or Playing, where a
// fixed turn order has been drawn and players roll the die in turn.
//
// # Basic Usage
//
//	s := game.NewSession()
//	_ = s.Join(game.Player{ID: 1, Name: "Alice"}, false)
//	_ = s.Join(game.Player{ID: 2, Name: "Bob"}, false)
//	first, _ := s.Start(randutil.New(42))
//	res, err := s.Roll(first.ID, 4)
//
// # Rules
//
// On their turn a player rolls as often as they like. Every face other than
// BustFace is added to the turn score. Rolling BustFace forfeits the turn
// score and passes the die. Banking adds the turn score to the player's total
// and passes the die. The first player whose total reaches WinScore finishes
// the round; the caller is expected to Reset the session afterwards.
//
// # Deterministic Testing
//
// The only randomness is the turn order drawn by Start. Pass a seeded source
// (see internal/randutil) to get reproducible orders:
//
//	s.Start(randutil.New(7))
//
// # Architecture
//
// Session does the phase bookkeeping and delegates scoring to the pure
// methods on Playing (Roll, Bank, Leave), which return a new Playing value and
// never touch the receiver. A failed operation therefore leaves the session
// exactly as it was.
package game
