package game

import (
	"errors"
	"fmt"
)

// Rule violations. They are expected, user-facing outcomes and never leave
// the session partially modified.
var (
	ErrAlreadyJoined    = errors.New("already joined")
	ErrJoinAfterStart   = errors.New("game already started, cannot join")
	ErrAlreadyPlaying   = errors.New("game already started")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrNotPlaying       = errors.New("game is not started")
	ErrWrongTurn        = errors.New("not your turn")
	ErrNotJoined        = errors.New("not joined")
	ErrInvalidFace      = errors.New("invalid die face")
)

// RuleError records which operation was rejected and for whom.
type RuleError struct {
	Op   string
	User UserID // zero when the operation is not tied to a player
	Err  error
}

func (e *RuleError) Error() string {
	if e.User == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s by %d: %v", e.Op, e.User, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

func ruleError(op string, user UserID, err error) error {
	return &RuleError{Op: op, User: user, Err: err}
}
