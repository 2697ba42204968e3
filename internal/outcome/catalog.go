package outcome

import (
	"errors"
	"fmt"

	"github.com/lox/pigdice/internal/game"
)

const (
	crownMarker = "👑"
	diceMarker  = "🎲"
)

// Catalog holds the message texts. Fields ending in Fmt are fmt format strings.
type Catalog struct {
	Greeting       string
	Help           string
	Joined         string
	StartedFmt     string // first player mention
	TurnLost       string
	NextTurnFmt    string // player mention
	RunningFmt     string // banked, turn score, sum
	HoldFmt        string // new total, next player mention
	Left           string
	Disbanded      string
	NoPlayers      string
	PlayersHeader  string
	ScoresHeader   string
	ResetConfirm   string
	ResetYes       string
	ResetDone      string
	UnknownFailure string

	Reasons map[error]string
}

// DefaultCatalog returns the English texts.
func DefaultCatalog() Catalog {
	return Catalog{
		Greeting: "Add this bot to groups to enjoy the Pig (dice) game!",
		Help: "Pig dice game commands:\n" +
			"/join - join the next game\n" +
			"/play - start the game with everyone who joined\n" +
			"🎲 - send a die to roll on your turn\n" +
			"/hold - keep your turn points and pass the die\n" +
			"/leave - leave the game\n" +
			"/result - show players and scores\n" +
			"/reset - reset the game",
		Joined:         "You joined the game successfully!",
		StartedFmt:     "The game has just started. Turn: %s.",
		TurnLost:       "Oops! You lost your turn :(",
		NextTurnFmt:    "It's %s turn to roll the dice.",
		RunningFmt:     "%d + %d = %d",
		HoldFmt:        "Your total score is %d. Next turn: %s",
		Left:           "You left the game.",
		Disbanded:      "Everybody left :( Game is reset.",
		NoPlayers:      "No players!",
		PlayersHeader:  "Players:",
		ScoresHeader:   "Scores:",
		ResetConfirm:   "Are you sure?",
		ResetYes:       "Yes",
		ResetDone:      "Game is reset (players should join again).",
		UnknownFailure: "Something went wrong :(",
		Reasons: map[error]string{
			game.ErrAlreadyJoined:    "You have joined already, you can't do it again :)",
			game.ErrJoinAfterStart:   "Game is already started, you can join the next one :(",
			game.ErrAlreadyPlaying:   "Game is already started :(",
			game.ErrNotEnoughPlayers: "Not enough players joined yet :(",
			game.ErrNotPlaying:       "Game is not started yet :(",
			game.ErrWrongTurn:        "This is not your turn :(",
			game.ErrNotJoined:        "You are not joined the game so you can't leave :(",
		},
	}
}

// Reason returns the user-facing text for a rule violation.
func (c Catalog) Reason(err error) string {
	for target, text := range c.Reasons {
		if errors.Is(err, target) {
			return text
		}
	}
	return c.UnknownFailure
}

// Hints describe the context of a message for text rewriting.

func audienceHint(name string) string {
	return fmt.Sprintf("Audience name is %s.", name)
}

func joinedHint(name string) string {
	return fmt.Sprintf("The game is a Pig dice game and %s joined the game.", name)
}

func startedHint(name string) string {
	return fmt.Sprintf("The game is a Pig dice game. Game has just started. %s is the first player to roll the dice.", name)
}

func turnLostHint(name string, forfeited int) string {
	return fmt.Sprintf("%s lost the turn after rolling a \"one\" by the dice. "+
		"The game is a Pig dice game and the player lost the turn after adding %d by "+
		"the previous rolled dice results during the turn. "+
		"Say your opinion about the player's performance during the last turn and how lucky the player was.",
		name, forfeited)
}

func nextTurnHint(name string) string {
	return fmt.Sprintf("The game is a Pig dice game and now it's %s turn to roll the dice.", name)
}

func holdHint(name string, banked, total int) string {
	return fmt.Sprintf("The game is a Pig dice game. %s decided to hold their achieved points and pass the dice "+
		"to the next player. The player achieved %d points during the turn and now got %d points in total. "+
		"Tell your opinion about this decision.", name, banked, total)
}

func leftHint(name string, score int) string {
	return fmt.Sprintf("The game is a Pig dice game and %s left the game with %d points. Say your opinion.", name, score)
}

func resetConfirmHint(name string) string {
	return fmt.Sprintf("%s wants to reset the game.", name)
}

const (
	playersHint = "List of the players who joined the game provided. " +
		"Each row contains the name and username in the parenthesis."
	resultsHint = "List of the players in the game and their achieved points provided. " +
		"The game is a Pig dice game. The player with king emoji (if exists) is the winner, " +
		"say congratulations to the winner (if exists). The one with dice emoji (if exists) " +
		"is the current player who possesses the turn to roll the dice. " +
		"Say your opinion about the current state of the game."
	resetHint = "The game is a Pig dice game and it's reset."
)
