package game

import (
	"fmt"

	"github.com/domino14/checkers/board"
)

// Player is one side of a game. The JSON field names are those of saved
// game files.
type Player struct {
	Color    board.Color `json:"pieceType"`
	Strategy string      `json:"strategy"`
	Resigned bool        `json:"resigned"`
	// Human players move through Game.Move; the others are moved by the
	// engine.
	Human bool `json:"human,omitempty"`
}

func (p Player) String() string {
	kind := "ai"
	if p.Human {
		kind = "human"
	}
	return fmt.Sprintf("%v (%v, %v)", p.Color, kind, p.Strategy)
}

// State is where a game is in its lifecycle.
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateOverNoPieces
	StateOverNoMoves
	StateOverResigned
	StateOverDraw
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateInProgress:
		return "IN_PROGRESS"
	case StateOverNoPieces:
		return "GAME_OVER_NO_PIECES"
	case StateOverNoMoves:
		return "GAME_OVER_NO_MOVES"
	case StateOverResigned:
		return "GAME_OVER_RESIGNED"
	case StateOverDraw:
		return "GAME_OVER_DRAW"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) Finished() bool {
	return s >= StateOverNoPieces
}
