package game

import (
	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/move"
)

// Listener receives game events. Events are delivered without the game
// lock held, so a listener may call back into the game. Progress is
// delivered from the goroutine running the engine.
type Listener interface {
	BoardInitialized()
	MoveFinished(m *move.Move, mover board.Color)
	MoveUndone(m *move.Move, mover board.Color)
	// GameFinished is called with a nil loser for a draw.
	GameFinished(loser *Player, state State)
	Progress(fraction float64)
	PausedChanged(paused bool)
	Alert(message string)
}

// NopListener ignores every event. Embed it to handle only some.
type NopListener struct{}

func (NopListener) BoardInitialized()                   {}
func (NopListener) MoveFinished(*move.Move, board.Color) {}
func (NopListener) MoveUndone(*move.Move, board.Color)   {}
func (NopListener) GameFinished(*Player, State)          {}
func (NopListener) Progress(float64)                     {}
func (NopListener) PausedChanged(bool)                   {}
func (NopListener) Alert(string)                         {}

var _ Listener = NopListener{}
