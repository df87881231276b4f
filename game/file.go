package game

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/move"
)

const FileVersion = "0.01"

var ErrMalformedGame = errors.New("malformed game file")

// File is a saved game. A snapshot holds the current position and whose
// turn it is; otherwise the game is its starting board (absent for the
// standard setup) and the moves played from it.
type File struct {
	Version             string       `json:"version"`
	Player              Player       `json:"player"`
	Opponent            *Player      `json:"opponent,omitempty"`
	Snapshot            bool         `json:"snapshot,omitempty"`
	Board               *board.Board `json:"board,omitempty"`
	Moves               []*move.Move `json:"moves,omitempty"`
	NextPlayerPieceType *board.Color `json:"nextPlayerPieceType,omitempty"`
}

// ParseFile decodes and checks a saved game. Files without an opponent
// get one playing the other color with the player's strategy.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedGame, err)
	}
	if !f.Player.Color.Valid() {
		return nil, fmt.Errorf("%w: bad player piece type %d", ErrMalformedGame, f.Player.Color)
	}
	if f.Version != FileVersion {
		log.Warn().Str("version", f.Version).Msg("unexpected-game-file-version")
	}
	if f.Opponent == nil {
		f.Opponent = &Player{Color: f.Player.Color.Opponent(), Strategy: f.Player.Strategy}
	}
	if f.Opponent.Color != f.Player.Color.Opponent() {
		return nil, fmt.Errorf("%w: both players are %v", ErrMalformedGame, f.Player.Color)
	}
	if f.NextPlayerPieceType != nil && !f.NextPlayerPieceType.Valid() {
		return nil, fmt.Errorf("%w: bad next piece type %d", ErrMalformedGame, *f.NextPlayerPieceType)
	}
	if f.Snapshot && len(f.Moves) > 0 {
		return nil, fmt.Errorf("%w: snapshot with moves", ErrMalformedGame)
	}
	if !f.Player.Human && !f.Opponent.Human {
		f.Player.Human = true
	}
	return &f, nil
}

// Save writes the game. A snapshot records only the current position.
func (g *Game) Save(snapshot bool) ([]byte, error) {
	g.lock()
	defer g.unlock()
	opp := g.opponent
	f := File{Version: FileVersion, Player: g.player, Opponent: &opp}
	if snapshot {
		f.Snapshot = true
		f.Board = g.board.Clone()
		next := g.nextMover
		f.NextPlayerPieceType = &next
	} else {
		if g.initialBoard != nil {
			f.Board = g.initialBoard.Clone()
			next := g.initialNext
			f.NextPlayerPieceType = &next
		}
		f.Moves = make([]*move.Move, len(g.history))
		for i, e := range g.history {
			f.Moves[i] = e.move
		}
	}
	return json.Marshal(f)
}

// Load replaces the game with a saved one. Recorded moves are played back
// with the playback delay; a game without moves is loaded paused. On error
// the game is left as it was.
func (g *Game) Load(data []byte) error {
	f, err := ParseFile(data)
	if err != nil {
		return err
	}
	g.lock()
	defer g.unlock()
	g.abort()
	g.stopPlayback()
	g.queue = nil
	g.history = nil
	g.projected = nil
	g.player = f.Player
	g.opponent = *f.Opponent
	g.nextMover = board.Black
	if f.NextPlayerPieceType != nil {
		g.nextMover = *f.NextPlayerPieceType
	}
	g.initialBoard = nil
	g.debugFocus = nil
	if f.Board != nil {
		g.board = f.Board.Clone()
		g.initialBoard = f.Board.Clone()
		g.initialNext = g.nextMover
	} else {
		g.board = board.NewStartingBoard(g.opponent.Color)
	}
	g.state = StateInProgress
	log.Info().Bool("snapshot", f.Snapshot).Int("moves", len(f.Moves)).Msg("game-loaded")
	g.emit(func(l Listener) { l.BoardInitialized() })
	if len(f.Moves) == 0 {
		g.setPaused(true)
		return nil
	}
	g.startPlayback(f.Moves)
	return nil
}
