package game

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/checkers/move"
)

func (g *Game) startPlayback(moves []*move.Move) {
	g.playback = true
	g.playbackMoves = moves
	g.playbackIndex = 0
	g.setPaused(false)
	log.Info().Int("moves", len(moves)).Msg("playback-started")
	g.playbackNext()
}

func (g *Game) stopPlayback() {
	g.playback = false
	g.playbackMoves = nil
	g.playbackIndex = 0
}

// playbackNext plays the next recorded move and schedules the one after.
// The mover is whoever owns the piece on the start square.
func (g *Game) playbackNext() {
	if !g.playback || g.paused {
		return
	}
	if g.playbackIndex >= len(g.playbackMoves) {
		log.Info().Int("moves", len(g.history)).Msg("playback-finished")
		g.stopPlayback()
		g.setPaused(true)
		return
	}
	m := g.playbackMoves[g.playbackIndex]
	c, ok := g.board.SquareAt(m.Start()).PieceColor()
	if !ok {
		g.playbackFailed(fmt.Errorf("no piece at %v", m.Start()))
		return
	}
	if err := g.executeMove(c, m, nil); err != nil {
		g.playbackFailed(err)
		return
	}
	g.playbackIndex++
	g.after(g.playbackDelay, g.playbackNext)
}

func (g *Game) playbackFailed(err error) {
	n := g.playbackIndex + 1
	log.Error().Err(err).Int("move-number", n).Str("move", g.playbackMoves[g.playbackIndex].String()).
		Str("board", g.board.Hash()).Msg("playback-failed")
	g.alert(fmt.Sprintf("Error replaying game at move %d: %v", n, err))
	g.stopPlayback()
	g.setPaused(true)
}
