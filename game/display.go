package game

import (
	"fmt"
	"strings"
)

func addText(lines []string, row int, hpad int, text string) {
	if row >= len(lines) {
		return
	}
	lines[row] = lines[row] + strings.Repeat(" ", hpad) + text
}

// ToDisplayText renders the board with the players, the side to move and
// the last move alongside.
func (g *Game) ToDisplayText() string {
	g.lock()
	defer g.unlock()
	bts := strings.Split(g.board.ToDisplayText(), "\n")
	// the first line is empty, then the header and the top border
	const vpadding = 4
	const hpadding = 3

	for i, p := range []*Player{&g.player, &g.opponent} {
		marker := " "
		if g.state == StateInProgress && g.nextMover == p.Color {
			marker = "->"
		}
		resigned := ""
		if p.Resigned {
			resigned = " resigned"
		}
		addText(bts, vpadding+i, hpadding, fmt.Sprintf("%-2s %v%v", marker, p, resigned))
	}
	addText(bts, vpadding+3, hpadding, fmt.Sprintf("Move %d, %v", len(g.history)+1, g.state))
	if n := len(g.history); n > 0 {
		e := g.history[n-1]
		addText(bts, vpadding+4, hpadding, fmt.Sprintf("Last: %v %v", e.mover, e.move.ShortDescription()))
	}
	var flags []string
	if g.paused {
		flags = append(flags, "paused")
	}
	if g.aiVsAI {
		flags = append(flags, "ai-vs-ai")
	}
	if g.playback {
		flags = append(flags, fmt.Sprintf("playback %d/%d", g.playbackIndex, len(g.playbackMoves)))
	}
	if g.busy {
		flags = append(flags, "thinking")
	}
	if len(flags) > 0 {
		addText(bts, vpadding+5, hpadding, strings.Join(flags, ", "))
	}
	return strings.Join(bts, "\n")
}
