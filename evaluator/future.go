package evaluator

import (
	"fmt"
	"strings"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/move"
	"github.com/domino14/checkers/movegen"
	"github.com/domino14/checkers/strategy"
)

// Future is a candidate move for one side, with the line the search
// projects after it: the opponent's best reply and then our own best
// future, until the game ends or the lookahead runs out.
type Future struct {
	s        *search
	player   side
	opponent side

	preMoveAssessment   *strategy.Assessment
	move                *move.Move
	postMoveAssessment  *strategy.Assessment
	postMoveDisposition strategy.Disposition

	postOpponentMoveAssessment *strategy.Assessment
	projectedOpponentMove      *move.Move
	// opponentNoMoves is set when the opponent's reply left us without a
	// move.
	opponentNoMoves bool
	nextFuture      *Future

	won        bool
	movesAhead int
	score      float64
	notes      string
	trace      bool
}

var _ strategy.Future = (*Future)(nil)

func (f *Future) Player() board.Color                     { return f.player.color }
func (f *Future) PreMoveAssessment() *strategy.Assessment { return f.preMoveAssessment }
func (f *Future) Trace() bool                             { return f.trace }
func (f *Future) Score() float64                          { return f.score }
func (f *Future) SetScore(s float64)                      { f.score = s }
func (f *Future) SetNotes(n string)                       { f.notes = n }

func (f *Future) Move() *move.Move                  { return f.move }
func (f *Future) ProjectedOpponentMove() *move.Move { return f.projectedOpponentMove }
func (f *Future) Next() *Future                     { return f.nextFuture }
func (f *Future) Notes() string                     { return f.notes }

// ForEachAssessment walks the projected line. Plies that were never
// searched, such as those after a win, are skipped.
func (f *Future) ForEachAssessment(fn func(pre, post *strategy.Assessment, d strategy.Disposition)) {
	c := f.player.color
	for cur := f; cur != nil; cur = cur.nextFuture {
		if cur.postMoveAssessment == nil {
			return
		}
		fn(cur.preMoveAssessment, cur.postMoveAssessment, cur.postMoveDisposition)
		if cur.postOpponentMoveAssessment == nil {
			return
		}
		d := strategy.CalculateDisposition(c, cur.postMoveAssessment, cur.postOpponentMoveAssessment)
		d.NoMoves = cur.opponentNoMoves
		fn(cur.postMoveAssessment, cur.postOpponentMoveAssessment, d)
	}
}

// evaluateMove plays the move on b, which the future owns, and projects
// the line after it.
func (f *Future) evaluateMove(task *MultiStepTask, b *board.Board) error {
	s := f.s
	if f.movesAhead >= s.maxLookahead {
		return fmt.Errorf("%w: %d plies", ErrLookaheadExhausted, f.movesAhead)
	}
	if _, err := movegen.Execute(b, f.move); err != nil {
		return err
	}
	f.movesAhead++
	f.postMoveAssessment = f.player.strategy.AssessBoard(b, f.opponent.color)
	f.postMoveDisposition = strategy.CalculateDisposition(f.player.color,
		f.preMoveAssessment, f.postMoveAssessment)
	f.won = f.postMoveAssessment.Opponent(f.player.color).Pieces == 0
	if !f.won {
		f.postMoveDisposition.NoOpponentMoves = !movegen.HasMoves(b, f.opponent.color)
		f.won = f.postMoveDisposition.NoOpponentMoves
	}
	task.stepCompleted()
	if f.won || f.movesAhead == s.maxLookahead {
		task.complete()
		return nil
	}

	oppFuture, err := s.evaluatePossibleMoves(b, newRecursiveTask(task), f.opponent,
		f.player, f.postMoveAssessment, f.movesAhead)
	if err != nil {
		return err
	}
	f.postOpponentMoveAssessment = oppFuture.postMoveAssessment
	f.projectedOpponentMove = oppFuture.move
	f.opponentNoMoves = oppFuture.postMoveDisposition.NoOpponentMoves
	if _, err := movegen.Execute(b, oppFuture.move); err != nil {
		return err
	}
	f.movesAhead++
	task.stepCompleted()
	if f.movesAhead >= s.maxLookahead || oppFuture.won {
		task.complete()
		return nil
	}

	next, err := s.bestFuture(task, b, f.player, f.opponent, f.movesAhead)
	if err != nil {
		return err
	}
	f.nextFuture = next
	task.complete()
	return nil
}

// String describes the line, one ply per row.
func (f *Future) String() string {
	var sb strings.Builder
	f.write(&sb, 0)
	return sb.String()
}

func (f *Future) write(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s%v %v: %v", indent, f.player.color, f.move.ShortDescription(),
		f.postMoveDisposition)
	if f.postMoveAssessment == nil {
		sb.WriteString(" (not searched)")
	}
	fmt.Fprintf(sb, " score=%.4f", f.score)
	if f.notes != "" {
		fmt.Fprintf(sb, " [%s]", f.notes)
	}
	sb.WriteString("\n")
	if f.projectedOpponentMove != nil {
		fmt.Fprintf(sb, "%s%v replies %v\n", indent, f.opponent.color,
			f.projectedOpponentMove.ShortDescription())
	}
	if f.nextFuture != nil {
		f.nextFuture.write(sb, depth+1)
	}
}
