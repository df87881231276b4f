package strategy

import (
	"fmt"

	"github.com/domino14/checkers/board"
)

// MaxPenetration is the penetration of twelve pieces packed into the three
// rows nearest the king row without being crowned.
var MaxPenetration = maxPenetration(board.PiecesPerSide)

func maxPenetration(n int) float64 {
	row7 := min(n, 4)
	row6 := max(0, min(n-4, 4))
	row5 := max(0, min(n-8, 4))
	return float64(row7) + float64(row6)*6/7 + float64(row5)*5/7
}

// ScoreComponents are the weighted parts of a future's score. Add and
// Multiply act on the numeric parts only; Won and Lost are sticky.
type ScoreComponents struct {
	Piece                     float64 `json:"piece"`
	King                      float64 `json:"king"`
	HomeRow                   float64 `json:"homeRow"`
	Penetration               float64 `json:"penetration"`
	Won                       bool    `json:"won"`
	Lost                      bool    `json:"lost"`
	FrozenPieces              float64 `json:"frozenPieces"`
	DistanceToTarget          float64 `json:"distanceToTarget"`
	ProximityToKingSquare     float64 `json:"proximityToKingSquare"`
	PinnedDownPieces          float64 `json:"pinnedDownPieces"`
	PiecesWithAccessToKingRow float64 `json:"piecesWithAccessToKingRow"`
	Certainty                 float64 `json:"certainty"`
}

func (sc *ScoreComponents) Add(o ScoreComponents) {
	sc.Piece += o.Piece
	sc.King += o.King
	sc.HomeRow += o.HomeRow
	sc.Penetration += o.Penetration
	sc.FrozenPieces += o.FrozenPieces
	sc.DistanceToTarget += o.DistanceToTarget
	sc.ProximityToKingSquare += o.ProximityToKingSquare
	sc.PinnedDownPieces += o.PinnedDownPieces
	sc.PiecesWithAccessToKingRow += o.PiecesWithAccessToKingRow
	sc.Certainty += o.Certainty
	sc.Won = sc.Won || o.Won
	sc.Lost = sc.Lost || o.Lost
}

func (sc *ScoreComponents) Multiply(x float64) {
	sc.Piece *= x
	sc.King *= x
	sc.HomeRow *= x
	sc.Penetration *= x
	sc.FrozenPieces *= x
	sc.DistanceToTarget *= x
	sc.ProximityToKingSquare *= x
	sc.PinnedDownPieces *= x
	sc.PiecesWithAccessToKingRow *= x
	sc.Certainty *= x
}

func (sc ScoreComponents) String() string {
	return fmt.Sprintf("piece=%.3f king=%.3f homeRow=%.3f penetration=%.3f "+
		"pinned=%.3f access=%.3f proximity=%.3f d2t=%.3f won=%v lost=%v",
		sc.Piece, sc.King, sc.HomeRow, sc.Penetration, sc.PinnedDownPieces,
		sc.PiecesWithAccessToKingRow, sc.ProximityToKingSquare, sc.DistanceToTarget,
		sc.Won, sc.Lost)
}

// kingWeight grows as we fall behind on pieces. Late in the game a king is
// worth more than the imminent opponent king it would otherwise cancel.
func kingWeight(c board.Color, pre *Assessment) float64 {
	my := pre.My(c).Pieces
	if my == 0 {
		return 1
	}
	return float64(pre.Opponent(c).Pieces) / float64(my)
}

func homeRowWeight(my, opp *BoardStats) float64 {
	if my.PiecesOnHomeRow == 4 {
		return 1
	}
	if opp.Pieces == opp.Kings {
		return 0
	}
	return float64(opp.NonKings()) / float64(opp.Pieces)
}

// scoreDelta scores one ply of a line from c's point of view.
func scoreDelta(w *Weights, c board.Color, post *Assessment, d Disposition,
	myKingWeight float64) ScoreComponents {

	my, opp := post.My(c), post.Opponent(c)
	sc := ScoreComponents{
		Piece: float64(d.PiecesCaptured - d.PiecesLost),
		King:  float64(d.KingsMade-d.OpponentKingsMade) * myKingWeight,
		HomeRow: float64(my.PiecesOnHomeRow)*homeRowWeight(my, opp) -
			float64(opp.PiecesOnHomeRow)*homeRowWeight(opp, my),
		Penetration:               my.PenetrationRatio() - opp.PenetrationRatio()*w.OpponentPenetration,
		PinnedDownPieces:          opp.PinnedDownPiecesRatio() - my.PinnedDownPiecesRatio(),
		PiecesWithAccessToKingRow: my.PiecesWithAccessToKingRowRatio() - opp.PiecesWithAccessToKingRowRatio(),
		ProximityToKingSquare:     my.ProximityToKingSquare,
		Won:                       opp.Pieces == 0 || d.NoOpponentMoves,
		Lost:                      my.Pieces == 0 || d.NoMoves,
	}
	if !sc.Won && !sc.Lost {
		// Lost() counts frozen pieces, which only means something for the
		// side about to move.
		if post.NextMover == c.Opponent() {
			sc.Won = opp.Lost()
		} else {
			sc.Lost = my.Lost()
		}
	}
	return sc
}
