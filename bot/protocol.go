package bot

import (
	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/move"
)

// EvaluationRequest asks the bot for a move for Player, or, with Draw set,
// whether Player accepts a draw.
type EvaluationRequest struct {
	Board            *board.Board `json:"board"`
	Player           board.Color  `json:"player"`
	Strategy         string       `json:"strategy"`
	OpponentStrategy string       `json:"opponentStrategy,omitempty"`
	MaxLookahead     *int         `json:"maxLookahead,omitempty"`
	Draw             bool         `json:"draw,omitempty"`
	// DebugFocusSquare limits the candidates to moves of the piece there.
	DebugFocusSquare *board.Location `json:"debugFocusSquare,omitempty"`
}

type EvaluationResponse struct {
	Move                  *move.Move `json:"move,omitempty"`
	ProjectedOpponentMove *move.Move `json:"projectedOpponentMove,omitempty"`
	Score                 float64    `json:"score"`
	Explanation           string     `json:"explanation,omitempty"`
	AcceptDraw            bool       `json:"acceptDraw,omitempty"`
	// NoMoves is set instead of Error when the player cannot move.
	NoMoves bool   `json:"noMoves,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LambdaEvent is the payload of the Lambda entry point. The response is
// also sent to ReplyChannel over NATS if it is set.
type LambdaEvent struct {
	Request      EvaluationRequest `json:"request"`
	GameID       string            `json:"gameID"`
	ReplyChannel string            `json:"replyChannel"`
}
