// Package bot serves evaluations over NATS request/reply, and has the
// client that asks for them.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/checkers/config"
	"github.com/domino14/checkers/evaluator"
	"github.com/domino14/checkers/strategy"
)

type Bot struct {
	config  *config.Config
	ev      *evaluator.Evaluator
	weights *strategy.Weights
	timeout time.Duration
}

func NewBot(cfg *config.Config) (*Bot, error) {
	w, err := strategy.LoadWeights(cfg)
	if err != nil {
		return nil, err
	}
	return &Bot{
		config:  cfg,
		ev:      evaluator.New(cfg),
		weights: w,
		timeout: cfg.GetDuration(config.ConfigBotTimeout),
	}, nil
}

func errorResponse(message string, err error) *EvaluationResponse {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	}
	return &EvaluationResponse{Error: msg}
}

func (bot *Bot) request(req *EvaluationRequest) (evaluator.Request, error) {
	if req.Board == nil {
		return evaluator.Request{}, errors.New("no board")
	}
	if !req.Player.Valid() {
		return evaluator.Request{}, fmt.Errorf("bad player %d", req.Player)
	}
	for _, s := range []string{req.Strategy, req.OpponentStrategy} {
		if s != "" && !lo.Contains(strategy.Names, s) {
			return evaluator.Request{}, fmt.Errorf("unknown strategy %q", s)
		}
	}
	if req.DebugFocusSquare != nil && !req.DebugFocusSquare.Valid() {
		return evaluator.Request{}, fmt.Errorf("bad focus square %v", *req.DebugFocusSquare)
	}
	er := evaluator.Request{
		Board:            req.Board,
		Player:           req.Player,
		Strategy:         strategy.New(req.Strategy, bot.weights),
		MaxLookahead:     req.MaxLookahead,
		DebugFocusSquare: req.DebugFocusSquare,
	}
	if req.OpponentStrategy != "" {
		er.OpponentStrategy = strategy.New(req.OpponentStrategy, bot.weights)
	}
	return er, nil
}

// Evaluate answers one request. Failures are reported in the response.
func (bot *Bot) Evaluate(ctx context.Context, req *EvaluationRequest) *EvaluationResponse {
	er, err := bot.request(req)
	if err != nil {
		return errorResponse("Bad request", err)
	}
	if bot.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, bot.timeout)
		defer cancel()
	}
	if req.Draw {
		accept, err := bot.ev.EvaluateDraw(ctx, er)
		if err != nil {
			return errorResponse("Could not evaluate draw", err)
		}
		return &EvaluationResponse{AcceptDraw: accept}
	}
	resp, err := bot.ev.Evaluate(ctx, er, nil)
	if errors.Is(err, evaluator.ErrNoMoves) {
		return &EvaluationResponse{NoMoves: true}
	}
	if err != nil {
		return errorResponse("Could not evaluate", err)
	}
	log.Info().Str("move", resp.Move.ShortDescription()).Float64("score", resp.Score).Msg("generated-move")
	return &EvaluationResponse{
		Move:                  resp.Move,
		ProjectedOpponentMove: resp.ProjectedOpponentMove,
		Score:                 resp.Score,
		Explanation:           resp.Explanation,
	}
}

// Handle decodes a request and encodes the response.
func (bot *Bot) Handle(ctx context.Context, data []byte) []byte {
	var resp *EvaluationResponse
	var req EvaluationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		resp = errorResponse("Could not parse request", err)
	} else {
		resp = bot.Evaluate(ctx, &req)
	}
	out, err := json.Marshal(resp)
	if err != nil {
		// Should never happen, ideally, but we need to do something sensible here.
		log.Err(err).Msg("marshal-response")
		out, _ = json.Marshal(errorResponse("Could not encode response", err))
	}
	return out
}

// Main answers requests on channel until ctx is done.
func Main(ctx context.Context, channel string, bot *Bot) error {
	nc, err := nats.Connect(bot.config.GetString(config.ConfigNatsURL))
	if err != nil {
		return fmt.Errorf("connecting to nats: %w", err)
	}
	_, err = nc.Subscribe(channel, func(m *nats.Msg) {
		log.Info().Int("bytes", len(m.Data)).Msg("received-request")
		if err := m.Respond(bot.Handle(ctx, m.Data)); err != nil {
			log.Err(err).Msg("respond-failed")
		}
	})
	if err != nil {
		nc.Close()
		return err
	}
	if err := nc.Flush(); err != nil {
		nc.Close()
		return err
	}
	if err := nc.LastError(); err != nil {
		nc.Close()
		return err
	}
	log.Info().Str("channel", channel).Msg("listening")
	<-ctx.Done()
	log.Info().Msg("draining-connection")
	return nc.Drain()
}
