package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/checkers/config"
	"github.com/domino14/checkers/evaluator"
)

var ErrBot = errors.New("bot returned an error")

type requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// Client sends evaluations to a bot. It can stand in for the local
// evaluator as a game's engine.
type Client struct {
	nc       requester
	channel  string
	timeout  time.Duration
	attempts uint
}

func NewClient(cfg *config.Config) (*Client, error) {
	nc, err := nats.Connect(cfg.GetString(config.ConfigNatsURL))
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	return newClient(nc, cfg), nil
}

func newClient(nc requester, cfg *config.Config) *Client {
	return &Client{
		nc:       nc,
		channel:  cfg.GetString(config.ConfigBotChannel),
		timeout:  cfg.GetDuration(config.ConfigBotTimeout),
		attempts: 3,
	}
}

// Close closes the connection if the client opened one.
func (c *Client) Close() {
	if nc, ok := c.nc.(*nats.Conn); ok {
		nc.Close()
	}
}

func toWire(req evaluator.Request) *EvaluationRequest {
	wr := &EvaluationRequest{
		Board:            req.Board,
		Player:           req.Player,
		MaxLookahead:     req.MaxLookahead,
		DebugFocusSquare: req.DebugFocusSquare,
	}
	if req.Strategy != nil {
		wr.Strategy = req.Strategy.Name()
	}
	if req.OpponentStrategy != nil {
		wr.OpponentStrategy = req.OpponentStrategy.Name()
	}
	return wr
}

func (c *Client) send(ctx context.Context, req *EvaluationRequest) (*EvaluationResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var resp EvaluationResponse
	err = retry.Do(
		func() error {
			rctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			msg, err := c.nc.RequestWithContext(rctx, c.channel, data)
			if err != nil {
				return err
			}
			resp = EvaluationResponse{}
			if err := json.Unmarshal(msg.Data, &resp); err != nil {
				return retry.Unrecoverable(err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(100*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, rc *retry.Config) time.Duration {
			log.Err(err).Uint("n", n).Msg("bot-request-failed-try-again")
			return retry.BackOffDelay(n, err, rc)
		}),
	)
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %v", ErrBot, resp.Error)
	}
	return &resp, nil
}

func (c *Client) Evaluate(ctx context.Context, req evaluator.Request, progress func(float64)) (*evaluator.Response, error) {
	if progress != nil {
		progress(0)
	}
	resp, err := c.send(ctx, toWire(req))
	if err != nil {
		return nil, err
	}
	if resp.NoMoves {
		return nil, fmt.Errorf("%w for %v", evaluator.ErrNoMoves, req.Player)
	}
	if resp.Move == nil {
		return nil, fmt.Errorf("%w: no move in response", ErrBot)
	}
	if progress != nil {
		progress(1)
	}
	return &evaluator.Response{
		Move:                  resp.Move,
		ProjectedOpponentMove: resp.ProjectedOpponentMove,
		Score:                 resp.Score,
		Explanation:           resp.Explanation,
	}, nil
}

func (c *Client) EvaluateDraw(ctx context.Context, req evaluator.Request) (bool, error) {
	wr := toWire(req)
	wr.Draw = true
	resp, err := c.send(ctx, wr)
	if err != nil {
		return false, err
	}
	return resp.AcceptDraw, nil
}
