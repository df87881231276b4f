package automatic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/config"
	"github.com/domino14/checkers/game"
	"github.com/domino14/checkers/stats"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int

	ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")
)

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

// Archiver stores finished games. *gamestore.Store is one.
type Archiver interface {
	Save(ctx context.Context, label string, data []byte) (string, error)
}

// Options for a batch of games. Zero values are taken from the config.
type Options struct {
	NumGames      int
	Threads       int
	BlackStrategy string
	RedStrategy   string
	// LogFile receives a CSV line per move. Empty means no log.
	LogFile string
	// Seeds decide the random openings; they are reused in turn if there
	// are fewer than games.
	Seeds   [][32]byte
	Archive Archiver
}

// Summary of a batch, from black's point of view.
type Summary struct {
	BlackStrategy string
	RedStrategy   string
	Black         stats.Record
	Lengths       []float64
	ByState       map[game.State]int
	Archived      int
}

func (s *Summary) add(r *Result) {
	switch {
	case r.Draw:
		s.Black.Draws++
	case r.Winner == board.Black:
		s.Black.Wins++
	default:
		s.Black.Losses++
	}
	s.Lengths = append(s.Lengths, float64(r.Plies))
	s.ByState[r.State]++
}

func (s *Summary) String() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Games played: %d\n", s.Black.Games())
	fmt.Fprintf(&b, "%v (black) vs %v (red)\n", s.BlackStrategy, s.RedStrategy)
	fmt.Fprintf(&b, "Black: %v\n", s.Black)
	lo, hi := s.Black.Interval(95)
	fmt.Fprintf(&b, "Black score 95%% interval: [%.3f, %.3f]\n", lo, hi)
	if s.Black.Significant(95) {
		b.WriteString("The difference is significant at 95%.\n")
	}
	states := make([]game.State, 0, len(s.ByState))
	for st := range s.ByState {
		states = append(states, st)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
	for _, st := range states {
		fmt.Fprintf(&b, "%v: %d\n", st, s.ByState[st])
	}
	l := stats.SummarizeLengths(s.Lengths)
	fmt.Fprintf(&b, "Plies: mean %.2f, stdev %.2f, median %.0f, 90th percentile %.0f\n",
		l.Mean, l.Stdev, l.Median, l.P90)
	if len(s.Lengths) > 1 {
		b.WriteString("Game length histogram:\n")
		if err := histogram.Fprint(&b, histogram.Hist(10, s.Lengths), histogram.Linear(40)); err != nil {
			log.Err(err).Msg("histogram-failed")
		}
	}
	if s.Archived > 0 {
		fmt.Fprintf(&b, "Archived: %d\n", s.Archived)
	}
	return b.String()
}

// PlayCompVComp plays a batch of games and returns their summary. If ctx
// is cancelled the games finished so far are summarized and the error is
// returned alongside.
func PlayCompVComp(ctx context.Context, cfg *config.Config, opts Options) (*Summary, error) {
	if IsPlaying.Value() > 0 {
		return nil, ErrAlreadyPlaying
	}
	IsPlaying.Add(1)
	defer IsPlaying.Add(-1)

	if opts.Threads <= 0 {
		opts.Threads = cfg.GetInt(config.ConfigAutoplayThreads)
	}
	if opts.BlackStrategy == "" {
		opts.BlackStrategy = cfg.GetString(config.ConfigDefaultPlayerStrategy)
	}
	if opts.RedStrategy == "" {
		opts.RedStrategy = cfg.GetString(config.ConfigDefaultOpponentStrategy)
	}
	if len(opts.Seeds) == 0 {
		opts.Seeds = GenerateSeeds(opts.NumGames)
	}

	var out io.Writer = io.Discard
	if opts.LogFile != "" {
		f, err := os.Create(opts.LogFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		out = f
	}

	logChan := make(chan string, 100)
	results := make(chan *Result, 100)
	runners := make([]*GameRunner, opts.Threads)
	for i := range runners {
		r, err := NewGameRunner(logChan, cfg, opts.BlackStrategy, opts.RedStrategy)
		if err != nil {
			return nil, err
		}
		runners[i] = r
	}
	log.Info().Int("games", opts.NumGames).Int("threads", opts.Threads).
		Str("black", opts.BlackStrategy).Str("red", opts.RedStrategy).Msg("starting-autoplay")
	CVCCounter.Set(0)

	writer := errgroup.Group{}
	writer.Go(func() error {
		var werr error
		if _, err := io.WriteString(out, logHeader); err != nil {
			werr = err
		}
		for msg := range logChan {
			if werr != nil {
				continue
			}
			if _, err := io.WriteString(out, msg); err != nil {
				werr = err
			}
		}
		return werr
	})

	summary := &Summary{BlackStrategy: opts.BlackStrategy, RedStrategy: opts.RedStrategy,
		ByState: map[game.State]int{}}
	var archiveErr error
	var collected sync.WaitGroup
	collected.Add(1)
	go func() {
		defer collected.Done()
		for res := range results {
			summary.add(res)
			if opts.Archive == nil || archiveErr != nil {
				continue
			}
			data, err := json.Marshal(res.File)
			if err == nil {
				_, err = opts.Archive.Save(ctx, res.GameID, data)
			}
			if err != nil {
				log.Err(err).Str("game", res.GameID).Msg("archive-failed")
				archiveErr = err
				continue
			}
			summary.Archived++
		}
	}()

	jobs := make(chan int, 100)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < opts.NumGames; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				log.Info().Msg("Got stop signal, exiting soon...")
				return gctx.Err()
			}
		}
		return nil
	})
	for _, r := range runners {
		r := r
		g.Go(func() error {
			for i := range jobs {
				res, err := r.PlayGame(gctx, fmt.Sprintf("game-%d", i+1), opts.Seeds[i%len(opts.Seeds)])
				if err != nil {
					return err
				}
				CVCCounter.Add(1)
				results <- res
			}
			return nil
		})
	}

	err := g.Wait()
	close(logChan)
	close(results)
	collected.Wait()
	if werr := writer.Wait(); werr != nil && err == nil {
		err = fmt.Errorf("writing log: %w", werr)
	}
	if archiveErr != nil && err == nil {
		err = fmt.Errorf("archiving: %w", archiveErr)
	}
	log.Info().Int("games", summary.Black.Games()).Msg("autoplay-finished")
	return summary, err
}
