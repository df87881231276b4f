package strategy

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/domino14/checkers/cache"
	"github.com/domino14/checkers/config"
)

// ComponentWeights multiply the score components of one strategy.
type ComponentWeights struct {
	King          float64 `yaml:"king"`
	HomeRow       float64 `yaml:"home_row"`
	Penetration   float64 `yaml:"penetration"`
	PinnedDown    float64 `yaml:"pinned_down"`
	KingRowAccess float64 `yaml:"king_row_access"`
	Proximity     float64 `yaml:"proximity"`
}

// Weights holds every tunable constant of the built-in strategies. The zero
// value is not useful; start from DefaultWeights.
type Weights struct {
	Strategy001 ComponentWeights `yaml:"strategy001"`
	Strategy002 ComponentWeights `yaml:"strategy002"`
	Strategy003 ComponentWeights `yaml:"strategy003"`
	Strategy004 ComponentWeights `yaml:"strategy004"`

	// OpponentPenetration discounts the opponent's penetration so it does
	// not cancel out our own drive toward the king row.
	OpponentPenetration float64 `yaml:"opponent_penetration"`
	// SeekDistance weights the closeness of kings to their target in
	// seek-and-destroy mode.
	SeekDistance float64 `yaml:"seek_distance"`
	// SeekCertaintyStep is the certainty lost per opponent option, up to
	// SeekCertaintyMaxMoves options.
	SeekCertaintyStep     float64 `yaml:"seek_certainty_step"`
	SeekCertaintyMaxMoves int     `yaml:"seek_certainty_max_moves"`
	WinScore              float64 `yaml:"win_score"`
}

var ErrBadWeightsKey = errors.New("bad weights cache key")

func DefaultWeights() *Weights {
	return &Weights{
		Strategy001: ComponentWeights{King: 0.9},
		Strategy002: ComponentWeights{King: 0.9, HomeRow: 0.25, Penetration: 1},
		Strategy003: ComponentWeights{King: 1.5, HomeRow: 0.2, Penetration: 1},
		Strategy004: ComponentWeights{King: 1.5, HomeRow: 0.2, Penetration: 1,
			PinnedDown: 0.1, KingRowAccess: 1, Proximity: 0.66},
		OpponentPenetration:   0.7,
		SeekDistance:          1,
		SeekCertaintyStep:     0.1,
		SeekCertaintyMaxMoves: 5,
		WinScore:              1000,
	}
}

// ReadWeights reads a YAML weights file. Keys missing from the file keep
// their default values.
func ReadWeights(path string) (*Weights, error) {
	bts, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	w := DefaultWeights()
	if err := yaml.Unmarshal(bts, w); err != nil {
		return nil, fmt.Errorf("parsing weights %v: %w", path, err)
	}
	return w, nil
}

// WeightsCacheLoadFunc loads a weights file into the object cache. The key
// looks like weights:filename.
func WeightsCacheLoadFunc(cfg *config.Config, key string) (any, error) {
	fields := strings.SplitN(key, ":", 2)
	if fields[0] != "weights" || len(fields) != 2 {
		return nil, fmt.Errorf("%w: %v", ErrBadWeightsKey, key)
	}
	return ReadWeights(fields[1])
}

// LoadWeights returns the weights named by the strategy-params-path config
// key, or the defaults if it is empty.
func LoadWeights(cfg *config.Config) (*Weights, error) {
	path := cfg.GetString(config.ConfigStrategyParamsPath)
	if path == "" {
		return DefaultWeights(), nil
	}
	obj, err := cache.Load(cfg, "weights:"+path, WeightsCacheLoadFunc)
	if err != nil {
		return nil, err
	}
	return obj.(*Weights), nil
}
