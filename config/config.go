package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config keys. Each can also be set from the environment with the CHECKERS_
// prefix, e.g. CHECKERS_MAX_LOOKAHEAD=4.
const (
	ConfigDebug                   = "debug"
	ConfigMaxLookahead            = "max-lookahead"
	ConfigMaxLookaheadLimit       = "max-lookahead-limit"
	ConfigPlaybackDelay           = "playback-delay"
	ConfigAIMoveDelay             = "ai-move-delay"
	ConfigDefaultPlayerStrategy   = "default-player-strategy"
	ConfigDefaultOpponentStrategy = "default-opponent-strategy"
	ConfigStrategyParamsPath      = "strategy-params-path"
	ConfigStatsCacheMemFraction   = "stats-cache-mem-fraction"
	ConfigNatsURL                 = "nats-url"
	ConfigBotChannel              = "bot-channel"
	ConfigBotTimeout              = "bot-timeout"
	ConfigRemoteEngine            = "remote-engine"
	ConfigGameDBPath              = "game-db-path"
	ConfigAutoplayThreads         = "autoplay-threads"
	ConfigAutoplayLogfile         = "autoplay-logfile"
	ConfigAutoplayMaxMoves        = "autoplay-max-moves"
	ConfigAutoplayRandomPlies     = "autoplay-random-plies"
	ConfigConfigFile              = "config-file"
	ConfigCPUProfile              = "cpu-profile"
)

type Config struct {
	viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigMaxLookahead, 6)
	v.SetDefault(ConfigMaxLookaheadLimit, 10)
	v.SetDefault(ConfigPlaybackDelay, 250*time.Millisecond)
	v.SetDefault(ConfigAIMoveDelay, 100*time.Millisecond)
	v.SetDefault(ConfigDefaultPlayerStrategy, "Strategy004")
	v.SetDefault(ConfigDefaultOpponentStrategy, "Strategy005")
	v.SetDefault(ConfigStrategyParamsPath, "")
	v.SetDefault(ConfigStatsCacheMemFraction, 0.01)
	v.SetDefault(ConfigNatsURL, "nats://localhost:4222")
	v.SetDefault(ConfigBotChannel, "checkers.evaluate")
	v.SetDefault(ConfigBotTimeout, 30*time.Second)
	v.SetDefault(ConfigRemoteEngine, false)
	v.SetDefault(ConfigGameDBPath, "")
	v.SetDefault(ConfigAutoplayThreads, 4)
	v.SetDefault(ConfigAutoplayLogfile, "/tmp/checkers-autoplay.txt")
	v.SetDefault(ConfigAutoplayMaxMoves, 200)
	v.SetDefault(ConfigAutoplayRandomPlies, 2)
}

// DefaultConfig returns a config with every default set and nothing read
// from flags, files, or the environment. Tests use it.
func DefaultConfig() *Config {
	c := &Config{Viper: *viper.New()}
	setDefaults(&c.Viper)
	return c
}

// FlagSet registers the flags every binary accepts. Binaries with their own
// flags add them through the extra functions passed to Load.
func FlagSet(extra ...func(*pflag.FlagSet)) *pflag.FlagSet {
	fs := pflag.NewFlagSet("checkers", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging")
	fs.Int(ConfigMaxLookahead, 6, "default number of plies the engine looks ahead")
	fs.Int(ConfigMaxLookaheadLimit, 10, "largest lookahead a request may ask for")
	fs.Duration(ConfigPlaybackDelay, 250*time.Millisecond, "delay between moves when replaying a loaded game")
	fs.Duration(ConfigAIMoveDelay, 100*time.Millisecond, "delay between moves in AI vs AI mode")
	fs.String(ConfigDefaultPlayerStrategy, "Strategy004", "strategy for the human side when the engine plays it")
	fs.String(ConfigDefaultOpponentStrategy, "Strategy005", "strategy for the computer side")
	fs.String(ConfigStrategyParamsPath, "", "YAML file with strategy weights")
	fs.Float64(ConfigStatsCacheMemFraction, 0.01, "fraction of system memory for the board stats cache; 0 disables it")
	fs.String(ConfigNatsURL, "nats://localhost:4222", "NATS server")
	fs.String(ConfigBotChannel, "checkers.evaluate", "NATS subject for evaluation requests")
	fs.Duration(ConfigBotTimeout, 30*time.Second, "how long a remote evaluation may take")
	fs.Bool(ConfigRemoteEngine, false, "evaluate moves through the bot instead of in process")
	fs.String(ConfigGameDBPath, "", "sqlite file for archived games")
	fs.Int(ConfigAutoplayThreads, 4, "autoplay worker goroutines")
	fs.String(ConfigAutoplayLogfile, "/tmp/checkers-autoplay.txt", "per-move autoplay log")
	fs.Int(ConfigAutoplayMaxMoves, 200, "autoplay games reaching this many moves are drawn")
	fs.Int(ConfigAutoplayRandomPlies, 2, "random opening plies per autoplay game")
	fs.String(ConfigConfigFile, "", "optional config file")
	fs.String(ConfigCPUProfile, "", "write a CPU profile here")
	for _, fn := range extra {
		fn(fs)
	}
	return fs
}

// Load parses flags from args, then reads an optional config file and the
// environment. Flags win over the environment, the environment over the
// file, and the file over defaults.
func (c *Config) Load(args []string, extra ...func(*pflag.FlagSet)) error {
	c.Viper = *viper.New()
	setDefaults(&c.Viper)
	c.SetEnvPrefix("checkers")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	fs := FlagSet(extra...)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	if f := c.GetString(ConfigConfigFile); f != "" {
		c.SetConfigFile(f)
		if err := c.MergeInConfig(); err != nil {
			return fmt.Errorf("reading config file %v: %w", f, err)
		}
	}
	return nil
}

// AdjustRelativePaths makes paths starting with ./ relative to basePath,
// usually the directory of the executable.
func (c *Config) AdjustRelativePaths(basePath string) {
	for _, key := range []string{ConfigStrategyParamsPath, ConfigGameDBPath} {
		p := c.GetString(key)
		if strings.HasPrefix(p, "./") {
			c.Set(key, filepath.Join(basePath, p))
		}
	}
}
