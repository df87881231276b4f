// Command autoplay plays the engine against itself and prints a summary.
//
//	autoplay --games=200 --black=Strategy004 --red=Strategy005 --save-seeds=seeds.txt
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/domino14/checkers/automatic"
	"github.com/domino14/checkers/config"
	"github.com/domino14/checkers/gamestore"
	"github.com/domino14/checkers/strategy"
)

const (
	flagGames     = "games"
	flagBlack     = "black"
	flagRed       = "red"
	flagSeeds     = "seeds"
	flagSaveSeeds = "save-seeds"
	flagAnalyze   = "analyze"
)

func autoplayFlags(fs *pflag.FlagSet) {
	fs.Int(flagGames, 100, "number of games to play")
	fs.String(flagBlack, "", "strategy for black (default: default-player-strategy)")
	fs.String(flagRed, "", "strategy for red (default: default-opponent-strategy)")
	fs.String(flagSeeds, "", "file of game seeds to replay")
	fs.String(flagSaveSeeds, "", "write the seeds used to this file")
	fs.Bool(flagAnalyze, false, "analyze the log file after playing")
}

func main() {
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:], autoplayFlags); err != nil {
		log.Fatal().Err(err).Msg("bad-arguments")
	}
	cfg.AdjustRelativePaths(filepath.Dir(ex))
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	strategy.GlobalStatsCache.Reset(cfg.GetFloat64(config.ConfigStatsCacheMemFraction))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := automatic.Options{
		NumGames:      cfg.GetInt(flagGames),
		BlackStrategy: cfg.GetString(flagBlack),
		RedStrategy:   cfg.GetString(flagRed),
		LogFile:       cfg.GetString(config.ConfigAutoplayLogfile),
	}
	if opts.NumGames <= 0 {
		opts.NumGames = 100
	}
	if f := cfg.GetString(flagSeeds); f != "" {
		if opts.Seeds, err = automatic.LoadSeeds(f); err != nil {
			log.Fatal().Err(err).Msg("could-not-load-seeds")
		}
	} else {
		opts.Seeds = automatic.GenerateSeeds(opts.NumGames)
	}
	if f := cfg.GetString(flagSaveSeeds); f != "" {
		if err := automatic.SaveSeeds(opts.Seeds, f); err != nil {
			log.Fatal().Err(err).Msg("could-not-save-seeds")
		}
	}
	if path := cfg.GetString(config.ConfigGameDBPath); path != "" {
		store, err := gamestore.Open(ctx, path)
		if err != nil {
			log.Fatal().Err(err).Msg("could-not-open-game-store")
		}
		defer store.Close()
		opts.Archive = store
	}

	summary, err := automatic.PlayCompVComp(ctx, cfg, opts)
	if summary != nil {
		fmt.Print(summary.String())
	}
	if err != nil {
		log.Err(err).Msg("autoplay-stopped")
	}
	if cfg.GetBool(flagAnalyze) && opts.LogFile != "" {
		analysis, err := automatic.AnalyzeLogFile(opts.LogFile)
		if err != nil {
			log.Fatal().Err(err).Msg("could-not-analyze-log")
		}
		fmt.Print(analysis)
	}
}
