// Command lanesim plays matches headlessly against the enemy director and
// prints the results.
package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"lanewar/server/config"
	"lanewar/server/logging"
	"lanewar/server/sim"
	"lanewar/shared/protocol"
)

func main() {
	fs := config.Flags()
	fs.String("policy", "rush", "player policy: idle|rush|eco|mirror")
	fs.Int("matches", 1, "number of matches to play")
	fs.Int("max-ticks", 20000, "tick limit per match (0 = none)")
	fs.Float64("speed", 1.0, "speed multiplier")
	fs.Bool("single-strike", false, "disable the fallback base strike")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	dir, _ := fs.GetString("config-dir")
	cfg, err := config.Load(dir, fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Pretty)

	policyName, _ := fs.GetString("policy")
	matches, _ := fs.GetInt("matches")
	maxTicks, _ := fs.GetInt("max-ticks")
	speed, _ := fs.GetFloat64("speed")
	if single, _ := fs.GetBool("single-strike"); single {
		cfg.Combat.DoubleBaseStrike = false
	}

	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "match\tseed\twinner\tticks\tplayer hp\tenemy hp\tspawned\tlost\tkilled\tupgrades")
	wins := 0
	for i := 0; i < matches; i++ {
		p, err := sim.ParsePolicy(policyName)
		if err != nil {
			log.Fatal().Err(err).Msg("policy")
		}
		s := sim.New(cfg.SimConfig(), rand.New(rand.NewSource(seed+int64(i))), protocol.Sequence())
		if err := s.SetSpeed(speed); err != nil {
			log.Fatal().Err(err).Float64("speed", speed).Msg("speed")
		}
		out := sim.Run(s, p, maxTicks, nil)
		if out == sim.PlayerWon {
			wins++
		}
		st := s.Stats()
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			i+1, seed+int64(i), out, s.Tick(), s.PlayerBase.Health, s.EnemyBase.Health,
			st.UnitsSpawned, st.UnitsLost, st.EnemiesKilled, st.Upgrades)
		log.Debug().Int("match", i+1).Str("winner", out.String()).Int("ticks", s.Tick()).Msg("match finished")
	}
	_ = tw.Flush()
	log.Info().Str("policy", policyName).Int("matches", matches).Int("wins", wins).Msg("done")
}
