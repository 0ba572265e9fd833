// Package sim owns the state of one match and advances it one tick at a time.
//
// A Simulation is not safe for concurrent use: one goroutine owns it and
// applies commands only between calls to Step.
package sim

import (
	"errors"
	"fmt"
	"math"
	"time"

	"lanewar/server/combat"
	"lanewar/server/economy"
	"lanewar/server/spawn"
	"lanewar/shared/game/types"
	"lanewar/shared/protocol"
)

var (
	ErrUnsupportedSpeed = errors.New("unsupported speed multiplier")
	ErrFinished         = errors.New("match is over")
)

type Config struct {
	TickInterval       time.Duration
	Speeds             []float64
	StartingGold       int
	BaseHealth         int
	SpawnCooldownTicks int
	GoldEveryTicks     int
	SpawnEveryTicks    int
	Rules              combat.Rules
}

func DefaultConfig() Config {
	return Config{
		TickInterval:    protocol.TickIntervalMs * time.Millisecond,
		Speeds:          []float64{1.0, 1.2, 1.5},
		StartingGold:    protocol.StartingGold,
		BaseHealth:      protocol.BaseHealth,
		GoldEveryTicks:  protocol.GoldEveryTicks,
		SpawnEveryTicks: protocol.SpawnEveryTicks,
		Rules:           combat.DefaultRules(),
	}
}

type Outcome int

const (
	Running Outcome = iota
	PlayerWon
	EnemyWon
)

func (o Outcome) String() string {
	switch o {
	case PlayerWon:
		return "player"
	case EnemyWon:
		return "enemy"
	default:
		return "running"
	}
}

// Stats accumulates per-match counters for the match record.
type Stats struct {
	UnitsSpawned  int
	EnemySpawned  int
	UnitsLost     int
	EnemiesKilled int
	Upgrades      int
	GoldAccrued   int
	GoldSpent     int
}

// StepResult describes one tick.
type StepResult struct {
	Tick         int
	Now          time.Duration
	Report       combat.Report
	EnemySpawned *combat.Unit
	Accrued      int
	Outcome      Outcome
}

type Simulation struct {
	cfg    Config
	engine *combat.Engine

	Players    *combat.Roster
	Enemies    *combat.Roster
	PlayerBase *combat.Base
	EnemyBase  *combat.Base

	wallet   *economy.Wallet
	spawner  *spawn.Controller
	director *spawn.Director

	tick    int
	clock   time.Duration
	speed   float64
	outcome Outcome
	stats   Stats
}

// New builds a match. ids may be nil to use process-unique ids.
func New(cfg Config, rng spawn.Source, ids spawn.IDFunc) *Simulation {
	if ids == nil {
		ids = protocol.NewID
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = protocol.TickIntervalMs * time.Millisecond
	}
	if len(cfg.Speeds) == 0 {
		cfg.Speeds = []float64{1.0}
	}
	s := &Simulation{
		cfg:        cfg,
		engine:     combat.NewEngine(cfg.Rules),
		Players:    combat.NewRoster(),
		Enemies:    combat.NewRoster(),
		PlayerBase: combat.NewBase(ids(), types.SidePlayer, protocol.PlayerBaseX, protocol.LaneY, cfg.BaseHealth),
		EnemyBase:  combat.NewBase(ids(), types.SideEnemy, protocol.EnemyBaseX, protocol.LaneY, cfg.BaseHealth),
		wallet:     economy.NewWallet(cfg.StartingGold),
		speed:      1.0,
	}
	s.spawner = spawn.NewController(s.wallet, s.Players, s.PlayerBase, cfg.SpawnCooldownTicks, ids)
	s.director = spawn.NewDirector(rng, s.Enemies, s.EnemyBase, ids)
	return s
}

func (s *Simulation) Config() Config          { return s.cfg }
func (s *Simulation) Wallet() *economy.Wallet { return s.wallet }
func (s *Simulation) Tick() int               { return s.tick }
func (s *Simulation) Clock() time.Duration    { return s.clock }
func (s *Simulation) Speed() float64          { return s.speed }
func (s *Simulation) Outcome() Outcome        { return s.outcome }
func (s *Simulation) Stats() Stats            { return s.stats }
func (s *Simulation) SpawnCooldown() int      { return s.spawner.Cooldown() }

// Interval is the real time between two ticks at the current speed.
func (s *Simulation) Interval() time.Duration {
	return time.Duration(float64(s.cfg.TickInterval) / s.speed)
}

// every scales a 1.0x tick cadence by the speed multiplier.
func (s *Simulation) every(ticks int) int {
	n := int(float64(ticks) / s.speed)
	if n < 1 {
		n = 1
	}
	return n
}

// Step advances the match by one tick: combat, gold, enemy spawn, outcome.
func (s *Simulation) Step() StepResult {
	s.tick++
	s.spawner.Tick()

	res := StepResult{Tick: s.tick, Now: s.clock}
	res.Report = s.engine.Tick(s.Players, s.Enemies, s.PlayerBase, s.EnemyBase, s.clock)
	s.stats.UnitsLost += res.Report.Kills(types.SidePlayer)
	s.stats.EnemiesKilled += res.Report.Kills(types.SideEnemy)

	if s.cfg.GoldEveryTicks > 0 && s.tick%s.every(s.cfg.GoldEveryTicks) == 0 {
		res.Accrued = s.wallet.Accrue()
		s.stats.GoldAccrued += res.Accrued
	}
	if s.cfg.SpawnEveryTicks > 0 && s.tick%s.every(s.cfg.SpawnEveryTicks) == 0 {
		res.EnemySpawned = s.director.Spawn(s.tick)
		s.stats.EnemySpawned++
	}

	switch {
	case s.PlayerBase.IsDestroyed():
		s.outcome = EnemyWon
	case s.EnemyBase.IsDestroyed():
		s.outcome = PlayerWon
	}
	res.Outcome = s.outcome

	s.clock += s.cfg.TickInterval
	return res
}

// Spawn buys a player unit.
func (s *Simulation) Spawn(a types.Archetype) (*combat.Unit, error) {
	if s.outcome != Running {
		return nil, &economy.RejectError{Code: "MATCH_OVER", Err: ErrFinished}
	}
	st, _ := types.Lookup(a)
	u, err := s.spawner.Spawn(a)
	if err != nil {
		return nil, err
	}
	s.stats.UnitsSpawned++
	s.stats.GoldSpent += st.Cost
	return u, nil
}

// Upgrade buys the next gold multiplier rung.
func (s *Simulation) Upgrade() error {
	if s.outcome != Running {
		return &economy.RejectError{Code: "MATCH_OVER", Err: ErrFinished}
	}
	next, _ := s.wallet.NextUpgrade()
	if err := s.wallet.Upgrade(); err != nil {
		return err
	}
	s.stats.Upgrades++
	s.stats.GoldSpent += next.Cost
	return nil
}

// SetSpeed changes the cadence multiplier. Only configured values are accepted.
func (s *Simulation) SetSpeed(m float64) error {
	for _, v := range s.cfg.Speeds {
		if math.Abs(v-m) < 1e-9 {
			s.speed = v
			return nil
		}
	}
	return &economy.RejectError{Code: "UNSUPPORTED_SPEED", Err: fmt.Errorf("%w: %g", ErrUnsupportedSpeed, m)}
}
