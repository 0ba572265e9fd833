package sim

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanewar/server/economy"
	"lanewar/shared/game/types"
	"lanewar/shared/protocol"
)

func newSim(t *testing.T, mutate func(*Config)) *Simulation {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg, rand.New(rand.NewSource(7)), protocol.Sequence())
}

func TestSpawnRejectedLeavesGold(t *testing.T) {
	s := newSim(t, func(c *Config) { c.StartingGold = 40 })

	u, err := s.Spawn(types.ArchetypeBasic)
	assert.Nil(t, u)
	assert.ErrorIs(t, err, economy.ErrInsufficientFunds)
	assert.Equal(t, 40, s.Wallet().Gold())
	assert.Zero(t, s.Players.Len())
	assert.Zero(t, s.Stats().UnitsSpawned)
}

func TestUpgradeLadderThroughSimulation(t *testing.T) {
	s := newSim(t, func(c *Config) { c.StartingGold = 1500 })
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Upgrade())
	}
	assert.Zero(t, s.Wallet().Gold())
	assert.Equal(t, 2.0, s.Wallet().Multiplier())
	assert.Equal(t, 5, s.Wallet().Level())
	assert.Equal(t, 1500, s.Stats().GoldSpent)
	assert.ErrorIs(t, s.Upgrade(), economy.ErrMaxLevel)
}

func TestGoldAccrualCadence(t *testing.T) {
	s := newSim(t, nil)
	for i := 0; i < 19; i++ {
		s.Step()
	}
	assert.Equal(t, 100, s.Wallet().Gold())
	res := s.Step()
	assert.Equal(t, 10, res.Accrued)
	assert.Equal(t, 110, s.Wallet().Gold())
}

func TestSpeedScalesCadence(t *testing.T) {
	s := newSim(t, nil)
	require.NoError(t, s.SetSpeed(1.5))
	assert.Equal(t, 33*time.Millisecond, s.Interval().Truncate(time.Millisecond))

	accruals, spawns := 0, 0
	for i := 0; i < 40; i++ {
		res := s.Step()
		if res.Accrued > 0 {
			accruals++
		}
		if res.EnemySpawned != nil {
			spawns++
			assert.Equal(t, 40, res.Tick)
		}
	}
	assert.Equal(t, 3, accruals, "every 13 ticks at 1.5x")
	assert.Equal(t, 1, spawns)
	assert.Equal(t, 40*50*time.Millisecond, s.Clock(), "simulation clock ignores cadence")
}

func TestSetSpeedRejectsUnknown(t *testing.T) {
	s := newSim(t, nil)
	err := s.SetSpeed(3)
	assert.ErrorIs(t, err, ErrUnsupportedSpeed)
	assert.Equal(t, "UNSUPPORTED_SPEED", economy.Code(err))
	assert.Equal(t, 1.0, s.Speed())

	require.NoError(t, s.SetSpeed(1.2))
	assert.Equal(t, 1.2, s.Speed())
}

func TestEnemySpawnCadence(t *testing.T) {
	s := newSim(t, nil)
	for i := 0; i < 59; i++ {
		assert.Nil(t, s.Step().EnemySpawned)
	}
	res := s.Step()
	require.NotNil(t, res.EnemySpawned)
	assert.Equal(t, types.ArchetypeBasic, res.EnemySpawned.Archetype())
	assert.Equal(t, protocol.EnemyBaseX-30, res.EnemySpawned.X)
	assert.Equal(t, 1, s.Enemies.Len())
}

func TestOutcomePlayerBaseCheckedFirst(t *testing.T) {
	s := newSim(t, nil)
	s.PlayerBase.Health = 0
	s.EnemyBase.Health = 0
	assert.Equal(t, EnemyWon, s.Step().Outcome)

	_, err := s.Spawn(types.ArchetypeBasic)
	assert.ErrorIs(t, err, ErrFinished)
	assert.ErrorIs(t, s.Upgrade(), ErrFinished)
}

func TestOutcomePlayerWins(t *testing.T) {
	s := newSim(t, nil)
	s.EnemyBase.Health = 0
	assert.Equal(t, PlayerWon, s.Step().Outcome)
	assert.Equal(t, "player", s.Outcome().String())
}

func TestSpawnCooldownDecaysPerTick(t *testing.T) {
	s := newSim(t, func(c *Config) { c.SpawnCooldownTicks = 3; c.StartingGold = 500 })
	_, err := s.Spawn(types.ArchetypeBasic)
	require.NoError(t, err)
	_, err = s.Spawn(types.ArchetypeBasic)
	assert.Error(t, err)

	s.Step()
	s.Step()
	s.Step()
	assert.Zero(t, s.SpawnCooldown())
	_, err = s.Spawn(types.ArchetypeBasic)
	assert.NoError(t, err)
}

func TestRunIsDeterministic(t *testing.T) {
	play := func() (Outcome, protocol.FullSnapshot) {
		s := newSim(t, nil)
		out := Run(s, Rush(), 3000, nil)
		return out, s.FullSnapshot()
	}
	o1, s1 := play()
	o2, s2 := play()
	assert.Equal(t, o1, o2)
	assert.Equal(t, s1, s2)
}

func TestIdlePlayerLoses(t *testing.T) {
	s := newSim(t, nil)
	var lost int
	out := Run(s, Idle(), 0, func(res StepResult) {
		lost += res.Report.BaseDamage[types.SidePlayer]
	})
	assert.Equal(t, EnemyWon, out)
	assert.GreaterOrEqual(t, lost, protocol.BaseHealth)
	assert.True(t, s.PlayerBase.IsDestroyed())
}

func TestParsePolicy(t *testing.T) {
	for _, name := range []string{"idle", "Rush", " eco ", "mirror"} {
		p, err := ParsePolicy(name)
		require.NoError(t, err, name)
		assert.NotNil(t, p)
	}
	_, err := ParsePolicy("turtle")
	assert.Error(t, err)
}

func TestDeltaReportsRemovalsAndBases(t *testing.T) {
	s := newSim(t, func(c *Config) { c.StartingGold = 1000 })
	_, err := s.Spawn(types.ArchetypeBasic)
	require.NoError(t, err)

	res := s.Step()
	d := s.Delta(res)
	assert.Equal(t, int64(1), d.Tick)
	require.Len(t, d.UnitsUpsert, 1)
	assert.Equal(t, "player", d.UnitsUpsert[0].Side)
	assert.Equal(t, "Basic", d.UnitsUpsert[0].Archetype)
	assert.Equal(t, protocol.PlayerBaseX+30+2, d.UnitsUpsert[0].X)
	assert.Len(t, d.Bases, 2)
	assert.Empty(t, d.UnitsRemoved)

	gu := s.GoldUpdate()
	assert.Equal(t, 950, gu.Gold)
	assert.Equal(t, 200, gu.NextCost)

	init := s.Init(5, "room-1")
	assert.Len(t, init.Archetypes, 3)
	assert.Len(t, init.Upgrades, 5)
	assert.Equal(t, []float64{1.0, 1.2, 1.5}, init.Speeds)
}
