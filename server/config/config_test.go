package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanewar/server/sim"
)

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfg, err := Load(t.TempDir(), nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, []float64{1.0, 1.2, 1.5}, cfg.Sim.Speeds)
	assert.Equal(t, 100, cfg.Sim.StartingGold)
	assert.Equal(t, 0, cfg.Sim.SpawnCooldownTicks)
	assert.True(t, cfg.Combat.DoubleBaseStrike)
	assert.False(t, cfg.Combat.SymmetricRanged)
}

func TestLoad_WithConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	body := `{
		"log": { "level": "debug" },
		"sim": { "startingGold": 250, "speeds": [1, 2] },
		"combat": { "doubleBaseStrike": false }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lanewar.json"), []byte(body), 0644))

	cfg, err := Load(dir, nil)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 250, cfg.Sim.StartingGold)
	assert.Equal(t, []float64{1, 2}, cfg.Sim.Speeds)
	assert.False(t, cfg.Combat.DoubleBaseStrike)
	assert.Equal(t, 1000, cfg.Sim.BaseHealth)
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lanewar.json"), []byte(`{"log":`), 0644))

	_, err := Load(dir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("LANEWAR_STORE_DRIVER", "postgres")
	t.Setenv("LANEWAR_SIM_STARTINGGOLD", "40")

	cfg, err := Load(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 40, cfg.Sim.StartingGold)
}

func TestLoad_FlagsOverride(t *testing.T) {
	t.Cleanup(viper.Reset)

	fs := Flags()
	require.NoError(t, fs.Parse([]string{"--addr", ":9090", "--seed", "42"}))

	cfg, err := Load(t.TempDir(), fs)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, int64(42), cfg.Sim.Seed)
	assert.Equal(t, "info", cfg.Log.Level, "unset flags keep defaults")
}

func TestValidate(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfg, err := Load(t.TempDir(), nil)
	require.NoError(t, err)

	bad := cfg
	bad.Sim.Speeds = nil
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Store.Driver = "mysql"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Sim.Speeds = []float64{1, -1}
	assert.Error(t, bad.Validate())
}

func TestSimConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfg, err := Load(t.TempDir(), nil)
	require.NoError(t, err)

	sc := cfg.SimConfig()
	def := sim.DefaultConfig()
	assert.Equal(t, def.TickInterval, sc.TickInterval)
	assert.Equal(t, def.Speeds, sc.Speeds)
	assert.Equal(t, def.StartingGold, sc.StartingGold)
	assert.Equal(t, def.BaseHealth, sc.BaseHealth)
	assert.Equal(t, def.GoldEveryTicks, sc.GoldEveryTicks)
	assert.Equal(t, def.SpawnEveryTicks, sc.SpawnEveryTicks)
	assert.Equal(t, def.Rules, sc.Rules)
}
