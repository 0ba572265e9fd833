// Package config loads server settings from defaults, an optional
// lanewar.json, LANEWAR_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"lanewar/server/combat"
	"lanewar/server/sim"
)

const (
	FileName  = "lanewar"
	EnvPrefix = "LANEWAR"
)

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
}

type AuthConfig struct {
	KeyFile  string        `mapstructure:"keyFile"`
	Issuer   string        `mapstructure:"issuer"`
	TokenTTL time.Duration `mapstructure:"tokenTTL"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"` // sqlite | postgres
	DSN    string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type SimConfig struct {
	TickIntervalMs     int       `mapstructure:"tickIntervalMs"`
	Speeds             []float64 `mapstructure:"speeds"`
	StartingGold       int       `mapstructure:"startingGold"`
	BaseHealth         int       `mapstructure:"baseHealth"`
	SpawnCooldownTicks int       `mapstructure:"spawnCooldownTicks"`
	GoldEveryTicks     int       `mapstructure:"goldEveryTicks"`
	SpawnEveryTicks    int       `mapstructure:"spawnEveryTicks"`
	SnapshotEveryTicks int       `mapstructure:"snapshotEveryTicks"`
	Seed               int64     `mapstructure:"seed"` // 0 seeds from the clock
	AIRating           int       `mapstructure:"aiRating"`
}

type CombatConfig struct {
	DoubleBaseStrike bool `mapstructure:"doubleBaseStrike"`
	SymmetricRanged  bool `mapstructure:"symmetricRanged"`
}

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
	Sim    SimConfig    `mapstructure:"sim"`
	Combat CombatConfig `mapstructure:"combat"`
}

func setDefaults() {
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.readTimeout", "15s")
	viper.SetDefault("server.writeTimeout", "15s")
	viper.SetDefault("server.idleTimeout", "60s")

	viper.SetDefault("auth.keyFile", "data/jwt.key")
	viper.SetDefault("auth.issuer", "LaneWar")
	viper.SetDefault("auth.tokenTTL", "24h")

	viper.SetDefault("store.driver", "sqlite")
	viper.SetDefault("store.dsn", "data/lanewar.db")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.pretty", true)

	viper.SetDefault("sim.tickIntervalMs", 50)
	viper.SetDefault("sim.speeds", []float64{1.0, 1.2, 1.5})
	viper.SetDefault("sim.startingGold", 100)
	viper.SetDefault("sim.baseHealth", 1000)
	viper.SetDefault("sim.spawnCooldownTicks", 0)
	viper.SetDefault("sim.goldEveryTicks", 20)
	viper.SetDefault("sim.spawnEveryTicks", 60)
	viper.SetDefault("sim.snapshotEveryTicks", 60)
	viper.SetDefault("sim.seed", 0)
	viper.SetDefault("sim.aiRating", 1200)

	viper.SetDefault("combat.doubleBaseStrike", true)
	viper.SetDefault("combat.symmetricRanged", false)
}

// Flags declares the command-line overrides understood by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("lanewar", pflag.ContinueOnError)
	fs.String("config-dir", ".", "directory containing lanewar.json")
	fs.String("addr", "", "listen address")
	fs.String("log-level", "", "trace|debug|info|warn|error")
	fs.String("store-driver", "", "sqlite|postgres")
	fs.String("store-dsn", "", "database file or connection string")
	fs.Int64("seed", 0, "enemy director seed (0 uses the clock)")
	return fs
}

var flagKeys = map[string]string{
	"addr":         "server.addr",
	"log-level":    "log.level",
	"store-driver": "store.driver",
	"store-dsn":    "store.dsn",
	"seed":         "sim.seed",
}

// Load resolves the configuration. fs may be nil; only flags that were set
// on the command line override file and environment values.
func Load(configDir string, fs *pflag.FlagSet) (Config, error) {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := viper.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the simulation cannot run with.
func (c Config) Validate() error {
	if c.Sim.TickIntervalMs <= 0 {
		return fmt.Errorf("sim.tickIntervalMs must be positive, got %d", c.Sim.TickIntervalMs)
	}
	if len(c.Sim.Speeds) == 0 {
		return errors.New("sim.speeds must not be empty")
	}
	for _, s := range c.Sim.Speeds {
		if s <= 0 {
			return fmt.Errorf("sim.speeds: invalid multiplier %g", s)
		}
	}
	if c.Sim.StartingGold < 0 || c.Sim.BaseHealth <= 0 {
		return errors.New("sim.startingGold must be >= 0 and sim.baseHealth > 0")
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("store.driver: unsupported %q", c.Store.Driver)
	}
	return nil
}

// SimConfig converts the sim and combat sections for sim.New.
func (c Config) SimConfig() sim.Config {
	return sim.Config{
		TickInterval:       time.Duration(c.Sim.TickIntervalMs) * time.Millisecond,
		Speeds:             append([]float64(nil), c.Sim.Speeds...),
		StartingGold:       c.Sim.StartingGold,
		BaseHealth:         c.Sim.BaseHealth,
		SpawnCooldownTicks: c.Sim.SpawnCooldownTicks,
		GoldEveryTicks:     c.Sim.GoldEveryTicks,
		SpawnEveryTicks:    c.Sim.SpawnEveryTicks,
		Rules: combat.Rules{
			DoubleBaseStrike: c.Combat.DoubleBaseStrike,
			SymmetricRanged:  c.Combat.SymmetricRanged,
		},
	}
}
