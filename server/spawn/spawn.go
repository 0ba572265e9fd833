// Package spawn decides which units enter the lane and where.
package spawn

import (
	"errors"

	"lanewar/server/combat"
	"lanewar/server/economy"
	"lanewar/shared/game/types"
	"lanewar/shared/protocol"
)

// Offset is the lane distance between a base and the units it spawns.
const Offset = 30

var ErrSpawnCooldown = errors.New("spawn is cooling down")

// Source is the randomness used to pick enemy archetypes. *rand.Rand
// satisfies it.
type Source interface {
	Intn(n int) int
}

// IDFunc allocates unit ids.
type IDFunc func() int64

// Controller spawns player units against a wallet.
type Controller struct {
	wallet   *economy.Wallet
	roster   *combat.Roster
	base     *combat.Base
	nextID   IDFunc
	cooldown int // ticks between player spawns, 0 disables
	wait     int
}

func NewController(w *economy.Wallet, r *combat.Roster, base *combat.Base, cooldownTicks int, ids IDFunc) *Controller {
	if ids == nil {
		ids = protocol.NewID
	}
	return &Controller{wallet: w, roster: r, base: base, nextID: ids, cooldown: cooldownTicks}
}

// Spawn debits the archetype cost and appends a new unit in front of the
// player base. Rejections leave gold and roster untouched.
func (c *Controller) Spawn(a types.Archetype) (*combat.Unit, error) {
	st, ok := types.Lookup(a)
	if !ok {
		return nil, &economy.RejectError{Code: "UNKNOWN_ARCHETYPE", Err: errors.New("unknown archetype")}
	}
	if c.wait > 0 {
		return nil, &economy.RejectError{Code: "SPAWN_COOLDOWN", Err: ErrSpawnCooldown}
	}
	if err := c.wallet.Spend(st.Cost); err != nil {
		return nil, err
	}
	u := combat.NewUnit(c.nextID(), a, c.base.Side, c.base.X+Offset*c.base.Side.Direction(), c.base.Y)
	c.roster.Add(u)
	c.wait = c.cooldown
	return u, nil
}

// Cooldown returns the remaining ticks before the next spawn is accepted.
func (c *Controller) Cooldown() int { return c.wait }

// Tick decrements the spawn cooldown.
func (c *Controller) Tick() {
	if c.wait > 0 {
		c.wait--
	}
}

// Difficulty thresholds, in simulation ticks.
const (
	TankerUnlockTick = 120
	RangedUnlockTick = 240
)

// Director spawns the enemy side on a difficulty curve.
type Director struct {
	rng    Source
	roster *combat.Roster
	base   *combat.Base
	nextID IDFunc
}

func NewDirector(rng Source, r *combat.Roster, base *combat.Base, ids IDFunc) *Director {
	if ids == nil {
		ids = protocol.NewID
	}
	return &Director{rng: rng, roster: r, base: base, nextID: ids}
}

// Pick chooses the archetype for an enemy spawned at tick.
func (d *Director) Pick(tick int) types.Archetype {
	switch {
	case tick < TankerUnlockTick:
		return types.ArchetypeBasic
	case tick < RangedUnlockTick:
		return types.Archetype(d.rng.Intn(2))
	default:
		return types.Archetype(d.rng.Intn(3))
	}
}

// Spawn appends one enemy unit in front of the enemy base.
func (d *Director) Spawn(tick int) *combat.Unit {
	a := d.Pick(tick)
	u := combat.NewUnit(d.nextID(), a, d.base.Side, d.base.X+Offset*d.base.Side.Direction(), d.base.Y)
	d.roster.Add(u)
	return u
}
