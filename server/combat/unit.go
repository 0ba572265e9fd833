package combat

import (
	"time"

	"lanewar/shared/game/types"
)

// AttackCooldown is the minimum simulation time between two attacks of a unit.
const AttackCooldown = 1000 * time.Millisecond

// BaseCollisionRange is the lane distance under which a unit touches a base.
const BaseCollisionRange = 25

// Unit is one combat entity on the lane.
type Unit struct {
	ID     int64
	X, Y   int
	Health int
	Side   types.Side
	Stats  types.Stats

	lastAttack time.Duration
}

// NewUnit returns a unit at full health whose cooldown is ready at time zero.
func NewUnit(id int64, a types.Archetype, side types.Side, x, y int) *Unit {
	st := types.MustLookup(a)
	return &Unit{
		ID:         id,
		X:          x,
		Y:          y,
		Health:     st.Health,
		Side:       side,
		Stats:      st,
		lastAttack: -AttackCooldown,
	}
}

func (u *Unit) Archetype() types.Archetype { return u.Stats.Archetype }
func (u *Unit) Damage() int                { return u.Stats.Damage }

// Move advances the unit one step toward the opposing base.
func (u *Unit) Move() {
	u.X += u.Stats.Speed * u.Side.Direction()
}

func (u *Unit) TakeDamage(amount int) {
	u.Health -= amount
}

func (u *Unit) IsAlive() bool { return u.Health > 0 }

// CanAttack reports whether the cooldown has elapsed at now. A true result
// starts the next cooldown.
func (u *Unit) CanAttack(now time.Duration) bool {
	if now-u.lastAttack >= AttackCooldown {
		u.lastAttack = now
		return true
	}
	return false
}

// LastAttack returns the simulation time of the last committed attack.
func (u *Unit) LastAttack() time.Duration { return u.lastAttack }

func (u *Unit) CollidesWithUnit(o *Unit) bool {
	return abs(u.X-o.X) < types.MeleeRange && abs(u.Y-o.Y) < types.MeleeRange
}

func (u *Unit) CollidesWithBase(b *Base) bool {
	return abs(u.X-b.X) < BaseCollisionRange && abs(u.Y-b.Y) < BaseCollisionRange
}

// InRange reports whether o is inside the ranged engagement distance. Units
// without the ranged capability never are.
func (u *Unit) InRange(o *Unit) bool {
	return u.Stats.Ranged && abs(u.X-o.X) <= u.Stats.Range
}

// Attack is the ranged shot: it spends the cooldown first and then fires only
// when the target is in range. It reports whether damage was applied.
func (u *Unit) Attack(target *Unit, now time.Duration) bool {
	if u.CanAttack(now) && u.InRange(target) {
		target.TakeDamage(u.Stats.Damage)
		return true
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
