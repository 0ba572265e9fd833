package combat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lanewar/shared/game/types"
)

func TestUnitMoveDirection(t *testing.T) {
	p := NewUnit(1, types.ArchetypeBasic, types.SidePlayer, 100, 300)
	e := NewUnit(2, types.ArchetypeTanker, types.SideEnemy, 100, 300)
	p.Move()
	e.Move()
	assert.Equal(t, 102, p.X)
	assert.Equal(t, 99, e.X)
}

func TestUnitTakeDamageGoesNegative(t *testing.T) {
	u := NewUnit(1, types.ArchetypeBasic, types.SidePlayer, 0, 0)
	u.TakeDamage(130)
	assert.Equal(t, -30, u.Health)
	assert.False(t, u.IsAlive())
}

func TestCanAttackCommitsOnCheck(t *testing.T) {
	u := NewUnit(1, types.ArchetypeBasic, types.SidePlayer, 0, 0)

	assert.True(t, u.CanAttack(0), "fresh unit is ready")
	assert.Equal(t, time.Duration(0), u.LastAttack())

	assert.False(t, u.CanAttack(999*time.Millisecond))
	assert.Equal(t, time.Duration(0), u.LastAttack(), "failed check has no side effect")

	assert.True(t, u.CanAttack(time.Second))
	assert.False(t, u.CanAttack(time.Second), "second check in the same instant fails")
	assert.True(t, u.CanAttack(2500*time.Millisecond))
	assert.Equal(t, 2500*time.Millisecond, u.LastAttack())
}

func TestCollisionThresholds(t *testing.T) {
	a := NewUnit(1, types.ArchetypeBasic, types.SidePlayer, 100, 300)
	b := NewUnit(2, types.ArchetypeBasic, types.SideEnemy, 119, 300)
	assert.True(t, a.CollidesWithUnit(b))
	b.X = 120
	assert.False(t, a.CollidesWithUnit(b), "20 apart is not a collision")
	b.X = 110
	b.Y = 330
	assert.False(t, a.CollidesWithUnit(b), "lane offset counts too")

	base := NewBase(9, types.SideEnemy, 750, 300, DefaultBaseHealth)
	a.X = 726
	assert.True(t, a.CollidesWithBase(base))
	a.X = 725
	assert.False(t, a.CollidesWithBase(base))
}

func TestRangedAttackGatesOnCooldownAndRange(t *testing.T) {
	r := NewUnit(1, types.ArchetypeRanged, types.SidePlayer, 100, 300)
	far := NewUnit(2, types.ArchetypeBasic, types.SideEnemy, 201, 300)
	near := NewUnit(3, types.ArchetypeBasic, types.SideEnemy, 200, 300)

	assert.False(t, r.InRange(far))
	assert.True(t, r.InRange(near), "range is inclusive")

	assert.False(t, r.Attack(far, 0), "out of range")
	assert.Equal(t, 100, far.Health)
	assert.False(t, r.Attack(near, 500*time.Millisecond), "cooldown was spent by the previous attempt")

	assert.True(t, r.Attack(near, time.Second))
	assert.Equal(t, 70, near.Health)
}

func TestMeleeUnitsHaveNoRangedReach(t *testing.T) {
	b := NewUnit(1, types.ArchetypeBasic, types.SidePlayer, 100, 300)
	o := NewUnit(2, types.ArchetypeBasic, types.SideEnemy, 110, 300)
	assert.False(t, b.InRange(o))
}

func TestBaseDestroyed(t *testing.T) {
	b := NewBase(1, types.SidePlayer, 50, 300, 30)
	b.TakeDamage(20)
	assert.False(t, b.IsDestroyed())
	b.TakeDamage(20)
	assert.True(t, b.IsDestroyed())
	assert.Equal(t, -10, b.Health)
}
