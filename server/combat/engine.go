package combat

import (
	"time"

	"lanewar/shared/game/types"
)

// Rules selects between the legacy behaviours of the resolution loop.
type Rules struct {
	// DoubleBaseStrike runs the base-damage fallback pass after both unit
	// passes, so a unit touching the enemy base can hit it twice in one tick.
	DoubleBaseStrike bool
	// SymmetricRanged gives enemy ranged units the range-gated bonus attack
	// that player ranged units have.
	SymmetricRanged bool
}

// DefaultRules reproduces the legacy game: double base strike on, ranged
// bonus for the player side only.
func DefaultRules() Rules {
	return Rules{DoubleBaseStrike: true}
}

// Report summarises what one tick did.
type Report struct {
	Hits       int // melee attacks applied
	RangedHits int // range-gated attacks applied
	// BaseDamage is indexed by the side of the damaged base.
	BaseDamage [2]int
	Removed    []*Unit
}

// Kills returns how many units of side s were removed this tick.
func (r Report) Kills(s types.Side) int {
	n := 0
	for _, u := range r.Removed {
		if u.Side == s {
			n++
		}
	}
	return n
}

type Engine struct {
	rules Rules
}

func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

func (e *Engine) Rules() Rules { return e.rules }

// Tick runs one resolution step at simulation time now. It owns the rosters
// and bases for the duration of the call. Termination is left to the caller.
func (e *Engine) Tick(players, enemies *Roster, playerBase, enemyBase *Base, now time.Duration) Report {
	var rep Report

	e.resolve(players, enemies, enemyBase, now, true, &rep)
	e.resolve(enemies, players, playerBase, now, e.rules.SymmetricRanged, &rep)

	if e.rules.DoubleBaseStrike {
		strikeBase(players, enemyBase, &rep)
		strikeBase(enemies, playerBase, &rep)
	}

	rep.Removed = append(rep.Removed, players.Cleanup()...)
	rep.Removed = append(rep.Removed, enemies.Cleanup()...)
	return rep
}

// resolve runs one side's pass. Defenders killed here stay in their roster
// until cleanup and still act in their own pass.
func (e *Engine) resolve(attackers, defenders *Roster, target *Base, now time.Duration, rangedBonus bool, rep *Report) {
	for _, u := range attackers.units {
		engaged := false
		for _, o := range defenders.units {
			if u.CollidesWithUnit(o) {
				engaged = true
				if u.CanAttack(now) {
					o.TakeDamage(u.Damage())
					rep.Hits++
				}
				if !o.IsAlive() {
					defenders.Schedule(o)
				}
			}

			// the ranged shot is only considered until a melee contact is found
			if rangedBonus && !engaged && u.InRange(o) {
				if u.Attack(o, now) {
					rep.RangedHits++
				}
				if !o.IsAlive() {
					defenders.Schedule(o)
				}
			}
		}

		if !u.IsAlive() || engaged {
			continue
		}
		if u.CollidesWithBase(target) {
			target.TakeDamage(u.Damage())
			rep.BaseDamage[target.Side] += u.Damage()
		} else {
			u.Move()
		}
	}
}

func strikeBase(attackers *Roster, target *Base, rep *Report) {
	for _, u := range attackers.units {
		if u.IsAlive() && u.CollidesWithBase(target) {
			target.TakeDamage(u.Damage())
			rep.BaseDamage[target.Side] += u.Damage()
		}
	}
}
