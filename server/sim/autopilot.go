package sim

import (
	"fmt"
	"strings"

	"lanewar/shared/game/types"
)

// Policy issues the player's commands before a tick. Rejected commands are
// ignored, as a player clicking a disabled button would be.
type Policy interface {
	Act(s *Simulation)
}

type PolicyFunc func(s *Simulation)

func (f PolicyFunc) Act(s *Simulation) { f(s) }

// Idle never acts.
func Idle() Policy { return PolicyFunc(func(*Simulation) {}) }

// Rush spawns a Basic unit whenever gold allows.
func Rush() Policy {
	return PolicyFunc(func(s *Simulation) {
		_, _ = s.Spawn(types.ArchetypeBasic)
	})
}

// Eco climbs the gold multiplier ladder first and then fields a Tanker in
// front of every two Ranged units.
func Eco() Policy {
	n := 0
	return PolicyFunc(func(s *Simulation) {
		if s.Upgrade() == nil {
			return
		}
		if _, ok := s.Wallet().NextUpgrade(); ok && s.Players.Len() > 0 {
			return
		}
		a := types.ArchetypeRanged
		if n%3 == 0 {
			a = types.ArchetypeTanker
		}
		if _, err := s.Spawn(a); err == nil {
			n++
		}
	})
}

// Mirror answers each enemy on the lane with one unit of the same archetype.
func Mirror() Policy {
	return PolicyFunc(func(s *Simulation) {
		if s.Players.Len() >= s.Enemies.Len() {
			return
		}
		last := s.Enemies.Units()[s.Enemies.Len()-1]
		_, _ = s.Spawn(last.Archetype())
	})
}

// ParsePolicy resolves a policy by name.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "idle":
		return Idle(), nil
	case "rush":
		return Rush(), nil
	case "eco":
		return Eco(), nil
	case "mirror":
		return Mirror(), nil
	}
	return nil, fmt.Errorf("unknown policy %q", name)
}

// Run drives s without pacing until the match ends or maxTicks is reached.
// observe, if set, sees every step.
func Run(s *Simulation, p Policy, maxTicks int, observe func(StepResult)) Outcome {
	for s.Outcome() == Running && (maxTicks <= 0 || s.Tick() < maxTicks) {
		if p != nil {
			p.Act(s)
		}
		res := s.Step()
		if observe != nil {
			observe(res)
		}
	}
	return s.Outcome()
}
