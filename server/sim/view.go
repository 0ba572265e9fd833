package sim

import (
	"fmt"

	"lanewar/server/combat"
	"lanewar/server/economy"
	"lanewar/shared/game/types"
	"lanewar/shared/protocol"
)

func toUnitState(u *combat.Unit) protocol.UnitState {
	return protocol.UnitState{
		ID:        u.ID,
		Side:      u.Side.String(),
		Archetype: u.Stats.Name,
		X:         u.X,
		Y:         u.Y,
		HP:        u.Health,
		MaxHP:     u.Stats.Health,
		Range:     u.Stats.Range,
	}
}

func toBaseState(b *combat.Base) protocol.BaseState {
	return protocol.BaseState{
		Side:  b.Side.String(),
		HP:    b.Health,
		MaxHP: b.MaxHealth,
		X:     b.X,
		Y:     b.Y,
	}
}

func (s *Simulation) bases() []protocol.BaseState {
	return []protocol.BaseState{toBaseState(s.PlayerBase), toBaseState(s.EnemyBase)}
}

// FullSnapshot returns every unit and both bases.
func (s *Simulation) FullSnapshot() protocol.FullSnapshot {
	units := make([]protocol.UnitState, 0, s.Players.Len()+s.Enemies.Len())
	for _, u := range s.Players.Units() {
		units = append(units, toUnitState(u))
	}
	for _, u := range s.Enemies.Units() {
		units = append(units, toUnitState(u))
	}
	return protocol.FullSnapshot{Tick: int64(s.tick), Units: units, Bases: s.bases()}
}

// Delta converts a step into the per-tick broadcast. Every live unit is
// upserted since all of them may have moved.
func (s *Simulation) Delta(res StepResult) protocol.StateDelta {
	snap := s.FullSnapshot()
	removed := make([]int64, 0, len(res.Report.Removed))
	for _, u := range res.Report.Removed {
		removed = append(removed, u.ID)
	}

	var events []string
	for _, u := range res.Report.Removed {
		events = append(events, fmt.Sprintf("death:%s:%s", u.Side, u.Stats.Name))
	}
	for _, side := range []types.Side{types.SidePlayer, types.SideEnemy} {
		if d := res.Report.BaseDamage[side]; d > 0 {
			events = append(events, fmt.Sprintf("base_hit:%s:%d", side, d))
		}
	}
	if res.EnemySpawned != nil {
		events = append(events, fmt.Sprintf("spawn:%s:%s", res.EnemySpawned.Side, res.EnemySpawned.Stats.Name))
	}

	return protocol.StateDelta{
		Tick:         int64(res.Tick),
		UnitsUpsert:  snap.Units,
		UnitsRemoved: removed,
		Bases:        snap.Bases,
		Events:       events,
	}
}

// GoldUpdate reports the wallet.
func (s *Simulation) GoldUpdate() protocol.GoldUpdate {
	gu := protocol.GoldUpdate{
		Gold:       s.wallet.Gold(),
		Level:      s.wallet.Level(),
		MaxLevel:   s.wallet.MaxLevel(),
		Multiplier: s.wallet.Multiplier(),
	}
	if next, ok := s.wallet.NextUpgrade(); ok {
		gu.NextCost = next.Cost
	}
	return gu
}

// SpeedUpdate reports the current cadence.
func (s *Simulation) SpeedUpdate() protocol.SpeedUpdate {
	return protocol.SpeedUpdate{Multiplier: s.speed, IntervalMs: s.Interval().Milliseconds()}
}

// Init describes the rules of the match for a newly joined client.
func (s *Simulation) Init(playerID int64, roomID string) protocol.Init {
	arch := make([]protocol.ArchetypeInfo, 0, 3)
	for _, st := range types.ListArchetypes() {
		arch = append(arch, protocol.ArchetypeInfo{
			Name: st.Name, Health: st.Health, Damage: st.Damage, Speed: st.Speed,
			Cost: st.Cost, Range: st.Range, Ranged: st.Ranged,
		})
	}
	ups := make([]protocol.UpgradeStep, 0, len(economy.Ladder))
	for _, st := range economy.Ladder {
		ups = append(ups, protocol.UpgradeStep{Cost: st.Cost, Multiplier: st.Multiplier})
	}
	return protocol.Init{
		PlayerID:   playerID,
		RoomID:     roomID,
		LaneWidth:  protocol.LaneWidth,
		LaneY:      protocol.LaneY,
		Archetypes: arch,
		Upgrades:   ups,
		Speeds:     append([]float64(nil), s.cfg.Speeds...),
		Tick:       int64(s.tick),
	}
}
