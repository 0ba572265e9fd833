package protocol

import "encoding/json"

// Envelope
type MsgEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ================= C -> S =================

// CreateRoom opens a solo room against the enemy director.
type CreateRoom struct{}
type StartBattle struct{}
type LeaveRoom struct{}

type SpawnUnit struct {
	Archetype string `json:"archetype"` // Basic | Tanker | Ranged
	ClientTs  int64  `json:"clientTs"`
}

type UpgradeGold struct{}

type SetSpeed struct {
	Multiplier float64 `json:"multiplier"`
}

type PauseGame struct{}
type ResumeGame struct{}

// ================= S -> C =================

type ArchetypeInfo struct {
	Name   string `json:"name"`
	Health int    `json:"health"`
	Damage int    `json:"damage"`
	Speed  int    `json:"speed"`
	Cost   int    `json:"cost"`
	Range  int    `json:"range"`
	Ranged bool   `json:"ranged"`
}

type UpgradeStep struct {
	Cost       int     `json:"cost"`
	Multiplier float64 `json:"multiplier"`
}

type Init struct {
	PlayerID   int64           `json:"playerId"`
	RoomID     string          `json:"roomId"`
	LaneWidth  int             `json:"laneWidth"`
	LaneY      int             `json:"laneY"`
	Archetypes []ArchetypeInfo `json:"archetypes"`
	Upgrades   []UpgradeStep   `json:"upgrades"`
	Speeds     []float64       `json:"speeds"`
	Tick       int64           `json:"tick"`
}

type GoldUpdate struct {
	Gold       int     `json:"gold"`
	Level      int     `json:"level"`
	MaxLevel   int     `json:"maxLevel"`
	Multiplier float64 `json:"multiplier"`
	NextCost   int     `json:"nextCost,omitempty"` // 0 when maxed
}

type SpeedUpdate struct {
	Multiplier float64 `json:"multiplier"`
	IntervalMs int64   `json:"intervalMs"`
}

type UnitState struct {
	ID        int64  `json:"id"`
	Side      string `json:"side"`
	Archetype string `json:"archetype"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	HP        int    `json:"hp"`
	MaxHP     int    `json:"maxHp"`
	Range     int    `json:"range"`
}

type BaseState struct {
	Side  string `json:"side"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"maxHp"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

type StateDelta struct {
	Tick         int64       `json:"tick"`
	UnitsUpsert  []UnitState `json:"unitsUpsert"`
	UnitsRemoved []int64     `json:"unitsRemoved"`
	Bases        []BaseState `json:"bases,omitempty"`
	Events       []string    `json:"events,omitempty"`
}

type FullSnapshot struct {
	Tick  int64       `json:"tick"`
	Units []UnitState `json:"units"`
	Bases []BaseState `json:"bases"`
}

type UnitSpawnEvent struct {
	UnitID    int64  `json:"unitId"`
	Side      string `json:"side"`
	Archetype string `json:"archetype"`
	X         int    `json:"x"`
}

type UnitDeathEvent struct {
	UnitID    int64  `json:"unitId"`
	Side      string `json:"side"`
	Archetype string `json:"archetype"`
	X         int    `json:"x"`
}

type BaseDamageEvent struct {
	Side   string `json:"side"` // side of the damaged base
	Damage int    `json:"damage"`
	BaseHP int    `json:"baseHp"`
}

type RoomCreated struct {
	RoomID string `json:"roomId"`
}

type ErrorMsg struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type GameOver struct {
	Winner string `json:"winner"` // "player" | "enemy"
	Reason string `json:"reason,omitempty"`
	Ticks  int64  `json:"ticks"`
}
