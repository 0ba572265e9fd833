package types

import (
	"fmt"
	"strings"
)

// Side identifies which base a unit or base belongs to.
type Side int

const (
	SidePlayer Side = iota
	SideEnemy
)

func (s Side) String() string {
	if s == SideEnemy {
		return "enemy"
	}
	return "player"
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SidePlayer {
		return SideEnemy
	}
	return SidePlayer
}

// Direction is the sign of lane movement toward the opposing base.
func (s Side) Direction() int {
	if s == SidePlayer {
		return 1
	}
	return -1
}

type Archetype int

const (
	ArchetypeBasic Archetype = iota
	ArchetypeTanker
	ArchetypeRanged
)

// Stats is the fixed configuration of an archetype. Behavioural differences
// between archetypes are carried here as data.
type Stats struct {
	Archetype Archetype
	Name      string
	Health    int
	Damage    int
	Speed     int
	Cost      int
	Ranged    bool // has the range-gated bonus attack
	Range     int  // ranged engagement distance; melee range when !Ranged
}

// MeleeRange is the lane distance under which two units collide.
const MeleeRange = 20

var archetypeRegistry = []Stats{
	{ArchetypeBasic, "Basic", 100, 20, 2, 50, false, MeleeRange},
	{ArchetypeTanker, "Tanker", 200, 10, 1, 100, false, MeleeRange},
	{ArchetypeRanged, "Ranged", 100, 30, 1, 150, true, 100},
}

func (a Archetype) String() string {
	if st, ok := Lookup(a); ok {
		return st.Name
	}
	return fmt.Sprintf("Archetype(%d)", int(a))
}

// Lookup returns the stats row for a.
func Lookup(a Archetype) (Stats, bool) {
	for _, st := range archetypeRegistry {
		if st.Archetype == a {
			return st, true
		}
	}
	return Stats{}, false
}

// MustLookup is Lookup for archetypes known at compile time.
func MustLookup(a Archetype) Stats {
	st, ok := Lookup(a)
	if !ok {
		panic(fmt.Sprintf("types: unknown archetype %d", int(a)))
	}
	return st
}

// ParseArchetype resolves a case-insensitive archetype name.
func ParseArchetype(name string) (Archetype, error) {
	n := strings.TrimSpace(name)
	for _, st := range archetypeRegistry {
		if strings.EqualFold(st.Name, n) {
			return st.Archetype, nil
		}
	}
	return 0, fmt.Errorf("unknown archetype %q", name)
}

// ListArchetypes returns every archetype in registry order.
func ListArchetypes() []Stats {
	out := make([]Stats, len(archetypeRegistry))
	copy(out, archetypeRegistry)
	return out
}
