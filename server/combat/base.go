package combat

import "lanewar/shared/game/types"

// DefaultBaseHealth is the starting health of each base.
const DefaultBaseHealth = 1000

type Base struct {
	ID        int64
	X, Y      int
	Health    int
	MaxHealth int
	Side      types.Side
}

func NewBase(id int64, side types.Side, x, y, health int) *Base {
	return &Base{ID: id, X: x, Y: y, Health: health, MaxHealth: health, Side: side}
}

func (b *Base) TakeDamage(amount int) {
	b.Health -= amount
}

func (b *Base) IsDestroyed() bool { return b.Health <= 0 }
