package protocol

const (
	LaneWidth   = 800
	LaneY       = 300
	PlayerBaseX = 50
	EnemyBaseX  = 750

	// Net/update cadence at 1.0x speed
	TickRate           = 20
	TickIntervalMs     = 1000 / TickRate
	SnapshotEveryTicks = 60

	StartingGold = 100
	BaseHealth   = 1000

	// Ticks between gold accruals and enemy spawns at 1.0x speed
	GoldEveryTicks  = 20
	SpawnEveryTicks = 60
)
