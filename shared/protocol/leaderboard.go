package protocol

type LeaderboardEntry struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
	Rank   string `json:"rank"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

type Leaderboard struct {
	Items       []LeaderboardEntry `json:"items"`
	GeneratedAt int64              `json:"generated_at"` // Unix ms
}

// Empty request. Client sends this to fetch the board.
type GetLeaderboard struct{}

type MatchSummary struct {
	ID             uint    `json:"id"`
	Winner         string  `json:"winner"`
	Ticks          int     `json:"ticks"`
	PlayerBaseHP   int     `json:"playerBaseHp"`
	EnemyBaseHP    int     `json:"enemyBaseHp"`
	UnitsSpawned   int     `json:"unitsSpawned"`
	UnitsLost      int     `json:"unitsLost"`
	EnemiesKilled  int     `json:"enemiesKilled"`
	UpgradeLevel   int     `json:"upgradeLevel"`
	RatingDelta    int     `json:"ratingDelta"`
	FinalSpeed     float64 `json:"finalSpeed"`
	FinishedAtUnix int64   `json:"finishedAt"`
}

type MatchHistory struct {
	Items []MatchSummary `json:"items"`
}
