package protocol

type Profile struct {
	PlayerID int64  `json:"playerId"`
	Name     string `json:"name"`
	Rating   int    `json:"rating"` // e.g. 1200 base
	Rank     string `json:"rank"`   // derived server-side
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}

type GetProfile struct{}

type Logout struct{}

// RatingUpdate is sent after a rated match.
type RatingUpdate struct {
	NewRating int    `json:"newRating"`
	Delta     int    `json:"delta"`
	Rank      string `json:"rank"`
	OppName   string `json:"oppName"`
	OppRating int    `json:"oppRating"`
}
