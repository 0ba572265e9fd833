package srv

import (
	"context"
	"errors"
	"math"

	"lanewar/server/sim"
	"lanewar/server/store"
	"lanewar/shared/protocol"
)

const (
	eloK   = 24
	aiName = "Enemy Director"
)

func eloExpected(ra, rb int) float64 {
	return 1 / (1 + math.Pow(10, float64(rb-ra)/400))
}

func eloApply(ra, rb int, win bool) (newA, delta int) {
	E := eloExpected(ra, rb)
	S := 0.0
	if win {
		S = 1.0
	}
	d := int(math.Round(eloK * (S - E)))
	nr := ra + d
	if nr < 0 {
		nr = 0
	}
	if nr > 9999 {
		nr = 9999
	}
	return nr, nr - ra
}

func rankName(r int) string {
	switch {
	case r >= 2100:
		return "Commander"
	case r >= 1900:
		return "Champion"
	case r >= 1700:
		return "Warlord"
	case r >= 1500:
		return "Centurion"
	case r >= 1300:
		return "Captain"
	case r >= 1100:
		return "Knight"
	case r >= 900:
		return "Ranger"
	case r >= 700:
		return "Grunt"
	case r >= 400:
		return "Footman"
	default:
		return "Recruit"
	}
}

var errNoStore = errors.New("match store not configured")

// applyMatchRating rates the owner against the fixed-rating enemy director
// and stores the match.
func (h *Hub) applyMatchRating(ctx context.Context, c *client, s *sim.Simulation) (protocol.RatingUpdate, error) {
	if h.store == nil {
		return protocol.RatingUpdate{}, errNoStore
	}
	u, err := h.store.UserByName(ctx, c.user.Username)
	if err != nil {
		return protocol.RatingUpdate{}, err
	}

	won := s.Outcome() == sim.PlayerWon
	newRating, delta := eloApply(u.Rating, h.opts.AIRating, won)
	st := s.Stats()
	rec := &store.MatchRecord{
		UserID:        u.ID,
		Winner:        s.Outcome().String(),
		Reason:        "base destroyed",
		Ticks:         s.Tick(),
		PlayerBaseHP:  s.PlayerBase.Health,
		EnemyBaseHP:   s.EnemyBase.Health,
		UnitsSpawned:  st.UnitsSpawned,
		UnitsLost:     st.UnitsLost,
		EnemiesKilled: st.EnemiesKilled,
		UpgradeLevel:  s.Wallet().Level(),
		RatingBefore:  u.Rating,
		RatingDelta:   delta,
		FinalSpeed:    s.Speed(),
	}
	if err := h.store.RecordMatch(ctx, rec, won); err != nil {
		return protocol.RatingUpdate{}, err
	}
	return protocol.RatingUpdate{
		NewRating: newRating,
		Delta:     delta,
		Rank:      rankName(newRating),
		OppName:   aiName,
		OppRating: h.opts.AIRating,
	}, nil
}
