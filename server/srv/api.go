package srv

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"lanewar/server/auth"
	"lanewar/shared/protocol"
)

const (
	leaderboardSize = 50
	historySize     = 20
)

func (h *Hub) leaderboard(ctx context.Context) (protocol.Leaderboard, error) {
	if h.store == nil {
		return protocol.Leaderboard{}, errNoStore
	}
	users, err := h.store.Leaderboard(ctx, leaderboardSize)
	if err != nil {
		return protocol.Leaderboard{}, err
	}
	entries := make([]protocol.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, protocol.LeaderboardEntry{
			Name:   u.Username,
			Rating: u.Rating,
			Rank:   rankName(u.Rating),
			Wins:   u.Wins,
			Losses: u.Losses,
		})
	}
	return protocol.Leaderboard{Items: entries, GeneratedAt: time.Now().UnixMilli()}, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// HandleLeaderboard serves the top players by rating.
func (h *Hub) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.leaderboard(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("loading leaderboard")
		http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, lb)
}

// HandleMatches serves the caller's recent matches. It must sit behind
// auth.RequireAuth.
func (h *Hub) HandleMatches(w http.ResponseWriter, r *http.Request) {
	name, ok := auth.UserFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if h.store == nil {
		http.Error(w, "history unavailable", http.StatusServiceUnavailable)
		return
	}
	u, err := h.store.UserByName(r.Context(), name)
	if err != nil {
		http.Error(w, "unknown user", http.StatusNotFound)
		return
	}
	recs, err := h.store.Matches(r.Context(), u.ID, historySize)
	if err != nil {
		h.log.Error().Err(err).Msg("loading matches")
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	items := make([]protocol.MatchSummary, 0, len(recs))
	for _, m := range recs {
		items = append(items, protocol.MatchSummary{
			ID:             m.ID,
			Winner:         m.Winner,
			Ticks:          m.Ticks,
			PlayerBaseHP:   m.PlayerBaseHP,
			EnemyBaseHP:    m.EnemyBaseHP,
			UnitsSpawned:   m.UnitsSpawned,
			UnitsLost:      m.UnitsLost,
			EnemiesKilled:  m.EnemiesKilled,
			UpgradeLevel:   m.UpgradeLevel,
			RatingDelta:    m.RatingDelta,
			FinalSpeed:     m.FinalSpeed,
			FinishedAtUnix: m.CreatedAt.Unix(),
		})
	}
	writeJSON(w, protocol.MatchHistory{Items: items})
}
