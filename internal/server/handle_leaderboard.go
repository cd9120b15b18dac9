package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/playperu/animequiz/internal/game"
)

const maxLeaderboardLimit = 50

type LeaderboardEntryResponse struct {
	Position    int    `json:"position"`
	UserID      int64  `json:"userId"`
	DisplayName string `json:"displayName"`
	XP          int    `json:"xp"`
	Rank        string `json:"rank"`
}

type LeaderboardResponse struct {
	Top      []LeaderboardEntryResponse `json:"top"`
	Position int                        `json:"position,omitempty"`
}

func handleLeaderboard(logger *slog.Logger, svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var userID int64
		if raw := q.Get("userId"); raw != "" {
			id, ok := parseUserID(raw)
			if !ok {
				writeError(w, http.StatusBadRequest, "invalid userId")
				return
			}
			userID = id
		}

		limit := game.DefaultLeaderboardLimit
		if raw := q.Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxLeaderboardLimit {
				writeError(w, http.StatusBadRequest, "limit must be between 1 and 50")
				return
			}
			limit = n
		}

		lb, err := svc.Leaderboard(r.Context(), userID, limit)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		resp := LeaderboardResponse{
			Top:      make([]LeaderboardEntryResponse, len(lb.Top)),
			Position: lb.Position,
		}
		for i, p := range lb.Top {
			// Tied players share a position, as in the profile.
			pos := i + 1
			if i > 0 && p.XP == lb.Top[i-1].XP {
				pos = resp.Top[i-1].Position
			}
			v := playerView(p)
			resp.Top[i] = LeaderboardEntryResponse{
				Position:    pos,
				UserID:      p.UserID,
				DisplayName: v.DisplayName,
				XP:          p.XP,
				Rank:        v.Rank,
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
