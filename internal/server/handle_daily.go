package server

import (
	"log/slog"
	"net/http"

	"github.com/playperu/animequiz/internal/game"
)

type DailyResponse struct {
	Base            int                   `json:"base"`
	TierBonus       int                   `json:"tierBonus"`
	Total           int                   `json:"total"`
	DailyStreak     int                   `json:"dailyStreak"`
	NewAchievements []AchievementResponse `json:"newAchievements"`
	AchievementXP   int                   `json:"achievementXp"`
	XP              int                   `json:"xp"`
}

func handleClaimDaily(logger *slog.Logger, svc *game.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFrom(r)

		g, err := svc.ClaimDaily(r.Context(), userID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		resp := DailyResponse{
			Base:            g.Base,
			TierBonus:       g.TierBonus,
			Total:           g.Total(),
			DailyStreak:     g.DailyStreak,
			NewAchievements: achievementViews(g.Achievements),
			AchievementXP:   g.AchievementXP,
			XP:              g.Player.XP,
		}

		broker.Publish(userID, SSEEvent{
			Type:        eventDailyClaimed,
			XP:          g.Player.XP,
			XPEarned:    g.Total(),
			DailyStreak: g.DailyStreak,
		})
		publishAchievements(broker, userID, resp.NewAchievements)

		writeJSON(w, http.StatusOK, resp)
	}
}
