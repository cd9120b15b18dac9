package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/playperu/animequiz/internal/game"
	"github.com/playperu/animequiz/internal/progress"
)

type PlayerRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
}

func handlePutPlayer(logger *slog.Logger, svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PlayerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		p, err := svc.EnsurePlayer(r.Context(), userIDFrom(r),
			strings.TrimSpace(req.Username), strings.TrimSpace(req.FirstName))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, playerView(p))
	}
}

type ProfileResponse struct {
	Player           PlayerResponse `json:"player"`
	Rank             progress.Rank  `json:"rank"`
	NextRank         *progress.Rank `json:"nextRank,omitempty"`
	RankProgress     float64        `json:"rankProgress"`
	Accuracy         float64        `json:"accuracy"`
	Position         int            `json:"position"`
	CollectionCount  int            `json:"collectionCount"`
	CatalogSize      int            `json:"catalogSize"`
	AchievementCount int            `json:"achievementCount"`
	AchievementTotal int            `json:"achievementTotal"`
}

func handleProfile(logger *slog.Logger, svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prof, err := svc.Profile(r.Context(), userIDFrom(r))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, ProfileResponse{
			Player:           playerView(prof.Player),
			Rank:             prof.Rank,
			NextRank:         prof.NextRank,
			RankProgress:     prof.RankProgress,
			Accuracy:         prof.Accuracy,
			Position:         prof.Position,
			CollectionCount:  prof.CollectionCount,
			CatalogSize:      prof.CatalogSize,
			AchievementCount: prof.AchievementCount,
			AchievementTotal: prof.AchievementTotal,
		})
	}
}

func handleAchievements(logger *slog.Logger, svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Achievements(r.Context(), userIDFrom(r))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		resp := make([]AchievementResponse, len(list))
		for i, a := range list {
			resp[i] = achievementView(a.Definition)
			resp[i].Unlocked = a.Unlocked
			if a.Unlocked {
				at := a.UnlockedAt
				resp[i].UnlockedAt = &at
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type CollectionItemResponse struct {
	ID           int    `json:"id"`
	Rarity       string `json:"rarity"`
	Collected    bool   `json:"collected"`
	Name         string `json:"name,omitempty"`
	LocalName    string `json:"localName,omitempty"`
	TimesGuessed int    `json:"timesGuessed,omitempty"`
}

type CollectionResponse struct {
	Items      []CollectionItemResponse `json:"items"`
	Page       int                      `json:"page"`
	TotalPages int                      `json:"totalPages"`
	Collected  int                      `json:"collected"`
	Total      int                      `json:"total"`
}

func handleCollection(logger *slog.Logger, svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := 1
		if raw := r.URL.Query().Get("page"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "page must be a number")
				return
			}
			page = n
		}

		cp, err := svc.CollectionPage(r.Context(), userIDFrom(r), page)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		resp := CollectionResponse{
			Items:      make([]CollectionItemResponse, len(cp.Items)),
			Page:       cp.Page,
			TotalPages: cp.TotalPages,
			Collected:  cp.Collected,
			Total:      cp.Total,
		}
		for i, ci := range cp.Items {
			item := CollectionItemResponse{
				ID:        ci.Item.ID,
				Rarity:    ci.Item.Rarity.String(),
				Collected: ci.Collected,
			}
			// Uncollected titles stay hidden.
			if ci.Collected {
				item.Name = ci.Item.Name
				item.LocalName = ci.Item.LocalName
				item.TimesGuessed = ci.TimesGuessed
			}
			resp.Items[i] = item
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
