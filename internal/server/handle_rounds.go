package server

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/animequiz/internal/animequiz"
	"github.com/playperu/animequiz/internal/game"
)

type OpenRoundRequest struct {
	Mode string `json:"mode" enum:"image,quote,random"`
}

type OptionResponse struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	LocalName string `json:"localName"`
}

type QuoteResponse struct {
	Text    string `json:"text"`
	Speaker string `json:"speaker,omitempty"`
}

type RoundResponse struct {
	RoundID   string           `json:"roundId"`
	Mode      string           `json:"mode"`
	Options   []OptionResponse `json:"options"`
	Quote     *QuoteResponse   `json:"quote,omitempty"`
	ImageURL  string           `json:"imageUrl,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

func handleOpenRound(logger *slog.Logger, svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OpenRoundRequest
		if err := readJSON(r, &req); err != nil && err != io.EOF {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Mode == "" {
			req.Mode = string(animequiz.ModeRandom)
		}
		mode, err := animequiz.ParseMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, "mode must be image, quote or random")
			return
		}

		v, err := svc.OpenRound(r.Context(), userIDFrom(r), mode)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		resp := RoundResponse{
			RoundID:   v.ID,
			Mode:      string(v.Mode),
			Options:   make([]OptionResponse, len(v.Options)),
			ImageURL:  v.ImageURL,
			CreatedAt: v.CreatedAt,
		}
		for i, it := range v.Options {
			resp.Options[i] = OptionResponse{Index: i, Name: it.Name, LocalName: it.LocalName}
		}
		if v.Quote != nil {
			resp.Quote = &QuoteResponse{Text: v.Quote.Text, Speaker: v.Quote.Speaker}
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

type AnswerRequest struct {
	UserID int64 `json:"userId"`
	Choice int   `json:"choice"`
}

type AnswerResponse struct {
	IsCorrect       bool                  `json:"isCorrect"`
	CorrectAnswer   ItemResponse          `json:"correctAnswer"`
	BaseXP          int                   `json:"baseXp"`
	StreakBonus     int                   `json:"streakBonus"`
	XPEarned        int                   `json:"xpEarned"`
	Streak          int                   `json:"streak"`
	TimesGuessed    int                   `json:"timesGuessed,omitempty"`
	NewAchievements []AchievementResponse `json:"newAchievements"`
	AchievementXP   int                   `json:"achievementXp"`
	XP              int                   `json:"xp"`
	Rank            string                `json:"rank"`
	RankUp          bool                  `json:"rankUp"`
}

func handleAnswer(logger *slog.Logger, svc *game.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.UserID <= 0 {
			writeError(w, http.StatusBadRequest, "userId is required")
			return
		}

		roundID := chi.URLParam(r, "roundID")
		res, err := svc.ResolveRound(r.Context(), roundID, req.UserID, req.Choice)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		resp := AnswerResponse{
			IsCorrect:       res.Outcome.IsCorrect,
			CorrectAnswer:   itemView(res.Outcome.Correct),
			BaseXP:          res.BaseXP,
			StreakBonus:     res.StreakBonus,
			XPEarned:        res.XPEarned(),
			Streak:          res.Player.Streak,
			TimesGuessed:    res.TimesGuessed,
			NewAchievements: achievementViews(res.Achievements),
			AchievementXP:   res.AchievementXP,
			XP:              res.Player.XP,
			Rank:            res.RankAfter.Name,
			RankUp:          res.RankUp(),
		}

		broker.Publish(req.UserID, SSEEvent{
			Type:      eventRoundResolved,
			RoundID:   roundID,
			IsCorrect: res.Outcome.IsCorrect,
			XP:        res.Player.XP,
			XPEarned:  res.XPEarned(),
		})
		publishAchievements(broker, req.UserID, resp.NewAchievements)

		writeJSON(w, http.StatusOK, resp)
	}
}

func publishAchievements(broker *Broker, userID int64, list []AchievementResponse) {
	for _, a := range list {
		broker.Publish(userID, SSEEvent{
			Type:          eventAchievementUnlocked,
			AchievementID: a.ID,
			Name:          a.Name,
			XPEarned:      a.RewardXP,
		})
	}
}
