package server

import (
	"time"

	"github.com/playperu/animequiz/internal/achievement"
	"github.com/playperu/animequiz/internal/animequiz"
	"github.com/playperu/animequiz/internal/progress"
)

type ItemResponse struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	LocalName string `json:"localName"`
	Rarity    string `json:"rarity"`
}

func itemView(it animequiz.Item) ItemResponse {
	return ItemResponse{
		ID:        it.ID,
		Name:      it.Name,
		LocalName: it.LocalName,
		Rarity:    it.Rarity.String(),
	}
}

type PlayerResponse struct {
	UserID         int64      `json:"userId"`
	DisplayName    string     `json:"displayName"`
	Username       string     `json:"username,omitempty"`
	FirstName      string     `json:"firstName,omitempty"`
	XP             int        `json:"xp"`
	CorrectAnswers int        `json:"correctAnswers"`
	WrongAnswers   int        `json:"wrongAnswers"`
	Streak         int        `json:"streak"`
	MaxStreak      int        `json:"maxStreak"`
	GamesPlayed    int        `json:"gamesPlayed"`
	CorrectByImage int        `json:"correctByImage"`
	CorrectByQuote int        `json:"correctByQuote"`
	DailyStreak    int        `json:"dailyStreak"`
	LastDaily      string     `json:"lastDaily,omitempty"`
	LastPlayedAt   *time.Time `json:"lastPlayedAt,omitempty"`
	JoinedAt       time.Time  `json:"joinedAt"`
	Rank           string     `json:"rank"`
}

func playerView(p animequiz.Player) PlayerResponse {
	return PlayerResponse{
		UserID:         p.UserID,
		DisplayName:    p.DisplayName(),
		Username:       p.Username,
		FirstName:      p.FirstName,
		XP:             p.XP,
		CorrectAnswers: p.CorrectAnswers,
		WrongAnswers:   p.WrongAnswers,
		Streak:         p.Streak,
		MaxStreak:      p.MaxStreak,
		GamesPlayed:    p.GamesPlayed,
		CorrectByImage: p.CorrectByImage,
		CorrectByQuote: p.CorrectByQuote,
		DailyStreak:    p.DailyStreak,
		LastDaily:      p.LastDaily,
		LastPlayedAt:   p.LastPlayedAt,
		JoinedAt:       p.JoinedAt,
		Rank:           progress.RankFor(p.XP).Name,
	}
}

type AchievementResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	RewardXP    int        `json:"rewardXp"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
}

func achievementView(d achievement.Definition) AchievementResponse {
	return AchievementResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Icon:        d.Icon,
		RewardXP:    d.RewardXP,
		Unlocked:    true,
	}
}

func achievementViews(defs []achievement.Definition) []AchievementResponse {
	out := make([]AchievementResponse, len(defs))
	for i, d := range defs {
		out[i] = achievementView(d)
	}
	return out
}
