package game

import (
	"context"
	"time"

	"github.com/playperu/animequiz/internal/achievement"
	"github.com/playperu/animequiz/internal/animequiz"
	"github.com/playperu/animequiz/internal/progress"
)

const (
	DefaultLeaderboardLimit = 10
	CollectionPageSize      = 15
)

type Profile struct {
	Player           animequiz.Player
	Rank             progress.Rank
	NextRank         *progress.Rank
	RankProgress     float64
	Accuracy         float64
	Position         int
	CollectionCount  int
	CatalogSize      int
	AchievementCount int
	AchievementTotal int
}

func (s *Service) Profile(ctx context.Context, userID int64) (Profile, error) {
	p, err := s.store.Player(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	coll, err := s.store.Collection(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	unlocks, err := s.store.Achievements(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	pos, err := s.store.Position(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	prof := Profile{
		Player:           p,
		Rank:             progress.RankFor(p.XP),
		RankProgress:     progress.RankProgress(p.XP),
		Accuracy:         p.Accuracy(),
		Position:         pos,
		CollectionCount:  len(coll),
		CatalogSize:      s.cat.Len(),
		AchievementCount: len(unlocks),
		AchievementTotal: len(achievement.All),
	}
	if next, ok := progress.NextRank(p.XP); ok {
		prof.NextRank = &next
	}
	return prof, nil
}

type Leaderboard struct {
	Top []animequiz.Player
	// Position of the asking user, 0 if unknown.
	Position int
}

// Leaderboard returns the top players. The ranking mirror is preferred when
// configured; any mirror failure falls back to the store.
func (s *Service) Leaderboard(ctx context.Context, userID int64, limit int) (Leaderboard, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	if s.ranking != nil {
		lb, err := s.mirroredLeaderboard(ctx, userID, limit)
		if err == nil {
			return lb, nil
		}
		s.logger.Warn("leaderboard mirror unavailable", "error", err)
	}

	top, err := s.store.Leaderboard(ctx, limit)
	if err != nil {
		return Leaderboard{}, err
	}
	lb := Leaderboard{Top: top}
	if userID != 0 {
		pos, err := s.store.Position(ctx, userID)
		if err != nil && !isNotFound(err) {
			return Leaderboard{}, err
		}
		lb.Position = pos
	}
	return lb, nil
}

func (s *Service) mirroredLeaderboard(ctx context.Context, userID int64, limit int) (Leaderboard, error) {
	entries, err := s.ranking.Top(ctx, limit)
	if err != nil {
		return Leaderboard{}, err
	}
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	players, err := s.store.Players(ctx, ids)
	if err != nil {
		return Leaderboard{}, err
	}
	byID := make(map[int64]animequiz.Player, len(players))
	for _, p := range players {
		byID[p.UserID] = p
	}

	lb := Leaderboard{Top: make([]animequiz.Player, 0, len(entries))}
	for _, e := range entries {
		if p, ok := byID[e.UserID]; ok {
			lb.Top = append(lb.Top, p)
		}
	}
	if userID != 0 {
		pos, err := s.ranking.Position(ctx, userID)
		if err != nil && !isNotFound(err) {
			return Leaderboard{}, err
		}
		lb.Position = pos
	}
	return lb, nil
}

type AchievementStatus struct {
	Definition achievement.Definition
	Unlocked   bool
	UnlockedAt time.Time
}

// Achievements lists the whole table with the user's unlocks.
func (s *Service) Achievements(ctx context.Context, userID int64) ([]AchievementStatus, error) {
	unlocks, err := s.store.Achievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	at := make(map[string]time.Time, len(unlocks))
	for _, u := range unlocks {
		at[u.AchievementID] = u.UnlockedAt
	}

	out := make([]AchievementStatus, len(achievement.All))
	for i, d := range achievement.All {
		t, ok := at[d.ID]
		out[i] = AchievementStatus{Definition: d, Unlocked: ok, UnlockedAt: t}
	}
	return out, nil
}

type CollectionItem struct {
	Item           animequiz.Item
	Collected      bool
	TimesGuessed   int
	FirstGuessedAt time.Time
}

type CollectionPage struct {
	Items      []CollectionItem
	Page       int
	TotalPages int
	Collected  int
	Total      int
}

// CollectionPage pages through the whole catalog in catalog order. page is
// clamped to [1, TotalPages].
func (s *Service) CollectionPage(ctx context.Context, userID int64, page int) (CollectionPage, error) {
	entries, err := s.store.Collection(ctx, userID)
	if err != nil {
		return CollectionPage{}, err
	}
	byItem := make(map[int]animequiz.CollectionEntry, len(entries))
	for _, e := range entries {
		byItem[e.ItemID] = e
	}

	items := s.cat.Items()
	totalPages := max(1, (len(items)+CollectionPageSize-1)/CollectionPageSize)
	page = min(max(page, 1), totalPages)

	start := (page - 1) * CollectionPageSize
	end := min(start+CollectionPageSize, len(items))

	cp := CollectionPage{
		Page:       page,
		TotalPages: totalPages,
		Collected:  len(entries),
		Total:      len(items),
	}
	for _, it := range items[start:end] {
		ci := CollectionItem{Item: it}
		if e, ok := byItem[it.ID]; ok {
			ci.Collected = true
			ci.TimesGuessed = e.TimesGuessed
			ci.FirstGuessedAt = e.FirstGuessedAt
		}
		cp.Items = append(cp.Items, ci)
	}
	return cp, nil
}
