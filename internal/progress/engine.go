// Package progress applies round outcomes and daily claims to the durable
// player record: XP, streaks, collection, history and achievements.
package progress

import (
	"context"
	"log/slog"
	"time"

	"github.com/playperu/animequiz/internal/achievement"
	"github.com/playperu/animequiz/internal/animequiz"
	"github.com/playperu/animequiz/internal/catalog"
)

type Engine struct {
	store  Store
	cat    *catalog.Catalog
	rules  Rules
	now    func() time.Time
	logger *slog.Logger
}

func NewEngine(store Store, cat *catalog.Catalog, rules Rules, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		cat:    cat,
		rules:  rules,
		now:    time.Now,
		logger: logger,
	}
}

// Result describes what one resolution changed.
type Result struct {
	Outcome     animequiz.Outcome
	BaseXP      int
	StreakBonus int
	// TimesGuessed is the collection counter after a correct answer, 0
	// otherwise.
	TimesGuessed  int
	Achievements  []achievement.Definition
	AchievementXP int
	Player        animequiz.Player
	RankBefore    Rank
	RankAfter     Rank
}

// XPEarned is the answer reward without achievement rewards.
func (r Result) XPEarned() int { return r.BaseXP + r.StreakBonus }

func (r Result) RankUp() bool { return r.RankAfter.MinXP > r.RankBefore.MinXP }

// Apply records out for its user in a single transaction. On error nothing
// is written.
func (e *Engine) Apply(ctx context.Context, out animequiz.Outcome) (Result, error) {
	res := Result{Outcome: out}

	err := e.store.Update(ctx, out.UserID, func(tx Tx) error {
		p, err := tx.Player(ctx)
		if err != nil {
			return err
		}
		res.RankBefore = RankFor(p.XP)

		now := e.now().UTC()
		var flags achievement.Flags

		p.GamesPlayed++
		p.LastPlayedAt = &now
		if out.IsCorrect {
			res.BaseXP, res.StreakBonus = e.rules.Reward(out.Correct.Rarity, p.Streak)
			p.CorrectAnswers++
			p.Streak++
			p.MaxStreak = max(p.MaxStreak, p.Streak)
			switch out.Mode {
			case animequiz.ModeImage:
				p.CorrectByImage++
			case animequiz.ModeQuote:
				p.CorrectByQuote++
			}
			p.XP += res.XPEarned()

			if res.TimesGuessed, err = tx.AddCollection(ctx, out.Correct.ID, now); err != nil {
				return err
			}
			flags.FastAnswer = e.rules.Fast(out.Elapsed)
			flags.LegendaryGuess = out.Correct.Rarity == animequiz.RarityLegendary
		} else {
			p.WrongAnswers++
			p.Streak = 0
		}

		err = tx.AppendHistory(ctx, animequiz.HistoryEntry{
			UserID:    out.UserID,
			Mode:      out.Mode,
			ItemID:    out.Correct.ID,
			IsCorrect: out.IsCorrect,
			XPEarned:  res.XPEarned(),
			PlayedAt:  now,
		})
		if err != nil {
			return err
		}

		if res.Achievements, res.AchievementXP, err = e.unlock(ctx, tx, &p, flags, now); err != nil {
			return err
		}
		if err := tx.SavePlayer(ctx, p); err != nil {
			return err
		}

		res.Player = p
		res.RankAfter = RankFor(p.XP)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	e.logger.Debug("outcome applied",
		"user_id", out.UserID,
		"round_id", out.RoundID,
		"correct", out.IsCorrect,
		"xp", res.XPEarned()+res.AchievementXP,
		"achievements", len(res.Achievements),
	)
	return res, nil
}

// Grant describes a successful daily claim.
type Grant struct {
	Base          int
	TierBonus     int
	DailyStreak   int
	Achievements  []achievement.Definition
	AchievementXP int
	Player        animequiz.Player
}

func (g Grant) Total() int { return g.Base + g.TierBonus }

// ClaimDaily grants the daily bonus for the calendar date of today. Only the
// date part of today is used, in today's location. A second claim on the
// same date returns animequiz.ErrAlreadyClaimed and changes nothing.
func (e *Engine) ClaimDaily(ctx context.Context, userID int64, today time.Time) (Grant, error) {
	date := today.Format(animequiz.DateLayout)
	yesterday := today.AddDate(0, 0, -1).Format(animequiz.DateLayout)

	var g Grant
	err := e.store.Update(ctx, userID, func(tx Tx) error {
		p, err := tx.Player(ctx)
		if err != nil {
			return err
		}
		if p.LastDaily == date {
			return animequiz.ErrAlreadyClaimed
		}

		if p.LastDaily == yesterday {
			p.DailyStreak++
		} else {
			p.DailyStreak = 1
		}
		p.LastDaily = date

		g.Base, g.TierBonus = e.rules.Daily(p.DailyStreak)
		g.DailyStreak = p.DailyStreak
		p.XP += g.Total()

		if g.Achievements, g.AchievementXP, err = e.unlock(ctx, tx, &p, achievement.Flags{}, e.now().UTC()); err != nil {
			return err
		}
		if err := tx.SavePlayer(ctx, p); err != nil {
			return err
		}
		g.Player = p
		return nil
	})
	if err != nil {
		return Grant{}, err
	}
	return g, nil
}

// unlock evaluates the achievement table against p, writes every new unlock
// and adds its reward to p. An unlock that another writer already stored is
// skipped without reward.
func (e *Engine) unlock(ctx context.Context, tx Tx, p *animequiz.Player, flags achievement.Flags, now time.Time) ([]achievement.Definition, int, error) {
	items, err := tx.CollectedItems(ctx)
	if err != nil {
		return nil, 0, err
	}
	unlocked, err := tx.UnlockedAchievements(ctx)
	if err != nil {
		return nil, 0, err
	}

	facts := achievement.Facts{
		Player:          *p,
		CollectionCount: len(items),
		Rarities:        make(map[animequiz.Rarity]bool),
		Flags:           flags,
	}
	for _, id := range items {
		if it, ok := e.cat.ByID(id); ok {
			facts.Rarities[it.Rarity] = true
		}
	}

	var granted []achievement.Definition
	xp := 0
	for _, d := range achievement.Evaluate(facts, unlocked) {
		ok, err := tx.Unlock(ctx, d.ID, now)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			continue
		}
		p.XP += d.RewardXP
		xp += d.RewardXP
		granted = append(granted, d)
	}
	return granted, xp, nil
}
