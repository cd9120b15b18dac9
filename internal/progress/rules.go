package progress

import (
	"time"

	"github.com/playperu/animequiz/internal/animequiz"
	"github.com/playperu/animequiz/internal/catalog"
)

// Rules are the tunable reward parameters.
type Rules struct {
	StreakBonusXP  int
	MaxStreakBonus int
	SpeedBonusTime time.Duration
	DailyBonusXP   int
}

func DefaultRules() Rules {
	return Rules{
		StreakBonusXP:  2,
		MaxStreakBonus: 20,
		SpeedBonusTime: 5 * time.Second,
		DailyBonusXP:   25,
	}
}

// Reward returns the base points and streak bonus for a correct answer by a
// player whose streak was oldStreak before the answer.
func (r Rules) Reward(rarity animequiz.Rarity, oldStreak int) (base, bonus int) {
	newStreak := oldStreak + 1
	return catalog.PointsFor(rarity), min(newStreak*r.StreakBonusXP, r.MaxStreakBonus)
}

// Daily returns the base and tier bonus granted at the given daily streak.
func (r Rules) Daily(dailyStreak int) (base, tier int) {
	switch {
	case dailyStreak >= 7:
		tier = 50
	case dailyStreak >= 3:
		tier = 15
	}
	return r.DailyBonusXP, tier
}

// Fast reports whether elapsed falls inside the speed window.
func (r Rules) Fast(elapsed time.Duration) bool {
	return elapsed <= r.SpeedBonusTime
}
