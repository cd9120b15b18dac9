// Package achievement declares the achievement table and evaluates it against
// a player's progression facts.
//
// Every predicate is monotone: once it holds for a player it keeps holding,
// except perfect_10 which can become false again after a wrong answer. An
// unlock is never revoked either way.
package achievement

import "github.com/playperu/animequiz/internal/animequiz"

// Flags are one-shot facts about the round just resolved. They are never
// persisted.
type Flags struct {
	FastAnswer     bool
	LegendaryGuess bool
}

// Facts is everything a predicate may look at.
type Facts struct {
	Player          animequiz.Player
	CollectionCount int
	Rarities        map[animequiz.Rarity]bool
	Flags           Flags
}

type Definition struct {
	ID          string
	Name        string
	Description string
	Icon        string
	RewardXP    int
	Check       func(Facts) bool
}

func correctAtLeast(n int) func(Facts) bool {
	return func(f Facts) bool { return f.Player.CorrectAnswers >= n }
}

func streakAtLeast(n int) func(Facts) bool {
	return func(f Facts) bool { return f.Player.MaxStreak >= n }
}

func gamesAtLeast(n int) func(Facts) bool {
	return func(f Facts) bool { return f.Player.GamesPlayed >= n }
}

func imageAtLeast(n int) func(Facts) bool {
	return func(f Facts) bool { return f.Player.CorrectByImage >= n }
}

func quoteAtLeast(n int) func(Facts) bool {
	return func(f Facts) bool { return f.Player.CorrectByQuote >= n }
}

func dailyAtLeast(n int) func(Facts) bool {
	return func(f Facts) bool { return f.Player.DailyStreak >= n }
}

func collectionAtLeast(n int) func(Facts) bool {
	return func(f Facts) bool { return f.CollectionCount >= n }
}

func allRarities(f Facts) bool {
	for _, r := range animequiz.Rarities {
		if !f.Rarities[r] {
			return false
		}
	}
	return true
}

func perfect(f Facts) bool {
	p := f.Player
	return p.CorrectAnswers+p.WrongAnswers >= 10 && p.WrongAnswers == 0
}

// All is the achievement table in display order.
var All = []Definition{
	{"first_win", "First blood", "Guess your first anime", "🎯", 10, correctAtLeast(1)},
	{"correct_10", "Getting warmer", "Guess 10 anime", "🔟", 25, correctAtLeast(10)},
	{"correct_50", "Connoisseur", "Guess 50 anime", "📺", 75, correctAtLeast(50)},
	{"correct_100", "Encyclopedia", "Guess 100 anime", "📚", 150, correctAtLeast(100)},
	{"correct_200", "Living archive", "Guess 200 anime", "🏛", 300, correctAtLeast(200)},
	{"streak_5", "On fire", "Reach a streak of 5", "🔥", 30, streakAtLeast(5)},
	{"streak_10", "Unstoppable", "Reach a streak of 10", "⚡", 75, streakAtLeast(10)},
	{"streak_20", "Limit breaker", "Reach a streak of 20", "💥", 200, streakAtLeast(20)},
	{"games_10", "Regular", "Play 10 rounds", "🎮", 15, gamesAtLeast(10)},
	{"games_100", "Veteran", "Play 100 rounds", "🕹", 100, gamesAtLeast(100)},
	{"games_500", "No life", "Play 500 rounds", "👾", 400, gamesAtLeast(500)},
	{"image_25", "Sharp eye", "Guess 25 anime by image", "👁", 50, imageAtLeast(25)},
	{"image_50", "Eagle eye", "Guess 50 anime by image", "🦅", 120, imageAtLeast(50)},
	{"quote_25", "Good listener", "Guess 25 anime by quote", "💬", 50, quoteAtLeast(25)},
	{"quote_50", "Quote master", "Guess 50 anime by quote", "📜", 120, quoteAtLeast(50)},
	{"daily_3", "Habit", "Claim the daily bonus 3 days in a row", "📅", 20, dailyAtLeast(3)},
	{"daily_7", "Weekly ritual", "Claim the daily bonus 7 days in a row", "🗓", 60, dailyAtLeast(7)},
	{"daily_30", "Devotee", "Claim the daily bonus 30 days in a row", "🏮", 300, dailyAtLeast(30)},
	{"speed_demon", "Speed demon", "Answer correctly within the speed window", "⏱", 25, func(f Facts) bool { return f.Flags.FastAnswer }},
	{"legendary_guess", "Legend hunter", "Guess a legendary anime", "👑", 40, func(f Facts) bool { return f.Flags.LegendaryGuess }},
	{"collect_10", "Collector", "Collect 10 anime", "🗃", 40, collectionAtLeast(10)},
	{"collect_30", "Curator", "Collect 30 anime", "🖼", 120, collectionAtLeast(30)},
	{"collect_50", "Museum", "Collect 50 anime", "🏯", 250, collectionAtLeast(50)},
	{"all_rarities", "Full spectrum", "Collect an anime of every rarity", "🌈", 100, allRarities},
	{"perfect_10", "Flawless", "Play 10 rounds without a single mistake", "💎", 100, perfect},
}

var byID = func() map[string]Definition {
	m := make(map[string]Definition, len(All))
	for _, d := range All {
		m[d.ID] = d
	}
	return m
}()

func ByID(id string) (Definition, bool) {
	d, ok := byID[id]
	return d, ok
}

// Evaluate returns the definitions whose predicate holds for f and whose id
// is not in unlocked, in table order. It is pure and safe to call
// repeatedly.
func Evaluate(f Facts, unlocked map[string]bool) []Definition {
	var out []Definition
	for _, d := range All {
		if unlocked[d.ID] {
			continue
		}
		if d.Check(f) {
			out = append(out, d)
		}
	}
	return out
}
