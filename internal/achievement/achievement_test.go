package achievement

import (
	"testing"

	"github.com/playperu/animequiz/internal/animequiz"
)

func ids(defs []Definition) map[string]bool {
	m := make(map[string]bool, len(defs))
	for _, d := range defs {
		m[d.ID] = true
	}
	return m
}

func TestTableUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range All {
		if seen[d.ID] {
			t.Errorf("duplicate id %q", d.ID)
		}
		seen[d.ID] = true
		if d.RewardXP <= 0 {
			t.Errorf("%s: reward %d, want positive", d.ID, d.RewardXP)
		}
		if d.Check == nil {
			t.Errorf("%s: nil predicate", d.ID)
		}
	}
	if _, ok := ByID("perfect_10"); !ok {
		t.Error("perfect_10 missing")
	}
}

func TestEvaluateEmpty(t *testing.T) {
	if got := Evaluate(Facts{}, nil); len(got) != 0 {
		t.Errorf("fresh player satisfied %v", ids(got))
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		facts Facts
		want  []string
		not   []string
	}{
		{
			name:  "first win",
			facts: Facts{Player: animequiz.Player{CorrectAnswers: 1, GamesPlayed: 1, MaxStreak: 1, Streak: 1}},
			want:  []string{"first_win"},
			not:   []string{"correct_10", "perfect_10"},
		},
		{
			name:  "streak uses max streak",
			facts: Facts{Player: animequiz.Player{CorrectAnswers: 6, WrongAnswers: 1, GamesPlayed: 7, MaxStreak: 5}},
			want:  []string{"streak_5"},
			not:   []string{"streak_10"},
		},
		{
			name:  "perfect ten",
			facts: Facts{Player: animequiz.Player{CorrectAnswers: 10, GamesPlayed: 10, Streak: 10, MaxStreak: 10}},
			want:  []string{"perfect_10", "correct_10", "games_10", "streak_10"},
		},
		{
			name:  "not perfect after a miss",
			facts: Facts{Player: animequiz.Player{CorrectAnswers: 10, WrongAnswers: 1, GamesPlayed: 11}},
			not:   []string{"perfect_10"},
		},
		{
			name: "round flags",
			facts: Facts{
				Player: animequiz.Player{CorrectAnswers: 3, GamesPlayed: 3},
				Flags:  Flags{FastAnswer: true, LegendaryGuess: true},
			},
			want: []string{"speed_demon", "legendary_guess"},
		},
		{
			name: "all rarities",
			facts: Facts{
				CollectionCount: 4,
				Rarities: map[animequiz.Rarity]bool{
					animequiz.RarityCommon: true, animequiz.RarityRare: true,
					animequiz.RarityEpic: true, animequiz.RarityLegendary: true,
				},
			},
			want: []string{"all_rarities"},
			not:  []string{"collect_10"},
		},
		{
			name: "missing one rarity",
			facts: Facts{
				Rarities: map[animequiz.Rarity]bool{
					animequiz.RarityCommon: true, animequiz.RarityRare: true, animequiz.RarityEpic: true,
				},
			},
			not: []string{"all_rarities"},
		},
		{
			name:  "daily streak",
			facts: Facts{Player: animequiz.Player{DailyStreak: 7}},
			want:  []string{"daily_3", "daily_7"},
			not:   []string{"daily_30"},
		},
		{
			name:  "mode counters",
			facts: Facts{Player: animequiz.Player{CorrectByImage: 25, CorrectByQuote: 50}},
			want:  []string{"image_25", "quote_25", "quote_50"},
			not:   []string{"image_50"},
		},
		{
			name:  "collection",
			facts: Facts{CollectionCount: 30},
			want:  []string{"collect_10", "collect_30"},
			not:   []string{"collect_50"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Evaluate(tt.facts, nil))
			for _, id := range tt.want {
				if !got[id] {
					t.Errorf("%s not satisfied", id)
				}
			}
			for _, id := range tt.not {
				if got[id] {
					t.Errorf("%s unexpectedly satisfied", id)
				}
			}
		})
	}
}

func TestEvaluateSkipsUnlocked(t *testing.T) {
	f := Facts{Player: animequiz.Player{CorrectAnswers: 10, GamesPlayed: 10, MaxStreak: 10, Streak: 10}}
	first := Evaluate(f, nil)
	unlocked := ids(first)

	if again := Evaluate(f, unlocked); len(again) != 0 {
		t.Errorf("re-evaluation returned %v", ids(again))
	}
}
