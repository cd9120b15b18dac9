package progress

import (
	"testing"
	"time"

	"github.com/playperu/animequiz/internal/animequiz"
)

func TestReward(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		rarity    animequiz.Rarity
		oldStreak int
		wantBase  int
		wantBonus int
	}{
		{animequiz.RarityCommon, 0, 10, 2},
		{animequiz.RarityRare, 2, 20, 6},
		{animequiz.RarityLegendary, 4, 50, 10},
		{animequiz.RarityEpic, 9, 30, 20},
		{animequiz.RarityEpic, 40, 30, 20},
	}
	for _, tt := range tests {
		base, bonus := r.Reward(tt.rarity, tt.oldStreak)
		if base != tt.wantBase || bonus != tt.wantBonus {
			t.Errorf("Reward(%s, %d) = %d, %d; want %d, %d",
				tt.rarity, tt.oldStreak, base, bonus, tt.wantBase, tt.wantBonus)
		}
	}
}

func TestDaily(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		streak, wantTier int
	}{
		{1, 0}, {2, 0}, {3, 15}, {6, 15}, {7, 50}, {30, 50},
	}
	for _, tt := range tests {
		base, tier := r.Daily(tt.streak)
		if base != 25 || tier != tt.wantTier {
			t.Errorf("Daily(%d) = %d, %d; want 25, %d", tt.streak, base, tier, tt.wantTier)
		}
	}
}

func TestFast(t *testing.T) {
	r := DefaultRules()
	if !r.Fast(5 * time.Second) {
		t.Error("5s should be inside the window")
	}
	if r.Fast(5*time.Second + time.Millisecond) {
		t.Error("5.001s should be outside the window")
	}
}

func TestRanks(t *testing.T) {
	tests := []struct {
		xp       int
		want     string
		next     string
		progress float64
	}{
		{0, "Novice", "Otaku-in-training", 0},
		{50, "Novice", "Otaku-in-training", 0.5},
		{100, "Otaku-in-training", "Otaku", 0},
		{700, "Weeb", "Senpai", 0},
		{12000, "Anime God", "", 1},
	}
	for _, tt := range tests {
		if got := RankFor(tt.xp); got.Name != tt.want {
			t.Errorf("RankFor(%d) = %q, want %q", tt.xp, got.Name, tt.want)
		}
		next, ok := NextRank(tt.xp)
		if ok != (tt.next != "") || next.Name != tt.next {
			t.Errorf("NextRank(%d) = %q, %v; want %q", tt.xp, next.Name, ok, tt.next)
		}
		if got := RankProgress(tt.xp); got != tt.progress {
			t.Errorf("RankProgress(%d) = %v, want %v", tt.xp, got, tt.progress)
		}
	}
}
