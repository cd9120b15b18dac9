package progress

type Rank struct {
	Name  string `json:"name"`
	MinXP int    `json:"minXp"`
}

// Ranks is ordered by MinXP ascending.
var Ranks = []Rank{
	{"Novice", 0},
	{"Otaku-in-training", 100},
	{"Otaku", 300},
	{"Weeb", 700},
	{"Senpai", 1500},
	{"Sensei", 3000},
	{"Hokage", 6000},
	{"Anime God", 10000},
}

// RankFor returns the highest rank whose threshold xp reaches.
func RankFor(xp int) Rank {
	rank := Ranks[0]
	for _, r := range Ranks {
		if xp >= r.MinXP {
			rank = r
		}
	}
	return rank
}

// NextRank returns the rank after the one xp holds, or false at the top.
func NextRank(xp int) (Rank, bool) {
	for _, r := range Ranks {
		if r.MinXP > xp {
			return r, true
		}
	}
	return Rank{}, false
}

// RankProgress is the fraction in [0, 1] of the way from the current rank
// to the next one. It is 1 at the top rank.
func RankProgress(xp int) float64 {
	cur := RankFor(xp)
	next, ok := NextRank(xp)
	if !ok {
		return 1
	}
	return float64(xp-cur.MinXP) / float64(next.MinXP-cur.MinXP)
}
