// Package animequiz defines the core domain types shared by the game
// packages. It has zero external dependencies.
package animequiz

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used for daily claims.
const DateLayout = time.DateOnly

type Rarity int

const (
	RarityCommon Rarity = iota
	RarityRare
	RarityEpic
	RarityLegendary
)

// Rarities lists every tier in ascending order.
var Rarities = []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}

func (r Rarity) String() string {
	switch r {
	case RarityCommon:
		return "common"
	case RarityRare:
		return "rare"
	case RarityEpic:
		return "epic"
	case RarityLegendary:
		return "legendary"
	}
	return fmt.Sprintf("rarity(%d)", int(r))
}

// ParseRarity is the inverse of Rarity.String.
func ParseRarity(s string) (Rarity, error) {
	for _, r := range Rarities {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown rarity %q", s)
}

type Quote struct {
	Text    string
	Speaker string
}

// Item is an immutable catalog entry.
type Item struct {
	ID        int
	MalID     int
	Name      string
	LocalName string
	Rarity    Rarity
	Quotes    []Quote
}

type Mode string

const (
	ModeImage  Mode = "image"
	ModeQuote  Mode = "quote"
	ModeRandom Mode = "random"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeImage, ModeQuote, ModeRandom:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Round is one open question awaiting a single answer. A stored round is
// never modified; it is removed on resolution or expiry.
type Round struct {
	ID           string
	UserID       int64
	Mode         Mode
	Correct      Item
	Options      []Item
	CorrectIndex int
	Quote        *Quote
	CreatedAt    time.Time
}

// Outcome is the result of resolving a round.
type Outcome struct {
	RoundID     string
	UserID      int64
	Mode        Mode
	Correct     Item
	ChosenIndex int
	IsCorrect   bool
	Elapsed     time.Duration
}

// Player is the durable progression record of one user.
type Player struct {
	UserID         int64
	Username       string
	FirstName      string
	XP             int
	CorrectAnswers int
	WrongAnswers   int
	Streak         int
	MaxStreak      int
	GamesPlayed    int
	CorrectByImage int
	CorrectByQuote int
	DailyStreak    int
	LastDaily      string
	LastPlayedAt   *time.Time
	JoinedAt       time.Time
}

// DisplayName picks the best available label for the player.
func (p Player) DisplayName() string {
	switch {
	case p.FirstName != "":
		return p.FirstName
	case p.Username != "":
		return p.Username
	}
	return fmt.Sprintf("ID:%d", p.UserID)
}

// Accuracy is the share of correct answers in percent, rounded to one
// decimal place.
func (p Player) Accuracy() float64 {
	total := p.CorrectAnswers + p.WrongAnswers
	if total == 0 {
		return 0
	}
	pct := float64(p.CorrectAnswers) / float64(total) * 100
	return float64(int(pct*10+0.5)) / 10
}

type CollectionEntry struct {
	UserID         int64
	ItemID         int
	FirstGuessedAt time.Time
	TimesGuessed   int
}

type AchievementUnlock struct {
	UserID        int64
	AchievementID string
	UnlockedAt    time.Time
}

type HistoryEntry struct {
	UserID    int64
	Mode      Mode
	ItemID    int
	IsCorrect bool
	XPEarned  int
	PlayedAt  time.Time
}
