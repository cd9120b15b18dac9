package progress

import (
	"context"
	"time"

	"github.com/playperu/animequiz/internal/animequiz"
)

// Store persists progression records. Every error other than
// animequiz.ErrPlayerNotFound wraps animequiz.ErrPersistenceUnavailable.
type Store interface {
	// EnsurePlayer creates the record or refreshes its display metadata.
	EnsurePlayer(ctx context.Context, userID int64, username, firstName string) (animequiz.Player, error)
	Player(ctx context.Context, userID int64) (animequiz.Player, error)
	Players(ctx context.Context, userIDs []int64) ([]animequiz.Player, error)

	// Update runs fn in one transaction scoped to userID. Concurrent updates
	// for the same user serialize. If fn returns an error nothing is
	// written and that error is returned unchanged.
	Update(ctx context.Context, userID int64, fn func(Tx) error) error

	// Leaderboard orders players by XP descending. A negative limit returns
	// every player.
	Leaderboard(ctx context.Context, limit int) ([]animequiz.Player, error)
	// Position is 1 + the number of players with strictly more XP.
	Position(ctx context.Context, userID int64) (int, error)
	Achievements(ctx context.Context, userID int64) ([]animequiz.AchievementUnlock, error)
	Collection(ctx context.Context, userID int64) ([]animequiz.CollectionEntry, error)

	Ping(ctx context.Context) error
}

// Tx is a transaction bound to one user.
type Tx interface {
	// Player returns the user's record, creating a bare one if missing.
	Player(ctx context.Context) (animequiz.Player, error)
	SavePlayer(ctx context.Context, p animequiz.Player) error
	// AddCollection records a correct guess of itemID and returns the new
	// times-guessed count, 1 on first guess.
	AddCollection(ctx context.Context, itemID int, at time.Time) (int, error)
	AppendHistory(ctx context.Context, h animequiz.HistoryEntry) error
	CollectedItems(ctx context.Context) ([]int, error)
	UnlockedAchievements(ctx context.Context) (map[string]bool, error)
	// Unlock writes the unlock once. It reports false when the achievement
	// was already unlocked.
	Unlock(ctx context.Context, achievementID string, at time.Time) (bool, error)
}
