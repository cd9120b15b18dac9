package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/playperu/animequiz/internal/animequiz"
)

const timeLayout = "2006-01-02T15:04:05.000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", animequiz.ErrPersistenceUnavailable, op, err)
}

type playerRow struct {
	UserID         int64          `db:"user_id"`
	Username       string         `db:"username"`
	FirstName      string         `db:"first_name"`
	XP             int            `db:"xp"`
	CorrectAnswers int            `db:"correct_answers"`
	WrongAnswers   int            `db:"wrong_answers"`
	Streak         int            `db:"streak"`
	MaxStreak      int            `db:"max_streak"`
	GamesPlayed    int            `db:"games_played"`
	CorrectByImage int            `db:"correct_by_image"`
	CorrectByQuote int            `db:"correct_by_quote"`
	DailyStreak    int            `db:"daily_streak"`
	LastDaily      string         `db:"last_daily"`
	LastPlayedAt   sql.NullString `db:"last_played_at"`
	JoinedAt       string         `db:"joined_at"`
}

const playerColumns = `user_id, username, first_name, xp, correct_answers, wrong_answers,
	streak, max_streak, games_played, correct_by_image, correct_by_quote,
	daily_streak, last_daily, last_played_at, joined_at`

func (r playerRow) player() animequiz.Player {
	p := animequiz.Player{
		UserID:         r.UserID,
		Username:       r.Username,
		FirstName:      r.FirstName,
		XP:             r.XP,
		CorrectAnswers: r.CorrectAnswers,
		WrongAnswers:   r.WrongAnswers,
		Streak:         r.Streak,
		MaxStreak:      r.MaxStreak,
		GamesPlayed:    r.GamesPlayed,
		CorrectByImage: r.CorrectByImage,
		CorrectByQuote: r.CorrectByQuote,
		DailyStreak:    r.DailyStreak,
		LastDaily:      r.LastDaily,
		JoinedAt:       parseTime(r.JoinedAt),
	}
	if r.LastPlayedAt.Valid {
		t := parseTime(r.LastPlayedAt.String)
		p.LastPlayedAt = &t
	}
	return p
}

type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		db:  sqlx.NewDb(db, "sqlite3"),
		now: time.Now,
	}
}

func (s *SQLiteStore) EnsurePlayer(ctx context.Context, userID int64, username, firstName string) (animequiz.Player, error) {
	var row playerRow
	err := s.db.GetContext(ctx, &row, `
		INSERT INTO players (user_id, username, first_name, joined_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name
		RETURNING `+playerColumns,
		userID, username, firstName, formatTime(s.now()))
	if err != nil {
		return animequiz.Player{}, unavailable("ensuring player", err)
	}
	return row.player(), nil
}

func (s *SQLiteStore) Player(ctx context.Context, userID int64) (animequiz.Player, error) {
	var row playerRow
	err := s.db.GetContext(ctx, &row, `SELECT `+playerColumns+` FROM players WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return animequiz.Player{}, animequiz.ErrPlayerNotFound
	}
	if err != nil {
		return animequiz.Player{}, unavailable("loading player", err)
	}
	return row.player(), nil
}

func (s *SQLiteStore) Players(ctx context.Context, userIDs []int64) ([]animequiz.Player, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+playerColumns+` FROM players WHERE user_id IN (?)`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("building players query: %w", err)
	}
	var rows []playerRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, unavailable("loading players", err)
	}
	return toPlayers(rows), nil
}

func (s *SQLiteStore) Leaderboard(ctx context.Context, limit int) ([]animequiz.Player, error) {
	var rows []playerRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+playerColumns+` FROM players
		ORDER BY xp DESC, user_id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, unavailable("loading leaderboard", err)
	}
	return toPlayers(rows), nil
}

func (s *SQLiteStore) Position(ctx context.Context, userID int64) (int, error) {
	var pos int
	err := s.db.GetContext(ctx, &pos, `
		SELECT (SELECT COUNT(*) FROM players o WHERE o.xp > p.xp) + 1
		FROM players p WHERE p.user_id = ?
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, animequiz.ErrPlayerNotFound
	}
	if err != nil {
		return 0, unavailable("loading position", err)
	}
	return pos, nil
}

func (s *SQLiteStore) Achievements(ctx context.Context, userID int64) ([]animequiz.AchievementUnlock, error) {
	var rows []struct {
		AchievementID string `db:"achievement_id"`
		UnlockedAt    string `db:"unlocked_at"`
	}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT achievement_id, unlocked_at FROM achievements
		WHERE user_id = ?
		ORDER BY unlocked_at, achievement_id
	`, userID)
	if err != nil {
		return nil, unavailable("loading achievements", err)
	}

	out := make([]animequiz.AchievementUnlock, len(rows))
	for i, r := range rows {
		out[i] = animequiz.AchievementUnlock{
			UserID:        userID,
			AchievementID: r.AchievementID,
			UnlockedAt:    parseTime(r.UnlockedAt),
		}
	}
	return out, nil
}

func (s *SQLiteStore) Collection(ctx context.Context, userID int64) ([]animequiz.CollectionEntry, error) {
	var rows []struct {
		ItemID         int    `db:"item_id"`
		FirstGuessedAt string `db:"first_guessed_at"`
		TimesGuessed   int    `db:"times_guessed"`
	}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT item_id, first_guessed_at, times_guessed FROM collection
		WHERE user_id = ?
		ORDER BY first_guessed_at, item_id
	`, userID)
	if err != nil {
		return nil, unavailable("loading collection", err)
	}

	out := make([]animequiz.CollectionEntry, len(rows))
	for i, r := range rows {
		out[i] = animequiz.CollectionEntry{
			UserID:         userID,
			ItemID:         r.ItemID,
			FirstGuessedAt: parseTime(r.FirstGuessedAt),
			TimesGuessed:   r.TimesGuessed,
		}
	}
	return out, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Update(ctx context.Context, userID int64, fn func(Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return unavailable("beginning transaction", err)
	}
	defer tx.Rollback()

	if err := fn(&sqliteTx{tx: tx, userID: userID, now: s.now}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return unavailable("committing transaction", err)
	}
	return nil
}

func toPlayers(rows []playerRow) []animequiz.Player {
	out := make([]animequiz.Player, len(rows))
	for i, r := range rows {
		out[i] = r.player()
	}
	return out
}

type sqliteTx struct {
	tx     *sqlx.Tx
	userID int64
	now    func() time.Time
}

func (t *sqliteTx) Player(ctx context.Context) (animequiz.Player, error) {
	// The insert takes SQLite's write lock before the read, so a concurrent
	// update for the same user cannot interleave.
	if _, err := t.tx.ExecContext(ctx, `
		INSERT INTO players (user_id, joined_at) VALUES (?, ?)
		ON CONFLICT (user_id) DO NOTHING
	`, t.userID, formatTime(t.now())); err != nil {
		return animequiz.Player{}, unavailable("creating player", err)
	}

	var row playerRow
	if err := t.tx.GetContext(ctx, &row, `SELECT `+playerColumns+` FROM players WHERE user_id = ?`, t.userID); err != nil {
		return animequiz.Player{}, unavailable("loading player", err)
	}
	return row.player(), nil
}

func (t *sqliteTx) SavePlayer(ctx context.Context, p animequiz.Player) error {
	var lastPlayed sql.NullString
	if p.LastPlayedAt != nil {
		lastPlayed = sql.NullString{String: formatTime(*p.LastPlayedAt), Valid: true}
	}
	_, err := t.tx.ExecContext(ctx, `
		UPDATE players SET
			xp = ?, correct_answers = ?, wrong_answers = ?,
			streak = ?, max_streak = ?, games_played = ?,
			correct_by_image = ?, correct_by_quote = ?,
			daily_streak = ?, last_daily = ?, last_played_at = ?
		WHERE user_id = ?
	`, p.XP, p.CorrectAnswers, p.WrongAnswers,
		p.Streak, p.MaxStreak, p.GamesPlayed,
		p.CorrectByImage, p.CorrectByQuote,
		p.DailyStreak, p.LastDaily, lastPlayed,
		t.userID)
	if err != nil {
		return unavailable("saving player", err)
	}
	return nil
}

func (t *sqliteTx) AddCollection(ctx context.Context, itemID int, at time.Time) (int, error) {
	var times int
	err := t.tx.GetContext(ctx, &times, `
		INSERT INTO collection (user_id, item_id, first_guessed_at, times_guessed)
		VALUES (?, ?, ?, 1)
		ON CONFLICT (user_id, item_id) DO UPDATE SET times_guessed = times_guessed + 1
		RETURNING times_guessed
	`, t.userID, itemID, formatTime(at))
	if err != nil {
		return 0, unavailable("updating collection", err)
	}
	return times, nil
}

func (t *sqliteTx) AppendHistory(ctx context.Context, h animequiz.HistoryEntry) error {
	isCorrect := 0
	if h.IsCorrect {
		isCorrect = 1
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO game_history (user_id, mode, item_id, is_correct, xp_earned, played_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.userID, string(h.Mode), h.ItemID, isCorrect, h.XPEarned, formatTime(h.PlayedAt))
	if err != nil {
		return unavailable("appending history", err)
	}
	return nil
}

func (t *sqliteTx) CollectedItems(ctx context.Context) ([]int, error) {
	var ids []int
	if err := t.tx.SelectContext(ctx, &ids, `SELECT item_id FROM collection WHERE user_id = ?`, t.userID); err != nil {
		return nil, unavailable("loading collection", err)
	}
	return ids, nil
}

func (t *sqliteTx) UnlockedAchievements(ctx context.Context) (map[string]bool, error) {
	var ids []string
	if err := t.tx.SelectContext(ctx, &ids, `SELECT achievement_id FROM achievements WHERE user_id = ?`, t.userID); err != nil {
		return nil, unavailable("loading achievements", err)
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (t *sqliteTx) Unlock(ctx context.Context, achievementID string, at time.Time) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO achievements (user_id, achievement_id, unlocked_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`, t.userID, achievementID, formatTime(at))
	if err != nil {
		return false, unavailable("unlocking achievement", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("unlocking achievement", err)
	}
	return n == 1, nil
}
