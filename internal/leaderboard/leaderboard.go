// Package leaderboard mirrors player XP into a Redis sorted set so top-N and
// position reads do not hit SQLite. SQLite stays the source of truth; the
// mirror is rebuilt from it on startup with Sync.
package leaderboard

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const DefaultKey = "animequiz:leaderboard:xp"

// ErrNotRanked means the user has no entry in the mirror.
var ErrNotRanked = errors.New("user not ranked")

type Entry struct {
	UserID int64
	XP     int
}

type Mirror struct {
	client *redis.Client
	key    string
}

func New(client *redis.Client, key string) *Mirror {
	if key == "" {
		key = DefaultKey
	}
	return &Mirror{client: client, key: key}
}

func member(userID int64) string { return strconv.FormatInt(userID, 10) }

// Record sets the user's XP.
func (m *Mirror) Record(ctx context.Context, userID int64, xp int) error {
	return m.client.ZAdd(ctx, m.key, redis.Z{
		Score:  float64(xp),
		Member: member(userID),
	}).Err()
}

// Sync replaces the mirror contents with entries.
func (m *Mirror) Sync(ctx context.Context, entries []Entry) error {
	_, err := m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, m.key)
		for _, e := range entries {
			pipe.ZAdd(ctx, m.key, redis.Z{Score: float64(e.XP), Member: member(e.UserID)})
		}
		return nil
	})
	return err
}

// Top returns up to limit entries by XP descending, ties by ascending user
// id. Redis orders equal scores by reverse member bytes, so every member
// tied at the cut-off score is fetched and the slice is re-sorted.
func (m *Mirror) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	results, err := m.client.ZRevRangeWithScores(ctx, m.key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	cutoff := results[len(results)-1].Score
	bound := strconv.FormatFloat(cutoff, 'f', -1, 64)
	tied, err := m.client.ZRangeByScore(ctx, m.key, &redis.ZRangeBy{Min: bound, Max: bound}).Result()
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, r := range results {
		if r.Score == cutoff {
			continue
		}
		id, err := parseMember(r.Member)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{UserID: id, XP: int(r.Score)})
	}
	for _, mem := range tied {
		id, err := parseMember(mem)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{UserID: id, XP: int(cutoff)})
	}
	return rankEntries(entries, limit), nil
}

func parseMember(v any) (int64, error) {
	s, _ := v.(string)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad leaderboard member %v: %w", v, err)
	}
	return id, nil
}

// rankEntries sorts by XP descending then user id ascending and keeps the
// first limit entries.
func rankEntries(entries []Entry, limit int) []Entry {
	slices.SortFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(b.XP, a.XP); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// Position is 1 + the number of users with strictly more XP, so tied users
// share a position.
func (m *Mirror) Position(ctx context.Context, userID int64) (int, error) {
	score, err := m.client.ZScore(ctx, m.key, member(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotRanked
	}
	if err != nil {
		return 0, err
	}

	above, err := m.client.ZCount(ctx, m.key, "("+strconv.FormatFloat(score, 'f', -1, 64), "+inf").Result()
	if err != nil {
		return 0, err
	}
	return int(above) + 1, nil
}

func (m *Mirror) Check(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}
