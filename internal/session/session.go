// Package session keeps the in-memory table of open rounds.
//
// Rounds live only in process memory. Expired rounds are purged lazily at
// the start of every Open call rather than by a timer, so a round may stay
// resolvable past its TTL until the next round is opened.
package session

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/animequiz/internal/animequiz"
	"github.com/playperu/animequiz/internal/catalog"
	"github.com/playperu/animequiz/internal/question"
)

const idLen = 8

type Manager struct {
	cat     *catalog.Catalog
	options int
	ttl     time.Duration

	now   func() time.Time
	newID func() string

	mu     sync.Mutex
	rng    *rand.Rand
	rounds map[string]animequiz.Round
}

type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDFunc replaces the round id generator.
func WithIDFunc(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// WithRand replaces the random source used for mode and question selection.
func WithRand(rng *rand.Rand) Option {
	return func(m *Manager) { m.rng = rng }
}

func NewManager(cat *catalog.Catalog, options int, ttl time.Duration, opts ...Option) *Manager {
	m := &Manager{
		cat:     cat,
		options: options,
		ttl:     ttl,
		now:     time.Now,
		newID:   func() string { return uuid.NewString()[:idLen] },
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		rounds:  make(map[string]animequiz.Round),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open purges expired rounds, then creates and stores a new round for
// userID. ModeRandom is resolved to image or quote here.
func (m *Manager) Open(userID int64, mode animequiz.Mode) (animequiz.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.purgeLocked(now)

	if mode == animequiz.ModeRandom {
		mode = animequiz.ModeImage
		if m.rng.IntN(2) == 1 {
			mode = animequiz.ModeQuote
		}
	}

	q, err := question.Generate(m.rng, m.cat, mode, m.options)
	if err != nil {
		return animequiz.Round{}, err
	}

	id := m.newID()
	for _, taken := m.rounds[id]; taken; _, taken = m.rounds[id] {
		id = m.newID()
	}

	r := animequiz.Round{
		ID:           id,
		UserID:       userID,
		Mode:         mode,
		Correct:      q.Correct,
		Options:      q.Options,
		CorrectIndex: q.CorrectIndex,
		Quote:        q.Quote,
		CreatedAt:    now,
	}
	m.rounds[id] = r
	return r, nil
}

// Resolve consumes the round and reports whether choice was correct. A round
// owned by another user is left in place. Any choice outside the option
// range counts as a wrong answer.
func (m *Manager) Resolve(roundID string, userID int64, choice int) (animequiz.Outcome, error) {
	m.mu.Lock()
	r, ok := m.rounds[roundID]
	if !ok {
		m.mu.Unlock()
		return animequiz.Outcome{}, animequiz.ErrRoundNotFound
	}
	if r.UserID != userID {
		m.mu.Unlock()
		return animequiz.Outcome{}, animequiz.ErrRoundForbidden
	}
	delete(m.rounds, roundID)
	now := m.now()
	m.mu.Unlock()

	return animequiz.Outcome{
		RoundID:     r.ID,
		UserID:      r.UserID,
		Mode:        r.Mode,
		Correct:     r.Correct,
		ChosenIndex: choice,
		IsCorrect:   choice == r.CorrectIndex,
		Elapsed:     now.Sub(r.CreatedAt),
	}, nil
}

// Purge drops every round older than the TTL and returns how many were
// removed.
func (m *Manager) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.purgeLocked(m.now())
}

func (m *Manager) purgeLocked(now time.Time) int {
	n := 0
	for id, r := range m.rounds {
		if now.Sub(r.CreatedAt) > m.ttl {
			delete(m.rounds, id)
			n++
		}
	}
	return n
}

// Len returns the number of open rounds.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rounds)
}
