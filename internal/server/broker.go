package server

import (
	"encoding/json"
	"sync"
)

// SSEEvent is the payload published to a player's subscribers.
type SSEEvent struct {
	Type          string `json:"type"`
	RoundID       string `json:"roundId,omitempty"`
	IsCorrect     bool   `json:"isCorrect,omitempty"`
	XP            int    `json:"xp,omitempty"`
	XPEarned      int    `json:"xpEarned,omitempty"`
	AchievementID string `json:"achievementId,omitempty"`
	Name          string `json:"name,omitempty"`
	DailyStreak   int    `json:"dailyStreak,omitempty"`
}

const (
	eventRoundResolved       = "round_resolved"
	eventAchievementUnlocked = "achievement_unlocked"
	eventDailyClaimed        = "daily_claimed"
)

// Broker is an in-process pub/sub for SSE events, keyed by user ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[int64]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[int64]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded SSE events for the given user.
func (b *Broker) Subscribe(userID int64) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[chan []byte]struct{})
	}
	b.subs[userID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(userID int64, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[userID], ch)
	if len(b.subs[userID]) == 0 {
		delete(b.subs, userID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given user.
func (b *Broker) Publish(userID int64, event SSEEvent) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[userID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
