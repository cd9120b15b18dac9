package animequiz

import "errors"

var (
	// ErrRoundNotFound means the round never existed, was already resolved
	// or expired. The player has to start a new round.
	ErrRoundNotFound = errors.New("round not found")

	// ErrRoundForbidden means the round belongs to another user. The round
	// stays open for its owner.
	ErrRoundForbidden = errors.New("round belongs to another user")

	ErrAlreadyClaimed = errors.New("daily bonus already claimed")

	// ErrPersistenceUnavailable marks a store failure. Nothing was applied.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")

	ErrPlayerNotFound = errors.New("player not found")

	// ErrEmptyPool means no catalog item qualifies for the requested mode.
	ErrEmptyPool = errors.New("no items available for mode")
)
