// Package game is the facade the HTTP transport talks to. It ties the round
// table, the progression engine and the read models together and returns
// plain data for the transport to render.
package game

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/playperu/animequiz/internal/animequiz"
	"github.com/playperu/animequiz/internal/catalog"
	"github.com/playperu/animequiz/internal/leaderboard"
	"github.com/playperu/animequiz/internal/progress"
)

// Sessions is the in-memory round table.
type Sessions interface {
	Open(userID int64, mode animequiz.Mode) (animequiz.Round, error)
	Resolve(roundID string, userID int64, choice int) (animequiz.Outcome, error)
}

// Images resolves cover images. An empty result means text-only.
type Images interface {
	ImageURL(ctx context.Context, malID int) string
}

// Ranking is an optional fast leaderboard kept in step with the store.
type Ranking interface {
	Record(ctx context.Context, userID int64, xp int) error
	Sync(ctx context.Context, entries []leaderboard.Entry) error
	Top(ctx context.Context, limit int) ([]leaderboard.Entry, error)
	Position(ctx context.Context, userID int64) (int, error)
}

type Config struct {
	Sessions Sessions
	Engine   *progress.Engine
	Store    progress.Store
	Catalog  *catalog.Catalog
	// Images and Ranking may be nil.
	Images   Images
	Ranking  Ranking
	Location *time.Location
	Logger   *slog.Logger
}

type Service struct {
	sessions Sessions
	engine   *progress.Engine
	store    progress.Store
	cat      *catalog.Catalog
	images   Images
	ranking  Ranking
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

func New(cfg Config) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		sessions: cfg.Sessions,
		engine:   cfg.Engine,
		store:    cfg.Store,
		cat:      cfg.Catalog,
		images:   cfg.Images,
		ranking:  cfg.Ranking,
		loc:      loc,
		now:      time.Now,
		logger:   cfg.Logger,
	}
}

func (s *Service) EnsurePlayer(ctx context.Context, userID int64, username, firstName string) (animequiz.Player, error) {
	p, err := s.store.EnsurePlayer(ctx, userID, username, firstName)
	if err != nil {
		return animequiz.Player{}, err
	}
	s.record(ctx, p)
	return p, nil
}

// RoundView is an open round plus its presentation extras.
type RoundView struct {
	animequiz.Round
	ImageURL string
}

func (s *Service) OpenRound(ctx context.Context, userID int64, mode animequiz.Mode) (RoundView, error) {
	r, err := s.sessions.Open(userID, mode)
	if err != nil {
		return RoundView{}, err
	}

	v := RoundView{Round: r}
	if r.Mode == animequiz.ModeImage && s.images != nil {
		v.ImageURL = s.images.ImageURL(ctx, r.Correct.MalID)
	}

	s.logger.Debug("round opened", "user_id", userID, "round_id", r.ID, "mode", r.Mode, "item_id", r.Correct.ID)
	return v, nil
}

// ResolveRound consumes the round and applies its outcome. The round is
// gone even when applying fails; the player starts a new one.
func (s *Service) ResolveRound(ctx context.Context, roundID string, userID int64, choice int) (progress.Result, error) {
	out, err := s.sessions.Resolve(roundID, userID, choice)
	if err != nil {
		return progress.Result{}, err
	}

	res, err := s.engine.Apply(ctx, out)
	if err != nil {
		s.logger.Error("applying outcome", "user_id", userID, "round_id", roundID, "error", err)
		return progress.Result{}, err
	}
	s.record(ctx, res.Player)
	return res, nil
}

// ClaimDaily claims the bonus for the current date in the configured
// timezone.
func (s *Service) ClaimDaily(ctx context.Context, userID int64) (progress.Grant, error) {
	g, err := s.engine.ClaimDaily(ctx, userID, s.now().In(s.loc))
	if err != nil {
		return progress.Grant{}, err
	}
	s.record(ctx, g.Player)
	return g, nil
}

// SyncLeaderboard rebuilds the ranking mirror from the store.
func (s *Service) SyncLeaderboard(ctx context.Context) error {
	if s.ranking == nil {
		return nil
	}
	players, err := s.store.Leaderboard(ctx, -1)
	if err != nil {
		return err
	}
	entries := make([]leaderboard.Entry, len(players))
	for i, p := range players {
		entries[i] = leaderboard.Entry{UserID: p.UserID, XP: p.XP}
	}
	return s.ranking.Sync(ctx, entries)
}

func (s *Service) record(ctx context.Context, p animequiz.Player) {
	if s.ranking == nil {
		return
	}
	if err := s.ranking.Record(ctx, p.UserID, p.XP); err != nil {
		s.logger.Warn("updating leaderboard mirror", "user_id", p.UserID, "error", err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, animequiz.ErrPlayerNotFound) || errors.Is(err, leaderboard.ErrNotRanked)
}
