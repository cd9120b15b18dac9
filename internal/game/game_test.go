package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/playperu/animequiz/internal/achievement"
	"github.com/playperu/animequiz/internal/animequiz"
	"github.com/playperu/animequiz/internal/catalog"
	"github.com/playperu/animequiz/internal/database"
	"github.com/playperu/animequiz/internal/leaderboard"
	"github.com/playperu/animequiz/internal/migrations"
	"github.com/playperu/animequiz/internal/progress"
	"github.com/playperu/animequiz/internal/session"
)

type fakeImages struct{}

func (fakeImages) ImageURL(_ context.Context, malID int) string {
	return fmt.Sprintf("https://img.test/%d.jpg", malID)
}

type fakeRanking struct {
	mu  sync.Mutex
	xp  map[int64]int
	err error
}

func newFakeRanking() *fakeRanking { return &fakeRanking{xp: make(map[int64]int)} }

func (f *fakeRanking) Record(_ context.Context, userID int64, xp int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.xp[userID] = xp
	return f.err
}

func (f *fakeRanking) Sync(_ context.Context, entries []leaderboard.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.xp = make(map[int64]int)
	for _, e := range entries {
		f.xp[e.UserID] = e.XP
	}
	return f.err
}

func (f *fakeRanking) Top(_ context.Context, limit int) ([]leaderboard.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []leaderboard.Entry
	for id, xp := range f.xp {
		out = append(out, leaderboard.Entry{UserID: id, XP: xp})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].XP != out[j].XP {
			return out[i].XP > out[j].XP
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRanking) Position(_ context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	mine, ok := f.xp[userID]
	if !ok {
		return 0, leaderboard.ErrNotRanked
	}
	pos := 1
	for _, xp := range f.xp {
		if xp > mine {
			pos++
		}
	}
	return pos, nil
}

var testNow = time.Date(2024, 5, 1, 21, 30, 0, 0, time.UTC)

type fixture struct {
	svc     *Service
	store   *progress.SQLiteStore
	cat     *catalog.Catalog
	ranking *fakeRanking
}

func newFixture(t *testing.T, withRanking bool) fixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Memory)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := progress.NewSQLiteStore(db)

	cfg := Config{
		Sessions: session.NewManager(cat, 4, 2*time.Minute, session.WithRand(rand.New(rand.NewPCG(3, 4)))),
		Engine:   progress.NewEngine(store, cat, progress.DefaultRules(), logger),
		Store:    store,
		Catalog:  cat,
		Images:   fakeImages{},
		Location: time.FixedZone("MSK", 3*60*60),
		Logger:   logger,
	}
	f := fixture{store: store, cat: cat}
	if withRanking {
		f.ranking = newFakeRanking()
		cfg.Ranking = f.ranking
	}
	f.svc = New(cfg)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func TestOpenRoundImage(t *testing.T) {
	f := newFixture(t, false)

	v, err := f.svc.OpenRound(context.Background(), 1, animequiz.ModeImage)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	want := fmt.Sprintf("https://img.test/%d.jpg", v.Correct.MalID)
	if v.ImageURL != want {
		t.Errorf("image url = %q, want %q", v.ImageURL, want)
	}

	v, err = f.svc.OpenRound(context.Background(), 1, animequiz.ModeQuote)
	if err != nil {
		t.Fatalf("open quote: %v", err)
	}
	if v.ImageURL != "" || v.Quote == nil {
		t.Errorf("quote round: image %q, quote %v", v.ImageURL, v.Quote)
	}
}

func TestResolveRound(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	v, err := f.svc.OpenRound(ctx, 1, animequiz.ModeImage)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, err := f.svc.ResolveRound(ctx, v.ID, 2, v.CorrectIndex); !errors.Is(err, animequiz.ErrRoundForbidden) {
		t.Fatalf("err = %v, want ErrRoundForbidden", err)
	}

	res, err := f.svc.ResolveRound(ctx, v.ID, 1, v.CorrectIndex)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.Outcome.IsCorrect || res.Player.CorrectAnswers != 1 {
		t.Errorf("unexpected result %+v", res)
	}
	if got := f.ranking.xp[1]; got != res.Player.XP {
		t.Errorf("mirror xp = %d, want %d", got, res.Player.XP)
	}

	if _, err := f.svc.ResolveRound(ctx, v.ID, 1, v.CorrectIndex); !errors.Is(err, animequiz.ErrRoundNotFound) {
		t.Fatalf("err = %v, want ErrRoundNotFound", err)
	}
}

func TestResolveRoundPastTTLWithoutNewRound(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	now := testNow
	f.svc.sessions = session.NewManager(f.cat, 4, 2*time.Minute,
		session.WithClock(func() time.Time { return now }),
		session.WithRand(rand.New(rand.NewPCG(5, 6))))

	v, err := f.svc.OpenRound(ctx, 1, animequiz.ModeImage)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	// Nothing but the next Open expires a round.
	now = now.Add(130 * time.Second)
	res, err := f.svc.ResolveRound(ctx, v.ID, 1, v.CorrectIndex)
	if err != nil {
		t.Fatalf("resolve after 130s: %v", err)
	}
	if !res.Outcome.IsCorrect || res.Outcome.Elapsed != 130*time.Second {
		t.Errorf("outcome = %+v", res.Outcome)
	}

	stale, err := f.svc.OpenRound(ctx, 1, animequiz.ModeImage)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	now = now.Add(130 * time.Second)
	if _, err := f.svc.OpenRound(ctx, 1, animequiz.ModeImage); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.svc.ResolveRound(ctx, stale.ID, 1, stale.CorrectIndex); !errors.Is(err, animequiz.ErrRoundNotFound) {
		t.Errorf("err = %v, want ErrRoundNotFound after next open", err)
	}
}

func TestClaimDailyUsesLocation(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	g, err := f.svc.ClaimDaily(ctx, 1)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	// 21:30 UTC is already the next day at UTC+3.
	if g.Player.LastDaily != "2024-05-02" {
		t.Errorf("last daily = %q, want 2024-05-02", g.Player.LastDaily)
	}
	if _, err := f.svc.ClaimDaily(ctx, 1); !errors.Is(err, animequiz.ErrAlreadyClaimed) {
		t.Fatalf("err = %v, want ErrAlreadyClaimed", err)
	}
}

func TestProfile(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	if _, err := f.svc.Profile(ctx, 1); !errors.Is(err, animequiz.ErrPlayerNotFound) {
		t.Fatalf("err = %v, want ErrPlayerNotFound", err)
	}

	if _, err := f.svc.EnsurePlayer(ctx, 1, "neo", "Thomas"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	v, _ := f.svc.OpenRound(ctx, 1, animequiz.ModeImage)
	if _, err := f.svc.ResolveRound(ctx, v.ID, 1, v.CorrectIndex); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	prof, err := f.svc.Profile(ctx, 1)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if prof.Player.FirstName != "Thomas" {
		t.Errorf("first name = %q", prof.Player.FirstName)
	}
	if prof.Accuracy != 100 || prof.Position != 1 {
		t.Errorf("accuracy = %v, position = %d; want 100, 1", prof.Accuracy, prof.Position)
	}
	if prof.CollectionCount != 1 || prof.CatalogSize != f.cat.Len() {
		t.Errorf("collection %d/%d", prof.CollectionCount, prof.CatalogSize)
	}
	if prof.AchievementCount == 0 || prof.AchievementTotal != len(achievement.All) {
		t.Errorf("achievements %d/%d", prof.AchievementCount, prof.AchievementTotal)
	}
	if prof.NextRank == nil {
		t.Error("expected a next rank")
	}
}

func seedXP(t *testing.T, f fixture, xp map[int64]int) {
	t.Helper()
	ctx := context.Background()
	for id, v := range xp {
		err := f.store.Update(ctx, id, func(tx progress.Tx) error {
			p, err := tx.Player(ctx)
			if err != nil {
				return err
			}
			p.XP = v
			return tx.SavePlayer(ctx, p)
		})
		if err != nil {
			t.Fatalf("seeding %d: %v", id, err)
		}
	}
}

func TestLeaderboardFromStore(t *testing.T) {
	f := newFixture(t, false)
	seedXP(t, f, map[int64]int{1: 10, 2: 500, 3: 200})

	lb, err := f.svc.Leaderboard(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb.Top) != 3 || lb.Top[0].UserID != 2 {
		t.Fatalf("top = %+v", lb.Top)
	}
	if lb.Position != 3 {
		t.Errorf("position = %d, want 3", lb.Position)
	}

	lb, err = f.svc.Leaderboard(context.Background(), 42, 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb.Top) != 2 || lb.Position != 0 {
		t.Errorf("top = %d players, position = %d; want 2, 0", len(lb.Top), lb.Position)
	}
}

func TestLeaderboardFromMirror(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	seedXP(t, f, map[int64]int{1: 10, 2: 500, 3: 200})

	if err := f.svc.SyncLeaderboard(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(f.ranking.xp) != 3 {
		t.Fatalf("mirror has %d entries, want 3", len(f.ranking.xp))
	}

	lb, err := f.svc.Leaderboard(ctx, 3, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb.Top) != 3 || lb.Top[0].UserID != 2 || lb.Top[2].UserID != 1 {
		t.Fatalf("top = %+v", lb.Top)
	}
	if lb.Position != 2 {
		t.Errorf("position = %d, want 2", lb.Position)
	}

	f.ranking.err = errors.New("connection refused")
	lb, err = f.svc.Leaderboard(ctx, 3, 10)
	if err != nil {
		t.Fatalf("fallback leaderboard: %v", err)
	}
	if len(lb.Top) != 3 || lb.Position != 2 {
		t.Errorf("fallback top = %d players, position = %d", len(lb.Top), lb.Position)
	}
}

func TestAchievementsList(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	v, _ := f.svc.OpenRound(ctx, 1, animequiz.ModeImage)
	if _, err := f.svc.ResolveRound(ctx, v.ID, 1, v.CorrectIndex); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	list, err := f.svc.Achievements(ctx, 1)
	if err != nil {
		t.Fatalf("achievements: %v", err)
	}
	if len(list) != len(achievement.All) {
		t.Fatalf("got %d, want %d", len(list), len(achievement.All))
	}
	for _, a := range list {
		if a.Definition.ID == "first_win" && !a.Unlocked {
			t.Error("first_win not unlocked")
		}
		if a.Definition.ID == "collect_50" && a.Unlocked {
			t.Error("collect_50 unlocked")
		}
	}
}

func TestCollectionPage(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	v, _ := f.svc.OpenRound(ctx, 1, animequiz.ModeImage)
	if _, err := f.svc.ResolveRound(ctx, v.ID, 1, v.CorrectIndex); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	total := f.cat.Len()
	wantPages := (total + CollectionPageSize - 1) / CollectionPageSize

	tests := []struct {
		page, want int
	}{
		{0, 1}, {1, 1}, {2, 2}, {99, wantPages},
	}
	for _, tt := range tests {
		cp, err := f.svc.CollectionPage(ctx, 1, tt.page)
		if err != nil {
			t.Fatalf("page %d: %v", tt.page, err)
		}
		if cp.Page != tt.want || cp.TotalPages != wantPages {
			t.Errorf("page %d -> %d of %d, want %d of %d", tt.page, cp.Page, cp.TotalPages, tt.want, wantPages)
		}
		if cp.Collected != 1 || cp.Total != total {
			t.Errorf("collected %d/%d, want 1/%d", cp.Collected, cp.Total, total)
		}
	}

	last, _ := f.svc.CollectionPage(ctx, 1, wantPages)
	if want := total - (wantPages-1)*CollectionPageSize; len(last.Items) != want {
		t.Errorf("last page has %d items, want %d", len(last.Items), want)
	}

	found := false
	for p := 1; p <= wantPages; p++ {
		cp, _ := f.svc.CollectionPage(ctx, 1, p)
		for _, it := range cp.Items {
			if it.Collected {
				found = true
				if it.Item.ID != v.Correct.ID || it.TimesGuessed != 1 {
					t.Errorf("collected %d x%d, want %d x1", it.Item.ID, it.TimesGuessed, v.Correct.ID)
				}
			}
		}
	}
	if !found {
		t.Error("collected item not shown")
	}
}
