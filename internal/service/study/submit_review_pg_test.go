package study

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/tsuyanki/tsuyanki-backend/internal/adapter/postgres"
	cardrepo "github.com/tsuyanki/tsuyanki-backend/internal/adapter/postgres/card"
	deckrepo "github.com/tsuyanki/tsuyanki-backend/internal/adapter/postgres/deck"
	logrepo "github.com/tsuyanki/tsuyanki-backend/internal/adapter/postgres/reviewlog"
	staterepo "github.com/tsuyanki/tsuyanki-backend/internal/adapter/postgres/reviewstate"
	"github.com/tsuyanki/tsuyanki-backend/internal/adapter/postgres/testhelper"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
	"github.com/tsuyanki/tsuyanki-backend/pkg/ctxutil"
)

// Two first-ever submissions for the same (user, card) racing through
// real transactions. The seeded row gives the second transaction a row
// to block on, so it must observe the first one's write: repetition 2,
// not two lost rep-1 updates.
func TestSubmitReview_ConcurrentFirstReviews(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	ctx := context.Background()

	userID := testhelper.SeedUser(t, pool)
	d := testhelper.SeedDeck(t, pool, userID)
	nt, tpl := testhelper.SeedNoteType(t, pool, &userID)
	_, card := testhelper.SeedNoteWithCard(t, pool, d.ID, nt.ID, tpl.ID,
		map[string]string{"Expression": "山"})

	states := staterepo.New(pool)
	svc := NewService(
		slog.Default(),
		cardrepo.New(pool),
		states,
		logrepo.New(pool),
		deckrepo.New(pool),
		postgres.NewTxManager(pool),
		domain.SRSConfig{DefaultEaseFactor: 2.5, MinEaseFactor: 1.3, DailyNewGoal: 20, QueueLimitMax: 200},
		"/storage/media/",
	)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rctx := ctxutil.WithUserID(ctx, userID)
			_, errs[i] = svc.SubmitReview(rctx, SubmitReviewInput{CardID: card.ID, Quality: 4})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("submit %d: unexpected error: %v", i, err)
		}
	}

	got, err := states.Get(ctx, userID, card.ID)
	if err != nil {
		t.Fatalf("get state: unexpected error: %v", err)
	}
	if got.Repetition != 2 {
		t.Errorf("repetition: got %d, want 2", got.Repetition)
	}
	if got.IntervalDays != 6 {
		t.Errorf("interval: got %d, want 6", got.IntervalDays)
	}

	var logCount int
	err = pool.QueryRow(ctx,
		`SELECT count(*) FROM review_logs WHERE user_id = $1 AND card_id = $2`,
		userID, card.ID,
	).Scan(&logCount)
	if err != nil {
		t.Fatalf("count logs: %v", err)
	}
	if logCount != 2 {
		t.Errorf("review logs: got %d, want 2", logCount)
	}
}
