package study

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
	"github.com/tsuyanki/tsuyanki-backend/pkg/ctxutil"
)

// streakLookbackDays bounds the streak computation. A year of
// uninterrupted daily review is reported as-is; anything longer is
// indistinguishable from 366.
const streakLookbackDays = 366

// GetStats returns the user's study statistics: today's review count,
// per-day activity for the trailing week, the current daily streak and
// the share of cards past the maturity interval. Days are UTC days.
func (s *Service) GetStats(ctx context.Context) (domain.StudyStats, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.StudyStats{}, domain.ErrUnauthorized
	}

	now := s.now().UTC()
	dayStart := now.Truncate(24 * time.Hour)
	from := dayStart.AddDate(0, 0, -streakLookbackDays)
	to := dayStart.AddDate(0, 0, 1)

	counts, err := s.logs.CountPerDay(ctx, userID, from, to)
	if err != nil {
		return domain.StudyStats{}, fmt.Errorf("count reviews per day: %w", err)
	}

	byDay := make(map[time.Time]int, len(counts))
	for _, c := range counts {
		byDay[c.Date.UTC()] = c.Count
	}

	stats := domain.StudyStats{
		ReviewsCompletedToday: byDay[dayStart],
		Streak:                streak(byDay, dayStart),
	}
	for i := range stats.RecentActivity {
		day := dayStart.AddDate(0, 0, i-6)
		stats.RecentActivity[i] = byDay[day]
	}

	mature, total, err := s.states.Mastery(ctx, userID, domain.MatureIntervalDays)
	if err != nil {
		return domain.StudyStats{}, fmt.Errorf("count mastery: %w", err)
	}
	if total > 0 {
		stats.MasteryPercent = int(math.Round(100 * float64(mature) / float64(total)))
	}

	return stats, nil
}

// streak counts consecutive days with at least one review ending today.
// A day with no reviews yet does not break a streak that is still alive
// from yesterday.
func streak(byDay map[time.Time]int, dayStart time.Time) int {
	day := dayStart
	if byDay[day] == 0 {
		day = day.AddDate(0, 0, -1)
	}

	n := 0
	for ; n < streakLookbackDays; n++ {
		if byDay[day] == 0 {
			break
		}
		day = day.AddDate(0, 0, -1)
	}
	return n
}
