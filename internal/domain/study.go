package domain

import (
	"time"

	"github.com/google/uuid"
)

// QueueTier identifies which selection tier produced a queue entry.
type QueueTier string

const (
	QueueTierDue  QueueTier = "DUE"
	QueueTierNew  QueueTier = "NEW"
	QueueTierCram QueueTier = "CRAM"
)

// QueueEntry is one card in the study queue together with the tier
// that selected it.
type QueueEntry struct {
	Card Card
	Tier QueueTier
}

// StudyQueue is the ordered result of a queue selection. Tier counters
// are returned for UI and telemetry.
type StudyQueue struct {
	Entries   []QueueEntry
	Total     int
	DueCount  int
	NewCount  int
	CramCount int
}

// ReviewResult is returned after a submitted review.
type ReviewResult struct {
	CardID       uuid.UUID
	NextDueAt    time.Time
	IntervalDays int
}

// DayReviewCount holds the review count for one calendar day.
type DayReviewCount struct {
	Date  time.Time
	Count int
}

// StudyStats aggregates a user's review activity.
// RecentActivity holds per-day counts for the trailing 7 days
// including today, oldest first.
type StudyStats struct {
	ReviewsCompletedToday int
	RecentActivity        [7]int
	Streak                int
	MasteryPercent        int
}

// SRSConfig holds scheduler policy knobs (pure domain type).
type SRSConfig struct {
	DefaultEaseFactor float64
	MinEaseFactor     float64
	DailyNewGoal      int
	QueueLimitMax     int
}
