package study

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tsuyanki/tsuyanki-backend/internal/domain"
	"github.com/tsuyanki/tsuyanki-backend/pkg/ctxutil"
)

// GetQueue assembles the study queue in three tiers: cards that are
// due, then new cards up to the remaining daily quota, then, in cram
// mode only, cards scheduled for the future, stalest first. Tiers are
// filled in order and never push the queue past the limit.
func (s *Service) GetQueue(ctx context.Context, input GetQueueInput) (domain.StudyQueue, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.StudyQueue{}, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return domain.StudyQueue{}, err
	}

	if input.DeckID != nil {
		if _, err := s.decks.GetByID(ctx, userID, *input.DeckID); err != nil {
			return domain.StudyQueue{}, fmt.Errorf("get deck: %w", err)
		}
	}

	limit := s.queueLimit(input.Limit)
	now := s.now().UTC()

	queue := domain.StudyQueue{}
	seen := make(map[uuid.UUID]struct{}, limit)

	add := func(cards []domain.Card, tier domain.QueueTier) {
		for _, c := range cards {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			queue.Entries = append(queue.Entries, domain.QueueEntry{Card: c, Tier: tier})
		}
	}

	due, err := s.cards.SelectDue(ctx, userID, input.DeckID, now, limit)
	if err != nil {
		return domain.StudyQueue{}, fmt.Errorf("select due cards: %w", err)
	}
	add(due, domain.QueueTierDue)
	queue.DueCount = len(queue.Entries)

	if remaining := limit - len(queue.Entries); remaining > 0 {
		newLimit := remaining
		if !input.IgnoreLimits {
			quota, err := s.newQuotaLeft(ctx, userID, now)
			if err != nil {
				return domain.StudyQueue{}, err
			}
			newLimit = min(remaining, quota)
		}

		if newLimit > 0 {
			fresh, err := s.cards.SelectNew(ctx, userID, input.DeckID, newLimit)
			if err != nil {
				return domain.StudyQueue{}, fmt.Errorf("select new cards: %w", err)
			}
			add(fresh, domain.QueueTierNew)
		}
	}
	queue.NewCount = len(queue.Entries) - queue.DueCount

	if input.IgnoreLimits {
		if remaining := limit - len(queue.Entries); remaining > 0 {
			ahead, err := s.cards.SelectAhead(ctx, userID, input.DeckID, now, remaining)
			if err != nil {
				return domain.StudyQueue{}, fmt.Errorf("select ahead cards: %w", err)
			}
			add(ahead, domain.QueueTierCram)
		}
	}
	queue.CramCount = len(queue.Entries) - queue.DueCount - queue.NewCount
	queue.Total = len(queue.Entries)

	s.log.DebugContext(ctx, "study queue assembled",
		slog.String("user_id", userID.String()),
		slog.Int("due", queue.DueCount),
		slog.Int("new", queue.NewCount),
		slog.Int("cram", queue.CramCount),
	)

	return queue, nil
}

// queueLimit clamps the requested size to the configured maximum.
// Zero means "as many as allowed".
func (s *Service) queueLimit(requested int) int {
	maxLimit := s.cfg.QueueLimitMax
	if maxLimit <= 0 {
		maxLimit = 200
	}
	if requested <= 0 || requested > maxLimit {
		return maxLimit
	}
	return requested
}

// newQuotaLeft returns how many new cards the user may still start
// today. A card counts as started on the UTC day of its first review,
// whether or not that review passed.
func (s *Service) newQuotaLeft(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	goal := s.cfg.DailyNewGoal
	if goal <= 0 {
		return 0, nil
	}

	dayStart := now.Truncate(24 * time.Hour)
	introduced, err := s.logs.CountIntroduced(ctx, userID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return 0, fmt.Errorf("count introduced cards: %w", err)
	}

	return max(0, goal-introduced), nil
}
