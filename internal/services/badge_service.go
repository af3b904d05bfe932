package services

import (
	"context"

	"ring-predictions/internal/models"
	"ring-predictions/internal/repository"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// accuracyBadgeMinVolume is the minimum number of resolved predictions
// before any accuracy badge can unlock, so a single lucky pick cannot
// earn a 100%-accuracy badge.
const accuracyBadgeMinVolume = 10

// EvaluateBadges returns the badge ids a user's current stats qualify for
func EvaluateBadges(stats models.UserPredictionStats) []models.BadgeID {
	var earned []models.BadgeID

	if stats.TotalPredictions >= 1 {
		earned = append(earned, models.BadgeFirstCall)
	}

	// Streak tiers
	if stats.LongestStreak >= 5 {
		earned = append(earned, models.BadgeOnARoll)
	}
	if stats.LongestStreak >= 10 {
		earned = append(earned, models.BadgeHotStreak)
	}
	if stats.LongestStreak >= 25 {
		earned = append(earned, models.BadgeProphet)
	}

	// Accuracy tiers, gated on a minimum volume
	if stats.TotalPredictions >= accuracyBadgeMinVolume {
		if stats.Accuracy >= 0.80 {
			earned = append(earned, models.BadgeSharpEye)
		}
		if stats.Accuracy >= 0.90 {
			earned = append(earned, models.BadgeInsider)
		}
		if stats.Accuracy >= 0.95 {
			earned = append(earned, models.BadgeOracle)
		}
	}

	// Volume tiers
	if stats.TotalPredictions >= 10 {
		earned = append(earned, models.BadgeRegular)
	}
	if stats.TotalPredictions >= 50 {
		earned = append(earned, models.BadgeAnalyst)
	}
	if stats.TotalPredictions >= 100 {
		earned = append(earned, models.BadgeHistorian)
	}
	if stats.TotalPredictions >= 500 {
		earned = append(earned, models.BadgeIronFan)
	}

	return earned
}

type BadgeService struct {
	repo  *repository.Repository
	clock clockwork.Clock
}

func NewBadgeService(repo *repository.Repository, clock clockwork.Clock) *BadgeService {
	return &BadgeService{repo: repo, clock: clock}
}

// SyncBadges persists any badges the stats newly qualify for and returns
// the user's full unlocked set. Badges already unlocked are kept even if
// the stats would no longer qualify; unlocks are one-way.
func (bs *BadgeService) SyncBadges(
	ctx context.Context,
	userID string,
	stats models.UserPredictionStats,
) ([]*models.UserBadge, error) {
	for _, badgeID := range EvaluateBadges(stats) {
		badge := &models.UserBadge{
			ID:         uuid.New(),
			UserID:     userID,
			BadgeID:    badgeID,
			UnlockedAt: bs.clock.Now(),
		}
		if err := bs.repo.UnlockBadge(ctx, badge); err != nil {
			return nil, err
		}
	}

	return bs.repo.GetUserBadges(ctx, userID)
}

// GetUserBadges retrieves the user's unlocked badges
func (bs *BadgeService) GetUserBadges(ctx context.Context, userID string) ([]*models.UserBadge, error) {
	return bs.repo.GetUserBadges(ctx, userID)
}
