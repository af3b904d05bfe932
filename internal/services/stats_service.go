package services

import (
	"context"

	"ring-predictions/internal/models"
	"ring-predictions/internal/repository"
)

type StatsService struct {
	repo        *repository.Repository
	leaderboard *LeaderboardService
	badges      *BadgeService
}

func NewStatsService(
	repo *repository.Repository,
	leaderboard *LeaderboardService,
	badges *BadgeService,
) *StatsService {
	return &StatsService{
		repo:        repo,
		leaderboard: leaderboard,
		badges:      badges,
	}
}

// ComputeStats derives a user's aggregate stats from their resolved
// predictions, ordered newest first by creation time. It maintains no
// counters of its own; the resolved history is the only source of truth.
func ComputeStats(userID string, resolved []*models.Prediction) models.UserPredictionStats {
	stats := models.UserPredictionStats{UserID: userID}

	stats.TotalPredictions = len(resolved)
	if stats.TotalPredictions == 0 {
		return stats
	}

	// Current streak: consecutive correct predictions starting from the
	// most recent, stopping at the first incorrect one.
	for _, prediction := range resolved {
		if prediction.IsCorrect == nil || !*prediction.IsCorrect {
			break
		}
		stats.CurrentStreak++
	}

	run := 0
	for _, prediction := range resolved {
		correct := prediction.IsCorrect != nil && *prediction.IsCorrect
		if correct {
			stats.CorrectPredictions++
			run++
			if run > stats.LongestStreak {
				stats.LongestStreak = run
			}
		} else {
			run = 0
		}
		if prediction.PointsEarned != nil {
			stats.TotalPoints += *prediction.PointsEarned
		}
	}

	stats.Accuracy = float64(stats.CorrectPredictions) / float64(stats.TotalPredictions)

	return stats
}

// GetUserStats recomputes a user's stats from their resolved predictions,
// syncs any newly crossed badge thresholds, and fills in their leaderboard
// rank.
func (ss *StatsService) GetUserStats(ctx context.Context, userID string) (models.UserPredictionStats, error) {
	resolved, err := ss.repo.GetResolvedPredictionsByUser(ctx, userID)
	if err != nil {
		return models.UserPredictionStats{}, err
	}

	stats := ComputeStats(userID, resolved)

	if stats.TotalPredictions > 0 {
		if _, err := ss.badges.SyncBadges(ctx, userID, stats); err != nil {
			return models.UserPredictionStats{}, err
		}

		rank, err := ss.leaderboard.RankOf(ctx, userID)
		if err != nil {
			return models.UserPredictionStats{}, err
		}
		stats.Rank = rank
	}

	return stats, nil
}
