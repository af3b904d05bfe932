package services

import (
	"context"
	"sort"

	"ring-predictions/internal/models"
	"ring-predictions/internal/repository"
)

type LeaderboardService struct {
	repo *repository.Repository
}

func NewLeaderboardService(repo *repository.Repository) *LeaderboardService {
	return &LeaderboardService{repo: repo}
}

// RankUsers orders user stats into a leaderboard and assigns positions.
// Sort key: total points desc, accuracy desc, total predictions desc,
// user id asc. The order is total, so repeated calls on the same input
// always produce the same ranking.
func RankUsers(users []models.UserPredictionStats) []models.UserPredictionStats {
	ranked := make([]models.UserPredictionStats, len(users))
	copy(ranked, users)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalPoints != ranked[j].TotalPoints {
			return ranked[i].TotalPoints > ranked[j].TotalPoints
		}
		if ranked[i].Accuracy != ranked[j].Accuracy {
			return ranked[i].Accuracy > ranked[j].Accuracy
		}
		if ranked[i].TotalPredictions != ranked[j].TotalPredictions {
			return ranked[i].TotalPredictions > ranked[j].TotalPredictions
		}
		return ranked[i].UserID < ranked[j].UserID
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	return ranked
}

// GetLeaderboard recomputes every user's stats from their resolved
// predictions and returns the ranked list
func (ls *LeaderboardService) GetLeaderboard(ctx context.Context) ([]models.UserPredictionStats, error) {
	userIDs, err := ls.repo.GetResolvedUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]models.UserPredictionStats, 0, len(userIDs))
	for _, userID := range userIDs {
		resolved, err := ls.repo.GetResolvedPredictionsByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		users = append(users, ComputeStats(userID, resolved))
	}

	return RankUsers(users), nil
}

// RankOf returns a user's position on the leaderboard, or 0 if the user
// has no resolved predictions
func (ls *LeaderboardService) RankOf(ctx context.Context, userID string) (int, error) {
	leaderboard, err := ls.GetLeaderboard(ctx)
	if err != nil {
		return 0, err
	}

	for _, entry := range leaderboard {
		if entry.UserID == userID {
			return entry.Rank, nil
		}
	}

	return 0, nil
}
