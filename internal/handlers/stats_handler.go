package handlers

import (
	"net/http"
	"time"

	"ring-predictions/internal/models"
	"ring-predictions/internal/services"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService       *services.StatsService
	leaderboardService *services.LeaderboardService
	badgeService       *services.BadgeService
}

func NewStatsHandler(
	statsService *services.StatsService,
	leaderboardService *services.LeaderboardService,
	badgeService *services.BadgeService,
) *StatsHandler {
	return &StatsHandler{
		statsService:       statsService,
		leaderboardService: leaderboardService,
		badgeService:       badgeService,
	}
}

// GetUserStats retrieves a user's aggregate prediction stats
// GET /api/users/:id/stats
func (h *StatsHandler) GetUserStats(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	stats, err := h.statsService.GetUserStats(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetLeaderboard retrieves the ranked leaderboard
// GET /api/leaderboard
func (h *StatsHandler) GetLeaderboard(c *gin.Context) {
	leaderboard, err := h.leaderboardService.GetLeaderboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": leaderboard,
		"total":       len(leaderboard),
	})
}

// GetUserBadges retrieves a user's unlocked badges
// GET /api/users/:id/badges
func (h *StatsHandler) GetUserBadges(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	unlocked, err := h.badgeService.GetUserBadges(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get badges"})
		return
	}

	type badgeResponse struct {
		models.Badge
		UnlockedAt string `json:"unlocked_at"`
	}

	badges := make([]badgeResponse, 0, len(unlocked))
	for _, userBadge := range unlocked {
		badge, ok := models.AllBadges[userBadge.BadgeID]
		if !ok {
			continue
		}
		badges = append(badges, badgeResponse{
			Badge:      badge,
			UnlockedAt: userBadge.UnlockedAt.UTC().Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"badges": badges,
		"total":  len(badges),
	})
}
