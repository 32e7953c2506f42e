package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/triviumlab/trivium-backend/internal/http/response"
	"github.com/triviumlab/trivium-backend/internal/services"
)

type LeaderboardHandler struct {
	leaderboard services.LeaderboardService
}

func NewLeaderboardHandler(leaderboard services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// GET /api/leaderboard?limit=10
func (lh *LeaderboardHandler) Top(c *gin.Context) {
	if lh.leaderboard == nil {
		response.RespondError(c, http.StatusNotFound, "not_found", nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	entries, err := lh.leaderboard.Top(c.Request.Context(), limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"leaderboard": entries})
}
