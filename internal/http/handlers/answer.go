package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/triviumlab/trivium-backend/internal/http/response"
	"github.com/triviumlab/trivium-backend/internal/services"
)

type AnswerHandler struct {
	answerService services.AnswerService
}

func NewAnswerHandler(answerService services.AnswerService) *AnswerHandler {
	return &AnswerHandler{answerService: answerService}
}

// POST /api/answers/question
// body: { "question_id", "option_id" }
func (ah *AnswerHandler) SubmitQuestionAnswer(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var req struct {
		QuestionID uuid.UUID `json:"question_id"`
		OptionID   uuid.UUID `json:"option_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := ah.answerService.SubmitQuestionAnswer(c.Request.Context(), userID, req.QuestionID, req.OptionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

// POST /api/answers/challenge
// body: { "challenge_id", "option_id" }
func (ah *AnswerHandler) SubmitChallengeAnswer(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var req struct {
		ChallengeID uuid.UUID `json:"challenge_id"`
		OptionID    uuid.UUID `json:"option_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := ah.answerService.SubmitChallengeAnswer(c.Request.Context(), userID, req.ChallengeID, req.OptionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

// POST /api/drills/:id/complete
// body: { "score_percentage" } — required for timed drills, ignored otherwise
func (ah *AnswerHandler) CompleteDrill(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	drillID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var req struct {
		ScorePercentage int `json:"score_percentage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := ah.answerService.CompleteDrill(c.Request.Context(), userID, drillID, req.ScorePercentage)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

// POST /api/exercises/:id/complete
// body: { "score_percentage" }
func (ah *AnswerHandler) CompleteExercise(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	exerciseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var req struct {
		ScorePercentage int `json:"score_percentage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := ah.answerService.CompleteExercise(c.Request.Context(), userID, exerciseID, req.ScorePercentage)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}
