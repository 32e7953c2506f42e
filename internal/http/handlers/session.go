package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/triviumlab/trivium-backend/internal/http/response"
	"github.com/triviumlab/trivium-backend/internal/services"
)

type SessionHandler struct {
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// GET /api/courses/:id/units/:unitNumber/drills/:drillNumber/session
func (sh *SessionHandler) StartDrillSession(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	unitNumber, err := strconv.Atoi(c.Param("unitNumber"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	drillNumber, err := strconv.Atoi(c.Param("drillNumber"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	session, err := sh.sessionService.StartDrillSession(c.Request.Context(), userID, courseID, unitNumber, drillNumber)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, session)
}

// GET /api/exercises/:id/session?purpose=normal|practice
func (sh *SessionHandler) StartExerciseSession(c *gin.Context) {
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

	session, err := sh.sessionService.StartExerciseSession(c.Request.Context(), userID, exerciseID, c.Query("purpose"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, session)
}
