package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/triviumlab/trivium-backend/internal/http/response"
	"github.com/triviumlab/trivium-backend/internal/services"
)

type CourseHandler struct {
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// GET /api/courses
func (ch *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := ch.courseService.ListCourses(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

// GET /api/courses/:id/units
func (ch *CourseHandler) GetCourseTree(c *gin.Context) {
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
	tree, err := ch.courseService.GetCourseTree(c.Request.Context(), userID, courseID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, tree)
}

// GET /api/exercises
func (ch *CourseHandler) ListExercises(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	exercises, err := ch.courseService.ListExercises(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"exercises": exercises})
}
