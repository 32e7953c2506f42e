package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/triviumlab/trivium-backend/internal/pkg/errors"
	"github.com/triviumlab/trivium-backend/internal/requestdata"
)

// currentUserID reads the authenticated identity the auth middleware
// attached. Every protected handler rejects immediately without it.
func currentUserID(c *gin.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("no identity on request: %w", apperrors.ErrUnauthenticated)
	}
	return rd.UserID, nil
}
