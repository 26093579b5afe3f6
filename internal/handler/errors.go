package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tasktracker/internal/apperror"
	"tasktracker/internal/middleware"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError writes the client-safe form of err. Internal causes are only logged.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	status, category, msg := apperror.MapToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.ErrorContext(c.Request.Context(), "request failed",
			"category", category,
			"path", c.FullPath(),
			"error", err,
		)
	}
	c.JSON(status, ErrorResponse{Error: msg})
}

// currentUser reads the authenticated user id; it is set by the auth middleware on every protected route.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Not authenticated"})
		return uuid.Nil, false
	}
	return id, true
}
