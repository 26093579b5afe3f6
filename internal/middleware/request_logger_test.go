package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tasktracker/internal/logger"
	"tasktracker/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	userID := uuid.New()

	r := gin.New()
	r.Use(middleware.RequestLogger(logger.New("info", &buf)))
	r.GET("/tasks/:id", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	})

	req, _ := http.NewRequest("GET", "/tasks/abc", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/tasks/abc", entry["path"])
	assert.EqualValues(t, 404, entry["status"])
	assert.Equal(t, userID.String(), entry["user_id"])
}
