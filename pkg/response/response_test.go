package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusName(t *testing.T) {
	tests := map[int]string{
		http.StatusNotFound:            "NOT_FOUND",
		http.StatusConflict:            "CONFLICT",
		http.StatusBadRequest:          "BAD_REQUEST",
		http.StatusInternalServerError: "INTERNAL_SERVER_ERROR",
		http.StatusTooManyRequests:     "TOO_MANY_REQUESTS",
		http.StatusMultiStatus:         "MULTI_STATUS",
		799:                            "UNKNOWN",
	}
	for code, want := range tests {
		assert.Equal(t, want, StatusName(code), "status %d", code)
	}
}

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, http.StatusNotFound, "User not found by ID: 9999", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{
		"status":  float64(404),
		"error":   "NOT_FOUND",
		"message": "User not found by ID: 9999",
	}, body)
}

func TestAbort(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Abort(c, http.StatusTooManyRequests, "rate limit exceeded")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"TOO_MANY_REQUESTS"`)
}
