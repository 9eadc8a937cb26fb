package response

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Status  int               `json:"status"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// StatusName renders a status code as an upper snake case reason, e.g. NOT_FOUND.
func StatusName(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "UNKNOWN"
	}
	text = strings.ReplaceAll(text, "-", " ")
	return strings.ToUpper(strings.Join(strings.Fields(text), "_"))
}

func NewError(status int, message string, details map[string]string) ErrorBody {
	if status == 0 {
		status = http.StatusBadRequest
	}
	return ErrorBody{
		Status:  status,
		Error:   StatusName(status),
		Message: message,
		Details: details,
	}
}

// Success writes data as the response body.
func Success[T any](ctx *gin.Context, status int, data T) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, data)
}

// Error writes an ErrorBody.
func Error(ctx *gin.Context, status int, message string, details map[string]string) {
	body := NewError(status, message, details)
	ctx.JSON(body.Status, body)
}

// Abort writes an ErrorBody and stops the handler chain.
func Abort(ctx *gin.Context, status int, message string) {
	body := NewError(status, message, nil)
	ctx.AbortWithStatusJSON(body.Status, body)
}
