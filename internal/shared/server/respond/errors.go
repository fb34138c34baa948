package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-tracker/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error logs and sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details any) {
	write(c, status, code, message, details, nil)
}

// Internal sends a 500 envelope with message; cause only reaches the log.
func Internal(c *gin.Context, message string, cause error) {
	write(c, http.StatusInternalServerError, "internal_error", message, nil, cause)
}

func write(c *gin.Context, status int, code, message string, details any, cause error) {
	fields := requestFields(c)
	fields["status"] = status
	fields["code"] = code
	fields["message"] = message
	if cause != nil {
		fields["cause"] = cause
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.Header("Cache-Control", "no-store")
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message, Details: details},
	})
}

// requestFields collects the correlation keys set by the middleware chain.
func requestFields(c *gin.Context) map[string]any {
	fields := map[string]any{
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	for key, field := range map[string]string{"userId": "user_id", "viewId": "view_id"} {
		if v := c.GetString(key); v != "" {
			fields[field] = v
		}
	}
	return fields
}
