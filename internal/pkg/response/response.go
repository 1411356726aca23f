package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/cloudvault-backend/internal/pkg/errors"
)

// ErrorBody is the response shape for all non-2xx replies:
// a timestamp, the HTTP status, a stable category and a human-readable
// message. Validation failures additionally carry a field→message map.
type ErrorBody struct {
	Timestamp time.Time         `json:"timestamp"`
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
}

// Success writes data with a 200 status
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusOK, data)
}

// Created writes data with a 201 status
func Created(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusCreated, data)
}

// Error writes an error response with the given status and category
func Error(c *gin.Context, status int, category, message string) {
	c.JSON(status, ErrorBody{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     category,
		Message:   message,
	})
}

// BadRequest writes a 400 error
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, "Bad request", message)
}

// Unauthorized writes a 401 error
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, "Unauthorized", message)
}

// NotFound writes a 404 error
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, "Not found", message)
}

// Conflict writes a 409 error
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, "Conflict", message)
}

// InternalError writes a 500 error
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, "Internal server error", message)
}

// ValidationError writes a 400 error with a field→message details map
func ValidationError(c *gin.Context, details map[string]string) {
	c.JSON(http.StatusBadRequest, ErrorBody{
		Timestamp: time.Now().UTC(),
		Status:    http.StatusBadRequest,
		Error:     "Validation failed",
		Message:   "Invalid input data",
		Details:   details,
	})
}

// HandleError translates an AppError (or any error) into an error response.
// The error taxonomy lives in pkg/errors; this is the only place codes
// become HTTP statuses.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := apperrors.ExtractCode(err)
	status := apperrors.GetHTTPStatus(code)
	message := apperrors.FormatError(code, apperrors.GetDetails(err))

	// Never leak internals on 5xx
	if apperrors.IsServerError(code) {
		message = apperrors.GetMessage(code)
	}

	c.JSON(status, ErrorBody{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     apperrors.GetMessage(code),
		Message:   message,
	})
}
