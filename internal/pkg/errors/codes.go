package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer = 1000
	ErrInvalidParams  = 1001
	ErrNotFound       = 1002
	ErrUnauthorized   = 1003
	ErrForbidden      = 1004
	ErrConflict       = 1005
	ErrBadRequest     = 1006

	// Auth errors (2000-2999)
	ErrAuthInvalidCredentials = 2000
	ErrAuthInvalidToken       = 2001
	ErrAuthTokenExpired       = 2002

	// User errors (3000-3999)
	ErrUserNotFound     = 3000
	ErrUsernameTaken    = 3001
	ErrEmailTaken       = 3002
	ErrUserInvalidInput = 3003

	// File errors (4000-4999)
	ErrFileNotFound       = 4000
	ErrFileInvalidInput   = 4001
	ErrFileTypeNotAllowed = 4002
	ErrFileTooLarge       = 4003
	ErrFileStorageFailed  = 4004
	ErrShareLinkNotFound  = 4005
	ErrShareInvalidExpiry = 4006
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer: {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:  {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:       {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:   {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:      {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrConflict:       {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrBadRequest:     {ErrBadRequest, http.StatusBadRequest, "Bad request"},

	// Auth errors
	ErrAuthInvalidCredentials: {ErrAuthInvalidCredentials, http.StatusUnauthorized, "Invalid username or password"},
	ErrAuthInvalidToken:       {ErrAuthInvalidToken, http.StatusUnauthorized, "Invalid or expired token"},
	ErrAuthTokenExpired:       {ErrAuthTokenExpired, http.StatusUnauthorized, "Token expired"},

	// User errors
	ErrUserNotFound:     {ErrUserNotFound, http.StatusNotFound, "User not found"},
	ErrUsernameTaken:    {ErrUsernameTaken, http.StatusConflict, "Username is already taken"},
	ErrEmailTaken:       {ErrEmailTaken, http.StatusConflict, "Email is already in use"},
	ErrUserInvalidInput: {ErrUserInvalidInput, http.StatusBadRequest, "Invalid user input"},

	// File errors
	ErrFileNotFound:       {ErrFileNotFound, http.StatusNotFound, "File not found"},
	ErrFileInvalidInput:   {ErrFileInvalidInput, http.StatusBadRequest, "Invalid file input"},
	ErrFileTypeNotAllowed: {ErrFileTypeNotAllowed, http.StatusBadRequest, "File type not allowed"},
	ErrFileTooLarge:       {ErrFileTooLarge, http.StatusBadRequest, "File size exceeds maximum limit"},
	ErrFileStorageFailed:  {ErrFileStorageFailed, http.StatusInternalServerError, "File storage error"},
	ErrShareLinkNotFound:  {ErrShareLinkNotFound, http.StatusNotFound, "Shared file not found"},
	ErrShareInvalidExpiry: {ErrShareInvalidExpiry, http.StatusBadRequest, "Invalid share link expiration"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsClientError checks if the code represents a client error (4xx)
func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// IsServerError checks if the code represents a server error (5xx)
func IsServerError(code int) bool {
	return GetHTTPStatus(code) >= 500
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
