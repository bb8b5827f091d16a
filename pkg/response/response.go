package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the unified API response format.
// ErrCode carries a machine-readable error identifier (e.g. SCHEDULE_CONFLICT)
// for clients that dispatch on error kind rather than message text.
type Response struct {
	Code    int         `json:"code"`
	ErrCode string      `json:"error,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AppError represents a structured application error with HTTP status and error codes.
type AppError struct {
	HTTPStatus int    // HTTP status code (e.g. 400, 404, 500)
	Code       int    // Application-level numeric error code
	ErrCode    string // Machine-readable error identifier
	Message    string // Human-readable error message
	Data       any    // Optional structured detail (e.g. conflicting record)
}

func (e *AppError) Error() string {
	return e.Message
}

// Pre-defined error constructors

func NewBadRequest(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Code: 400, Message: msg}
}

func NewNotFound(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Code: 404, Message: msg}
}

func NewServerError(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusInternalServerError, Code: 500, Message: msg}
}

func NewUnavailable(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusServiceUnavailable, Code: 503, Message: msg}
}

// NewScheduleConflict builds the 400 SCHEDULE_CONFLICT error the assignment
// API returns when a consultant is already booked for the requested window.
func NewScheduleConflict(msg string, detail any) *AppError {
	return &AppError{
		HTTPStatus: http.StatusBadRequest,
		Code:       400,
		ErrCode:    "SCHEDULE_CONFLICT",
		Message:    msg,
		Data:       detail,
	}
}

// --- Gin response helpers ---

// Success sends a 200 OK response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "ok",
		Data:    data,
	})
}

// Created sends a 201 Created response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// Error sends an error response. If err is an *AppError, its codes and status
// are used; otherwise a generic 500 internal server error is returned.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, Response{
			Code:    appErr.Code,
			ErrCode: appErr.ErrCode,
			Message: appErr.Message,
			Data:    appErr.Data,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, Response{
		Code:    500,
		Message: err.Error(),
	})
}

// Convenience error response functions

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: 400, Message: msg})
}

func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Code: 404, Message: msg})
}

func ServerError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, Response{Code: 500, Message: msg})
}

func Unavailable(c *gin.Context, msg string) {
	c.JSON(http.StatusServiceUnavailable, Response{Code: 503, Message: msg})
}
