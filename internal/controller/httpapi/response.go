package httpapi

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/artacademy/internal/model"
	"github.com/gin-gonic/gin"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorData  `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error:   &ErrorData{Code: code, Message: message},
	})
}

func badRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// writeError переводит доменные ошибки в HTTP-статусы
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrNotAuthenticated):
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	case errors.Is(err, model.ErrForbidden):
		fail(c, http.StatusForbidden, "FORBIDDEN", "access denied")
	case errors.Is(err, model.ErrNotFound):
		fail(c, http.StatusNotFound, "NOT_FOUND", "not found")
	case errors.Is(err, model.ErrInvalidJoinRequest):
		fail(c, http.StatusBadRequest, "INVALID_JOIN_REQUEST", "channel or session_id is required")
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrInvalidPaymentStatus):
		fail(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
	case errors.Is(err, model.ErrNotJoinable):
		fail(c, http.StatusConflict, "NOT_JOINABLE", "session is not live")
	case errors.Is(err, model.ErrSessionAlreadyLive):
		fail(c, http.StatusConflict, "ALREADY_LIVE", "session already has an active channel")
	case errors.Is(err, model.ErrSessionEnded):
		fail(c, http.StatusConflict, "SESSION_ENDED", "session window has ended")
	case errors.Is(err, model.ErrStoreUnavailable):
		fail(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "please try again later")
	default:
		fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
