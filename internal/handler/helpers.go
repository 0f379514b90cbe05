package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/inkwell/internal/middleware"
	"github.com/xxxsen/inkwell/internal/pkg/errcode"
	appErr "github.com/xxxsen/inkwell/internal/pkg/errors"
	"github.com/xxxsen/inkwell/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextUserIDKey)
	userID, _ := value.(string)
	return userID
}

func queryUint(c *gin.Context, key string) uint {
	value := c.Query(key)
	if value == "" {
		return 0
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0
	}
	return uint(parsed)
}

func invalidRequest(c *gin.Context, err error) {
	msg := "invalid request"
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		msg = "request body exceeds " + formatBodyLimit(tooLarge.Limit)
	}
	response.Error(c, errcode.ErrInvalid, msg)
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logger := logutil.GetLogger(c.Request.Context()).With(
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("user_id", getUserID(c)),
		zap.String("request_id", c.GetString(middleware.ContextRequestIDKey)),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, err.Error())
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, errcode.ErrConflict, "conflict")
	case errors.Is(err, appErr.ErrTooMany):
		response.Error(c, errcode.ErrTooMany, "too many requests")
	case errors.Is(err, appErr.ErrUnavailable):
		logger.Warn("storage unavailable")
		response.Error(c, errcode.ErrUnavailable, "storage unavailable")
	default:
		logger.Error("request failed")
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
