package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/inkwell/internal/pkg/errcode"
	"github.com/xxxsen/inkwell/internal/pkg/jwt"
	"github.com/xxxsen/inkwell/internal/pkg/response"
)

const ContextUserIDKey = "user_id"

// JWTAuth verifies the bearer token and stores its user id on the context.
func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, errcode.ErrUnauthorized, "missing authorization")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Abort(c, errcode.ErrUnauthorized, "invalid authorization")
			return
		}
		claims, err := jwt.ParseToken(parts[1], secret)
		if err != nil {
			logutil.GetLogger(c.Request.Context()).Debug("reject token",
				zap.String("request_id", c.GetString(ContextRequestIDKey)), zap.Error(err))
			response.Abort(c, errcode.ErrUnauthorized, "invalid token")
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}
