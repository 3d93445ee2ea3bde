package server

import (
	"net/http"
	"strings"
	"time"

	"taskboard/internal/domain/errors"
	"taskboard/internal/domain/models"
	"taskboard/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const userContextKey = "currentUser"

// authRequired разрешает запрос только при валидном заголовке
// Authorization: Bearer <token> и кладёт найденного пользователя в контекст.
func (api *TaskAPI) authRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthorized.Error()})
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthorized.Error()})
			return
		}

		user, err := api.users.GetUserByToken(parts[1])
		if err != nil || user == nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthorized.Error()})
			return
		}

		ctx.Set(userContextKey, user)
		ctx.Next()
	}
}

func currentUser(ctx *gin.Context) *models.User {
	value, exists := ctx.Get(userContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

func RequestLogging() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		logger.HttpRequestInfo(ctx.Request, "http request",
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
