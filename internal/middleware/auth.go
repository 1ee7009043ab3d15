package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"netowork_backend/internal/logger"
	"netowork_backend/internal/models"
	"netowork_backend/pkg/apperrors"
	"netowork_backend/pkg/contextkeys"
)

// Authenticator проверяет токен сессии и возвращает активного пользователя
type Authenticator interface {
	Authenticate(ctx context.Context, db *gorm.DB, sessionToken string) (*models.User, error)
}

// AuthMiddleware читает подписанную cookie сессии, проверяет сессию в Redis
// и кладет пользователя в gin.Context и в контекст логгера. Cookie
// перевыпускается, чтобы ее срок скользил вместе с сессией.
// Должен стоять после DBMiddleware.
func AuthMiddleware(authenticator Authenticator, cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token, present, err := cookie.Read(c)
		if !present {
			apperrors.HandleError(c, apperrors.ErrUnauthorized)
			return
		}
		if err != nil {
			logger.CtxWarn(ctx, "Rejected session cookie with bad signature", "ip", c.ClientIP())
			apperrors.HandleError(c, apperrors.ErrUnauthorized)
			return
		}

		db, ok := dbFromContext(c)
		if !ok {
			logger.CtxError(ctx, "critical error: db key not found in context")
			apperrors.HandleError(c, apperrors.InternalError(nil))
			return
		}

		user, err := authenticator.Authenticate(ctx, db, token)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.Set(contextkeys.UserKey, user)
		c.Set(contextkeys.SessionTokenKey, token)
		c.Request = c.Request.WithContext(logger.WithUserID(ctx, user.ID))

		if err := cookie.Write(c, token); err != nil {
			logger.CtxWithError(c.Request.Context(), "Failed to refresh session cookie", err)
		}

		c.Next()
	}
}

// Restrict пропускает только пользователей с одной из ролей.
// Без пользователя в контексте - 401, с чужой ролью - 403.
func Restrict(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			apperrors.HandleError(c, apperrors.ErrUnauthorized)
			return
		}
		if !user.HasRole(roles...) {
			logger.CtxWarn(c.Request.Context(), "Access denied by role",
				"role", user.Role,
				"path", c.FullPath(),
			)
			apperrors.HandleError(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// CurrentUser - пользователь, которого положил AuthMiddleware
func CurrentUser(c *gin.Context) (*models.User, bool) {
	val, ok := c.Get(contextkeys.UserKey)
	if !ok {
		return nil, false
	}
	user, ok := val.(*models.User)
	return user, ok && user != nil
}

// SessionToken - токен текущей сессии (без подписи)
func SessionToken(c *gin.Context) string {
	return c.GetString(contextkeys.SessionTokenKey)
}

func dbFromContext(c *gin.Context) (*gorm.DB, bool) {
	val, ok := c.Get(string(contextkeys.DBContextKey))
	if !ok {
		return nil, false
	}
	db, ok := val.(*gorm.DB)
	return db, ok && db != nil
}
