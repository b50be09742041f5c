package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/recipewiz/backend/internal/infrastructure/security"
	"github.com/recipewiz/backend/pkg/errors"
)

// RequireUser checks the bearer token and that its subject owns the
// :userId path parameter. It is a no-op when auth is disabled.
func (m *Middleware) RequireUser(auth *security.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.config.Auth.Enabled {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			m.abortWithError(c, errors.NewUnauthorizedError("Authorization header required"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.abortWithError(c, errors.NewUnauthorizedError("Invalid authorization header format"))
			return
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			m.logger.Debug("Token rejected", zap.Error(err))
			m.abortWithError(c, errors.NewUnauthorizedError("Invalid token"))
			return
		}

		subject, err := claims.UserID()
		if err != nil {
			m.abortWithError(c, errors.NewUnauthorizedError("Invalid token subject"))
			return
		}

		if param := c.Param("userId"); param != "" && param != strconv.FormatInt(subject, 10) {
			m.abortWithError(c, errors.NewForbiddenError("Token does not grant access to this user"))
			return
		}

		c.Set(userIDKey, subject)
		c.Next()
	}
}
