package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ucpm/scrum-api/internal/auth"
	"github.com/ucpm/scrum-api/internal/constants"
	apierrors "github.com/ucpm/scrum-api/internal/errors"
	"github.com/ucpm/scrum-api/internal/metrics"
)

// RequireAuth checks the bearer access token and stores the user ID in the context
func RequireAuth(tokens *auth.TokenIssuer, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, constants.BearerPrefix) {
			m.IncAuthFailure("missing_token")
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		claims, err := tokens.Verify(strings.TrimSpace(strings.TrimPrefix(header, constants.BearerPrefix)), constants.TokenTypeAccess)
		if err != nil {
			reason := "invalid_token"
			message := "Token is invalid"
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				reason, message = "expired_token", "Token has expired"
			case errors.Is(err, auth.ErrWrongTokenType):
				reason, message = "wrong_token_type", "An access token is required"
			}
			m.IncAuthFailure(reason)
			apierrors.Unauthorized(c, message)
			c.Abort()
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			m.IncAuthFailure("invalid_subject")
			apierrors.Unauthorized(c, "Token is invalid")
			c.Abort()
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
