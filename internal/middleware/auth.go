package middleware

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/dto"
	"github.com/enkamba/enkamba_payments/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func abortUnauthenticated(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: dto.ErrorBody{Code: apperrors.CodeUnauthenticated, Message: msg},
	})
}

// AuthMiddleware creates a Gin middleware handler that validates JWT tokens.
// The token subject becomes the verified caller identity.
func AuthMiddleware(jwtSecret string, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			abortUnauthenticated(c, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			abortUnauthenticated(c, "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := utils.ParseAndValidateJWT(parts[1], jwtSecret, issuer)
		if err != nil {
			logger.Warn("Invalid token", slog.String("error", err.Error()))
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			abortUnauthenticated(c, msg)
			return
		}
		if claims.Subject == "" {
			logger.Warn("Token has no subject")
			abortUnauthenticated(c, "Invalid token claims")
			return
		}

		ctx := WithUserID(c.Request.Context(), claims.Subject)
		ctx = WithLogger(ctx, logger.With(slog.String("user_id", claims.Subject)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// JobsAPIKeyAuth guards the endpoints invoked by the scheduler clock and the
// payout channel. Requests must carry the configured key in x-api-key.
func JobsAPIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())
		presented := c.GetHeader("x-api-key")
		if apiKey == "" || presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(apiKey)) != 1 {
			logger.Warn("Jobs API key rejected")
			abortUnauthenticated(c, "A valid x-api-key header is required")
			return
		}
		c.Next()
	}
}
