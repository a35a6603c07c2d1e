package middleware

import (
	"net/http"
	"strings"

	"github.com/Pankajse/YardStick/pkg/jwtutil"
	"github.com/Pankajse/YardStick/pkg/logger"
	"github.com/Pankajse/YardStick/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const identityKey = "identity"

// AuthMiddleware validates the bearer token and stores the verified identity
// on the request context. It never touches the database.
func AuthMiddleware(tokens *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := strings.TrimSpace(c.Request().Header.Get("Authorization"))
			if authHeader == "" {
				log.Warn("Missing Authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token"})
			}

			parts := strings.Fields(authHeader)
			if len(parts) < 2 {
				log.Warn("Authorization header has no credential")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token"})
			}
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				log.Warn("Invalid Authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
			}

			claims, err := tokens.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
			}

			c.Set(identityKey, claims.Identity)
			logger.Attach(c, log.With(
				zap.String("user_id", claims.UserID),
				zap.String("tenant_id", claims.TenantID),
			))

			return next(c)
		}
	}
}

// IdentityFromContext returns the identity stored by AuthMiddleware
func IdentityFromContext(c echo.Context) (jwtutil.Identity, bool) {
	identity, ok := c.Get(identityKey).(jwtutil.Identity)
	return identity, ok
}
