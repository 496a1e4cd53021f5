package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pos-backend/internal/shared/response"
	"pos-backend/pkg/jwt"
	"pos-backend/pkg/logger"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// AuthMiddleware validates the Bearer token and stores the cashier id and
// role on the gin context.
func AuthMiddleware(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.ErrorResponse(c, http.StatusUnauthorized, "AUTH_001", "missing authorization header")
			c.Abort()
			return
		}

		// 2. "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.ErrorResponse(c, http.StatusUnauthorized, "AUTH_002", "invalid authorization header format")
			c.Abort()
			return
		}

		// 3. Verify
		claims, err := manager.ValidateAccessToken(parts[1])
		if err != nil {
			logger.Debug("token rejected: " + err.Error())
			response.ErrorResponse(c, http.StatusUnauthorized, "AUTH_003", "invalid token")
			c.Abort()
			return
		}

		// 4. Cashier ids are numeric
		userID, err := strconv.ParseInt(claims.UserID, 10, 64)
		if err != nil || userID <= 0 {
			response.ErrorResponse(c, http.StatusUnauthorized, "AUTH_004", "invalid user ID in token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// RequireRole lets the request through only for one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		response.ErrorResponse(c, http.StatusForbidden, "AUTH_005", "access denied for role "+strconv.Quote(role))
		c.Abort()
	}
}

// UserID returns the authenticated cashier id.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
