package middleware

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"gradhire-backend/internal/delivery/http/response"
	"gradhire-backend/internal/domain"
	"gradhire-backend/pkg/apperror"
	"gradhire-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims issued by the identity service. Role is one of jobseeker, employer, admin.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates an HS256 bearer token (or auth_token cookie) and
// puts the caller's id and role on the context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		// 1. Try to get token from Header
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else if cookie, err := c.Cookie("auth_token"); err == nil && cookie != "" {
			// 2. Try to get token from Cookie
			tokenString = cookie
		}

		if tokenString == "" {
			unauthorized(c, "Authorization header or auth_token cookie required")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if secret == "" {
				return nil, fmt.Errorf("JWT_SECRET is not configured")
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || !token.Valid {
			logger.Log.DebugContext(c.Request.Context(), "token validation failed", "error", err)
			unauthorized(c, "Invalid token")
			return
		}

		if claims.Subject == "" || !slices.Contains([]string{domain.RoleJobseeker, domain.RoleEmployer, domain.RoleAdmin}, claims.Role) {
			unauthorized(c, "Invalid claims")
			return
		}

		c.Set(string(domain.KeyUserID), claims.Subject)
		c.Set(string(domain.KeyUserEmail), claims.Email)
		c.Set(string(domain.KeyUserRole), claims.Role)

		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated role is one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, c.GetString(string(domain.KeyUserRole))) {
			response.Error(c, http.StatusForbidden, "Insufficient role", response.ErrorBody{
				Kind: string(apperror.KindAuthorization),
				Code: apperror.CodeRoleNotAllowed,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	response.Error(c, http.StatusUnauthorized, message, response.ErrorBody{
		Kind: string(apperror.KindAuthorization),
		Code: apperror.CodeUnauthenticated,
	})
	c.Abort()
}
