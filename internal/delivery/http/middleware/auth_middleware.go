package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"go-hirestream-backend/config"
	"go-hirestream-backend/internal/delivery/http/response"
	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/pkg/auth"
)

func AuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		var tokenString string

		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else {
			// SSE clients cannot set headers; accept the token from a
			// cookie or query parameter as well.
			if cookie, err := c.Cookie("auth_token"); err == nil && cookie != "" {
				tokenString = cookie
			} else if q := c.Query("token"); q != "" {
				tokenString = q
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
				if cfg.AuthJWTSecret == "" {
					return nil, fmt.Errorf("HS256 token received but AUTH_JWT_SECRET is not configured")
				}
				return []byte(cfg.AuthJWTSecret), nil
			}
			if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
				return jwksProvider.KeyFunc(token)
			}
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		})
		if err != nil || !token.Valid {
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}

		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		role := extractRole(claims)

		if sub == "" {
			response.Error(c, http.StatusUnauthorized, "Token has no subject", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), sub)
		c.Set(string(domain.KeyUserEmail), email)
		c.Set(string(domain.KeyUserRole), role)

		c.Next()
	}
}

// extractRole reads the role from the top-level claim or the auth provider's
// metadata block. Candidate is the fallback.
func extractRole(claims jwt.MapClaims) string {
	if role, _ := claims["role"].(string); role == domain.RoleCandidate || role == domain.RoleHiring {
		return role
	}
	if meta, ok := claims["app_metadata"].(map[string]interface{}); ok {
		if role, _ := meta["role"].(string); role == domain.RoleCandidate || role == domain.RoleHiring {
			return role
		}
	}
	return domain.RoleCandidate
}

// Actor builds the domain actor from the authenticated request context.
func Actor(c *gin.Context) domain.Actor {
	return domain.Actor{
		UserID: c.GetString(string(domain.KeyUserID)),
		Email:  c.GetString(string(domain.KeyUserEmail)),
		Role:   c.GetString(string(domain.KeyUserRole)),
	}
}
