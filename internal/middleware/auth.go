package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/pkg/auth"
	"github.com/vitemonmedoc/medoc/pkg/httputil"
)

const ContextClaims = "claims"

const (
	msgMissingToken = "Token d’authentification manquant"
	msgForbidden    = "Accès refusé"
)

type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	authService TokenAuthenticator
}

func NewAuthMiddleware(authService TokenAuthenticator) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate verifies the bearer token and stores its claims in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithStatus(c, http.StatusUnauthorized, msgMissingToken)
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			httputil.RespondWithStatus(c, http.StatusUnauthorized, "invalid authorization format")
			return
		}

		claims, err := m.authService.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// RequireRole must run after Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			httputil.RespondWithStatus(c, http.StatusUnauthorized, msgMissingToken)
			return
		}
		for _, r := range roles {
			if claims.Type == r {
				c.Next()
				return
			}
		}
		httputil.RespondWithStatus(c, http.StatusForbidden, msgForbidden)
	}
}

func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
