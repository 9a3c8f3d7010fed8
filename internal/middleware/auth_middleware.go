package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/edumanage/internal/app/auth"
	jwtauth "github.com/yigit/edumanage/internal/pkg/auth"
)

const principalKey = "principal"

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *jwtauth.JWTService
	logger     zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *jwtauth.JWTService, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger,
	}
}

// JWTAuth validates the bearer token and stores the caller's Principal on
// the request context. Missing, malformed and expired tokens are all 401.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return m.authenticate(false)
}

// JWTAuthWithQueryToken also accepts the token as ?token=. Only for the
// WebSocket upgrade route, where browsers cannot set headers.
func (m *AuthMiddleware) JWTAuthWithQueryToken() gin.HandlerFunc {
	return m.authenticate(true)
}

func (m *AuthMiddleware) authenticate(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" && allowQuery {
			if token := c.Query("token"); token != "" {
				header = "Bearer " + token
			}
		}

		tokenString, err := jwtauth.ExtractBearerToken(header)
		if err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			m.logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Rejected bearer token")
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		c.Set(principalKey, auth.PrincipalFromClaims(claims))
		c.Next()
	}
}

// Require evaluates auth.Authorize against the caller. It must run after JWTAuth.
func (m *AuthMiddleware) Require(req auth.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Authorize(CurrentPrincipal(c), req); err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentPrincipal returns the authenticated caller, or nil outside JWTAuth.
func CurrentPrincipal(c *gin.Context) *auth.Principal {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}
