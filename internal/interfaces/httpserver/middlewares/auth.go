package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"todo-server/services/todo-api/internal/domain"
	"todo-server/services/todo-api/internal/infrastructure/auth"
	"todo-server/services/todo-api/internal/interfaces/httpserver/responses"
	"todo-server/services/todo-api/internal/utils/platformerrors"
)

const principalContextKey = "principal"

// AuthMiddleware validates bearer tokens and attaches the authenticated
// principal to the gin context. Requests without a valid token never reach
// the handlers.
func AuthMiddleware(tokens *auth.TokenManager, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			logger.Warn().
				Str("path", c.FullPath()).
				Str("method", c.Request.Method).
				Msg("unauthenticated request")
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "0d1e2f3a-4b5c-4d6e-8f7a-8b9c0d1e2f3b")
			return
		}

		claims, err := tokens.Validate(c.Request.Context(), token)
		if err != nil {
			logger.Warn().Err(err).Msg("token validation failed")
			responses.HandleError(c, err, "unauthorized")
			return
		}

		setPrincipal(c, domain.Principal{
			UserID: claims.UserID,
			Email:  claims.Email,
		})

		c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	val, ok := c.Get(principalContextKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := val.(domain.Principal)
	return principal, ok
}

func setPrincipal(c *gin.Context, principal domain.Principal) {
	c.Set(principalContextKey, principal)
	c.Set("user_id", principal.UserID)
	c.Set("user_email", principal.Email)
}
