package authhandler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"todo-server/services/todo-api/internal/domain/user"
	"todo-server/services/todo-api/internal/infrastructure/auth"
	"todo-server/services/todo-api/internal/infrastructure/metrics"
	"todo-server/services/todo-api/internal/interfaces/httpserver/responses"
	"todo-server/services/todo-api/internal/utils/platformerrors"
)

type AuthHandler struct {
	users  *user.UserService
	tokens *auth.TokenManager
	logger zerolog.Logger
}

func NewAuthHandler(users *user.UserService, tokens *auth.TokenManager, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        userInfo  `json:"user"`
}

type userInfo struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Signup registers a new account and returns an access token.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("signup", "invalid").Inc()
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "email and password are required", "2f3a4b5c-6d7e-4f8a-8b9c-0d1e2f3a4b5d")
		return
	}

	u, err := h.users.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("signup", "failure").Inc()
		responses.HandleError(c, err, "signup failed")
		return
	}

	token, expiresAt, err := h.tokens.Issue(c.Request.Context(), u.ID, u.Email)
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("signup", "failure").Inc()
		responses.HandleError(c, err, "failed to issue token")
		return
	}

	metrics.AuthRequestsTotal.WithLabelValues("signup", "success").Inc()
	h.logger.Info().Str("email", u.Email).Msg("user signed up")

	c.JSON(http.StatusCreated, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        userInfo{Email: u.Email, CreatedAt: u.CreatedAt},
	})
}

// Signin verifies credentials and returns an access token.
func (h *AuthHandler) Signin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("signin", "invalid").Inc()
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "email and password are required", "4b5c6d7e-8f9a-4b0c-8d1e-2f3a4b5c6d7f")
		return
	}

	u, err := h.users.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("signin", "failure").Inc()
		responses.HandleError(c, err, "signin failed")
		return
	}

	token, expiresAt, err := h.tokens.Issue(c.Request.Context(), u.ID, u.Email)
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("signin", "failure").Inc()
		responses.HandleError(c, err, "failed to issue token")
		return
	}

	metrics.AuthRequestsTotal.WithLabelValues("signin", "success").Inc()

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        userInfo{Email: u.Email, CreatedAt: u.CreatedAt},
	})
}
