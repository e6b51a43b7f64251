package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/contacts-api/internal/domain"
	"github.com/ErlanBelekov/contacts-api/internal/identity"
	"github.com/ErlanBelekov/contacts-api/internal/transport/http/respond"
	"github.com/ErlanBelekov/contacts-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, email, password string) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (*usecase.LoginResult, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

// No binding tags: the usecase owns validation so the checks keep their order.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type registerResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type loginResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type meResponse struct {
	User userResponse `json:"user"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	account, err := h.authUsecase.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, registerResponse{
		Message: msgRegistered,
		User:    userResponse{ID: account.ID, Email: account.Email},
	})
}

// POST /api/auth/login
// Unknown email and wrong password get the same 400 response.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	result, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Message:   msgLoggedIn,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC(),
		User:      userResponse{ID: result.Identity.AccountID, Email: result.Identity.Email},
	})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := identity.FromContext(c.Request.Context())
	if !ok {
		respond.Error(c, h.logger, domain.ErrMissingToken)
		return
	}
	c.JSON(http.StatusOK, meResponse{User: userResponse{ID: id.AccountID, Email: id.Email}})
}
