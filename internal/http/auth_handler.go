package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auth-service/internal/service"
)

// AuthHandler mantiene dependencias para los endpoints /auth.
type AuthHandler struct {
	logger  *zap.Logger
	auth    *service.AuthService
	metrics *Metrics
}

// NewAuthHandler crea una instancia de AuthHandler.
func NewAuthHandler(logger *zap.Logger, auth *service.AuthService, metrics *Metrics) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		logger:  logger,
		auth:    auth,
		metrics: metrics,
	}
}

// Register maneja POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email           string `json:"email" binding:"required,email"`
		Password        string `json:"password" binding:"required"`
		PasswordConfirm string `json:"password_confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		h.badRequest(c, "register", "invalid request")
		return
	}

	res, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		h.writeError(c, "register", err)
		return
	}

	h.metrics.operation("register", strconv.Itoa(http.StatusCreated))
	c.JSON(http.StatusCreated, res)
}

// VerifyEmail maneja PUT /auth/verifyEmail?token=.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		h.badRequest(c, "verify_email", "token is required")
		return
	}

	res, err := h.auth.VerifyEmail(c.Request.Context(), token)
	if err != nil {
		h.writeError(c, "verify_email", err)
		return
	}

	h.metrics.operation("verify_email", strconv.Itoa(http.StatusOK))
	c.JSON(http.StatusOK, res)
}

// GetToken maneja GET /auth/getToken?email=.
func (h *AuthHandler) GetToken(c *gin.Context) {
	emailAddr := c.Query("email")
	if emailAddr == "" {
		h.badRequest(c, "get_token", "email is required")
		return
	}

	token, err := h.auth.RequestToken(c.Request.Context(), emailAddr)
	if err != nil {
		h.writeError(c, "get_token", err)
		return
	}

	h.metrics.operation("get_token", strconv.Itoa(http.StatusOK))
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// PasswordReset maneja PUT /auth/passwordReset.
func (h *AuthHandler) PasswordReset(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
		Token           string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid password reset request", zap.Error(err))
		h.badRequest(c, "password_reset", "invalid request")
		return
	}

	res, err := h.auth.ResetPassword(c.Request.Context(), service.ResetPasswordInput{
		Token:           req.Token,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		h.writeError(c, "password_reset", err)
		return
	}

	h.metrics.operation("password_reset", strconv.Itoa(http.StatusOK))
	c.JSON(http.StatusOK, res)
}

// Login maneja POST /auth/login; corre detras de CredentialGuard.
func (h *AuthHandler) Login(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		h.writeError(c, "login", service.ErrUnauthenticated)
		return
	}

	res, err := h.auth.Login(user)
	if err != nil {
		h.writeError(c, "login", err)
		return
	}

	h.metrics.operation("login", strconv.Itoa(http.StatusCreated))
	c.JSON(http.StatusCreated, res)
}

// Logout maneja POST /auth/logout; corre detras de TokenGuard.
func (h *AuthHandler) Logout(c *gin.Context) {
	principal, ok := GetPrincipal(c)
	if !ok {
		h.writeError(c, "logout", service.ErrUnauthenticated)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), principal); err != nil {
		h.writeError(c, "logout", err)
		return
	}

	h.metrics.operation("logout", strconv.Itoa(http.StatusOK))
	c.JSON(http.StatusOK, service.StatusResult{StatusCode: http.StatusOK, Message: "Logout successful"})
}

// Profile maneja GET /auth/profile; corre detras de TokenGuard.
func (h *AuthHandler) Profile(c *gin.Context) {
	principal, ok := GetPrincipal(c)
	if !ok {
		h.writeError(c, "profile", service.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": principal})
}

func (h *AuthHandler) badRequest(c *gin.Context, op, msg string) {
	h.metrics.operation(op, strconv.Itoa(http.StatusBadRequest))
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// writeError traduce errores del servicio a status HTTP.
func (h *AuthHandler) writeError(c *gin.Context, op string, err error) {
	status := statusForError(err)
	h.metrics.operation(op, strconv.Itoa(status))

	switch status {
	case http.StatusUnauthorized:
		c.JSON(status, gin.H{"error": "unauthorized"})
	case http.StatusInternalServerError:
		h.logger.Error(op+" failed", zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
	default:
		c.JSON(status, gin.H{"error": err.Error()})
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrAlreadyVerified),
		errors.Is(err, service.ErrWrongCredential):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
