package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"auth-service/internal/domain"
	"auth-service/internal/service"
)

const (
	authPrincipalKey = "auth_principal"
	authUserKey      = "auth_user"
)

var errMissingBearer = errors.New("missing bearer token")

// Authenticator es una estrategia de autenticacion elegida por ruta.
type Authenticator interface {
	Authenticate(c *gin.Context) (service.Principal, error)
}

// CredentialGuard autentica con {email, password} en el body.
type CredentialGuard struct {
	auth *service.AuthService
}

func NewCredentialGuard(auth *service.AuthService) *CredentialGuard {
	return &CredentialGuard{auth: auth}
}

func (g *CredentialGuard) Authenticate(c *gin.Context) (service.Principal, error) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return service.Principal{}, err
	}

	user, err := g.auth.ValidateCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		return service.Principal{}, err
	}
	c.Set(authUserKey, user)
	return service.Principal{UserID: user.ID, Email: user.Email}, nil
}

// TokenGuard autentica con Authorization: Bearer <token de sesion>.
type TokenGuard struct {
	auth *service.AuthService
}

func NewTokenGuard(auth *service.AuthService) *TokenGuard {
	return &TokenGuard{auth: auth}
}

func (g *TokenGuard) Authenticate(c *gin.Context) (service.Principal, error) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		return service.Principal{}, errMissingBearer
	}
	return g.auth.Authenticate(c.Request.Context(), token)
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[len("Bearer "):])
	return token, token != ""
}

// RequireAuth corta el request con 401 si la estrategia falla; la causa nunca se expone.
func RequireAuth(a Authenticator, m *Metrics) gin.HandlerFunc {
	name := guardName(a)
	return func(c *gin.Context) {
		if a == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		principal, err := a.Authenticate(c)
		if err != nil {
			m.guardDecision(name, "rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		m.guardDecision(name, "allowed")
		c.Set(authPrincipalKey, principal)
		c.Next()
	}
}

func guardName(a Authenticator) string {
	switch a.(type) {
	case *CredentialGuard:
		return "credential"
	case *TokenGuard:
		return "token"
	default:
		return "custom"
	}
}

// GetPrincipal obtiene el principal que dejo RequireAuth.
func GetPrincipal(c *gin.Context) (service.Principal, bool) {
	val, ok := c.Get(authPrincipalKey)
	if !ok {
		return service.Principal{}, false
	}
	principal, ok := val.(service.Principal)
	return principal, ok
}

// GetAuthUser obtiene el usuario resuelto por CredentialGuard.
func GetAuthUser(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(authUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}
