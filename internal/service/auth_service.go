package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"auth-service/internal/domain"
	"auth-service/internal/email"
	"auth-service/internal/repository"
)

// validationError agrupa las violaciones de reglas de negocio bajo ErrValidation.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

var (
	ErrValidation        = errors.New("validation failed")
	ErrPasswordMismatch  error = &validationError{msg: "password do not match"}
	ErrAlreadyRegistered error = &validationError{msg: "email is already registered"}
	ErrInvalidEmail      error = &validationError{msg: "invalid email"}
	ErrEmptyPassword     error = &validationError{msg: "password is required"}
	ErrAlreadyVerified         = errors.New("email already verified")
	ErrWrongCredential         = errors.New("wrong current password")
	ErrUserNotFound            = errors.New("user not found")
	ErrUnauthenticated         = errors.New("unauthorized")
)

// AuthConfig define la validez de cada tipo de token.
type AuthConfig struct {
	SessionTTL      time.Duration
	VerificationTTL time.Duration
	TokenTTL        time.Duration
}

func (c AuthConfig) withDefaults() AuthConfig {
	if c.SessionTTL <= 0 {
		c.SessionTTL = time.Hour
	}
	if c.VerificationTTL <= 0 {
		c.VerificationTTL = 15 * time.Minute
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = time.Hour
	}
	return c
}

// Principal es la identidad que un guard adjunta al request.
type Principal struct {
	UserID    int64     `json:"id"`
	Email     string    `json:"email"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

type RegisterInput struct {
	Email           string
	Password        string
	PasswordConfirm string
}

type ResetPasswordInput struct {
	Token           string
	CurrentPassword string
	NewPassword     string
}

type RegisterResult struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Token      string `json:"token"`
}

type StatusResult struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
}

// AuthService coordina registro, verificacion de email, login y reseteo de password.
type AuthService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	tokens      *TokenService
	passwords   PasswordMatcher
	revoked     RevocationStore
	emailSender email.Sender
	cfg         AuthConfig
	now         func() time.Time
}

func NewAuthService(
	logger *zap.Logger,
	users repository.UserRepository,
	tokens *TokenService,
	passwords PasswordMatcher,
	revoked RevocationStore,
	emailSender email.Sender,
	cfg AuthConfig,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if passwords == nil {
		passwords = PlainPasswordMatcher{}
	}
	if revoked == nil {
		revoked = NewMemoryRevocationStore()
	}
	return &AuthService{
		logger:      logger,
		users:       users,
		tokens:      tokens,
		passwords:   passwords,
		revoked:     revoked,
		emailSender: emailSender,
		cfg:         cfg.withDefaults(),
		now:         time.Now,
	}
}

// ValidateCredentials devuelve el usuario sin password si email y password coinciden.
// Usuario inexistente y password incorrecto producen el mismo ErrUnauthenticated.
func (s *AuthService) ValidateCredentials(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrUnauthenticated
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUnauthenticated
		}
		return domain.User{}, err
	}
	if !s.passwords.Compare(user.Password, password) {
		return domain.User{}, ErrUnauthenticated
	}
	user.Password = ""
	return user, nil
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (RegisterResult, error) {
	if input.Password != input.PasswordConfirm {
		return RegisterResult{}, ErrPasswordMismatch
	}
	if input.Password == "" {
		return RegisterResult{}, ErrEmptyPassword
	}
	emailAddr := normalizeEmail(input.Email)
	if emailAddr == "" {
		return RegisterResult{}, ErrInvalidEmail
	}

	_, err := s.users.GetByEmail(ctx, emailAddr)
	if err == nil {
		return RegisterResult{}, ErrAlreadyRegistered
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return RegisterResult{}, err
	}

	token, err := s.tokens.Sign(Claims{"email": emailAddr}, s.cfg.VerificationTTL)
	if err != nil {
		return RegisterResult{}, err
	}
	stored, err := s.passwords.Hash(input.Password)
	if err != nil {
		return RegisterResult{}, err
	}

	user := domain.User{
		Email:         emailAddr,
		Password:      stored,
		EmailVerified: false,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return RegisterResult{}, ErrAlreadyRegistered
		}
		return RegisterResult{}, err
	}

	s.sendVerification(ctx, emailAddr, token)

	return RegisterResult{
		StatusCode: http.StatusCreated,
		Message:    fmt.Sprintf("Verification token for email %s", emailAddr),
		Token:      token,
	}, nil
}

// sendVerification intenta enviar el token por email; el token igual se devuelve al caller.
func (s *AuthService) sendVerification(ctx context.Context, emailAddr, token string) {
	if s.emailSender == nil {
		return
	}
	expiresAt := s.now().UTC().Add(s.cfg.VerificationTTL)
	if err := s.emailSender.SendVerificationToken(ctx, emailAddr, token, expiresAt); err != nil {
		if errors.Is(err, email.ErrSenderDisabled) {
			s.logger.Debug("verification email skipped", zap.Error(err))
			return
		}
		s.logger.Warn("send verification token failed", zap.Error(err), zap.String("email", emailAddr))
	}
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) (StatusResult, error) {
	user, err := s.userFromToken(ctx, token)
	if err != nil {
		return StatusResult{}, err
	}
	if user.EmailVerified {
		return StatusResult{}, ErrAlreadyVerified
	}
	user.EmailVerified = true
	if err := s.users.Update(ctx, user); err != nil {
		return StatusResult{}, err
	}
	return StatusResult{StatusCode: http.StatusOK, Message: "Email verification successful"}, nil
}

// RequestToken firma un token {email} sin verificar que la cuenta exista.
func (s *AuthService) RequestToken(_ context.Context, emailAddr string) (string, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return "", ErrInvalidEmail
	}
	return s.tokens.Sign(Claims{"email": emailAddr}, s.cfg.TokenTTL)
}

func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) (StatusResult, error) {
	if input.NewPassword == "" {
		return StatusResult{}, ErrEmptyPassword
	}
	user, err := s.userFromToken(ctx, input.Token)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return StatusResult{}, ErrWrongCredential
		}
		return StatusResult{}, err
	}
	if !s.passwords.Compare(user.Password, input.CurrentPassword) {
		return StatusResult{}, ErrWrongCredential
	}

	stored, err := s.passwords.Hash(input.NewPassword)
	if err != nil {
		return StatusResult{}, err
	}
	user.Password = stored
	if err := s.users.Update(ctx, user); err != nil {
		return StatusResult{}, err
	}
	return StatusResult{StatusCode: http.StatusOK, Message: "Your password changed successfully"}, nil
}

// Login emite el token de sesion; se llama solo despues de validar credenciales.
func (s *AuthService) Login(user domain.User) (LoginResult, error) {
	token, err := s.tokens.Sign(Claims{
		"email": user.Email,
		"sub":   strconv.FormatInt(user.ID, 10),
	}, s.cfg.SessionTTL)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{AccessToken: token}, nil
}

// Authenticate valida un token de sesion y devuelve el principal asociado.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Principal, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return Principal{}, ErrUnauthenticated
	}
	userID, err := strconv.ParseInt(claims.Subject(), 10, 64)
	if err != nil || claims.Email() == "" || claims.ID() == "" {
		return Principal{}, ErrUnauthenticated
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID())
	if err != nil {
		s.logger.Warn("revocation lookup failed", zap.Error(err))
		return Principal{}, ErrUnauthenticated
	}
	if revoked {
		return Principal{}, ErrUnauthenticated
	}
	return Principal{
		UserID:    userID,
		Email:     claims.Email(),
		TokenID:   claims.ID(),
		ExpiresAt: claims.ExpiresAt(),
	}, nil
}

// Logout invalida el token de sesion hasta su propio vencimiento.
func (s *AuthService) Logout(ctx context.Context, principal Principal) error {
	if principal.TokenID == "" {
		return ErrUnauthenticated
	}
	ttl := principal.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.revoked.Revoke(ctx, principal.TokenID, ttl)
}

func (s *AuthService) userFromToken(ctx context.Context, token string) (domain.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return domain.User{}, ErrInvalidToken
	}
	emailAddr := normalizeEmail(claims.Email())
	if emailAddr == "" {
		return domain.User{}, ErrInvalidToken
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
