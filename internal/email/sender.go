package email

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sender define la interfaz para envio del token de verificacion de email.
type Sender interface {
	SendVerificationToken(ctx context.Context, toEmail string, token string, expiresAt time.Time) error
}

// ErrSenderDisabled se devuelve cuando no hay SMTP configurado.
var ErrSenderDisabled = errors.New("email sender disabled")

type disabledSender struct {
	reason string
}

// NewDisabledSender devuelve un Sender que siempre falla con reason.
func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendVerificationToken(_ context.Context, _ string, _ string, _ time.Time) error {
	if s.reason == "" {
		return ErrSenderDisabled
	}
	return fmt.Errorf("%w: %s", ErrSenderDisabled, s.reason)
}
