package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTokenService(t *testing.T, clock *fakeClock) *TokenService {
	t.Helper()
	svc, err := NewTokenService("secret", WithClock(clock.Now))
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	return svc
}

func TestNewTokenService_RejectsEmptySecret(t *testing.T) {
	if _, err := NewTokenService("  "); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestTokenService_SignVerifyRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestTokenService(t, clock)

	in := Claims{"email": "a@x.com", "sub": "7"}
	token, err := svc.Sign(in, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if len(in) != 2 {
		t.Fatalf("expected caller claims untouched, got %+v", in)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	for k, v := range in {
		if claims[k] != v {
			t.Fatalf("claim %q: expected %v, got %v", k, v, claims[k])
		}
	}
	if claims.Email() != "a@x.com" || claims.Subject() != "7" {
		t.Fatalf("unexpected accessors: email=%q sub=%q", claims.Email(), claims.Subject())
	}
	if claims.ID() == "" {
		t.Fatalf("expected jti")
	}
	if !claims.ExpiresAt().Equal(clock.now.Add(time.Hour)) {
		t.Fatalf("expected exp %v, got %v", clock.now.Add(time.Hour), claims.ExpiresAt())
	}
}

func TestTokenService_ExpiryBoundary(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	validity := 15 * time.Minute

	cases := []struct {
		name    string
		offset  time.Duration
		wantErr bool
	}{
		{"just before expiry", validity - time.Second, false},
		{"at expiry", validity, true},
		{"after expiry", validity + time.Second, true},
		{"long after expiry", 2 * validity, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clock := &fakeClock{now: start}
			svc := newTestTokenService(t, clock)
			token, err := svc.Sign(Claims{"email": "a@x.com"}, validity)
			if err != nil {
				t.Fatalf("sign: %v", err)
			}

			clock.Advance(tc.offset)
			claims, err := svc.Verify(token)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Fatalf("expected ErrInvalidToken, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected valid token, got %v", err)
			}
			if claims.Email() != "a@x.com" {
				t.Fatalf("unexpected email %q", claims.Email())
			}
		})
	}
}

func TestTokenService_UniqueTokenIDs(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newTestTokenService(t, clock)

	a, _ := svc.Sign(Claims{"email": "a@x.com"}, time.Minute)
	b, _ := svc.Sign(Claims{"email": "a@x.com"}, time.Minute)
	if a == b {
		t.Fatalf("expected distinct tokens for identical claims")
	}
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	signer := newTestTokenService(t, clock)
	other, err := NewTokenService("other-secret", WithClock(clock.Now))
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	token, err := signer.Sign(Claims{"email": "a@x.com"}, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_RejectsMalformed(t *testing.T) {
	svc := newTestTokenService(t, &fakeClock{now: time.Now()})

	for _, raw := range []string{"", "   ", "not.a.jwt", "abc", strings.Repeat("a", 512)} {
		if _, err := svc.Verify(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("input %q: expected ErrInvalidToken, got %v", raw, err)
		}
	}
}

func TestTokenService_RejectsWrongIssuer(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newTestTokenService(t, clock)
	foreign, err := NewTokenService("secret", WithClock(clock.Now), WithIssuer("other-issuer"))
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	token, err := foreign.Sign(Claims{"email": "a@x.com"}, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong issuer, got %v", err)
	}
}

func TestTokenService_RejectsMissingExpiry(t *testing.T) {
	svc := newTestTokenService(t, &fakeClock{now: time.Now()})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "a@x.com",
		"iss":   "auth-service",
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := svc.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken without exp, got %v", err)
	}
}

func TestTokenService_RejectsOtherAlgorithm(t *testing.T) {
	svc := newTestTokenService(t, &fakeClock{now: time.Now()})

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"email": "a@x.com",
		"iss":   "auth-service",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := svc.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HS512, got %v", err)
	}
}
