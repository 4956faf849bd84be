package service

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// PasswordMatcher define como se guarda y se compara la credencial de un usuario.
type PasswordMatcher interface {
	Hash(password string) (string, error)
	Compare(stored, supplied string) bool
}

// PlainPasswordMatcher guarda el valor tal cual y compara en tiempo constante.
type PlainPasswordMatcher struct{}

func (PlainPasswordMatcher) Hash(password string) (string, error) {
	return password, nil
}

func (PlainPasswordMatcher) Compare(stored, supplied string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// BcryptPasswordMatcher guarda hashes bcrypt.
type BcryptPasswordMatcher struct {
	Cost int
}

func (m BcryptPasswordMatcher) Hash(password string) (string, error) {
	cost := m.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (BcryptPasswordMatcher) Compare(stored, supplied string) bool {
	if stored == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}
