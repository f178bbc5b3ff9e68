package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrBadPassphrase = errors.New("bad passphrase")

// Gate guards the admin screen with a single shared passphrase. It keeps
// only the bcrypt hash in memory. This is a convenience barrier for the
// back office, not an account system.
type Gate struct {
	hash []byte
}

func NewGate(passphrase string) (*Gate, error) {
	if strings.TrimSpace(passphrase) == "" {
		return nil, errors.New("empty passphrase")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Gate{hash: hashed}, nil
}

func (g *Gate) Check(passphrase string) error {
	if g == nil || passphrase == "" {
		return ErrBadPassphrase
	}
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(passphrase)); err != nil {
		return ErrBadPassphrase
	}
	return nil
}
