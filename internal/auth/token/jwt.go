// Package token signs and verifies the session tokens the dashboard carries
// as Bearer credentials.
package token

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
)

type Manager struct{ secret []byte }

func NewManager(secret string) *Manager { return &Manager{secret: []byte(secret)} }

type claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

func (m *Manager) Sign(username string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

func (m *Manager) Verify(tok string) (string, []string, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(tok, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return "", nil, err
	}
	if !parsed.Valid || c.Subject == "" {
		return "", nil, errors.New("bad token")
	}
	return c.Subject, c.Roles, nil
}
