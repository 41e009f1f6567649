package token

import (
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	m := NewManager("test-secret")
	tok, err := m.Sign("admin", []string{"admin", "moderator"}, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sub, roles, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != "admin" || len(roles) != 2 {
		t.Fatalf("claims: %s %v", sub, roles)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewManager("test-secret")
	tok, _ := m.Sign("admin", nil, -time.Minute)
	if _, _, err := m.Verify(tok); err == nil {
		t.Fatalf("expired token accepted")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	tok, _ := NewManager("a").Sign("admin", nil, time.Minute)
	if _, _, err := NewManager("b").Verify(tok); err == nil {
		t.Fatalf("token signed with another secret accepted")
	}
}

func TestGarbageRejected(t *testing.T) {
	if _, _, err := NewManager("s").Verify("not.a.jwt"); err == nil {
		t.Fatalf("garbage accepted")
	}
}
