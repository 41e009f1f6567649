package rbac

import (
	"os"
	"path/filepath"
	"testing"
)

const testModel = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

const testPolicy = `p, role:admin, *, *
p, role:moderator, users, read
p, role:moderator, users, update
p, role:analyst, security-events, read
g, user:root, role:admin
`

func testPolicyFiles(t *testing.T) *Policy {
	t.Helper()
	dir := t.TempDir()
	model := filepath.Join(dir, "rbac_model.conf")
	policy := filepath.Join(dir, "rbac_policy.csv")
	if err := os.WriteFile(model, []byte(testModel), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	if err := os.WriteFile(policy, []byte(testPolicy), 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	p, err := New(model, policy)
	if err != nil {
		t.Fatalf("new policy: %v", err)
	}
	return p
}

func TestRolePermissions(t *testing.T) {
	p := testPolicyFiles(t)

	if !p.Can("mod1", []string{"moderator"}, "users:read") {
		t.Fatalf("moderator should read users")
	}
	if p.Can("mod1", []string{"moderator"}, "users:delete") {
		t.Fatalf("moderator must not delete users")
	}
	if p.Can("ana1", []string{"analyst"}, "users:read") {
		t.Fatalf("analyst must not read users")
	}
	if !p.Can("ana1", []string{"analyst"}, "security-events:read") {
		t.Fatalf("analyst should read security events")
	}
}

func TestAdminWildcard(t *testing.T) {
	p := testPolicyFiles(t)
	if !p.Can("boss", []string{"admin"}, "rooms:delete") {
		t.Fatalf("admin role should pass any check")
	}
	// direct user-to-role grant in the policy file
	if !p.Can("root", nil, "users:delete") {
		t.Fatalf("root is g-linked to admin and should pass")
	}
}

func TestBareResourceImpliesRead(t *testing.T) {
	p := testPolicyFiles(t)
	if !p.Can("mod1", []string{"moderator"}, "users") {
		t.Fatalf("bare resource should mean read")
	}
}

func TestRuntimeGrantAndRevoke(t *testing.T) {
	p := testPolicyFiles(t)
	if p.Can("temp", nil, "users:read") {
		t.Fatalf("unknown user allowed")
	}
	if err := p.GrantRole("temp", "moderator"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if !p.Can("temp", nil, "users:read") {
		t.Fatalf("granted role not effective")
	}
	if err := p.RevokeRole("temp", "moderator"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if p.Can("temp", nil, "users:read") {
		t.Fatalf("revoked role still effective")
	}
}
