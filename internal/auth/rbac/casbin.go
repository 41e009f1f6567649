// Package rbac answers "may this operator perform this action" for the
// admin API. Permissions are resource:action strings like "users:read";
// policies live in Casbin model/policy files under configs/.
package rbac

import (
	"log"
	"strings"

	"github.com/casbin/casbin/v2"
)

type Policy struct {
	enforcer *casbin.Enforcer
}

func New(modelPath, policyPath string) (*Policy, error) {
	enforcer, err := casbin.NewEnforcer(modelPath, policyPath)
	if err != nil {
		return nil, err
	}
	return &Policy{enforcer: enforcer}, nil
}

// Can reports whether the user, directly or through any of the given roles,
// holds the permission. Permission format is "resource:action"; a bare
// resource implies the read action.
func (p *Policy) Can(user string, roles []string, permission string) bool {
	obj, act := splitPermission(permission)
	subs := make([]string, 0, len(roles)+1)
	subs = append(subs, "user:"+user)
	for _, r := range roles {
		subs = append(subs, "role:"+r)
	}
	for _, sub := range subs {
		allowed, err := p.enforcer.Enforce(sub, obj, act)
		if err != nil {
			log.Printf("[rbac] enforce %s %s:%s: %v", sub, obj, act, err)
			continue
		}
		if allowed {
			return true
		}
	}
	return false
}

func splitPermission(permission string) (obj, act string) {
	if permission == "*" {
		return "*", "*"
	}
	obj, act, ok := strings.Cut(permission, ":")
	if !ok {
		return permission, "read"
	}
	return obj, act
}

// GrantRole gives a user a role at runtime, e.g. from the roles admin page.
func (p *Policy) GrantRole(user, role string) error {
	_, err := p.enforcer.AddRoleForUser("user:"+user, "role:"+role)
	return err
}

// RevokeRole removes a runtime role grant.
func (p *Policy) RevokeRole(user, role string) error {
	_, err := p.enforcer.DeleteRoleForUser("user:"+user, "role:"+role)
	return err
}

// Reload re-reads the policy file, used after an out-of-band edit.
func (p *Policy) Reload() error { return p.enforcer.LoadPolicy() }
