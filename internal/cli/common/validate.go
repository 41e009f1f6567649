package common

import (
	"fmt"
	"net"
	"os"

	"github.com/spf13/viper"

	rbac "github.com/parlaygames/pitboss/internal/auth/rbac"
	"github.com/parlaygames/pitboss/internal/views"
)

func fileExists(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	return nil
}

func ValidateAddr(addr string) error {
	if addr == "" {
		return fmt.Errorf("empty address")
	}
	if _, err := net.ResolveTCPAddr("tcp", addr); err != nil {
		return err
	}
	return nil
}

// ValidateAdminConfig checks the admin section for a runnable configuration.
// strict additionally requires the auth and policy material to be present.
func ValidateAdminConfig(v *viper.Viper, strict bool) error {
	if sub := v.Sub("admin"); sub != nil {
		v = sub
	}
	if err := ValidateAddr(v.GetString("addr")); err != nil {
		return fmt.Errorf("addr: %w", err)
	}
	if strict && v.GetString("jwt_secret") == "" && os.Getenv("PITBOSS_JWT_SECRET") == "" {
		return fmt.Errorf("jwt_secret missing")
	}
	model := v.GetString("rbac_model")
	policy := v.GetString("rbac_policy")
	if model != "" || policy != "" {
		if _, err := rbac.New(model, policy); err != nil {
			return fmt.Errorf("rbac: %w", err)
		}
	} else if strict {
		return fmt.Errorf("rbac_model and rbac_policy missing")
	}
	if p := v.GetString("views"); p != "" {
		if _, err := views.Load(p); err != nil {
			return fmt.Errorf("views: %w", err)
		}
	} else if strict {
		return fmt.Errorf("views missing")
	}
	// dsn is optional; the server falls back to a local sqlite file
	if p := v.GetString("schemas_dir"); p != "" {
		if err := fileExists(p); err != nil {
			return fmt.Errorf("schemas_dir: %w", err)
		}
	}
	return nil
}
