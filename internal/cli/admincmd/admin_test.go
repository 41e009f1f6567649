package admincmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

const baseYAML = `admin:
  addr: ":8080"
  log:
    level: info
    format: console
  profiles:
    prod:
      log:
        level: warn
        format: json
`

const overrideYAML = `admin:
  addr: ":9090"
`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigMergesIncludesAndProfile(t *testing.T) {
	dir := t.TempDir()
	base := writeConfig(t, dir, "base.yaml", baseYAML)
	inc := writeConfig(t, dir, "override.yaml", overrideYAML)

	v := viper.New()
	if err := loadConfig(v, base, "prod", []string{inc}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := v.GetString("addr"); got != ":9090" {
		t.Fatalf("include should override the base addr, got %q", got)
	}
	if got := v.GetString("log.level"); got != "warn" {
		t.Fatalf("profile overlay should win, got level %q", got)
	}
	if got := v.GetString("log.format"); got != "json" {
		t.Fatalf("profile overlay should win, got format %q", got)
	}
}

func TestLoadConfigWithoutProfileKeepsBase(t *testing.T) {
	dir := t.TempDir()
	base := writeConfig(t, dir, "base.yaml", baseYAML)

	v := viper.New()
	if err := loadConfig(v, base, "", nil); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := v.GetString("addr"); got != ":8080" {
		t.Fatalf("addr: %q", got)
	}
	if got := v.GetString("log.level"); got != "info" {
		t.Fatalf("level: %q", got)
	}
}

func TestLoadConfigUnknownProfileFails(t *testing.T) {
	dir := t.TempDir()
	base := writeConfig(t, dir, "base.yaml", baseYAML)

	if err := loadConfig(viper.New(), base, "staging", nil); err == nil {
		t.Fatalf("unknown profile must fail startup")
	}
}

func TestLoadConfigUnsectionedFile(t *testing.T) {
	dir := t.TempDir()
	base := writeConfig(t, dir, "flat.yaml", "addr: \":7070\"\n")

	v := viper.New()
	if err := loadConfig(v, base, "", nil); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := v.GetString("addr"); got != ":7070" {
		t.Fatalf("addr: %q", got)
	}
}
