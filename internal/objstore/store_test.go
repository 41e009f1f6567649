package objstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeKey(t *testing.T) {
	cases := map[string]string{
		"reports/users.csv":        "reports/users.csv",
		"/reports/users.csv":       "reports/users.csv",
		"../../etc/passwd":         "etc/passwd",
		"a/./b/../c":               "a/b/c",
		"reports//double//slashes": "reports/double/slashes",
	}
	for in, want := range cases {
		if got := sanitizeKey(in); got != want {
			t.Fatalf("sanitizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(ctx, Config{Driver: "file", BaseDir: dir})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	body := "id,username\nu1,alice\n"
	if err := s.Put(ctx, "reports/users.csv", strings.NewReader(body), int64(len(body)), "text/csv"); err != nil {
		t.Fatalf("put: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "reports", "users.csv"))
	if err != nil || string(b) != body {
		t.Fatalf("stored content: %q %v", b, err)
	}

	u, err := s.SignedURL(ctx, "reports/users.csv", "GET", 0)
	if err != nil || u != "/exports/reports/users.csv" {
		t.Fatalf("signed url: %q %v", u, err)
	}

	objs, err := s.List(ctx, "reports/")
	if err != nil || len(objs) != 1 || objs[0].Key != "reports/users.csv" || objs[0].Size != int64(len(body)) {
		t.Fatalf("list: %+v %v", objs, err)
	}
	if objs, _ := s.List(ctx, "other/"); len(objs) != 0 {
		t.Fatalf("prefix filter leaked: %+v", objs)
	}

	if err := s.Delete(ctx, "reports/users.csv"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "reports", "users.csv")); !os.IsNotExist(err) {
		t.Fatalf("file not deleted")
	}
}

func TestValidateRejectsIncompleteConfigs(t *testing.T) {
	bad := []Config{
		{Driver: "s3"},
		{Driver: "oss", Bucket: "b"},
		{Driver: "cos", Bucket: "b", Region: "r"},
		{Driver: "file"},
		{Driver: "gopher", BaseDir: "x"},
	}
	for i, c := range bad {
		if err := Validate(c); err == nil {
			t.Fatalf("config %d should fail validation: %+v", i, c)
		}
	}
	if err := Validate(Config{Driver: "file", BaseDir: t.TempDir()}); err != nil {
		t.Fatalf("valid file config rejected: %v", err)
	}
}
