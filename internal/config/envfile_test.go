package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnv_SetsMissingVariables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "POSTING_INTERVAL=45s\nEMPTY=\nQUOTED=\"hello world\"\nSINGLE='x y'\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("POSTING_INTERVAL", "")
	os.Unsetenv("POSTING_INTERVAL")
	os.Unsetenv("EMPTY")
	os.Unsetenv("QUOTED")
	os.Unsetenv("SINGLE")
	t.Cleanup(func() {
		os.Unsetenv("EMPTY")
		os.Unsetenv("QUOTED")
		os.Unsetenv("SINGLE")
	})

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv error: %v", err)
	}

	if got := os.Getenv("POSTING_INTERVAL"); got != "45s" {
		t.Fatalf("POSTING_INTERVAL = %q, want %q", got, "45s")
	}
	if got := os.Getenv("EMPTY"); got != "" {
		t.Fatalf("EMPTY = %q, want empty", got)
	}
	if got := os.Getenv("QUOTED"); got != "hello world" {
		t.Fatalf("QUOTED = %q, want %q", got, "hello world")
	}
	if got := os.Getenv("SINGLE"); got != "x y" {
		t.Fatalf("SINGLE = %q, want %q", got, "x y")
	}
}

func TestLoadDotEnv_DoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("ACCOUNTS_TO_CREATE=99\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("ACCOUNTS_TO_CREATE", "3")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv error: %v", err)
	}
	if got := os.Getenv("ACCOUNTS_TO_CREATE"); got != "3" {
		t.Fatalf("ACCOUNTS_TO_CREATE = %q, want %q", got, "3")
	}
}

func TestLoadDotEnv_MissingFileIsIgnored(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("LoadDotEnv error for missing file: %v", err)
	}
}
