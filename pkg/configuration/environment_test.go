package configuration

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnv_LoadsExistingFiles(t *testing.T) {
	tmp := t.TempDir()
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "GOVERNANCE_TEST_ENV_LOAD=ok\n")

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Unsetenv("GOVERNANCE_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("GOVERNANCE_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded, got %q", got)
	}
}

func TestLoadEnv_NoFiles(t *testing.T) {
	tmp := t.TempDir()

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 env files loaded, got %d", n)
	}
}

func TestDataManagerOptions_Validate(t *testing.T) {
	opts := DataManagerOptions{Email: "matsumoto@example.com", Name: "Matsumoto"}
	if err := opts.Validate(); err != nil {
		t.Fatalf("expected valid options, got %v", err)
	}

	opts.Email = "   "
	if err := opts.Validate(); err == nil {
		t.Fatal("expected error for blank data manager email")
	}
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
