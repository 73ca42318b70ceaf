// ABOUTME: Tests for .env loading used to seed DUCKSORT_* defaults.
// ABOUTME: Covers quoting, comments, the export prefix, no-clobber, and the config.env location.
package main

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTempEnv creates a temporary .env file with the given content and returns its path.
func writeTempEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// unsetForTest clears key for the duration of the test.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadDotEnv(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
		want    string
	}{
		{"plain", "TEST_DUCK_A=plain\n", "TEST_DUCK_A", "plain"},
		{"double quoted", `TEST_DUCK_B="with spaces"` + "\n", "TEST_DUCK_B", "with spaces"},
		{"single quoted", "TEST_DUCK_C='single'\n", "TEST_DUCK_C", "single"},
		{"comments skipped", "# a comment\nTEST_DUCK_D=yes\n# another\n", "TEST_DUCK_D", "yes"},
		{"empty lines skipped", "\n\nTEST_DUCK_E=present\n\n", "TEST_DUCK_E", "present"},
		{"export prefix", "export TEST_DUCK_F=exported\n", "TEST_DUCK_F", "exported"},
		{"value with equals", "TEST_DUCK_G=a=b=c\n", "TEST_DUCK_G", "a=b=c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempEnv(t, tt.content)
			unsetForTest(t, tt.key)

			loadDotEnv(path)

			if got := os.Getenv(tt.key); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestLoadDotEnvDoesNotClobberExisting(t *testing.T) {
	path := writeTempEnv(t, "TEST_DUCK_X=from_file")
	t.Setenv("TEST_DUCK_X", "already_set")

	loadDotEnv(path)

	if got := os.Getenv("TEST_DUCK_X"); got != "already_set" {
		t.Errorf("expected existing env var to be preserved, got %q", got)
	}
}

func TestLoadDotEnvMissingFileIsNoOp(t *testing.T) {
	loadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadDotEnvSkipsMalformedLines(t *testing.T) {
	path := writeTempEnv(t, "NOEQUALS\n=novalue\nTEST_DUCK_M=ok\n")
	unsetForTest(t, "TEST_DUCK_M")

	loadDotEnv(path)

	if got := os.Getenv("TEST_DUCK_M"); got != "ok" {
		t.Errorf("TEST_DUCK_M = %q, want ok", got)
	}
}

func TestLoadDotEnvAutoLoadsConfigEnv(t *testing.T) {
	configDir := t.TempDir()
	appDir := filepath.Join(configDir, "ducksort")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(appDir, "config.env"), []byte("TEST_DUCK_XDG=from_xdg\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("XDG_CONFIG_HOME", configDir)
	unsetForTest(t, "TEST_DUCK_XDG")

	loadDotEnvAuto()

	if got := os.Getenv("TEST_DUCK_XDG"); got != "from_xdg" {
		t.Errorf("TEST_DUCK_XDG = %q, want from_xdg", got)
	}
}
