package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.APIURL = "http://localhost:9000"
	cfg.PersistSession = false

	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.APIURL != "http://localhost:9000" {
		t.Errorf("APIURL: got %q, want %q", loaded.APIURL, "http://localhost:9000")
	}
	if loaded.PersistSession {
		t.Error("PersistSession: got true, want false")
	}
	if loaded.Greeting != "oi" {
		t.Errorf("Greeting: got %q, want %q", loaded.Greeting, "oi")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.APIURL != "http://127.0.0.1:8000" {
		t.Errorf("default APIURL: got %q", cfg.APIURL)
	}
	if !cfg.PersistSession {
		t.Error("default PersistSession should be true")
	}
	if cfg.RequestTimeout() != 0 {
		t.Errorf("default RequestTimeout: got %v, want 0", cfg.RequestTimeout())
	}
}

func TestPartialConfigKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	partial := `version: 1
api_url: "http://backend:8000"
`
	configPath := filepath.Join(tmpDir, ".chatdock")
	if err := os.MkdirAll(configPath, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configPath, "config.yaml"), []byte(partial), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	if cfg.APIURL != "http://backend:8000" {
		t.Errorf("APIURL: got %q", cfg.APIURL)
	}
	if cfg.Scope != "default" {
		t.Errorf("Scope should keep default, got %q", cfg.Scope)
	}
	if cfg.Cleanup.MaxAgeDays != 30 {
		t.Errorf("MaxAgeDays should keep default, got %d", cfg.Cleanup.MaxAgeDays)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Greeting != "oi" {
		t.Errorf("Greeting: got %q, want default", cfg.Greeting)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CHATDOCK_API_URL", "http://override:1234")
	t.Setenv("CHATDOCK_PERSIST_SESSION", "false")
	t.Setenv("CHATDOCK_SERVER_ADDR", ":9999")
	t.Setenv("CHATDOCK_REQUEST_TIMEOUT_MS", "1500")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIURL != "http://override:1234" {
		t.Errorf("APIURL: got %q", cfg.APIURL)
	}
	if cfg.PersistSession {
		t.Error("PersistSession should be overridden to false")
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr: got %q", cfg.Server.Addr)
	}
	if cfg.RequestTimeout() != 1500*time.Millisecond {
		t.Errorf("RequestTimeout: got %v", cfg.RequestTimeout())
	}
}

func TestLoadDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	// Registered so t.Setenv restores the variable that godotenv sets.
	t.Setenv("CHATDOCK_GREETING", "")
	os.Unsetenv("CHATDOCK_GREETING")

	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("CHATDOCK_GREETING=olá\n"), 0644); err != nil {
		t.Fatalf("writing .env: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Greeting != "olá" {
		t.Errorf("Greeting: got %q, want %q", cfg.Greeting, "olá")
	}
}

func TestStoragePath(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.StoragePath("/project")
	want := filepath.Join("/project", ".chatdock", "chatdock.db")
	if got != want {
		t.Errorf("StoragePath: got %q, want %q", got, want)
	}

	cfg.Storage.Path = "/var/lib/chatdock.db"
	if got := cfg.StoragePath("/project"); got != "/var/lib/chatdock.db" {
		t.Errorf("absolute StoragePath: got %q", got)
	}
}

func TestMalformedConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".chatdock")
	if err := os.MkdirAll(configPath, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configPath, "config.yaml"), []byte("api_url: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
