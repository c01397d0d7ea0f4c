package config

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadClientConfig_ReadsEnv(t *testing.T) {
	t.Setenv("SERVER_URL", "https://storage.example.com")
	t.Setenv("CSRF_COOKIE", "csrftoken")
	t.Setenv("MAX_UPLOAD_SIZE", "2097152")

	cfg, err := LoadClientConfig()
	if err != nil {
		t.Fatalf("LoadClientConfig failed: %v", err)
	}
	if cfg.ServerURL != "https://storage.example.com" {
		t.Fatalf("unexpected server url %q", cfg.ServerURL)
	}
	if cfg.MaxUploadSize != 2097152 {
		t.Fatalf("unexpected upload ceiling %d", cfg.MaxUploadSize)
	}
}

func TestLoadClientConfig_WrapsCause(t *testing.T) {
	t.Setenv("MAX_UPLOAD_SIZE", "not-a-number")

	_, err := LoadClientConfig()
	if err == nil {
		t.Fatal("expected an error for a malformed value")
	}
	if !strings.Contains(err.Error(), "read client config") {
		t.Fatalf("expected the context prefix, got %q", err.Error())
	}
	if errors.Unwrap(err) == nil {
		t.Fatal("the underlying cause must stay reachable")
	}
}

func TestLoadServerConfig_Defaults(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "localhost:9999")

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("LoadServerConfig failed: %v", err)
	}
	if cfg.Address != "localhost:9999" {
		t.Fatalf("unexpected address %q", cfg.Address)
	}
	if cfg.MaxUploadSize != 1048576 {
		t.Fatalf("unexpected default upload ceiling %d", cfg.MaxUploadSize)
	}
}
