package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "OCR_SERVICE_URL", "GEMINI_API_KEY", "MONGODB_URI", "REDIS_ADDR", "JWT_SECRET"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server:\n  port: 0\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("expected default port 5000, got %d", cfg.Server.Port)
	}
	if cfg.OCR.URL != "http://127.0.0.1:8000/ocr" {
		t.Errorf("unexpected default OCR url: %s", cfg.OCR.URL)
	}
	if cfg.OCRTimeout() != 60*time.Second {
		t.Errorf("unexpected OCR timeout: %v", cfg.OCRTimeout())
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("unexpected default model: %s", cfg.Gemini.Model)
	}
	if cfg.SessionTTL() != 24*time.Hour {
		t.Errorf("unexpected session ttl: %v", cfg.SessionTTL())
	}
}

func TestLoadConfig_FileValues(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: 7000
ocr:
  url: "http://ocr.internal/ocr"
  timeoutSeconds: 5
gemini:
  model: "gemini-2.0-flash"
rateLimit:
  maxUploads: 3
  windowSeconds: 30
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("expected port 7000, got %d", cfg.Server.Port)
	}
	if cfg.OCR.URL != "http://ocr.internal/ocr" {
		t.Errorf("unexpected OCR url: %s", cfg.OCR.URL)
	}
	if cfg.OCRTimeout() != 5*time.Second {
		t.Errorf("unexpected OCR timeout: %v", cfg.OCRTimeout())
	}
	if cfg.RateLimit.MaxUploads != 3 || cfg.RateLimitWindow() != 30*time.Second {
		t.Errorf("unexpected rate limit: %d per %v", cfg.RateLimit.MaxUploads, cfg.RateLimitWindow())
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("OCR_SERVICE_URL", "http://env-ocr/ocr")
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("JWT_SECRET", "env-secret")

	path := writeConfig(t, "server:\n  port: 7000\ngemini:\n  apiKey: file-key\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("PORT should override file, got %d", cfg.Server.Port)
	}
	if cfg.OCR.URL != "http://env-ocr/ocr" {
		t.Errorf("OCR_SERVICE_URL should override, got %s", cfg.OCR.URL)
	}
	if cfg.Gemini.ApiKey != "env-key" {
		t.Errorf("GEMINI_API_KEY should override, got %s", cfg.Gemini.ApiKey)
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Errorf("JWT_SECRET should override, got %s", cfg.JWT.Secret)
	}
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	path := writeConfig(t, "server: {}\n")
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for invalid PORT")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected error for missing file")
	}
}
