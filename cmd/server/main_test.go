package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestWireWithoutBackends(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, key := range []string{"PORT", "OCR_SERVICE_URL", "GEMINI_API_KEY", "MONGODB_URI", "REDIS_ADDR", "JWT_SECRET"} {
		t.Setenv(key, "")
	}

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("missing config file should fall back to defaults: %v", err)
	}

	chain, err := credentialChain(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("credentialChain: %v", err)
	}
	if len(chain) != 1 {
		t.Errorf("expected only the demo verifier, got %d", len(chain))
	}

	a, err := wire(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("wire: %v", err)
	}
	if a.limiter.Enabled() {
		t.Errorf("limiter should be disabled without Redis")
	}

	router := setupRouter(cfg, a)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", w.Code)
	}
}
