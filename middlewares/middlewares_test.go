package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"verifix/internal/ratelimit"
	"verifix/models"
	"verifix/services"
	"verifix/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authFixture struct {
	jm    *utils.JWTManager
	store *services.MemorySessionStore
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	jm, err := utils.NewJWTManager("test-secret")
	if err != nil {
		t.Fatalf("jwt manager: %v", err)
	}
	return authFixture{jm: jm, store: services.NewMemorySessionStore()}
}

func (f authFixture) login(t *testing.T, user models.Principal) (models.Session, string) {
	t.Helper()
	sess, err := f.store.Create(context.Background(), user, time.Hour)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	token, err := f.jm.Generate(sess.ID, user.Email, string(user.Role), time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return sess, token
}

func whoami(c *gin.Context) {
	if user := CurrentUser(c); user != nil {
		c.String(http.StatusOK, user.Email)
		return
	}
	c.String(http.StatusOK, "anonymous")
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var (
	demoUser  = models.Principal{Email: "user@test.com", Role: models.RoleUser, Name: "Test User"}
	demoAdmin = models.Principal{Email: "admin@verifix.com", Role: models.RoleAdmin, Name: "Admin User"}
)

func TestAuthMiddleware(t *testing.T) {
	f := newAuthFixture(t)
	r := gin.New()
	r.GET("/me", AuthMiddleware(f.jm, f.store), whoami)

	if w := do(r, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: expected 401, got %d", w.Code)
	}
	if w := do(r, "/me", "garbage"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: expected 401, got %d", w.Code)
	}

	sess, token := f.login(t, demoUser)
	w := do(r, "/me", token)
	if w.Code != http.StatusOK || w.Body.String() != "user@test.com" {
		t.Errorf("valid token: got %d %q", w.Code, w.Body.String())
	}

	f.store.Destroy(context.Background(), sess.ID)
	if w := do(r, "/me", token); w.Code != http.StatusUnauthorized {
		t.Errorf("token of destroyed session: expected 401, got %d", w.Code)
	}
}

func TestAuthMiddleware_BadFormat(t *testing.T) {
	f := newAuthFixture(t)
	r := gin.New()
	r.GET("/me", AuthMiddleware(f.jm, f.store), whoami)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed header, got %d", w.Code)
	}
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	f := newAuthFixture(t)
	r := gin.New()
	r.GET("/me", AuthMiddleware(f.jm, f.store), whoami)

	_, token := f.login(t, demoUser)
	if w := do(r, "/me?token="+token, ""); w.Code != http.StatusOK {
		t.Errorf("query token should authenticate, got %d", w.Code)
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	f := newAuthFixture(t)
	r := gin.New()
	r.GET("/me", OptionalAuthMiddleware(f.jm, f.store), whoami)

	if w := do(r, "/me", ""); w.Body.String() != "anonymous" {
		t.Errorf("no token should be anonymous, got %q", w.Body.String())
	}
	if w := do(r, "/me", "garbage"); w.Code != http.StatusOK || w.Body.String() != "anonymous" {
		t.Errorf("bad token should fall back to anonymous, got %d %q", w.Code, w.Body.String())
	}
	_, token := f.login(t, demoUser)
	if w := do(r, "/me", token); w.Body.String() != "user@test.com" {
		t.Errorf("valid token should attach session, got %q", w.Body.String())
	}
}

func TestRBACMiddleware(t *testing.T) {
	f := newAuthFixture(t)
	authz, err := NewAuthorizer()
	if err != nil {
		t.Fatalf("NewAuthorizer failed: %v", err)
	}

	r := gin.New()
	r.GET("/admin", AuthMiddleware(f.jm, f.store), authz.RBACMiddleware("analytics", "read"), whoami)
	r.GET("/session", AuthMiddleware(f.jm, f.store), authz.RBACMiddleware("session", "read"), whoami)

	_, userToken := f.login(t, demoUser)
	_, adminToken := f.login(t, demoAdmin)

	if w := do(r, "/admin", userToken); w.Code != http.StatusForbidden {
		t.Errorf("user on admin route: expected 403, got %d", w.Code)
	}
	if w := do(r, "/admin", adminToken); w.Code != http.StatusOK {
		t.Errorf("admin on admin route: expected 200, got %d", w.Code)
	}
	if w := do(r, "/session", adminToken); w.Code != http.StatusOK {
		t.Errorf("admin should inherit user permissions, got %d", w.Code)
	}
	if w := do(r, "/session", userToken); w.Code != http.StatusOK {
		t.Errorf("user on session route: expected 200, got %d", w.Code)
	}
}

func TestRBACMiddleware_NoSession(t *testing.T) {
	authz, _ := NewAuthorizer()
	r := gin.New()
	r.GET("/admin", authz.RBACMiddleware("analytics", "read"), whoami)

	if w := do(r, "/admin", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", w.Code)
	}
}

func TestUploadRateLimit_Disabled(t *testing.T) {
	r := gin.New()
	r.GET("/verify", UploadRateLimit(ratelimit.NewRateLimiter(nil, 1, time.Minute)), whoami)

	for i := 0; i < 3; i++ {
		if w := do(r, "/verify", ""); w.Code != http.StatusOK {
			t.Fatalf("disabled limiter should not block, got %d", w.Code)
		}
	}
}

func TestUploadRateLimit_TooManyUploads(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	f := newAuthFixture(t)
	_, token := f.login(t, demoUser)

	r := gin.New()
	r.GET("/verify", OptionalAuthMiddleware(f.jm, f.store), UploadRateLimit(ratelimit.NewRateLimiter(rdb, 2, time.Minute)), whoami)

	var codes []int
	for i := 0; i < 3; i++ {
		codes = append(codes, do(r, "/verify", token).Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 200 200 429, got %v", codes)
	}

	w := do(r, "/verify", token)
	if w.Body.String() != `{"error":"Too many uploads, please wait"}` {
		t.Errorf("unexpected body %s", w.Body.String())
	}
	if !mr.Exists("rate:upload:user:" + demoUser.Email) {
		t.Error("logged in uploads should be counted per user")
	}

	// anonymous callers are counted by IP, apart from the user
	if w := do(r, "/verify", ""); w.Code != http.StatusOK {
		t.Errorf("anonymous upload: expected 200, got %d", w.Code)
	}
}

func TestUploadRateLimit_RedisErrorAllows(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	r := gin.New()
	r.GET("/verify", UploadRateLimit(ratelimit.NewRateLimiter(rdb, 1, time.Minute)), whoami)
	for i := 0; i < 2; i++ {
		if w := do(r, "/verify", ""); w.Code != http.StatusOK {
			t.Fatalf("redis outage should not block uploads, got %d", w.Code)
		}
	}
}
