package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mindflow-app/mindflow-BE/internal/pkg/config"
	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
	util "github.com/mindflow-app/mindflow-BE/pkg/mypubliclib/util"
)

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = pkgerr.RequestIDFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || w.Header().Get(RequestIDHeader) != seen {
		t.Errorf("context id %q, header %q", seen, w.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "given")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "given" {
		t.Errorf("seen = %q, want given", seen)
	}
}

func TestRecoveryReturnsGeneric500(t *testing.T) {
	var logs bytes.Buffer
	h := RequestID(Recovery(logger.New(&logs, "prod"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("db exploded: password=hunter2")
	})))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stress", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "Something went wrong!" {
		t.Errorf("error = %q", body["error"])
	}
	if strings.Contains(w.Body.String(), "hunter2") {
		t.Error("panic detail leaked to client")
	}
	if !strings.Contains(logs.String(), "panic recovered") {
		t.Error("panic not logged")
	}
}

func TestRateLimitPerKey(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RateLimit(ok, UserKey, 1, 2)

	hit := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/stress?userId="+user, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	if hit("a") != 200 || hit("a") != 200 {
		t.Fatal("burst requests should pass")
	}
	if got := hit("a"); got != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", got)
	}
	if got := hit("b"); got != 200 {
		t.Errorf("other user = %d, want 200", got)
	}
}

func TestRateLimitRotatingUsersShareIPBudget(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	h := rateLimit(ok, UserKey, newLimiterSet(1, 2, func() time.Time { return now }))

	hit := func(user, addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/stress?userId="+user, nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	for i := range 2 * ipFactor {
		if got := hit(fmt.Sprintf("u%d", i), "10.0.0.1:1000"); got != 200 {
			t.Fatalf("request %d = %d", i, got)
		}
	}
	if got := hit("fresh", "10.0.0.1:1001"); got != http.StatusTooManyRequests {
		t.Errorf("new user from same ip = %d, want 429", got)
	}
	if got := hit("fresh", "10.0.0.2:1000"); got != 200 {
		t.Errorf("other ip = %d, want 200", got)
	}
}

func TestRateLimitSweepsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	s := newLimiterSet(1, 2, func() time.Time { return now })

	for i := range 50 {
		s.allow("10.0.0.1", fmt.Sprintf("u%d", i))
	}
	if got := s.size(); got != 51 {
		t.Fatalf("size = %d", got)
	}

	now = now.Add(idleTTL + sweepInterval)
	if !s.allow("10.0.0.2", "a") {
		t.Fatal("fresh client limited")
	}
	if got := s.size(); got != 2 {
		t.Errorf("size after sweep = %d, want 2", got)
	}
}

func TestUserKeyPrefersQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?userId=q", nil)
	req.Header.Set(UserIDHeader, "h")
	if got := UserKey(req); got != "q" {
		t.Errorf("UserKey = %q", got)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserIDHeader, "h")
	if got := UserKey(req); got != "h" {
		t.Errorf("UserKey = %q", got)
	}
}

func newUserEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(), UserID())
	r.GET("/who", func(c *gin.Context) { c.String(http.StatusOK, CurrentUser(c)) })
	return r
}

func TestUserIDResolutionOrder(t *testing.T) {
	config.Cfg = &config.Config{JWTSecret: "s", JWTExpire: time.Hour}
	tok, err := util.GenerateToken("from-token", true)
	if err != nil {
		t.Fatal(err)
	}
	r := newUserEngine()

	tests := []struct {
		name  string
		setup func(*http.Request)
		path  string
		want  string
	}{
		{"query wins", func(req *http.Request) { req.Header.Set(UserIDHeader, "h") }, "/who?userId=q", "q"},
		{"header", func(req *http.Request) { req.Header.Set(UserIDHeader, "h") }, "/who", "h"},
		{"token", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+tok) }, "/who", "from-token"},
		{"cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: UserCookie, Value: "c"}) }, "/who", "c"},
		{"none", func(*http.Request) {}, "/who", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != http.StatusOK || w.Body.String() != tt.want {
				t.Errorf("got %d %q, want %q", w.Code, w.Body.String(), tt.want)
			}
		})
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	config.Cfg = &config.Config{JWTSecret: "s", JWTExpire: time.Hour}
	r := newUserEngine()

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequestLogWritesLine(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLog(logger.New(&buf, "prod")))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("log is not JSON: %v (%q)", err, buf.String())
	}
	if rec["path"] != "/ping" || rec["status"] != float64(http.StatusTeapot) {
		t.Errorf("unexpected log record: %v", rec)
	}
}
