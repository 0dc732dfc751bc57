package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mindflow-app/mindflow-BE/internal/app/repository"
	"github.com/mindflow-app/mindflow-BE/internal/app/router"
	"github.com/mindflow-app/mindflow-BE/internal/client/api"
	"github.com/mindflow-app/mindflow-BE/internal/client/localstore"
	"github.com/mindflow-app/mindflow-BE/internal/client/migration"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/config"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
	"github.com/mindflow-app/mindflow-BE/internal/testutil"
)

func newServer(t *testing.T, databaseURL string) *httptest.Server {
	t.Helper()
	return newServerWith(t, &config.Config{
		DatabaseURL:   databaseURL,
		MongoDatabase: "mindflow_test",
		PingTimeout:   2 * time.Second,
		JWTSecret:     "test-secret",
		JWTExpire:     time.Hour,
		AllowOrigins:  []string{"http://localhost:3000"},
		RateRPS:       1000,
		RateBurst:     1000,
	})
}

func newServerWith(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.Cfg = cfg
	clk := testutil.FixedClock()
	store := repository.Open(cfg, clk, logger.Nop())
	server := httptest.NewServer(router.New(router.Deps{
		Cfg:   cfg,
		Log:   logger.Nop(),
		Store: store,
		Clock: clk,
	}))
	t.Cleanup(func() {
		server.Close()
		_ = store.Close(context.Background())
	})
	return server
}

func call(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
	}
	return resp.StatusCode
}

func TestStatusWithoutStore(t *testing.T) {
	server := newServer(t, "")

	var body map[string]string
	if code := call(t, http.MethodGet, server.URL+"/api/status", nil, &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["server"] != "running" || body["mongoDbConnection"] != "disconnected" {
		t.Errorf("body = %v", body)
	}
}

func TestDegradedCRUDWithoutStore(t *testing.T) {
	server := newServer(t, "")

	var list []any
	if code := call(t, http.MethodGet, server.URL+"/api/breathing?userId=u1", nil, &list); code != 200 || len(list) != 0 {
		t.Fatalf("list = %d %v", code, list)
	}

	var created map[string]any
	code := call(t, http.MethodPost, server.URL+"/api/stress", map[string]any{
		"userId": "u1", "date": "2024-01-15", "level": 6,
	}, &created)
	if code != 200 {
		t.Fatalf("create = %d", code)
	}
	want := fmt.Sprintf("mock-id-%d", testutil.FixedClock().Now().UnixMilli())
	if created["id"] != want || created["level"] != float64(6) {
		t.Errorf("created = %v", created)
	}

	var deleted map[string]string
	if code := call(t, http.MethodDelete, server.URL+"/api/meditation/xyz", nil, &deleted); code != 200 || deleted["id"] != "xyz" {
		t.Errorf("delete = %d %v", code, deleted)
	}

	// 降级时仍然校验必填字段
	var bad map[string]any
	if code := call(t, http.MethodPost, server.URL+"/api/stress", map[string]any{"userId": "u1"}, &bad); code != 400 {
		t.Errorf("missing fields = %d %v", code, bad)
	}
}

func roundTrip(t *testing.T, server *httptest.Server, user string) {
	t.Helper()
	stressRoundTrip(t, server, user)
	base := server.URL + "/api/meditation"

	var created map[string]any
	code := call(t, http.MethodPost, base, map[string]any{
		"userId":      user,
		"technique":   map[string]any{"id": "body-scan", "title": "Body Scan", "category": "Mindfulness"},
		"completedAt": "2024-01-15T10:00:00.000Z",
		"duration":    600,
	}, &created)
	if code != 200 {
		t.Fatalf("create = %d %v", code, created)
	}
	id, _ := created["id"].(string)
	if id == "" || created["completed"] != true {
		t.Fatalf("created = %v", created)
	}

	var second map[string]any
	call(t, http.MethodPost, base, map[string]any{
		"userId":      user,
		"technique":   map[string]any{"id": "loving-kindness", "title": "Loving Kindness"},
		"completedAt": "2024-01-15T12:00:00.000Z",
		"duration":    300,
	}, &second)

	var list []map[string]any
	if code := call(t, http.MethodGet, base+"?userId="+user, nil, &list); code != 200 || len(list) != 2 {
		t.Fatalf("list = %d %v", code, list)
	}
	if list[0]["id"] != second["id"] {
		t.Errorf("newest first: got %v", list[0]["id"])
	}

	var other []map[string]any
	call(t, http.MethodGet, base+"?userId="+user+"-other", nil, &other)
	if len(other) != 0 {
		t.Errorf("other user sees %d records", len(other))
	}

	var updated map[string]any
	if code := call(t, http.MethodPut, base+"/"+id, map[string]any{"duration": 900}, &updated); code != 200 {
		t.Fatalf("update = %d %v", code, updated)
	}
	if updated["duration"] != float64(900) || updated["id"] != id {
		t.Errorf("updated = %v", updated)
	}

	var deleted map[string]string
	if code := call(t, http.MethodDelete, base+"/"+id, nil, &deleted); code != 200 || deleted["msg"] != "Session deleted" {
		t.Errorf("delete = %d %v", code, deleted)
	}
	var missing map[string]string
	if code := call(t, http.MethodDelete, base+"/"+id, nil, &missing); code != 404 {
		t.Errorf("second delete = %d", code)
	}
}

func stressRoundTrip(t *testing.T, server *httptest.Server, user string) {
	t.Helper()
	base := server.URL + "/api/stress"
	submitted := map[string]any{
		"userId":  user,
		"date":    "2024-01-01",
		"level":   float64(7),
		"factors": []any{"work"},
		"journal": "",
	}

	var created map[string]any
	if code := call(t, http.MethodPost, base, submitted, &created); code != 200 {
		t.Fatalf("create stress = %d %v", code, created)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("created stress = %v", created)
	}

	var list []map[string]any
	if code := call(t, http.MethodGet, base+"?userId="+user, nil, &list); code != 200 || len(list) != 1 {
		t.Fatalf("list stress = %d %v", code, list)
	}
	got := list[0]
	if got["id"] != id {
		t.Errorf("listed id = %v, want %s", got["id"], id)
	}
	for k, want := range submitted {
		if !reflect.DeepEqual(got[k], want) {
			t.Errorf("%s = %#v, want %#v", k, got[k], want)
		}
	}

	var deleted map[string]string
	if code := call(t, http.MethodDelete, base+"/"+id, nil, &deleted); code != 200 || deleted["msg"] != "Entry deleted" {
		t.Errorf("delete stress = %d %v", code, deleted)
	}
}

// testUser 真实数据库可能有旧数据，每次用新的 userId
func testUser(t *testing.T) string {
	return fmt.Sprintf("it-%s-%d", t.Name(), time.Now().UnixNano())
}

func TestRoundTripMemory(t *testing.T) {
	roundTrip(t, newServer(t, "memory"), "u1")
}

// 设置 MINDFLOW_TEST_POSTGRES / MINDFLOW_TEST_MONGO 后才会连真实数据库
func TestRoundTripPostgres(t *testing.T) {
	dsn := os.Getenv("MINDFLOW_TEST_POSTGRES")
	if dsn == "" {
		t.Skip("MINDFLOW_TEST_POSTGRES not set")
	}
	roundTrip(t, newServer(t, dsn), testUser(t))
}

func TestRoundTripMongo(t *testing.T) {
	uri := os.Getenv("MINDFLOW_TEST_MONGO")
	if uri == "" {
		t.Skip("MINDFLOW_TEST_MONGO not set")
	}
	roundTrip(t, newServer(t, uri), testUser(t))
}

func TestGuestLoginTokenIdentifiesUser(t *testing.T) {
	server := newServer(t, "memory")

	var login struct {
		UserID string `json:"userId"`
		Token  string `json:"token"`
	}
	if code := call(t, http.MethodPost, server.URL+"/api/guest-login", nil, &login); code != 200 || login.Token == "" {
		t.Fatalf("login = %d %+v", code, login)
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/stress", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("list with token = %d", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	server := newServer(t, "memory")

	req, _ := http.NewRequest(http.MethodOptions, server.URL+"/api/stress/abc", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "DELETE")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", resp.Header.Get("Access-Control-Allow-Origin"))
	}
}

func TestMigrationUnderDefaultRateLimit(t *testing.T) {
	t.Setenv("DATABASE_URL", "memory")
	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("RATE_LIMIT_BURST", "")
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	server := newServerWith(t, cfg)

	ctx := context.Background()
	store := localstore.NewMemory()
	var items []string
	for i := range 40 {
		items = append(items, fmt.Sprintf(`{"id":"local-%d","date":"2024-01-15","level":%d,"factors":[],"journal":""}`, i, i%10+1))
	}
	if _, err := store.SetItem(ctx, localstore.KeyStressEntries, "["+strings.Join(items, ",")+"]", localstore.AnyVersion); err != nil {
		t.Fatal(err)
	}
	ids := api.NewUserIDs(store, testutil.FixedClock(), logger.Nop())
	client := api.New(server.URL, 5*time.Second, ids, logger.Nop())

	report, err := migration.New(store, client, migration.DefaultBatchSize, logger.Nop()).Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if report.Kinds[0].Attempted != 40 || report.Kinds[0].Failed != 0 {
		t.Fatalf("stress report = %+v", report.Kinds[0])
	}

	user, _ := client.UserID(ctx)
	var list []map[string]any
	if code := call(t, http.MethodGet, server.URL+"/api/stress?userId="+user, nil, &list); code != 200 || len(list) != 40 {
		t.Errorf("server has %d stress entries (status %d)", len(list), code)
	}
}
