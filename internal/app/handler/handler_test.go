package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/app/repository"
	"github.com/mindflow-app/mindflow-BE/internal/app/service"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/middleware"
	"github.com/mindflow-app/mindflow-BE/internal/testutil"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.UserID())
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func stressEngine(repo repository.Repository[model.StressEntry]) *gin.Engine {
	clk := testutil.FixedClock()
	svc := service.NewRecords[model.StressEntry](model.Stress, repo, clk, testutil.NewStubIDGenerator(), logger.Nop(), 0)
	r := newEngine()
	NewRecordHandler(svc, logger.Nop()).Register(r.Group("/api"))
	return r
}

func TestRecordHandlerMissingUser(t *testing.T) {
	r := stressEngine(repository.NewMemory[model.StressEntry](model.Stress, testutil.FixedClock()))

	w := do(r, http.MethodGet, "/api/stress", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["msg"] != "User ID is required" {
		t.Errorf("body = %v", body)
	}
}

func TestRecordHandlerMissingFieldsListsThem(t *testing.T) {
	r := stressEngine(repository.NewMemory[model.StressEntry](model.Stress, testutil.FixedClock()))

	w := do(r, http.MethodPost, "/api/stress", map[string]any{"userId": "u1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Msg    string   `json:"msg"`
		Fields []string `json:"fields"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Msg != "Missing required fields" || len(body.Fields) != 2 {
		t.Errorf("body = %+v", body)
	}
}

func TestRecordHandlerInvalidJSON(t *testing.T) {
	r := stressEngine(repository.NewMemory[model.StressEntry](model.Stress, testutil.FixedClock()))

	req := httptest.NewRequest(http.MethodPost, "/api/stress", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestRecordHandlerEmptyUpdateKeepsRecord(t *testing.T) {
	r := stressEngine(repository.NewMemory[model.StressEntry](model.Stress, testutil.FixedClock()))

	w := do(r, http.MethodPost, "/api/stress", map[string]any{"userId": "u1", "date": "2024-01-15", "level": 4})
	if w.Code != http.StatusOK {
		t.Fatalf("create = %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPut, "/api/stress/id-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d %s", w.Code, w.Body.String())
	}
	var got model.StressEntry
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.ID != "id-1" || got.Level != 4 || got.Date != "2024-01-15" {
		t.Errorf("updated = %+v", got)
	}
}

func TestRecordHandlerNotFound(t *testing.T) {
	r := stressEngine(repository.NewMemory[model.StressEntry](model.Stress, testutil.FixedClock()))

	w := do(r, http.MethodDelete, "/api/stress/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["msg"] != "Entry not found" {
		t.Errorf("body = %v", body)
	}
}

// brokenRepo 能 Ping 通，但读写都失败
type brokenRepo struct {
	repository.Unavailable[model.StressEntry]
}

func (brokenRepo) Ping(context.Context) error { return nil }

func (brokenRepo) ListByUser(context.Context, string) ([]model.StressEntry, error) {
	return nil, errors.New("syntax error near password=secret")
}

func TestRecordHandlerInternalErrorIsGeneric(t *testing.T) {
	r := stressEngine(brokenRepo{})

	w := do(r, http.MethodGet, "/api/stress?userId=u1", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("secret")) {
		t.Errorf("internal error leaked: %s", w.Body.String())
	}
}

func TestRecordHandlerDegradedHeader(t *testing.T) {
	r := stressEngine(repository.Unavailable[model.StressEntry]{})

	w := do(r, http.MethodGet, "/api/stress?userId=u1", nil)
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Mindflow-Degraded") != "true" {
		t.Error("missing degraded header")
	}
}

type fixedPinger struct{ err error }

func (p fixedPinger) Ping(context.Context) error { return p.err }

func TestStatusAndRoot(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantState string
	}{
		{"up", nil, "connected"},
		{"down", errors.New("down"), "disconnected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := service.NewStatusService(fixedPinger{tt.err}, 0)

			server := httptest.NewServer(NewStatusHandler(svc))
			defer server.Close()
			resp, err := http.Get(server.URL)
			if err != nil {
				t.Fatalf("get failed: %v", err)
			}
			defer resp.Body.Close()
			var st service.Status
			if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if st.Server != "running" || st.MongoDBConnection != tt.wantState {
				t.Errorf("status = %+v", st)
			}

			w := httptest.NewRecorder()
			NewRootHandler(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			var root map[string]any
			_ = json.Unmarshal(w.Body.Bytes(), &root)
			if root["message"] != "Mindflow API is running" || root["mongoDBConnected"] != (tt.err == nil) {
				t.Errorf("root = %v", root)
			}
		})
	}
}

func TestPlaceholderBreathing(t *testing.T) {
	r := newEngine()
	RegisterPlaceholderBreathing(r.Group("/api"))

	if w := do(r, http.MethodGet, "/api/placeholder/breathing", nil); w.Code != http.StatusBadRequest {
		t.Errorf("GET without user = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/placeholder/breathing?userId=u1", nil); w.Body.String() != "[]" {
		t.Errorf("GET = %s", w.Body.String())
	}

	w := do(r, http.MethodPut, "/api/placeholder/breathing/abc", map[string]any{"duration": 60})
	var echo map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &echo)
	if echo["id"] != "abc" || echo["duration"] != float64(60) {
		t.Errorf("PUT echo = %v", echo)
	}

	w = do(r, http.MethodDelete, "/api/placeholder/breathing/abc", nil)
	var del map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &del)
	if del["msg"] != "Session removed" {
		t.Errorf("DELETE = %v", del)
	}
}
