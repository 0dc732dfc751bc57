package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/config"
	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
	"github.com/mindflow-app/mindflow-BE/internal/testutil"
)

func newStressRepo() (*Memory[model.StressEntry, *model.StressEntry], *testutil.StubClock) {
	clk := testutil.FixedClock()
	return NewMemory[model.StressEntry](model.Stress, clk), clk
}

func TestMemoryListByUserSortsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo, _ := newStressRepo()

	entries := []model.StressEntry{
		{ID: "a", UserID: "u1", Date: "2024-01-01", Timestamp: "2024-01-01T08:00:00Z", Level: 3},
		{ID: "b", UserID: "u1", Date: "2024-01-02", Timestamp: "2024-01-02T08:00:00Z", Level: 4},
		{ID: "c", UserID: "u2", Date: "2024-01-03", Timestamp: "2024-01-03T08:00:00Z", Level: 5},
		{ID: "d", UserID: "u1", Date: "2024-01-01", Timestamp: "2024-01-01T20:00:00Z", Level: 6},
	}
	for i := range entries {
		if err := repo.Create(ctx, &entries[i]); err != nil {
			t.Fatalf("Create(%s) = %v", entries[i].ID, err)
		}
	}

	got, err := repo.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser() = %v", err)
	}
	var ids []string
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	want := []string{"b", "d", "a"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestMemoryListUnknownUserIsEmptyNotNil(t *testing.T) {
	repo, _ := newStressRepo()
	got, err := repo.ListByUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListByUser() = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty slice", got)
	}
}

func TestMemoryCreateStampsTimes(t *testing.T) {
	ctx := context.Background()
	repo, clk := newStressRepo()

	e := &model.StressEntry{ID: "a", UserID: "u1", Date: "2024-01-01", Level: 3}
	if err := repo.Create(ctx, e); err != nil {
		t.Fatal(err)
	}
	created := clk.Now().UTC()
	clk.Advance(time.Minute)

	e.Level = 8
	if err := repo.Save(ctx, e); err != nil {
		t.Fatal(err)
	}
	got, err := repo.Get(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Level != 8 {
		t.Errorf("Level = %d, want 8", got.Level)
	}
	if !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(created.Add(time.Minute)) {
		t.Errorf("CreatedAt=%v UpdatedAt=%v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestMemoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo, _ := newStressRepo()

	if _, err := repo.Get(ctx, "missing"); !pkgerr.IsNotFound(err) {
		t.Errorf("Get: got %v", err)
	}
	if err := repo.Save(ctx, &model.StressEntry{ID: "missing"}); !pkgerr.IsNotFound(err) {
		t.Errorf("Save: got %v", err)
	}
	if err := repo.Delete(ctx, "missing"); !pkgerr.IsNotFound(err) {
		t.Errorf("Delete: got %v", err)
	}
}

func TestMemoryDeleteRemoves(t *testing.T) {
	ctx := context.Background()
	repo, _ := newStressRepo()
	e := &model.StressEntry{ID: "a", UserID: "u1", Date: "2024-01-01", Level: 3}
	if err := repo.Create(ctx, e); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() = %v", err)
	}
	if _, err := repo.Get(ctx, "a"); !pkgerr.IsNotFound(err) {
		t.Errorf("Get after delete: got %v", err)
	}
}

func TestMemoryCreateRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	repo, _ := newStressRepo()
	if err := repo.Create(ctx, &model.StressEntry{ID: "a", UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, &model.StressEntry{ID: "a", UserID: "u1"}); err == nil {
		t.Error("expected duplicate id error")
	}
}

func TestUnavailable(t *testing.T) {
	var repo Repository[model.BreathingSession] = Unavailable[model.BreathingSession]{}
	ctx := context.Background()
	if err := repo.Ping(ctx); !errors.Is(err, pkgerr.ErrStoreUnavailable) {
		t.Errorf("Ping = %v", err)
	}
	if _, err := repo.ListByUser(ctx, "u1"); !errors.Is(err, pkgerr.ErrStoreUnavailable) {
		t.Errorf("ListByUser = %v", err)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	tests := []struct {
		url      string
		wantKind string
		wantUp   bool
	}{
		{"", "none", false},
		{"memory", "memory", true},
	}
	for _, tt := range tests {
		s := Open(&config.Config{DatabaseURL: tt.url}, testutil.FixedClock(), logger.Nop())
		if s.Kind != tt.wantKind {
			t.Errorf("Open(%q).Kind = %q, want %q", tt.url, s.Kind, tt.wantKind)
		}
		if up := s.Pinger.Ping(context.Background()) == nil; up != tt.wantUp {
			t.Errorf("Open(%q) up = %v, want %v", tt.url, up, tt.wantUp)
		}
		if err := s.Close(context.Background()); err != nil {
			t.Errorf("Close() = %v", err)
		}
	}
}

func TestOpenDoesNotDial(t *testing.T) {
	s := Open(&config.Config{DatabaseURL: "mongodb://127.0.0.1:1", MongoDatabase: "x"}, testutil.FixedClock(), logger.Nop())
	if s.Kind != "mongo" {
		t.Fatalf("Kind = %q", s.Kind)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
