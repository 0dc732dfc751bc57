package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mindflow-app/mindflow-BE/internal/pkg/config"
	"github.com/mindflow-app/mindflow-BE/internal/testutil"
	util "github.com/mindflow-app/mindflow-BE/pkg/mypubliclib/util"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestStatusPingsEveryCall(t *testing.T) {
	up := false
	calls := 0
	svc := NewStatusService(pingFunc(func(context.Context) error {
		calls++
		if up {
			return nil
		}
		return errors.New("down")
	}), time.Second)

	if got := svc.Status(context.Background()); got.Server != "running" || got.MongoDBConnection != "disconnected" {
		t.Errorf("got %+v", got)
	}
	up = true
	if got := svc.Status(context.Background()); got.MongoDBConnection != "connected" {
		t.Errorf("got %+v", got)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestGuestLogin(t *testing.T) {
	config.Cfg = &config.Config{JWTSecret: "s", JWTExpire: time.Hour}
	svc := NewGuestService(testutil.FixedClock())

	fresh, err := svc.Login("")
	if err != nil {
		t.Fatal(err)
	}
	if fresh.UserID != "user_lresa6o0" {
		t.Errorf("UserID = %q", fresh.UserID)
	}
	claims, err := util.ParseToken(fresh.Token)
	if err != nil || claims.UserID != fresh.UserID {
		t.Errorf("claims = %+v, err = %v", claims, err)
	}

	kept, err := svc.Login("user_existing")
	if err != nil || kept.UserID != "user_existing" {
		t.Errorf("kept = %+v, err = %v", kept, err)
	}
}
