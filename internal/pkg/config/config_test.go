package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ENV", "ADDR", "PORT", "DATABASE_URL", "MONGODB_URI", "PGHOST", "STORE_PING_TIMEOUT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "JWT_EXPIRE"} {
		t.Setenv(k, "")
	}

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Addr != ":5000" {
		t.Errorf("Addr = %q, want :5000", c.Addr)
	}
	if c.StoreKind() != "none" {
		t.Errorf("StoreKind() = %q, want none", c.StoreKind())
	}
	if c.PingTimeout != 2*time.Second {
		t.Errorf("PingTimeout = %v", c.PingTimeout)
	}
	if c.RateRPS != 10 || c.RateBurst != 20 {
		t.Errorf("rate = %v/%d", c.RateRPS, c.RateBurst)
	}
	if Cfg != c {
		t.Error("Load() should publish the config through Cfg")
	}
}

func TestLoadPortAndFallbacks(t *testing.T) {
	t.Setenv("ADDR", "")
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Addr != ":8080" {
		t.Errorf("Addr = %q", c.Addr)
	}
	if c.StoreKind() != "mongo" {
		t.Errorf("StoreKind() = %q, want mongo", c.StoreKind())
	}
}

func TestLoadBuildsPostgresDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("PGHOST", "db")
	t.Setenv("PGUSER", "u")
	t.Setenv("PGPASSWORD", "p")
	t.Setenv("PGDATABASE", "d")
	t.Setenv("PGPORT", "5433")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := "host=db user=u password=p dbname=d port=5433 sslmode=disable TimeZone=UTC"
	if c.DatabaseURL != want {
		t.Errorf("DatabaseURL = %q, want %q", c.DatabaseURL, want)
	}
	if c.StoreKind() != "postgres" {
		t.Errorf("StoreKind() = %q", c.StoreKind())
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("STORE_PING_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for bad STORE_PING_TIMEOUT")
	}
}

func TestStoreKind(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"", "none"},
		{"memory", "memory"},
		{"mongodb+srv://x", "mongo"},
		{"postgres://u@h/db", "postgres"},
		{"host=h user=u", "postgres"},
	}
	for _, tt := range tests {
		c := &Config{DatabaseURL: tt.url}
		if got := c.StoreKind(); got != tt.want {
			t.Errorf("StoreKind(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV("http://a, http://b ,, ")
	if len(got) != 2 || got[0] != "http://a" || got[1] != "http://b" {
		t.Errorf("splitCSV = %v", got)
	}
}
