package store_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/objectiveSquid/Chat-site/pkg/models"
	"github.com/objectiveSquid/Chat-site/pkg/store"
	"github.com/objectiveSquid/Chat-site/pkg/store/storetest"
)

func newSQLiteStore(t *testing.T) store.Store {
	t.Helper()

	s, err := store.New(&store.Config{
		Filepath: filepath.Join(t.TempDir(), "chat.db"),
	})
	if err != nil {
		t.Fatalf("store.New() failed: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	if err := s.EnsureTables(context.Background()); err != nil {
		t.Fatalf("EnsureTables() failed: %v", err)
	}
	return s
}

func TestConformance(t *testing.T) {
	storetest.RunConformanceSuite(t, newSQLiteStore)
}

func TestEnsureTablesIdempotent(t *testing.T) {
	s := newSQLiteStore(t)

	// Second run against an already-migrated schema must be a no-op.
	if err := s.EnsureTables(context.Background()); err != nil {
		t.Fatalf("second EnsureTables() failed: %v", err)
	}
	if err := s.Healthcheck(context.Background()); err != nil {
		t.Fatalf("Healthcheck() failed: %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	cfg := &store.Config{Filepath: filepath.Join(dir, "chat.db")}
	ctx := context.Background()

	first, err := store.New(cfg)
	if err != nil {
		t.Fatalf("store.New() failed: %v", err)
	}
	if err := first.EnsureTables(ctx); err != nil {
		t.Fatalf("EnsureTables() failed: %v", err)
	}
	token, result, err := first.AddUser(ctx, "alice")
	if err != nil || result != models.AddUserSuccess {
		t.Fatalf("AddUser() = (%v, %v), want success", result, err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	second, err := store.New(cfg)
	if err != nil {
		t.Fatalf("store.New() reopen failed: %v", err)
	}
	defer second.Close()
	if err := second.EnsureTables(ctx); err != nil {
		t.Fatalf("EnsureTables() after reopen failed: %v", err)
	}

	username, ok, err := second.CheckToken(ctx, token)
	if err != nil {
		t.Fatalf("CheckToken() failed: %v", err)
	}
	if !ok || username != "alice" {
		t.Errorf("CheckToken() = (%q, %v), want (alice, true)", username, ok)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*store.Config)
		wantErr bool
	}{
		{"sqlite defaults", func(c *store.Config) { c.Filepath = "chat.db" }, false},
		{"sqlite missing filepath", func(c *store.Config) {}, true},
		{"postgres ok", func(c *store.Config) {
			c.Type = store.DatabaseTypePostgres
			c.Postgres.Host = "localhost"
			c.Postgres.Database = "chat"
			c.Postgres.User = "chat"
		}, false},
		{"postgres missing host", func(c *store.Config) {
			c.Type = store.DatabaseTypePostgres
			c.Postgres.Database = "chat"
			c.Postgres.User = "chat"
		}, true},
		{"badger ok", func(c *store.Config) {
			c.Type = store.DatabaseTypeBadger
			c.Badger.Dir = "/tmp/badger"
		}, false},
		{"badger missing dir", func(c *store.Config) { c.Type = store.DatabaseTypeBadger }, true},
		{"unknown type", func(c *store.Config) { c.Type = "etcd" }, true},
		{"inverted username bounds", func(c *store.Config) {
			c.Filepath = "chat.db"
			c.MinUsernameLength = 30
			c.MaxUsernameLength = 10
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &store.Config{}
			tt.mutate(cfg)
			cfg.ApplyDefaults()
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := &store.Config{}
	cfg.ApplyDefaults()

	if cfg.Type != store.DatabaseTypeSQLite {
		t.Errorf("Type = %q, want sqlite", cfg.Type)
	}
	if cfg.TokenLength != store.DefaultTokenLength {
		t.Errorf("TokenLength = %d, want %d", cfg.TokenLength, store.DefaultTokenLength)
	}
	if cfg.TokenCharset != store.DefaultTokenCharset {
		t.Errorf("TokenCharset = %q, want default charset", cfg.TokenCharset)
	}
	if cfg.ConnectTimeout != store.DefaultConnectTimeout {
		t.Errorf("ConnectTimeout = %v, want %v", cfg.ConnectTimeout, store.DefaultConnectTimeout)
	}

	pg := &store.Config{Type: store.DatabaseTypePostgres}
	pg.ApplyDefaults()
	if pg.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port = %d, want 5432", pg.Postgres.Port)
	}
	if pg.Postgres.SSLMode != "disable" {
		t.Errorf("Postgres.SSLMode = %q, want disable", pg.Postgres.SSLMode)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := store.PostgresConfig{
		Host:     "db.example.com",
		Port:     5433,
		Database: "chat",
		User:     "chat",
		Password: "secret",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	for _, want := range []string{"host=db.example.com", "port=5433", "dbname=chat", "sslmode=require"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("DSN() = %q, missing %q", dsn, want)
		}
	}
}

func TestCheckUsername(t *testing.T) {
	cfg := &store.Config{Filepath: "chat.db"}
	cfg.ApplyDefaults()

	tests := []struct {
		name     string
		username string
		want     models.AddUserResult
	}{
		{"too short", "ab", models.AddUserTooShort},
		{"at minimum", "abc", models.AddUserSuccess},
		{"at maximum", strings.Repeat("x", store.DefaultMaxUsernameLength), models.AddUserSuccess},
		{"too long", strings.Repeat("x", store.DefaultMaxUsernameLength+1), models.AddUserTooLong},
		// Lengths count characters, not bytes: three runes, nine bytes.
		{"multibyte at minimum", "日本語", models.AddUserSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.CheckUsername(tt.username); got != tt.want {
				t.Errorf("CheckUsername(%q) = %v, want %v", tt.username, got, tt.want)
			}
		})
	}
}

func TestGenerateToken(t *testing.T) {
	t.Run("length and charset", func(t *testing.T) {
		token, err := store.GenerateToken(64, store.DefaultTokenCharset)
		if err != nil {
			t.Fatalf("GenerateToken() failed: %v", err)
		}
		if len(token) != 64 {
			t.Errorf("token length = %d, want 64", len(token))
		}
		for _, r := range token {
			if !strings.ContainsRune(store.DefaultTokenCharset, r) {
				t.Errorf("token contains %q, outside the charset", r)
			}
		}
	})

	t.Run("multibyte charset", func(t *testing.T) {
		token, err := store.GenerateToken(8, "日本語")
		if err != nil {
			t.Fatalf("GenerateToken() failed: %v", err)
		}
		runes := []rune(token)
		if len(runes) != 8 {
			t.Errorf("token rune count = %d, want 8", len(runes))
		}
	})

	t.Run("invalid inputs", func(t *testing.T) {
		if _, err := store.GenerateToken(0, "abc"); err == nil {
			t.Error("GenerateToken(0, ...) should fail")
		}
		if _, err := store.GenerateToken(8, ""); err == nil {
			t.Error("GenerateToken(..., empty charset) should fail")
		}
	})

	t.Run("uniqueness", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 32; i++ {
			token, err := store.GenerateToken(store.DefaultTokenLength, store.DefaultTokenCharset)
			if err != nil {
				t.Fatalf("GenerateToken() failed: %v", err)
			}
			if seen[token] {
				t.Fatalf("duplicate token %q after %d draws", token, i)
			}
			seen[token] = true
		}
	})
}

func TestBadgerTypeRejectedByRelationalConstructor(t *testing.T) {
	_, err := store.New(&store.Config{
		Type:   store.DatabaseTypeBadger,
		Badger: store.BadgerConfig{Dir: t.TempDir()},
	})
	if err == nil {
		t.Fatal("store.New() should reject the badger type")
	}
}
