package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/topicmux/topicmux/internal/migrations"
	"github.com/topicmux/topicmux/pkg/logger"
	"github.com/topicmux/topicmux/pkg/types"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := migrations.Migrate(db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return NewService(db, logger.NewNoopLogger())
}

func TestUpsertAndGet(t *testing.T) {
	s := newTestService(t)

	p := &types.ConnectionProfile{
		Name:       "prod",
		URL:        "redis://broker:6379",
		Principal:  "agent",
		Properties: map[string]string{"db": "2"},
	}
	if err := s.Upsert(p); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.Get("prod")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.URL != "redis://broker:6379" {
		t.Errorf("expected url to round-trip, got %s", got.URL)
	}
	if got.Properties["db"] != "2" {
		t.Errorf("expected properties to round-trip, got %v", got.Properties)
	}
}

func TestUpsertReplacesExisting(t *testing.T) {
	s := newTestService(t)

	if err := s.Upsert(&types.ConnectionProfile{Name: "prod", URL: "redis://old:6379"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := s.Upsert(&types.ConnectionProfile{Name: "prod", URL: "redis://new:6379"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.Get("prod")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.URL != "redis://new:6379" {
		t.Errorf("expected updated url, got %s", got.URL)
	}

	profiles, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile after upsert, got %d", len(profiles))
	}
}

func TestUpsertRejectsInvalidProfile(t *testing.T) {
	s := newTestService(t)

	err := s.Upsert(&types.ConnectionProfile{Name: "bad", URL: "http://nope"})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestGetUnknownProfile(t *testing.T) {
	s := newTestService(t)

	_, err := s.Get("ghost")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestService(t)

	if err := s.Upsert(&types.ConnectionProfile{Name: "prod", URL: "redis://broker:6379"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Delete("prod"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get("prod"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected profile to be gone, got %v", err)
	}

	if err := s.Delete("prod"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound on double delete, got %v", err)
	}
}

func TestResolvePasswordPrecedence(t *testing.T) {
	// inline password wins
	p := &types.ConnectionProfile{Password: "inline", PasswordRef: types.PasswordRef{Env: "TOPICMUX_TEST_PW"}}
	got, err := ResolvePassword(p)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "inline" {
		t.Errorf("expected inline password, got %q", got)
	}

	// env var next
	t.Setenv("TOPICMUX_TEST_PW", "from-env")
	p = &types.ConnectionProfile{PasswordRef: types.PasswordRef{Env: "TOPICMUX_TEST_PW"}}
	got, err = ResolvePassword(p)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "from-env" {
		t.Errorf("expected env password, got %q", got)
	}

	// file as fallback
	tmp := t.TempDir()
	pwFile := filepath.Join(tmp, "pw")
	if err := os.WriteFile(pwFile, []byte("from-file\n"), 0o600); err != nil {
		t.Fatalf("write pw file: %v", err)
	}
	p = &types.ConnectionProfile{PasswordRef: types.PasswordRef{File: pwFile}}
	got, err = ResolvePassword(p)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "from-file" {
		t.Errorf("expected file password, got %q", got)
	}

	// no secret at all is not an error
	got, err = ResolvePassword(&types.ConnectionProfile{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty password, got %q", got)
	}
}

func TestResolvePasswordMissingEnv(t *testing.T) {
	p := &types.ConnectionProfile{PasswordRef: types.PasswordRef{Env: "TOPICMUX_DEFINITELY_UNSET"}}
	if _, err := ResolvePassword(p); err == nil {
		t.Fatal("expected error for unset env var")
	}
}
