package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/giverr/giverr/internal/api"
	"github.com/giverr/giverr/internal/db"
	"github.com/gofiber/fiber/v2"
)

func TestRunRejectsUnknownCommand(t *testing.T) {
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "giverr.db"))

	err := run([]string{"bogus"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestServeRequiresIdentitySecret(t *testing.T) {
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "giverr.db"))
	t.Setenv("IDENTITY_SECRET", "change_me_in_production")

	if err := run([]string{"serve"}); err == nil {
		t.Fatal("expected placeholder identity secret to be refused")
	}
}

func TestNewAppSetsRequestIDAndServesHealth(t *testing.T) {
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "giverr.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	handler, err := api.NewHandler(database, api.Options{IdentitySecret: []byte("0123456789abcdef0123456789abcdef")})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	app := newApp(handler)

	response, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", response.StatusCode)
	}
	if response.Header.Get(fiber.HeaderXRequestID) == "" {
		t.Fatal("expected request id header")
	}

	response, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/user", nil), -1)
	if err != nil {
		t.Fatalf("auth request failed: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", response.StatusCode)
	}
}
