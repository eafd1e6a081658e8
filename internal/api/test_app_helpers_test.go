package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/giverr/giverr/internal/db"
	"github.com/giverr/giverr/internal/models"
	"github.com/giverr/giverr/internal/security"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var testIdentitySecret = []byte("0123456789abcdef0123456789abcdef")

type testApp struct {
	app      *fiber.App
	database *gorm.DB
	handler  *Handler
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	return newTestAppWithOptions(t, Options{})
}

func newTestAppWithOptions(t *testing.T, options Options) testApp {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "giverr-api-test.db")
	database, err := db.OpenSQLite(databasePath)
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

	options.IdentitySecret = testIdentitySecret
	handler, err := NewHandler(database, options)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)
	return testApp{app: app, database: database, handler: handler}
}

func createTestUser(t *testing.T, database *gorm.DB, id string, firstName string, lastName string, email string) models.User {
	t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:            id,
		FirstName:     firstName,
		LastName:      lastName,
		KindnessLevel: models.DefaultKindnessLevel,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if email != "" {
		user.Email = &email
	}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
	return user
}

func issueTestToken(t *testing.T, subject string) string {
	t.Helper()

	claims := security.IdentityClaims{}
	claims.Subject = subject
	token, err := security.SignIdentityToken(testIdentitySecret, claims, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("sign identity token: %v", err)
	}
	return token
}

func (ta testApp) do(t *testing.T, method string, path string, subject string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if subject != "" {
		request.Header.Set("Authorization", "Bearer "+issueTestToken(t, subject))
	}
	return ta.send(t, request)
}

func (ta testApp) doRaw(t *testing.T, method string, path string, subject string, contentType string, body string) *http.Response {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", contentType)
	request.Header.Set("Authorization", "Bearer "+issueTestToken(t, subject))
	return ta.send(t, request)
}

func (ta testApp) send(t *testing.T, request *http.Request) *http.Response {
	t.Helper()

	response, err := ta.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", request.Method, request.URL.Path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func storyText(length int) string {
	return strings.Repeat("g", length)
}
