package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/raugupatis/raugupatis-log/internal/db"
	"github.com/raugupatis/raugupatis-log/internal/models"
	"github.com/raugupatis/raugupatis-log/internal/services"
	"github.com/raugupatis/raugupatis-log/internal/storage"
	"gorm.io/gorm"
)

const testPassword = "securepass123"

type testApp struct {
	app      *fiber.App
	handler  *Handler
	database *gorm.DB
	photos   *storage.LocalStorage
}

type testAppOption func(*Options)

func withCookieSecure() testAppOption {
	return func(options *Options) {
		options.CookieSecure = true
	}
}

func withLoginAttemptLimit(limit int) testAppOption {
	return func(options *Options) {
		options.LoginAttemptLimit = limit
		options.LoginAttemptWindow = time.Hour
	}
}

func newTestApp(t *testing.T, opts ...testAppOption) *testApp {
	t.Helper()

	dir := t.TempDir()
	database, err := db.OpenSQLite(filepath.Join(dir, "raugupatis-api-test.db"))
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

	photos, err := storage.NewLocalStorage(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("init photo storage: %v", err)
	}

	options := Options{
		SessionSecret:  "test-secret-key-with-enough-length",
		MaxUploadBytes: 64 << 10,
		PhotoStorage:   photos,
	}
	for _, opt := range opts {
		opt(&options)
	}

	handler, err := NewHandler(database, options)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return &testApp{app: app, handler: handler, database: database, photos: photos}
}

func (ta *testApp) createUser(t *testing.T, email string) models.User {
	t.Helper()

	user, err := ta.handler.authService.Register(services.RegisterInput{Email: email, Password: testPassword})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return user
}

func (ta *testApp) createAdmin(t *testing.T, email string) models.User {
	t.Helper()

	user, err := ta.handler.authService.CreateUser(services.AdminCreateUserInput{
		RegisterInput: services.RegisterInput{Email: email, Password: testPassword},
		Role:          models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("create admin %s: %v", email, err)
	}
	return user
}

// login returns a Cookie header value for the new session.
func (ta *testApp) login(t *testing.T, email string) string {
	t.Helper()

	response := ta.doJSON(t, http.MethodPost, "/api/users/login", "", map[string]any{
		"email":    email,
		"password": testPassword,
	})
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected login status 200, got %d", response.StatusCode)
	}
	cookie := responseCookie(response.Cookies(), sessionCookieName)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("session cookie is missing in login response")
	}
	return cookie.Name + "=" + cookie.Value
}

func (ta *testApp) do(t *testing.T, request *http.Request, cookie string) *http.Response {
	t.Helper()

	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}
	response, err := ta.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", request.Method, request.URL.Path, err)
	}
	return response
}

func (ta *testApp) doJSON(t *testing.T, method string, path string, cookie string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")
	return ta.do(t, request, cookie)
}

func (ta *testApp) createFermentation(t *testing.T, cookie string, name string) fermentationResponse {
	t.Helper()

	response := ta.doJSON(t, http.MethodPost, "/api/fermentation", cookie, map[string]any{
		"profile_id":  3,
		"name":        name,
		"ingredients": []string{"napa cabbage", "gochugaru"},
	})
	defer response.Body.Close()

	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected create status 201, got %d", response.StatusCode)
	}
	var created fermentationResponse
	decodeJSON(t, response.Body, &created)
	return created
}

func (ta *testApp) countRows(t *testing.T, table string) int64 {
	t.Helper()

	var count int64
	if err := ta.database.Table(table).Count(&count).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return count
}

func decodeJSON(t *testing.T, body io.Reader, target any) {
	t.Helper()

	if err := json.NewDecoder(body).Decode(target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func readAPIError(t *testing.T, body io.Reader) string {
	t.Helper()

	payload := map[string]any{}
	decodeJSON(t, body, &payload)
	message, _ := payload["error"].(string)
	return message
}

func readFieldErrors(t *testing.T, body io.Reader) map[string]string {
	t.Helper()

	payload := struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}{}
	decodeJSON(t, body, &payload)
	return payload.Fields
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func readBody(t *testing.T, body io.Reader) string {
	t.Helper()

	content, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return string(content)
}
