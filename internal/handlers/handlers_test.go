package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskdeck/internal/auth"
	"taskdeck/internal/db"
	"taskdeck/internal/store"
)

// newTestEnv builds the full router over an in-memory sqlite database and
// hands back the database for tests that inspect persisted rows directly.
func newTestEnv(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// A single connection keeps the shared in-memory database alive.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(context.Background(), database); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	tokens := auth.NewTokenManager("test-signing-key", time.Hour)
	api, err := New(store.New(database), tokens, nil, Config{})
	if err != nil {
		t.Fatalf("init api: %v", err)
	}
	return api.Routes(), database
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	h, _ := newTestEnv(t)
	return h
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func authCookieOf(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == authCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", authCookieName)
	return nil
}

// signup registers a user and returns its auth cookie.
func signup(t *testing.T, h http.Handler, name, email, password string) *http.Cookie {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/auth/signup", map[string]any{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	return authCookieOf(t, rec)
}

func TestSignupLoginRoundTrip(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/auth/signup", map[string]any{
		"name":     "A",
		"email":    "a@x.com",
		"password": "pw123456",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	decodeBody(t, rec, &created)
	if created.ID != 1 || created.Name != "A" {
		t.Fatalf("signup body = %+v, want id:1 name:A", created)
	}

	cookie := authCookieOf(t, rec)
	if !cookie.HttpOnly {
		t.Error("auth cookie is not HttpOnly")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Error("auth cookie is not SameSite=Strict")
	}

	rec = doJSON(t, h, http.MethodPost, "/auth/login", map[string]any{
		"email":    "a@x.com",
		"password": "pw123456",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var loggedIn struct {
		User struct {
			ID    uint   `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	decodeBody(t, rec, &loggedIn)
	if loggedIn.User.ID != 1 || loggedIn.User.Email != "a@x.com" {
		t.Fatalf("login body = %+v", loggedIn)
	}
	authCookieOf(t, rec)
}

func TestSignupValidation(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing name", body: map[string]any{"email": "a@x.com", "password": "pw123456"}},
		{name: "missing email", body: map[string]any{"name": "A", "password": "pw123456"}},
		{name: "missing password", body: map[string]any{"name": "A", "email": "a@x.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/auth/signup", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("signup = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	h := newTestHandler(t)
	signup(t, h, "A", "a@x.com", "pw123456")

	rec := doJSON(t, h, http.MethodPost, "/auth/signup", map[string]any{
		"name":     "B",
		"email":    "a@x.com",
		"password": "other-pass",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup = %d, want 409: %s", rec.Code, rec.Body.String())
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/auth/login", map[string]any{
		"email":    "nobody@x.com",
		"password": "pw123456",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("login = %d, want 404: %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == authCookieName {
			t.Fatal("cookie set for unknown email")
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h := newTestHandler(t)
	signup(t, h, "A", "a@x.com", "pw123456")

	rec := doJSON(t, h, http.MethodPost, "/auth/login", map[string]any{
		"email":    "a@x.com",
		"password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login = %d, want 401: %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == authCookieName {
			t.Fatal("cookie set for wrong password")
		}
	}
}

func TestMe(t *testing.T) {
	h := newTestHandler(t)
	cookie := signup(t, h, "A", "a@x.com", "pw123456")

	rec := doJSON(t, h, http.MethodGet, "/me", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("me = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		User struct {
			ID    uint   `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	decodeBody(t, rec, &body)
	if body.User.ID != 1 || body.User.Email != "a@x.com" {
		t.Fatalf("me body = %+v", body)
	}
	if strings.Contains(rec.Body.String(), "passwordHash") {
		t.Fatal("password hash leaked in /me response")
	}

	rec = doJSON(t, h, http.MethodGet, "/me", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without cookie = %d, want 401", rec.Code)
	}
}

func TestMeRejectsTamperedToken(t *testing.T) {
	h := newTestHandler(t)

	other := auth.NewTokenManager("some-other-key", time.Hour)
	token, err := other.Issue(1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec := doJSON(t, h, http.MethodGet, "/me", nil, &http.Cookie{Name: authCookieName, Value: token})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me = %d, want 401", rec.Code)
	}
}

func TestMutationsRecordAuditTrail(t *testing.T) {
	h, database := newTestEnv(t)
	cookie := signup(t, h, "A", "a@x.com", "pw123456")

	rec := doJSON(t, h, http.MethodPost, "/tasks", map[string]any{"title": "write report"}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task = %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, http.MethodPatch, "/tasks/1", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle task = %d: %s", rec.Code, rec.Body.String())
	}

	logs, err := store.New(database).AuditLogsForUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("load audit logs: %v", err)
	}

	actions := make([]string, len(logs))
	for i, entry := range logs {
		actions[i] = entry.Action
	}
	want := []string{"user.signup", "task.created", "task.toggled"}
	if len(actions) != len(want) {
		t.Fatalf("audit actions = %v, want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Fatalf("audit actions = %v, want %v", actions, want)
		}
	}

	var meta map[string]any
	if err := json.Unmarshal(logs[2].Metadata, &meta); err != nil {
		t.Fatalf("decode toggle metadata %q: %v", logs[2].Metadata, err)
	}
	if meta["completed"] != true {
		t.Fatalf("toggle metadata = %v, want completed:true", meta)
	}
	if logs[1].TargetType != "task" || logs[1].TargetID != 1 {
		t.Fatalf("task.created entry = %+v", logs[1])
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/auth/logout", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout = %d, want 200", rec.Code)
	}

	cookie := authCookieOf(t, rec)
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Fatalf("logout cookie not cleared: value=%q maxAge=%d", cookie.Value, cookie.MaxAge)
	}
}
