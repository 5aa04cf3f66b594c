package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	return &Authenticator{
		Sessions: NewSessionStore(testDB(t), false),
		Tokens:   NewTokenIssuer("test-secret", time.Hour),
	}
}

func echoAdmin() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(AdminEmail(r.Context())))
	})
}

func TestRequireAdminPageRedirects(t *testing.T) {
	a := testAuthenticator(t)

	w := httptest.NewRecorder()
	a.RequireAdminPage(echoAdmin()).ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))

	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if w.Header().Get("Location") != "/admin/login" {
		t.Errorf("location = %q, want /admin/login", w.Header().Get("Location"))
	}
}

func TestRequireAdminPageAllowsSession(t *testing.T) {
	a := testAuthenticator(t)

	login := httptest.NewRecorder()
	if err := a.Sessions.Create(login, httptest.NewRequest("POST", "/", nil), "admin@example.com"); err != nil {
		t.Fatalf("create session: %v", err)
	}

	r := httptest.NewRequest("GET", "/admin", nil)
	r.AddCookie(sessionCookie(t, login))
	w := httptest.NewRecorder()
	a.RequireAdminPage(echoAdmin()).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "admin@example.com" {
		t.Errorf("admin email = %q", w.Body.String())
	}
}

func TestRequireAdminAPI(t *testing.T) {
	a := testAuthenticator(t)
	token, _, err := a.Tokens.Issue(&User{ID: "1", Email: "admin@example.com", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no credentials", "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"basic auth", "Basic abc", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/leads", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			a.RequireAdminAPI(echoAdmin()).ServeHTTP(w, r)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized && w.Body.String() != "{\"error\":\"Unauthorized\"}\n" {
				t.Errorf("body = %q", w.Body.String())
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter()
	now := time.Now()
	rl.now = func() time.Time { return now }

	for i := 1; i < rateLimitMaxFail; i++ {
		if rl.RecordFailure("1.2.3.4") {
			t.Fatalf("limited after %d failures", i)
		}
	}
	if !rl.RecordFailure("1.2.3.4") {
		t.Fatal("expected limit after max failures")
	}
	if !rl.Blocked("1.2.3.4") {
		t.Error("ip should be blocked")
	}
	if rl.Blocked("5.6.7.8") {
		t.Error("other ip should not be blocked")
	}

	now = now.Add(rateLimitWindow + time.Second)
	if rl.Blocked("1.2.3.4") {
		t.Error("block should expire after the window")
	}

	rl.RecordFailure("9.9.9.9")
	rl.Reset("9.9.9.9")
	if len(rl.attempts["9.9.9.9"]) != 0 {
		t.Error("reset should clear failures")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	if got := ClientIP(r); got != "10.0.0.1" {
		t.Errorf("ClientIP = %q", got)
	}
	r.RemoteAddr = "weird"
	if got := ClientIP(r); got != "weird" {
		t.Errorf("ClientIP = %q", got)
	}
}
