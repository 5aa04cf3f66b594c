package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/adway7103/broker-demo/internal/auth"
	"github.com/adway7103/broker-demo/internal/db"
	"github.com/adway7103/broker-demo/internal/property"
	"github.com/adway7103/broker-demo/internal/schema"
)

const (
	testAdmin    = "admin@example.com"
	testPassword = "correct-horse"
	cdnBase      = "https://cdn.test/"
)

// memStore is an in-memory storage.Store.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	return cdnBase + key, nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memStore) KeyFromURL(u string) (string, bool) {
	return strings.CutPrefix(u, cdnBase)
}

type testEnv struct {
	srv   *Server
	store *memStore
	token string
}

// newTestEnv creates a server over a fresh SQLite database with one admin
// and in-memory image storage.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, func(o *Options) {})
}

func newTestEnvWith(t *testing.T, configure func(*Options)) *testEnv {
	t.Helper()
	gdb, err := schema.Open(db.Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if cerr := db.Close(gdb); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})

	store := newMemStore()
	opts := Options{
		BaseURL:   "http://localhost:8080",
		DevMode:   true,
		JWTSecret: "test-secret",
		Storage:   store,
	}
	configure(&opts)

	srv, err := NewServer(gdb, opts)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	u, err := srv.users.Create(context.Background(), testAdmin, testPassword, "Admin", auth.RoleAdmin)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	token, _, err := srv.tokens.Issue(u)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	return &testEnv{srv: srv, store: store, token: token}
}

// do sends a JSON request, authenticated when token is set.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	r := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.srv.ServeHTTP(w, r)
	return w
}

// form posts url-encoded values, with a session cookie when given.
func (e *testEnv) form(t *testing.T, path string, values url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.srv.ServeHTTP(w, r)
	return w
}

// get fetches a page, with a session cookie when given.
func (e *testEnv) get(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.srv.ServeHTTP(w, r)
	return w
}

// session starts an admin session and returns its cookie.
func (e *testEnv) session(t *testing.T) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := e.srv.sessions.Create(w, r, testAdmin); err != nil {
		t.Fatalf("create session: %v", err)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie set")
	}
	return cookies[0]
}

// seedProperty stores a valid rental, adjusted by mutate.
func (e *testEnv) seedProperty(t *testing.T, mutate func(p *property.Property)) *property.Property {
	t.Helper()
	p := &property.Property{
		Title:        "Sea view 2BHK",
		Description:  "Bright flat near the promenade",
		Price:        85000,
		PropertyType: "2BHK",
		ListingType:  property.ListingRent,
		Locality:     "BANDRA_WEST",
		Furnishing:   property.SemiFurnished,
	}
	if mutate != nil {
		mutate(p)
	}
	if err := e.srv.properties.Create(context.Background(), p); err != nil {
		t.Fatalf("seed property: %v", err)
	}
	return p
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	decode(t, w, &resp)
	return resp["error"]
}
