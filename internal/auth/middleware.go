package auth

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

type contextKey struct{}

// WithAdminEmail returns a context carrying the authenticated admin email.
func WithAdminEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, contextKey{}, email)
}

// AdminEmail returns the authenticated admin email, or "" when the request
// is anonymous.
func AdminEmail(ctx context.Context) string {
	email, _ := ctx.Value(contextKey{}).(string)
	return email
}

// Authenticator resolves the admin behind a request from either a Bearer
// token or the session cookie.
type Authenticator struct {
	Sessions *SessionStore
	Tokens   *TokenIssuer
}

// Identify returns the admin email for the request, or false.
func (a *Authenticator) Identify(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		claims, err := a.Tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return "", false
		}
		return claims.Email, true
	}
	if a.Sessions == nil {
		return "", false
	}
	email, err := a.Sessions.Validate(r)
	if err != nil {
		return "", false
	}
	return email, true
}

// RequireAdminPage redirects requests without a valid session to the admin
// login page.
func (a *Authenticator) RequireAdminPage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, err := a.Sessions.Validate(r)
		if err != nil {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAdminEmail(r.Context(), email)))
	})
}

// RequireAdminAPI rejects requests without a valid token or session with a
// 401 JSON error.
func (a *Authenticator) RequireAdminAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, ok := a.Identify(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAdminEmail(r.Context(), email)))
	})
}

const (
	rateLimitWindow  = 1 * time.Minute
	rateLimitMaxFail = 10
)

// RateLimiter tracks failed login attempts per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	now      func() time.Time
}

// NewRateLimiter creates an empty limiter.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{attempts: make(map[string][]time.Time), now: time.Now}
}

// recent prunes entries older than the window and returns what is left.
// Callers hold mu.
func (rl *RateLimiter) recent(ip string) []time.Time {
	cutoff := rl.now().Add(-rateLimitWindow)
	valid := rl.attempts[ip][:0]
	for _, t := range rl.attempts[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		delete(rl.attempts, ip)
		return nil
	}
	rl.attempts[ip] = valid
	return valid
}

// Blocked reports whether ip has used up its failures for the window.
func (rl *RateLimiter) Blocked(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.recent(ip)) >= rateLimitMaxFail
}

// RecordFailure records a failed attempt and returns true if ip is now
// rate limited.
func (rl *RateLimiter) RecordFailure(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := append(rl.recent(ip), rl.now())
	rl.attempts[ip] = valid
	return len(valid) >= rateLimitMaxFail
}

// Reset forgets the failures of ip after a successful login.
func (rl *RateLimiter) Reset(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, ip)
}

// ClientIP returns the request's remote IP without the port.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
