package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"
)

const (
	sessionExpiry = 30 * 24 * time.Hour // 30 days
	cookieName    = "broker_session"
)

// Session is a server-side login session referenced by an opaque cookie.
type Session struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)"`
	Email     string    `gorm:"type:varchar(255);not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

// SessionStore manages sessions.
type SessionStore struct {
	db     *gorm.DB
	secure bool
}

// NewSessionStore creates a session store. secure marks the cookie as
// HTTPS-only.
func NewSessionStore(gdb *gorm.DB, secure bool) *SessionStore {
	return &SessionStore{db: gdb, secure: secure}
}

// Create generates a new session for the given email and sets the cookie.
func (s *SessionStore) Create(w http.ResponseWriter, r *http.Request, email string) error {
	id, err := generateSessionID()
	if err != nil {
		return fmt.Errorf("generating session ID: %w", err)
	}

	expiresAt := time.Now().UTC().Add(sessionExpiry)
	sess := &Session{ID: id, Email: normalizeEmail(email), ExpiresAt: expiresAt}
	if err := s.db.WithContext(r.Context()).Create(sess).Error; err != nil {
		return fmt.Errorf("storing session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// Validate checks the session cookie and returns the email if valid.
func (s *SessionStore) Validate(r *http.Request) (string, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return "", fmt.Errorf("no session cookie")
	}

	var sess Session
	err = s.db.WithContext(r.Context()).First(&sess, "id = ?", cookie.Value).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("invalid session")
	}
	if err != nil {
		return "", fmt.Errorf("querying session: %w", err)
	}

	if time.Now().After(sess.ExpiresAt) {
		if delErr := s.db.WithContext(r.Context()).Delete(&Session{}, "id = ?", sess.ID).Error; delErr != nil {
			return "", fmt.Errorf("deleting expired session: %w", delErr)
		}
		return "", fmt.Errorf("session expired")
	}

	return sess.Email, nil
}

// Destroy removes the session and clears the cookie.
func (s *SessionStore) Destroy(w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil // no session to destroy
	}

	if err := s.db.WithContext(r.Context()).Delete(&Session{}, "id = ?", cookie.Value).Error; err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// Cleanup removes expired sessions.
func (s *SessionStore) Cleanup(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Delete(&Session{}, "expires_at < ?", time.Now().UTC()).Error; err != nil {
		return fmt.Errorf("cleaning up sessions: %w", err)
	}
	return nil
}

func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
