package web

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"

	"github.com/adway7103/broker-demo/internal/auth"
)

const (
	ceremonyCookie = "broker_passkey"
	ceremonyTTL    = 5 * time.Minute
)

type ceremony struct {
	data    *webauthn.SessionData
	expires time.Time
}

// passkeyHandlers serves the WebAuthn registration and login ceremonies.
// In-flight ceremonies are held in memory: registrations keyed by admin
// email, logins keyed by a short-lived cookie.
type passkeyHandlers struct {
	wan      *webauthn.WebAuthn
	passkeys *auth.PasskeyStore
	sessions *auth.SessionStore
	users    *auth.UserStore
	secure   bool

	mu            sync.Mutex
	registrations map[string]ceremony
	logins        map[string]ceremony
}

func newPasskeyHandlers(baseURL string, passkeys *auth.PasskeyStore, sessions *auth.SessionStore, users *auth.UserStore) (*passkeyHandlers, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	wan, err := webauthn.New(&webauthn.Config{
		RPDisplayName: "Broker Admin",
		RPID:          parsed.Hostname(),
		RPOrigins:     []string{strings.TrimSuffix(baseURL, "/")},
	})
	if err != nil {
		return nil, err
	}

	return &passkeyHandlers{
		wan:           wan,
		passkeys:      passkeys,
		sessions:      sessions,
		users:         users,
		secure:        parsed.Scheme == "https",
		registrations: make(map[string]ceremony),
		logins:        make(map[string]ceremony),
	}, nil
}

// take removes and returns an unexpired ceremony. Expired entries are
// pruned on the way.
func (h *passkeyHandlers) take(m map[string]ceremony, key string) *webauthn.SessionData {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	for k, c := range m {
		if now.After(c.expires) {
			delete(m, k)
		}
	}
	c, ok := m[key]
	if !ok {
		return nil
	}
	delete(m, key)
	return c.data
}

func (h *passkeyHandlers) put(m map[string]ceremony, key string, data *webauthn.SessionData) {
	h.mu.Lock()
	m[key] = ceremony{data: data, expires: time.Now().Add(ceremonyTTL)}
	h.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "err", err)
	}
}

// handleBeginRegistration starts registering a passkey for the signed-in admin.
func (h *passkeyHandlers) handleBeginRegistration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	email, err := h.sessions.Validate(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	creds, err := h.passkeys.WebAuthnCredentials(r.Context(), email)
	if err != nil {
		slog.Error("loading credentials", "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	exclude := make([]protocol.CredentialDescriptor, len(creds))
	for i, c := range creds {
		exclude[i] = c.Descriptor()
	}

	creation, session, err := h.wan.BeginRegistration(auth.NewPasskeyUser(email, creds),
		webauthn.WithExclusions(exclude),
	)
	if err != nil {
		slog.Error("beginning registration", "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.put(h.registrations, email, session)
	writeJSON(w, creation)
}

// handleFinishRegistration stores the new credential under ?name=.
func (h *passkeyHandlers) handleFinishRegistration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	email, err := h.sessions.Validate(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	session := h.take(h.registrations, email)
	if session == nil {
		http.Error(w, "No registration in progress", http.StatusBadRequest)
		return
	}

	creds, err := h.passkeys.WebAuthnCredentials(r.Context(), email)
	if err != nil {
		slog.Error("loading credentials", "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	credential, err := h.wan.FinishRegistration(auth.NewPasskeyUser(email, creds), *session, r)
	if err != nil {
		slog.Warn("passkey registration failed", "email", email, "err", err)
		http.Error(w, "Registration failed", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		name = "Passkey"
	}
	if err := h.passkeys.Save(r.Context(), email, name, credential); err != nil {
		slog.Error("saving credential", "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("passkey registered", "email", email, "name", name)
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleBeginLogin starts a discoverable passkey login.
func (h *passkeyHandlers) handleBeginLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	assertion, session, err := h.wan.BeginDiscoverableLogin()
	if err != nil {
		slog.Error("beginning passkey login", "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		slog.Error("generating ceremony id", "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	id := hex.EncodeToString(b)
	h.put(h.logins, id, session)

	http.SetCookie(w, &http.Cookie{
		Name:     ceremonyCookie,
		Value:    id,
		Path:     "/passkey/",
		MaxAge:   int(ceremonyTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, assertion)
}

// handleFinishLogin verifies the assertion and starts an admin session.
func (h *passkeyHandlers) handleFinishLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var session *webauthn.SessionData
	if c, err := r.Cookie(ceremonyCookie); err == nil {
		session = h.take(h.logins, c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: ceremonyCookie, Path: "/passkey/", MaxAge: -1})
	if session == nil {
		http.Error(w, "No login in progress", http.StatusBadRequest)
		return
	}

	var email string
	lookup := func(rawID, userHandle []byte) (webauthn.User, error) {
		emails, err := h.users.Emails(r.Context())
		if err != nil {
			return nil, err
		}
		for _, e := range emails {
			if string(auth.NewPasskeyUser(e, nil).WebAuthnID()) != string(userHandle) {
				continue
			}
			creds, err := h.passkeys.WebAuthnCredentials(r.Context(), e)
			if err != nil {
				return nil, err
			}
			email = e
			return auth.NewPasskeyUser(e, creds), nil
		}
		return nil, protocol.ErrBadRequest.WithDetails("unknown user")
	}

	if _, _, err := h.wan.FinishPasskeyLogin(lookup, *session, r); err != nil {
		slog.Warn("passkey login failed", "err", err)
		http.Error(w, "Login failed", http.StatusUnauthorized)
		return
	}

	if err := h.sessions.Create(w, r, email); err != nil {
		slog.Error("creating session", "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("login success", "email", email, "method", "passkey")
	writeJSON(w, map[string]string{"status": "ok"})
}
