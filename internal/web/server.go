// Package web provides the HTTP server: the JSON API, the public listing
// pages and the admin back-office.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/adway7103/broker-demo/internal/auth"
	"github.com/adway7103/broker-demo/internal/lead"
	"github.com/adway7103/broker-demo/internal/logging"
	"github.com/adway7103/broker-demo/internal/property"
	"github.com/adway7103/broker-demo/internal/shortlist"
	"github.com/adway7103/broker-demo/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// DefaultUploadMaxBytes limits image uploads when Options does not.
const DefaultUploadMaxBytes = 5 << 20

// Options configures a Server.
type Options struct {
	BaseURL   string
	DevMode   bool
	JWTSecret string
	TokenTTL  time.Duration
	// Storage receives uploaded images. Uploads are disabled when nil.
	Storage        storage.Store
	UploadMaxBytes int64
	// Notifier is told about new leads. Optional.
	Notifier lead.Notifier
}

// Server is the broker HTTP server.
type Server struct {
	opts       Options
	properties *property.Repository
	leads      *lead.Repository
	shortlists *shortlist.Repository
	users      *auth.UserStore
	sessions   *auth.SessionStore
	passkeys   *auth.PasskeyStore
	tokens     *auth.TokenIssuer
	auth       *auth.Authenticator
	limiter    *auth.RateLimiter
	storage    storage.Store
	passkey    *passkeyHandlers
	templates  *template.Template
	mux        *http.ServeMux
}

// NewServer creates a server over a migrated database.
func NewServer(gdb *gorm.DB, opts Options) (*Server, error) {
	if opts.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.UploadMaxBytes <= 0 {
		opts.UploadMaxBytes = DefaultUploadMaxBytes
	}

	tmpl, err := template.New("").Funcs(funcMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	s := &Server{
		opts:       opts,
		properties: property.NewRepository(gdb),
		leads:      lead.NewRepository(gdb, opts.Notifier),
		shortlists: shortlist.NewRepository(gdb),
		users:      auth.NewUserStore(gdb),
		sessions:   auth.NewSessionStore(gdb, !opts.DevMode),
		passkeys:   auth.NewPasskeyStore(gdb),
		tokens:     auth.NewTokenIssuer(opts.JWTSecret, opts.TokenTTL),
		limiter:    auth.NewRateLimiter(),
		storage:    opts.Storage,
		templates:  tmpl,
		mux:        http.NewServeMux(),
	}
	s.auth = &auth.Authenticator{Sessions: s.sessions, Tokens: s.tokens}

	s.passkey, err = newPasskeyHandlers(opts.BaseURL, s.passkeys, s.sessions, s.users)
	if err != nil {
		return nil, fmt.Errorf("configuring passkeys: %w", err)
	}

	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("creating static sub-fs: %w", err)
	}

	s.routes(http.FileServer(http.FS(staticContent)))
	return s, nil
}

func (s *Server) routes(static http.Handler) {
	requirePage := s.auth.RequireAdminPage
	requireAPI := s.auth.RequireAdminAPI

	s.mux.Handle("/static/", http.StripPrefix("/static/", static))
	s.mux.HandleFunc("/health", s.handleHealth)

	// JSON API
	s.mux.HandleFunc("/api/properties", s.handleAPIProperties)
	s.mux.HandleFunc("/api/properties/", s.handleAPIProperty)
	s.mux.HandleFunc("/api/leads", s.handleAPILeads)
	s.mux.HandleFunc("/api/shortlists", s.handleAPIShortlists)
	s.mux.HandleFunc("/api/shortlists/", s.handleAPIShortlist)
	s.mux.HandleFunc("/api/admin/login", s.apiLogin)
	s.mux.HandleFunc("/api/admin/logout", s.apiLogout)
	s.mux.Handle("/api/admin/stats", requireAPI(http.HandlerFunc(s.apiStats)))
	s.mux.Handle("/api/upload", requireAPI(http.HandlerFunc(s.handleAPIUpload)))

	// Public pages
	s.mux.HandleFunc("/", s.handleHome)
	s.mux.HandleFunc("/listings", s.handleListings)
	s.mux.HandleFunc("/properties/", s.handlePropertyDetail)
	s.mux.HandleFunc("/shortlist", s.handleShortlistPost)
	s.mux.HandleFunc("/search", s.handleSearch)

	// Admin pages
	s.mux.HandleFunc("/admin/login", s.handleAdminLogin)
	s.mux.HandleFunc("/admin/logout", s.handleAdminLogout)
	s.mux.Handle("/admin", requirePage(http.HandlerFunc(s.handleDashboard)))
	s.mux.Handle("/admin/properties", requirePage(http.HandlerFunc(s.handleAdminProperties)))
	s.mux.Handle("/admin/properties/", requirePage(http.HandlerFunc(s.handleAdminPropertyRoute)))
	s.mux.Handle("/admin/leads", requirePage(http.HandlerFunc(s.handleAdminLeads)))
	s.mux.Handle("/admin/leads/", requirePage(http.HandlerFunc(s.handleAdminLeadDelete)))
	s.mux.Handle("/admin/shortlists", requirePage(http.HandlerFunc(s.handleAdminShortlists)))
	s.mux.Handle("/admin/shortlists/", requirePage(http.HandlerFunc(s.handleAdminShortlistDelete)))
	s.mux.Handle("/admin/links", requirePage(http.HandlerFunc(s.handleLinkBuilder)))
	s.mux.Handle("/admin/settings", requirePage(http.HandlerFunc(s.handleSettings)))
	s.mux.Handle("/admin/settings/passkeys/delete", requirePage(http.HandlerFunc(s.handlePasskeyDelete)))

	// Passkeys
	s.mux.HandleFunc("/passkey/register/begin", s.passkey.handleBeginRegistration)
	s.mux.HandleFunc("/passkey/register/finish", s.passkey.handleFinishRegistration)
	s.mux.HandleFunc("/passkey/login/begin", s.passkey.handleBeginLogin)
	s.mux.HandleFunc("/passkey/login/finish", s.passkey.handleFinishLogin)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Handler returns the server wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return logging.RequestLogger(s)
}

// ListenAndServe serves on port until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.cleanupSessions(ctx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr, "base_url", s.opts.BaseURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// cleanupSessions drops expired sessions hourly.
func (s *Server) cleanupSessions(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		if err := s.sessions.Cleanup(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("session cleanup failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// render executes a page template into a buffer so a template error never
// leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("rendering template", "template", name, "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// renderStatus is render with a non-200 status.
func (s *Server) renderStatus(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("rendering template", "template", name, "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
