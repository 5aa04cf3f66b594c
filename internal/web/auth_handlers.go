package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/adway7103/broker-demo/internal/auth"
)

type loginData struct {
	page
	Email string
}

// handleAdminLogin shows the admin login form and checks submitted
// credentials.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, err := s.sessions.Validate(r); err == nil {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
		s.render(w, "login.html", loginData{page: page{Title: "Admin login"}})
	case http.MethodPost:
		s.handleAdminLoginSubmit(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleAdminLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	data := loginData{page: page{Title: "Admin login"}, Email: email}

	ip := auth.ClientIP(r)
	if s.limiter.Blocked(ip) {
		data.Error = "Too many failed attempts. Try again in a minute."
		s.renderStatus(w, http.StatusTooManyRequests, "login.html", data)
		return
	}

	if email == "" || r.FormValue("password") == "" {
		data.Error = "Email and password are required"
		s.renderStatus(w, http.StatusBadRequest, "login.html", data)
		return
	}

	u, err := s.users.Authenticate(r.Context(), email, r.FormValue("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.limiter.RecordFailure(ip)
		slog.Warn("login failed", "email", email, "ip", ip)
		data.Error = "Invalid email or password"
		s.renderStatus(w, http.StatusUnauthorized, "login.html", data)
		return
	}
	if err != nil {
		s.pageError(w, r, err, "authenticating")
		return
	}
	s.limiter.Reset(ip)

	if err := s.sessions.Create(w, r, u.Email); err != nil {
		s.pageError(w, r, err, "creating session")
		return
	}

	slog.Info("login success", "email", u.Email, "method", "password")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// handleAdminLogout destroys the session and returns to the login page.
func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.sessions.Destroy(w, r); err != nil {
		slog.Warn("destroying session", "err", err)
	}
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
