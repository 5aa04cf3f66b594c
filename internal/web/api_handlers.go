package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/adway7103/broker-demo/internal/apperr"
	"github.com/adway7103/broker-demo/internal/auth"
	"github.com/adway7103/broker-demo/internal/db"
	"github.com/adway7103/broker-demo/internal/lead"
	"github.com/adway7103/broker-demo/internal/property"
	"github.com/adway7103/broker-demo/internal/search"
	"github.com/adway7103/broker-demo/internal/shortlist"
	"github.com/adway7103/broker-demo/internal/storage"
)

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	resp := map[string]string{"error": msg}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// apiFail maps err onto a JSON error. Domain errors keep their message;
// anything else is logged and reported as a 500.
func apiFail(w http.ResponseWriter, r *http.Request, err error, action string) {
	if e, ok := apperr.As(err); ok {
		apiError(w, e.Message, e.Code.HTTPStatus())
		return
	}
	slog.Error(action, "err", err, "method", r.Method, "path", r.URL.Path)
	apiError(w, "Internal server error", http.StatusInternalServerError)
}

// pagination is the paging block of list responses.
type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func newPagination(p db.Page, total int64) pagination {
	return pagination{Page: p.Page, Limit: p.Limit, Total: total, Pages: p.Pages(total)}
}

// pageParams reads page and limit query parameters. Invalid values fall
// back to the defaults.
func pageParams(r *http.Request) db.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return db.Page{Page: page, Limit: limit}
}

// decodeJSON decodes a JSON request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.CodeInvalid, "Invalid JSON body", err)
	}
	return nil
}

// requireAdmin authenticates an API call inline, for routes where only
// some methods are admin-only. The returned request carries the admin
// email.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	email, ok := s.auth.Identify(r)
	if !ok {
		apiError(w, "Unauthorized", http.StatusUnauthorized)
		return r, false
	}
	return r.WithContext(auth.WithAdminEmail(r.Context(), email)), true
}

// handleAPIProperties routes /api/properties.
func (s *Server) handleAPIProperties(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.apiListProperties(w, r)
	case http.MethodPost:
		if r, ok := s.requireAdmin(w, r); ok {
			s.apiCreateProperty(w, r)
		}
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAPIProperty routes /api/properties/{id}.
func (s *Server) handleAPIProperty(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/properties/"), "/")
	if id == "" || strings.Contains(id, "/") {
		apiError(w, "not found", http.StatusNotFound)
		return
	}

	if r.Method != http.MethodGet {
		var ok bool
		if r, ok = s.requireAdmin(w, r); !ok {
			return
		}
	}

	switch r.Method {
	case http.MethodGet:
		s.apiGetProperty(w, r, id)
	case http.MethodPut:
		s.apiUpdateProperty(w, r, id)
	case http.MethodPatch:
		s.apiPatchProperty(w, r, id)
	case http.MethodDelete:
		s.apiDeleteProperty(w, r, id)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// apiListProperties returns one filtered page of properties.
func (s *Server) apiListProperties(w http.ResponseWriter, r *http.Request) {
	f, err := search.ParseFilter(r.URL.Query())
	if err != nil {
		apiFail(w, r, err, "parsing filter")
		return
	}
	opts := f.ListOptions()

	switch r.URL.Query().Get("isRented") {
	case "":
	case "true", "false":
		rented := r.URL.Query().Get("isRented") == "true"
		opts.Rented = &rented
	default:
		apiError(w, "isRented must be true or false", http.StatusBadRequest)
		return
	}

	props, total, err := s.properties.List(r.Context(), opts)
	if err != nil {
		apiFail(w, r, err, "listing properties")
		return
	}

	apiJSON(w, map[string]interface{}{
		"properties": props,
		"pagination": newPagination(opts.Page.Normalize(property.DefaultLimit), total),
	}, http.StatusOK)
}

// apiCreateProperty creates a property.
func (s *Server) apiCreateProperty(w http.ResponseWriter, r *http.Request) {
	var in property.Input
	if err := decodeJSON(r, &in); err != nil {
		apiFail(w, r, err, "decoding property")
		return
	}

	p := in.Property()
	if err := s.properties.Create(r.Context(), p); err != nil {
		apiFail(w, r, err, "creating property")
		return
	}

	slog.Info("property created", "id", p.ID, "admin", auth.AdminEmail(r.Context()))
	apiJSON(w, p, http.StatusCreated)
}

// apiGetProperty returns a single property.
func (s *Server) apiGetProperty(w http.ResponseWriter, r *http.Request, id string) {
	p, err := s.properties.GetByID(r.Context(), id)
	if err != nil {
		apiFail(w, r, err, "loading property")
		return
	}
	apiJSON(w, p, http.StatusOK)
}

// apiUpdateProperty replaces a property's editable fields.
func (s *Server) apiUpdateProperty(w http.ResponseWriter, r *http.Request, id string) {
	var in property.Input
	if err := decodeJSON(r, &in); err != nil {
		apiFail(w, r, err, "decoding property")
		return
	}

	p, err := s.properties.Update(r.Context(), id, in)
	if err != nil {
		apiFail(w, r, err, "updating property")
		return
	}
	apiJSON(w, p, http.StatusOK)
}

// apiPatchProperty updates only the fields present in the body.
func (s *Server) apiPatchProperty(w http.ResponseWriter, r *http.Request, id string) {
	var fields map[string]json.RawMessage
	if err := decodeJSON(r, &fields); err != nil {
		apiFail(w, r, err, "decoding patch")
		return
	}

	p, err := s.properties.Patch(r.Context(), id, fields)
	if err != nil {
		apiFail(w, r, err, "patching property")
		return
	}
	apiJSON(w, p, http.StatusOK)
}

// apiDeleteProperty deletes a property and, when storage is configured,
// the images uploaded for it.
func (s *Server) apiDeleteProperty(w http.ResponseWriter, r *http.Request, id string) {
	p, err := s.properties.Delete(r.Context(), id)
	if err != nil {
		apiFail(w, r, err, "deleting property")
		return
	}
	s.removeImages(r, p)

	slog.Info("property deleted", "id", id, "admin", auth.AdminEmail(r.Context()))
	apiJSON(w, map[string]string{"message": "Property deleted successfully"}, http.StatusOK)
}

// removeImages deletes a property's stored images. Failures are logged
// only.
func (s *Server) removeImages(r *http.Request, p *property.Property) {
	if s.storage == nil {
		return
	}
	for _, u := range p.Images {
		key, ok := s.storage.KeyFromURL(u)
		if !ok {
			continue
		}
		if err := s.storage.Delete(r.Context(), key); err != nil {
			slog.Warn("removing property image", "property", p.ID, "key", key, "err", err)
		}
	}
}

// handleAPILeads routes /api/leads.
func (s *Server) handleAPILeads(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.apiCreateLead(w, r)
	case http.MethodGet:
		if r, ok := s.requireAdmin(w, r); ok {
			s.apiListLeads(w, r)
		}
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// apiCreateLead records a lead from the wizard or a contact form.
func (s *Server) apiCreateLead(w http.ResponseWriter, r *http.Request) {
	var l lead.Lead
	if err := decodeJSON(r, &l); err != nil {
		apiFail(w, r, err, "decoding lead")
		return
	}
	l.ID, l.CreatedAt = "", time.Time{}

	if err := s.leads.Create(r.Context(), &l); err != nil {
		apiFail(w, r, err, "creating lead")
		return
	}
	apiJSON(w, &l, http.StatusCreated)
}

// leadListOptions reads lead filters from the query string.
func leadListOptions(r *http.Request) lead.ListOptions {
	q := r.URL.Query()
	return lead.ListOptions{
		Search:       q.Get("search"),
		ListingType:  q.Get("listingType"),
		PropertyType: q.Get("propertyType"),
		Locality:     q.Get("locality"),
		Furnishing:   q.Get("furnishing"),
		Budget:       q.Get("budget"),
		Page:         pageParams(r),
	}
}

// apiListLeads returns one filtered page of leads.
func (s *Server) apiListLeads(w http.ResponseWriter, r *http.Request) {
	opts := leadListOptions(r)
	leads, total, err := s.leads.List(r.Context(), opts)
	if err != nil {
		apiFail(w, r, err, "listing leads")
		return
	}

	apiJSON(w, map[string]interface{}{
		"leads":      leads,
		"pagination": newPagination(opts.Page.Normalize(lead.DefaultLimit), total),
	}, http.StatusOK)
}

// handleAPIShortlists routes /api/shortlists.
func (s *Server) handleAPIShortlists(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.apiAddShortlist(w, r)
	case http.MethodGet:
		s.apiListShortlists(w, r)
	case http.MethodDelete:
		if r, ok := s.requireAdmin(w, r); ok {
			s.apiDeleteShortlist(w, r, r.URL.Query().Get("id"))
		}
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAPIShortlist routes /api/shortlists/{id}.
func (s *Server) handleAPIShortlist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/shortlists/"), "/")
	s.apiDeleteShortlist(w, r, id)
}

// apiAddShortlist shortlists a property for a phone number.
func (s *Server) apiAddShortlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PropertyID  string `json:"propertyId"`
		PhoneNumber string `json:"phoneNumber"`
		Email       string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		apiFail(w, r, err, "decoding shortlist")
		return
	}

	item, err := s.shortlists.Add(r.Context(), req.PropertyID, req.PhoneNumber, req.Email)
	if err != nil {
		apiFail(w, r, err, "adding shortlist")
		return
	}
	apiJSON(w, item, http.StatusCreated)
}

// apiListShortlists lists shortlists. Visitors may list their own by phone
// number; listing everything requires an admin.
func (s *Server) apiListShortlists(w http.ResponseWriter, r *http.Request) {
	opts := shortlist.ListOptions{
		PhoneNumber: strings.TrimSpace(r.URL.Query().Get("phoneNumber")),
		Page:        pageParams(r),
	}
	if opts.PhoneNumber == "" {
		if _, ok := s.requireAdmin(w, r); !ok {
			return
		}
	}

	items, total, err := s.shortlists.List(r.Context(), opts)
	if err != nil {
		apiFail(w, r, err, "listing shortlists")
		return
	}

	apiJSON(w, map[string]interface{}{
		"shortlists": items,
		"pagination": newPagination(opts.Page.Normalize(shortlist.DefaultLimit), total),
	}, http.StatusOK)
}

// apiDeleteShortlist removes one shortlist entry.
func (s *Server) apiDeleteShortlist(w http.ResponseWriter, r *http.Request, id string) {
	if strings.TrimSpace(id) == "" {
		apiError(w, "Shortlist ID is required", http.StatusBadRequest)
		return
	}
	if err := s.shortlists.Delete(r.Context(), id); err != nil {
		apiFail(w, r, err, "deleting shortlist")
		return
	}
	apiJSON(w, map[string]string{"message": "Shortlist deleted successfully"}, http.StatusOK)
}

// apiLogin checks admin credentials, starts a session and issues a token.
func (s *Server) apiLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ip := auth.ClientIP(r)
	if s.limiter.Blocked(ip) {
		apiError(w, "Too many login attempts, try again later", http.StatusTooManyRequests)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		apiFail(w, r, err, "decoding login")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		apiError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	u, err := s.users.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		if s.limiter.RecordFailure(ip) {
			slog.Warn("login rate limit reached", "ip", ip)
		}
		slog.Warn("login failed", "email", req.Email, "ip", ip)
		apiError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		apiFail(w, r, err, "authenticating")
		return
	}
	s.limiter.Reset(ip)

	token, expires, err := s.tokens.Issue(u)
	if err != nil {
		apiFail(w, r, err, "issuing token")
		return
	}
	if err := s.sessions.Create(w, r, u.Email); err != nil {
		apiFail(w, r, err, "creating session")
		return
	}

	slog.Info("login success", "email", u.Email, "method", "password")
	apiJSON(w, map[string]interface{}{
		"success": true,
		"user": map[string]string{
			"id":    u.ID,
			"email": u.Email,
			"name":  u.Name,
			"role":  u.Role,
		},
		"token":     token,
		"expiresAt": expires.UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// apiLogout ends the cookie session, if any. Bearer tokens simply expire.
func (s *Server) apiLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.sessions.Destroy(w, r); err != nil {
		slog.Warn("destroying session", "err", err)
	}
	apiJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

// stats are the dashboard counters.
type stats struct {
	Properties int64 `json:"properties"`
	Leads      int64 `json:"leads"`
	Shortlists int64 `json:"shortlists"`
}

func (s *Server) loadStats(r *http.Request) (stats, error) {
	var st stats
	var err error
	if st.Properties, err = s.properties.Count(r.Context()); err != nil {
		return st, err
	}
	if st.Leads, err = s.leads.Count(r.Context()); err != nil {
		return st, err
	}
	if st.Shortlists, err = s.shortlists.Count(r.Context()); err != nil {
		return st, err
	}
	return st, nil
}

// apiStats returns record counts.
func (s *Server) apiStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	st, err := s.loadStats(r)
	if err != nil {
		apiFail(w, r, err, "loading stats")
		return
	}
	apiJSON(w, st, http.StatusOK)
}

// handleAPIUpload routes /api/upload.
func (s *Server) handleAPIUpload(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		apiError(w, "Image storage is not configured", http.StatusServiceUnavailable)
		return
	}
	switch r.Method {
	case http.MethodPost:
		s.apiUpload(w, r)
	case http.MethodDelete:
		s.apiDeleteUpload(w, r)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// apiUpload stores one image for a property.
func (s *Server) apiUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.opts.UploadMaxBytes
	tooLarge := fmt.Sprintf("File exceeds the %s limit", humanize.IBytes(uint64(limit)))

	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apiError(w, tooLarge, http.StatusBadRequest)
			return
		}
		apiError(w, "Invalid upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apiError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	propertyID := strings.TrimSpace(r.FormValue("propertyId"))
	if propertyID == "" {
		apiError(w, "Property ID is required", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !storage.IsImage(contentType) {
		apiError(w, "File must be an image", http.StatusBadRequest)
		return
	}
	if header.Size > limit {
		apiError(w, tooLarge, http.StatusBadRequest)
		return
	}

	key := storage.ObjectKey(propertyID, header.Filename, time.Now())
	url, err := s.storage.Put(r.Context(), key, contentType, file, header.Size)
	if err != nil {
		apiFail(w, r, err, "uploading image")
		return
	}

	slog.Info("image uploaded", "key", key, "size", humanize.IBytes(uint64(header.Size)))
	apiJSON(w, map[string]string{"url": url, "key": key}, http.StatusOK)
}

// apiDeleteUpload removes a previously uploaded image by its URL.
func (s *Server) apiDeleteUpload(w http.ResponseWriter, r *http.Request) {
	u := r.URL.Query().Get("url")
	if u == "" {
		apiError(w, "URL is required", http.StatusBadRequest)
		return
	}
	key, ok := s.storage.KeyFromURL(u)
	if !ok {
		apiError(w, "URL is not a stored image", http.StatusBadRequest)
		return
	}
	if err := s.storage.Delete(r.Context(), key); err != nil {
		apiFail(w, r, err, "deleting image")
		return
	}
	apiJSON(w, map[string]bool{"success": true}, http.StatusOK)
}
