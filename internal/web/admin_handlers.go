package web

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adway7103/broker-demo/internal/apperr"
	"github.com/adway7103/broker-demo/internal/auth"
	"github.com/adway7103/broker-demo/internal/db"
	"github.com/adway7103/broker-demo/internal/lead"
	"github.com/adway7103/broker-demo/internal/property"
	"github.com/adway7103/broker-demo/internal/search"
	"github.com/adway7103/broker-demo/internal/shortlist"
	"github.com/adway7103/broker-demo/internal/storage"
)

type dashboardData struct {
	page
	Stats       stats
	RecentLeads []*lead.Lead
	RecentItems []*shortlist.Shortlist
}

// handleDashboard renders /admin.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	st, err := s.loadStats(r)
	if err != nil {
		s.pageError(w, r, err, "loading stats")
		return
	}
	recent := db.Page{Limit: 5}
	leads, _, err := s.leads.List(r.Context(), lead.ListOptions{Page: recent})
	if err != nil {
		s.pageError(w, r, err, "loading leads")
		return
	}
	items, _, err := s.shortlists.List(r.Context(), shortlist.ListOptions{Page: recent})
	if err != nil {
		s.pageError(w, r, err, "loading shortlists")
		return
	}

	s.render(w, "dashboard.html", dashboardData{
		page:        adminPage(r, "Dashboard"),
		Stats:       st,
		RecentLeads: leads,
		RecentItems: items,
	})
}

type adminPropertiesData struct {
	page
	Properties []*property.Property
	Pager      pager
	Search     string
	Rented     string
}

// handleAdminProperties renders the property management table.
func (s *Server) handleAdminProperties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := property.ListOptions{Search: q.Get("search"), Page: pageParams(r)}
	switch q.Get("rented") {
	case "true":
		v := true
		opts.Rented = &v
	case "false":
		v := false
		opts.Rented = &v
	}

	props, total, err := s.properties.List(r.Context(), opts)
	if err != nil {
		s.pageError(w, r, err, "listing properties")
		return
	}

	s.render(w, "admin_properties.html", adminPropertiesData{
		page:       adminPage(r, "Properties"),
		Properties: props,
		Pager:      newPager(opts.Page.Normalize(property.DefaultLimit), total, queryLink("/admin/properties", q)),
		Search:     q.Get("search"),
		Rented:     q.Get("rented"),
	})
}

// handleAdminPropertyRoute routes /admin/properties/new and
// /admin/properties/{id}/{edit,rent,delete}.
func (s *Server) handleAdminPropertyRoute(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/admin/properties/"), "/")
	if path == "new" {
		s.handlePropertyForm(w, r, "")
		return
	}

	id, action, _ := strings.Cut(path, "/")
	switch {
	case id == "":
		http.NotFound(w, r)
	case action == "edit":
		s.handlePropertyForm(w, r, id)
	case action == "rent" && r.Method == http.MethodPost:
		s.handleToggleRented(w, r, id)
	case action == "delete" && r.Method == http.MethodPost:
		s.handleAdminPropertyDelete(w, r, id)
	case action == "rent" || action == "delete":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

// handleToggleRented flips a property between rented and available.
func (s *Server) handleToggleRented(w http.ResponseWriter, r *http.Request, id string) {
	p, err := s.properties.GetByID(r.Context(), id)
	if err != nil {
		s.pageError(w, r, err, "loading property")
		return
	}
	if _, err := s.properties.SetRented(r.Context(), id, !p.IsRented); err != nil {
		s.pageError(w, r, err, "updating rented status")
		return
	}

	msg := "Marked as rented"
	if p.IsRented {
		msg = "Marked as available"
	}
	http.Redirect(w, r, withParam(safeNext(r.FormValue("next")), "notice", msg), http.StatusSeeOther)
}

// handleAdminPropertyDelete deletes a property and its stored images.
func (s *Server) handleAdminPropertyDelete(w http.ResponseWriter, r *http.Request, id string) {
	p, err := s.properties.Delete(r.Context(), id)
	if err != nil {
		s.pageError(w, r, err, "deleting property")
		return
	}
	s.removeImages(r, p)

	slog.Info("property deleted", "id", id, "admin", auth.AdminEmail(r.Context()))
	http.Redirect(w, r, withParam("/admin/properties", "notice", "Deleted "+p.Title), http.StatusSeeOther)
}

// propertyForm holds the raw property form fields so a rejected submission
// can be shown again as typed.
type propertyForm struct {
	ID           string
	Title        string
	Description  string
	Price        string
	Currency     string
	PropertyType string
	ListingType  string
	Locality     string
	City         string
	State        string
	Furnishing   string
	Images       string
	Videos       string
	Features     string
	Area         string
	Bedrooms     string
	Bathrooms    string
	IsRented     bool
}

type propertyFormData struct {
	page
	Form          propertyForm
	Editing       bool
	UploadEnabled bool
	ListingTypes  []option
	PropertyTypes []option
	Localities    []option
	Furnishings   []option
}

func formFromProperty(p *property.Property) propertyForm {
	count := func(n *int64) string {
		if n == nil {
			return ""
		}
		return strconv.FormatInt(*n, 10)
	}
	return propertyForm{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Price:        strconv.FormatInt(p.Price, 10),
		Currency:     p.Currency,
		PropertyType: string(p.PropertyType),
		ListingType:  string(p.ListingType),
		Locality:     string(p.Locality),
		City:         lead.Value(p.City),
		State:        lead.Value(p.State),
		Furnishing:   string(p.Furnishing),
		Images:       strings.Join(p.Images, "\n"),
		Videos:       strings.Join(p.Videos, "\n"),
		Features:     strings.Join(p.Features, "\n"),
		Area:         count(p.Area),
		Bedrooms:     count(p.Bedrooms),
		Bathrooms:    count(p.Bathrooms),
		IsRented:     p.IsRented,
	}
}

func readPropertyForm(r *http.Request) propertyForm {
	return propertyForm{
		ID:           strings.TrimSpace(r.FormValue("id")),
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		Price:        r.FormValue("price"),
		Currency:     r.FormValue("currency"),
		PropertyType: r.FormValue("propertyType"),
		ListingType:  r.FormValue("listingType"),
		Locality:     r.FormValue("locality"),
		City:         r.FormValue("city"),
		State:        r.FormValue("state"),
		Furnishing:   r.FormValue("furnishing"),
		Images:       r.FormValue("images"),
		Videos:       r.FormValue("videos"),
		Features:     r.FormValue("features"),
		Area:         r.FormValue("area"),
		Bedrooms:     r.FormValue("bedrooms"),
		Bathrooms:    r.FormValue("bathrooms"),
		IsRented:     r.FormValue("isRented") != "",
	}
}

// formNumber parses an optional whole number, allowing digit grouping
// commas.
func formNumber(field, v string) (property.Number, error) {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, apperr.Invalid("%s must be a whole number", field)
	}
	return property.Number(n), nil
}

func lines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// input converts the form into a property input.
func (f propertyForm) input() (property.Input, error) {
	in := property.Input{
		Title:        f.Title,
		Description:  f.Description,
		Currency:     f.Currency,
		PropertyType: property.PropertyType(f.PropertyType),
		ListingType:  property.ListingType(f.ListingType),
		Locality:     property.Locality(f.Locality),
		City:         optionalString(f.City),
		State:        optionalString(f.State),
		Furnishing:   property.Furnishing(f.Furnishing),
		Images:       lines(f.Images),
		Videos:       lines(f.Videos),
		Features:     lines(f.Features),
	}
	var err error
	if in.Price, err = formNumber("price", f.Price); err != nil {
		return in, err
	}
	if in.Area, err = formNumber("area", f.Area); err != nil {
		return in, err
	}
	if in.Bedrooms, err = formNumber("bedrooms", f.Bedrooms); err != nil {
		return in, err
	}
	if in.Bathrooms, err = formNumber("bathrooms", f.Bathrooms); err != nil {
		return in, err
	}
	return in, nil
}

// handlePropertyForm creates (id == "") or edits a property. The form is
// multipart so images can be uploaded alongside the fields.
func (s *Server) handlePropertyForm(w http.ResponseWriter, r *http.Request, id string) {
	data := propertyFormData{
		page:          adminPage(r, "New property"),
		Editing:       id != "",
		UploadEnabled: s.storage != nil,
	}

	switch r.Method {
	case http.MethodGet:
		if id == "" {
			data.Form = propertyForm{ID: uuid.NewString(), Currency: "INR"}
		} else {
			p, err := s.properties.GetByID(r.Context(), id)
			if err != nil {
				s.pageError(w, r, err, "loading property")
				return
			}
			data.Title = "Edit " + p.Title
			data.Form = formFromProperty(p)
		}
		s.renderPropertyForm(w, http.StatusOK, data)
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 10*s.opts.UploadMaxBytes)
	if err := r.ParseMultipartForm(s.opts.UploadMaxBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		data.Error = "Upload too large or malformed"
		s.renderPropertyForm(w, http.StatusBadRequest, data)
		return
	}

	data.Form = readPropertyForm(r)
	if id != "" {
		data.Form.ID = id
		data.Title = "Edit property"
	} else if _, err := uuid.Parse(data.Form.ID); err != nil {
		data.Form.ID = uuid.NewString()
	}

	p, err := s.saveProperty(r, data.Form, id == "")
	if id == "" && errors.Is(err, property.ErrDuplicate) {
		// A resubmitted new form: the first post already stored it.
		http.Redirect(w, r, withParam("/admin/properties/"+data.Form.ID+"/edit", "notice", "Property already saved"), http.StatusSeeOther)
		return
	}
	if err != nil {
		if e, ok := apperr.As(err); ok {
			data.Error = e.Message
			s.renderPropertyForm(w, e.Code.HTTPStatus(), data)
			return
		}
		s.pageError(w, r, err, "saving property")
		return
	}

	verb := "Updated"
	if id == "" {
		verb = "Created"
		slog.Info("property created", "id", p.ID, "admin", auth.AdminEmail(r.Context()))
	}
	http.Redirect(w, r, withParam("/admin/properties", "notice", verb+" "+p.Title), http.StatusSeeOther)
}

func (s *Server) renderPropertyForm(w http.ResponseWriter, status int, data propertyFormData) {
	f := data.Form
	data.ListingTypes = listingOptions(property.ListingType(f.ListingType))
	data.PropertyTypes = propertyTypeOptions([]property.PropertyType{property.PropertyType(f.PropertyType)})
	data.Localities = localityOptions([]property.Locality{property.Locality(f.Locality)})
	data.Furnishings = furnishingOptions([]property.Furnishing{property.Furnishing(f.Furnishing)})
	s.renderStatus(w, status, "property_form.html", data)
}

// saveProperty validates the form, uploads attached images and stores the
// property.
func (s *Server) saveProperty(r *http.Request, f propertyForm, create bool) (*property.Property, error) {
	in, err := f.input()
	if err != nil {
		return nil, err
	}
	if create {
		in.IsRented = &f.IsRented
	}
	if err := in.Property().Validate(); err != nil {
		return nil, err
	}
	if create {
		_, err := s.properties.GetByID(r.Context(), f.ID)
		if err == nil {
			return nil, property.ErrDuplicate
		}
		if !errors.Is(err, property.ErrNotFound) {
			return nil, err
		}
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["upload"] {
			if fh.Filename != "" {
				files = append(files, fh)
			}
		}
	}
	if len(files) > 0 && s.storage == nil {
		return nil, apperr.Invalid("Image storage is not configured")
	}
	for _, fh := range files {
		u, err := s.storeFormImage(r, f.ID, fh)
		if err != nil {
			return nil, err
		}
		in.Images = append(in.Images, u)
	}

	if !create {
		return s.properties.Update(r.Context(), f.ID, in)
	}
	p := in.Property()
	p.ID = f.ID
	if err := s.properties.Create(r.Context(), p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Server) storeFormImage(r *http.Request, propertyID string, fh *multipart.FileHeader) (string, error) {
	contentType := fh.Header.Get("Content-Type")
	if !storage.IsImage(contentType) {
		return "", apperr.Invalid("%s is not an image", fh.Filename)
	}
	if fh.Size > s.opts.UploadMaxBytes {
		return "", apperr.Invalid("%s is too large", fh.Filename)
	}

	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload: %w", err)
	}
	defer file.Close()

	key := storage.ObjectKey(propertyID, fh.Filename, time.Now())
	u, err := s.storage.Put(r.Context(), key, contentType, file, fh.Size)
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", fh.Filename, err)
	}
	return u, nil
}

type adminLeadsData struct {
	page
	Leads   []*lead.Lead
	Pager   pager
	Filters lead.ListOptions
}

// handleAdminLeads renders the leads table with its filters.
func (s *Server) handleAdminLeads(w http.ResponseWriter, r *http.Request) {
	opts := leadListOptions(r)
	leads, total, err := s.leads.List(r.Context(), opts)
	if err != nil {
		s.pageError(w, r, err, "listing leads")
		return
	}

	s.render(w, "admin_leads.html", adminLeadsData{
		page:    adminPage(r, "Leads"),
		Leads:   leads,
		Pager:   newPager(opts.Page.Normalize(lead.DefaultLimit), total, queryLink("/admin/leads", r.URL.Query())),
		Filters: opts,
	})
}

// handleAdminLeadDelete handles POST /admin/leads/{id}/delete.
func (s *Server) handleAdminLeadDelete(w http.ResponseWriter, r *http.Request) {
	id, action, _ := strings.Cut(strings.Trim(strings.TrimPrefix(r.URL.Path, "/admin/leads/"), "/"), "/")
	if id == "" || action != "delete" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.leads.Delete(r.Context(), id); err != nil {
		s.pageError(w, r, err, "deleting lead")
		return
	}
	http.Redirect(w, r, withParam("/admin/leads", "notice", "Lead deleted"), http.StatusSeeOther)
}

type adminShortlistsData struct {
	page
	Shortlists []*shortlist.Shortlist
	Pager      pager
	Phone      string
}

// handleAdminShortlists renders the shortlist table, optionally for one
// phone number.
func (s *Server) handleAdminShortlists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := shortlist.ListOptions{PhoneNumber: q.Get("phone"), Page: pageParams(r)}
	items, total, err := s.shortlists.List(r.Context(), opts)
	if err != nil {
		s.pageError(w, r, err, "listing shortlists")
		return
	}

	s.render(w, "admin_shortlists.html", adminShortlistsData{
		page:       adminPage(r, "Shortlists"),
		Shortlists: items,
		Pager:      newPager(opts.Page.Normalize(shortlist.DefaultLimit), total, queryLink("/admin/shortlists", q)),
		Phone:      q.Get("phone"),
	})
}

// handleAdminShortlistDelete handles POST /admin/shortlists/{id}/delete.
func (s *Server) handleAdminShortlistDelete(w http.ResponseWriter, r *http.Request) {
	id, action, _ := strings.Cut(strings.Trim(strings.TrimPrefix(r.URL.Path, "/admin/shortlists/"), "/"), "/")
	if id == "" || action != "delete" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.shortlists.Delete(r.Context(), id); err != nil {
		s.pageError(w, r, err, "deleting shortlist")
		return
	}
	http.Redirect(w, r, withParam("/admin/shortlists", "notice", "Shortlist removed"), http.StatusSeeOther)
}

type linkData struct {
	page
	Builder       search.LinkBuilder
	URL           string
	Matches       int64
	MinPrice      string
	MaxPrice      string
	ListingTypes  []option
	PropertyTypes []option
	Localities    []option
	Furnishings   []option
	Budgets       []option
}

// handleLinkBuilder renders the smart link tool. The builder's state is
// the query string, so the form submits to itself with GET.
func (s *Server) handleLinkBuilder(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := linkData{page: adminPage(r, "Smart link builder")}

	b, err := search.LinkBuilderFromValues(q)
	if err != nil {
		if e, ok := apperr.As(err); ok {
			data.Error = e.Message
		}
		b = search.LinkBuilder{}
	}
	if q.Has("clear") {
		b.Clear()
	}

	if f := b.Filter(); !f.Empty() {
		data.URL = b.URL(s.opts.BaseURL)
		opts := f.ListOptions()
		opts.Page = db.Page{Limit: 1}
		if _, data.Matches, err = s.properties.List(r.Context(), opts); err != nil {
			s.pageError(w, r, err, "counting matches")
			return
		}
	}

	if b.Budget == "" {
		if b.MinPrice != nil {
			data.MinPrice = strconv.FormatInt(*b.MinPrice, 10)
		}
		if b.MaxPrice != nil {
			data.MaxPrice = strconv.FormatInt(*b.MaxPrice, 10)
		}
	}
	data.Builder = b
	data.ListingTypes = listingOptions(b.ListingType)
	data.PropertyTypes = propertyTypeOptions(b.PropertyTypes)
	data.Localities = localityOptions(b.Localities)
	data.Furnishings = furnishingOptions(b.Furnishings)
	data.Budgets = budgetOptions(search.LinkBudgets, b.Budget)
	s.render(w, "links.html", data)
}

type settingsData struct {
	page
	Passkeys []auth.StoredCredential
	Admins   []*auth.User
}

// handleSettings renders passkey and account management, and handles the
// password change and new admin forms.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	email := auth.AdminEmail(r.Context())

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		key, msg := "notice", ""
		var err error
		switch r.FormValue("action") {
		case "password":
			msg, err = s.changePassword(r, email)
		case "addAdmin":
			msg, err = s.addAdmin(r)
		default:
			err = apperr.Invalid("Unknown action")
		}
		if err != nil {
			e, ok := apperr.As(err)
			if !ok {
				s.pageError(w, r, err, "updating settings")
				return
			}
			key, msg = "error", e.Message
		}
		http.Redirect(w, r, withParam("/admin/settings", key, msg), http.StatusSeeOther)
		return
	}

	passkeys, err := s.passkeys.ListByEmail(r.Context(), email)
	if err != nil {
		s.pageError(w, r, err, "loading passkeys")
		return
	}
	admins, err := s.users.List(r.Context())
	if err != nil {
		s.pageError(w, r, err, "loading admins")
		return
	}

	s.render(w, "settings.html", settingsData{
		page:     adminPage(r, "Settings"),
		Passkeys: passkeys,
		Admins:   admins,
	})
}

func (s *Server) changePassword(r *http.Request, email string) (string, error) {
	if _, err := s.users.Authenticate(r.Context(), email, r.FormValue("current")); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return "", apperr.Invalid("Current password is incorrect")
		}
		return "", err
	}
	next := r.FormValue("password")
	if len(next) < 8 {
		return "", apperr.Invalid("New password must be at least 8 characters")
	}
	if next != r.FormValue("confirm") {
		return "", apperr.Invalid("Passwords do not match")
	}
	if err := s.users.SetPassword(r.Context(), email, next); err != nil {
		return "", err
	}
	slog.Info("password changed", "email", email)
	return "Password updated", nil
}

func (s *Server) addAdmin(r *http.Request) (string, error) {
	password := r.FormValue("password")
	if len(password) < 8 {
		return "", apperr.Invalid("Password must be at least 8 characters")
	}
	u, err := s.users.Create(r.Context(), r.FormValue("email"), password, r.FormValue("name"), auth.RoleAdmin)
	if err != nil {
		return "", err
	}
	slog.Info("admin created", "email", u.Email, "by", auth.AdminEmail(r.Context()))
	return "Added " + u.Email, nil
}

// handlePasskeyDelete removes one of the signed-in admin's passkeys.
func (s *Server) handlePasskeyDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	id := r.FormValue("id")
	if id == "" {
		http.Error(w, "Missing credential ID", http.StatusBadRequest)
		return
	}

	if err := s.passkeys.Delete(r.Context(), id, auth.AdminEmail(r.Context())); err != nil {
		s.pageError(w, r, err, "deleting passkey")
		return
	}
	http.Redirect(w, r, withParam("/admin/settings", "notice", "Passkey removed"), http.StatusSeeOther)
}
