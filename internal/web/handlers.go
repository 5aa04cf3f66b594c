package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/adway7103/broker-demo/internal/apperr"
	"github.com/adway7103/broker-demo/internal/auth"
	"github.com/adway7103/broker-demo/internal/db"
	"github.com/adway7103/broker-demo/internal/property"
	"github.com/adway7103/broker-demo/internal/search"
)

type homeData struct {
	page
	Latest       []*property.Property
	Total        int64
	ListingTypes []option
}

type listingsData struct {
	page
	Filter        search.Filter
	Properties    []*property.Property
	Pager         pager
	Shortlisted   map[string]bool
	Next          string
	ListingTypes  []option
	PropertyTypes []option
	Localities    []option
	Furnishings   []option
}

type detailData struct {
	page
	Property    *property.Property
	Phone       string
	Shortlisted bool
	Next        string
}

type wizardData struct {
	page
	Wizard        *search.Wizard
	Steps         []string
	Carried       url.Values
	ListingTypes  []option
	Budgets       []option
	PropertyTypes []option
	Localities    []option
	Furnishings   []option
}

// pageError renders the error page for err. Domain errors keep their
// status and message.
func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error, action string) {
	status, msg := http.StatusInternalServerError, "Something went wrong. Please try again."
	if e, ok := apperr.As(err); ok {
		status, msg = e.Code.HTTPStatus(), e.Message
	} else {
		slog.Error(action, "err", err, "path", r.URL.Path)
	}
	s.renderStatus(w, status, "error.html", page{Title: http.StatusText(status), Error: msg})
}

// handleHome renders the landing page with the newest available listings.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.renderStatus(w, http.StatusNotFound, "error.html", page{Title: "Not Found", Error: "Page not found"})
		return
	}

	available := false
	latest, _, err := s.properties.List(r.Context(), property.ListOptions{
		Rented: &available,
		Page:   db.Page{Limit: 6},
	})
	if err != nil {
		s.pageError(w, r, err, "loading latest properties")
		return
	}
	total, err := s.properties.Count(r.Context())
	if err != nil {
		s.pageError(w, r, err, "counting properties")
		return
	}

	s.render(w, "home.html", homeData{
		page:         page{Title: "Find your next home in Mumbai"},
		Latest:       latest,
		Total:        total,
		ListingTypes: listingOptions(""),
	})
}

// handleListings renders the filtered listings page. A phone number in the
// query enables shortlisting.
func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := search.ParseFilter(q)
	if err != nil {
		s.pageError(w, r, err, "parsing filter")
		return
	}

	opts := f.ListOptions()
	props, total, err := s.properties.List(r.Context(), opts)
	if err != nil {
		s.pageError(w, r, err, "listing properties")
		return
	}

	shortlisted := map[string]bool{}
	if f.Phone != "" {
		if shortlisted, err = s.shortlists.PropertyIDs(r.Context(), f.Phone); err != nil {
			s.pageError(w, r, err, "loading shortlists")
			return
		}
	}

	next := f.ListingsURL("")
	s.render(w, "listings.html", listingsData{
		page:        page{Title: "Listings", Notice: q.Get("notice"), Error: q.Get("error")},
		Filter:      f,
		Properties:  props,
		Shortlisted: shortlisted,
		Next:        next,
		Pager: newPager(opts.Page.Normalize(property.DefaultLimit), total, func(n int) string {
			return f.WithPage(n).ListingsURL("")
		}),
		ListingTypes:  listingOptions(f.ListingType),
		PropertyTypes: propertyTypeOptions(f.PropertyTypes),
		Localities:    localityOptions(f.Localities),
		Furnishings:   furnishingOptions(f.Furnishings),
	})
}

// handlePropertyDetail renders /properties/{id}.
func (s *Server) handlePropertyDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/properties/"), "/")
	if id == "" || strings.Contains(id, "/") {
		s.renderStatus(w, http.StatusNotFound, "error.html", page{Title: "Not Found", Error: "Page not found"})
		return
	}

	p, err := s.properties.GetByID(r.Context(), id)
	if err != nil {
		s.pageError(w, r, err, "loading property")
		return
	}

	q := r.URL.Query()
	phone := strings.TrimSpace(q.Get("phone"))
	data := detailData{
		page:     page{Title: p.Title, Notice: q.Get("notice"), Error: q.Get("error")},
		Property: p,
		Phone:    phone,
		Next:     r.URL.RequestURI(),
	}
	if phone != "" {
		ids, err := s.shortlists.PropertyIDs(r.Context(), phone)
		if err != nil {
			s.pageError(w, r, err, "loading shortlists")
			return
		}
		data.Shortlisted = ids[p.ID]
	}
	s.render(w, "detail.html", data)
}

// handleShortlistPost shortlists a property from a listing card or the
// detail page, then returns to the page the form came from.
func (s *Server) handleShortlistPost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	next := safeNext(r.FormValue("next"))
	_, err := s.shortlists.Add(r.Context(), r.FormValue("propertyId"), r.FormValue("phone"), r.FormValue("email"))

	key, msg := "notice", "Added to your shortlist"
	if err != nil {
		e, ok := apperr.As(err)
		if !ok {
			slog.Error("adding shortlist", "err", err)
			e = apperr.New(apperr.CodeInvalid, "Could not shortlist this property")
		}
		key, msg = "error", e.Message
	}
	http.Redirect(w, r, withParam(next, key, msg), http.StatusSeeOther)
}

// safeNext only allows relative redirects within this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/listings"
	}
	return next
}

// withParam sets one query parameter on a relative URL.
func withParam(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Del("notice")
	q.Del("error")
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// handleSearch runs the guided search wizard. State lives entirely in the
// form: each POST restores it, applies the pressed button and re-renders
// the resulting step.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var wz *search.Wizard
	var errMsg string

	switch r.Method {
	case http.MethodGet:
		wz = search.WizardFromValues(r.URL.Query())
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		wz = search.WizardFromValues(r.PostForm)

		switch action := r.PostFormValue("action"); {
		case r.PostForm.Has("pickBudget"):
			wz.SelectBudget(r.PostFormValue("pickBudget"))
		case action == "back":
			wz.Prev()
		case action == "next":
			if !wz.CanProceed() {
				errMsg = stepHint(wz.Step)
				break
			}
			wz.Next()
		case action == "submit":
			if !wz.Last() || !wz.CanProceed() {
				errMsg = stepHint(wz.Step)
				break
			}
			// Hidden fields are client input; recheck every earlier answer.
			if step, ok := wz.Incomplete(); ok {
				wz.Step = step
				errMsg = stepHint(step)
				break
			}
			l := wz.Lead()
			if err := s.leads.Create(r.Context(), l); err != nil {
				if e, ok := apperr.As(err); ok && e.Code == apperr.CodeInvalid {
					errMsg = e.Message
					break
				}
				s.pageError(w, r, err, "creating lead")
				return
			}
			slog.Info("lead captured", "id", l.ID, "listing_type", wz.ListingType)
			http.Redirect(w, r, wz.Filter().ListingsURL(""), http.StatusSeeOther)
			return
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.render(w, "search.html", wizardData{
		page:          page{Title: "Guided search", Error: errMsg},
		Wizard:        wz,
		Steps:         search.Steps,
		Carried:       wz.Carried(),
		ListingTypes:  listingOptions(wz.ListingType),
		Budgets:       budgetOptions(wz.Budgets(), wz.Budget),
		PropertyTypes: propertyTypeOptions(wz.PropertyTypes),
		Localities:    localityOptions(wz.Localities),
		Furnishings:   furnishingOptions(wz.Furnishings),
	})
}

// stepHint explains what a wizard step is missing.
func stepHint(step int) string {
	switch step {
	case search.StepListingType:
		return "Choose whether you want to rent or buy."
	case search.StepBudget:
		return "Pick a budget range or enter a minimum and a maximum in whole rupees, with the minimum not above the maximum."
	case search.StepPropertyTypes:
		return "Select at least one property type."
	case search.StepLocalities:
		return "Select at least one locality."
	case search.StepFurnishing:
		return "Select at least one furnishing option."
	}
	return "Enter your phone number."
}

// adminPage returns page data for an admin template.
func adminPage(r *http.Request, title string) page {
	q := r.URL.Query()
	return page{
		Title:      title,
		AdminEmail: auth.AdminEmail(r.Context()),
		Notice:     q.Get("notice"),
		Error:      q.Get("error"),
	}
}
