// Package search turns listing filters into query strings and back, and
// drives the guided search wizard and the admin smart link builder.
package search

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/adway7103/broker-demo/internal/apperr"
	"github.com/adway7103/broker-demo/internal/db"
	"github.com/adway7103/broker-demo/internal/property"
)

// Filter is the set of listing filters shared by the listings page, the
// properties API and generated links.
type Filter struct {
	ListingType   property.ListingType
	PropertyTypes []property.PropertyType
	Localities    []property.Locality
	Furnishings   []property.Furnishing
	MinPrice      *int64
	MaxPrice      *int64
	Search        string
	// Phone identifies the visitor who followed a wizard link so the
	// listings page can offer shortlisting.
	Phone string
	Page  int
	Limit int
}

// ParseFilter reads a filter from query parameters. List parameters may be
// comma separated or repeated. Locality labels are accepted and normalized to values.
// Unknown enum values are kept as-is so they match nothing.
func ParseFilter(q url.Values) (Filter, error) {
	f := Filter{
		ListingType: property.ListingType(strings.TrimSpace(q.Get("listingType"))),
		Search:      strings.TrimSpace(q.Get("search")),
		Phone:       strings.TrimSpace(q.Get("phone")),
	}
	if lt, ok := property.ParseListingType(string(f.ListingType)); ok {
		f.ListingType = lt
	}

	for _, v := range listParam(q, "propertyType") {
		if pt, ok := property.ParsePropertyType(v); ok {
			v = string(pt)
		}
		f.PropertyTypes = append(f.PropertyTypes, property.PropertyType(v))
	}
	for _, v := range listParam(q, "locality") {
		if l, ok := property.ParseLocality(v); ok {
			v = string(l)
		}
		f.Localities = append(f.Localities, property.Locality(v))
	}
	for _, v := range listParam(q, "furnishing") {
		if fu, ok := property.ParseFurnishing(v); ok {
			v = string(fu)
		}
		f.Furnishings = append(f.Furnishings, property.Furnishing(v))
	}

	var err error
	if f.MinPrice, err = parseAmount(q, "minPrice"); err != nil {
		return Filter{}, err
	}
	if f.MaxPrice, err = parseAmount(q, "maxPrice"); err != nil {
		return Filter{}, err
	}
	if f.Page, err = parseCount(q, "page"); err != nil {
		return Filter{}, err
	}
	if f.Limit, err = parseCount(q, "limit"); err != nil {
		return Filter{}, err
	}

	return f, nil
}

// listParam reads a list parameter given either repeated or comma
// separated.
func listParam(q url.Values, key string) []string {
	return splitList(strings.Join(q[key], ","))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseAmount(q url.Values, key string) (*int64, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return nil, apperr.Invalid("%s must be a non-negative integer", key)
	}
	return &n, nil
}

func parseCount(q url.Values, key string) (int, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, apperr.Invalid("%s must be a non-negative integer", key)
	}
	return n, nil
}

// param is one encoded query parameter. Filters encode in a fixed order so
// generated links are stable.
type param struct{ key, value string }

func (f Filter) params() []param {
	var ps []param
	add := func(k, v string) {
		if v != "" {
			ps = append(ps, param{k, v})
		}
	}
	add("listingType", string(f.ListingType))
	add("propertyType", joinWith(f.PropertyTypes, ","))
	add("locality", joinWith(f.Localities, ","))
	add("furnishing", joinWith(f.Furnishings, ","))
	if f.MinPrice != nil {
		add("minPrice", strconv.FormatInt(*f.MinPrice, 10))
	}
	if f.MaxPrice != nil {
		add("maxPrice", strconv.FormatInt(*f.MaxPrice, 10))
	}
	add("search", f.Search)
	add("phone", f.Phone)
	if f.Page > 1 {
		add("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		add("limit", strconv.Itoa(f.Limit))
	}
	return ps
}

// Values returns the filter as query parameters, omitting empty ones.
func (f Filter) Values() url.Values {
	v := url.Values{}
	for _, p := range f.params() {
		v.Set(p.key, p.value)
	}
	return v
}

// Query encodes the filter as a query string without the leading "?".
func (f Filter) Query() string {
	var b strings.Builder
	for i, p := range f.params() {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}

// ListingsURL returns the public listings page URL for the filter.
func (f Filter) ListingsURL(base string) string {
	u := strings.TrimRight(base, "/") + "/listings"
	if q := f.Query(); q != "" {
		u += "?" + q
	}
	return u
}

// WithPage returns a copy of the filter pointing at another page.
func (f Filter) WithPage(page int) Filter {
	f.Page = page
	return f
}

// Empty reports whether the filter selects every listing.
func (f Filter) Empty() bool {
	return f.ListingType == "" && len(f.PropertyTypes) == 0 && len(f.Localities) == 0 &&
		len(f.Furnishings) == 0 && f.MinPrice == nil && f.MaxPrice == nil && f.Search == ""
}

// ListOptions converts the filter into a repository query.
func (f Filter) ListOptions() property.ListOptions {
	return property.ListOptions{
		ListingType:   f.ListingType,
		PropertyTypes: f.PropertyTypes,
		Localities:    f.Localities,
		Furnishings:   f.Furnishings,
		MinPrice:      f.MinPrice,
		MaxPrice:      f.MaxPrice,
		Search:        f.Search,
		Page:          db.Page{Page: f.Page, Limit: f.Limit},
	}
}

// String summarizes the filter for logs and CLI output.
func (f Filter) String() string {
	if f.Empty() {
		return "all listings"
	}
	return fmt.Sprintf("listings?%s", f.Query())
}

// Toggle adds v to list when absent and removes it when present, keeping
// the order of the remaining items.
func Toggle[T comparable](list []T, v T) []T {
	out := make([]T, 0, len(list)+1)
	found := false
	for _, item := range list {
		if item == v {
			found = true
			continue
		}
		out = append(out, item)
	}
	if !found {
		out = append(out, v)
	}
	return out
}

// Contains reports whether list holds v.
func Contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
