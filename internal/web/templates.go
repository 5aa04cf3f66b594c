package web

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/adway7103/broker-demo/internal/db"
	"github.com/adway7103/broker-demo/internal/lead"
	"github.com/adway7103/broker-demo/internal/property"
	"github.com/adway7103/broker-demo/internal/search"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"price":   property.FormatPrice,
		"compact": property.CompactPrice,
		"comma":   humanize.Comma,
		"ago":     func(t time.Time) string { return humanize.Time(t) },
		"date":    func(t time.Time) string { return t.Local().Format("02 Jan 2006") },
		"val":     lead.Value,
		"join":    strings.Join,
		"deref": func(n *int64) int64 {
			if n == nil {
				return 0
			}
			return *n
		},
	}
}

// page is embedded in every template's data.
type page struct {
	Title      string
	AdminEmail string
	Notice     string
	Error      string
}

// option is one choice of a select, radio group or checkbox group.
type option struct {
	Value    string
	Label    string
	Selected bool
}

func listingOptions(selected property.ListingType) []option {
	opts := make([]option, len(property.ListingTypes))
	for i, v := range property.ListingTypes {
		opts[i] = option{string(v), v.Label(), v == selected}
	}
	return opts
}

func propertyTypeOptions(selected []property.PropertyType) []option {
	opts := make([]option, len(property.PropertyTypes))
	for i, v := range property.PropertyTypes {
		opts[i] = option{string(v), string(v), search.Contains(selected, v)}
	}
	return opts
}

func localityOptions(selected []property.Locality) []option {
	all := property.Localities()
	opts := make([]option, len(all))
	for i, v := range all {
		opts[i] = option{string(v), v.Label(), search.Contains(selected, v)}
	}
	return opts
}

func furnishingOptions(selected []property.Furnishing) []option {
	opts := make([]option, len(property.Furnishings))
	for i, v := range property.Furnishings {
		opts[i] = option{string(v), v.Label(), search.Contains(selected, v)}
	}
	return opts
}

func budgetOptions(budgets []search.Budget, selected string) []option {
	opts := make([]option, len(budgets))
	for i, b := range budgets {
		opts[i] = option{b.Label, b.Label, b.Label == selected}
	}
	return opts
}

// pager holds the links of a paginated page.
type pager struct {
	Page    int
	Pages   int
	Total   int64
	PrevURL string
	NextURL string
}

// newPager builds the pagination links for p using link.
func newPager(p db.Page, total int64, link func(page int) string) pager {
	pg := pager{Page: p.Page, Pages: p.Pages(total), Total: total}
	if pg.Page > 1 {
		pg.PrevURL = link(pg.Page - 1)
	}
	if pg.Page < pg.Pages {
		pg.NextURL = link(pg.Page + 1)
	}
	return pg
}

// queryLink returns a link builder that keeps the current query and
// replaces its page.
func queryLink(path string, q url.Values) func(int) string {
	return func(n int) string {
		v := url.Values{}
		for k, vs := range q {
			v[k] = vs
		}
		v.Set("page", strconv.Itoa(n))
		return path + "?" + v.Encode()
	}
}
