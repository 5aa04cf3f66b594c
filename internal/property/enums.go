package property

import "strings"

// ListingType says whether a property is offered for rent or for sale.
type ListingType string

const (
	ListingRent ListingType = "RENT"
	ListingBuy  ListingType = "BUY"
)

// ListingTypes lists the listing types in display order.
var ListingTypes = []ListingType{ListingRent, ListingBuy}

// Label returns the display label.
func (t ListingType) Label() string {
	switch t {
	case ListingRent:
		return "For Rent"
	case ListingBuy:
		return "For Sale"
	}
	return string(t)
}

// Valid reports whether t is a known listing type.
func (t ListingType) Valid() bool {
	return t == ListingRent || t == ListingBuy
}

// Furnishing describes how furnished a property is.
type Furnishing string

const (
	FullyFurnished Furnishing = "FULLY_FURNISHED"
	SemiFurnished  Furnishing = "SEMI_FURNISHED"
	Unfurnished    Furnishing = "UNFURNISHED"
)

// Furnishings lists the furnishing options in display order.
var Furnishings = []Furnishing{FullyFurnished, SemiFurnished, Unfurnished}

// Label returns the display label.
func (f Furnishing) Label() string {
	switch f {
	case FullyFurnished:
		return "Fully Furnished"
	case SemiFurnished:
		return "Semi Furnished"
	case Unfurnished:
		return "Unfurnished"
	}
	return string(f)
}

// Valid reports whether f is a known furnishing option.
func (f Furnishing) Valid() bool {
	for _, v := range Furnishings {
		if f == v {
			return true
		}
	}
	return false
}

// PropertyType is the unit configuration (1BHK, Villa, ...).
type PropertyType string

// PropertyTypes lists the property types in display order.
var PropertyTypes = []PropertyType{
	"1BHK", "2BHK", "3BHK", "4BHK", "5BHK", "Studio", "Penthouse", "Villa", "Plot",
}

// Valid reports whether t is a known property type.
func (t PropertyType) Valid() bool {
	for _, v := range PropertyTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ParsePropertyType matches s against the known types, ignoring case.
func ParsePropertyType(s string) (PropertyType, bool) {
	s = strings.TrimSpace(s)
	for _, v := range PropertyTypes {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	return "", false
}

// ParseListingType matches s against the known listing types, ignoring case.
func ParseListingType(s string) (ListingType, bool) {
	t := ListingType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// ParseFurnishing matches s against the furnishing values or labels,
// ignoring case.
func ParseFurnishing(s string) (Furnishing, bool) {
	s = strings.TrimSpace(s)
	for _, v := range Furnishings {
		if strings.EqualFold(s, string(v)) || strings.EqualFold(s, v.Label()) {
			return v, true
		}
	}
	return "", false
}
