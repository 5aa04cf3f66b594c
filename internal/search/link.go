package search

import (
	"net/url"

	"github.com/adway7103/broker-demo/internal/property"
)

// LinkBuilder collects the choices of the admin smart link tool.
type LinkBuilder struct {
	ListingType   property.ListingType
	PropertyTypes []property.PropertyType
	Localities    []property.Locality
	Furnishings   []property.Furnishing
	// Budget is a LinkBudgets label. It takes precedence over MinPrice and
	// MaxPrice.
	Budget   string
	MinPrice *int64
	MaxPrice *int64
	Search   string
}

// Filter returns the listing filter the link encodes.
func (b LinkBuilder) Filter() Filter {
	f := Filter{
		ListingType:   b.ListingType,
		PropertyTypes: b.PropertyTypes,
		Localities:    b.Localities,
		Furnishings:   b.Furnishings,
		Search:        b.Search,
	}
	if b.Budget != "" {
		r := LinkBudget(b.Budget)
		f.MinPrice, f.MaxPrice = &r.Min, &r.Max
	} else {
		f.MinPrice, f.MaxPrice = b.MinPrice, b.MaxPrice
	}
	return f
}

// URL returns the shareable listings link under base.
func (b LinkBuilder) URL(base string) string {
	return b.Filter().ListingsURL(base)
}

// Clear resets every choice.
func (b *LinkBuilder) Clear() {
	*b = LinkBuilder{}
}

// LinkBuilderFromValues restores builder state from form values. Lists may
// be repeated fields or comma separated.
func LinkBuilderFromValues(v url.Values) (LinkBuilder, error) {
	b := LinkBuilder{
		ListingType: property.ListingType(v.Get("listingType")),
		Budget:      v.Get("budget"),
		Search:      v.Get("search"),
	}
	for _, s := range listParam(v, "propertyType") {
		b.PropertyTypes = append(b.PropertyTypes, property.PropertyType(s))
	}
	for _, s := range listParam(v, "locality") {
		b.Localities = append(b.Localities, property.Locality(s))
	}
	for _, s := range listParam(v, "furnishing") {
		b.Furnishings = append(b.Furnishings, property.Furnishing(s))
	}

	var err error
	if b.MinPrice, err = parseAmount(v, "minPrice"); err != nil {
		return LinkBuilder{}, err
	}
	if b.MaxPrice, err = parseAmount(v, "maxPrice"); err != nil {
		return LinkBuilder{}, err
	}
	return b, nil
}
