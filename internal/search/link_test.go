package search

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adway7103/broker-demo/internal/property"
)

func TestLinkBudget(t *testing.T) {
	b := LinkBudget("₹80,000-₹1,00,000")
	assert.Equal(t, int64(80000), b.Min)
	assert.Equal(t, int64(100000), b.Max)

	top := LinkBudget("₹2,00,000+")
	assert.Equal(t, OpenMax, top.Max)

	unknown := LinkBudget("whatever")
	assert.Equal(t, int64(0), unknown.Min)
	assert.Equal(t, OpenMax, unknown.Max)
}

func TestLinkBuilderBudgetWins(t *testing.T) {
	b := LinkBuilder{
		ListingType: property.ListingRent,
		Localities:  []property.Locality{"ANDHERI_WEST", "JUHU"},
		Budget:      "₹25,000-₹40,000",
		MinPrice:    int64p(1),
		MaxPrice:    int64p(2),
		Search:      "pool",
	}
	assert.Equal(t,
		"http://x/listings?listingType=RENT&locality=ANDHERI_WEST%2CJUHU&minPrice=25000&maxPrice=40000&search=pool",
		b.URL("http://x"))
}

func TestLinkBuilderExplicitBounds(t *testing.T) {
	b := LinkBuilder{MaxPrice: int64p(30000)}
	assert.Equal(t, "/listings?maxPrice=30000", b.URL(""))

	b.Clear()
	assert.Equal(t, "/listings", b.URL(""))
}

func TestLinkBuilderFromValues(t *testing.T) {
	v := url.Values{
		"listingType":  {"BUY"},
		"propertyType": {"2BHK", "3BHK,Villa"},
		"furnishing":   {"UNFURNISHED"},
		"minPrice":     {"100"},
		"search":       {"garden"},
	}
	b, err := LinkBuilderFromValues(v)
	require.NoError(t, err)
	assert.Equal(t, []property.PropertyType{"2BHK", "3BHK", "Villa"}, b.PropertyTypes)
	assert.Equal(t, int64p(100), b.MinPrice)
	assert.Nil(t, b.MaxPrice)

	_, err = LinkBuilderFromValues(url.Values{"maxPrice": {"lots"}})
	assert.Error(t, err)
}
