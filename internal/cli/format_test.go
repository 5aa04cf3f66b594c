package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/adway7103/broker-demo/internal/client"
	"github.com/adway7103/broker-demo/internal/lead"
	"github.com/adway7103/broker-demo/internal/property"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world!", 8, "hello..."},
		{"multibyte", "₹₹₹₹₹₹", 5, "₹₹..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := truncate(tt.input, tt.max)
			if result != tt.expected {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.max, result, tt.expected)
			}
		})
	}
}

func TestPrintPropertyTable(t *testing.T) {
	props := []*property.Property{
		{ID: "p1", Title: "Sea view 2BHK", Price: 85000, PropertyType: "2BHK", Locality: "BANDRA_WEST"},
		{ID: "p2", Title: "Worli penthouse", Price: 12_50_00_000, PropertyType: "Penthouse", Locality: "WORLI", IsRented: true},
	}

	var out bytes.Buffer
	if err := printPropertyTable(&out, props, client.Pagination{Page: 1, Pages: 1, Total: 2}); err != nil {
		t.Fatalf("print: %v", err)
	}
	got := out.String()
	for _, want := range []string{"₹85 K", "₹12.5 Cr", "Bandra West", "rented", "Total: 2 properties"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestPrintPropertyTableEmpty(t *testing.T) {
	var out bytes.Buffer
	if err := printPropertyTable(&out, nil, client.Pagination{}); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(out.String(), "No properties found.") {
		t.Errorf("output = %q", out.String())
	}
}

func TestPrintLeadTable(t *testing.T) {
	name := "Asha"
	leads := []*lead.Lead{{PhoneNumber: "9876543210", Name: &name, CreatedAt: time.Now()}}

	var out bytes.Buffer
	if err := printLeadTable(&out, leads, client.Pagination{Page: 2, Pages: 3, Total: 25}); err != nil {
		t.Fatalf("print: %v", err)
	}
	got := out.String()
	for _, want := range []string{"9876543210", "Asha", "Page 2 of 3 (25 leads)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestPrintPropertySummary(t *testing.T) {
	area := int64(1250)
	p := &property.Property{
		Title: "Family 3BHK", Price: 85000, Currency: "INR", ListingType: property.ListingRent,
		Locality: "ANDHERI_WEST", Furnishing: property.SemiFurnished, Area: &area,
		Features: []string{"Lift", "Balcony"}, CreatedAt: time.Now(),
	}

	var out bytes.Buffer
	printPropertySummary(&out, p)
	got := out.String()
	for _, want := range []string{"₹85,000", "For Rent", "Andheri West", "Semi Furnished", "1,250 sq ft", "Lift, Balcony", "available"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
