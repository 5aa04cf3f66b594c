// Package property provides the listing domain model and data access.
package property

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adway7103/broker-demo/internal/apperr"
)

// DefaultCurrency is used when a listing does not name one.
const DefaultCurrency = "INR"

var (
	// ErrNotFound is returned when no property has the requested ID.
	ErrNotFound = apperr.New(apperr.CodeNotFound, "Property not found")
	// ErrDuplicate is returned when a property with the same ID exists.
	ErrDuplicate = apperr.New(apperr.CodeConflict, "Property already exists")
	// ErrValidation matches every validation failure regardless of message.
	ErrValidation = apperr.New(apperr.CodeInvalid, "")
	// ErrMissingFields is returned when a required listing field is empty.
	ErrMissingFields = apperr.New(apperr.CodeInvalid, "Missing required fields")
)

// Property is a listing marked for rent or sale.
type Property struct {
	ID           string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title        string       `gorm:"not null" json:"title"`
	Description  string       `gorm:"type:text;not null" json:"description"`
	Price        int64        `gorm:"not null;index" json:"price"`
	Currency     string       `gorm:"type:varchar(8);not null;default:INR" json:"currency"`
	PropertyType PropertyType `gorm:"type:varchar(32);not null;index" json:"propertyType"`
	ListingType  ListingType  `gorm:"type:varchar(16);not null;index" json:"listingType"`
	Locality     Locality     `gorm:"type:varchar(64);not null;index" json:"locality"`
	City         *string      `json:"city"`
	State        *string      `json:"state"`
	Furnishing   Furnishing   `gorm:"type:varchar(32);not null" json:"furnishing"`
	Images       []string     `gorm:"type:text;serializer:json" json:"images"`
	Videos       []string     `gorm:"type:text;serializer:json" json:"videos"`
	Features     []string     `gorm:"type:text;serializer:json" json:"features"`
	Area         *int64       `json:"area"`
	Bedrooms     *int64       `json:"bedrooms"`
	Bathrooms    *int64       `json:"bathrooms"`
	IsRented     bool         `gorm:"not null;default:false" json:"isRented"`
	CreatedAt    time.Time    `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// AfterFind replaces NULL lists with empty ones so JSON renders [].
func (p *Property) AfterFind(tx *gorm.DB) error {
	p.fillLists()
	return nil
}

func (p *Property) fillLists() {
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Videos == nil {
		p.Videos = []string{}
	}
	if p.Features == nil {
		p.Features = []string{}
	}
}

// LocalityLabel returns the display name of the property's locality.
func (p *Property) LocalityLabel() string {
	return p.Locality.Label()
}

// CoverImage returns the first image URL, or "" when there are none.
func (p *Property) CoverImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Available reports whether the property can still be shortlisted.
func (p *Property) Available() bool {
	return !p.IsRented
}

// Validate checks required fields and enum membership, normalizing the
// locality, listing type, property type and furnishing to their canonical
// values and defaulting the currency.
func (p *Property) Validate() error {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)

	if p.Title == "" || p.Description == "" || p.Price <= 0 ||
		p.PropertyType == "" || p.ListingType == "" || p.Locality == "" || p.Furnishing == "" {
		return ErrMissingFields
	}

	lt, ok := ParseListingType(string(p.ListingType))
	if !ok {
		return apperr.Invalid("invalid listingType: %s", p.ListingType)
	}
	p.ListingType = lt

	pt, ok := ParsePropertyType(string(p.PropertyType))
	if !ok {
		return apperr.Invalid("invalid propertyType: %s", p.PropertyType)
	}
	p.PropertyType = pt

	loc, ok := ParseLocality(string(p.Locality))
	if !ok {
		return apperr.Invalid("invalid locality: %s", p.Locality)
	}
	p.Locality = loc

	f, ok := ParseFurnishing(string(p.Furnishing))
	if !ok {
		return apperr.Invalid("invalid furnishing: %s", p.Furnishing)
	}
	p.Furnishing = f

	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	p.Currency = strings.ToUpper(p.Currency)

	for _, n := range []*int64{p.Area, p.Bedrooms, p.Bathrooms} {
		if n != nil && *n < 0 {
			return apperr.Invalid("area, bedrooms and bathrooms must not be negative")
		}
	}

	p.City = nilIfBlank(p.City)
	p.State = nilIfBlank(p.State)
	p.fillLists()

	return nil
}

func nilIfBlank(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
