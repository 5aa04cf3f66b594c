// Package lead stores buyer and tenant enquiries captured by the guided
// search.
package lead

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adway7103/broker-demo/internal/apperr"
)

var (
	// ErrNotFound is returned when no lead has the requested ID.
	ErrNotFound = apperr.New(apperr.CodeNotFound, "Lead not found")
	// ErrPhoneRequired is returned when a lead has no phone number.
	ErrPhoneRequired = apperr.New(apperr.CodeInvalid, "Phone number is required")
)

// Lead is a prospective client and the preferences they entered.
type Lead struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PhoneNumber  string    `gorm:"type:varchar(32);not null;index" json:"phoneNumber"`
	Email        *string   `json:"email"`
	Name         *string   `json:"name"`
	Budget       *string   `json:"budget"`
	PropertyType *string   `json:"propertyType"`
	Locality     *string   `gorm:"type:text" json:"locality"`
	Furnishing   *string   `json:"furnishing"`
	ListingType  *string   `json:"listingType"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// DisplayName returns the name if given, else the phone number.
func (l *Lead) DisplayName() string {
	if l.Name != nil {
		return *l.Name
	}
	return l.PhoneNumber
}

// normalize trims every field and turns blank optional fields into NULL.
func (l *Lead) normalize() error {
	l.PhoneNumber = strings.TrimSpace(l.PhoneNumber)
	if l.PhoneNumber == "" {
		return ErrPhoneRequired
	}
	for _, f := range []**string{&l.Email, &l.Name, &l.Budget, &l.PropertyType, &l.Locality, &l.Furnishing, &l.ListingType} {
		*f = nilIfBlank(*f)
	}
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

// Value returns the pointed-to string or "".
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
