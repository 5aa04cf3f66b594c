// Package shortlist records the properties a visitor has saved, keyed by
// their phone number.
package shortlist

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adway7103/broker-demo/internal/apperr"
	"github.com/adway7103/broker-demo/internal/property"
)

var (
	// ErrNotFound is returned when no shortlist has the requested ID.
	ErrNotFound = apperr.New(apperr.CodeNotFound, "Shortlist not found")
	// ErrDuplicate is returned when the phone number already shortlisted
	// the property.
	ErrDuplicate = apperr.New(apperr.CodeConflict, "Property already shortlisted")
	// ErrPropertyRented is returned when shortlisting a rented property.
	ErrPropertyRented = apperr.New(apperr.CodeConflict, "Property is already rented")
	// ErrMissingFields is returned when the property or phone is empty.
	ErrMissingFields = apperr.New(apperr.CodeInvalid, "Property ID and phone number are required")
)

// Shortlist links a phone number to a saved property.
type Shortlist struct {
	ID          string             `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PropertyID  string             `gorm:"type:varchar(36);not null;uniqueIndex:idx_shortlist_property_phone" json:"propertyId"`
	PhoneNumber string             `gorm:"type:varchar(32);not null;uniqueIndex:idx_shortlist_property_phone;index" json:"phoneNumber"`
	Email       *string            `json:"email"`
	CreatedAt   time.Time          `gorm:"index" json:"createdAt"`
	Property    *property.Property `gorm:"constraint:OnDelete:CASCADE" json:"property,omitempty"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (s *Shortlist) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
