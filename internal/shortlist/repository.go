package shortlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/adway7103/broker-demo/internal/db"
	"github.com/adway7103/broker-demo/internal/property"
)

// DefaultLimit is the page size used when a list query does not set one.
const DefaultLimit = 10

// Repository provides CRUD operations for shortlists.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a shortlist repository.
func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{db: gdb}
}

// Add shortlists a property for a phone number and returns the record with
// its property loaded.
func (r *Repository) Add(ctx context.Context, propertyID, phone, email string) (*Shortlist, error) {
	propertyID = strings.TrimSpace(propertyID)
	phone = strings.TrimSpace(phone)
	if propertyID == "" || phone == "" {
		return nil, ErrMissingFields
	}

	s := &Shortlist{PropertyID: propertyID, PhoneNumber: phone}
	if e := strings.TrimSpace(email); e != "" {
		s.Email = &e
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p property.Property
		if err := tx.First(&p, "id = ?", propertyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return property.ErrNotFound
			}
			return fmt.Errorf("querying property %s: %w", propertyID, err)
		}
		if p.IsRented {
			return ErrPropertyRented
		}

		var existing int64
		err := tx.Model(&Shortlist{}).
			Where("property_id = ? AND phone_number = ?", propertyID, phone).
			Count(&existing).Error
		if err != nil {
			return fmt.Errorf("checking existing shortlist: %w", err)
		}
		if existing > 0 {
			return ErrDuplicate
		}

		if err := tx.Omit("Property").Create(s).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicate
			}
			return fmt.Errorf("inserting shortlist: %w", err)
		}
		s.Property = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListOptions controls filtering for List.
type ListOptions struct {
	PhoneNumber string
	Page        db.Page
}

// List returns one page of shortlists, newest first, with properties
// loaded and the total number of matches.
func (r *Repository) List(ctx context.Context, opts ListOptions) ([]*Shortlist, int64, error) {
	page := opts.Page.Normalize(DefaultLimit)
	q := r.db.WithContext(ctx).Model(&Shortlist{})
	if phone := strings.TrimSpace(opts.PhoneNumber); phone != "" {
		q = q.Where("phone_number = ?", phone)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting shortlists: %w", err)
	}

	items := []*Shortlist{}
	err := q.Preload("Property").Scopes(page.Scope).Order("created_at DESC").Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing shortlists: %w", err)
	}
	return items, total, nil
}

// PropertyIDs returns the IDs of the properties a phone number has
// shortlisted.
func (r *Repository) PropertyIDs(ctx context.Context, phone string) (map[string]bool, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&Shortlist{}).
		Where("phone_number = ?", strings.TrimSpace(phone)).
		Pluck("property_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("listing shortlisted properties: %w", err)
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// Delete removes a shortlist by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&Shortlist{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("deleting shortlist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored shortlists.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Shortlist{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting shortlists: %w", err)
	}
	return n, nil
}
