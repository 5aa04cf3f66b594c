package property

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/adway7103/broker-demo/internal/apperr"
	"github.com/adway7103/broker-demo/internal/db"
)

// DefaultLimit is the page size used when a list query does not set one.
const DefaultLimit = 12

// Repository provides CRUD operations for properties.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a property repository.
func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{db: gdb}
}

// Create validates and inserts a new property.
func (r *Repository) Create(ctx context.Context, p *Property) error {
	if err := p.Validate(); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting property: %w", err)
	}
	return nil
}

// GetByID returns a property by its ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Property, error) {
	var p Property
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying property %s: %w", id, err)
	}
	return &p, nil
}

// ListOptions controls filtering and paging for List. Empty fields do not
// filter.
type ListOptions struct {
	ListingType   ListingType
	PropertyTypes []PropertyType
	Localities    []Locality
	Furnishings   []Furnishing
	MinPrice      *int64
	MaxPrice      *int64
	Rented        *bool
	Search        string
	Page          db.Page
}

// List returns one page of matching properties, newest first, together
// with the total number of matches.
func (r *Repository) List(ctx context.Context, opts ListOptions) ([]*Property, int64, error) {
	page := opts.Page.Normalize(DefaultLimit)
	q := opts.apply(r.db.WithContext(ctx).Model(&Property{})).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting properties: %w", err)
	}

	properties := []*Property{}
	err := q.Scopes(page.Scope).Order("created_at DESC").Find(&properties).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing properties: %w", err)
	}

	return properties, total, nil
}

func (o ListOptions) apply(q *gorm.DB) *gorm.DB {
	if o.ListingType != "" {
		q = q.Where("listing_type = ?", o.ListingType)
	}
	if len(o.PropertyTypes) > 0 {
		q = q.Where("property_type IN ?", o.PropertyTypes)
	}
	if len(o.Localities) > 0 {
		q = q.Where("locality IN ?", o.Localities)
	}
	if len(o.Furnishings) > 0 {
		q = q.Where("furnishing IN ?", o.Furnishings)
	}
	if o.MinPrice != nil {
		q = q.Where("price >= ?", *o.MinPrice)
	}
	if o.MaxPrice != nil {
		q = q.Where("price <= ?", *o.MaxPrice)
	}
	if o.Rented != nil {
		q = q.Where("is_rented = ?", *o.Rented)
	}
	if s := strings.TrimSpace(o.Search); s != "" {
		like := db.Contains(s)
		cond := db.Like("title") + " OR " + db.Like("description") + " OR " + db.Like("locality")
		args := []interface{}{like, like, like}
		// Labels ("Bandra West") are not stored, so match them separately.
		if matches := LocalitiesMatching(s); len(matches) > 0 {
			cond += " OR locality IN ?"
			args = append(args, matches)
		}
		q = q.Where(cond, args...)
	}
	return q
}

// Input carries the editable fields of a property as received from a
// client. IsRented is optional so a full update can leave it unchanged.
type Input struct {
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Price        Number       `json:"price"`
	Currency     string       `json:"currency"`
	PropertyType PropertyType `json:"propertyType"`
	ListingType  ListingType  `json:"listingType"`
	Locality     Locality     `json:"locality"`
	City         *string      `json:"city"`
	State        *string      `json:"state"`
	Furnishing   Furnishing   `json:"furnishing"`
	Images       []string     `json:"images"`
	Videos       []string     `json:"videos"`
	Features     []string     `json:"features"`
	Area         Number       `json:"area"`
	Bedrooms     Number       `json:"bedrooms"`
	Bathrooms    Number       `json:"bathrooms"`
	IsRented     *bool        `json:"isRented"`
}

// Property builds a new, unsaved property from the input.
func (in Input) Property() *Property {
	p := &Property{}
	in.applyTo(p)
	return p
}

func (in Input) applyTo(p *Property) {
	p.Title = in.Title
	p.Description = in.Description
	p.Price = int64(in.Price)
	p.Currency = in.Currency
	p.PropertyType = in.PropertyType
	p.ListingType = in.ListingType
	p.Locality = in.Locality
	p.City = in.City
	p.State = in.State
	p.Furnishing = in.Furnishing
	p.Images = in.Images
	p.Videos = in.Videos
	p.Features = in.Features
	p.Area = in.Area.ptr()
	p.Bedrooms = in.Bedrooms.ptr()
	p.Bathrooms = in.Bathrooms.ptr()
	if in.IsRented != nil {
		p.IsRented = *in.IsRented
	}
}

// Update replaces every editable field of a property. The rented flag is
// kept unless the input sets it.
func (r *Repository) Update(ctx context.Context, id string, in Input) (*Property, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in.applyTo(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, fmt.Errorf("updating property %s: %w", id, err)
	}
	return p, nil
}

// patchable lists the JSON fields Patch accepts.
var patchable = map[string]bool{
	"title": true, "description": true, "price": true, "currency": true,
	"propertyType": true, "listingType": true, "locality": true,
	"city": true, "state": true, "furnishing": true,
	"images": true, "videos": true, "features": true,
	"area": true, "bedrooms": true, "bathrooms": true, "isRented": true,
}

// Patch applies a partial update given as JSON field names and values.
// Unknown fields are rejected.
func (r *Repository) Patch(ctx context.Context, id string, fields map[string]json.RawMessage) (*Property, error) {
	if len(fields) == 0 {
		return nil, apperr.Invalid("No fields to update")
	}
	for name := range fields {
		if !patchable[name] {
			return nil, apperr.Invalid("unknown field: %s", name)
		}
	}

	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding patch: %w", err)
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalid, "Invalid field value", err)
	}
	p.ID = id

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, fmt.Errorf("patching property %s: %w", id, err)
	}
	return p, nil
}

// SetRented marks a property as rented or available again.
func (r *Repository) SetRented(ctx context.Context, id string, rented bool) (*Property, error) {
	return r.Patch(ctx, id, map[string]json.RawMessage{
		"isRented": json.RawMessage(fmt.Sprintf("%t", rented)),
	})
}

// Delete removes a property and returns it so callers can release its
// media. Shortlists referencing it go with it through the foreign key.
func (r *Repository) Delete(ctx context.Context, id string) (*Property, error) {
	var deleted Property
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&Property{}, "id = ?", id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("deleting property %s: %w", id, err)
	}
	return &deleted, nil
}

// Count returns the number of stored properties.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Property{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting properties: %w", err)
	}
	return n, nil
}
