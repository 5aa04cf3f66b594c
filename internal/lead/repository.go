package lead

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/adway7103/broker-demo/internal/db"
)

// DefaultLimit is the page size used when a list query does not set one.
const DefaultLimit = 10

// Notifier is told about every newly created lead.
type Notifier interface {
	NotifyLead(ctx context.Context, l *Lead) error
}

// NotifyTimeout bounds how long Create waits for the notifier.
const NotifyTimeout = 10 * time.Second

// Repository provides CRUD operations for leads.
type Repository struct {
	db            *gorm.DB
	notifier      Notifier
	notifyTimeout time.Duration
}

// NewRepository creates a lead repository. notifier may be nil.
func NewRepository(gdb *gorm.DB, notifier Notifier) *Repository {
	return &Repository{db: gdb, notifier: notifier, notifyTimeout: NotifyTimeout}
}

// Create stores a lead and notifies the broker. Notification failures are
// logged and do not fail the call.
func (r *Repository) Create(ctx context.Context, l *Lead) error {
	if err := l.normalize(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("inserting lead: %w", err)
	}

	if r.notifier != nil {
		// The lead is stored; a client disconnect must not cut the email short.
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.notifyTimeout)
		defer cancel()
		if err := r.notifier.NotifyLead(nctx, l); err != nil {
			slog.Warn("lead notification failed", "lead_id", l.ID, "err", err)
		}
	}
	return nil
}

// GetByID returns a lead by its ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Lead, error) {
	var l Lead
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying lead %s: %w", id, err)
	}
	return &l, nil
}

// ListOptions controls filtering for List. Search matches phone, email or
// name; the remaining fields are case-insensitive substring filters.
type ListOptions struct {
	Search       string
	ListingType  string
	PropertyType string
	Locality     string
	Furnishing   string
	Budget       string
	Page         db.Page
}

// List returns one page of matching leads, newest first, with the total.
func (r *Repository) List(ctx context.Context, opts ListOptions) ([]*Lead, int64, error) {
	page := opts.Page.Normalize(DefaultLimit)
	q := r.db.WithContext(ctx).Model(&Lead{})

	if s := strings.TrimSpace(opts.Search); s != "" {
		like := db.Contains(s)
		q = q.Where(db.Like("phone_number")+" OR "+db.Like("email")+" OR "+db.Like("name"), like, like, like)
	}
	for column, v := range map[string]string{
		"listing_type":  opts.ListingType,
		"property_type": opts.PropertyType,
		"locality":      opts.Locality,
		"furnishing":    opts.Furnishing,
		"budget":        opts.Budget,
	} {
		if v = strings.TrimSpace(v); v != "" {
			q = q.Where(db.Like(column), db.Contains(v))
		}
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting leads: %w", err)
	}

	leads := []*Lead{}
	if err := q.Scopes(page.Scope).Order("created_at DESC").Find(&leads).Error; err != nil {
		return nil, 0, fmt.Errorf("listing leads: %w", err)
	}
	return leads, total, nil
}

// Delete removes a lead by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&Lead{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("deleting lead: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored leads.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Lead{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting leads: %w", err)
	}
	return n, nil
}
