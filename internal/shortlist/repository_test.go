package shortlist

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/adway7103/broker-demo/internal/db"
	"github.com/adway7103/broker-demo/internal/property"
)

type fixture struct {
	repo  *Repository
	props *property.Repository
}

func setup(t *testing.T) fixture {
	t.Helper()
	gdb, err := db.Open(db.Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })

	if err := db.Migrate(gdb, &property.Property{}, &Shortlist{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return fixture{repo: NewRepository(gdb), props: property.NewRepository(gdb)}
}

func (f fixture) addProperty(t *testing.T, title string) *property.Property {
	t.Helper()
	p := &property.Property{
		Title:        title,
		Description:  "Near the metro",
		Price:        30000,
		PropertyType: "1BHK",
		ListingType:  property.ListingRent,
		Locality:     "POWAI",
		Furnishing:   property.Unfurnished,
	}
	if err := f.props.Create(context.Background(), p); err != nil {
		t.Fatalf("creating property: %v", err)
	}
	return p
}

func TestAdd(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.addProperty(t, "Powai 1BHK")

	s, err := f.repo.Add(ctx, p.ID, "9876543210", "a@example.com")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if s.ID == "" || s.PropertyID != p.ID {
		t.Errorf("shortlist = %+v", s)
	}
	if s.Property == nil || s.Property.Title != "Powai 1BHK" {
		t.Errorf("property not attached: %+v", s.Property)
	}
	if s.Email == nil || *s.Email != "a@example.com" {
		t.Errorf("email = %v", s.Email)
	}
}

func TestAddErrors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.addProperty(t, "Taken")
	rented := f.addProperty(t, "Rented")
	if _, err := f.props.SetRented(ctx, rented.ID, true); err != nil {
		t.Fatalf("set rented: %v", err)
	}
	if _, err := f.repo.Add(ctx, p.ID, "111", ""); err != nil {
		t.Fatalf("first add: %v", err)
	}

	tests := []struct {
		name       string
		propertyID string
		phone      string
		want       error
	}{
		{"missing property id", "", "111", ErrMissingFields},
		{"missing phone", p.ID, " ", ErrMissingFields},
		{"unknown property", "nope", "111", property.ErrNotFound},
		{"rented property", rented.ID, "222", ErrPropertyRented},
		{"duplicate", p.ID, "111", ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.repo.Add(ctx, tt.propertyID, tt.phone, "")
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestListByPhone(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.addProperty(t, "A")
	b := f.addProperty(t, "B")

	for _, add := range []struct{ id, phone string }{{a.ID, "111"}, {b.ID, "111"}, {a.ID, "222"}} {
		if _, err := f.repo.Add(ctx, add.id, add.phone, ""); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	items, total, err := f.repo.List(ctx, ListOptions{PhoneNumber: "111"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("got %d of %d, want 2", len(items), total)
	}
	for _, s := range items {
		if s.Property == nil {
			t.Errorf("shortlist %s has no property", s.ID)
		}
	}

	all, total, err := f.repo.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Errorf("got %d of %d, want 3", len(all), total)
	}

	ids, err := f.repo.PropertyIDs(ctx, "111")
	if err != nil {
		t.Fatalf("property ids: %v", err)
	}
	if !ids[a.ID] || !ids[b.ID] || len(ids) != 2 {
		t.Errorf("ids = %v", ids)
	}
}

func TestDeletePropertyCascades(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.addProperty(t, "Cascade")

	if _, err := f.repo.Add(ctx, p.ID, "111", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := f.props.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete property: %v", err)
	}

	n, err := f.repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("shortlists left = %d, want 0", n)
	}
}

func TestDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.addProperty(t, "X")

	s, err := f.repo.Add(ctx, p.ID, "111", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := f.repo.Delete(ctx, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.repo.Delete(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
