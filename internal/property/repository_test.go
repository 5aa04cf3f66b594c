package property

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/adway7103/broker-demo/internal/db"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	gdb, err := db.Open(db.Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })

	if err := db.Migrate(gdb, &Property{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return NewRepository(gdb)
}

func sampleProperty(title string) *Property {
	return &Property{
		Title:        title,
		Description:  "Sea-facing apartment close to the station",
		Price:        45000,
		PropertyType: "2BHK",
		ListingType:  ListingRent,
		Locality:     "BANDRA_WEST",
		Furnishing:   SemiFurnished,
		Features:     []string{"Parking", "Gym"},
	}
}

func mustCreate(t *testing.T, repo *Repository, p *Property) *Property {
	t.Helper()
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("create %q: %v", p.Title, err)
	}
	return p
}

func TestCreateAndGetByID(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	p := mustCreate(t, repo, sampleProperty("Bandra 2BHK"))
	if p.ID == "" {
		t.Fatal("expected generated ID")
	}
	if p.Currency != "INR" {
		t.Errorf("currency = %q, want INR", p.Currency)
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Title != "Bandra 2BHK" {
		t.Errorf("title = %q", got.Title)
	}
	if len(got.Features) != 2 || got.Features[1] != "Gym" {
		t.Errorf("features = %v", got.Features)
	}
	if got.Images == nil || len(got.Images) != 0 {
		t.Errorf("images = %#v, want empty slice", got.Images)
	}
	if got.IsRented {
		t.Error("new property should not be rented")
	}
}

func TestCreateNormalizesLocalityLabel(t *testing.T) {
	repo := testRepo(t)

	p := sampleProperty("Label")
	p.Locality = "andheri west"
	mustCreate(t, repo, p)

	if p.Locality != "ANDHERI_WEST" {
		t.Errorf("locality = %q, want ANDHERI_WEST", p.Locality)
	}
}

func TestCreateValidation(t *testing.T) {
	repo := testRepo(t)

	tests := []struct {
		name    string
		mutate  func(p *Property)
		wantMsg string
	}{
		{"missing title", func(p *Property) { p.Title = "  " }, "Missing required fields"},
		{"zero price", func(p *Property) { p.Price = 0 }, "Missing required fields"},
		{"missing furnishing", func(p *Property) { p.Furnishing = "" }, "Missing required fields"},
		{"bad listing type", func(p *Property) { p.ListingType = "LEASE" }, "invalid listingType: LEASE"},
		{"bad property type", func(p *Property) { p.PropertyType = "6BHK" }, "invalid propertyType: 6BHK"},
		{"bad locality", func(p *Property) { p.Locality = "GOTHAM" }, "invalid locality: GOTHAM"},
		{"negative area", func(p *Property) { n := int64(-1); p.Area = &n }, "area, bedrooms and bathrooms must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := sampleProperty("x")
			tt.mutate(p)
			err := repo.Create(context.Background(), p)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestCreateDuplicateID(t *testing.T) {
	repo := testRepo(t)
	p := mustCreate(t, repo, sampleProperty("Bandra 2BHK"))

	again := sampleProperty("Bandra 2BHK again")
	again.ID = p.ID
	if err := repo.Create(context.Background(), again); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestListSearchMatchesWildcardsLiterally(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, sampleProperty("Zero brokerage 100% verified"))
	plain := sampleProperty("Plain flat")
	plain.Description = "Blockxb near the park"
	mustCreate(t, repo, plain)
	under := sampleProperty("Corner unit")
	under.Description = "Block_B near the gate"
	mustCreate(t, repo, under)

	for search, want := range map[string]int{"%": 1, "100%": 1, "k_b": 1, "kxb": 1} {
		got, total, err := repo.List(ctx, ListOptions{Search: search})
		if err != nil {
			t.Fatalf("list %q: %v", search, err)
		}
		if len(got) != want || total != int64(want) {
			t.Errorf("search %q: got %d (total %d), want %d", search, len(got), total, want)
		}
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo := testRepo(t)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListFilters(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	cheap := sampleProperty("Cheap studio")
	cheap.PropertyType = "Studio"
	cheap.Price = 15000
	cheap.Locality = "MALAD_WEST"
	mustCreate(t, repo, cheap)

	mid := sampleProperty("Bandra flat")
	mustCreate(t, repo, mid)

	sale := sampleProperty("Worli penthouse")
	sale.ListingType = ListingBuy
	sale.PropertyType = "Penthouse"
	sale.Price = 450000000
	sale.Locality = "WORLI"
	sale.Furnishing = FullyFurnished
	mustCreate(t, repo, sale)

	minP, maxP := int64(20000), int64(100000)
	rented := false

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{"all", ListOptions{}, []string{"Worli penthouse", "Bandra flat", "Cheap studio"}},
		{"listing type", ListOptions{ListingType: ListingBuy}, []string{"Worli penthouse"}},
		{"property types", ListOptions{PropertyTypes: []PropertyType{"Studio", "2BHK"}}, []string{"Bandra flat", "Cheap studio"}},
		{"localities", ListOptions{Localities: []Locality{"WORLI"}}, []string{"Worli penthouse"}},
		{"furnishing", ListOptions{Furnishings: []Furnishing{FullyFurnished}}, []string{"Worli penthouse"}},
		{"price range", ListOptions{MinPrice: &minP, MaxPrice: &maxP}, []string{"Bandra flat"}},
		{"not rented", ListOptions{Rented: &rented, ListingType: ListingRent}, []string{"Bandra flat", "Cheap studio"}},
		{"search title", ListOptions{Search: "STUDIO"}, []string{"Cheap studio"}},
		{"search locality label", ListOptions{Search: "malad"}, []string{"Cheap studio"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.List(ctx, tt.opts)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if total != int64(len(tt.want)) {
				t.Errorf("total = %d, want %d", total, len(tt.want))
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d properties, want %d", len(got), len(tt.want))
			}
			for i, p := range got {
				if p.Title != tt.want[i] {
					t.Errorf("[%d] = %q, want %q", i, p.Title, tt.want[i])
				}
			}
		})
	}
}

func TestListPaging(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		mustCreate(t, repo, sampleProperty("p"))
	}

	got, total, err := repo.List(ctx, ListOptions{Page: db.Page{Page: 2, Limit: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(got) != 2 {
		t.Errorf("page size = %d, want 2", len(got))
	}

	got, _, err = repo.List(ctx, ListOptions{Page: db.Page{Page: 3, Limit: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("last page size = %d, want 1", len(got))
	}
}

func TestUpdateKeepsRentedFlag(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	p := mustCreate(t, repo, sampleProperty("Before"))
	if _, err := repo.SetRented(ctx, p.ID, true); err != nil {
		t.Fatalf("set rented: %v", err)
	}

	in := Input{
		Title:        "After",
		Bedrooms:     3,
		Description:  "Renovated",
		Price:        50000,
		PropertyType: "3BHK",
		ListingType:  ListingRent,
		Locality:     "Juhu",
		Furnishing:   Unfurnished,
	}
	updated, err := repo.Update(ctx, p.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "After" || updated.Locality != "JUHU" {
		t.Errorf("updated = %+v", updated)
	}
	if !updated.IsRented {
		t.Error("rented flag should be kept when not provided")
	}
	if updated.Bedrooms == nil || *updated.Bedrooms != 3 || updated.Area != nil {
		t.Errorf("bedrooms = %v, area = %v", updated.Bedrooms, updated.Area)
	}
	if len(updated.Features) != 0 {
		t.Errorf("features = %v, want replaced with empty", updated.Features)
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Price != 50000 || !got.IsRented {
		t.Errorf("stored = %+v", got)
	}
}

func TestUpdateNotFound(t *testing.T) {
	repo := testRepo(t)

	_, err := repo.Update(context.Background(), "missing", Input{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPatch(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	p := mustCreate(t, repo, sampleProperty("Patch me"))

	patched, err := repo.Patch(ctx, p.ID, map[string]json.RawMessage{
		"isRented": json.RawMessage(`true`),
		"price":    json.RawMessage(`47000`),
	})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if !patched.IsRented || patched.Price != 47000 {
		t.Errorf("patched = %+v", patched)
	}
	if patched.Title != "Patch me" {
		t.Errorf("title changed to %q", patched.Title)
	}

	_, err = repo.Patch(ctx, p.ID, map[string]json.RawMessage{"id": json.RawMessage(`"x"`)})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("unknown field err = %v, want validation error", err)
	}

	_, err = repo.Patch(ctx, p.ID, map[string]json.RawMessage{"price": json.RawMessage(`"lots"`)})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("bad value err = %v, want validation error", err)
	}
}

func TestDeleteAndCount(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	p := sampleProperty("Gone")
	p.Images = []string{"https://bucket.s3.ap-south-1.amazonaws.com/properties/x/1_a.jpg"}
	mustCreate(t, repo, p)
	mustCreate(t, repo, sampleProperty("Stays"))

	deleted, err := repo.Delete(ctx, p.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(deleted.Images) != 1 {
		t.Errorf("deleted images = %v", deleted.Images)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}

	if _, err := repo.Delete(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
