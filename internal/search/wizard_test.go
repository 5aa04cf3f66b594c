package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adway7103/broker-demo/internal/lead"
	"github.com/adway7103/broker-demo/internal/property"
)

func TestWizardNavigationClamps(t *testing.T) {
	w := &Wizard{}
	w.Prev()
	assert.Equal(t, StepListingType, w.Step)

	for i := 0; i < 10; i++ {
		w.Next()
	}
	assert.Equal(t, StepContact, w.Step)
	assert.True(t, w.Last())
	assert.Equal(t, "Contact Details", w.Title())
}

func TestWizardCanProceed(t *testing.T) {
	w := &Wizard{}
	assert.False(t, w.CanProceed())
	w.ListingType = property.ListingRent
	assert.True(t, w.CanProceed())

	w.Step = StepBudget
	assert.False(t, w.CanProceed())
	w.CustomMin = "10000"
	assert.False(t, w.CanProceed(), "one custom bound is not enough")
	w.CustomMax = "20000"
	assert.True(t, w.CanProceed())
	w.CustomMin, w.CustomMax = "", ""
	w.SelectBudget("Under ₹15,000")
	assert.True(t, w.CanProceed())
	w.SelectBudget("Under ₹15,000")
	assert.Equal(t, "", w.Budget, "selecting the selected budget clears it")

	w.Step = StepPropertyTypes
	assert.False(t, w.CanProceed())
	w.PropertyTypes = []property.PropertyType{"1BHK"}
	assert.True(t, w.CanProceed())

	w.Step = StepLocalities
	assert.False(t, w.CanProceed())
	w.Localities = []property.Locality{"POWAI"}
	assert.True(t, w.CanProceed())

	w.Step = StepFurnishing
	assert.False(t, w.CanProceed())
	w.Furnishings = []property.Furnishing{property.Unfurnished}
	assert.True(t, w.CanProceed())

	w.Step = StepContact
	w.Phone = "  "
	assert.False(t, w.CanProceed())
	w.Phone = "9876543210"
	assert.True(t, w.CanProceed())
}

func completedWizard() *Wizard {
	return &Wizard{
		Step:          StepContact,
		ListingType:   property.ListingRent,
		Budget:        "₹25,000 - ₹40,000",
		PropertyTypes: []property.PropertyType{"1BHK", "2BHK"},
		Localities:    []property.Locality{"BANDRA_WEST", "KHAR_WEST"},
		Furnishings:   []property.Furnishing{property.FullyFurnished, property.SemiFurnished},
		Phone:         "9876543210",
	}
}

func TestWizardLead(t *testing.T) {
	l := completedWizard().Lead()

	assert.Equal(t, "9876543210", l.PhoneNumber)
	assert.Equal(t, "RENT", lead.Value(l.ListingType))
	assert.Equal(t, "₹25,000 - ₹40,000", lead.Value(l.Budget))
	assert.Equal(t, "1BHK, 2BHK", lead.Value(l.PropertyType))
	assert.Equal(t, "Bandra West, Khar West", lead.Value(l.Locality))
	assert.Equal(t, "FULLY_FURNISHED, SEMI_FURNISHED", lead.Value(l.Furnishing))
}

func TestWizardCustomBudgetBounds(t *testing.T) {
	tests := []struct {
		name     string
		min, max string
		ok       bool
	}{
		{"valid", "10000", "20000", true},
		{"equal", "20000", "20000", true},
		{"zero min", "0", "15000", true},
		{"padded", " 10000 ", "20000", true},
		{"negative min", "-5000", "20000", false},
		{"negative max", "-9000", "-5000", false},
		{"not a number", "50k", "80000", false},
		{"decimal", "10000.5", "20000", false},
		{"min above max", "30000", "20000", false},
		{"max missing", "10000", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := completedWizard()
			w.Budget = ""
			w.CustomMin, w.CustomMax = tt.min, tt.max

			w.Step = StepBudget
			assert.Equal(t, tt.ok, w.CanProceed())

			f := w.Filter()
			if tt.ok {
				require.NotNil(t, f.MinPrice)
				assert.GreaterOrEqual(t, *f.MinPrice, int64(0))
			} else {
				assert.Nil(t, f.MinPrice)
				assert.Nil(t, f.MaxPrice)
				assert.Nil(t, w.Lead().Budget)
			}

			step, incomplete := w.Incomplete()
			assert.Equal(t, !tt.ok, incomplete)
			if incomplete {
				assert.Equal(t, StepBudget, step)
			}
			assert.Equal(t, StepBudget, w.Step, "Incomplete keeps the current step")
		})
	}
}

func TestWizardLeadCustomBudget(t *testing.T) {
	w := completedWizard()
	w.Budget = ""
	w.CustomMin, w.CustomMax = "30000", "45000"

	assert.Equal(t, "₹30000 - ₹45000", lead.Value(w.Lead().Budget))
}

func TestWizardFilter(t *testing.T) {
	f := completedWizard().Filter()
	assert.Equal(t,
		"/listings?listingType=RENT&propertyType=1BHK%2C2BHK&locality=BANDRA_WEST%2CKHAR_WEST&furnishing=FULLY_FURNISHED%2CSEMI_FURNISHED&minPrice=25000&maxPrice=40000&phone=9876543210",
		f.ListingsURL(""))

	buy := completedWizard()
	buy.ListingType = property.ListingBuy
	buy.Budget = "Above ₹10 Crore"
	bf := buy.Filter()
	require.NotNil(t, bf.MinPrice)
	assert.Equal(t, int64(100000000), *bf.MinPrice)
	assert.Equal(t, int64(1000000000), *bf.MaxPrice)

	// A rent label does not exist among the buy ranges.
	buy.Budget = "Under ₹15,000"
	assert.Nil(t, buy.Filter().MinPrice)

	custom := completedWizard()
	custom.Budget = ""
	custom.CustomMin = "5000"
	assert.Nil(t, custom.Filter().MinPrice, "custom bounds need both ends")
	custom.CustomMax = "9000"
	assert.Equal(t, int64(9000), *custom.Filter().MaxPrice)
}

func TestWizardValuesRoundTrip(t *testing.T) {
	w := completedWizard()
	w.Step = StepLocalities

	got := WizardFromValues(w.Values())
	assert.Equal(t, w, got)

	bad := WizardFromValues(map[string][]string{"step": {"42"}, "locality": {"Nowhere,Juhu"}})
	assert.Equal(t, StepContact, bad.Step)
	assert.Equal(t, []property.Locality{"JUHU"}, bad.Localities)
}

func TestWizardBudgets(t *testing.T) {
	w := &Wizard{ListingType: property.ListingRent}
	assert.Len(t, w.Budgets(), 6)
	assert.Equal(t, "Under ₹15,000", w.Budgets()[0].Label)
	w.ListingType = property.ListingBuy
	assert.Equal(t, "Under ₹50 Lakh", w.Budgets()[0].Label)
}

func TestWizardCarried(t *testing.T) {
	w := completedWizard()
	w.Step = StepLocalities

	v := w.Carried()
	assert.Empty(t, v.Get("step"))
	assert.Empty(t, v.Get("locality"))
	assert.Equal(t, "1BHK,2BHK", v.Get("propertyType"))
	assert.Equal(t, "9876543210", v.Get("phone"))

	w.Step = StepBudget
	w.CustomMin = "1"
	v = w.Carried()
	assert.Empty(t, v.Get("customMin"))
	assert.Equal(t, "₹25,000 - ₹40,000", v.Get("budget"))
}
