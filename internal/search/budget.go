package search

import "github.com/adway7103/broker-demo/internal/property"

// OpenMax is the upper bound used for open-ended budget ranges in links.
const OpenMax int64 = 999_999_999

// Budget is a labelled price range.
type Budget struct {
	Label string
	Min   int64
	Max   int64
}

// LinkBudgets are the monthly-rent ranges offered by the smart link
// builder.
var LinkBudgets = []Budget{
	{"₹10,000-₹25,000", 10_000, 25_000},
	{"₹25,000-₹40,000", 25_000, 40_000},
	{"₹40,000-₹60,000", 40_000, 60_000},
	{"₹60,000-₹80,000", 60_000, 80_000},
	{"₹80,000-₹1,00,000", 80_000, 1_00_000},
	{"₹1,00,000-₹1,50,000", 1_00_000, 1_50_000},
	{"₹1,50,000-₹2,00,000", 1_50_000, 2_00_000},
	{"₹2,00,000+", 2_00_000, OpenMax},
}

// RentBudgets are the wizard's ranges for rentals.
var RentBudgets = []Budget{
	{"Under ₹15,000", 0, 15_000},
	{"₹15,000 - ₹25,000", 15_000, 25_000},
	{"₹25,000 - ₹40,000", 25_000, 40_000},
	{"₹40,000 - ₹60,000", 40_000, 60_000},
	{"₹60,000 - ₹1,00,000", 60_000, 1_00_000},
	{"Above ₹1,00,000", 1_00_000, 1_00_00_000},
}

// BuyBudgets are the wizard's ranges for purchases.
var BuyBudgets = []Budget{
	{"Under ₹50 Lakh", 0, 50_00_000},
	{"₹50L - ₹1 Crore", 50_00_000, 1_00_00_000},
	{"₹1Cr - ₹2 Crore", 1_00_00_000, 2_00_00_000},
	{"₹2Cr - ₹5 Crore", 2_00_00_000, 5_00_00_000},
	{"₹5Cr - ₹10 Crore", 5_00_00_000, 10_00_00_000},
	{"Above ₹10 Crore", 10_00_00_000, 100_00_00_000},
}

// LinkBudget returns the smart link range for label. Unknown labels span
// every price.
func LinkBudget(label string) Budget {
	if b, ok := findBudget(LinkBudgets, label); ok {
		return b
	}
	return Budget{Label: label, Min: 0, Max: OpenMax}
}

// WizardBudgets returns the ranges offered for a listing type.
func WizardBudgets(lt property.ListingType) []Budget {
	if lt == property.ListingRent {
		return RentBudgets
	}
	return BuyBudgets
}

// WizardBudget returns the range for label under the listing type.
func WizardBudget(lt property.ListingType, label string) (Budget, bool) {
	return findBudget(WizardBudgets(lt), label)
}

func findBudget(list []Budget, label string) (Budget, bool) {
	for _, b := range list {
		if b.Label == label {
			return b, true
		}
	}
	return Budget{}, false
}
