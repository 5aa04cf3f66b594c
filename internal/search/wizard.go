package search

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/adway7103/broker-demo/internal/lead"
	"github.com/adway7103/broker-demo/internal/property"
)

// Wizard steps, in order.
const (
	StepListingType = iota
	StepBudget
	StepPropertyTypes
	StepLocalities
	StepFurnishing
	StepContact
)

// Steps are the wizard step titles.
var Steps = []string{
	"Listing Type",
	"Budget Range",
	"Property Types",
	"Localities",
	"Furnishing",
	"Contact Details",
}

// Wizard is the state of the guided search. The zero value starts at the
// first step.
type Wizard struct {
	Step          int
	ListingType   property.ListingType
	Budget        string
	CustomMin     string
	CustomMax     string
	PropertyTypes []property.PropertyType
	Localities    []property.Locality
	Furnishings   []property.Furnishing
	Phone         string
}

// Next advances one step, stopping at the last.
func (w *Wizard) Next() {
	if w.Step < len(Steps)-1 {
		w.Step++
	}
}

// Prev goes back one step, stopping at the first.
func (w *Wizard) Prev() {
	if w.Step > 0 {
		w.Step--
	}
}

// Title returns the current step's title.
func (w *Wizard) Title() string {
	return Steps[w.clamped()]
}

// Last reports whether the wizard is on the contact step.
func (w *Wizard) Last() bool {
	return w.clamped() == len(Steps)-1
}

func (w *Wizard) clamped() int {
	switch {
	case w.Step < 0:
		return 0
	case w.Step >= len(Steps):
		return len(Steps) - 1
	}
	return w.Step
}

// SelectBudget picks a budget label; picking the selected one clears it.
func (w *Wizard) SelectBudget(label string) {
	if w.Budget == label {
		w.Budget = ""
		return
	}
	w.Budget = label
}

// CanProceed reports whether the current step has what it needs.
func (w *Wizard) CanProceed() bool {
	switch w.clamped() {
	case StepListingType:
		return w.ListingType != ""
	case StepBudget:
		if w.Budget != "" {
			return true
		}
		_, _, ok := w.customRange()
		return ok
	case StepPropertyTypes:
		return len(w.PropertyTypes) > 0
	case StepLocalities:
		return len(w.Localities) > 0
	case StepFurnishing:
		return len(w.Furnishings) > 0
	case StepContact:
		return strings.TrimSpace(w.Phone) != ""
	}
	return false
}

// Incomplete returns the first step that cannot proceed, if any.
func (w *Wizard) Incomplete() (int, bool) {
	saved := w.Step
	defer func() { w.Step = saved }()
	for step := range Steps {
		w.Step = step
		if !w.CanProceed() {
			return step, true
		}
	}
	return 0, false
}

// customRange parses the custom budget bounds. Both must be whole,
// non-negative rupee amounts with min not above max.
func (w *Wizard) customRange() (int64, int64, bool) {
	lo, err := strconv.ParseInt(strings.TrimSpace(w.CustomMin), 10, 64)
	if err != nil || lo < 0 {
		return 0, 0, false
	}
	hi, err := strconv.ParseInt(strings.TrimSpace(w.CustomMax), 10, 64)
	if err != nil || hi < lo {
		return 0, 0, false
	}
	return lo, hi, true
}

// Budgets returns the ranges offered for the chosen listing type.
func (w *Wizard) Budgets() []Budget {
	return WizardBudgets(w.ListingType)
}

// Lead returns the lead record captured by the wizard.
func (w *Wizard) Lead() *lead.Lead {
	budget := w.Budget
	if budget == "" {
		if lo, hi, ok := w.customRange(); ok {
			budget = fmt.Sprintf("₹%d - ₹%d", lo, hi)
		}
	}

	labels := make([]string, len(w.Localities))
	for i, l := range w.Localities {
		labels[i] = l.Label()
	}

	return &lead.Lead{
		PhoneNumber:  strings.TrimSpace(w.Phone),
		ListingType:  optional(string(w.ListingType)),
		Budget:       optional(budget),
		PropertyType: optional(joinWith(w.PropertyTypes, ", ")),
		Locality:     optional(strings.Join(labels, ", ")),
		Furnishing:   optional(joinWith(w.Furnishings, ", ")),
	}
}

// Filter returns the listings filter matching the wizard's answers. The
// phone number rides along so the listings page can offer shortlisting.
func (w *Wizard) Filter() Filter {
	f := Filter{
		ListingType:   w.ListingType,
		PropertyTypes: w.PropertyTypes,
		Localities:    w.Localities,
		Furnishings:   w.Furnishings,
		Phone:         strings.TrimSpace(w.Phone),
	}

	if w.Budget != "" {
		if b, ok := WizardBudget(w.ListingType, w.Budget); ok {
			f.MinPrice, f.MaxPrice = &b.Min, &b.Max
		}
		return f
	}

	if lo, hi, ok := w.customRange(); ok {
		f.MinPrice, f.MaxPrice = &lo, &hi
	}
	return f
}

// Values encodes the wizard state for hidden form fields.
func (w *Wizard) Values() url.Values {
	v := url.Values{}
	v.Set("step", strconv.Itoa(w.clamped()))
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("listingType", string(w.ListingType))
	set("budget", w.Budget)
	set("customMin", w.CustomMin)
	set("customMax", w.CustomMax)
	set("propertyType", joinWith(w.PropertyTypes, ","))
	set("locality", joinWith(w.Localities, ","))
	set("furnishing", joinWith(w.Furnishings, ","))
	set("phone", w.Phone)
	return v
}

// WizardFromValues restores wizard state from form or query values.
func WizardFromValues(v url.Values) *Wizard {
	w := &Wizard{
		Budget:    v.Get("budget"),
		CustomMin: v.Get("customMin"),
		CustomMax: v.Get("customMax"),
		Phone:     v.Get("phone"),
	}
	if step, err := strconv.Atoi(v.Get("step")); err == nil {
		w.Step = step
	}
	w.Step = w.clamped()
	if lt, ok := property.ParseListingType(v.Get("listingType")); ok {
		w.ListingType = lt
	}
	for _, s := range listParam(v, "propertyType") {
		if pt, ok := property.ParsePropertyType(s); ok {
			w.PropertyTypes = append(w.PropertyTypes, pt)
		}
	}
	for _, s := range listParam(v, "locality") {
		if l, ok := property.ParseLocality(s); ok {
			w.Localities = append(w.Localities, l)
		}
	}
	for _, s := range listParam(v, "furnishing") {
		if f, ok := property.ParseFurnishing(s); ok {
			w.Furnishings = append(w.Furnishings, f)
		}
	}
	return w
}

func joinWith[T ~string](vs []T, sep string) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = string(v)
	}
	return strings.Join(parts, sep)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// stepInputs are the form fields each step edits directly.
var stepInputs = [][]string{
	StepListingType:   {"listingType"},
	StepBudget:        {"customMin", "customMax"},
	StepPropertyTypes: {"propertyType"},
	StepLocalities:    {"locality"},
	StepFurnishing:    {"furnishing"},
	StepContact:       {"phone"},
}

// Carried returns the state the current step does not edit, for hidden
// form fields. The step number itself is left out.
func (w *Wizard) Carried() url.Values {
	v := w.Values()
	v.Del("step")
	for _, key := range stepInputs[w.clamped()] {
		v.Del(key)
	}
	return v
}
