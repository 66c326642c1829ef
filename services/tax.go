package services

// DefaultPSTRate is the provincial sales tax applied to automatic-tax categories.
const DefaultPSTRate = 0.07

// DefaultTaxCategories are the item categories whose PST is derived rather than
// entered by hand.
var DefaultTaxCategories = []string{"Materials", "Subcontractors", "Trucking & Aggregates"}

// TaxRules decides which item categories carry automatic PST and at what rate.
type TaxRules struct {
	Rate       float64
	categories map[string]struct{}
}

// NewTaxRules builds a rule set from an explicit category allow-list.
// Category matching is exact and case-sensitive.
func NewTaxRules(rate float64, categories []string) TaxRules {
	set := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		set[c] = struct{}{}
	}
	return TaxRules{Rate: rate, categories: set}
}

// DefaultTaxRules returns the 7% PST rule over DefaultTaxCategories.
func DefaultTaxRules() TaxRules {
	return NewTaxRules(DefaultPSTRate, DefaultTaxCategories)
}

// IsAutomatic reports whether category is in the automatic-tax allow-list.
func (r TaxRules) IsAutomatic(category string) bool {
	_, ok := r.categories[category]
	return ok
}

// Categories returns the allow-list in no particular order.
func (r TaxRules) Categories() []string {
	out := make([]string, 0, len(r.categories))
	for c := range r.categories {
		out = append(out, c)
	}
	return out
}

// TaxKind distinguishes derived tax from a hand-entered amount.
type TaxKind int

const (
	TaxManual TaxKind = iota
	TaxAutomatic
)

func (k TaxKind) String() string {
	if k == TaxAutomatic {
		return "automatic"
	}
	return "manual"
}

// Tax is the resolved tax treatment of one item. Automatic taxes carry a rate,
// manual taxes carry a fixed amount.
type Tax struct {
	Kind   TaxKind
	Rate   float64
	Amount float64
}

// Apply returns the tax dollars for the given pre-tax subtotal.
func (t Tax) Apply(subtotal float64) float64 {
	if t.Kind == TaxAutomatic {
		return subtotal * t.Rate
	}
	return t.Amount
}

// Resolve picks the tax treatment for item once so callers never branch on
// the category string themselves.
func (r TaxRules) Resolve(item Item) Tax {
	if r.IsAutomatic(item.Category) {
		return Tax{Kind: TaxAutomatic, Rate: r.Rate}
	}
	return Tax{Kind: TaxManual, Amount: finite(item.PST)}
}
