// Package services holds the estimate costing engine: tax resolution, line-item
// pricing, canonical ordering, scope and project aggregation, and filtering.
package services

// Item is a single priced line inside a scope.
type Item struct {
	ID            string  `json:"id"`
	ScopeID       string  `json:"scope_id"`
	Category      string  `json:"category"`
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	UnitPrice     float64 `json:"unit_price"`
	PST           float64 `json:"pst"`
	MarkupPercent float64 `json:"markup_percent"`
	Notes         string  `json:"notes"`
}

// CostBreakdown exposes every intermediate figure of an item's price.
type CostBreakdown struct {
	Subtotal      float64 `json:"subtotal"`       // Quantity * UnitPrice
	Tax           float64 `json:"tax"`            // automatic PST or stored manual amount
	TaxedSubtotal float64 `json:"taxed_subtotal"` // Subtotal + Tax
	Markup        float64 `json:"markup"`         // TaxedSubtotal * MarkupPercent / 100
	Total         float64 `json:"total"`          // TaxedSubtotal + Markup
}

// Estimator prices items under a fixed set of tax rules. It holds no mutable
// state and is safe for concurrent use.
type Estimator struct {
	Rules TaxRules
}

// NewEstimator returns an Estimator using rules.
func NewEstimator(rules TaxRules) *Estimator {
	return &Estimator{Rules: rules}
}

// ComputeAutoTax returns the PST for item: quantity*unitPrice*rate for
// automatic categories, the stored amount otherwise.
func (e *Estimator) ComputeAutoTax(item Item) float64 {
	subtotal := finite(finite(item.Quantity) * finite(item.UnitPrice))
	return finite(e.Rules.Resolve(item).Apply(subtotal))
}

// Breakdown computes the full price breakdown for item. A figure that
// overflows float64 becomes 0, the same as non-finite input.
func (e *Estimator) Breakdown(item Item) CostBreakdown {
	subtotal := finite(finite(item.Quantity) * finite(item.UnitPrice))
	tax := finite(e.Rules.Resolve(item).Apply(subtotal))
	taxed := finite(subtotal + tax)
	markup := finite(taxed * (finite(item.MarkupPercent) / 100))
	return CostBreakdown{
		Subtotal:      subtotal,
		Tax:           tax,
		TaxedSubtotal: taxed,
		Markup:        markup,
		Total:         finite(taxed + markup),
	}
}

// ComputeTotal returns the marked-up, taxed total for item.
func (e *Estimator) ComputeTotal(item Item) float64 {
	return e.Breakdown(item).Total
}

// RecomputeTax returns item with PST re-derived. Automatic categories get the
// computed amount regardless of what was stored; manual items are unchanged.
func (e *Estimator) RecomputeTax(item Item) Item {
	if e.Rules.IsAutomatic(item.Category) {
		item.PST = e.ComputeAutoTax(item)
	}
	return item
}

// PricedItem pairs an item with its breakdown for display.
type PricedItem struct {
	Item
	Cost CostBreakdown `json:"cost"`
	// AutoTax is true when PST is derived and not editable.
	AutoTax bool `json:"auto_tax"`
}

// Price recomputes tax and breakdown for each item, preserving order.
func (e *Estimator) Price(items []Item) []PricedItem {
	out := make([]PricedItem, 0, len(items))
	for _, it := range items {
		it = e.RecomputeTax(it)
		out = append(out, PricedItem{
			Item:    it,
			Cost:    e.Breakdown(it),
			AutoTax: e.Rules.IsAutomatic(it.Category),
		})
	}
	return out
}
