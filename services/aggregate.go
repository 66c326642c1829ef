package services

import "slices"

// UncategorizedLabel is the bucket for items without a category.
const UncategorizedLabel = "Uncategorized"

// CategorySummary is a derived per-category total. It is never persisted.
type CategorySummary struct {
	Category  string  `json:"category"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

// ScopeEstimate is the aggregate of one scope's items.
type ScopeEstimate struct {
	Total      float64           `json:"total"`
	ItemCount  int               `json:"item_count"`
	ByCategory []CategorySummary `json:"by_category"`
}

// AggregateScope sums items into a scope total and a per-category breakdown.
// The total is always over every item given, independent of any UI filter.
func (e *Estimator) AggregateScope(items []Item) ScopeEstimate {
	total, byCategory := e.sumByCategory(items)
	return ScopeEstimate{
		Total:      total,
		ItemCount:  len(items),
		ByCategory: byCategory,
	}
}

// ScopeItems is one scope together with its loaded items.
type ScopeItems struct {
	Scope Scope
	Items []Item
}

// ScopeTotal is a per-scope row in a project estimate.
type ScopeTotal struct {
	ScopeID   string  `json:"scope_id"`
	Name      string  `json:"name"`
	ItemCount int     `json:"item_count"`
	Total     float64 `json:"total"`
}

// ProjectEstimate is the aggregate of every scope in a project.
type ProjectEstimate struct {
	GrandTotal float64           `json:"grand_total"`
	ByCategory []CategorySummary `json:"by_category"`
	Scopes     []ScopeTotal      `json:"scopes"`
}

// RoundedGrandTotal is the grand total rounded once to cents.
func (p ProjectEstimate) RoundedGrandTotal() float64 {
	return RoundMoney(p.GrandTotal)
}

// AggregateProject sums every scope's items. Scope rows keep the order of
// scopes; categories are combined across scopes.
func (e *Estimator) AggregateProject(scopes []ScopeItems) ProjectEstimate {
	var all []Item
	perScope := make([]ScopeTotal, 0, len(scopes))
	var grand float64
	for _, s := range scopes {
		var scopeTotal float64
		for _, it := range s.Items {
			scopeTotal += e.ComputeTotal(it)
		}
		grand += scopeTotal
		perScope = append(perScope, ScopeTotal{
			ScopeID:   s.Scope.ID,
			Name:      s.Scope.Name,
			ItemCount: len(s.Items),
			Total:     finite(scopeTotal),
		})
		all = append(all, s.Items...)
	}
	_, byCategory := e.sumByCategory(all)
	return ProjectEstimate{
		GrandTotal: finite(grand),
		ByCategory: byCategory,
		Scopes:     perScope,
	}
}

// sumByCategory buckets items in first-seen order, then stable-sorts the
// buckets by total descending so equal totals keep their first-seen order.
func (e *Estimator) sumByCategory(items []Item) (float64, []CategorySummary) {
	byCategory := []CategorySummary{}
	index := make(map[string]int)
	var total float64
	for _, it := range items {
		t := e.ComputeTotal(it)
		total += t

		key := it.Category
		if key == "" {
			key = UncategorizedLabel
		}
		i, ok := index[key]
		if !ok {
			i = len(byCategory)
			index[key] = i
			byCategory = append(byCategory, CategorySummary{Category: key})
		}
		byCategory[i].Total += t
		byCategory[i].ItemCount++
	}
	for i := range byCategory {
		byCategory[i].Total = finite(byCategory[i].Total)
	}
	slices.SortStableFunc(byCategory, func(a, b CategorySummary) int {
		switch {
		case a.Total > b.Total:
			return -1
		case a.Total < b.Total:
			return 1
		}
		return 0
	})
	return finite(total), byCategory
}
