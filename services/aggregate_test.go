package services

import "testing"

func scenarioItems() []Item {
	return []Item{
		{ID: "m1", Category: "Materials", Name: "Lumber", Quantity: 10, UnitPrice: 5, MarkupPercent: 20},
		{ID: "l1", Category: "Labor", Name: "Framing crew", Quantity: 8, UnitPrice: 45},
	}
}

func TestAggregateScope_Scenario(t *testing.T) {
	est := NewEstimator(DefaultTaxRules())
	agg := est.AggregateScope(scenarioItems())

	if !approx(agg.Total, 424.2) {
		t.Errorf("Total = %v, want 424.2", agg.Total)
	}
	if agg.ItemCount != 2 {
		t.Errorf("ItemCount = %d, want 2", agg.ItemCount)
	}
	if len(agg.ByCategory) != 2 {
		t.Fatalf("expected 2 buckets, got %+v", agg.ByCategory)
	}
	if agg.ByCategory[0].Category != "Labor" || !approx(agg.ByCategory[0].Total, 360) {
		t.Errorf("first bucket = %+v, want Labor 360", agg.ByCategory[0])
	}
	if agg.ByCategory[1].Category != "Materials" || !approx(agg.ByCategory[1].Total, 64.2) {
		t.Errorf("second bucket = %+v, want Materials 64.2", agg.ByCategory[1])
	}
}

// P3: total equals the sum of item totals, including the empty list.
func TestAggregateScope_Additive(t *testing.T) {
	est := NewEstimator(DefaultTaxRules())

	empty := est.AggregateScope(nil)
	if empty.Total != 0 || len(empty.ByCategory) != 0 || empty.ByCategory == nil {
		t.Errorf("empty aggregate = %+v, want zero total and empty (non-nil) buckets", empty)
	}

	items := append(scenarioItems(),
		Item{ID: "x", Quantity: 2, UnitPrice: 7.5, PST: 1},
		Item{ID: "y", Category: "Subcontractors", Quantity: 1, UnitPrice: 2500, MarkupPercent: 12},
	)
	var want float64
	for _, it := range items {
		want += est.ComputeTotal(it)
	}
	if got := est.AggregateScope(items).Total; !approx(got, want) {
		t.Errorf("Total = %v, want %v", got, want)
	}
}

// P4: every item lands in exactly one bucket and buckets sum to the total.
func TestAggregateScope_Exhaustive(t *testing.T) {
	est := NewEstimator(DefaultTaxRules())
	items := []Item{
		{ID: "1", Category: "Materials", Quantity: 1, UnitPrice: 100},
		{ID: "2", Category: "", Quantity: 1, UnitPrice: 50},
		{ID: "3", Category: "Materials", Quantity: 2, UnitPrice: 10},
		{ID: "4", Category: "Equipment", Quantity: 3, UnitPrice: 80, PST: 5},
		{ID: "5", Quantity: 1, UnitPrice: 1},
	}
	agg := est.AggregateScope(items)

	var count int
	var sum float64
	for _, b := range agg.ByCategory {
		count += b.ItemCount
		sum += b.Total
	}
	if count != len(items) {
		t.Errorf("bucket item counts = %d, want %d", count, len(items))
	}
	if !approx(sum, agg.Total) {
		t.Errorf("bucket sum = %v, total = %v", sum, agg.Total)
	}

	var uncategorized *CategorySummary
	for i := range agg.ByCategory {
		if agg.ByCategory[i].Category == UncategorizedLabel {
			uncategorized = &agg.ByCategory[i]
		}
	}
	if uncategorized == nil || uncategorized.ItemCount != 2 {
		t.Errorf("expected 2 uncategorized items, got %+v", agg.ByCategory)
	}
}

// P7: equal totals keep first-seen order.
func TestAggregateScope_TiesKeepFirstSeen(t *testing.T) {
	est := NewEstimator(DefaultTaxRules())
	items := []Item{
		{Category: "Permits & Fees", Quantity: 1, UnitPrice: 100},
		{Category: "Labor", Quantity: 1, UnitPrice: 100},
		{Category: "Equipment", Quantity: 1, UnitPrice: 500},
		{Category: "Miscellaneous", Quantity: 2, UnitPrice: 50},
	}
	agg := est.AggregateScope(items)
	want := []string{"Equipment", "Permits & Fees", "Labor", "Miscellaneous"}
	for i, b := range agg.ByCategory {
		if b.Category != want[i] {
			t.Fatalf("bucket order = %+v, want %v", agg.ByCategory, want)
		}
	}
}

func TestAggregateProject(t *testing.T) {
	est := NewEstimator(DefaultTaxRules())
	scopes := []ScopeItems{
		{Scope: Scope{ID: "s2", Name: "Framing"}, Items: scenarioItems()},
		{Scope: Scope{ID: "s1", Name: "Excavation"}, Items: []Item{
			{Category: "Trucking & Aggregates", Quantity: 10, UnitPrice: 100},
			{Category: "Labor", Quantity: 10, UnitPrice: 50},
		}},
		{Scope: Scope{ID: "s3", Name: "Empty"}},
	}
	p := est.AggregateProject(scopes)

	// 424.2 + 1070 + 500
	if !approx(p.GrandTotal, 1994.2) {
		t.Errorf("GrandTotal = %v, want 1994.2", p.GrandTotal)
	}
	if p.RoundedGrandTotal() != 1994.2 {
		t.Errorf("RoundedGrandTotal = %v", p.RoundedGrandTotal())
	}

	if len(p.Scopes) != 3 {
		t.Fatalf("expected 3 scope rows, got %d", len(p.Scopes))
	}
	wantOrder := []string{"s2", "s1", "s3"}
	for i, s := range p.Scopes {
		if s.ScopeID != wantOrder[i] {
			t.Errorf("scope row %d = %s, want %s", i, s.ScopeID, wantOrder[i])
		}
	}
	if p.Scopes[2].Total != 0 || p.Scopes[2].ItemCount != 0 {
		t.Errorf("empty scope row = %+v", p.Scopes[2])
	}

	if p.ByCategory[0].Category != "Trucking & Aggregates" || !approx(p.ByCategory[0].Total, 1070) {
		t.Errorf("top category = %+v, want Trucking & Aggregates 1070", p.ByCategory[0])
	}
	var labor CategorySummary
	for _, b := range p.ByCategory {
		if b.Category == "Labor" {
			labor = b
		}
	}
	if labor.ItemCount != 2 || !approx(labor.Total, 860) {
		t.Errorf("combined Labor bucket = %+v, want 2 items / 860", labor)
	}

	var sum float64
	for _, b := range p.ByCategory {
		sum += b.Total
	}
	if !approx(sum, p.GrandTotal) {
		t.Errorf("category sum %v != grand total %v", sum, p.GrandTotal)
	}
}

func TestAggregateProject_Empty(t *testing.T) {
	est := NewEstimator(DefaultTaxRules())
	p := est.AggregateProject(nil)
	if p.GrandTotal != 0 || len(p.ByCategory) != 0 || len(p.Scopes) != 0 {
		t.Errorf("empty project = %+v", p)
	}
}
