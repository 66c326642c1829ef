package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

type fakeStore struct {
	scopes   []Scope
	items    map[string][]Item
	failOn   string
	inflight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeStore) LoadScopesForProject(_ context.Context, projectID string) ([]Scope, error) {
	if projectID == "missing" {
		return nil, errors.New("project not found")
	}
	return f.scopes, nil
}

func (f *fakeStore) LoadItems(ctx context.Context, scopeID string) ([]Item, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if scopeID == f.failOn {
		return nil, errors.New("read timeout")
	}
	return f.items[scopeID], nil
}

func TestLoadProjectEstimate(t *testing.T) {
	store := &fakeStore{
		scopes: []Scope{{ID: "s1", Name: "Concrete"}, {ID: "s2", Name: "Framing"}},
		items: map[string][]Item{
			"s1": {
				{ID: "b", Category: "Materials", Name: "Concrete", Quantity: 10, UnitPrice: 100},
				{ID: "a", Category: "Labor", Name: "Finisher", Quantity: 8, UnitPrice: 50},
			},
			"s2": scenarioItems(),
		},
	}
	est := NewEstimator(DefaultTaxRules())

	view, err := est.LoadProjectEstimate(context.Background(), store, "p1", 2)
	if err != nil {
		t.Fatalf("LoadProjectEstimate() error = %v", err)
	}
	if len(view.Scopes) != 2 || view.Scopes[0].Scope.ID != "s1" || view.Scopes[1].Scope.ID != "s2" {
		t.Fatalf("scope order not preserved: %+v", view.Scopes)
	}
	if view.Scopes[0].Items[0].ID != "a" {
		t.Errorf("items not in canonical order: %+v", view.Scopes[0].Items)
	}
	// 1070 + 400 + 424.2
	if !approx(view.Estimate.GrandTotal, 1894.2) {
		t.Errorf("GrandTotal = %v, want 1894.2", view.Estimate.GrandTotal)
	}
}

func TestLoadProjectEstimate_Errors(t *testing.T) {
	est := NewEstimator(DefaultTaxRules())

	if _, err := est.LoadProjectEstimate(context.Background(), &fakeStore{}, "missing", 0); err == nil {
		t.Error("expected error when scopes cannot be loaded")
	}

	store := &fakeStore{
		scopes: []Scope{{ID: "s1"}, {ID: "s2"}, {ID: "s3"}},
		items:  map[string][]Item{},
		failOn: "s2",
	}
	_, err := est.LoadProjectEstimate(context.Background(), store, "p1", 0)
	if err == nil {
		t.Fatal("expected item load failure to propagate")
	}
}

func TestLoadScopeItems_RespectsLimit(t *testing.T) {
	scopes := make([]Scope, 20)
	for i := range scopes {
		scopes[i] = Scope{ID: string(rune('a' + i))}
	}
	store := &fakeStore{scopes: scopes, items: map[string][]Item{}}

	got, err := LoadScopeItems(context.Background(), store, "p1", 3)
	if err != nil {
		t.Fatalf("LoadScopeItems() error = %v", err)
	}
	if len(got) != 20 {
		t.Errorf("expected 20 scopes, got %d", len(got))
	}
	if peak := store.peak.Load(); peak > 3 {
		t.Errorf("peak concurrency %d exceeds limit 3", peak)
	}
}

func TestLoadScopeItems_NoScopes(t *testing.T) {
	est := NewEstimator(DefaultTaxRules())
	view, err := est.LoadProjectEstimate(context.Background(), &fakeStore{}, "p1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Estimate.GrandTotal != 0 || len(view.Estimate.ByCategory) != 0 {
		t.Errorf("expected empty estimate, got %+v", view.Estimate)
	}
}
