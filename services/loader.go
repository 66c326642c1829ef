package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// EstimateStore is the read side of the persistence collaborator.
type EstimateStore interface {
	LoadScopesForProject(ctx context.Context, projectID string) ([]Scope, error)
	LoadItems(ctx context.Context, scopeID string) ([]Item, error)
}

// DefaultLoadConcurrency bounds the number of scopes read at once.
const DefaultLoadConcurrency = 8

// LoadScopeItems loads every scope of a project and, in parallel, each scope's
// items. Results keep the scope order returned by the store and every item list
// is in canonical order.
func LoadScopeItems(ctx context.Context, store EstimateStore, projectID string, concurrency int) ([]ScopeItems, error) {
	scopes, err := store.LoadScopesForProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load scopes for project %s: %w", projectID, err)
	}

	if concurrency <= 0 {
		concurrency = DefaultLoadConcurrency
	}
	result := make([]ScopeItems, len(scopes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, s := range scopes {
		g.Go(func() error {
			items, err := store.LoadItems(gctx, s.ID)
			if err != nil {
				return fmt.Errorf("load items for scope %s: %w", s.ID, err)
			}
			result[i] = ScopeItems{Scope: s, Items: SortItems(items)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// ProjectView is a fully loaded and priced project estimate.
type ProjectView struct {
	Estimate ProjectEstimate
	Scopes   []ScopeItems
}

// LoadProjectEstimate loads a project's scopes and items and aggregates them.
func (e *Estimator) LoadProjectEstimate(ctx context.Context, store EstimateStore, projectID string, concurrency int) (ProjectView, error) {
	scopes, err := LoadScopeItems(ctx, store, projectID, concurrency)
	if err != nil {
		return ProjectView{}, err
	}
	return ProjectView{
		Estimate: e.AggregateProject(scopes),
		Scopes:   scopes,
	}, nil
}
