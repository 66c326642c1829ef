// Package store reads and writes the estimate chain (projects, scopes and
// items) through PocketBase records.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"norskk/services"
)

var (
	// ErrNotFound is returned when a project, scope or item id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownField is returned by PersistItemField for fields outside the item schema.
	ErrUnknownField = errors.New("unknown item field")
)

// itemFields lists the item columns that may be written one at a time and
// whether each one is numeric.
var itemFields = map[string]bool{
	"category":       false,
	"name":           false,
	"quantity":       true,
	"unit":           false,
	"unit_price":     true,
	"pst":            true,
	"markup_percent": true,
	"notes":          false,
}

// PocketBase implements services.EstimateStore on top of a PocketBase app.
type PocketBase struct {
	app core.App
}

// New returns a store backed by app.
func New(app core.App) *PocketBase {
	return &PocketBase{app: app}
}

var _ services.EstimateStore = (*PocketBase)(nil)

// ListProjects returns every project ordered by name.
func (s *PocketBase) ListProjects(ctx context.Context) ([]services.Project, error) {
	var records []*core.Record
	err := s.app.RecordQuery("projects").
		OrderBy("name ASC", "id ASC").
		WithContext(ctx).
		All(&records)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	out := make([]services.Project, 0, len(records))
	for _, r := range records {
		out = append(out, recordToProject(r))
	}
	return out, nil
}

// LoadProject returns the project with the given id.
func (s *PocketBase) LoadProject(ctx context.Context, projectID string) (services.Project, error) {
	rec, err := s.find(ctx, "projects", projectID)
	if err != nil {
		return services.Project{}, err
	}
	return recordToProject(rec), nil
}

// LoadScope returns the scope with the given id.
func (s *PocketBase) LoadScope(ctx context.Context, scopeID string) (services.Scope, error) {
	rec, err := s.find(ctx, "scopes", scopeID)
	if err != nil {
		return services.Scope{}, err
	}
	return recordToScope(rec), nil
}

// LoadScopesForProject returns the project's scopes in canonical order.
func (s *PocketBase) LoadScopesForProject(ctx context.Context, projectID string) ([]services.Scope, error) {
	var records []*core.Record
	err := s.app.RecordQuery("scopes").
		AndWhere(dbx.HashExp{"project": projectID}).
		WithContext(ctx).
		All(&records)
	if err != nil {
		return nil, fmt.Errorf("load scopes for project %s: %w", projectID, err)
	}

	scopes := make([]services.Scope, 0, len(records))
	for _, r := range records {
		scopes = append(scopes, recordToScope(r))
	}
	return services.SortScopes(scopes), nil
}

// LoadItems returns the scope's items in canonical order.
func (s *PocketBase) LoadItems(ctx context.Context, scopeID string) ([]services.Item, error) {
	var records []*core.Record
	err := s.app.RecordQuery("items").
		AndWhere(dbx.HashExp{"scope": scopeID}).
		WithContext(ctx).
		All(&records)
	if err != nil {
		return nil, fmt.Errorf("load items for scope %s: %w", scopeID, err)
	}

	items := make([]services.Item, 0, len(records))
	for _, r := range records {
		items = append(items, recordToItem(r))
	}
	return services.SortItems(items), nil
}

// LoadItem returns the item with the given id.
func (s *PocketBase) LoadItem(ctx context.Context, itemID string) (services.Item, error) {
	rec, err := s.find(ctx, "items", itemID)
	if err != nil {
		return services.Item{}, err
	}
	return recordToItem(rec), nil
}

// SaveItem creates the item when ID is empty and updates it otherwise. The
// returned item carries the persisted id.
func (s *PocketBase) SaveItem(ctx context.Context, item services.Item) (services.Item, error) {
	if err := ctx.Err(); err != nil {
		return item, err
	}

	var rec *core.Record
	if item.ID == "" {
		col, err := s.app.FindCachedCollectionByNameOrId("items")
		if err != nil {
			return item, fmt.Errorf("items collection: %w", err)
		}
		rec = core.NewRecord(col)
	} else {
		var err error
		rec, err = s.find(ctx, "items", item.ID)
		if err != nil {
			return item, err
		}
	}

	rec.Set("scope", item.ScopeID)
	rec.Set("category", item.Category)
	rec.Set("name", item.Name)
	rec.Set("quantity", item.Quantity)
	rec.Set("unit", item.Unit)
	rec.Set("unit_price", item.UnitPrice)
	rec.Set("pst", item.PST)
	rec.Set("markup_percent", item.MarkupPercent)
	rec.Set("notes", item.Notes)

	if err := s.app.Save(rec); err != nil {
		return item, fmt.Errorf("save item %q: %w", item.Name, err)
	}
	item.ID = rec.Id
	return item, nil
}

// PersistItemField writes a single item field. Numeric fields are coerced the
// same way form input is. It satisfies services.FieldWriter.
func (s *PocketBase) PersistItemField(ctx context.Context, itemID, field string, value any) error {
	numeric, ok := itemFields[field]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	rec, err := s.find(ctx, "items", itemID)
	if err != nil {
		return err
	}

	if numeric {
		rec.Set(field, services.ParseAmount(value))
	} else {
		rec.Set(field, value)
	}

	if err := s.app.Save(rec); err != nil {
		s.app.Logger().Warn("store: item field write failed",
			"item", itemID, "field", field, "error", err)
		return fmt.Errorf("save item %s field %s: %w", itemID, field, err)
	}
	return nil
}

func (s *PocketBase) find(ctx context.Context, collection, id string) (*core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := s.app.FindRecordById(collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %s: %w", collection, id, ErrNotFound)
		}
		return nil, fmt.Errorf("find %s %s: %w", collection, id, err)
	}
	return rec, nil
}

func recordToProject(r *core.Record) services.Project {
	return services.Project{
		ID:        r.Id,
		Name:      r.GetString("name"),
		Address:   r.GetString("address"),
		Developer: r.GetString("developer"),
		Estimator: r.GetString("estimator"),
		StartDate: formatDate(r.GetDateTime("start_date")),
		EndDate:   formatDate(r.GetDateTime("end_date")),
	}
}

func recordToScope(r *core.Record) services.Scope {
	return services.Scope{
		ID:          r.Id,
		ProjectID:   r.GetString("project"),
		Name:        r.GetString("name"),
		Description: r.GetString("description"),
		UpdatedDate: formatDate(r.GetDateTime("updated")),
	}
}

func recordToItem(r *core.Record) services.Item {
	return services.Item{
		ID:            r.Id,
		ScopeID:       r.GetString("scope"),
		Category:      r.GetString("category"),
		Name:          r.GetString("name"),
		Quantity:      services.ParseAmount(r.Get("quantity")),
		Unit:          r.GetString("unit"),
		UnitPrice:     services.ParseAmount(r.Get("unit_price")),
		PST:           services.ParseAmount(r.Get("pst")),
		MarkupPercent: services.ParseAmount(r.Get("markup_percent")),
		Notes:         r.GetString("notes"),
	}
}

func formatDate(d types.DateTime) string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format("2006-01-02")
}
