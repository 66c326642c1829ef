package collections_test

import (
	"testing"

	"norskk/collections"
	"norskk/testhelpers"

	"github.com/pocketbase/pocketbase/core"
)

// expectedCollections is the full list of collections that Setup() must create.
var expectedCollections = []string{"projects", "scopes", "items"}

func TestSetup_AllCollectionsExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q not found after Setup(): %v", name, err)
			continue
		}
		if col.Name != name {
			t.Errorf("expected collection name %q, got %q", name, col.Name)
		}
	}
}

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t) // Setup() already called once via NewTestApp

	ids := make(map[string]string)
	for _, name := range expectedCollections {
		col, _ := app.FindCollectionByNameOrId(name)
		ids[name] = col.Id
	}

	collections.Setup(app)

	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q missing after second Setup(): %v", name, err)
			continue
		}
		if col.Id != ids[name] {
			t.Errorf("collection %q id changed after second Setup(): %s -> %s", name, ids[name], col.Id)
		}
	}
}

func TestSetup_Fields(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	tests := []struct {
		collection string
		fields     []string
	}{
		{"projects", []string{"name", "address", "developer", "estimator", "start_date", "end_date", "created", "updated"}},
		{"scopes", []string{"project", "name", "description", "created", "updated"}},
		{"items", []string{"scope", "category", "name", "quantity", "unit", "unit_price", "pst", "markup_percent", "notes"}},
	}
	for _, tt := range tests {
		t.Run(tt.collection, func(t *testing.T) {
			col, err := app.FindCollectionByNameOrId(tt.collection)
			if err != nil {
				t.Fatalf("collection %q not found: %v", tt.collection, err)
			}
			for _, f := range tt.fields {
				if col.Fields.GetByName(f) == nil {
					t.Errorf("%s: missing field %q", tt.collection, f)
				}
			}
		})
	}
}

func TestSetup_RelationsCascade(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	tests := []struct {
		collection string
		field      string
		target     string
	}{
		{"scopes", "project", "projects"},
		{"items", "scope", "scopes"},
	}
	for _, tt := range tests {
		col, _ := app.FindCollectionByNameOrId(tt.collection)
		target, _ := app.FindCollectionByNameOrId(tt.target)

		rf, ok := col.Fields.GetByName(tt.field).(*core.RelationField)
		if !ok {
			t.Errorf("%s.%s is not a RelationField", tt.collection, tt.field)
			continue
		}
		if rf.CollectionId != target.Id {
			t.Errorf("%s.%s points at %s, want %s", tt.collection, tt.field, rf.CollectionId, target.Id)
		}
		if !rf.CascadeDelete {
			t.Errorf("%s.%s: expected CascadeDelete", tt.collection, tt.field)
		}
		if rf.MaxSelect != 1 {
			t.Errorf("%s.%s: expected MaxSelect=1, got %d", tt.collection, tt.field, rf.MaxSelect)
		}
	}
}

func TestSetup_DeleteProjectCascades(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Cascade")
	scope := testhelpers.CreateTestScope(t, app, proj.Id, "Framing")
	testhelpers.CreateTestItem(t, app, scope.Id, testhelpers.TestItem{Category: "Labor", Name: "Crew", Quantity: 8, UnitPrice: 45})

	if err := app.Delete(proj); err != nil {
		t.Fatalf("delete project: %v", err)
	}

	for _, name := range []string{"scopes", "items"} {
		col, _ := app.FindCollectionByNameOrId(name)
		recs, err := app.FindAllRecords(col)
		if err != nil {
			t.Fatalf("query %s: %v", name, err)
		}
		if len(recs) != 0 {
			t.Errorf("expected %s to be empty after project delete, got %d", name, len(recs))
		}
	}
}
