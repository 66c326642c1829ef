package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"norskk/services"
	"norskk/store"
)

type itemResponse struct {
	Item  services.PricedItem    `json:"item"`
	Scope services.ScopeEstimate `json:"scope"`
}

type itemListResponse struct {
	Scope services.Scope      `json:"scope"`
	View  services.FilterView `json:"view"`
}

// scopeEstimate reloads a scope's items and aggregates them. Failures are
// logged and yield an empty estimate; the caller's write already succeeded.
func scopeEstimate(app *pocketbase.PocketBase, e *core.RequestEvent, s *store.PocketBase, est *services.Estimator, scopeID string) services.ScopeEstimate {
	items, err := s.LoadItems(e.Request.Context(), scopeID)
	if err != nil {
		app.Logger().Warn("items: could not reload scope", "scope", scopeID, "error", err)
		return services.ScopeEstimate{ByCategory: []services.CategorySummary{}}
	}
	return est.AggregateScope(items)
}

// HandleItemList returns the scope's items through the category/description
// filter given as ?category= and ?q=.
func HandleItemList(app *pocketbase.PocketBase, est *services.Estimator) func(*core.RequestEvent) error {
	s := store.New(app)
	return func(e *core.RequestEvent) error {
		ctx := e.Request.Context()
		scopeID := e.Request.PathValue("scopeId")

		scope, err := s.LoadScope(ctx, scopeID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrorToast(e, http.StatusNotFound, "Scope not found")
			}
			app.Logger().Error("item_list: could not load scope", "scope", scopeID, "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		items, err := s.LoadItems(ctx, scopeID)
		if err != nil {
			app.Logger().Error("item_list: could not load items", "scope", scopeID, "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		q := e.Request.URL.Query()
		filter := services.ItemFilter{
			Category:    q.Get("category"),
			Description: q.Get("q"),
		}
		return e.JSON(http.StatusOK, itemListResponse{Scope: scope, View: est.View(items, filter)})
	}
}

// HandleItemSave creates an item in a scope. PST is derived for automatic
// categories before the first save.
func HandleItemSave(app *pocketbase.PocketBase, est *services.Estimator) func(*core.RequestEvent) error {
	s := store.New(app)
	return func(e *core.RequestEvent) error {
		ctx := e.Request.Context()
		scopeID := e.Request.PathValue("scopeId")
		if _, err := s.LoadScope(ctx, scopeID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrorToast(e, http.StatusNotFound, "Scope not found")
			}
			app.Logger().Error("item_create: could not load scope", "scope", scopeID, "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		item := applyItemForm(services.Item{ScopeID: scopeID}, e.Request.PostForm)
		if err := validateItem(item); err != nil {
			return validationFailed(e, err)
		}

		item, err := s.SaveItem(ctx, est.RecomputeTax(item))
		if err != nil {
			app.Logger().Error("item_create: could not save item", "scope", scopeID, "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, ToastSuccess, "Item added")
		return e.JSON(http.StatusCreated, itemResponse{
			Item:  est.Price([]services.Item{item})[0],
			Scope: scopeEstimate(app, e, s, est, scopeID),
		})
	}
}

// HandleItemUpdate applies a partial edit to an item and writes the derived
// PST back. A failed PST write does not fail the request: the edit is kept and
// a warning toast is shown.
func HandleItemUpdate(app *pocketbase.PocketBase, est *services.Estimator) func(*core.RequestEvent) error {
	s := store.New(app)
	return func(e *core.RequestEvent) error {
		ctx := e.Request.Context()
		scopeID := e.Request.PathValue("scopeId")
		itemID := e.Request.PathValue("itemId")

		before, err := s.LoadItem(ctx, itemID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			app.Logger().Error("item_update: could not load item", "item", itemID, "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		if err != nil || before.ScopeID != scopeID {
			return ErrorToast(e, http.StatusNotFound, "Item not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		after := applyItemForm(before, e.Request.PostForm)
		if est.Rules.IsAutomatic(after.Category) {
			// derived; a posted value is ignored
			after.PST = before.PST
		}
		if err := validateItem(after); err != nil {
			return validationFailed(e, err)
		}

		saved, err := s.SaveItem(ctx, after)
		if err != nil {
			app.Logger().Error("item_update: could not save item", "item", itemID, "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		synced, err := est.SyncTax(ctx, before, saved, s.PersistItemField)
		if err != nil {
			app.Logger().Warn("item_update: pst write-through failed", "item", itemID, "error", err)
			SetToast(e, ToastWarning, "Item saved, but PST could not be updated")
		} else {
			SetToast(e, ToastSuccess, "Item updated")
		}

		return e.JSON(http.StatusOK, itemResponse{
			Item:  est.Price([]services.Item{synced})[0],
			Scope: scopeEstimate(app, e, s, est, scopeID),
		})
	}
}

// HandleItemDelete removes an item and returns the refreshed scope estimate.
func HandleItemDelete(app *pocketbase.PocketBase, est *services.Estimator) func(*core.RequestEvent) error {
	s := store.New(app)
	return func(e *core.RequestEvent) error {
		scopeID := e.Request.PathValue("scopeId")
		itemID := e.Request.PathValue("itemId")
		if scopeID == "" || itemID == "" {
			return ErrorToast(e, http.StatusBadRequest, "Missing required IDs")
		}

		record, err := app.FindRecordById("items", itemID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			app.Logger().Error("item_delete: could not load item", "item", itemID, "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		if err != nil || record.GetString("scope") != scopeID {
			return ErrorToast(e, http.StatusNotFound, "Item not found")
		}

		if err := app.Delete(record); err != nil {
			app.Logger().Error("item_delete: error deleting item", "item", itemID, "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, ToastSuccess, "Item deleted")
		return e.JSON(http.StatusOK, map[string]any{
			"scope": scopeEstimate(app, e, s, est, scopeID),
		})
	}
}
