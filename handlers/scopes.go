package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"norskk/services"
)

// HandleScopeSave adds a scope to a project.
func HandleScopeSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Project not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}
		form := scopeFormFromRequest(e.Request)
		if err := form.Validate(); err != nil {
			return validationFailed(e, err)
		}

		scopesCol, err := app.FindCollectionByNameOrId("scopes")
		if err != nil {
			app.Logger().Error("scope_create: could not find scopes collection", "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		record := core.NewRecord(scopesCol)
		record.Set("project", projectID)
		record.Set("name", form.Name)
		record.Set("description", form.Description)
		if err := app.Save(record); err != nil {
			app.Logger().Error("scope_create: could not save scope", "project", projectID, "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, ToastSuccess, "Scope created")
		return e.JSON(http.StatusCreated, services.Scope{
			ID:          record.Id,
			ProjectID:   projectID,
			Name:        form.Name,
			Description: form.Description,
		})
	}
}

// HandleScopeDelete deletes a scope and, by cascade, its items.
func HandleScopeDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		scopeID := e.Request.PathValue("scopeId")
		if projectID == "" || scopeID == "" {
			return ErrorToast(e, http.StatusBadRequest, "Missing required IDs")
		}

		record, err := app.FindRecordById("scopes", scopeID)
		if err != nil || record.GetString("project") != projectID {
			return ErrorToast(e, http.StatusNotFound, "Scope not found")
		}

		if err := app.Delete(record); err != nil {
			app.Logger().Error("scope_delete: error deleting scope", "scope", scopeID, "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, ToastSuccess, "Scope deleted")
		return e.NoContent(http.StatusNoContent)
	}
}
