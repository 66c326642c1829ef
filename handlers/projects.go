package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"norskk/services"
	"norskk/store"
)

type projectSummary struct {
	services.Project
	ScopeCount int     `json:"scope_count"`
	GrandTotal float64 `json:"grand_total"`
}

// HandleProjectList returns every project with its scope count and grand total.
func HandleProjectList(app *pocketbase.PocketBase, est *services.Estimator, concurrency int) func(*core.RequestEvent) error {
	s := store.New(app)
	return func(e *core.RequestEvent) error {
		ctx := e.Request.Context()
		projects, err := s.ListProjects(ctx)
		if err != nil {
			app.Logger().Error("project_list: could not list projects", "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		out := make([]projectSummary, 0, len(projects))
		for _, p := range projects {
			view, err := est.LoadProjectEstimate(ctx, s, p.ID, concurrency)
			if err != nil {
				app.Logger().Error("project_list: could not load estimate", "project", p.ID, "error", err)
				return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
			}
			out = append(out, projectSummary{
				Project:    p,
				ScopeCount: len(view.Scopes),
				GrandTotal: view.Estimate.RoundedGrandTotal(),
			})
		}
		return e.JSON(http.StatusOK, out)
	}
}

// HandleProjectSave creates a project from form input.
func HandleProjectSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		form := projectFormFromRequest(e.Request)
		if err := form.Validate(); err != nil {
			return validationFailed(e, err)
		}

		existing, _ := app.FindRecordsByFilter(
			"projects",
			"name = {:name}",
			"", 1, 0,
			map[string]any{"name": form.Name},
		)
		if len(existing) > 0 {
			SetToast(e, ToastWarning, "Please fix the errors below")
			return e.JSON(http.StatusUnprocessableEntity, map[string]any{
				"errors": map[string]string{"name": "A project with this name already exists"},
			})
		}

		projectsCol, err := app.FindCollectionByNameOrId("projects")
		if err != nil {
			app.Logger().Error("project_create: could not find projects collection", "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		record := core.NewRecord(projectsCol)
		record.Set("name", form.Name)
		record.Set("address", form.Address)
		record.Set("developer", form.Developer)
		record.Set("estimator", form.Estimator)
		record.Set("start_date", form.StartDate)
		record.Set("end_date", form.EndDate)

		if err := app.Save(record); err != nil {
			app.Logger().Error("project_create: could not save project", "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, ToastSuccess, "Project created successfully")
		return e.JSON(http.StatusCreated, services.Project{
			ID:        record.Id,
			Name:      form.Name,
			Address:   form.Address,
			Developer: form.Developer,
			Estimator: form.Estimator,
			StartDate: form.StartDate,
			EndDate:   form.EndDate,
		})
	}
}

// HandleProjectDelete deletes a project. Its scopes and their items go with it.
func HandleProjectDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if projectID == "" {
			return e.String(http.StatusBadRequest, "Missing project ID")
		}

		projectRecord, err := app.FindRecordById("projects", projectID)
		if err != nil {
			app.Logger().Warn("project_delete: could not find project", "project", projectID, "error", err)
			return e.String(http.StatusNotFound, "Project not found")
		}

		if err := app.Delete(projectRecord); err != nil {
			app.Logger().Error("project_delete: failed to delete project", "project", projectID, "error", err)
			return e.String(http.StatusInternalServerError, "Failed to delete project")
		}

		app.Logger().Info("project_delete: deleted project", "project", projectID)

		if e.Request.Header.Get("HX-Request") == "true" {
			e.Response.Header().Set("HX-Redirect", "/projects")
			return e.String(http.StatusOK, "")
		}
		return e.NoContent(http.StatusNoContent)
	}
}
