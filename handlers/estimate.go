package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"norskk/services"
	"norskk/store"
	"norskk/templates"
)

type estimateScope struct {
	Scope services.Scope        `json:"scope"`
	Items []services.PricedItem `json:"items"`
	Total float64               `json:"total"`
}

type estimateResponse struct {
	Project    services.Project           `json:"project"`
	GrandTotal float64                    `json:"grand_total"`
	ByCategory []services.CategorySummary `json:"by_category"`
	Scopes     []estimateScope            `json:"scopes"`
}

// loadEstimate fetches the project and its fully loaded estimate.
func loadEstimate(ctx context.Context, s *store.PocketBase, est *services.Estimator, projectID string, concurrency int) (services.Project, services.ProjectView, error) {
	project, err := s.LoadProject(ctx, projectID)
	if err != nil {
		return services.Project{}, services.ProjectView{}, err
	}
	view, err := est.LoadProjectEstimate(ctx, s, projectID, concurrency)
	if err != nil {
		return services.Project{}, services.ProjectView{}, err
	}
	return project, view, nil
}

func estimateScopes(est *services.Estimator, view services.ProjectView) []estimateScope {
	out := make([]estimateScope, 0, len(view.Scopes))
	for i, s := range view.Scopes {
		out = append(out, estimateScope{
			Scope: s.Scope,
			Items: est.Price(s.Items),
			Total: view.Estimate.Scopes[i].Total,
		})
	}
	return out
}

// estimateFailed maps a load error onto a response.
func estimateFailed(app *pocketbase.PocketBase, e *core.RequestEvent, handler, projectID string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrorToast(e, http.StatusNotFound, "Project not found")
	}
	app.Logger().Error(handler+": could not load estimate", "project", projectID, "error", err)
	return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
}

// HandleEstimateView renders the project estimate page.
func HandleEstimateView(app *pocketbase.PocketBase, est *services.Estimator, concurrency int) func(*core.RequestEvent) error {
	s := store.New(app)
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		project, view, err := loadEstimate(e.Request.Context(), s, est, projectID, concurrency)
		if err != nil {
			return estimateFailed(app, e, "estimate_view", projectID, err)
		}

		data := templates.EstimatePageData{
			Project:    project,
			ByCategory: view.Estimate.ByCategory,
			GrandTotal: view.Estimate.GrandTotal,
		}
		for _, sc := range estimateScopes(est, view) {
			data.Scopes = append(data.Scopes, templates.EstimateScope{Scope: sc.Scope, Items: sc.Items, Total: sc.Total})
		}

		component := templates.EstimatePage(data)
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandleEstimateJSON returns the project estimate as JSON. The grand total is
// rounded to cents once, here.
func HandleEstimateJSON(app *pocketbase.PocketBase, est *services.Estimator, concurrency int) func(*core.RequestEvent) error {
	s := store.New(app)
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		project, view, err := loadEstimate(e.Request.Context(), s, est, projectID, concurrency)
		if err != nil {
			return estimateFailed(app, e, "estimate_json", projectID, err)
		}

		return e.JSON(http.StatusOK, estimateResponse{
			Project:    project,
			GrandTotal: view.Estimate.RoundedGrandTotal(),
			ByCategory: view.Estimate.ByCategory,
			Scopes:     estimateScopes(est, view),
		})
	}
}
