package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"norskk/services"
	"norskk/store"
)

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	return strings.NewReplacer(" ", "-", "/", "-", "\\", "-", ":", "-", `"`, "").Replace(s)
}

type exportFormat struct {
	ext         string
	contentType string
	generate    func(services.ExportData) ([]byte, error)
}

var (
	excelExport = exportFormat{
		ext:         "xlsx",
		contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		generate:    services.GenerateExcel,
	}
	pdfExport = exportFormat{
		ext:         "pdf",
		contentType: "application/pdf",
		generate:    services.GeneratePDF,
	}
)

// HandleEstimateExportExcel downloads the project estimate as an Excel workbook.
func HandleEstimateExportExcel(app *pocketbase.PocketBase, est *services.Estimator, concurrency int) func(*core.RequestEvent) error {
	return handleEstimateExport(app, est, concurrency, excelExport)
}

// HandleEstimateExportPDF downloads the project estimate as a PDF.
func HandleEstimateExportPDF(app *pocketbase.PocketBase, est *services.Estimator, concurrency int) func(*core.RequestEvent) error {
	return handleEstimateExport(app, est, concurrency, pdfExport)
}

func handleEstimateExport(app *pocketbase.PocketBase, est *services.Estimator, concurrency int, format exportFormat) func(*core.RequestEvent) error {
	s := store.New(app)
	handler := "export_" + format.ext
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if projectID == "" {
			return e.String(http.StatusBadRequest, "Missing project ID")
		}

		project, view, err := loadEstimate(e.Request.Context(), s, est, projectID, concurrency)
		if err != nil {
			return estimateFailed(app, e, handler, projectID, err)
		}

		now := time.Now()
		data := est.BuildExportData(project, view, now.Format("2006-01-02"))
		out, err := format.generate(data)
		if err != nil {
			app.Logger().Error(handler+": failed to generate", "project", projectID, "error", err)
			return e.String(http.StatusInternalServerError, "Failed to generate export file")
		}

		filename := fmt.Sprintf("Estimate_%s_%s.%s", sanitizeFilename(project.Name), now.Format("20060102"), format.ext)

		e.Response.Header().Set("Content-Type", format.contentType)
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		_, err = e.Response.Write(out)
		return err
	}
}
