package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"norskk/services"
	"norskk/store"
)

const maxImportSize = 10 << 20

// HandleItemImport parses an uploaded .csv or .xlsx and adds its rows to the
// scope. Nothing is written when any row is invalid; the response then lists
// the row errors.
func HandleItemImport(app *pocketbase.PocketBase, est *services.Estimator) func(*core.RequestEvent) error {
	s := store.New(app)
	return func(e *core.RequestEvent) error {
		ctx := e.Request.Context()
		scopeID := e.Request.PathValue("scopeId")
		if _, err := s.LoadScope(ctx, scopeID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Scope not found")
		}

		if err := e.Request.ParseMultipartForm(maxImportSize); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "File too large or invalid form data")
		}
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		result, err := services.ParseItemFile(file, header.Filename)
		if err != nil {
			app.Logger().Warn("item_import: could not parse upload", "file", header.Filename, "error", err)
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}
		if result.ErrorRows > 0 {
			SetToast(e, ToastWarning, "Some rows could not be imported")
			return e.JSON(http.StatusUnprocessableEntity, result)
		}

		err = app.RunInTransaction(func(txApp core.App) error {
			tx := store.New(txApp)
			for _, item := range result.Items {
				item.ScopeID = scopeID
				if _, err := tx.SaveItem(ctx, est.RecomputeTax(item)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			app.Logger().Error("item_import: could not save items", "scope", scopeID, "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		app.Logger().Info("item_import: imported items", "scope", scopeID, "count", len(result.Items))
		SetToast(e, ToastSuccess, "Items imported")
		return e.JSON(http.StatusCreated, result)
	}
}

// HandleItemImportTemplate downloads a blank import workbook.
func HandleItemImportTemplate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		xlsxBytes, err := services.GenerateImportTemplate()
		if err != nil {
			app.Logger().Error("item_template: failed to generate", "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		e.Response.Header().Set("Content-Type", excelExport.contentType)
		e.Response.Header().Set("Content-Disposition", `attachment; filename="Item_Import_Template.xlsx"`)
		_, err = e.Response.Write(xlsxBytes)
		return err
	}
}

// HandleItemImportErrors turns posted row errors into a downloadable workbook.
func HandleItemImportErrors(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var rowErrors []services.ValidationError
		if err := json.NewDecoder(e.Request.Body).Decode(&rowErrors); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid error data")
		}

		xlsxBytes, err := services.GenerateErrorReport(rowErrors)
		if err != nil {
			app.Logger().Error("item_import_errors: failed to generate", "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		e.Response.Header().Set("Content-Type", excelExport.contentType)
		e.Response.Header().Set("Content-Disposition", `attachment; filename="Item_Import_Errors.xlsx"`)
		_, err = e.Response.Write(xlsxBytes)
		return err
	}
}
