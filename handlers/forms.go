package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"

	"norskk/services"
)

const dateLayout = "2006-01-02"

type projectForm struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Developer string `json:"developer"`
	Estimator string `json:"estimator"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func projectFormFromRequest(r *http.Request) projectForm {
	return projectForm{
		Name:      strings.TrimSpace(r.FormValue("name")),
		Address:   strings.TrimSpace(r.FormValue("address")),
		Developer: strings.TrimSpace(r.FormValue("developer")),
		Estimator: strings.TrimSpace(r.FormValue("estimator")),
		StartDate: strings.TrimSpace(r.FormValue("start_date")),
		EndDate:   strings.TrimSpace(r.FormValue("end_date")),
	}
}

func (f projectForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required.Error("Project name is required"), validation.RuneLength(1, 200)),
		validation.Field(&f.Address, validation.RuneLength(0, 300)),
		validation.Field(&f.StartDate, validation.Date(dateLayout).Error("Use YYYY-MM-DD")),
		validation.Field(&f.EndDate, validation.Date(dateLayout).Error("Use YYYY-MM-DD")),
	)
}

type scopeForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func scopeFormFromRequest(r *http.Request) scopeForm {
	return scopeForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
}

func (f scopeForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required.Error("Scope name is required"), validation.RuneLength(1, 200)),
		validation.Field(&f.Description, validation.RuneLength(0, 1000)),
	)
}

// itemForm validates the text fields of an item. Numeric fields are coerced
// leniently and never fail validation.
type itemForm struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Notes    string `json:"notes"`
}

func (f itemForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Category, validation.RuneLength(0, 100)),
		validation.Field(&f.Name, validation.Required.Error("Description is required"), validation.RuneLength(1, 300)),
		validation.Field(&f.Unit, validation.RuneLength(0, 20)),
		validation.Field(&f.Notes, validation.RuneLength(0, 2000)),
	)
}

func validateItem(item services.Item) error {
	return itemForm{Category: item.Category, Name: item.Name, Unit: item.Unit, Notes: item.Notes}.Validate()
}

// applyItemForm copies the fields present in form onto item. Absent fields keep
// their current value so PATCH requests can send a single column.
func applyItemForm(item services.Item, form url.Values) services.Item {
	text := func(key string, dst *string) {
		if _, ok := form[key]; ok {
			*dst = strings.TrimSpace(form.Get(key))
		}
	}
	number := func(key string, dst *float64) {
		if _, ok := form[key]; ok {
			*dst = services.ParseAmount(form.Get(key))
		}
	}
	text("category", &item.Category)
	text("name", &item.Name)
	text("unit", &item.Unit)
	text("notes", &item.Notes)
	number("quantity", &item.Quantity)
	number("unit_price", &item.UnitPrice)
	number("pst", &item.PST)
	number("markup_percent", &item.MarkupPercent)
	return item
}

// fieldErrors flattens a validation error into field → message.
func fieldErrors(err error) map[string]string {
	out := make(map[string]string)
	var ve validation.Errors
	if errors.As(err, &ve) {
		for field, fe := range ve {
			out[field] = fe.Error()
		}
		return out
	}
	out["form"] = err.Error()
	return out
}

// validationFailed answers a rejected form with 422 and the per-field messages.
func validationFailed(e *core.RequestEvent, err error) error {
	SetToast(e, ToastWarning, "Please fix the errors below")
	return e.JSON(http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrors(err)})
}
