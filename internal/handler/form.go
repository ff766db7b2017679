package handler

import (
	"fmt"

	"github.com/deppfellow/formapplication/internal/entity"
	"github.com/deppfellow/formapplication/internal/errs"
	"github.com/deppfellow/formapplication/internal/lib/pagination"
	"github.com/deppfellow/formapplication/internal/lib/utils"
	"github.com/deppfellow/formapplication/internal/server"
	"github.com/deppfellow/formapplication/internal/service"
	"github.com/deppfellow/formapplication/internal/validation"
	"github.com/labstack/echo/v4"
)

// FormsPath is the collection URL of the form resource.
const FormsPath = "/api/form-v-1-s"

// FormRequest is the body of create and update requests. ID is nil only
// when the id is missing or null; "" counts as a submitted id.
type FormRequest struct {
	ID         *string         `json:"id"`
	CustomerID string          `json:"customerId"`
	FormType   entity.FormType `json:"formType" validate:"omitempty,formtype"`
}

func (r *FormRequest) Validate() error {
	return validation.Struct(r)
}

func (r *FormRequest) toEntity() entity.Form {
	form := entity.Form{
		CustomerID: r.CustomerID,
		FormType:   r.FormType,
	}
	if r.ID != nil {
		form.ID = *r.ID
	}
	return form
}

// CreateFormRequest is the body of POST /api/form-v-1-s.
type CreateFormRequest struct {
	FormRequest
}

// UpdateFormRequest is the body of PUT /api/form-v-1-s.
type UpdateFormRequest struct {
	FormRequest
}

// ListFormsRequest carries the pageable query. Page and size are kept as
// strings so malformed values fall back to defaults instead of failing the
// bind.
type ListFormsRequest struct {
	Page string   `query:"page"`
	Size string   `query:"size"`
	Sort []string `query:"sort"`
}

func (r *ListFormsRequest) Validate() error {
	var errors validation.CustomValidationErrors
	for _, order := range pagination.ParseSort(r.Sort) {
		if !entity.IsFormSortProperty(order.Property) {
			errors = append(errors, validation.CustomValidationError{
				Field:   "sort",
				Message: fmt.Sprintf("unknown property: %s", order.Property),
			})
		}
	}
	if len(errors) > 0 {
		return errors
	}
	return nil
}

// PageRequest converts the query into a normalized page request.
func (r *ListFormsRequest) PageRequest() pagination.PageRequest {
	return pagination.NewPageRequest(
		pagination.ParseInt(r.Page, pagination.DefaultPage),
		pagination.ParseInt(r.Size, pagination.DefaultSize),
		pagination.ParseSort(r.Sort),
	)
}

// FormIDRequest addresses a single form by its path id.
type FormIDRequest struct {
	ID string `param:"id" validate:"required"`
}

func (r *FormIDRequest) Validate() error {
	return validation.Struct(r)
}

// FormHandler serves the form resource.
type FormHandler struct {
	Handler
	formService *service.FormService
}

func NewFormHandler(s *server.Server, formService *service.FormService) *FormHandler {
	return &FormHandler{
		Handler:     NewHandler(s),
		formService: formService,
	}
}

func (h *FormHandler) appName() string {
	return h.server.Config.Primary.AppName
}

// CreateForm persists a new form. A submitted id is rejected with the
// idexists alert since ids are always assigned by the store.
func (h *FormHandler) CreateForm(c echo.Context, req *CreateFormRequest) (entity.Form, error) {
	if req.ID != nil {
		return entity.Form{}, errs.NewBadRequestAlertError(
			"A new formV1 cannot already have an ID", entity.FormEntityName, errs.ErrorKeyIDExists)
	}

	result, err := h.formService.Save(c.Request().Context(), req.toEntity())
	if err != nil {
		return entity.Form{}, err
	}

	headers := c.Response().Header()
	headers.Set(echo.HeaderLocation, FormsPath+"/"+result.ID)
	utils.CopyHeaders(headers, utils.EntityCreationAlert(h.appName(), entity.FormEntityName, result.ID))

	return result, nil
}

// UpdateForm replaces the form with the submitted id, creating it when no
// form has that id yet. A missing id is rejected with the idnull alert; an
// empty one is stored under a newly assigned id.
func (h *FormHandler) UpdateForm(c echo.Context, req *UpdateFormRequest) (entity.Form, error) {
	if req.ID == nil {
		return entity.Form{}, errs.NewBadRequestAlertError("Invalid id", entity.FormEntityName, errs.ErrorKeyIDNull)
	}

	result, err := h.formService.Save(c.Request().Context(), req.toEntity())
	if err != nil {
		return entity.Form{}, err
	}

	utils.CopyHeaders(c.Response().Header(), utils.EntityUpdateAlert(h.appName(), entity.FormEntityName, result.ID))

	return result, nil
}

// ListForms returns one page of forms with the pagination headers.
func (h *FormHandler) ListForms(c echo.Context, req *ListFormsRequest) ([]entity.Form, error) {
	page, err := h.formService.FindAll(c.Request().Context(), req.PageRequest())
	if err != nil {
		return nil, err
	}

	utils.CopyHeaders(c.Response().Header(), pagination.Headers(page, FormsPath))

	return page.Content, nil
}

// GetForm returns one form, or 404 when there is none with the id.
func (h *FormHandler) GetForm(c echo.Context, req *FormIDRequest) (entity.Form, error) {
	form, found, err := h.formService.FindOne(c.Request().Context(), req.ID)
	if err != nil {
		return entity.Form{}, err
	}
	if !found {
		return entity.Form{}, errs.NewNotFoundError("formV1 not found", false, nil)
	}

	return form, nil
}

// DeleteForm removes the form with the id. Deleting an absent form
// succeeds the same way.
func (h *FormHandler) DeleteForm(c echo.Context, req *FormIDRequest) error {
	if err := h.formService.Delete(c.Request().Context(), req.ID); err != nil {
		return err
	}

	utils.CopyHeaders(c.Response().Header(), utils.EntityDeletionAlert(h.appName(), entity.FormEntityName, req.ID))

	return nil
}
