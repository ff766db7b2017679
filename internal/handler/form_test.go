package handler_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/deppfellow/formapplication/internal/entity"
	"github.com/deppfellow/formapplication/internal/errs"
	"github.com/deppfellow/formapplication/internal/handler"
	"github.com/deppfellow/formapplication/internal/lib/pagination"
	"github.com/deppfellow/formapplication/internal/lib/utils"
	"github.com/deppfellow/formapplication/internal/testutil"
	. "github.com/onsi/gomega"
	"pgregory.net/rapid"
)

const (
	defaultCustomerID = "AAAAAAAAAA"
	updatedCustomerID = "BBBBBBBBBB"
)

var (
	alertHeader  = utils.AlertHeader(testutil.AppName)
	errorHeader  = utils.ErrorHeader(testutil.AppName)
	paramsHeader = utils.ParamsHeader(testutil.AppName)
)

func createForm(t *testing.T, g Gomega, app *testutil.TestApp, body interface{}) entity.Form {
	t.Helper()

	rec := testutil.DoRequest(app.Router, http.MethodPost, handler.FormsPath, body)
	g.Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
	return testutil.ParseResponse[entity.Form](t, rec)
}

func TestFormLifecycle(t *testing.T) {
	g := NewWithT(t)
	app := testutil.NewTestApp(t)

	rec := testutil.DoRequest(app.Router, http.MethodPost, handler.FormsPath, map[string]string{
		"customerId": defaultCustomerID,
		"formType":   "SURVEY",
	})
	g.Expect(rec.Code).To(Equal(http.StatusCreated))

	created := testutil.ParseResponse[entity.Form](t, rec)
	g.Expect(created.ID).NotTo(BeEmpty())
	g.Expect(created.CustomerID).To(Equal(defaultCustomerID))
	g.Expect(created.FormType).To(Equal(entity.FormTypeSurvey))
	g.Expect(rec.Header().Get("Location")).To(Equal(handler.FormsPath + "/" + created.ID))
	g.Expect(rec.Header().Get(alertHeader)).To(Equal(testutil.AppName + ".formV1.created"))
	g.Expect(rec.Header().Get(paramsHeader)).To(Equal(created.ID))

	rec = testutil.DoRequest(app.Router, http.MethodGet, handler.FormsPath+"/"+created.ID, nil)
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(testutil.ParseResponse[entity.Form](t, rec)).To(Equal(created))

	rec = testutil.DoRequest(app.Router, http.MethodDelete, handler.FormsPath+"/"+created.ID, nil)
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(rec.Body.Len()).To(BeZero())
	g.Expect(rec.Header().Get(alertHeader)).To(Equal(testutil.AppName + ".formV1.deleted"))
	g.Expect(rec.Header().Get(paramsHeader)).To(Equal(created.ID))

	rec = testutil.DoRequest(app.Router, http.MethodGet, handler.FormsPath+"/"+created.ID, nil)
	g.Expect(rec.Code).To(Equal(http.StatusNotFound))
	g.Expect(testutil.ParseResponse[errs.HTTPError](t, rec).Status).To(Equal(http.StatusNotFound))
}

func TestCreateFormWithIDIsRejected(t *testing.T) {
	g := NewWithT(t)
	app := testutil.NewTestApp(t)

	rec := testutil.DoRequest(app.Router, http.MethodPost, handler.FormsPath, map[string]string{
		"id":         "existing-id",
		"customerId": defaultCustomerID,
	})
	g.Expect(rec.Code).To(Equal(http.StatusBadRequest))
	g.Expect(rec.Header().Get(errorHeader)).To(Equal("error.idexists"))
	g.Expect(rec.Header().Get(paramsHeader)).To(Equal(entity.FormEntityName))

	body := testutil.ParseResponse[errs.HTTPError](t, rec)
	g.Expect(body.Code).To(Equal("error.idexists"))
	g.Expect(body.EntityName).To(Equal(entity.FormEntityName))

	rec = testutil.DoRequest(app.Router, http.MethodGet, handler.FormsPath, nil)
	g.Expect(rec.Header().Get(pagination.TotalCountHeader)).To(Equal("0"))
}

func TestCreateFormWithEmptyIDIsRejected(t *testing.T) {
	g := NewWithT(t)
	app := testutil.NewTestApp(t)

	rec := testutil.DoRequest(app.Router, http.MethodPost, handler.FormsPath, `{"id": "", "customerId": "AAAAAAAAAA"}`)
	g.Expect(rec.Code).To(Equal(http.StatusBadRequest))
	g.Expect(rec.Header().Get(errorHeader)).To(Equal("error.idexists"))

	rec = testutil.DoRequest(app.Router, http.MethodGet, handler.FormsPath, nil)
	g.Expect(rec.Header().Get(pagination.TotalCountHeader)).To(Equal("0"))
}

func TestCreateFormWithNullIDIsAccepted(t *testing.T) {
	g := NewWithT(t)
	app := testutil.NewTestApp(t)

	rec := testutil.DoRequest(app.Router, http.MethodPost, handler.FormsPath, `{"id": null, "customerId": "AAAAAAAAAA", "formType": null}`)
	g.Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
	g.Expect(rec.Body.String()).To(ContainSubstring(`"formType":null`))

	created := testutil.ParseResponse[entity.Form](t, rec)
	g.Expect(created.ID).NotTo(BeEmpty())
	g.Expect(created.FormType).To(BeEmpty())

	rec = testutil.DoRequest(app.Router, http.MethodPost, handler.FormsPath, `{}`)
	g.Expect(rec.Code).To(Equal(http.StatusCreated))
	g.Expect(rec.Body.String()).To(ContainSubstring(`"customerId":null`))
	g.Expect(rec.Body.String()).To(ContainSubstring(`"formType":null`))
}

func TestUpdateForm(t *testing.T) {
	t.Run("replaces the stored form", func(t *testing.T) {
		g := NewWithT(t)
		app := testutil.NewTestApp(t)
		created := createForm(t, g, app, map[string]string{"customerId": defaultCustomerID, "formType": "SURVEY"})

		rec := testutil.DoRequest(app.Router, http.MethodPut, handler.FormsPath, map[string]string{
			"id":         created.ID,
			"customerId": updatedCustomerID,
			"formType":   "SIGNUP",
		})
		g.Expect(rec.Code).To(Equal(http.StatusOK))
		g.Expect(rec.Header().Get(alertHeader)).To(Equal(testutil.AppName + ".formV1.updated"))
		g.Expect(rec.Header().Get(paramsHeader)).To(Equal(created.ID))

		updated := testutil.ParseResponse[entity.Form](t, rec)
		g.Expect(updated).To(Equal(entity.Form{ID: created.ID, CustomerID: updatedCustomerID, FormType: entity.FormTypeSignup}))

		rec = testutil.DoRequest(app.Router, http.MethodGet, handler.FormsPath+"/"+created.ID, nil)
		g.Expect(testutil.ParseResponse[entity.Form](t, rec)).To(Equal(updated))

		rec = testutil.DoRequest(app.Router, http.MethodGet, handler.FormsPath, nil)
		g.Expect(rec.Header().Get(pagination.TotalCountHeader)).To(Equal("1"))
	})

	t.Run("without id is rejected", func(t *testing.T) {
		g := NewWithT(t)
		app := testutil.NewTestApp(t)

		rec := testutil.DoRequest(app.Router, http.MethodPut, handler.FormsPath, map[string]string{
			"customerId": defaultCustomerID,
		})
		g.Expect(rec.Code).To(Equal(http.StatusBadRequest))
		g.Expect(rec.Header().Get(errorHeader)).To(Equal("error.idnull"))
		g.Expect(rec.Header().Get(paramsHeader)).To(Equal(entity.FormEntityName))

		rec = testutil.DoRequest(app.Router, http.MethodPut, handler.FormsPath, `{"id": null, "customerId": "AAAAAAAAAA"}`)
		g.Expect(rec.Code).To(Equal(http.StatusBadRequest))
		g.Expect(rec.Header().Get(errorHeader)).To(Equal("error.idnull"))

		rec = testutil.DoRequest(app.Router, http.MethodGet, handler.FormsPath, nil)
		g.Expect(rec.Header().Get(pagination.TotalCountHeader)).To(Equal("0"))
	})

	t.Run("with an empty id stores under a new id", func(t *testing.T) {
		g := NewWithT(t)
		app := testutil.NewTestApp(t)

		rec := testutil.DoRequest(app.Router, http.MethodPut, handler.FormsPath, `{"id": "", "customerId": "AAAAAAAAAA"}`)
		g.Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())

		stored := testutil.ParseResponse[entity.Form](t, rec)
		g.Expect(stored.ID).NotTo(BeEmpty())
		g.Expect(rec.Header().Get(paramsHeader)).To(Equal(stored.ID))

		rec = testutil.DoRequest(app.Router, http.MethodGet, handler.FormsPath+"/"+stored.ID, nil)
		g.Expect(rec.Code).To(Equal(http.StatusOK))
		g.Expect(testutil.ParseResponse[entity.Form](t, rec)).To(Equal(stored))
	})

	t.Run("with an unknown id creates the form", func(t *testing.T) {
		g := NewWithT(t)
		app := testutil.NewTestApp(t)

		rec := testutil.DoRequest(app.Router, http.MethodPut, handler.FormsPath, map[string]string{
			"id":         "brand-new-id",
			"customerId": defaultCustomerID,
		})
		g.Expect(rec.Code).To(Equal(http.StatusOK))

		rec = testutil.DoRequest(app.Router, http.MethodGet, handler.FormsPath+"/brand-new-id", nil)
		g.Expect(rec.Code).To(Equal(http.StatusOK))
		g.Expect(testutil.ParseResponse[entity.Form](t, rec).CustomerID).To(Equal(defaultCustomerID))
	})
}

func TestInvalidRequests(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		field  string
	}{
		{
			name:   "unknown form type on create",
			method: http.MethodPost,
			path:   handler.FormsPath,
			body:   map[string]string{"formType": "BOGUS"},
			field:  "formType",
		},
		{
			name:   "unknown form type on update",
			method: http.MethodPut,
			path:   handler.FormsPath,
			body:   map[string]string{"id": "x", "formType": "survey"},
			field:  "formType",
		},
		{
			name:   "malformed json",
			method: http.MethodPost,
			path:   handler.FormsPath,
			body:   `{"customerId": `,
		},
		{
			name:   "wrong json type",
			method: http.MethodPost,
			path:   handler.FormsPath,
			body:   `{"customerId": 42}`,
		},
		{
			name:   "unknown sort property",
			method: http.MethodGet,
			path:   handler.FormsPath + "?sort=createdBy,desc",
			field:  "sort",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			app := testutil.NewTestApp(t)

			rec := testutil.DoRequest(app.Router, tt.method, tt.path, tt.body)
			g.Expect(rec.Code).To(Equal(http.StatusBadRequest), rec.Body.String())

			body := testutil.ParseResponse[errs.HTTPError](t, rec)
			g.Expect(body.Status).To(Equal(http.StatusBadRequest))
			if tt.field != "" {
				g.Expect(body.Errors).To(ContainElement(HaveField("Field", tt.field)))
			}
		})
	}
}

func TestListForms(t *testing.T) {
	g := NewWithT(t)
	app := testutil.NewTestApp(t)

	for i := 0; i < 5; i++ {
		createForm(t, g, app, map[string]string{"customerId": fmt.Sprintf("C%d", 4-i), "formType": "SURVEY"})
	}

	t.Run("first page", func(t *testing.T) {
		g := NewWithT(t)

		rec := testutil.DoRequest(app.Router, http.MethodGet, handler.FormsPath+"?page=0&size=2", nil)
		g.Expect(rec.Code).To(Equal(http.StatusOK))
		g.Expect(testutil.ParseResponse[[]entity.Form](t, rec)).To(HaveLen(2))
		g.Expect(rec.Header().Get(pagination.TotalCountHeader)).To(Equal("5"))
		g.Expect(rec.Header().Get(pagination.TotalPagesHeader)).To(Equal("3"))

		link := rec.Header().Get(pagination.LinkHeader)
		g.Expect(link).To(ContainSubstring(`<` + handler.FormsPath + `?page=1&size=2>; rel="next"`))
		g.Expect(link).To(ContainSubstring(`<` + handler.FormsPath + `?page=2&size=2>; rel="last"`))
		g.Expect(link).To(ContainSubstring(`<` + handler.FormsPath + `?page=0&size=2>; rel="first"`))
		g.Expect(link).NotTo(ContainSubstring(`rel="prev"`))
	})

	t.Run("past the end", func(t *testing.T) {
		g := NewWithT(t)

		rec := testutil.DoRequest(app.Router, http.MethodGet, handler.FormsPath+"?page=9&size=2", nil)
		g.Expect(rec.Code).To(Equal(http.StatusOK))
		g.Expect(strings.TrimSpace(rec.Body.String())).To(Equal("[]"))
		g.Expect(rec.Header().Get(pagination.TotalCountHeader)).To(Equal("5"))
	})

	t.Run("huge page is past the end", func(t *testing.T) {
		g := NewWithT(t)

		rec := testutil.DoRequest(app.Router, http.MethodGet, handler.FormsPath+"?page=4611686018427387904&size=2", nil)
		g.Expect(rec.Code).To(Equal(http.StatusOK))
		g.Expect(strings.TrimSpace(rec.Body.String())).To(Equal("[]"))
		g.Expect(rec.Header().Get(pagination.TotalCountHeader)).To(Equal("5"))
		g.Expect(rec.Header().Get(pagination.LinkHeader)).NotTo(ContainSubstring(`rel="next"`))
	})

	t.Run("sorted", func(t *testing.T) {
		g := NewWithT(t)

		rec := testutil.DoRequest(app.Router, http.MethodGet, handler.FormsPath+"?sort=customerId,asc", nil)
		g.Expect(rec.Code).To(Equal(http.StatusOK))

		forms := testutil.ParseResponse[[]entity.Form](t, rec)
		g.Expect(forms).To(HaveLen(5))
		for i, f := range forms {
			g.Expect(f.CustomerID).To(Equal(fmt.Sprintf("C%d", i)))
		}

		rec = testutil.DoRequest(app.Router, http.MethodGet, handler.FormsPath+"?sort=customerId,desc&size=1", nil)
		g.Expect(testutil.ParseResponse[[]entity.Form](t, rec)).To(ConsistOf(HaveField("CustomerID", "C4")))
	})

	t.Run("malformed paging falls back to defaults", func(t *testing.T) {
		g := NewWithT(t)

		rec := testutil.DoRequest(app.Router, http.MethodGet, handler.FormsPath+"?page=abc&size=-3", nil)
		g.Expect(rec.Code).To(Equal(http.StatusOK))
		g.Expect(testutil.ParseResponse[[]entity.Form](t, rec)).To(HaveLen(5))
		g.Expect(rec.Header().Get(pagination.TotalPagesHeader)).To(Equal("1"))
	})
}

func TestUnknownFormTypeMessage(t *testing.T) {
	g := NewWithT(t)
	app := testutil.NewTestApp(t)

	rec := testutil.DoRequest(app.Router, http.MethodPost, handler.FormsPath, map[string]string{"formType": "BOGUS"})
	g.Expect(rec.Code).To(Equal(http.StatusBadRequest))
	g.Expect(testutil.ParseResponse[errs.HTTPError](t, rec).Errors).To(ConsistOf(
		errs.FieldError{Field: "formType", Error: "must be one of: SURVEY SIGNUP"},
	))
}

func TestListingWalksEveryForm(t *testing.T) {
	app := testutil.NewTestApp(t)
	total := 0

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 8).Draw(rt, "n")
		size := rapid.IntRange(1, 10).Draw(rt, "size")

		for i := 0; i < n; i++ {
			rec := testutil.DoRequest(app.Router, http.MethodPost, handler.FormsPath, map[string]string{"customerId": fmt.Sprintf("C%d", i)})
			if rec.Code != http.StatusCreated {
				rt.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
			}
			total++
		}

		seen := map[string]bool{}
		for page := 0; ; page++ {
			rec := testutil.DoRequest(app.Router, http.MethodGet, fmt.Sprintf("%s?page=%d&size=%d", handler.FormsPath, page, size), nil)
			if rec.Code != http.StatusOK {
				rt.Fatalf("page %d returned %d", page, rec.Code)
			}
			if got := rec.Header().Get(pagination.TotalCountHeader); got != fmt.Sprint(total) {
				rt.Fatalf("X-Total-Count %s, want %d", got, total)
			}

			forms := testutil.ParseResponse[[]entity.Form](t, rec)
			if len(forms) > size {
				rt.Fatalf("page %d has %d forms, size %d", page, len(forms), size)
			}
			if len(forms) == 0 {
				break
			}
			for _, f := range forms {
				if seen[f.ID] {
					rt.Fatalf("form %s listed twice", f.ID)
				}
				seen[f.ID] = true
			}
		}

		if len(seen) != total {
			rt.Fatalf("walked %d forms, want %d", len(seen), total)
		}
	})
}

func TestGetFormNotFound(t *testing.T) {
	g := NewWithT(t)
	app := testutil.NewTestApp(t)

	rec := testutil.DoRequest(app.Router, http.MethodGet, handler.FormsPath+"/does-not-exist", nil)
	g.Expect(rec.Code).To(Equal(http.StatusNotFound))
	g.Expect(testutil.ParseResponse[errs.HTTPError](t, rec).Message).To(Equal("formV1 not found"))
}

func TestDeleteAbsentFormSucceeds(t *testing.T) {
	g := NewWithT(t)
	app := testutil.NewTestApp(t)

	rec := testutil.DoRequest(app.Router, http.MethodDelete, handler.FormsPath+"/does-not-exist", nil)
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(rec.Header().Get(alertHeader)).To(Equal(testutil.AppName + ".formV1.deleted"))
}

func TestCreatedFormsAreRetrievable(t *testing.T) {
	app := testutil.NewTestApp(t)

	rapid.Check(t, func(rt *rapid.T) {
		customerID := rapid.StringMatching(`[A-Z0-9]{0,20}`).Draw(rt, "customerId")
		formType := rapid.SampledFrom([]string{"", "SURVEY", "SIGNUP"}).Draw(rt, "formType")

		rec := testutil.DoRequest(app.Router, http.MethodPost, handler.FormsPath, map[string]string{
			"customerId": customerID,
			"formType":   formType,
		})
		if rec.Code != http.StatusCreated {
			rt.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
		}

		created := testutil.ParseResponse[entity.Form](t, rec)
		if created.CustomerID != customerID || string(created.FormType) != formType {
			rt.Fatalf("created %v from customerId=%q formType=%q", created, customerID, formType)
		}

		rec = testutil.DoRequest(app.Router, http.MethodGet, handler.FormsPath+"/"+created.ID, nil)
		if rec.Code != http.StatusOK {
			rt.Fatalf("get returned %d", rec.Code)
		}
		if found := testutil.ParseResponse[entity.Form](t, rec); found != created {
			rt.Fatalf("found %v, want %v", found, created)
		}
	})
}

func TestUnknownRoute(t *testing.T) {
	g := NewWithT(t)
	app := testutil.NewTestApp(t)

	rec := testutil.DoRequest(app.Router, http.MethodGet, "/api/unknown", nil)
	g.Expect(rec.Code).To(Equal(http.StatusNotFound))
	g.Expect(testutil.ParseResponse[errs.HTTPError](t, rec).Message).To(Equal("Route not found"))
}
