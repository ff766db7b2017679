package utils

import (
	"net/http"
	"testing"

	. "github.com/onsi/gomega"
)

func TestEntityAlerts(t *testing.T) {
	g := NewWithT(t)

	created := EntityCreationAlert("formapplicationApp", "formV1", "42")
	g.Expect(created.Get("X-formapplicationApp-alert")).To(Equal("formapplicationApp.formV1.created"))
	g.Expect(created.Get("X-formapplicationApp-params")).To(Equal("42"))

	g.Expect(EntityUpdateAlert("formapplicationApp", "formV1", "42").Get(AlertHeader("formapplicationApp"))).
		To(Equal("formapplicationApp.formV1.updated"))
	g.Expect(EntityDeletionAlert("formapplicationApp", "formV1", "42").Get(AlertHeader("formapplicationApp"))).
		To(Equal("formapplicationApp.formV1.deleted"))
}

func TestFailureAlert(t *testing.T) {
	g := NewWithT(t)

	headers := FailureAlert("formapplicationApp", "formV1", "idexists")
	g.Expect(headers.Get("X-formapplicationApp-error")).To(Equal("error.idexists"))
	g.Expect(headers.Get("X-formapplicationApp-params")).To(Equal("formV1"))
}

func TestCopyHeadersReplaces(t *testing.T) {
	g := NewWithT(t)

	dst := http.Header{}
	dst.Set("Link", "old")
	dst.Set("X-Keep", "yes")

	src := http.Header{}
	src.Set("Link", "new")
	src.Add("X-Multi", "a")
	src.Add("X-Multi", "b")

	CopyHeaders(dst, src)
	g.Expect(dst.Values("Link")).To(Equal([]string{"new"}))
	g.Expect(dst.Values("X-Multi")).To(Equal([]string{"a", "b"}))
	g.Expect(dst.Get("X-Keep")).To(Equal("yes"))
}
