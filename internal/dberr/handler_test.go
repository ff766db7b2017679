package dberr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/deppfellow/formapplication/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/mongo"
)

func asHTTPError(g Gomega, err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	g.Expect(errors.As(err, &httpErr)).To(BeTrue(), "expected *errs.HTTPError, got %T", err)
	return httpErr
}

func TestHandleErrorPassesHTTPErrorThrough(t *testing.T) {
	g := NewWithT(t)

	original := errs.NewBadRequestAlertError("Invalid id", "formV1", errs.ErrorKeyIDNull)
	g.Expect(HandleError(original, "formv1")).To(BeIdenticalTo(original))
}

func TestHandleErrorPostgres(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		override bool
	}{
		{
			name:     "unique violation",
			err:      &pgconn.PgError{Code: "23505", TableName: "formv1", ConstraintName: "formv1_pkey"},
			status:   http.StatusBadRequest,
			code:     "FORMV1_ALREADY_EXISTS",
			override: true,
		},
		{
			name:   "not null violation",
			err:    &pgconn.PgError{Code: "23502", ColumnName: "customer_id"},
			status: http.StatusBadRequest,
			code:   "FORMV1_REQUIRED",
		},
		{
			name:   "connection exception",
			err:    &pgconn.PgError{Code: "08006"},
			status: http.StatusServiceUnavailable,
			code:   "SERVICE_UNAVAILABLE",
		},
		{
			name:   "admin shutdown",
			err:    fmt.Errorf("save form: %w", &pgconn.PgError{Code: "57P01"}),
			status: http.StatusServiceUnavailable,
			code:   "SERVICE_UNAVAILABLE",
		},
		{
			name:   "syntax error",
			err:    &pgconn.PgError{Code: "42601", Message: "syntax error"},
			status: http.StatusInternalServerError,
			code:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)

			httpErr := asHTTPError(g, HandleError(tt.err, "formv1"))
			g.Expect(httpErr.Status).To(Equal(tt.status))
			g.Expect(httpErr.Code).To(Equal(tt.code))
			if tt.override {
				g.Expect(httpErr.Override).To(BeTrue())
			}
		})
	}
}

func TestHandleErrorNotNullFieldErrors(t *testing.T) {
	g := NewWithT(t)

	httpErr := asHTTPError(g, HandleError(&pgconn.PgError{Code: "23502", ColumnName: "form_type"}, "formv1"))
	g.Expect(httpErr.Message).To(Equal("The Form Type is required"))
	g.Expect(httpErr.Errors).To(ConsistOf(errs.FieldError{Field: "form_type", Error: "is required"}))
}

func TestHandleErrorNotFound(t *testing.T) {
	g := NewWithT(t)

	for _, err := range []error{pgx.ErrNoRows, mongo.ErrNoDocuments} {
		httpErr := asHTTPError(g, HandleError(err, "formv1"))
		g.Expect(httpErr.Status).To(Equal(http.StatusNotFound))
		g.Expect(httpErr.Message).To(Equal("Formv1 not found"))
	}
}

func TestHandleErrorUnavailable(t *testing.T) {
	g := NewWithT(t)

	for _, err := range []error{context.DeadlineExceeded, mongo.ErrClientDisconnected} {
		httpErr := asHTTPError(g, HandleError(err, "formv1"))
		g.Expect(httpErr.Status).To(Equal(http.StatusServiceUnavailable))
	}
}

func TestHandleErrorMongoDuplicateKey(t *testing.T) {
	g := NewWithT(t)

	err := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}},
	}

	httpErr := asHTTPError(g, HandleError(err, "formv1"))
	g.Expect(httpErr.Status).To(Equal(http.StatusBadRequest))
	g.Expect(httpErr.Code).To(Equal("FORMV1_ALREADY_EXISTS"))

	g.Expect(ConvertMongoError(err, "formv1").Code).To(Equal(UniqueViolation))
	g.Expect(ConvertMongoError(err, "formv1").DatabaseCode).To(Equal("11000"))
}

func TestHandleErrorUnknown(t *testing.T) {
	g := NewWithT(t)

	httpErr := asHTTPError(g, HandleError(errors.New("boom"), "formv1"))
	g.Expect(httpErr.Status).To(Equal(http.StatusInternalServerError))
	g.Expect(httpErr.Message).To(Equal(http.StatusText(http.StatusInternalServerError)))
}

func TestHandleErrorNonDriverError(t *testing.T) {
	g := NewWithT(t)

	err := fmt.Errorf("reading seed file: %w", os.ErrNotExist)
	g.Expect(IsDriverError(err)).To(BeFalse())

	httpErr := asHTTPError(g, HandleError(err, "formv1"))
	g.Expect(httpErr.Status).To(Equal(http.StatusInternalServerError))
	g.Expect(httpErr.Code).To(Equal("INTERNAL_SERVER_ERROR"))
}

func TestIsDriverError(t *testing.T) {
	g := NewWithT(t)

	g.Expect(IsDriverError(&pgconn.PgError{Code: "23505"})).To(BeTrue())
	g.Expect(IsDriverError(fmt.Errorf("find: %w", pgx.ErrNoRows))).To(BeTrue())
	g.Expect(IsDriverError(mongo.ErrNoDocuments)).To(BeTrue())
	g.Expect(IsDriverError(mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}})).To(BeTrue())
	g.Expect(IsDriverError(context.DeadlineExceeded)).To(BeTrue())
	g.Expect(IsDriverError(&Error{Code: Unavailable})).To(BeTrue())
	g.Expect(IsDriverError(errors.New("boom"))).To(BeFalse())
	g.Expect(IsDriverError(os.ErrPermission)).To(BeFalse())
}

func TestMapCode(t *testing.T) {
	g := NewWithT(t)

	g.Expect(MapCode("23505")).To(Equal(UniqueViolation))
	g.Expect(MapCode("23503")).To(Equal(ForeignKeyViolation))
	g.Expect(MapCode("08001")).To(Equal(Unavailable))
	g.Expect(MapCode("57014")).To(Equal(Timeout))
	g.Expect(MapCode("XX000")).To(Equal(Other))
	g.Expect(MapSeverity("FATAL")).To(Equal(SeverityFatal))
	g.Expect(MapSeverity("whatever")).To(Equal(SeverityError))
}
