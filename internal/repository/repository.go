// Package repository is the storage accessor for forms.
//
// FormRepository is implemented once per supported store (MongoDB,
// PostgreSQL and an in-memory map). Every implementation follows the same
// contract: Save inserts when the form has no id and upserts otherwise,
// lookups report absence through a boolean instead of an error, and delete
// is idempotent. Driver errors are translated with dberr before they leave
// the package.
package repository

import (
	"context"

	"github.com/deppfellow/formapplication/internal/dberr"
	"github.com/deppfellow/formapplication/internal/entity"
	"github.com/deppfellow/formapplication/internal/lib/pagination"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// FormCollection is the collection (MongoDB) or table (PostgreSQL) forms
// are stored in.
const FormCollection = "formv1"

// FormRepository persists forms.
type FormRepository interface {
	// Save persists form. A form without an id is inserted under a freshly
	// generated id; a form with an id replaces the stored record, or is
	// inserted under that id if none exists. The stored form is returned.
	Save(ctx context.Context, form entity.Form) (entity.Form, error)

	// FindByID returns the form with id. found is false when there is none.
	FindByID(ctx context.Context, id string) (form entity.Form, found bool, err error)

	// FindAll returns one page of forms ordered by req.Sort, or by
	// insertion order when req.Sort is empty.
	FindAll(ctx context.Context, req pagination.PageRequest) (pagination.Page[entity.Form], error)

	// DeleteByID removes the form with id. Deleting an absent id is not an error.
	DeleteByID(ctx context.Context, id string) error
}

// storageError logs the driver error, with the stack of the failing call,
// through the request-scoped logger and returns its HTTP translation.
func storageError(ctx context.Context, op string, err error) error {
	zerolog.Ctx(ctx).Error().
		Stack().
		Err(errors.WithStack(err)).
		Str("operation", op).
		Str("collection", FormCollection).
		Msg("storage call failed")
	return dberr.HandleError(err, FormCollection)
}
