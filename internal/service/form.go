package service

import (
	"context"

	"github.com/deppfellow/formapplication/internal/entity"
	"github.com/deppfellow/formapplication/internal/lib/pagination"
	"github.com/deppfellow/formapplication/internal/repository"
	"github.com/rs/zerolog"
)

// FormService manages forms. Every call is delegated unchanged to the
// repository; errors propagate as they are.
type FormService struct {
	repo repository.FormRepository
}

func NewFormService(repo repository.FormRepository) *FormService {
	return &FormService{repo: repo}
}

// Save inserts or replaces form and returns the persisted form.
func (s *FormService) Save(ctx context.Context, form entity.Form) (entity.Form, error) {
	zerolog.Ctx(ctx).Debug().Stringer("form", form).Msg("request to save form")
	return s.repo.Save(ctx, form)
}

// FindAll returns one page of forms.
func (s *FormService) FindAll(ctx context.Context, req pagination.PageRequest) (pagination.Page[entity.Form], error) {
	zerolog.Ctx(ctx).Debug().
		Int("page", req.Page).
		Int("size", req.Size).
		Msg("request to get all forms")
	return s.repo.FindAll(ctx, req)
}

// FindOne returns the form with id. found is false when there is none.
func (s *FormService) FindOne(ctx context.Context, id string) (form entity.Form, found bool, err error) {
	zerolog.Ctx(ctx).Debug().Str("form_id", id).Msg("request to get form")
	return s.repo.FindByID(ctx, id)
}

// Delete removes the form with id. Deleting an absent form succeeds.
func (s *FormService) Delete(ctx context.Context, id string) error {
	zerolog.Ctx(ctx).Debug().Str("form_id", id).Msg("request to delete form")
	return s.repo.DeleteByID(ctx, id)
}
