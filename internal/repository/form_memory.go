package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/deppfellow/formapplication/internal/entity"
	"github.com/deppfellow/formapplication/internal/lib/pagination"
	"github.com/google/uuid"
)

// FormMemoryRepository keeps forms in a map guarded by a RWMutex. It backs
// the "memory" driver and the HTTP tests. Listing without a sort returns
// forms in insertion order.
type FormMemoryRepository struct {
	mu    sync.RWMutex
	forms map[string]entity.Form
	order []string
}

func NewFormMemoryRepository() *FormMemoryRepository {
	return &FormMemoryRepository{forms: make(map[string]entity.Form)}
}

func (r *FormMemoryRepository) Save(ctx context.Context, form entity.Form) (entity.Form, error) {
	if err := ctx.Err(); err != nil {
		return entity.Form{}, storageError(ctx, "save", err)
	}

	if !form.HasID() {
		form.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.forms[form.ID]; !exists {
		r.order = append(r.order, form.ID)
	}
	r.forms[form.ID] = form

	return form, nil
}

func (r *FormMemoryRepository) FindByID(ctx context.Context, id string) (entity.Form, bool, error) {
	if err := ctx.Err(); err != nil {
		return entity.Form{}, false, storageError(ctx, "find_by_id", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	form, ok := r.forms[id]
	return form, ok, nil
}

func (r *FormMemoryRepository) FindAll(ctx context.Context, req pagination.PageRequest) (pagination.Page[entity.Form], error) {
	if err := ctx.Err(); err != nil {
		return pagination.Page[entity.Form]{}, storageError(ctx, "find_all", err)
	}

	r.mu.RLock()
	all := make([]entity.Form, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.forms[id])
	}
	r.mu.RUnlock()

	if len(req.Sort) > 0 {
		slices.SortStableFunc(all, func(a, b entity.Form) int {
			for _, o := range req.Sort {
				c := cmp.Compare(memoryField(a, o.Property), memoryField(b, o.Property))
				if o.IsDescending() {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	total := int64(len(all))
	start := min(max(req.Offset(), 0), total)
	end := min(start+int64(req.Size), total)

	return pagination.NewPage(slices.Clone(all[start:end]), req, total), nil
}

func (r *FormMemoryRepository) DeleteByID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return storageError(ctx, "delete", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.forms[id]; !ok {
		return nil
	}
	delete(r.forms, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })

	return nil
}

// Count returns the number of stored forms.
func (r *FormMemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.forms)
}

func memoryField(f entity.Form, property string) string {
	switch property {
	case "id":
		return f.ID
	case "customerId":
		return f.CustomerID
	case "formType":
		return string(f.FormType)
	}
	return ""
}
