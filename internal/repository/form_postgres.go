package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/formapplication/internal/entity"
	"github.com/deppfellow/formapplication/internal/lib/pagination"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// formRow is the scanned shape of a formv1 row. Empty strings are stored
// as NULL.
type formRow struct {
	ID         string  `db:"id"`
	CustomerID *string `db:"customer_id"`
	FormType   *string `db:"form_type"`
}

func (r formRow) toEntity() entity.Form {
	form := entity.Form{ID: r.ID}
	if r.CustomerID != nil {
		form.CustomerID = *r.CustomerID
	}
	if r.FormType != nil {
		form.FormType = entity.FormType(*r.FormType)
	}
	return form
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// postgresColumns maps sortable JSON property names to columns.
var postgresColumns = map[string]string{
	"id":         "id",
	"customerId": "customer_id",
	"formType":   "form_type",
}

const formColumns = "id, customer_id, form_type"

// FormPostgresRepository stores forms in the formv1 table.
type FormPostgresRepository struct {
	pool *pgxpool.Pool
}

func NewFormPostgresRepository(pool *pgxpool.Pool) *FormPostgresRepository {
	return &FormPostgresRepository{pool: pool}
}

func (r *FormPostgresRepository) Save(ctx context.Context, form entity.Form) (entity.Form, error) {
	if !form.HasID() {
		form.ID = uuid.NewString()
	}

	query := `
		INSERT INTO formv1 (id, customer_id, form_type)
		VALUES (@id, @customer_id, @form_type)
		ON CONFLICT (id) DO UPDATE
		SET customer_id = EXCLUDED.customer_id,
		    form_type = EXCLUDED.form_type
		RETURNING ` + formColumns

	rows, err := r.pool.Query(ctx, query, pgx.NamedArgs{
		"id":          form.ID,
		"customer_id": nullable(form.CustomerID),
		"form_type":   nullable(string(form.FormType)),
	})
	if err != nil {
		return entity.Form{}, storageError(ctx, "save", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[formRow])
	if err != nil {
		return entity.Form{}, storageError(ctx, "save", err)
	}

	return row.toEntity(), nil
}

func (r *FormPostgresRepository) FindByID(ctx context.Context, id string) (entity.Form, bool, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+formColumns+` FROM formv1 WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return entity.Form{}, false, storageError(ctx, "find_by_id", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[formRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.Form{}, false, nil
	}
	if err != nil {
		return entity.Form{}, false, storageError(ctx, "find_by_id", err)
	}

	return row.toEntity(), true, nil
}

func (r *FormPostgresRepository) FindAll(ctx context.Context, req pagination.PageRequest) (pagination.Page[entity.Form], error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM formv1`).Scan(&total); err != nil {
		return pagination.Page[entity.Form]{}, storageError(ctx, "count", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM formv1 ORDER BY %s LIMIT @limit OFFSET @offset`,
		formColumns, postgresOrderBy(req.Sort))

	rows, err := r.pool.Query(ctx, query, pgx.NamedArgs{
		"limit":  req.Size,
		"offset": req.Offset(),
	})
	if err != nil {
		return pagination.Page[entity.Form]{}, storageError(ctx, "find_all", err)
	}

	formRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[formRow])
	if err != nil {
		return pagination.Page[entity.Form]{}, storageError(ctx, "find_all", err)
	}

	forms := make([]entity.Form, 0, len(formRows))
	for _, row := range formRows {
		forms = append(forms, row.toEntity())
	}

	return pagination.NewPage(forms, req, total), nil
}

func (r *FormPostgresRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM formv1 WHERE id = @id`, pgx.NamedArgs{"id": id}); err != nil {
		return storageError(ctx, "delete", err)
	}
	return nil
}

// postgresOrderBy renders the ORDER BY list. Only whitelisted columns are
// interpolated. Insertion order (created_at) and then id close the list so
// pages are stable.
func postgresOrderBy(orders []pagination.Order) string {
	var parts []string
	for _, o := range orders {
		column, ok := postgresColumns[o.Property]
		if !ok {
			continue
		}
		// NULL sorts like the empty string: first ascending, last descending.
		dir := "ASC NULLS FIRST"
		if o.IsDescending() {
			dir = "DESC NULLS LAST"
		}
		parts = append(parts, column+" "+dir)
	}
	parts = append(parts, "created_at ASC", "id ASC")
	return strings.Join(parts, ", ")
}
