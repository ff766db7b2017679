package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/formapplication/internal/entity"
	"github.com/deppfellow/formapplication/internal/lib/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// formDocument is the stored shape of a form. _id holds the hex string of
// an ObjectID for generated ids, or whatever id a client upserted with.
type formDocument struct {
	ID         string `bson:"_id"`
	CustomerID string `bson:"customer_id,omitempty"`
	FormType   string `bson:"form_type,omitempty"`
}

func toFormDocument(form entity.Form) formDocument {
	return formDocument{
		ID:         form.ID,
		CustomerID: form.CustomerID,
		FormType:   string(form.FormType),
	}
}

func (d formDocument) toEntity() entity.Form {
	return entity.Form{
		ID:         d.ID,
		CustomerID: d.CustomerID,
		FormType:   entity.FormType(d.FormType),
	}
}

// mongoFields maps sortable JSON property names to document fields.
var mongoFields = map[string]string{
	"id":         "_id",
	"customerId": "customer_id",
	"formType":   "form_type",
}

// FormMongoRepository stores forms in a MongoDB collection.
type FormMongoRepository struct {
	collection *mongo.Collection
}

func NewFormMongoRepository(collection *mongo.Collection) *FormMongoRepository {
	return &FormMongoRepository{collection: collection}
}

func (r *FormMongoRepository) Save(ctx context.Context, form entity.Form) (entity.Form, error) {
	if !form.HasID() {
		form.ID = primitive.NewObjectID().Hex()
	}

	doc := toFormDocument(form)
	_, err := r.collection.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: doc.ID}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return entity.Form{}, storageError(ctx, "save", err)
	}

	return form, nil
}

func (r *FormMongoRepository) FindByID(ctx context.Context, id string) (entity.Form, bool, error) {
	var doc formDocument
	err := r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return entity.Form{}, false, nil
	}
	if err != nil {
		return entity.Form{}, false, storageError(ctx, "find_by_id", err)
	}

	return doc.toEntity(), true, nil
}

func (r *FormMongoRepository) FindAll(ctx context.Context, req pagination.PageRequest) (pagination.Page[entity.Form], error) {
	total, err := r.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return pagination.Page[entity.Form]{}, storageError(ctx, "count", err)
	}

	opts := options.Find().
		SetSkip(req.Offset()).
		SetLimit(int64(req.Size)).
		SetSort(mongoSort(req.Sort))

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return pagination.Page[entity.Form]{}, storageError(ctx, "find_all", err)
	}

	var docs []formDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return pagination.Page[entity.Form]{}, storageError(ctx, "find_all", err)
	}

	forms := make([]entity.Form, 0, len(docs))
	for _, doc := range docs {
		forms = append(forms, doc.toEntity())
	}

	return pagination.NewPage(forms, req, total), nil
}

func (r *FormMongoRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return storageError(ctx, "delete", err)
	}
	return nil
}

// mongoSort builds the sort document for orders. _id is always appended as
// the final key so pages are stable; generated ObjectID hex strings sort in
// creation order, which also makes it the default order.
func mongoSort(orders []pagination.Order) bson.D {
	sort := bson.D{}
	hasID := false
	for _, o := range orders {
		field, ok := mongoFields[o.Property]
		if !ok {
			continue
		}
		dir := 1
		if o.IsDescending() {
			dir = -1
		}
		sort = append(sort, bson.E{Key: field, Value: dir})
		hasID = hasID || field == "_id"
	}
	if !hasID {
		sort = append(sort, bson.E{Key: "_id", Value: 1})
	}
	return sort
}
