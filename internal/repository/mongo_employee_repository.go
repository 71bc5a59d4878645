package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "staffdir/internal/errors"
	"staffdir/internal/model"
)

// EmployeeCollection is the MongoDB collection holding employee documents.
const EmployeeCollection = "employees"

const authIDIndexName = "authId_unique"

// employeeDocument is the stored shape. It never leaves this package; see
// toModel.
type employeeDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	AuthID    string             `bson:"authId"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Role      string             `bson:"role"`
	Onboarded bool               `bson:"onboarded"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *employeeDocument) toModel() *model.Employee {
	return &model.Employee{
		ID:        d.ID.Hex(),
		AuthID:    d.AuthID,
		Name:      d.Name,
		Email:     d.Email,
		Role:      d.Role,
		Onboarded: d.Onboarded,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type mongoEmployeeRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoEmployeeRepository builds a repository over the employees
// collection of db.
func NewMongoEmployeeRepository(db *mongo.Database) EmployeeRepository {
	return &mongoEmployeeRepository{
		coll: db.Collection(EmployeeCollection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *mongoEmployeeRepository) Create(ctx context.Context, employee *model.Employee) error {
	now := r.now()
	doc := employeeDocument{
		AuthID:    employee.AuthID,
		Name:      employee.Name,
		Email:     employee.Email,
		Role:      employee.Role,
		Onboarded: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return translateMongo(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	*employee = *doc.toModel()
	return nil
}

func (r *mongoEmployeeRepository) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrEmployeeNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *mongoEmployeeRepository) FindByAuthID(ctx context.Context, authID string) (*model.Employee, error) {
	return r.findOne(ctx, bson.M{"authId": authID})
}

func (r *mongoEmployeeRepository) findOne(ctx context.Context, filter bson.M) (*model.Employee, error) {
	var doc employeeDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateMongo(err)
	}
	return doc.toModel(), nil
}

// List pages through the collection in insertion order; ObjectIDs grow
// monotonically per process so _id order is creation order.
func (r *mongoEmployeeRepository) List(ctx context.Context, skip, limit int) ([]model.Employee, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []employeeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	employees := make([]model.Employee, 0, len(docs))
	for i := range docs {
		employees = append(employees, *docs[i].toModel())
	}
	return employees, nil
}

func (r *mongoEmployeeRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{})
}

func (r *mongoEmployeeRepository) UpsertByAuthID(ctx context.Context, employee *model.Employee) (*model.Employee, error) {
	now := r.now()
	update := bson.M{
		"$set": bson.M{
			"name":      employee.Name,
			"email":     employee.Email,
			"role":      employee.Role,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"onboarded": false,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc employeeDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"authId": employee.AuthID}, update, opts).Decode(&doc); err != nil {
		return nil, translateMongo(err)
	}
	return doc.toModel(), nil
}

func (r *mongoEmployeeRepository) UpdateByID(ctx context.Context, id string, employee *model.Employee) (*model.Employee, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrEmployeeNotFound
	}

	update := bson.M{
		"$set": bson.M{
			"authId":    employee.AuthID,
			"name":      employee.Name,
			"email":     employee.Email,
			"role":      employee.Role,
			"updatedAt": r.now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc employeeDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, translateMongo(err)
	}
	return doc.toModel(), nil
}

// EnsureIndexes creates the unique authId index. The index, not the
// pre-write lookup in the service, is what guarantees uniqueness.
func (r *mongoEmployeeRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "authId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(authIDIndexName),
	})
	return err
}

func translateMongo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperrors.ErrEmployeeNotFound
	case mongo.IsDuplicateKeyError(err):
		return apperrors.ErrDuplicateAuthID
	default:
		return err
	}
}
