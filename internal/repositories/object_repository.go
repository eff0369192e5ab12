package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Cl0v1s/mangane/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ObjectRepository defines the interface for federated object documents
type ObjectRepository interface {
	CreateObject(ctx context.Context, object *models.Object) error
	GetObjectByAPID(ctx context.Context, apID string) (*models.Object, error)
}

// MongoObjectRepository implements ObjectRepository for MongoDB
type MongoObjectRepository struct {
	collection *mongo.Collection
}

// NewMongoObjectRepository creates a new MongoObjectRepository
func NewMongoObjectRepository(db *mongo.Database) *MongoObjectRepository {
	return &MongoObjectRepository{collection: db.Collection("objects")}
}

// CreateObject stores a new object document in MongoDB
func (r *MongoObjectRepository) CreateObject(ctx context.Context, object *models.Object) error {
	object.ID = primitive.NewObjectID()
	object.CreatedAt = time.Now()
	object.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, object)
	return err
}

// GetObjectByAPID retrieves an object document by ActivityPub identifier
func (r *MongoObjectRepository) GetObjectByAPID(ctx context.Context, apID string) (*models.Object, error) {
	var object models.Object
	err := r.collection.FindOne(ctx, bson.M{"ap_id": apID}).Decode(&object)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("object not found")
		}
		return nil, err
	}
	return &object, nil
}
