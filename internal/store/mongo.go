package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/isdelr/placeit-be/internal/database"
	"github.com/isdelr/placeit-be/internal/models"
)

type userDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Email     string        `bson:"email"`
	Password  string        `bson:"password"`
	CreatedAt time.Time     `bson:"created_at"`
}

func (d userDocument) toModel() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt,
	}
}

// MongoStore keeps users in a MongoDB collection with a unique email index.
type MongoStore struct {
	db    *mongo.Database
	users *mongo.Collection
}

// NewMongoStore creates a MongoStore on top of db.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db, users: db.Collection(database.UsersCollection)}
}

// Create inserts a new user document.
func (s *MongoStore) Create(ctx context.Context, user *models.User) error {
	doc := userDocument{
		ID:        bson.NewObjectID(),
		Email:     user.Email,
		Password:  user.PasswordHash,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("store: insert user: %w", err)
	}
	user.ID = doc.ID.Hex()
	user.CreatedAt = doc.CreatedAt
	return nil
}

// FindByEmail looks a user up by normalized email.
func (s *MongoStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

// FindByID looks a user up by its hex ObjectID.
func (s *MongoStore) FindByID(ctx context.Context, id string) (models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, ErrNotFound
	}
	return s.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.D) (models.User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("store: find user: %w", err)
	}
	return doc.toModel(), nil
}

// Ping checks the connection to the server.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

// Name implements UserStore.
func (s *MongoStore) Name() string { return "mongo" }

var _ UserStore = (*MongoStore)(nil)
