package clientRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"planora/database"
	"planora/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no client matches the given ID.
var ErrNotFound = errors.New("client not found")

// ClientRepository defines lookups over booking clients.
type ClientRepository interface {
	Create(client *models.Client) error
	GetByID(clientID string) (*models.Client, error)
	UpdateFCMToken(clientID, token string) error
}

// MongoClientRepo implements ClientRepository using MongoDB.
type MongoClientRepo struct {
	coll *mongo.Collection
}

// NewMongoClientRepo constructs a new instance of MongoClientRepo.
func NewMongoClientRepo() ClientRepository {
	repo := &MongoClientRepo{
		coll: database.DB().Collection("clients"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create client indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoClientRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	return err
}

func (r *MongoClientRepo) Create(client *models.Client) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, client); err != nil {
		return fmt.Errorf("error creating client: %w", err)
	}
	return nil
}

func (r *MongoClientRepo) GetByID(clientID string) (*models.Client, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var client models.Client
	filter := bson.M{"_id": clientID}
	if err := r.coll.FindOne(ctx, filter).Decode(&client); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching client with id %s: %w", clientID, err)
	}
	return &client, nil
}

func (r *MongoClientRepo) UpdateFCMToken(clientID, token string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"_id": clientID}
	update := bson.M{"$set": bson.M{"fcm_token": token}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error updating client %s fcm token: %w", clientID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
