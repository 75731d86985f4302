package agentRepo

import (
	"context"
	"fmt"
	"time"

	"planora/database"
	"planora/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAgentRepo implements AgentRepository using MongoDB.
type MongoAgentRepo struct {
	coll *mongo.Collection
}

// NewMongoAgentRepo constructs a new instance of MongoAgentRepo.
func NewMongoAgentRepo() AgentRepository {
	repo := &MongoAgentRepo{
		coll: database.DB().Collection("agents"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create agent indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoAgentRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "service_categories", Value: 1}}},
		{Keys: bson.D{{Key: "approved", Value: 1}, {Key: "active", Value: 1}}},
		// 2dsphere index on location_geo for geospatial matching.
		{Keys: bson.D{{Key: "location_geo", Value: "2dsphere"}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	return err
}

func (r *MongoAgentRepo) Create(agent *models.Agent) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, agent); err != nil {
		return fmt.Errorf("error creating agent: %w", err)
	}
	return nil
}

func (r *MongoAgentRepo) GetByID(agentID string) (*models.Agent, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var agent models.Agent
	filter := bson.M{"_id": agentID}
	if err := r.coll.FindOne(ctx, filter).Decode(&agent); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching agent with id %s: %w", agentID, err)
	}
	return &agent, nil
}

func (r *MongoAgentRepo) FindByServiceCategory(category string, near models.GeoPoint, radiusKm float64) ([]models.Agent, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"service_categories": category,
		"approved":           true,
		"active":             true,
	}
	if near.HasCoordinates() && radiusKm > 0 {
		filter["location_geo"] = bson.M{
			"$nearSphere": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": near.Coordinates,
				},
				"$maxDistance": radiusKm * 1000,
			},
		}
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching agents for category %s: %w", category, err)
	}
	defer cursor.Close(ctx)

	var agents []models.Agent
	if err := cursor.All(ctx, &agents); err != nil {
		return nil, fmt.Errorf("error decoding agents: %w", err)
	}
	return agents, nil
}

func (r *MongoAgentRepo) ListActiveIDs() ([]string, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	filter := bson.M{"approved": true, "active": true}
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing active agents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding active agent ids: %w", err)
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (r *MongoAgentRepo) UpdateFCMToken(agentID, token string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"_id": agentID}
	update := bson.M{"$set": bson.M{
		"fcm_token":  token,
		"updated_at": time.Now(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error updating agent %s fcm token: %w", agentID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
