package availabilityRepo

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

// MongoAvailabilityRepo implements AvailabilityRepository using MongoDB.
type MongoAvailabilityRepo struct {
	coll *mongo.Collection
}

// NewMongoAvailabilityRepo constructs a new instance of MongoAvailabilityRepo.
func NewMongoAvailabilityRepo() AvailabilityRepository {
	repo := &MongoAvailabilityRepo{
		coll: database.DB().Collection("availability_windows"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create availability indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoAvailabilityRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "agent_id", Value: 1}, {Key: "day_of_week", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	return err
}

func (r *MongoAvailabilityRepo) Create(window *models.AvailabilityWindow) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, window); err != nil {
		return fmt.Errorf("error creating availability window: %w", err)
	}
	return nil
}

func (r *MongoAvailabilityRepo) ListByAgent(agentID string) ([]models.AvailabilityWindow, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"agent_id": agentID}
	opts := options.Find().SetSort(bson.D{{Key: "day_of_week", Value: 1}, {Key: "start", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching availability for agent %s: %w", agentID, err)
	}
	defer cursor.Close(ctx)

	var windows []models.AvailabilityWindow
	if err := cursor.All(ctx, &windows); err != nil {
		return nil, fmt.Errorf("error decoding availability windows: %w", err)
	}
	return windows, nil
}

func (r *MongoAvailabilityRepo) FindForDayAndTime(agentID string, day time.Weekday, startMin, endMin int) (*models.AvailabilityWindow, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	// A window covers the range when it starts at or before startMin and
	// ends at or after endMin.
	filter := bson.M{
		"agent_id":    agentID,
		"day_of_week": int(day),
		"start":       bson.M{"$lte": startMin},
		"end":         bson.M{"$gte": endMin},
	}

	var window models.AvailabilityWindow
	if err := r.coll.FindOne(ctx, filter).Decode(&window); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching availability window for agent %s: %w", agentID, err)
	}
	return &window, nil
}

func (r *MongoAvailabilityRepo) DeleteByAgent(agentID string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"agent_id": agentID}); err != nil {
		return fmt.Errorf("error deleting availability for agent %s: %w", agentID, err)
	}
	return nil
}
