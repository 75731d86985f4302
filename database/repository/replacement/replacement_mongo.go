package replacementRepo

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

// MongoReplacementRepo implements ReplacementRepository using MongoDB.
type MongoReplacementRepo struct {
	coll *mongo.Collection
}

// NewMongoReplacementRepo constructs a new instance of MongoReplacementRepo.
func NewMongoReplacementRepo() ReplacementRepository {
	repo := &MongoReplacementRepo{
		coll: database.DB().Collection("replacement_requests"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create replacement indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoReplacementRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	// Partial unique index: only one pending or accepted request may exist
	// per booking. Declined and cancelled requests fall outside the filter
	// and never block a new request.
	activeOpts := options.Index().
		SetUnique(true).
		SetPartialFilterExpression(bson.M{
			"status": bson.M{"$in": []string{
				string(models.ReplacementPending),
				string(models.ReplacementAccepted),
			}},
		})

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "booking_id", Value: 1}}, Options: activeOpts},
		{Keys: bson.D{{Key: "original_agent_id", Value: 1}}},
		{Keys: bson.D{{Key: "replacement_agent_id", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	return err
}

func (r *MongoReplacementRepo) Create(req *models.ReplacementRequest) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrActiveRequestExists
		}
		return fmt.Errorf("error creating replacement request: %w", err)
	}
	return nil
}

func (r *MongoReplacementRepo) GetByID(requestID string) (*models.ReplacementRequest, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var req models.ReplacementRequest
	filter := bson.M{"_id": requestID}
	if err := r.coll.FindOne(ctx, filter).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching replacement request %s: %w", requestID, err)
	}
	return &req, nil
}

func (r *MongoReplacementRepo) FindActiveByBooking(bookingID string) (*models.ReplacementRequest, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"booking_id": bookingID,
		"status": bson.M{"$in": []string{
			string(models.ReplacementPending),
			string(models.ReplacementAccepted),
		}},
	}

	var req models.ReplacementRequest
	if err := r.coll.FindOne(ctx, filter).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching active replacement for booking %s: %w", bookingID, err)
	}
	return &req, nil
}

func (r *MongoReplacementRepo) ListByBooking(bookingID string) ([]models.ReplacementRequest, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"booking_id": bookingID}
	opts := options.Find().SetSort(bson.D{{Key: "requested_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing replacements for booking %s: %w", bookingID, err)
	}
	defer cursor.Close(ctx)

	var reqs []models.ReplacementRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("error decoding replacement requests: %w", err)
	}
	return reqs, nil
}

func (r *MongoReplacementRepo) ApplyTransition(req *models.ReplacementRequest, fromStatus models.ReplacementStatus) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	// Guard on the status the caller read so concurrent transitions on the
	// same request cannot both win.
	filter := bson.M{
		"_id":    req.ID,
		"status": string(fromStatus),
	}
	update := bson.M{"$set": bson.M{
		"status":               string(req.Status),
		"replacement_agent_id": req.ReplacementAgentID,
		"decline_reason":       req.DeclineReason,
		"proposed_at":          req.ProposedAt,
		"accepted_at":          req.AcceptedAt,
		"declined_at":          req.DeclinedAt,
		"cancelled_at":         req.CancelledAt,
		"updated_at":           req.UpdatedAt,
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error applying transition for replacement %s: %w", req.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleRequest
	}
	return nil
}
