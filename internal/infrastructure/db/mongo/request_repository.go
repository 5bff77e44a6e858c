package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/proconnect/verification-system/internal/core/domain"
	"github.com/proconnect/verification-system/internal/core/ports"
)

const collectionRequests = "verification_requests"

// RequestRepository persists verification requests.
type RequestRepository struct {
	col *mongo.Collection
}

func NewRequestRepository(db *mongo.Database) *RequestRepository {
	return &RequestRepository{col: db.Collection(collectionRequests)}
}

// Create inserts a new verification request, assigning it a fresh id.
func (r *RequestRepository) Create(ctx context.Context, req *domain.VerificationRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if req.ID == "" {
		req.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.col.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

// FindByID retrieves a verification request by id.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*domain.VerificationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var req domain.VerificationRequest
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("find request: %w", err)
	}
	return &req, nil
}

// FindQueuedByCredential returns every queued request linked to the
// referenced credential.
func (r *RequestRepository) FindQueuedByCredential(ctx context.Context, ref domain.CredentialRef) ([]*domain.VerificationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, queuedFilter(ref))
	if err != nil {
		return nil, fmt.Errorf("find queued requests: %w", err)
	}
	defer cursor.Close(ctx)

	var reqs []*domain.VerificationRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("decode requests: %w", err)
	}
	return reqs, nil
}

// HasQueued reports whether the credential already has a queued request
// outstanding.
func (r *RequestRepository) HasQueued(ctx context.Context, ref domain.CredentialRef) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, queuedFilter(ref), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count queued requests: %w", err)
	}
	return n > 0, nil
}

// Update persists the resolution fields of an already-loaded request.
func (r *RequestRepository) Update(ctx context.Context, req *domain.VerificationRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":      req.Status,
		"reviewer_id": req.ReviewerID,
		"notes":       req.Notes,
		"updated_at":  req.UpdatedAt,
	}}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": req.ID}, update)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

// List returns a page of requests matching filter, oldest first, plus the
// total count of matching documents.
func (r *RequestRepository) List(ctx context.Context, filter ports.ListRequestsFilter) ([]*domain.VerificationRequest, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.CredentialType != "" {
		query["credential.type"] = filter.CredentialType
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}
	defer cursor.Close(ctx)

	var reqs []*domain.VerificationRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, 0, fmt.Errorf("decode requests: %w", err)
	}
	return reqs, total, nil
}

// EnsureIndexes creates the queue lookup indexes.
func (r *RequestRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		// Backs the single-queued-per-credential check and queued closures.
		{Keys: bson.D{
			{Key: "credential.type", Value: 1},
			{Key: "credential.id", Value: 1},
			{Key: "status", Value: 1},
		}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func queuedFilter(ref domain.CredentialRef) bson.M {
	return bson.M{
		"credential.type": ref.Type,
		"credential.id":   ref.ID,
		"status":          domain.RequestQueued,
	}
}
