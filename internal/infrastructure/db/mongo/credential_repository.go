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
)

// One collection per credential variant. The variant is implied by the
// collection, so documents do not carry a type field.
var credentialCollections = map[domain.CredentialType]string{
	domain.TypeCertification:  "certifications",
	domain.TypeEducation:      "educations",
	domain.TypeWorkExperience: "work_experiences",
}

// CredentialRepository persists the three credential variants, dispatching on
// the credential type to select the backing collection.
type CredentialRepository struct {
	db *mongo.Database
}

func NewCredentialRepository(db *mongo.Database) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) collection(t domain.CredentialType) (*mongo.Collection, error) {
	name, ok := credentialCollections[t]
	if !ok {
		return nil, domain.ErrInvalidCredentialType
	}
	return r.db.Collection(name), nil
}

// Create inserts a new credential document, assigning it a fresh id.
func (r *CredentialRepository) Create(ctx context.Context, c *domain.Credential) error {
	col, err := r.collection(c.Type)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if c.ID == "" {
		c.ID = primitive.NewObjectID().Hex()
	}
	if _, err := col.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// FindByID retrieves a credential of the stated type.
func (r *CredentialRepository) FindByID(ctx context.Context, credType domain.CredentialType, id string) (*domain.Credential, error) {
	col, err := r.collection(credType)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Credential
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	c.Type = credType
	return &c, nil
}

// UpdateStatus persists the status lifecycle fields of an already-loaded
// credential.
func (r *CredentialRepository) UpdateStatus(ctx context.Context, c *domain.Credential) error {
	col, err := r.collection(c.Type)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"status":     c.Status,
			"updated_at": c.UpdatedAt,
		},
	}
	set := update["$set"].(bson.M)
	unset := bson.M{}

	if c.VerifiedAt != nil {
		set["verified_at"] = c.VerifiedAt
	} else {
		unset["verified_at"] = ""
	}
	if c.RejectionReason != "" {
		set["rejection_reason"] = c.RejectionReason
	} else {
		unset["rejection_reason"] = ""
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := col.UpdateOne(ctx, bson.M{"_id": c.ID}, update)
	if err != nil {
		return fmt.Errorf("update credential status: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCredentialNotFound
	}
	return nil
}

// ListByOwner returns all credentials of one type owned by ownerID, oldest
// first.
func (r *CredentialRepository) ListByOwner(ctx context.Context, credType domain.CredentialType, ownerID string) ([]*domain.Credential, error) {
	col, err := r.collection(credType)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := col.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer cursor.Close(ctx)

	var creds []*domain.Credential
	if err := cursor.All(ctx, &creds); err != nil {
		return nil, fmt.Errorf("decode credentials: %w", err)
	}
	for _, c := range creds {
		c.Type = credType
	}
	return creds, nil
}

// EnsureIndexes creates the lookup indexes on every credential collection.
func (r *CredentialRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "status", Value: 1}}},
	}

	for _, name := range credentialCollections {
		if _, err := r.db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
	}
	return nil
}
