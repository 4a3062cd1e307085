package repository

import (
	"context"
	"errors"
	"fmt"

	profileserrors "bookmyworkspace/internal/profiles/errors"
	"bookmyworkspace/pkg/config"
	mongotx "bookmyworkspace/pkg/db/mongo"
	"bookmyworkspace/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Profiles"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	FindByID(ctx context.Context, id string) (*model.Profile, error)
	FindByEmail(ctx context.Context, email string) (*model.Profile, error)
	Update(ctx context.Context, id string, updates *model.ProfileUpdate) error
}

type mongoProfileRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoProfileRepository(cfg *config.Config) ProfileRepository {
	return &mongoProfileRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

// Create inserts the profile. The unique email index turns a duplicate
// signup into ErrEmailTaken.
func (r *mongoProfileRepository) Create(ctx context.Context, profile *model.Profile) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := mongotx.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, profile); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", profileserrors.ErrEmailTaken, profile.Email)
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *mongoProfileRepository) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	return r.findOne(ctx, bson.M{"_id": id}, id)
}

func (r *mongoProfileRepository) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	return r.findOne(ctx, bson.M{"email": email}, email)
}

func (r *mongoProfileRepository) findOne(ctx context.Context, filter bson.M, key string) (*model.Profile, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var profile model.Profile
	if err := r.collection.FindOne(ctx, filter).Decode(&profile); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", profileserrors.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return &profile, nil
}

func (r *mongoProfileRepository) Update(ctx context.Context, id string, updates *model.ProfileUpdate) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set, err := toSetDocument(updates)
	if err != nil {
		return err
	}
	set["updated_at"] = mongotx.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", profileserrors.ErrNotFound, id)
	}
	return nil
}

func toSetDocument(updates *model.ProfileUpdate) (bson.M, error) {
	raw, err := bson.Marshal(updates)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile update: %w", err)
	}
	set := bson.M{}
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("failed to decode profile update: %w", err)
	}
	return set, nil
}
