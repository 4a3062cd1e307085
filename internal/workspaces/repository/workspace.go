package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	workspaceserrors "bookmyworkspace/internal/workspaces/errors"
	"bookmyworkspace/pkg/config"
	mongotx "bookmyworkspace/pkg/db/mongo"
	"bookmyworkspace/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Workspaces"
)

type mongoWorkspaceRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type WorkspaceRepository interface {
	Create(ctx context.Context, ws *model.Workspace) error
	FindByID(ctx context.Context, id string) (*model.Workspace, error)
	Search(ctx context.Context, filter model.WorkspaceFilter, limit int, offset int64) ([]*model.Workspace, error)
	Count(ctx context.Context, filter model.WorkspaceFilter) (int64, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*model.Workspace, error)
	Update(ctx context.Context, id string, updates *model.WorkspaceUpdate) error
	Delete(ctx context.Context, id string) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoWorkspaceRepository(cfg *config.Config) WorkspaceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoWorkspaceRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoWorkspaceRepository) Create(ctx context.Context, ws *model.Workspace) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := mongotx.Now()
	ws.ID = ""
	ws.CreatedAt = now
	ws.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, ws)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		ws.ID = oid.Hex()
	}

	return nil
}

func (r *mongoWorkspaceRepository) FindByID(ctx context.Context, id string) (*model.Workspace, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", workspaceserrors.ErrInvalidID, id)
	}

	var ws model.Workspace
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&ws)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", workspaceserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}
	return &ws, nil
}

func (r *mongoWorkspaceRepository) Search(ctx context.Context, filter model.WorkspaceFilter, limit int, offset int64) ([]*model.Workspace, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(sortFor(filter.Sort))

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search workspaces: %w", err)
	}
	defer cursor.Close(ctx)

	workspaces := make([]*model.Workspace, 0)
	if err := cursor.All(ctx, &workspaces); err != nil {
		return nil, fmt.Errorf("failed to decode workspaces: %w", err)
	}

	return workspaces, nil
}

func (r *mongoWorkspaceRepository) Count(ctx context.Context, filter model.WorkspaceFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count workspaces: %w", err)
	}
	return count, nil
}

func (r *mongoWorkspaceRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Workspace, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find workspaces for owner [%s]: %w", ownerID, err)
	}
	defer cursor.Close(ctx)

	workspaces := make([]*model.Workspace, 0)
	if err := cursor.All(ctx, &workspaces); err != nil {
		return nil, fmt.Errorf("failed to decode workspaces: %w", err)
	}
	return workspaces, nil
}

func (r *mongoWorkspaceRepository) Update(ctx context.Context, id string, updates *model.WorkspaceUpdate) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", workspaceserrors.ErrInvalidID, id)
	}

	set, err := toSetDocument(updates)
	if err != nil {
		return err
	}
	set["updated_at"] = mongotx.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update workspace: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", workspaceserrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoWorkspaceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", workspaceserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", workspaceserrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoWorkspaceRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// buildFilter turns a search filter into a Mongo query. Location matches
// city, area or name case-insensitively; amenities must all be present.
func buildFilter(f model.WorkspaceFilter) bson.M {
	filter := bson.M{}

	if f.Location != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Location), Options: "i"}
		filter["$or"] = []bson.M{
			{"city": pattern},
			{"area": pattern},
			{"name": pattern},
		}
	}

	if len(f.Amenities) > 0 {
		filter["amenities"] = bson.M{"$all": f.Amenities}
	}

	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price_per_day"] = price
	}

	if f.Premium != nil {
		filter["is_premium"] = *f.Premium
	}

	if f.OwnerID != "" {
		filter["owner_id"] = f.OwnerID
	}

	return filter
}

func sortFor(sort string) bson.D {
	if sort == model.SortByRating {
		return bson.D{{Key: "rating", Value: -1}, {Key: "review_count", Value: -1}, {Key: "_id", Value: 1}}
	}
	return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
}

// toSetDocument marshals only the fields present in the update.
func toSetDocument(updates *model.WorkspaceUpdate) (bson.M, error) {
	raw, err := bson.Marshal(updates)
	if err != nil {
		return nil, fmt.Errorf("failed to encode workspace update: %w", err)
	}
	set := bson.M{}
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("failed to encode workspace update: %w", err)
	}
	return set, nil
}
