package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-haunt/domain"
	"github.com/beka-birhanu/vinom-haunt/service/i"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultTimeout = 2 * time.Second
	maxResults     = 100
)

var _ i.MatchResultRepo = &MatchResultRepo{}

var (
	ErrDuplicateResult = errors.New("result already stored")
)

// MatchResultRepo stores the outcome of finished games.
type MatchResultRepo struct {
	collection *mongo.Collection
}

// NewMatchResultRepo creates a new MatchResultRepo with the given MongoDB client, database name, and collection name.
func NewMatchResultRepo(client *mongo.Client, dbName, collectionName string) *MatchResultRepo {
	return &MatchResultRepo{
		collection: client.Database(dbName).Collection(collectionName),
	}
}

// EnsureIndexes creates the index used to list the results of an actor.
func (r *MatchResultRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "actors.actorId", Value: 1}, {Key: "endedAt", Value: -1}},
	})
	return err
}

// Save inserts a result. A result is stored once.
func (r *MatchResultRepo) Save(ctx context.Context, result *dmn.MatchResult) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, result); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateResult
		}
		return fmt.Errorf("%w: %s", ErrUnexpected, err)
	}
	return nil
}

// ByActor returns the latest results an actor took part in, newest first.
func (r *MatchResultRepo) ByActor(ctx context.Context, actorID string, limit int64) ([]dmn.MatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "endedAt", Value: -1}}).
		SetLimit(clampLimit(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"actors.actorId": actorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnexpected, err)
	}
	defer cursor.Close(ctx)

	results := make([]dmn.MatchResult, 0)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnexpected, err)
	}
	return results, nil
}

func clampLimit(limit int64) int64 {
	if limit <= 0 || limit > maxResults {
		return maxResults
	}
	return limit
}
