package repo

import (
	"context"
	"errors"
	"fmt"

	dmn "github.com/beka-birhanu/vinom-haunt/domain"
	"github.com/beka-birhanu/vinom-haunt/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ i.PlayerRepo = &PlayerRepo{}

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrUnexpected     = errors.New("unexpected error")
)

// PlayerRepo handles the persistence of player models.
type PlayerRepo struct {
	collection *mongo.Collection
}

// NewPlayerRepo creates a new PlayerRepo with the given MongoDB client, database name, and collection name.
func NewPlayerRepo(client *mongo.Client, dbName, collectionName string) *PlayerRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &PlayerRepo{
		collection: collection,
	}
}

// Save inserts or updates a player in the repository.
// If the player already exists, it updates the existing record.
// If the player does not exist, it adds a new record.
func (p *PlayerRepo) Save(ctx context.Context, player *dmn.Player) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": player.ID}
	update := bson.M{
		"$set": bson.M{
			"name":   player.Name,
			"rating": player.Rating,
		},
		"$setOnInsert": bson.M{
			"createdAt": player.CreatedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := p.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("%w: %s", ErrUnexpected, err)
	}

	return nil
}

// ByID retrieves a player by their ID.
// Returns an error if the player is not found or if an unexpected error occurs.
func (p *PlayerRepo) ByID(ctx context.Context, id uuid.UUID) (*dmn.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id}
	var player dmn.Player
	if err := p.collection.FindOne(ctx, filter).Decode(&player); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("%w: %s", ErrUnexpected, err)
	}
	return &player, nil
}
