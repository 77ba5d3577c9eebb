package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"turtlesoup/internal/model"
)

// PuzzleRepo reads and seeds the puzzle corpus kept in MongoDB
type PuzzleRepo interface {
	List(ctx context.Context) ([]model.Puzzle, error)
	Upsert(ctx context.Context, puzzles []model.Puzzle) (int64, error)
}

type puzzleRepo struct {
	collection *mongo.Collection
}

func NewPuzzleRepo(db *mongo.Database, collection string) PuzzleRepo {
	return &puzzleRepo{
		collection: db.Collection(collection),
	}
}

func (r *puzzleRepo) List(ctx context.Context) ([]model.Puzzle, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var puzzles []model.Puzzle
	if err := cursor.All(ctx, &puzzles); err != nil {
		return nil, err
	}
	return puzzles, nil
}

// Upsert replaces puzzles by id so seeding twice leaves one copy of each.
func (r *puzzleRepo) Upsert(ctx context.Context, puzzles []model.Puzzle) (int64, error) {
	if len(puzzles) == 0 {
		return 0, nil
	}

	writes := make([]mongo.WriteModel, 0, len(puzzles))
	for _, p := range puzzles {
		if p.ID == "" {
			return 0, fmt.Errorf("puzzle %q has no id", p.Prompt)
		}
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": p.ID}).
			SetReplacement(p).
			SetUpsert(true))
	}

	res, err := r.collection.BulkWrite(ctx, writes)
	if err != nil {
		return 0, err
	}
	return res.UpsertedCount + res.ModifiedCount, nil
}
