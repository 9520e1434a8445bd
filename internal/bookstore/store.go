package bookstore

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Store is a handle on the books collection. Implementations are used from a
// single goroutine for the lifetime of one session.
type Store interface {
	Ping(ctx context.Context) (bson.M, error)

	// Reads
	Find(ctx context.Context, filter bson.D, opts FindOptions) ([]bson.M, error)
	FindBooks(ctx context.Context, filter bson.D, opts FindOptions) ([]Book, error)
	FindOne(ctx context.Context, filter bson.D) (*Book, error)
	Count(ctx context.Context, filter bson.D) (int64, error)
	Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error)

	// Mutations
	UpdateOne(ctx context.Context, filter, set bson.D) (UpdateSummary, error)
	DeleteOne(ctx context.Context, filter bson.D) (DeleteSummary, error)
	InsertMany(ctx context.Context, books []Book) (int, error)
	Drop(ctx context.Context) error

	// Indexes
	CreateIndex(ctx context.Context, spec IndexSpec) (string, error)
	ListIndexes(ctx context.Context) ([]IndexSpec, error)
	Explain(ctx context.Context, filter bson.D, hint *IndexSpec) (*Plan, error)

	Close(ctx context.Context) error
}

// UpdateSummary reports the outcome of UpdateOne. Matched == 0 means no book
// satisfied the filter, which is not an error.
type UpdateSummary struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}

// DeleteSummary reports the outcome of DeleteOne.
type DeleteSummary struct {
	Deleted int64 `json:"deleted"`
}
