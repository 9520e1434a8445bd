package bookstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/bookshelf/bookshelf/internal/config"
)

// MongoStore implements Store on a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
// The server selection timeout bounds how long an unreachable server can stall
// the connect; a timeout given in the URI takes precedence.
func NewMongoStore(ctx context.Context, cfg config.MongoConfig, logger *slog.Logger) (*MongoStore, error) {
	opts := options.Client().
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		ApplyURI(cfg.URI)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w: %w", ErrConnection, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("pinging MongoDB: %w: %w", ErrConnection, err)
	}

	db := client.Database(cfg.Database)
	return &MongoStore{
		client: client,
		db:     db,
		coll:   db.Collection(cfg.Collection),
		logger: logger,
	}, nil
}

// Opener returns an OpenFunc that connects a MongoStore with cfg.
func Opener(cfg config.MongoConfig, logger *slog.Logger) OpenFunc {
	return func(ctx context.Context) (Store, error) {
		return NewMongoStore(ctx, cfg, logger)
	}
}

func (m *MongoStore) trace(op string, start time.Time, args ...any) {
	args = append(args, "op", op, "collection", m.coll.Name(), "elapsed", time.Since(start))
	m.logger.Debug("operation complete", args...)
}

// Ping runs the ping command.
func (m *MongoStore) Ping(ctx context.Context) (bson.M, error) {
	var result bson.M
	cmd := bson.D{{Key: "ping", Value: 1}}
	if err := m.db.RunCommand(ctx, cmd).Decode(&result); err != nil {
		return nil, classify("ping", cmd, err)
	}
	return result, nil
}

// Find returns the raw documents matching filter.
func (m *MongoStore) Find(ctx context.Context, filter bson.D, opts FindOptions) ([]bson.M, error) {
	start := time.Now()
	results := []bson.M{}
	if err := m.find(ctx, filter, opts, &results); err != nil {
		return nil, err
	}
	m.trace("find", start, "returned", len(results))
	return results, nil
}

// FindBooks is Find decoded into Book values. Fields excluded by a projection
// stay at their zero value.
func (m *MongoStore) FindBooks(ctx context.Context, filter bson.D, opts FindOptions) ([]Book, error) {
	start := time.Now()
	books := []Book{}
	if err := m.find(ctx, filter, opts, &books); err != nil {
		return nil, err
	}
	m.trace("find", start, "returned", len(books))
	return books, nil
}

func (m *MongoStore) find(ctx context.Context, filter bson.D, opts FindOptions, out any) error {
	cursor, err := m.coll.Find(ctx, nonNil(filter), opts.builder())
	if err != nil {
		return classify("find", opts.params(filter), err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return classify("find", opts.params(filter), err)
	}
	return nil
}

// FindOne returns the first book matching filter, or nil when none does.
func (m *MongoStore) FindOne(ctx context.Context, filter bson.D) (*Book, error) {
	var book Book
	err := m.coll.FindOne(ctx, nonNil(filter)).Decode(&book)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("findOne", filter, err)
	}
	return &book, nil
}

// Count returns the number of books matching filter.
func (m *MongoStore) Count(ctx context.Context, filter bson.D) (int64, error) {
	n, err := m.coll.CountDocuments(ctx, nonNil(filter))
	if err != nil {
		return 0, classify("count", filter, err)
	}
	return n, nil
}

// Aggregate runs pipeline and returns every result document.
func (m *MongoStore) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error) {
	start := time.Now()
	params := bson.D{{Key: "pipeline", Value: pipeline}}

	cursor, err := m.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, classify("aggregate", params, err)
	}
	results := []bson.M{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, classify("aggregate", params, err)
	}
	m.trace("aggregate", start, "stages", len(pipeline), "returned", len(results))
	return results, nil
}

// UpdateOne applies $set to the first book matching filter.
func (m *MongoStore) UpdateOne(ctx context.Context, filter, set bson.D) (UpdateSummary, error) {
	start := time.Now()
	update := bson.D{{Key: "$set", Value: set}}

	res, err := m.coll.UpdateOne(ctx, nonNil(filter), update)
	if err != nil {
		return UpdateSummary{}, classify("updateOne", bson.D{{Key: "filter", Value: nonNil(filter)}, {Key: "update", Value: update}}, err)
	}
	summary := UpdateSummary{Matched: res.MatchedCount, Modified: res.ModifiedCount}
	m.trace("updateOne", start, "matched", summary.Matched, "modified", summary.Modified)
	return summary, nil
}

// DeleteOne removes the first book matching filter.
func (m *MongoStore) DeleteOne(ctx context.Context, filter bson.D) (DeleteSummary, error) {
	start := time.Now()
	res, err := m.coll.DeleteOne(ctx, nonNil(filter))
	if err != nil {
		return DeleteSummary{}, classify("deleteOne", filter, err)
	}
	m.trace("deleteOne", start, "deleted", res.DeletedCount)
	return DeleteSummary{Deleted: res.DeletedCount}, nil
}

// InsertMany inserts books and reports how many were written.
func (m *MongoStore) InsertMany(ctx context.Context, books []Book) (int, error) {
	if len(books) == 0 {
		return 0, nil
	}
	start := time.Now()
	res, err := m.coll.InsertMany(ctx, books)
	if err != nil {
		return 0, classify("insertMany", bson.D{{Key: "documents", Value: len(books)}}, err)
	}
	m.trace("insertMany", start, "inserted", len(res.InsertedIDs))
	return len(res.InsertedIDs), nil
}

// Drop removes the collection and its indexes.
func (m *MongoStore) Drop(ctx context.Context) error {
	if err := m.coll.Drop(ctx); err != nil {
		return classify("drop", nil, err)
	}
	return nil
}

// CreateIndex declares an index. Declaring an identical index again is
// accepted by the server without creating a duplicate.
func (m *MongoStore) CreateIndex(ctx context.Context, spec IndexSpec) (string, error) {
	start := time.Now()
	model := mongo.IndexModel{
		Keys:    spec.KeyDoc(),
		Options: options.Index().SetName(spec.IndexName()),
	}

	name, err := m.coll.Indexes().CreateOne(ctx, model)
	if err != nil {
		return "", classify("createIndex", bson.D{{Key: "key", Value: spec.KeyDoc()}, {Key: "name", Value: spec.IndexName()}}, err)
	}
	m.trace("createIndex", start, "index", name)
	return name, nil
}

// ListIndexes returns every index on the collection, _id_ included.
func (m *MongoStore) ListIndexes(ctx context.Context) ([]IndexSpec, error) {
	cursor, err := m.coll.Indexes().List(ctx)
	if err != nil {
		return nil, classify("listIndexes", nil, err)
	}

	var raw []struct {
		Name string `bson:"name"`
		Key  bson.D `bson:"key"`
	}
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, classify("listIndexes", nil, err)
	}

	specs := make([]IndexSpec, 0, len(raw))
	for _, r := range raw {
		spec := IndexSpec{Name: r.Name}
		for _, k := range r.Key {
			spec.Keys = append(spec.Keys, IndexKey{Field: k.Key, Order: cast.ToInt(k.Value)})
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Explain returns execution statistics for a find with filter, optionally
// forcing the index described by hint.
func (m *MongoStore) Explain(ctx context.Context, filter bson.D, hint *IndexSpec) (*Plan, error) {
	cmd := explainCommand(m.coll.Name(), filter, hint)

	var raw bson.M
	if err := m.db.RunCommand(ctx, cmd).Decode(&raw); err != nil {
		return nil, classify("explain", cmd, err)
	}
	return ParsePlan(raw), nil
}

// Close disconnects from MongoDB.
func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
