package bookstore

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// FindCall records the arguments of one Find or FindBooks call.
type FindCall struct {
	Filter bson.D
	Opts   FindOptions
}

// MockStore is a test double for the Store interface. Results are served in
// call order from the queued slices; the last entry repeats once exhausted.
type MockStore struct {
	PingResult bson.M
	PingErr    error

	FindResults     [][]bson.M
	FindErr         error
	FindBookResults [][]Book
	FindBooksErr    error
	FindOneResult   *Book
	FindOneErr      error
	CountResults    []int64
	CountErr        error

	AggregateResults [][]bson.M
	AggregateErr     error

	UpdateResult UpdateSummary
	UpdateErr    error
	DeleteResult DeleteSummary
	DeleteErr    error
	InsertErr    error
	DropErr      error

	CreateIndexErr error
	Indexes        []IndexSpec
	ListIndexesErr error
	Plans          []*Plan
	ExplainErr     error

	CloseErr error

	// Track calls
	FindCalls      []FindCall
	FindOneCalls   []bson.D
	CountCalls     []bson.D
	Pipelines      []mongo.Pipeline
	Updates        [][2]bson.D
	Deletes        []bson.D
	Inserted       []Book
	Dropped        bool
	CreatedIndexes []IndexSpec
	Explains       []*IndexSpec
	Closed         bool
}

func next[T any](queue []T, call int) T {
	var zero T
	if len(queue) == 0 {
		return zero
	}
	if call >= len(queue) {
		return queue[len(queue)-1]
	}
	return queue[call]
}

func (m *MockStore) Ping(_ context.Context) (bson.M, error) {
	return m.PingResult, m.PingErr
}

func (m *MockStore) Find(_ context.Context, filter bson.D, opts FindOptions) ([]bson.M, error) {
	call := len(m.FindCalls)
	m.FindCalls = append(m.FindCalls, FindCall{Filter: filter, Opts: opts})
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	return next(m.FindResults, call), nil
}

func (m *MockStore) FindBooks(_ context.Context, filter bson.D, opts FindOptions) ([]Book, error) {
	call := len(m.FindCalls)
	m.FindCalls = append(m.FindCalls, FindCall{Filter: filter, Opts: opts})
	if m.FindBooksErr != nil {
		return nil, m.FindBooksErr
	}
	return next(m.FindBookResults, call), nil
}

func (m *MockStore) FindOne(_ context.Context, filter bson.D) (*Book, error) {
	m.FindOneCalls = append(m.FindOneCalls, filter)
	return m.FindOneResult, m.FindOneErr
}

func (m *MockStore) Count(_ context.Context, filter bson.D) (int64, error) {
	call := len(m.CountCalls)
	m.CountCalls = append(m.CountCalls, filter)
	return next(m.CountResults, call), m.CountErr
}

func (m *MockStore) Aggregate(_ context.Context, pipeline mongo.Pipeline) ([]bson.M, error) {
	call := len(m.Pipelines)
	m.Pipelines = append(m.Pipelines, pipeline)
	if m.AggregateErr != nil {
		return nil, m.AggregateErr
	}
	return next(m.AggregateResults, call), nil
}

func (m *MockStore) UpdateOne(_ context.Context, filter, set bson.D) (UpdateSummary, error) {
	m.Updates = append(m.Updates, [2]bson.D{filter, set})
	return m.UpdateResult, m.UpdateErr
}

func (m *MockStore) DeleteOne(_ context.Context, filter bson.D) (DeleteSummary, error) {
	m.Deletes = append(m.Deletes, filter)
	return m.DeleteResult, m.DeleteErr
}

func (m *MockStore) InsertMany(_ context.Context, books []Book) (int, error) {
	if m.InsertErr != nil {
		return 0, m.InsertErr
	}
	m.Inserted = append(m.Inserted, books...)
	return len(books), nil
}

func (m *MockStore) Drop(_ context.Context) error {
	m.Dropped = true
	return m.DropErr
}

func (m *MockStore) CreateIndex(_ context.Context, spec IndexSpec) (string, error) {
	m.CreatedIndexes = append(m.CreatedIndexes, spec)
	if m.CreateIndexErr != nil {
		return "", m.CreateIndexErr
	}
	return spec.IndexName(), nil
}

func (m *MockStore) ListIndexes(_ context.Context) ([]IndexSpec, error) {
	return m.Indexes, m.ListIndexesErr
}

func (m *MockStore) Explain(_ context.Context, _ bson.D, hint *IndexSpec) (*Plan, error) {
	call := len(m.Explains)
	m.Explains = append(m.Explains, hint)
	if m.ExplainErr != nil {
		return nil, m.ExplainErr
	}
	if p := next(m.Plans, call); p != nil {
		return p, nil
	}
	return &Plan{}, nil
}

func (m *MockStore) Close(_ context.Context) error {
	m.Closed = true
	return m.CloseErr
}

// OpenMock returns an OpenFunc that hands out m.
func OpenMock(m *MockStore) OpenFunc {
	return func(context.Context) (Store, error) {
		return m, nil
	}
}
