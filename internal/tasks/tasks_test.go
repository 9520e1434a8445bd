package tasks

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/bookshelf/bookshelf/internal/bookstore"
	"github.com/bookshelf/bookshelf/internal/config"
	"github.com/bookshelf/bookshelf/internal/report"
)

func textPrinter() (*report.Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return report.NewPrinter(&buf, config.OutputText), &buf
}

func TestPing(t *testing.T) {
	mock := &bookstore.MockStore{PingResult: bson.M{"ok": 1.0}}
	p, buf := textPrinter()

	require.NoError(t, Ping()(context.Background(), mock, p))
	assert.Contains(t, buf.String(), "ok=1")
}

func TestPingError(t *testing.T) {
	mock := &bookstore.MockStore{PingErr: bookstore.ErrConnection}
	p, _ := textPrinter()

	err := Ping()(context.Background(), mock, p)
	assert.True(t, bookstore.IsConnectionError(err))
}

func TestSeed(t *testing.T) {
	mock := &bookstore.MockStore{CountResults: []int64{17}}
	p, buf := textPrinter()

	err := Seed(SeedParams{Drop: true, Extra: 5, Seed: 1})(context.Background(), mock, p)
	require.NoError(t, err)

	assert.True(t, mock.Dropped)
	assert.Len(t, mock.Inserted, 17)
	assert.Equal(t, bookstore.Fixtures(), mock.Inserted[:12])
	assert.Contains(t, buf.String(), "inserted 17 books; collection now holds 17")
}

func TestSeedWithoutDrop(t *testing.T) {
	mock := &bookstore.MockStore{CountResults: []int64{24}}
	p, _ := textPrinter()

	require.NoError(t, Seed(SeedParams{})(context.Background(), mock, p))
	assert.False(t, mock.Dropped)
	assert.Len(t, mock.Inserted, 12)
}

func TestQueries(t *testing.T) {
	gatsby := &bookstore.Book{Title: "The Great Gatsby", Price: 11.99}
	mock := &bookstore.MockStore{
		FindResults: [][]bson.M{
			{{"title": "The Great Gatsby"}, {"title": "The Alchemist"}},
			{{"title": "The Catcher in the Rye"}},
			{{"title": "1984"}, {"title": "Animal Farm"}},
		},
		UpdateResult:  bookstore.UpdateSummary{Matched: 1, Modified: 1},
		FindOneResult: gatsby,
		DeleteResult:  bookstore.DeleteSummary{Deleted: 1},
		CountResults:  []int64{11},
	}
	p, buf := textPrinter()

	require.NoError(t, Queries(DefaultQueries())(context.Background(), mock, p))

	require.Len(t, mock.FindCalls, 3)
	assert.Equal(t, bookstore.ByGenre("Fiction"), mock.FindCalls[0].Filter)
	assert.Equal(t, bookstore.PublishedAfter(1950), mock.FindCalls[1].Filter)
	assert.Equal(t, bookstore.ByAuthor("George Orwell"), mock.FindCalls[2].Filter)

	require.Len(t, mock.Updates, 1)
	assert.Equal(t, [2]bson.D{bookstore.ByTitle("The Great Gatsby"), bookstore.SetPrice(11.99)}, mock.Updates[0])
	assert.Equal(t, []bson.D{bookstore.ByTitle("The Great Gatsby")}, mock.FindOneCalls)
	assert.Equal(t, []bson.D{bookstore.ByTitle("Moby Dick")}, mock.Deletes)

	out := buf.String()
	assert.Contains(t, out, "Animal Farm")
	assert.Contains(t, out, "matched: 1, modified: 1")
	assert.Contains(t, out, `"price":11.99`)
	assert.Contains(t, out, "deleted: 1")
	assert.Contains(t, out, "Total books remaining: 11")
}

func TestQueriesNoMatchesAreInformational(t *testing.T) {
	mock := &bookstore.MockStore{CountResults: []int64{12}}
	p, buf := textPrinter()

	require.NoError(t, Queries(DefaultQueries())(context.Background(), mock, p))

	out := buf.String()
	assert.Contains(t, out, "(no matching books)")
	assert.Contains(t, out, "nothing updated")
	assert.Contains(t, out, "nothing deleted")
	assert.Contains(t, out, "Total books remaining: 12")
}

func TestQueriesStopsAtFirstError(t *testing.T) {
	queryErr := &bookstore.QueryError{Op: "find", Err: errors.New("bad filter")}
	mock := &bookstore.MockStore{FindErr: queryErr}
	p, _ := textPrinter()

	err := Queries(DefaultQueries())(context.Background(), mock, p)
	assert.ErrorIs(t, err, queryErr)
	assert.Len(t, mock.FindCalls, 1)
	assert.Empty(t, mock.Updates)
	assert.Empty(t, mock.Deletes)
}

func TestAdvanced(t *testing.T) {
	books := []bookstore.Book{
		{Title: "Pride and Prejudice", Price: 7.99},
		{Title: "Animal Farm", Price: 8.5},
	}
	mock := &bookstore.MockStore{
		FindResults:     [][]bson.M{{}, {{"title": "The Alchemist", "author": "Paulo Coelho", "price": 10.99}}},
		FindBookResults: [][]bookstore.Book{nil, nil, books},
	}
	p, buf := textPrinter()

	require.NoError(t, Advanced(DefaultAdvanced())(context.Background(), mock, p))

	// 2 finds, 2 sorted finds, 2 pages
	require.Len(t, mock.FindCalls, 6)
	assert.Equal(t, bookstore.And(bookstore.InStock(true), bookstore.PublishedAfter(2010)), mock.FindCalls[0].Filter)
	assert.Equal(t, bookstore.Include("title", "author", "price"), mock.FindCalls[1].Opts.Projection)
	assert.Equal(t, bookstore.SortBy("price", bookstore.Ascending), mock.FindCalls[2].Opts.Sort)
	assert.Equal(t, bookstore.SortBy("price", bookstore.Descending), mock.FindCalls[3].Opts.Sort)
	byTitle := bookstore.SortBy("title", bookstore.Ascending)
	assert.Equal(t, bookstore.FindOptions{Sort: byTitle, Limit: 5}, mock.FindCalls[4].Opts)
	assert.Equal(t, bookstore.FindOptions{Sort: byTitle, Limit: 5, Skip: 5}, mock.FindCalls[5].Opts)

	out := buf.String()
	assert.Contains(t, out, "Pride and Prejudice: $7.99")
	assert.Contains(t, out, "4. Page 1 by title (books 1-5)")
	assert.Contains(t, out, "4. Page 2 by title (books 6-10)")
}

func TestAdvancedManyPagesLabels(t *testing.T) {
	params := DefaultAdvanced()
	params.Pages = 30
	mock := &bookstore.MockStore{}
	p, buf := textPrinter()

	require.NoError(t, Advanced(params)(context.Background(), mock, p))
	assert.Contains(t, buf.String(), "4. Page 30 by title (books 146-150)")
}

func TestAggregations(t *testing.T) {
	mock := &bookstore.MockStore{
		AggregateResults: [][]bson.M{
			{{"_id": "Fantasy", "averagePrice": 17.49, "count": int32(2)}},
			{{"_id": "George Orwell", "bookCount": int32(2)}},
			{{"_id": 1980.0, "count": int32(1)}, {"_id": 1810.0, "count": int32(1)}},
		},
	}
	p, buf := textPrinter()

	require.NoError(t, Aggregations(DefaultAggregations())(context.Background(), mock, p))

	require.Len(t, mock.Pipelines, 3)
	assert.Equal(t, bookstore.AveragePriceByGenre(), mock.Pipelines[0])
	assert.Equal(t, bookstore.MostProlificAuthors(1), mock.Pipelines[1])
	assert.Equal(t, bookstore.BooksByDecade(), mock.Pipelines[2])

	out := buf.String()
	assert.Contains(t, out, "17.49")
	assert.Contains(t, out, "George Orwell")
	assert.Contains(t, out, "1980s")
	assert.Contains(t, out, "1810s")
}

func TestAggregationsError(t *testing.T) {
	mock := &bookstore.MockStore{AggregateErr: bookstore.ErrConnection}
	p, _ := textPrinter()

	err := Aggregations(DefaultAggregations())(context.Background(), mock, p)
	assert.ErrorIs(t, err, bookstore.ErrConnection)
	assert.Len(t, mock.Pipelines, 1)
}

func TestIndexing(t *testing.T) {
	mock := &bookstore.MockStore{
		Indexes: []bookstore.IndexSpec{
			{Name: "_id_", Keys: []bookstore.IndexKey{bookstore.Asc("_id")}},
			{Name: "title_1", Keys: []bookstore.IndexKey{bookstore.Asc("title")}},
		},
		Plans: []*bookstore.Plan{
			{Stage: "FETCH", IndexUsed: true, IndexName: "title_1", TotalDocsExamined: 1},
			{Stage: "FETCH", IndexUsed: true, IndexName: "title_1", TotalDocsExamined: 1},
			{Stage: "FETCH", IndexUsed: true, IndexName: "author_1_published_year_1", TotalDocsExamined: 1},
		},
	}
	p, buf := textPrinter()

	require.NoError(t, Indexing(DefaultIndexing())(context.Background(), mock, p))

	require.Len(t, mock.CreatedIndexes, 2)
	assert.Equal(t, "title_1", mock.CreatedIndexes[0].IndexName())
	assert.Equal(t, "author_1_published_year_1", mock.CreatedIndexes[1].IndexName())

	require.Len(t, mock.Explains, 3)
	assert.Nil(t, mock.Explains[0])
	require.NotNil(t, mock.Explains[1])
	assert.Equal(t, "title_1", mock.Explains[1].IndexName())
	assert.Nil(t, mock.Explains[2])

	out := buf.String()
	assert.Contains(t, out, "index title_1 ready on {title: 1}")
	assert.Contains(t, out, "_id_ {_id: 1}")
	assert.Contains(t, out, "author_1_published_year_1")
}

func TestIndexingRunsTwice(t *testing.T) {
	mock := &bookstore.MockStore{}
	p, _ := textPrinter()

	task := Indexing(DefaultIndexing())
	require.NoError(t, task(context.Background(), mock, p))
	require.NoError(t, task(context.Background(), mock, p))
	assert.Len(t, mock.CreatedIndexes, 4)
}
