//go:build integration

package bookstore

import (
	"cmp"
	"context"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/bookshelf/bookshelf/internal/config"
	"github.com/bookshelf/bookshelf/internal/logging"
)

func skipIfNoMongo(t *testing.T) {
	t.Helper()
	if os.Getenv("BOOKSHELF_TEST_MONGO_URI") == "" {
		t.Skip("skipping: BOOKSHELF_TEST_MONGO_URI not set")
	}
}

// seededStore connects to a fresh collection holding the fixtures plus a batch
// of generated books, and drops it when the test ends.
func seededStore(t *testing.T) (*MongoStore, []Book) {
	t.Helper()
	skipIfNoMongo(t)
	ctx := context.Background()

	cfg := config.MongoConfig{
		URI:            os.Getenv("BOOKSHELF_TEST_MONGO_URI"),
		Database:       "bookshelf_test",
		Collection:     "books_" + uuid.NewString()[:8],
		ConnectTimeout: 5 * time.Second,
	}
	store, err := NewMongoStore(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Drop(ctx)
		_ = store.Close(ctx)
	})

	books := append(Fixtures(), FakeBooks(40, 7)...)
	n, err := store.InsertMany(ctx, books)
	require.NoError(t, err)
	require.Equal(t, len(books), n)
	return store, books
}

func TestConnectUnreachable(t *testing.T) {
	skipIfNoMongo(t)
	cfg := config.MongoConfig{
		URI:            "mongodb://127.0.0.1:1/?directConnection=true",
		Database:       "bookshelf_test",
		Collection:     "books",
		ConnectTimeout: 200 * time.Millisecond,
	}
	_, err := NewMongoStore(context.Background(), cfg, logging.Discard())
	assert.True(t, IsConnectionError(err))
}

func TestFindMatchesExactlyTheFilter(t *testing.T) {
	store, books := seededStore(t)
	ctx := context.Background()

	got, err := store.FindBooks(ctx, And(InStock(true), PublishedAfter(1950)), FindOptions{})
	require.NoError(t, err)

	want := lo.Filter(books, func(b Book, _ int) bool { return b.InStock && b.PublishedYear > 1950 })
	titles := func(bs []Book) []string {
		out := lo.Map(bs, func(b Book, _ int) string { return b.Title })
		slices.Sort(out)
		return out
	}
	assert.Equal(t, titles(want), titles(got))
}

func TestFindEmptyResult(t *testing.T) {
	store, _ := seededStore(t)

	got, err := store.Find(context.Background(), ByGenre("Cookbook"), FindOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestProjectionDropsFields(t *testing.T) {
	store, _ := seededStore(t)

	got, err := store.Find(context.Background(), ByGenre("Fiction"), FindOptions{Projection: Include(FieldTitle, FieldAuthor, FieldPrice)})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for _, doc := range got {
		assert.ElementsMatch(t, []string{"title", "author", "price"}, lo.Keys(doc))
	}
}

func TestSortAscendingIsReverseOfDescending(t *testing.T) {
	store, _ := seededStore(t)
	ctx := context.Background()

	asc, err := store.FindBooks(ctx, All(), FindOptions{Sort: SortBy(FieldPrice, Ascending)})
	require.NoError(t, err)
	desc, err := store.FindBooks(ctx, All(), FindOptions{Sort: SortBy(FieldPrice, Descending)})
	require.NoError(t, err)

	prices := func(bs []Book) []float64 { return lo.Map(bs, func(b Book, _ int) float64 { return b.Price }) }
	reversed := prices(desc)
	slices.Reverse(reversed)
	assert.Equal(t, prices(asc), reversed)
	assert.True(t, slices.IsSorted(prices(asc)))
}

func TestPaginationConcatenatesToUnpagedSort(t *testing.T) {
	store, _ := seededStore(t)
	ctx := context.Background()
	sort := []SortField{{Field: FieldTitle, Order: Ascending}}

	unpaged, err := store.FindBooks(ctx, All(), FindOptions{Sort: sort, Limit: 10})
	require.NoError(t, err)

	var paged []Book
	for page := int64(0); page < 2; page++ {
		opts := Page(page, 5)
		opts.Sort = sort
		got, err := store.FindBooks(ctx, All(), opts)
		require.NoError(t, err)
		require.Len(t, got, 5)
		paged = append(paged, got...)
	}
	assert.Equal(t, unpaged, paged)
}

func TestAveragePriceByGenre(t *testing.T) {
	store, books := seededStore(t)

	rows, err := store.Aggregate(context.Background(), AveragePriceByGenre())
	require.NoError(t, err)
	stats := GenreStats(rows)

	total := lo.Reduce(stats, func(acc int64, s GenreStat, _ int) int64 { return acc + s.Count }, 0)
	assert.Equal(t, int64(len(books)), total)

	for _, s := range stats {
		genre := lo.Filter(books, func(b Book, _ int) bool { return b.Genre == s.Genre })
		sum := lo.Reduce(genre, func(acc float64, b Book, _ int) float64 { return acc + b.Price }, 0)
		assert.InDelta(t, sum/float64(len(genre)), s.AveragePrice, 1e-9, s.Genre)
	}
	assert.True(t, slices.IsSortedFunc(stats, func(a, b GenreStat) int {
		return cmp.Compare(b.AveragePrice, a.AveragePrice)
	}))
}

func TestMostProlificAuthor(t *testing.T) {
	store, _ := seededStore(t)

	rows, err := store.Aggregate(context.Background(), MostProlificAuthors(1))
	require.NoError(t, err)
	stats := AuthorStats(rows)
	require.Len(t, stats, 1)
	assert.GreaterOrEqual(t, stats[0].BookCount, int64(2))
}

func TestBooksByDecade(t *testing.T) {
	store, books := seededStore(t)
	ctx := context.Background()
	_, err := store.InsertMany(ctx, []Book{
		{Title: "Old Tablet", Author: "Anonymous", Genre: "Epic", PublishedYear: -5, Price: 1},
	})
	require.NoError(t, err)
	books = append(books, Book{PublishedYear: -5})

	rows, err := store.Aggregate(ctx, BooksByDecade())
	require.NoError(t, err)
	stats := DecadeStats(rows)

	want := map[int]int{}
	for _, b := range books {
		want[Decade(b.PublishedYear)]++
	}
	got := map[int]int{}
	for _, s := range stats {
		got[s.Decade] = int(s.Count)
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 1, got[-10])
	eighties := lo.Filter(Fixtures(), func(b Book, _ int) bool { return Decade(b.PublishedYear) == 1980 })
	require.NotEmpty(t, eighties)
	assert.GreaterOrEqual(t, got[1980], len(eighties), "The Alchemist (1988) lands in 1980")
	assert.Equal(t, want[1980], got[1980])
}

func TestUpdateOneNoMatchLeavesCollection(t *testing.T) {
	store, _ := seededStore(t)
	ctx := context.Background()

	before, err := store.FindBooks(ctx, All(), FindOptions{Sort: SortBy(FieldTitle, Ascending)})
	require.NoError(t, err)

	summary, err := store.UpdateOne(ctx, ByTitle("No Such Book"), SetPrice(1))
	require.NoError(t, err)
	assert.Equal(t, UpdateSummary{}, summary)

	after, err := store.FindBooks(ctx, All(), FindOptions{Sort: SortBy(FieldTitle, Ascending)})
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateOneSetsPrice(t *testing.T) {
	store, _ := seededStore(t)
	ctx := context.Background()

	summary, err := store.UpdateOne(ctx, ByTitle("The Great Gatsby"), SetPrice(11.99))
	require.NoError(t, err)
	assert.Equal(t, UpdateSummary{Matched: 1, Modified: 1}, summary)

	book, err := store.FindOne(ctx, ByTitle("The Great Gatsby"))
	require.NoError(t, err)
	require.NotNil(t, book)
	assert.Equal(t, 11.99, book.Price)

	again, err := store.UpdateOne(ctx, ByTitle("The Great Gatsby"), SetPrice(11.99))
	require.NoError(t, err)
	assert.Equal(t, UpdateSummary{Matched: 1, Modified: 0}, again)
}

func TestDeleteOneDecrementsCount(t *testing.T) {
	store, books := seededStore(t)
	ctx := context.Background()

	summary, err := store.DeleteOne(ctx, ByTitle("Moby Dick"))
	require.NoError(t, err)
	assert.Equal(t, DeleteSummary{Deleted: 1}, summary)

	n, err := store.Count(ctx, All())
	require.NoError(t, err)
	assert.Equal(t, int64(len(books)-1), n)

	summary, err = store.DeleteOne(ctx, ByTitle("Moby Dick"))
	require.NoError(t, err)
	assert.Equal(t, DeleteSummary{}, summary)

	n, err = store.Count(ctx, All())
	require.NoError(t, err)
	assert.Equal(t, int64(len(books)-1), n)

	missing, err := store.FindOne(ctx, ByTitle("Moby Dick"))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateIndexIdempotent(t *testing.T) {
	store, _ := seededStore(t)
	ctx := context.Background()
	spec := Index(Asc(FieldAuthor), Asc(FieldPublishedYear))

	for i := 0; i < 2; i++ {
		name, err := store.CreateIndex(ctx, spec)
		require.NoError(t, err)
		assert.Equal(t, "author_1_published_year_1", name)
	}

	indexes, err := store.ListIndexes(ctx)
	require.NoError(t, err)
	matching := lo.Filter(indexes, func(s IndexSpec, _ int) bool { return s.Name == spec.IndexName() })
	require.Len(t, matching, 1)
	assert.Equal(t, spec.Keys, matching[0].Keys)
}

func TestExplainReportsIndexUse(t *testing.T) {
	store, _ := seededStore(t)
	ctx := context.Background()
	titleIndex := Index(Asc(FieldTitle))

	scan, err := store.Explain(ctx, ByTitle("1984"), nil)
	require.NoError(t, err)
	assert.False(t, scan.IndexUsed)
	assert.Equal(t, int64(1), scan.NReturned)

	_, err = store.CreateIndex(ctx, titleIndex)
	require.NoError(t, err)

	hinted, err := store.Explain(ctx, ByTitle("1984"), &titleIndex)
	require.NoError(t, err)
	assert.True(t, hinted.IndexUsed)
	assert.Equal(t, "title_1", hinted.IndexName)
	assert.Equal(t, int64(1), hinted.TotalDocsExamined)
	assert.Less(t, hinted.TotalDocsExamined, scan.TotalDocsExamined)
}

func TestMalformedFilterIsQueryError(t *testing.T) {
	store, _ := seededStore(t)

	_, err := store.Find(context.Background(), bson.D{{Key: "price", Value: bson.D{{Key: "$bogus", Value: 1}}}}, FindOptions{})
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "find", qe.Op)
	assert.False(t, IsConnectionError(err))
}

func TestPing(t *testing.T) {
	store, _ := seededStore(t)

	res, err := store.Ping(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, res["ok"])
}
