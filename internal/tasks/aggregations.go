package tasks

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samber/lo"

	"github.com/bookshelf/bookshelf/internal/bookstore"
	"github.com/bookshelf/bookshelf/internal/report"
)

// AggregationsParams are the inputs of the aggregations task.
type AggregationsParams struct {
	TopAuthors int64
}

// DefaultAggregations reports the single most prolific author.
func DefaultAggregations() AggregationsParams {
	return AggregationsParams{TopAuthors: 1}
}

// Aggregations reports average price per genre, the most prolific authors and
// the number of books per publication decade.
func Aggregations(params AggregationsParams) Task {
	return func(ctx context.Context, s bookstore.Store, p *report.Printer) error {
		rows, err := s.Aggregate(ctx, bookstore.AveragePriceByGenre())
		if err != nil {
			return err
		}
		p.Section("1. Average price by genre")
		p.Table([]string{"Genre", "Average Price", "Book Count"},
			lo.Map(bookstore.GenreStats(rows), func(g bookstore.GenreStat, _ int) []string {
				return []string{g.Genre, fmt.Sprintf("%.2f", g.AveragePrice), strconv.FormatInt(g.Count, 10)}
			}))

		rows, err = s.Aggregate(ctx, bookstore.MostProlificAuthors(params.TopAuthors))
		if err != nil {
			return err
		}
		p.Section("2. Author with most books")
		p.Table([]string{"Author", "Book Count"},
			lo.Map(bookstore.AuthorStats(rows), func(a bookstore.AuthorStat, _ int) []string {
				return []string{a.Author, strconv.FormatInt(a.BookCount, 10)}
			}))

		rows, err = s.Aggregate(ctx, bookstore.BooksByDecade())
		if err != nil {
			return err
		}
		p.Section("3. Books by publication decade")
		p.Table([]string{"Decade", "Book Count"},
			lo.Map(bookstore.DecadeStats(rows), func(d bookstore.DecadeStat, _ int) []string {
				return []string{fmt.Sprintf("%ds", d.Decade), strconv.FormatInt(d.Count, 10)}
			}))
		return p.Err()
	}
}
