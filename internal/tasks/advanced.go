package tasks

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/bookshelf/bookshelf/internal/bookstore"
	"github.com/bookshelf/bookshelf/internal/report"
)

// AdvancedParams are the inputs of the advanced queries task.
type AdvancedParams struct {
	InStockAfter int
	Genre        string
	PageSize     int64
	Pages        int64
}

// DefaultAdvanced targets the fixture data.
func DefaultAdvanced() AdvancedParams {
	return AdvancedParams{
		InStockAfter: 2010,
		Genre:        "Fiction",
		PageSize:     5,
		Pages:        2,
	}
}

// Advanced runs a compound filter, a projection, price sorting in both
// directions and pagination over the title order.
func Advanced(params AdvancedParams) Task {
	return func(ctx context.Context, s bookstore.Store, p *report.Printer) error {
		recent, err := s.Find(ctx,
			bookstore.And(bookstore.InStock(true), bookstore.PublishedAfter(params.InStockAfter)),
			bookstore.FindOptions{})
		if err != nil {
			return err
		}
		p.Section(fmt.Sprintf("1. In-stock books published after %d", params.InStockAfter))
		p.Records(recent)

		projected, err := s.Find(ctx, bookstore.ByGenre(params.Genre), bookstore.FindOptions{
			Projection: bookstore.Include(bookstore.FieldTitle, bookstore.FieldAuthor, bookstore.FieldPrice),
		})
		if err != nil {
			return err
		}
		p.Section(fmt.Sprintf("2. %s books with projection (title, author, price only)", params.Genre))
		p.Records(projected)

		for _, dir := range []struct {
			label string
			order int
		}{
			{"3a. Books sorted by price (ascending)", bookstore.Ascending},
			{"3b. Books sorted by price (descending)", bookstore.Descending},
		} {
			books, err := s.FindBooks(ctx, bookstore.All(), bookstore.FindOptions{
				Sort: bookstore.SortBy(bookstore.FieldPrice, dir.order),
			})
			if err != nil {
				return err
			}
			p.Section(dir.label)
			p.List(lo.Map(books, func(b bookstore.Book, _ int) string {
				return fmt.Sprintf("%s: $%.2f", b.Title, b.Price)
			}))
		}

		for page := int64(0); page < params.Pages; page++ {
			opts := bookstore.Page(page, params.PageSize)
			opts.Sort = bookstore.SortBy(bookstore.FieldTitle, bookstore.Ascending)
			books, err := s.FindBooks(ctx, bookstore.All(), opts)
			if err != nil {
				return err
			}
			first := page*params.PageSize + 1
			p.Section(fmt.Sprintf("4. Page %d by title (books %d-%d)", page+1, first, first+params.PageSize-1))
			p.List(lo.Map(books, func(b bookstore.Book, _ int) string { return b.Title }))
		}
		return p.Err()
	}
}
