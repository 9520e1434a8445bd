package tasks

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/bookshelf/bookshelf/internal/bookstore"
	"github.com/bookshelf/bookshelf/internal/report"
)

// QueriesParams are the inputs of the basic queries task.
type QueriesParams struct {
	Genre          string
	PublishedAfter int
	Author         string
	UpdateTitle    string
	NewPrice       float64
	DeleteTitle    string
}

// DefaultQueries targets the fixture data.
func DefaultQueries() QueriesParams {
	return QueriesParams{
		Genre:          "Fiction",
		PublishedAfter: 1950,
		Author:         "George Orwell",
		UpdateTitle:    "The Great Gatsby",
		NewPrice:       11.99,
		DeleteTitle:    "Moby Dick",
	}
}

// Queries runs the basic finds, then updates one book's price and deletes
// another, verifying each mutation with a follow-up read.
func Queries(params QueriesParams) Task {
	return func(ctx context.Context, s bookstore.Store, p *report.Printer) error {
		finds := []struct {
			title  string
			filter bson.D
		}{
			{fmt.Sprintf("1. %s books", params.Genre), bookstore.ByGenre(params.Genre)},
			{fmt.Sprintf("2. Books published after %d", params.PublishedAfter), bookstore.PublishedAfter(params.PublishedAfter)},
			{fmt.Sprintf("3. Books by %s", params.Author), bookstore.ByAuthor(params.Author)},
		}
		for _, f := range finds {
			docs, err := s.Find(ctx, f.filter, bookstore.FindOptions{})
			if err != nil {
				return err
			}
			p.Section(f.title)
			p.Records(docs)
		}

		updated, err := s.UpdateOne(ctx, bookstore.ByTitle(params.UpdateTitle), bookstore.SetPrice(params.NewPrice))
		if err != nil {
			return err
		}
		p.Section(fmt.Sprintf("4. Updated %s price", params.UpdateTitle))
		p.Update(updated)

		book, err := s.FindOne(ctx, bookstore.ByTitle(params.UpdateTitle))
		if err != nil {
			return err
		}
		p.Message("Updated book details:")
		p.Book(book)

		deleted, err := s.DeleteOne(ctx, bookstore.ByTitle(params.DeleteTitle))
		if err != nil {
			return err
		}
		p.Section(fmt.Sprintf("5. Deleted %s", params.DeleteTitle))
		p.Delete(deleted)

		remaining, err := s.Count(ctx, bookstore.All())
		if err != nil {
			return err
		}
		p.Message("Total books remaining: %d", remaining)
		return p.Err()
	}
}
