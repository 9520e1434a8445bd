// Package tasks holds the scripted sequences the CLI runs. Each task receives
// the Store it works on and stops at the first failed operation.
package tasks

import (
	"context"
	"fmt"

	"github.com/bookshelf/bookshelf/internal/bookstore"
	"github.com/bookshelf/bookshelf/internal/report"
)

// Task is one scripted sequence of operations.
type Task func(ctx context.Context, s bookstore.Store, p *report.Printer) error

// Named pairs a task with the name it is run and logged under.
type Named struct {
	Name string
	Run  Task
}

// Ping checks connectivity with the ping command.
func Ping() Task {
	return func(ctx context.Context, s bookstore.Store, p *report.Printer) error {
		res, err := s.Ping(ctx)
		if err != nil {
			return fmt.Errorf("ping: %w", err)
		}
		p.Section("Ping")
		p.Message("server responded: ok=%v", res["ok"])
		return p.Err()
	}
}

// SeedParams controls seeding.
type SeedParams struct {
	Drop  bool  // drop the collection first
	Extra int   // generated books added after the fixtures
	Seed  int64 // generator seed for the extra books
}

// Seed loads the fixture books, plus any generated extras.
func Seed(params SeedParams) Task {
	return func(ctx context.Context, s bookstore.Store, p *report.Printer) error {
		p.Section("Seeding books")
		if params.Drop {
			if err := s.Drop(ctx); err != nil {
				return fmt.Errorf("dropping collection: %w", err)
			}
			p.Message("dropped existing collection")
		}

		books := bookstore.Fixtures()
		if params.Extra > 0 {
			books = append(books, bookstore.FakeBooks(params.Extra, params.Seed)...)
		}
		n, err := s.InsertMany(ctx, books)
		if err != nil {
			return fmt.Errorf("inserting books: %w", err)
		}

		total, err := s.Count(ctx, bookstore.All())
		if err != nil {
			return fmt.Errorf("counting books: %w", err)
		}
		p.Message("inserted %d books; collection now holds %d", n, total)
		return p.Err()
	}
}
