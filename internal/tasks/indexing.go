package tasks

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/bookshelf/bookshelf/internal/bookstore"
	"github.com/bookshelf/bookshelf/internal/report"
)

// IndexingParams are the inputs of the indexing task.
type IndexingParams struct {
	Indexes []bookstore.IndexSpec

	// ProbeTitle is looked up with and without the first index as a hint.
	ProbeTitle string

	// CompoundFilter exercises the compound index.
	CompoundFilter bson.D
}

// DefaultIndexing creates the title and author/year indexes.
func DefaultIndexing() IndexingParams {
	return IndexingParams{
		Indexes: []bookstore.IndexSpec{
			bookstore.Index(bookstore.Asc(bookstore.FieldTitle)),
			bookstore.Index(bookstore.Asc(bookstore.FieldAuthor), bookstore.Asc(bookstore.FieldPublishedYear)),
		},
		ProbeTitle: "1984",
		CompoundFilter: bookstore.And(
			bookstore.ByAuthor("J.R.R. Tolkien"),
			bookstore.PublishedAfter(1940),
		),
	}
}

type explainProbe struct {
	label  string
	filter bson.D
	hint   *bookstore.IndexSpec
}

// Indexing declares the indexes, lists what the collection now has and
// compares query plans with and without them.
func Indexing(params IndexingParams) Task {
	return func(ctx context.Context, s bookstore.Store, p *report.Printer) error {
		p.Section("Creating indexes")
		for _, spec := range params.Indexes {
			name, err := s.CreateIndex(ctx, spec)
			if err != nil {
				return err
			}
			p.Message("index %s ready on %s", name, spec)
		}

		existing, err := s.ListIndexes(ctx)
		if err != nil {
			return err
		}
		p.Section("Indexes on collection")
		p.List(lo.Map(existing, func(spec bookstore.IndexSpec, _ int) string {
			return fmt.Sprintf("%s %s", spec.Name, spec)
		}))

		if len(params.Indexes) == 0 {
			return p.Err()
		}

		title := bookstore.ByTitle(params.ProbeTitle)
		hint := params.Indexes[0]
		plans := []explainProbe{
			{fmt.Sprintf("title = %q (planner's choice)", params.ProbeTitle), title, nil},
			{fmt.Sprintf("title = %q (hint %s)", params.ProbeTitle, hint), title, &hint},
		}
		if len(params.CompoundFilter) > 0 {
			plans = append(plans, explainProbe{"compound " + bookstore.FormatParams(params.CompoundFilter), params.CompoundFilter, nil})
		}

		labeled := make([]report.LabeledPlan, 0, len(plans))
		for _, q := range plans {
			plan, err := s.Explain(ctx, q.filter, q.hint)
			if err != nil {
				return err
			}
			labeled = append(labeled, report.LabeledPlan{Label: q.label, Plan: plan})
		}
		p.Section("Query plans (executionStats)")
		p.Plans(labeled)
		return p.Err()
	}
}
