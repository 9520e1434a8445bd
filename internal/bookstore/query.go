package bookstore

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Sort directions.
const (
	Ascending  = 1
	Descending = -1
)

// SortField orders results by one field.
type SortField struct {
	Field string
	Order int // Ascending or Descending
}

// FindOptions shape a find. Zero values mean no projection, natural order,
// no limit and no skip.
type FindOptions struct {
	Projection bson.D
	Sort       []SortField
	Limit      int64
	Skip       int64
}

func (o FindOptions) builder() *options.FindOptionsBuilder {
	opts := options.Find()
	if len(o.Projection) > 0 {
		opts.SetProjection(o.Projection)
	}
	if len(o.Sort) > 0 {
		opts.SetSort(sortDoc(o.Sort))
	}
	if o.Limit > 0 {
		opts.SetLimit(o.Limit)
	}
	if o.Skip > 0 {
		opts.SetSkip(o.Skip)
	}
	return opts
}

// params renders the options for error reports.
func (o FindOptions) params(filter bson.D) bson.D {
	p := bson.D{{Key: "filter", Value: nonNil(filter)}}
	if len(o.Projection) > 0 {
		p = append(p, bson.E{Key: "projection", Value: o.Projection})
	}
	if len(o.Sort) > 0 {
		p = append(p, bson.E{Key: "sort", Value: sortDoc(o.Sort)})
	}
	if o.Limit > 0 {
		p = append(p, bson.E{Key: "limit", Value: o.Limit})
	}
	if o.Skip > 0 {
		p = append(p, bson.E{Key: "skip", Value: o.Skip})
	}
	return p
}

func sortDoc(fields []SortField) bson.D {
	d := make(bson.D, 0, len(fields))
	for _, f := range fields {
		d = append(d, bson.E{Key: f.Field, Value: f.Order})
	}
	return d
}

// nonNil substitutes an empty document for a nil filter, which the driver
// refuses.
func nonNil(filter bson.D) bson.D {
	if filter == nil {
		return bson.D{}
	}
	return filter
}

// SortBy builds a single-field sort.
func SortBy(field string, order int) []SortField {
	return []SortField{{Field: field, Order: order}}
}

// Page returns the options for the zero-based page of the given size.
func Page(page, size int64) FindOptions {
	return FindOptions{Limit: size, Skip: page * size}
}

// Include projects the named fields and suppresses _id.
func Include(fields ...string) bson.D {
	p := make(bson.D, 0, len(fields)+1)
	for _, f := range fields {
		p = append(p, bson.E{Key: f, Value: 1})
	}
	return append(p, bson.E{Key: FieldID, Value: 0})
}

// All matches every book.
func All() bson.D {
	return bson.D{}
}

// ByTitle matches books with the exact title.
func ByTitle(title string) bson.D {
	return bson.D{{Key: FieldTitle, Value: title}}
}

// ByAuthor matches books by the exact author name.
func ByAuthor(author string) bson.D {
	return bson.D{{Key: FieldAuthor, Value: author}}
}

// ByGenre matches books of the exact genre.
func ByGenre(genre string) bson.D {
	return bson.D{{Key: FieldGenre, Value: genre}}
}

// InStock matches books by availability.
func InStock(inStock bool) bson.D {
	return bson.D{{Key: FieldInStock, Value: inStock}}
}

// PublishedAfter matches books published strictly after year.
func PublishedAfter(year int) bson.D {
	return bson.D{{Key: FieldPublishedYear, Value: bson.D{{Key: "$gt", Value: year}}}}
}

// And combines filters on distinct fields into one implicit conjunction.
func And(filters ...bson.D) bson.D {
	var out bson.D
	for _, f := range filters {
		out = append(out, f...)
	}
	return out
}

// SetPrice is the update that changes a book's price.
func SetPrice(price float64) bson.D {
	return bson.D{{Key: FieldPrice, Value: price}}
}

// IndexKey is one field of an index.
type IndexKey struct {
	Field string
	Order int // Ascending or Descending
}

// IndexSpec declares a single or compound index.
type IndexSpec struct {
	Name string
	Keys []IndexKey
}

// Index builds an unnamed IndexSpec over the keys, in order.
func Index(keys ...IndexKey) IndexSpec {
	return IndexSpec{Keys: keys}
}

// Asc and Desc build index keys.
func Asc(field string) IndexKey  { return IndexKey{Field: field, Order: Ascending} }
func Desc(field string) IndexKey { return IndexKey{Field: field, Order: Descending} }

// KeyDoc is the key document of the index, in field order.
func (s IndexSpec) KeyDoc() bson.D {
	d := make(bson.D, 0, len(s.Keys))
	for _, k := range s.Keys {
		d = append(d, bson.E{Key: k.Field, Value: k.Order})
	}
	return d
}

// IndexName returns the explicit name, or the server's default naming
// (field_order joined by underscores) so that re-declaring an index is a no-op.
func (s IndexSpec) IndexName() string {
	if s.Name != "" {
		return s.Name
	}
	parts := make([]string, 0, len(s.Keys)*2)
	for _, k := range s.Keys {
		order := "1"
		if k.Order == Descending {
			order = "-1"
		}
		parts = append(parts, k.Field, order)
	}
	return strings.Join(parts, "_")
}

// String renders the key document, e.g. {author: 1, published_year: -1}.
func (s IndexSpec) String() string {
	parts := make([]string, 0, len(s.Keys))
	for _, k := range s.Keys {
		order := "1"
		if k.Order == Descending {
			order = "-1"
		}
		parts = append(parts, k.Field+": "+order)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
