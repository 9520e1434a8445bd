package bookstore

import (
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// GenreStat is one row of AveragePriceByGenre.
type GenreStat struct {
	Genre        string
	AveragePrice float64
	Count        int64
}

// AuthorStat is one row of MostProlificAuthors.
type AuthorStat struct {
	Author    string
	BookCount int64
}

// DecadeStat is one row of BooksByDecade.
type DecadeStat struct {
	Decade int
	Count  int64
}

// AveragePriceByGenre groups books by genre with their average price and
// count, most expensive genre first.
func AveragePriceByGenre() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + FieldGenre},
			{Key: "averagePrice", Value: bson.D{{Key: "$avg", Value: "$" + FieldPrice}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "averagePrice", Value: -1}}}},
	}
}

// MostProlificAuthors returns the limit authors with the most books.
func MostProlificAuthors(limit int64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + FieldAuthor},
			{Key: "bookCount", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "bookCount", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}
}

// BooksByDecade counts books per publication decade, oldest first. The decade
// is floor(year/10)*10, so years before zero fall into the lower decade.
func BooksByDecade() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "decade", Value: decadeExpr("$" + FieldPublishedYear)},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$decade"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

func decadeExpr(field string) bson.D {
	return bson.D{{Key: "$multiply", Value: bson.A{
		bson.D{{Key: "$floor", Value: bson.D{{Key: "$divide", Value: bson.A{field, 10}}}}},
		10,
	}}}
}

// Decade floors year to the lower multiple of ten: 1987 -> 1980, -5 -> -10.
func Decade(year int) int {
	d := year / 10 * 10
	if year < 0 && year%10 != 0 {
		d -= 10
	}
	return d
}

// GenreStats decodes AveragePriceByGenre rows.
func GenreStats(rows []bson.M) []GenreStat {
	out := make([]GenreStat, 0, len(rows))
	for _, r := range rows {
		out = append(out, GenreStat{
			Genre:        cast.ToString(r["_id"]),
			AveragePrice: cast.ToFloat64(r["averagePrice"]),
			Count:        cast.ToInt64(r["count"]),
		})
	}
	return out
}

// AuthorStats decodes MostProlificAuthors rows.
func AuthorStats(rows []bson.M) []AuthorStat {
	out := make([]AuthorStat, 0, len(rows))
	for _, r := range rows {
		out = append(out, AuthorStat{
			Author:    cast.ToString(r["_id"]),
			BookCount: cast.ToInt64(r["bookCount"]),
		})
	}
	return out
}

// DecadeStats decodes BooksByDecade rows. $floor yields a double, which is
// truncated back to an integer decade here.
func DecadeStats(rows []bson.M) []DecadeStat {
	out := make([]DecadeStat, 0, len(rows))
	for _, r := range rows {
		out = append(out, DecadeStat{
			Decade: cast.ToInt(r["_id"]),
			Count:  cast.ToInt64(r["count"]),
		})
	}
	return out
}
