// Package bookstore is the query toolkit for the books collection. Every
// operation goes through a Store handle; filtering, sorting, grouping and
// index maintenance are delegated to the database.
package bookstore

import (
	"fmt"
	"math"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Field names of a book document.
const (
	FieldID            = "_id"
	FieldTitle         = "title"
	FieldAuthor        = "author"
	FieldGenre         = "genre"
	FieldPublishedYear = "published_year"
	FieldPrice         = "price"
	FieldInStock       = "in_stock"
	FieldPages         = "pages"
	FieldPublisher     = "publisher"
)

// Book is one document of the books collection. Title is used as the lookup
// key for updates and deletes, although nothing enforces its uniqueness.
type Book struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title         string        `bson:"title" json:"title"`
	Author        string        `bson:"author" json:"author"`
	Genre         string        `bson:"genre" json:"genre"`
	PublishedYear int           `bson:"published_year" json:"published_year"`
	Price         float64       `bson:"price" json:"price"`
	InStock       bool          `bson:"in_stock" json:"in_stock"`
	Pages         int           `bson:"pages,omitempty" json:"pages,omitempty"`
	Publisher     string        `bson:"publisher,omitempty" json:"publisher,omitempty"`
}

// Fixtures returns the seed data the tasks are written against. "The Great
// Gatsby" is the price-update target, "Moby Dick" the delete target and "1984"
// the explain probe.
func Fixtures() []Book {
	return []Book{
		{Title: "To Kill a Mockingbird", Author: "Harper Lee", Genre: "Fiction", PublishedYear: 1960, Price: 12.99, InStock: true, Pages: 336, Publisher: "J. B. Lippincott & Co."},
		{Title: "1984", Author: "George Orwell", Genre: "Dystopian", PublishedYear: 1949, Price: 10.99, InStock: true, Pages: 328, Publisher: "Secker & Warburg"},
		{Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Genre: "Fiction", PublishedYear: 1925, Price: 9.99, InStock: true, Pages: 180, Publisher: "Charles Scribner's Sons"},
		{Title: "Brave New World", Author: "Aldous Huxley", Genre: "Dystopian", PublishedYear: 1932, Price: 11.50, InStock: false, Pages: 311, Publisher: "Chatto & Windus"},
		{Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", PublishedYear: 1937, Price: 14.99, InStock: true, Pages: 310, Publisher: "George Allen & Unwin"},
		{Title: "The Catcher in the Rye", Author: "J.D. Salinger", Genre: "Fiction", PublishedYear: 1951, Price: 8.99, InStock: true, Pages: 224, Publisher: "Little, Brown and Company"},
		{Title: "Pride and Prejudice", Author: "Jane Austen", Genre: "Romance", PublishedYear: 1813, Price: 7.99, InStock: true, Pages: 432, Publisher: "T. Egerton"},
		{Title: "The Lord of the Rings", Author: "J.R.R. Tolkien", Genre: "Fantasy", PublishedYear: 1954, Price: 19.99, InStock: true, Pages: 1178, Publisher: "Allen & Unwin"},
		{Title: "Animal Farm", Author: "George Orwell", Genre: "Political Satire", PublishedYear: 1945, Price: 8.50, InStock: false, Pages: 112, Publisher: "Secker & Warburg"},
		{Title: "The Alchemist", Author: "Paulo Coelho", Genre: "Fiction", PublishedYear: 1988, Price: 10.99, InStock: true, Pages: 197, Publisher: "HarperOne"},
		{Title: "Moby Dick", Author: "Herman Melville", Genre: "Adventure", PublishedYear: 1851, Price: 12.50, InStock: false, Pages: 635, Publisher: "Harper & Brothers"},
		{Title: "Wuthering Heights", Author: "Emily Brontë", Genre: "Gothic Fiction", PublishedYear: 1847, Price: 9.99, InStock: true, Pages: 416, Publisher: "Thomas Cautley Newby"},
	}
}

var fakeGenres = []string{"Fiction", "Dystopian", "Fantasy", "Romance", "Adventure", "Mystery", "Science Fiction"}

// FakeBooks generates n additional books. The same seed always yields the same
// books, and titles are numbered so they never collide with each other.
func FakeBooks(n int, seed int64) []Book {
	f := gofakeit.New(seed)
	books := make([]Book, 0, n)
	for i := 0; i < n; i++ {
		books = append(books, Book{
			Title:         fmt.Sprintf("%s #%d", strings.TrimSuffix(f.Sentence(3), "."), i+1),
			Author:        f.Name(),
			Genre:         f.RandomString(fakeGenres),
			PublishedYear: f.Number(1800, 2024),
			Price:         math.Round(f.Price(4, 40)*100) / 100,
			InStock:       f.Bool(),
			Pages:         f.Number(80, 1200),
			Publisher:     f.Company(),
		})
	}
	return books
}
