// Package report renders task results on the console, either as readable
// text with tables or as one JSON object per result.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/bookshelf/bookshelf/internal/bookstore"
	"github.com/bookshelf/bookshelf/internal/config"
)

// map keys come out sorted, so records render the same on every run
var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

// Printer writes results to w. The first write or encoding error is kept and
// reported by Err; later calls become no-ops.
type Printer struct {
	w       io.Writer
	format  string
	section string
	err     error
}

// NewPrinter returns a Printer for the given output format (config.OutputText
// or config.OutputJSON).
func NewPrinter(w io.Writer, format string) *Printer {
	return &Printer{w: w, format: format}
}

// Err returns the first error encountered while printing.
func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) jsonMode() bool {
	return p.format == config.OutputJSON
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// emit writes one JSON line tagged with the current section.
func (p *Printer) emit(key string, value any) {
	if p.err != nil {
		return
	}
	line, err := json.Marshal(map[string]any{"section": p.section, key: value})
	if err != nil {
		p.err = fmt.Errorf("encoding %s: %w", key, err)
		return
	}
	p.printf("%s\n", line)
}

// Section starts a titled block of output.
func (p *Printer) Section(title string) {
	p.section = title
	if p.jsonMode() {
		return
	}
	p.printf("\n%s\n", headingStyle.Render(title))
}

// Message prints an informational line.
func (p *Printer) Message(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.jsonMode() {
		p.emit("message", msg)
		return
	}
	p.printf("%s\n", msg)
}

// Records prints documents, one compact JSON document per line.
func (p *Printer) Records(docs []bson.M) {
	if p.jsonMode() {
		p.emit("records", docs)
		return
	}
	if len(docs) == 0 {
		p.printf("%s\n", mutedStyle.Render("(no matching books)"))
		return
	}
	for _, doc := range docs {
		line, err := json.Marshal(doc)
		if err != nil {
			p.err = fmt.Errorf("encoding record: %w", err)
			return
		}
		p.printf("  %s\n", line)
	}
}

// Book prints a single book, or a notice when it is nil.
func (p *Printer) Book(b *bookstore.Book) {
	if p.jsonMode() {
		p.emit("book", b)
		return
	}
	if b == nil {
		p.printf("%s\n", mutedStyle.Render("(no matching book)"))
		return
	}
	line, err := json.Marshal(b)
	if err != nil {
		p.err = fmt.Errorf("encoding book: %w", err)
		return
	}
	p.printf("  %s\n", line)
}

// List prints short items such as "title: $price".
func (p *Printer) List(items []string) {
	if p.jsonMode() {
		p.emit("items", items)
		return
	}
	if len(items) == 0 {
		p.printf("%s\n", mutedStyle.Render("(none)"))
		return
	}
	for _, item := range items {
		p.printf("  - %s\n", item)
	}
}

// Table prints rows under headers. In JSON mode every row becomes an object
// keyed by header.
func (p *Printer) Table(headers []string, rows [][]string) {
	if p.jsonMode() {
		objs := lo.Map(rows, func(row []string, _ int) map[string]string {
			obj := make(map[string]string, len(headers))
			for i, h := range headers {
				if i < len(row) {
					obj[h] = row[i]
				}
			}
			return obj
		})
		p.emit("rows", objs)
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	p.printf("%s\n", t.Render())
}

// Update prints the outcome of an update. Zero matches is informational.
func (p *Printer) Update(s bookstore.UpdateSummary) {
	if p.jsonMode() {
		p.emit("update", s)
		return
	}
	if s.Matched == 0 {
		p.printf("%s\n", mutedStyle.Render("no matching book; nothing updated"))
		return
	}
	p.printf("  matched: %d, modified: %d\n", s.Matched, s.Modified)
}

// Delete prints the outcome of a delete. Zero deletions is informational.
func (p *Printer) Delete(s bookstore.DeleteSummary) {
	if p.jsonMode() {
		p.emit("delete", s)
		return
	}
	if s.Deleted == 0 {
		p.printf("%s\n", mutedStyle.Render("no matching book; nothing deleted"))
		return
	}
	p.printf("  deleted: %d\n", s.Deleted)
}

// LabeledPlan names an explain result for display.
type LabeledPlan struct {
	Label string
	Plan  *bookstore.Plan
}

// Plans prints explain results side by side.
func (p *Printer) Plans(plans []LabeledPlan) {
	headers := []string{"Query", "Stage", "Index", "Time (ms)", "Docs examined", "Keys examined", "Returned"}
	rows := lo.Map(plans, func(lp LabeledPlan, _ int) []string {
		index := "-"
		if lp.Plan.IndexUsed {
			index = lp.Plan.IndexName
		}
		return []string{
			lp.Label,
			lp.Plan.Stage,
			index,
			strconv.FormatInt(lp.Plan.ExecutionTimeMillis, 10),
			strconv.FormatInt(lp.Plan.TotalDocsExamined, 10),
			strconv.FormatInt(lp.Plan.TotalKeysExamined, 10),
			strconv.FormatInt(lp.Plan.NReturned, 10),
		}
	})
	p.Table(headers, rows)
}
