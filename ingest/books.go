package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/emzola/bookrating/data"
)

var bookColumns = []string{
	"work_id", "book_id", "title", "original_title", "original_publication_year",
	"average_rating", "ratings_count", "isbn", "isbn13", "language_code", "authors",
}

// Column widths of the optional edition fields and author names.
const (
	maxTitleLen        = 255
	maxAuthorLen       = 255
	maxIsbnLen         = 13
	maxLanguageCodeLen = 10
)

// bookRow is one parsed line of the books source.
type bookRow struct {
	work    data.Work
	edition data.Edition
	authors []string
	// dropped names the optional fields that did not fit their column.
	dropped []string
}

// LoadBooks creates the works, editions, authors and work-author links found
// in r. Existing works and editions are never updated. The returned report
// is non-nil even when an error aborts the phase.
func (l *Loader) LoadBooks(ctx context.Context, r io.Reader) (*BookReport, error) {
	report := &BookReport{Editions: NewEditionSet()}
	tbl, err := newTable(r, bookColumns)
	if err != nil {
		return report, fmt.Errorf("books: %w", err)
	}
	workCountColumn := "ratings_count"
	if tbl.has("work_ratings_count") {
		workCountColumn = "work_ratings_count"
	}
	for {
		if l.opts.LimitBooks > 0 && report.Rows >= l.opts.LimitBooks {
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rec, err := tbl.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("books: %w", err)
		}
		report.Rows++

		book, err := parseBookRow(rec, workCountColumn)
		if err != nil {
			report.Malformed++
			countRow(phaseBooks, "malformed")
			l.logger.PrintError(err, map[string]string{
				"phase": phaseBooks,
				"line":  strconv.Itoa(rec.line()),
			})
			continue
		}
		if len(book.dropped) > 0 {
			report.DroppedFields += len(book.dropped)
			countRow(phaseBooks, "dropped_field")
			l.logger.PrintInfo("dropped oversized book fields", map[string]string{
				"phase":  phaseBooks,
				"line":   strconv.Itoa(rec.line()),
				"fields": strings.Join(book.dropped, ","),
			})
		}
		if err := l.storeBook(ctx, book, report); err != nil {
			return report, fmt.Errorf("books: line %d: %w", rec.line(), err)
		}
		report.Editions.Add(book.edition.ID)
		countRow(phaseBooks, "loaded")
	}
	l.logger.PrintInfo("books loaded", map[string]string{
		"rows":             strconv.Itoa(report.Rows),
		"malformed":        strconv.Itoa(report.Malformed),
		"works_created":    strconv.Itoa(report.WorksCreated),
		"editions_created": strconv.Itoa(report.EditionsCreated),
		"author_links":     strconv.Itoa(report.AuthorLinks),
		"dropped_fields":   strconv.Itoa(report.DroppedFields),
	})
	return report, nil
}

func parseBookRow(rec row, workCountColumn string) (*bookRow, error) {
	workID, err := parseID(rec.get("work_id"))
	if err != nil {
		return nil, fmt.Errorf("work_id %q: %w", rec.get("work_id"), err)
	}
	editionID, err := parseID(rec.get("book_id"))
	if err != nil {
		return nil, fmt.Errorf("book_id %q: %w", rec.get("book_id"), err)
	}
	title := rec.get("original_title")
	if title == "" {
		title = rec.get("title")
	}
	if title == "" {
		return nil, fmt.Errorf("book %d: title must be provided", editionID)
	}
	avg := parseAverage(rec.get("average_rating"))
	book := &bookRow{
		work: data.Work{
			ID:           workID,
			Title:        truncate(title, maxTitleLen),
			OriginalYear: parseYear(rec.get("original_publication_year")),
			AvgRating:    avg,
			RatingsCount: parseCount(rec.get(workCountColumn)),
		},
		edition: data.Edition{
			ID:           editionID,
			WorkID:       workID,
			RatingsCount: parseCount(rec.get("ratings_count")),
			AvgRating:    avg,
		},
	}
	book.edition.Isbn = book.fit("isbn", normalizeIsbn(rec.get("isbn")), maxIsbnLen)
	book.edition.Isbn13 = book.fit("isbn13", normalizeIsbn(rec.get("isbn13")), maxIsbnLen)
	book.edition.LanguageCode = book.fit("language_code", rec.get("language_code"), maxLanguageCodeLen)
	for _, name := range strings.Split(rec.get("authors"), ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if utf8.RuneCountInString(name) > maxAuthorLen {
			book.dropped = append(book.dropped, "authors")
			continue
		}
		book.authors = append(book.authors, name)
	}
	return book, nil
}

// fit returns s as an optional value, or nil when it is longer than n
// characters. Dropped fields are recorded on the row.
func (b *bookRow) fit(field, s string, n int) *string {
	if utf8.RuneCountInString(s) > n {
		b.dropped = append(b.dropped, field)
		return nil
	}
	return optional(s)
}

// normalizeIsbn rewrites an ISBN exported in float notation
// ("9.78043902348e+12") as its integer digits. Other values are returned
// unchanged.
func normalizeIsbn(s string) string {
	if s == "" || !strings.ContainsAny(s, ".eE") {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) {
		return s
	}
	return strconv.FormatFloat(f, 'f', 0, 64)
}

func (l *Loader) storeBook(ctx context.Context, book *bookRow, report *BookReport) error {
	created, err := l.store.CreateWorkIfAbsent(ctx, &book.work)
	if err != nil {
		return fmt.Errorf("work %d: %w", book.work.ID, err)
	}
	if created {
		report.WorksCreated++
	} else {
		report.WorksExisting++
	}

	created, err = l.store.CreateEditionIfAbsent(ctx, &book.edition)
	if err != nil {
		return fmt.Errorf("edition %d: %w", book.edition.ID, err)
	}
	if created {
		report.EditionsCreated++
	} else {
		report.EditionsExisting++
	}

	for _, name := range book.authors {
		author, err := l.store.GetOrCreateAuthor(ctx, name)
		if err != nil {
			return fmt.Errorf("author %q: %w", name, err)
		}
		linked, err := l.store.LinkWorkAuthor(ctx, book.work.ID, author.ID)
		if err != nil {
			return fmt.Errorf("linking author %q: %w", name, err)
		}
		if linked {
			report.AuthorLinks++
		}
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
