package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/emzola/bookrating/data"
	"github.com/emzola/bookrating/repository"
)

const maxTagNameLen = 100

var (
	tagColumns        = []string{"tag_id", "tag_name"}
	editionTagColumns = []string{"goodreads_book_id", "tag_id", "count"}
)

// LoadTags creates the tags in r, skipping IDs or names already stored.
func (l *Loader) LoadTags(ctx context.Context, r io.Reader) (*TagReport, error) {
	report := &TagReport{}
	tbl, err := newTable(r, tagColumns)
	if err != nil {
		return report, fmt.Errorf("tags: %w", err)
	}
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rec, err := tbl.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("tags: %w", err)
		}
		report.Rows++

		tag, err := parseTagRow(rec)
		if err != nil {
			l.malformedTag(phaseTags, report, rec, err)
			continue
		}
		created, err := l.store.CreateTagIfAbsent(ctx, tag)
		if err != nil {
			return report, fmt.Errorf("tags: line %d: %w", rec.line(), err)
		}
		report.record(phaseTags, created)
	}
	l.logTagReport(phaseTags, report)
	return report, nil
}

// LoadEditionTags creates the per-edition tag counts in r. Rows for editions
// outside scope are skipped; rows naming an unknown edition or tag are
// logged and counted as failed.
func (l *Loader) LoadEditionTags(ctx context.Context, r io.Reader, scope *EditionSet) (*TagReport, error) {
	report := &TagReport{}
	tbl, err := newTable(r, editionTagColumns)
	if err != nil {
		return report, fmt.Errorf("edition tags: %w", err)
	}
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rec, err := tbl.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("edition tags: %w", err)
		}
		report.Rows++

		et, err := parseEditionTagRow(rec)
		if err != nil {
			l.malformedTag(phaseEditionTags, report, rec, err)
			continue
		}
		if !scope.Contains(et.EditionID) {
			report.OutOfScope++
			countRow(phaseEditionTags, "out_of_scope")
			continue
		}
		created, err := l.store.CreateEditionTagIfAbsent(ctx, et)
		if errors.Is(err, repository.ErrInvalidReference) {
			report.Failed++
			countRow(phaseEditionTags, "failed")
			l.logger.PrintError(err, map[string]string{
				"phase":   phaseEditionTags,
				"line":    strconv.Itoa(rec.line()),
				"edition": strconv.FormatInt(et.EditionID, 10),
				"tag":     strconv.FormatInt(et.TagID, 10),
			})
			continue
		}
		if err != nil {
			return report, fmt.Errorf("edition tags: line %d: %w", rec.line(), err)
		}
		report.record(phaseEditionTags, created)
	}
	l.logTagReport(phaseEditionTags, report)
	return report, nil
}

func parseTagRow(rec row) (*data.Tag, error) {
	id, err := parseTagID(rec.get("tag_id"))
	if err != nil {
		return nil, err
	}
	name := truncate(rec.get("tag_name"), maxTagNameLen)
	if name == "" {
		return nil, fmt.Errorf("tag %d: name must be provided", id)
	}
	return &data.Tag{ID: id, Name: name}, nil
}

func parseEditionTagRow(rec row) (*data.EditionTag, error) {
	editionID, err := parseID(rec.get("goodreads_book_id"))
	if err != nil {
		return nil, fmt.Errorf("goodreads_book_id %q: %w", rec.get("goodreads_book_id"), err)
	}
	tagID, err := parseTagID(rec.get("tag_id"))
	if err != nil {
		return nil, err
	}
	return &data.EditionTag{EditionID: editionID, TagID: tagID, Count: parseCount(rec.get("count"))}, nil
}

// parseTagID accepts zero, which the tag vocabulary uses as a real ID.
func parseTagID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("tag_id %q: must be a non-negative integer", s)
	}
	return id, nil
}

func (r *TagReport) record(phase string, created bool) {
	if created {
		r.Created++
		countRow(phase, "created")
		return
	}
	r.Existing++
	countRow(phase, "existing")
}

func (l *Loader) malformedTag(phase string, report *TagReport, rec row, err error) {
	report.Malformed++
	countRow(phase, "malformed")
	l.logger.PrintError(err, map[string]string{
		"phase": phase,
		"line":  strconv.Itoa(rec.line()),
	})
}

func (l *Loader) logTagReport(phase string, report *TagReport) {
	l.logger.PrintInfo(phase+" loaded", map[string]string{
		"rows":      strconv.Itoa(report.Rows),
		"created":   strconv.Itoa(report.Created),
		"existing":  strconv.Itoa(report.Existing),
		"malformed": strconv.Itoa(report.Malformed),
		"failed":    strconv.Itoa(report.Failed),
	})
}
