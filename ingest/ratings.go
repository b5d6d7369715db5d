package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/emzola/bookrating/data"
	"github.com/emzola/bookrating/repository"
)

var ratingColumns = []string{"user_id", "book_id", "rating"}

// LoadRatings streams the ratings in r into the store in batches. When scope
// is non-nil, rows for editions outside it are skipped. Rows repeating a
// (user, edition) pair already seen in this run are dropped, and rows already
// stored by an earlier run are dropped by the store. A batch that keeps
// failing is logged, dead-lettered if a sink is configured, and skipped.
func (l *Loader) LoadRatings(ctx context.Context, r io.Reader, scope *EditionSet) (*RatingReport, error) {
	report := &RatingReport{}
	tbl, err := newTable(r, ratingColumns)
	if err != nil {
		return report, fmt.Errorf("ratings: %w", err)
	}
	batch := make([]data.Rating, 0, l.opts.BatchSize)
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rec, err := tbl.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("ratings: %w", err)
		}
		report.Rows++

		editionID, err := parseID(rec.get("book_id"))
		if err != nil {
			l.malformedRating(report, rec, fmt.Errorf("book_id %q: %w", rec.get("book_id"), err))
			continue
		}
		if !scope.Contains(editionID) {
			report.OutOfScope++
			countRow(phaseRatings, "out_of_scope")
			continue
		}
		userID, err := parseID(rec.get("user_id"))
		if err != nil {
			l.malformedRating(report, rec, fmt.Errorf("user_id %q: %w", rec.get("user_id"), err))
			continue
		}
		value, err := parseRating(rec.get("rating"))
		if err != nil {
			l.malformedRating(report, rec, fmt.Errorf("rating %q: %w", rec.get("rating"), err))
			continue
		}
		added, err := l.opts.KeySet.Add(userID, editionID)
		if err != nil {
			return report, fmt.Errorf("ratings: dedup: %w", err)
		}
		if !added {
			report.Duplicates++
			countRow(phaseRatings, "duplicate")
			continue
		}
		batch = append(batch, data.Rating{UserID: userID, EditionID: editionID, Rating: value})
		if len(batch) >= l.opts.BatchSize {
			if err := l.flush(ctx, batch, report); err != nil {
				return report, err
			}
			batch = batch[:0]
		}
	}
	if err := l.flush(ctx, batch, report); err != nil {
		return report, err
	}
	l.logger.PrintInfo("ratings loaded", map[string]string{
		"rows":           strconv.Itoa(report.Rows),
		"inserted":       strconv.FormatInt(report.Inserted, 10),
		"duplicates":     strconv.Itoa(report.Duplicates),
		"out_of_scope":   strconv.Itoa(report.OutOfScope),
		"malformed":      strconv.Itoa(report.Malformed),
		"failed_batches": strconv.Itoa(report.FailedBatches),
	})
	return report, nil
}

func (l *Loader) malformedRating(report *RatingReport, rec row, err error) {
	report.Malformed++
	countRow(phaseRatings, "malformed")
	l.logger.PrintError(err, map[string]string{
		"phase": phaseRatings,
		"line":  strconv.Itoa(rec.line()),
	})
}

// flush stores one batch. Only a cancelled context is returned as an error;
// store failures are retried and then recorded in the report.
func (l *Loader) flush(ctx context.Context, batch []data.Rating, report *RatingReport) error {
	if len(batch) == 0 {
		return nil
	}
	report.Batches++
	start := time.Now()
	inserted, err := l.insertWithRetry(ctx, batch, report.Batches)
	batchSeconds.Observe(time.Since(start).Seconds())
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err == nil {
		report.Inserted += inserted
		report.Conflicts += int64(len(batch)) - inserted
		rowsTotal.WithLabelValues(phaseRatings, "inserted").Add(float64(inserted))
		rowsTotal.WithLabelValues(phaseRatings, "conflict").Add(float64(int64(len(batch)) - inserted))
		return nil
	}

	report.FailedBatches++
	batchFailures.Inc()
	rowsTotal.WithLabelValues(phaseRatings, "failed").Add(float64(len(batch)))
	first, last := batch[0], batch[len(batch)-1]
	l.logger.PrintError(err, map[string]string{
		"phase":     phaseRatings,
		"batch":     strconv.Itoa(report.Batches),
		"size":      strconv.Itoa(len(batch)),
		"first_key": fmt.Sprintf("%d/%d", first.UserID, first.EditionID),
		"last_key":  fmt.Sprintf("%d/%d", last.UserID, last.EditionID),
	})
	if l.opts.DeadLetter != nil {
		if dlErr := l.opts.DeadLetter.Write(batch, err); dlErr != nil {
			l.logger.PrintError(fmt.Errorf("writing dead letters: %w", dlErr), map[string]string{
				"batch": strconv.Itoa(report.Batches),
			})
			return nil
		}
		report.DeadLettered += len(batch)
	}
	return nil
}

// insertWithRetry retries transient failures with a linearly growing delay.
// A reference to a missing edition fails the same way every time, so it is
// not retried.
func (l *Loader) insertWithRetry(ctx context.Context, batch []data.Rating, batchNo int) (int64, error) {
	var lastErr error
	for attempt := 0; attempt <= l.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			l.logger.PrintInfo("retrying rating batch", map[string]string{
				"batch":   strconv.Itoa(batchNo),
				"attempt": strconv.Itoa(attempt),
				"error":   lastErr.Error(),
			})
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(time.Duration(attempt) * l.opts.RetryDelay):
			}
		}
		inserted, err := l.store.BulkInsertRatings(ctx, batch)
		if err == nil {
			return inserted, nil
		}
		lastErr = err
		if errors.Is(err, repository.ErrInvalidReference) || ctx.Err() != nil {
			break
		}
	}
	return 0, lastErr
}
