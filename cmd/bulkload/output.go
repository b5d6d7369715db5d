package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/emzola/bookrating/ingest"
	"gopkg.in/yaml.v3"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
)

// printer writes the human-readable progress of a run.
type printer struct {
	w io.Writer
}

func (p printer) success(format string, args ...interface{}) {
	fmt.Fprintln(p.w, successStyle.Render("✓ ")+fmt.Sprintf(format, args...))
}

func (p printer) warning(format string, args ...interface{}) {
	fmt.Fprintln(p.w, warningStyle.Render("⚠ ")+fmt.Sprintf(format, args...))
}

func (p printer) muted(format string, args ...interface{}) {
	fmt.Fprintln(p.w, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

func (p printer) books(r *ingest.BookReport) {
	p.success("Books & authors loaded.")
	p.muted("  %d rows, %d works and %d editions created, %d author links", r.Rows, r.WorksCreated, r.EditionsCreated, r.AuthorLinks)
	if r.Malformed > 0 {
		p.warning("Skipped %d malformed book rows.", r.Malformed)
	}
	if r.DroppedFields > 0 {
		p.warning("Dropped %d oversized book fields.", r.DroppedFields)
	}
}

func (p printer) tags(label string, r *ingest.TagReport) {
	p.success("%s loaded.", label)
	p.muted("  %d rows, %d created, %d already present", r.Rows, r.Created, r.Existing)
	if r.Malformed+r.Failed > 0 {
		p.warning("Skipped %d malformed and %d unmatched rows.", r.Malformed, r.Failed)
	}
}

func (p printer) ratings(r *ingest.RatingReport) {
	p.success("Ratings loaded. Skipped %d duplicate rows.", r.Duplicates)
	p.muted("  %d rows, %d inserted, %d already stored, %d out of scope, %d batches", r.Rows, r.Inserted, r.Conflicts, r.OutOfScope, r.Batches)
	if r.Malformed > 0 {
		p.warning("Skipped %d malformed rating rows.", r.Malformed)
	}
	if r.FailedBatches > 0 {
		p.warning("%d rating batches failed (%d rows dead-lettered).", r.FailedBatches, r.DeadLettered)
	}
}

func (p printer) summary(s *summary) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, titleStyle.Render("Run "+s.RunID))
	p.muted("  finished in %s", s.Duration)
	if s.DeadLetterPath != "" {
		p.warning("Dead letters written to %s", s.DeadLetterPath)
	}
}

func writeYAML(w io.Writer, s *summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

// printError reports a failed run without a stack trace.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("✗ ")+err.Error())
}

// userError is a mistake in the invocation, reported as a short message.
type userError struct {
	msg string
}

func (e *userError) Error() string {
	return e.msg
}

func userErrorf(format string, args ...interface{}) error {
	return &userError{msg: fmt.Sprintf(format, args...)}
}
