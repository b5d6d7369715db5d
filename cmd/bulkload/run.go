package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emzola/bookrating/clients"
	"github.com/emzola/bookrating/config"
	"github.com/emzola/bookrating/ingest"
	"github.com/emzola/bookrating/internal/jsonlog"
	"github.com/emzola/bookrating/internal/mailer"
	"github.com/emzola/bookrating/repository"
	"github.com/emzola/bookrating/repository/postgres"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// summary is the report of one run. It is printed as YAML and mailed.
type summary struct {
	RunID          string               `yaml:"run_id"`
	Failed         bool                 `yaml:"failed"`
	Error          string               `yaml:"error,omitempty"`
	Duration       string               `yaml:"duration"`
	Books          *ingest.BookReport   `yaml:"books,omitempty"`
	Tags           *ingest.TagReport    `yaml:"tags,omitempty"`
	EditionTags    *ingest.TagReport    `yaml:"edition_tags,omitempty"`
	Ratings        *ingest.RatingReport `yaml:"ratings,omitempty"`
	DeadLetterPath string               `yaml:"dead_letter_path,omitempty"`
}

func (o *options) validate() error {
	if o.books == "" && o.ratings == "" {
		return userErrorf("nothing to load: pass --books and/or --ratings")
	}
	if o.output != "text" && o.output != "yaml" {
		return userErrorf("unknown output format %q: use text or yaml", o.output)
	}
	if o.limitBooks < 0 {
		return userErrorf("--limit-books must not be negative")
	}
	if o.batchSize < 0 {
		return userErrorf("--batch-size must not be negative")
	}
	return nil
}

// override applies the flags that were set on top of the file/env config.
func (o *options) override(cfg *config.Config) {
	if o.batchSize > 0 {
		cfg.Ingest.BatchSize = o.batchSize
	}
	if o.dedupDir != "" {
		cfg.Ingest.DedupDir = o.dedupDir
	}
	if o.deadLetterDir != "" {
		cfg.Ingest.DeadLetterDir = o.deadLetterDir
	}
	if o.notify != "" {
		cfg.Ingest.NotifyEmail = o.notify
	}
}

func (o *options) locations() []string {
	return []string{o.books, o.tags, o.bookTags, o.ratings}
}

func run(cmd *cobra.Command, opts options) error {
	ctx := cmd.Context()
	if err := opts.validate(); err != nil {
		return err
	}
	cfg, err := config.Decode(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	opts.override(&cfg)
	level, err := jsonlog.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		return err
	}
	logger := jsonlog.New(cmd.ErrOrStderr(), level)

	remote, err := newRemote(ctx, cfg, opts)
	if err != nil {
		return err
	}
	src, err := openSources(ctx, opts, remote)
	if err != nil {
		return err
	}
	defer src.Close()

	db, err := postgres.OpenDBConn(cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()
	if opts.migrate {
		if err := postgres.Migrate(db); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}

	runID := uuid.NewString()
	loaderOpts, err := loaderOptions(cfg, opts, runID, logger)
	if err != nil {
		return err
	}
	defer loaderOpts.KeySet.Close()

	p := printer{w: cmd.OutOrStdout()}
	if opts.output == "yaml" {
		p.w = cmd.ErrOrStderr()
	}
	s := &summary{RunID: runID}
	start := time.Now()
	runErr := load(ctx, ingest.New(repository.New(db), logger, loaderOpts), src, s, p)
	s.Duration = time.Since(start).Round(time.Millisecond).String()
	if runErr != nil {
		s.Failed = true
		s.Error = runErr.Error()
	}

	if sink, ok := loaderOpts.DeadLetter.(*ingest.FileDeadLetter); ok {
		s.DeadLetterPath = finishDeadLetter(ctx, cfg, remote, sink, logger)
	}
	if cfg.Ingest.NotifyEmail != "" {
		notify(cfg, s, logger)
	}

	if opts.output == "yaml" {
		if err := writeYAML(cmd.OutOrStdout(), s); err != nil {
			return err
		}
	} else {
		p.summary(s)
	}
	return runErr
}

// load runs the phases in dependency order: books first so that tags and
// ratings can be scoped to the editions it retained.
func load(ctx context.Context, l *ingest.Loader, src *sources, s *summary, p printer) error {
	var scope *ingest.EditionSet
	if src.books != nil {
		report, err := l.LoadBooks(ctx, src.books)
		s.Books = report
		if err != nil {
			return err
		}
		p.books(report)
		scope = report.Editions
	}
	if src.tags != nil {
		report, err := l.LoadTags(ctx, src.tags)
		s.Tags = report
		if err != nil {
			return err
		}
		p.tags("Tags", report)
	}
	if src.bookTags != nil {
		report, err := l.LoadEditionTags(ctx, src.bookTags, scope)
		s.EditionTags = report
		if err != nil {
			return err
		}
		p.tags("Book tags", report)
	}
	if src.ratings != nil {
		report, err := l.LoadRatings(ctx, src.ratings, scope)
		s.Ratings = report
		if err != nil {
			return err
		}
		p.ratings(report)
	}
	return nil
}

func newRemote(ctx context.Context, cfg config.Config, opts options) (ingest.Remote, error) {
	remote := ingest.Remote{HTTP: clients.NewHTTPClient()}
	needS3 := cfg.S3.Bucket != "" && cfg.Ingest.DeadLetterDir != ""
	for _, loc := range opts.locations() {
		if strings.HasPrefix(loc, "s3://") {
			needS3 = true
		}
	}
	if !needS3 {
		return remote, nil
	}
	client, err := clients.NewS3Client(ctx, cfg)
	if err != nil {
		return remote, fmt.Errorf("configuring S3: %w", err)
	}
	remote.S3 = client
	return remote, nil
}

// sources are the opened inputs of a run; nil means the phase is skipped.
type sources struct {
	books    io.ReadCloser
	tags     io.ReadCloser
	bookTags io.ReadCloser
	ratings  io.ReadCloser
}

// openSources opens every input before anything is written so that a typo
// in a path fails the run up front.
func openSources(ctx context.Context, opts options, remote ingest.Remote) (*sources, error) {
	src := &sources{}
	targets := []struct {
		location string
		dst      *io.ReadCloser
	}{
		{opts.books, &src.books},
		{opts.tags, &src.tags},
		{opts.bookTags, &src.bookTags},
		{opts.ratings, &src.ratings},
	}
	for _, t := range targets {
		if t.location == "" {
			continue
		}
		rc, err := ingest.Open(ctx, t.location, remote)
		if err != nil {
			src.Close()
			switch {
			case errors.Is(err, ingest.ErrSourceNotFound):
				return nil, userErrorf("file not found: %s", t.location)
			case errors.Is(err, ingest.ErrUnsupportedSource):
				return nil, userErrorf("cannot read %s: %v", t.location, err)
			default:
				return nil, fmt.Errorf("opening %s: %w", t.location, err)
			}
		}
		*t.dst = rc
	}
	return src, nil
}

func (s *sources) Close() {
	for _, rc := range []io.ReadCloser{s.books, s.tags, s.bookTags, s.ratings} {
		if rc != nil {
			rc.Close()
		}
	}
}

func loaderOptions(cfg config.Config, opts options, runID string, logger *jsonlog.Logger) (ingest.Options, error) {
	lo := ingest.Options{
		BatchSize:  cfg.Ingest.BatchSize,
		LimitBooks: opts.limitBooks,
		MaxRetries: cfg.Ingest.MaxRetries,
	}
	if cfg.Ingest.RetryDelay != "" {
		delay, err := time.ParseDuration(cfg.Ingest.RetryDelay)
		if err != nil {
			return lo, fmt.Errorf("ingest retry_delay: %w", err)
		}
		lo.RetryDelay = delay
	}
	if cfg.Ingest.DeadLetterDir != "" {
		sink, err := ingest.NewFileDeadLetter(cfg.Ingest.DeadLetterDir, runID)
		if err != nil {
			return lo, fmt.Errorf("dead-letter directory: %w", err)
		}
		lo.DeadLetter = sink
	}
	if cfg.Ingest.DedupDir != "" {
		set, err := ingest.OpenBadgerKeySet(cfg.Ingest.DedupDir, logger)
		if err != nil {
			return lo, err
		}
		lo.KeySet = set
	} else {
		lo.KeySet = ingest.NewMemoryKeySet()
	}
	return lo, nil
}

// finishDeadLetter closes the sink and, when rows were written and a bucket
// is configured, uploads the file. It returns where the rows can be found.
func finishDeadLetter(ctx context.Context, cfg config.Config, remote ingest.Remote, sink *ingest.FileDeadLetter, logger *jsonlog.Logger) string {
	if err := sink.Close(); err != nil {
		logger.PrintError(err, map[string]string{"path": sink.Path()})
	}
	if sink.Rows() == 0 {
		return ""
	}
	if remote.S3 == nil || cfg.S3.Bucket == "" {
		return sink.Path()
	}
	key, err := ingest.UploadDeadLetter(context.WithoutCancel(ctx), remote.S3, cfg.S3.Bucket, sink)
	if err != nil {
		logger.PrintError(err, map[string]string{"path": sink.Path()})
		return sink.Path()
	}
	return "s3://" + cfg.S3.Bucket + "/" + key
}

func notify(cfg config.Config, s *summary, logger *jsonlog.Logger) {
	if cfg.Smtp.Host == "" {
		logger.PrintError(errors.New("no SMTP host configured"), map[string]string{"notify": cfg.Ingest.NotifyEmail})
		return
	}
	m := mailer.New(cfg.Smtp.Host, cfg.Smtp.Port, cfg.Smtp.Username, cfg.Smtp.Password, cfg.Smtp.Sender)
	if err := m.Send(cfg.Ingest.NotifyEmail, "ingest_report.tmpl", s); err != nil {
		logger.PrintError(err, map[string]string{"notify": cfg.Ingest.NotifyEmail})
	}
}
