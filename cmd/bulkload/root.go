package main

import (
	"github.com/spf13/cobra"
)

// options holds the command line of one run.
type options struct {
	configPath    string
	books         string
	ratings       string
	tags          string
	bookTags      string
	limitBooks    int
	batchSize     int
	dedupDir      string
	deadLetterDir string
	notify        string
	output        string
	migrate       bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "bulkload",
		Short: "Load the books, ratings and tags dataset into the catalogue",
		Long: `bulkload reads the denormalised books CSV (one row per edition) and the
ratings CSV and writes works, editions, authors and ratings into PostgreSQL.

Runs are idempotent: rows that already exist are left untouched, so an
interrupted load can be repeated. When --books and --ratings are given
together, ratings for editions outside the loaded books are skipped.

Sources may be local paths, s3://bucket/key or http(s) URLs, optionally
gzip-compressed.`,
		Example: `  bulkload --books data/books.csv --ratings data/ratings.csv
  bulkload --books data/books.csv --limit-books 1000 --ratings data/ratings.csv.gz
  bulkload --ratings s3://datasets/goodbooks/ratings.csv --dedup-dir /var/tmp/bulkload --output yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML config file (environment variables override it)")
	flags.StringVar(&opts.books, "books", "", "Books CSV source")
	flags.StringVar(&opts.ratings, "ratings", "", "Ratings CSV source")
	flags.StringVar(&opts.tags, "tags", "", "Tags CSV source")
	flags.StringVar(&opts.bookTags, "book-tags", "", "Book tags CSV source")
	flags.IntVar(&opts.limitBooks, "limit-books", 0, "Only load the first N book rows (0 loads all)")
	flags.IntVar(&opts.batchSize, "batch-size", 0, "Ratings per insert batch (default from config, 5000)")
	flags.StringVar(&opts.dedupDir, "dedup-dir", "", "Keep the duplicate-detection set on disk under this directory")
	flags.StringVar(&opts.deadLetterDir, "dead-letter-dir", "", "Write rating batches that fail to insert under this directory")
	flags.StringVar(&opts.notify, "notify", "", "Email address to send the run report to")
	flags.StringVarP(&opts.output, "output", "o", "text", "Report format: text or yaml")
	flags.BoolVar(&opts.migrate, "migrate", false, "Create the schema before loading")
	return cmd
}
