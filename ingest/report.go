package ingest

// BookReport summarises a books phase.
type BookReport struct {
	Rows             int `json:"rows" yaml:"rows"`
	Malformed        int `json:"malformed" yaml:"malformed"`
	WorksCreated     int `json:"works_created" yaml:"works_created"`
	WorksExisting    int `json:"works_existing" yaml:"works_existing"`
	EditionsCreated  int `json:"editions_created" yaml:"editions_created"`
	EditionsExisting int `json:"editions_existing" yaml:"editions_existing"`
	AuthorLinks      int `json:"author_links" yaml:"author_links"`

	// DroppedFields counts optional values stored as nil, and author names
	// skipped, because they did not fit their column.
	DroppedFields int `json:"dropped_fields" yaml:"dropped_fields"`

	// Editions holds every edition ID the phase processed, whether created
	// now or by an earlier run.
	Editions *EditionSet `json:"-" yaml:"-"`
}

// RatingReport summarises a ratings phase.
type RatingReport struct {
	Rows          int   `json:"rows" yaml:"rows"`
	Malformed     int   `json:"malformed" yaml:"malformed"`
	OutOfScope    int   `json:"out_of_scope" yaml:"out_of_scope"`
	Duplicates    int   `json:"duplicates" yaml:"duplicates"`
	Inserted      int64 `json:"inserted" yaml:"inserted"`
	Conflicts     int64 `json:"conflicts" yaml:"conflicts"`
	Batches       int   `json:"batches" yaml:"batches"`
	FailedBatches int   `json:"failed_batches" yaml:"failed_batches"`
	DeadLettered  int   `json:"dead_lettered" yaml:"dead_lettered"`
}

// TagReport summarises a tags or edition tags phase.
type TagReport struct {
	Rows       int `json:"rows" yaml:"rows"`
	Malformed  int `json:"malformed" yaml:"malformed"`
	OutOfScope int `json:"out_of_scope" yaml:"out_of_scope"`
	Created    int `json:"created" yaml:"created"`
	Existing   int `json:"existing" yaml:"existing"`
	Failed     int `json:"failed" yaml:"failed"`
}
