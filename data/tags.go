package data

// Tag defines a named label applied to editions.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// EditionTag records how many times a tag was applied to an edition.
type EditionTag struct {
	ID        int64 `json:"id"`
	EditionID int64 `json:"edition"`
	TagID     int64 `json:"tag"`
	Count     int64 `json:"count"`
}
