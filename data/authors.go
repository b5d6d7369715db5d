package data

import "github.com/emzola/bookrating/internal/validator"

// Author defines a person credited on one or more works. Names are unique and
// compared exactly.
type Author struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// WorkAuthor links a work to one of its authors. The pair is unique.
type WorkAuthor struct {
	ID       int64 `json:"id"`
	WorkID   int64 `json:"work"`
	AuthorID int64 `json:"author"`
}

func ValidateAuthor(v *validator.Validator, author *Author) {
	v.Check(author.Name != "", "name", "must be provided")
	v.Check(len(author.Name) <= 255, "name", "must not be more than 255 bytes long")
}
