package dto

// AuthorRequestBody defines the request body for creating or renaming an author.
type AuthorRequestBody struct {
	Name string `json:"name" validate:"required,max=255"`
}

// CreateWorkAuthorRequestBody defines the request body for linking a work to an author.
type CreateWorkAuthorRequestBody struct {
	WorkID   int64 `json:"work" validate:"required,gt=0"`
	AuthorID int64 `json:"author" validate:"required,gt=0"`
}
