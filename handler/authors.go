package handler

import (
	"fmt"
	"net/http"

	"github.com/emzola/bookrating/data/dto"
)

// CreateAuthor godoc
// @Summary Create a new author
// @Tags authors
// @Accept  json
// @Produce json
// @Param body body dto.AuthorRequestBody true "JSON payload required to create an author"
// @Success 201 {object} data.Author
// @Failure 400
// @Failure 422
// @Failure 500
// @Router /v1/authors [post]
func (h *Handler) createAuthorHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.AuthorRequestBody
	if err := h.decodeJSON(w, r, &requestBody); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	author, err := h.service.CreateAuthor(requestBody)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/authors/%d", author.ID))
	if err := h.encodeJSON(w, http.StatusCreated, envelope{"author": author}, headers); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ShowAuthor godoc
// @Summary Show details of an author
// @Tags authors
// @Produce json
// @Param authorId path int true "ID of author to show"
// @Success 200 {object} data.Author
// @Failure 404
// @Failure 500
// @Router /v1/authors/{authorId} [get]
func (h *Handler) showAuthorHandler(w http.ResponseWriter, r *http.Request) {
	authorID, err := h.readIDParam(r, "authorId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	author, err := h.service.GetAuthor(authorID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"author": author}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListAuthors godoc
// @Summary List all authors
// @Tags authors
// @Produce json
// @Success 200 {array} data.Author
// @Failure 500
// @Router /v1/authors [get]
func (h *Handler) listAuthorsHandler(w http.ResponseWriter, r *http.Request) {
	authors, err := h.service.ListAuthors()
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"authors": authors}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// UpdateAuthor godoc
// @Summary Rename an author
// @Tags authors
// @Accept  json
// @Produce json
// @Param authorId path int true "ID of author to update"
// @Param body body dto.AuthorRequestBody true "JSON payload required to update an author"
// @Success 200 {object} data.Author
// @Failure 400
// @Failure 404
// @Failure 422
// @Failure 500
// @Router /v1/authors/{authorId} [patch]
func (h *Handler) updateAuthorHandler(w http.ResponseWriter, r *http.Request) {
	authorID, err := h.readIDParam(r, "authorId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var requestBody dto.AuthorRequestBody
	if err := h.decodeJSON(w, r, &requestBody); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	author, err := h.service.UpdateAuthor(authorID, requestBody)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"author": author}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// DeleteAuthor godoc
// @Summary Delete an author
// @Tags authors
// @Produce json
// @Param authorId path int true "ID of author to delete"
// @Success 200
// @Failure 404
// @Failure 500
// @Router /v1/authors/{authorId} [delete]
func (h *Handler) deleteAuthorHandler(w http.ResponseWriter, r *http.Request) {
	authorID, err := h.readIDParam(r, "authorId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	err = h.service.DeleteAuthor(authorID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "author successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListAuthorWorks godoc
// @Summary List the works of an author
// @Description Works credited to the author, highest average rating first
// @Tags authors
// @Produce json
// @Param authorId path int true "ID of author"
// @Success 200 {array} data.Work
// @Failure 404
// @Failure 500
// @Router /v1/authors/{authorId}/works [get]
func (h *Handler) listAuthorWorksHandler(w http.ResponseWriter, r *http.Request) {
	authorID, err := h.readIDParam(r, "authorId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	works, err := h.service.ListAuthorWorks(authorID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"works": works}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
