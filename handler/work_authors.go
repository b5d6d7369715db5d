package handler

import (
	"fmt"
	"net/http"

	"github.com/emzola/bookrating/data/dto"
)

// CreateWorkAuthor godoc
// @Summary Link an author to a work
// @Description A work and author pair can only be linked once
// @Tags work-authors
// @Accept  json
// @Produce json
// @Param body body dto.CreateWorkAuthorRequestBody true "JSON payload required to link a work and an author"
// @Success 201 {object} data.WorkAuthor
// @Failure 400
// @Failure 422
// @Failure 500
// @Router /v1/work-authors [post]
func (h *Handler) createWorkAuthorHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateWorkAuthorRequestBody
	if err := h.decodeJSON(w, r, &requestBody); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	link, err := h.service.CreateWorkAuthor(requestBody)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/work-authors/%d", link.ID))
	if err := h.encodeJSON(w, http.StatusCreated, envelope{"work_author": link}, headers); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ShowWorkAuthor godoc
// @Summary Show a work-author link
// @Tags work-authors
// @Produce json
// @Param linkId path int true "ID of link to show"
// @Success 200 {object} data.WorkAuthor
// @Failure 404
// @Failure 500
// @Router /v1/work-authors/{linkId} [get]
func (h *Handler) showWorkAuthorHandler(w http.ResponseWriter, r *http.Request) {
	linkID, err := h.readIDParam(r, "linkId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	link, err := h.service.GetWorkAuthor(linkID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"work_author": link}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListWorkAuthors godoc
// @Summary List all work-author links
// @Tags work-authors
// @Produce json
// @Success 200 {array} data.WorkAuthor
// @Failure 500
// @Router /v1/work-authors [get]
func (h *Handler) listWorkAuthorsHandler(w http.ResponseWriter, r *http.Request) {
	links, err := h.service.ListWorkAuthors()
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"work_authors": links}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// DeleteWorkAuthor godoc
// @Summary Remove a work-author link
// @Tags work-authors
// @Produce json
// @Param linkId path int true "ID of link to delete"
// @Success 200
// @Failure 404
// @Failure 500
// @Router /v1/work-authors/{linkId} [delete]
func (h *Handler) deleteWorkAuthorHandler(w http.ResponseWriter, r *http.Request) {
	linkID, err := h.readIDParam(r, "linkId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	err = h.service.DeleteWorkAuthor(linkID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "work author link successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
