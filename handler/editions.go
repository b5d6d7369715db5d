package handler

import (
	"fmt"
	"net/http"

	"github.com/emzola/bookrating/data/dto"
)

// CreateEdition godoc
// @Summary Create a new edition
// @Description This endpoint creates an edition of an existing work
// @Tags editions
// @Accept  json
// @Produce json
// @Param body body dto.CreateEditionRequestBody true "JSON payload required to create an edition"
// @Success 201 {object} data.Edition
// @Failure 400
// @Failure 422
// @Failure 500
// @Router /v1/editions [post]
func (h *Handler) createEditionHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateEditionRequestBody
	if err := h.decodeJSON(w, r, &requestBody); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	edition, err := h.service.CreateEdition(requestBody)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/editions/%d", edition.ID))
	if err := h.encodeJSON(w, http.StatusCreated, envelope{"edition": edition}, headers); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ShowEdition godoc
// @Summary Show details of an edition
// @Tags editions
// @Produce json
// @Param editionId path int true "ID of edition to show"
// @Success 200 {object} data.Edition
// @Failure 404
// @Failure 500
// @Router /v1/editions/{editionId} [get]
func (h *Handler) showEditionHandler(w http.ResponseWriter, r *http.Request) {
	editionID, err := h.readIDParam(r, "editionId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	edition, err := h.service.GetEdition(editionID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"edition": edition}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListEditions godoc
// @Summary List all editions
// @Tags editions
// @Produce json
// @Success 200 {array} data.Edition
// @Failure 500
// @Router /v1/editions [get]
func (h *Handler) listEditionsHandler(w http.ResponseWriter, r *http.Request) {
	editions, err := h.service.ListEditions()
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"editions": editions}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// UpdateEdition godoc
// @Summary Update details of an edition
// @Tags editions
// @Accept  json
// @Produce json
// @Param editionId path int true "ID of edition to update"
// @Param body body dto.UpdateEditionRequestBody true "JSON payload required to update an edition"
// @Success 200 {object} data.Edition
// @Failure 400
// @Failure 404
// @Failure 422
// @Failure 500
// @Router /v1/editions/{editionId} [patch]
func (h *Handler) updateEditionHandler(w http.ResponseWriter, r *http.Request) {
	editionID, err := h.readIDParam(r, "editionId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var requestBody dto.UpdateEditionRequestBody
	if err := h.decodeJSON(w, r, &requestBody); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	edition, err := h.service.UpdateEdition(editionID, requestBody)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"edition": edition}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// DeleteEdition godoc
// @Summary Delete an edition
// @Tags editions
// @Produce json
// @Param editionId path int true "ID of edition to delete"
// @Success 200
// @Failure 404
// @Failure 500
// @Router /v1/editions/{editionId} [delete]
func (h *Handler) deleteEditionHandler(w http.ResponseWriter, r *http.Request) {
	editionID, err := h.readIDParam(r, "editionId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	err = h.service.DeleteEdition(editionID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "edition successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListEditionTags godoc
// @Summary List the tag counts of an edition
// @Tags editions
// @Produce json
// @Param editionId path int true "ID of edition"
// @Success 200 {array} data.EditionTag
// @Failure 404
// @Failure 500
// @Router /v1/editions/{editionId}/tags [get]
func (h *Handler) listEditionTagsHandler(w http.ResponseWriter, r *http.Request) {
	editionID, err := h.readIDParam(r, "editionId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	tags, err := h.service.ListEditionTags(editionID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"tags": tags}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
