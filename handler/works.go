package handler

import (
	"fmt"
	"net/http"

	"github.com/emzola/bookrating/data/dto"
	"github.com/emzola/bookrating/internal/validator"
)

// CreateWork godoc
// @Summary Create a new work
// @Description This endpoint creates a work with a caller supplied id
// @Tags works
// @Accept  json
// @Produce json
// @Param body body dto.CreateWorkRequestBody true "JSON payload required to create a work"
// @Success 201 {object} data.Work
// @Failure 400
// @Failure 422
// @Failure 500
// @Router /v1/works [post]
func (h *Handler) createWorkHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateWorkRequestBody
	if err := h.decodeJSON(w, r, &requestBody); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	work, err := h.service.CreateWork(requestBody)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/works/%d", work.ID))
	if err := h.encodeJSON(w, http.StatusCreated, envelope{"work": work}, headers); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ShowWork godoc
// @Summary Show details of a work
// @Description This endpoint shows a work with its authors and editions
// @Tags works
// @Produce json
// @Param workId path int true "ID of work to show"
// @Success 200 {object} data.Work
// @Failure 404
// @Failure 500
// @Router /v1/works/{workId} [get]
func (h *Handler) showWorkHandler(w http.ResponseWriter, r *http.Request) {
	workID, err := h.readIDParam(r, "workId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	work, err := h.service.GetWork(workID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"work": work}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListWorks godoc
// @Summary List all works
// @Description This endpoint lists works, optionally filtered by minimum average rating and author name
// @Tags works
// @Produce json
// @Param min_rating query number false "Minimum average rating"
// @Param author query string false "Substring of an author name"
// @Success 200 {array} data.Work
// @Failure 422
// @Failure 500
// @Router /v1/works [get]
func (h *Handler) listWorksHandler(w http.ResponseWriter, r *http.Request) {
	qsInput, v := h.readWorkFilters(r)
	if !v.Valid() {
		h.failedValidationResponse(w, r, validationError(v))
		return
	}
	works, err := h.service.ListWorks(qsInput)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"works": works}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListTopRatedWorks godoc
// @Summary List top rated works
// @Description This endpoint lists works rated at least min_rating (default 4.0) whose author name contains author, best rated first
// @Tags works
// @Produce json
// @Param min_rating query number false "Minimum average rating"
// @Param author query string false "Substring of an author name"
// @Success 200 {array} data.Work
// @Failure 422
// @Failure 500
// @Router /v1/top-rated-works [get]
func (h *Handler) listTopRatedWorksHandler(w http.ResponseWriter, r *http.Request) {
	qsInput, v := h.readWorkFilters(r)
	if !v.Valid() {
		h.failedValidationResponse(w, r, validationError(v))
		return
	}
	works, err := h.service.ListTopRatedWorks(qsInput)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"works": works}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// UpdateWork godoc
// @Summary Update details of a work
// @Description This endpoint updates the supplied fields of a work
// @Tags works
// @Accept  json
// @Produce json
// @Param workId path int true "ID of work to update"
// @Param body body dto.UpdateWorkRequestBody true "JSON payload required to update a work"
// @Success 200 {object} data.Work
// @Failure 400
// @Failure 404
// @Failure 422
// @Failure 500
// @Router /v1/works/{workId} [patch]
func (h *Handler) updateWorkHandler(w http.ResponseWriter, r *http.Request) {
	workID, err := h.readIDParam(r, "workId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var requestBody dto.UpdateWorkRequestBody
	if err := h.decodeJSON(w, r, &requestBody); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	work, err := h.service.UpdateWork(workID, requestBody)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"work": work}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// DeleteWork godoc
// @Summary Delete a work
// @Description This endpoint deletes a work with its editions and ratings
// @Tags works
// @Produce json
// @Param workId path int true "ID of work to delete"
// @Success 200
// @Failure 404
// @Failure 500
// @Router /v1/works/{workId} [delete]
func (h *Handler) deleteWorkHandler(w http.ResponseWriter, r *http.Request) {
	workID, err := h.readIDParam(r, "workId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	err = h.service.DeleteWork(workID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "work successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListWorkEditions godoc
// @Summary List the editions of a work
// @Tags works
// @Produce json
// @Param workId path int true "ID of work"
// @Success 200 {array} data.Edition
// @Failure 404
// @Failure 500
// @Router /v1/works/{workId}/editions [get]
func (h *Handler) listWorkEditionsHandler(w http.ResponseWriter, r *http.Request) {
	workID, err := h.readIDParam(r, "workId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	editions, err := h.service.ListWorkEditions(workID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"editions": editions}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListWorkRatings godoc
// @Summary List the ratings of all editions of a work
// @Tags works
// @Produce json
// @Param workId path int true "ID of work"
// @Success 200 {array} data.Rating
// @Failure 404
// @Failure 500
// @Router /v1/works/{workId}/ratings [get]
func (h *Handler) listWorkRatingsHandler(w http.ResponseWriter, r *http.Request) {
	workID, err := h.readIDParam(r, "workId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	ratings, err := h.service.ListWorkRatings(workID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"ratings": ratings}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) readWorkFilters(r *http.Request) (dto.QsListWorks, *validator.Validator) {
	var qsInput dto.QsListWorks
	v := validator.New()
	qs := r.URL.Query()
	qsInput.MinRating = h.readFloat(qs, "min_rating", v)
	qsInput.Author = h.readString(qs, "author", "")
	return qsInput, v
}
