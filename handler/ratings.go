package handler

import (
	"fmt"
	"net/http"

	"github.com/emzola/bookrating/data/dto"
	"github.com/emzola/bookrating/internal/validator"
)

// CreateRating godoc
// @Summary Rate an edition
// @Description Rating must be an integer between 0 and 5; a user can rate an edition once
// @Tags ratings
// @Accept  json
// @Produce json
// @Param body body dto.CreateRatingRequestBody true "JSON payload required to create a rating"
// @Success 201 {object} data.Rating
// @Failure 400
// @Failure 422
// @Failure 500
// @Router /v1/ratings [post]
func (h *Handler) createRatingHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateRatingRequestBody
	if err := h.decodeJSON(w, r, &requestBody); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	rating, err := h.service.CreateRating(requestBody)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/ratings/%d", rating.ID))
	if err := h.encodeJSON(w, http.StatusCreated, envelope{"rating": rating}, headers); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ShowRating godoc
// @Summary Show a rating
// @Tags ratings
// @Produce json
// @Param ratingId path int true "ID of rating to show"
// @Success 200 {object} data.Rating
// @Failure 404
// @Failure 500
// @Router /v1/ratings/{ratingId} [get]
func (h *Handler) showRatingHandler(w http.ResponseWriter, r *http.Request) {
	ratingID, err := h.readIDParam(r, "ratingId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	rating, err := h.service.GetRating(ratingID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"rating": rating}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListRatings godoc
// @Summary List ratings
// @Description Optionally filtered by user and edition
// @Tags ratings
// @Produce json
// @Param user_id query int false "Only ratings by this user"
// @Param edition query int false "Only ratings of this edition"
// @Success 200 {array} data.Rating
// @Failure 422
// @Failure 500
// @Router /v1/ratings [get]
func (h *Handler) listRatingsHandler(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	qs := r.URL.Query()
	userID := h.readInt64(qs, "user_id", 0, v)
	editionID := h.readInt64(qs, "edition", 0, v)
	if !v.Valid() {
		h.failedValidationResponse(w, r, validationError(v))
		return
	}
	ratings, err := h.service.ListRatings(userID, editionID)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"ratings": ratings}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// UpdateRating godoc
// @Summary Update a rating
// @Tags ratings
// @Accept  json
// @Produce json
// @Param ratingId path int true "ID of rating to update"
// @Param body body dto.UpdateRatingRequestBody true "JSON payload required to update a rating"
// @Success 200 {object} data.Rating
// @Failure 400
// @Failure 404
// @Failure 422
// @Failure 500
// @Router /v1/ratings/{ratingId} [patch]
func (h *Handler) updateRatingHandler(w http.ResponseWriter, r *http.Request) {
	ratingID, err := h.readIDParam(r, "ratingId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var requestBody dto.UpdateRatingRequestBody
	if err := h.decodeJSON(w, r, &requestBody); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	rating, err := h.service.UpdateRating(ratingID, requestBody)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"rating": rating}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// DeleteRating godoc
// @Summary Delete a rating
// @Tags ratings
// @Produce json
// @Param ratingId path int true "ID of rating to delete"
// @Success 200
// @Failure 404
// @Failure 500
// @Router /v1/ratings/{ratingId} [delete]
func (h *Handler) deleteRatingHandler(w http.ResponseWriter, r *http.Request) {
	ratingID, err := h.readIDParam(r, "ratingId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	err = h.service.DeleteRating(ratingID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "rating successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
