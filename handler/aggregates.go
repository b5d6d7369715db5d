package handler

import (
	"net/http"
)

// AlsoLoved godoc
// @Summary List works also loved by fans of a work
// @Description Works rated five stars by users who rated this work five stars, ordered by average rating then by the number of shared fans
// @Tags works
// @Produce json
// @Param workId path int true "ID of work"
// @Success 200 {array} data.WorkWithFanCount
// @Failure 404
// @Failure 500
// @Router /v1/works/{workId}/also-loved [get]
func (h *Handler) alsoLovedHandler(w http.ResponseWriter, r *http.Request) {
	workID, err := h.readIDParam(r, "workId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	works, err := h.service.AlsoLoved(workID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"works": works}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// RatingDistribution godoc
// @Summary Show the rating distribution of a work
// @Description Average, total and histogram of the ratings across every edition of a work
// @Tags works
// @Produce json
// @Param workId path int true "ID of work"
// @Success 200 {object} data.RatingDistribution
// @Failure 404
// @Failure 500
// @Router /v1/works/{workId}/rating-distribution [get]
func (h *Handler) ratingDistributionHandler(w http.ResponseWriter, r *http.Request) {
	workID, err := h.readIDParam(r, "workId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	dist, err := h.service.RatingDistribution(workID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"distribution": dist}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
