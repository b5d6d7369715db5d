package handler

import "net/http"

// ListTags godoc
// @Summary List all tags
// @Tags tags
// @Produce json
// @Success 200 {array} data.Tag
// @Failure 500
// @Router /v1/tags [get]
func (h *Handler) listTagsHandler(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.ListTags()
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"tags": tags}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ShowTag godoc
// @Summary Show a tag
// @Tags tags
// @Produce json
// @Param tagId path int true "ID of tag to show"
// @Success 200 {object} data.Tag
// @Failure 404
// @Failure 500
// @Router /v1/tags/{tagId} [get]
func (h *Handler) showTagHandler(w http.ResponseWriter, r *http.Request) {
	tagID, err := h.readIDParam(r, "tagId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	tag, err := h.service.GetTag(tagID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"tag": tag}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
